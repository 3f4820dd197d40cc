package formulary

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/jackzampolin/medlens/internal/analysis"
	"github.com/jackzampolin/medlens/internal/normalize"
)

const notFoundBody = `{"error": {"code": "NOT_FOUND", "message": "No matches found!"}}`

// fdaServer serves labels keyed by the exact search expression.
type fdaServer struct {
	mu       sync.Mutex
	labels   map[string]string
	searches []string
}

func (f *fdaServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != labelPath {
		http.NotFound(w, r)
		return
	}
	search := r.URL.Query().Get("search")
	f.mu.Lock()
	f.searches = append(f.searches, search)
	body, ok := f.labels[search]
	f.mu.Unlock()

	if r.URL.Query().Get("limit") != "1" {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error": {"code": "BAD_REQUEST", "message": "limit"}}`)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, notFoundBody)
		return
	}
	fmt.Fprint(w, body)
}

func (f *fdaServer) Searches() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.searches...)
}

func newTestService(t *testing.T, labels map[string]string, gen analysis.Generator) (*Service, *fdaServer) {
	t.Helper()
	fda := &fdaServer{labels: labels}
	srv := httptest.NewServer(fda)
	t.Cleanup(srv.Close)
	client := NewClient(ClientConfig{BaseURL: srv.URL, RetryDelay: time.Millisecond})
	return NewService(client, gen, nil), fda
}

func identity(generic, brand, desc string) analysis.Generator {
	return analysis.GeneratorFunc(func(_ context.Context, prompt string, img *normalize.Image) (string, error) {
		if img != nil {
			return "", errors.New("unexpected image")
		}
		return fmt.Sprintf("```json\n{\"generic_name\": %q, \"brand_name\": %q, \"description\": %q}\n```", generic, brand, desc), nil
	})
}

const tylenolLabel = `{"results": [{
	"openfda": {"brand_name": ["Tylenol"], "generic_name": ["ACETAMINOPHEN"]},
	"purpose": ["Pain reliever/fever reducer"],
	"warnings": ["Liver warning: This product contains acetaminophen."]
}]}`

func TestSearch_GenericName(t *testing.T) {
	svc, fda := newTestService(t, map[string]string{
		`openfda.generic_name:"acetaminophen"`: tylenolLabel,
	}, identity("acetaminophen", "Tylenol", "Treats pain and fever."))

	info, err := svc.Search(context.Background(), " Paracetamol ")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if info.Brand != "Tylenol" || info.Generic != "ACETAMINOPHEN" || info.Purpose != "Pain reliever/fever reducer" {
		t.Errorf("info = %+v", info)
	}
	if info.Warnings != "Liver warning: This product contains acetaminophen." {
		t.Errorf("short warnings should not be truncated, got %q", info.Warnings)
	}
	if info.Source != SourceFDA {
		t.Errorf("Source = %q", info.Source)
	}
	if got := fda.Searches(); len(got) != 1 {
		t.Errorf("searches = %v, want one generic search", got)
	}
}

func TestSearch_FallsBackToBrand(t *testing.T) {
	svc, fda := newTestService(t, map[string]string{
		`openfda.brand_name:"Advil"`: `{"results": [{"openfda": {}, "warnings": ["` + strings.Repeat("w", 700) + `"]}]}`,
	}, identity("ibuprofen", "Advil", "Treats inflammation."))

	info, err := svc.Search(context.Background(), "advil")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	want := []string{`openfda.generic_name:"ibuprofen"`, `openfda.brand_name:"Advil"`}
	if got := fda.Searches(); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("searches = %v, want %v", got, want)
	}
	if info.Brand != "Advil" || info.Generic != "ibuprofen" || info.Purpose != "Treats inflammation." {
		t.Errorf("label gaps should fall back to the identity, got %+v", info)
	}
	if len(info.Warnings) != maxWarningLen+3 || !strings.HasSuffix(info.Warnings, "...") {
		t.Errorf("warnings length = %d, want truncated to %d plus ellipsis", len(info.Warnings), maxWarningLen)
	}
}

func TestSearch_NoIdentity(t *testing.T) {
	failing := analysis.GeneratorFunc(func(context.Context, string, *normalize.Image) (string, error) {
		return "", errors.New("service down")
	})

	for name, gen := range map[string]analysis.Generator{
		"generator error": failing,
		"no generator":    nil,
		"garbage reply":   analysis.GeneratorFunc(func(context.Context, string, *normalize.Image) (string, error) { return "no idea", nil }),
	} {
		t.Run(name, func(t *testing.T) {
			svc, fda := newTestService(t, map[string]string{
				`openfda.brand_name:"Zyrtec"`: `{"results": [{"openfda": {"generic_name": ["CETIRIZINE"]}}]}`,
			}, gen)

			info, err := svc.Search(context.Background(), "Zyrtec")
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if info.Brand != "Zyrtec" || info.Generic != "CETIRIZINE" {
				t.Errorf("info = %+v", info)
			}
			if info.Purpose != "N/A" || info.Warnings != noWarnings {
				t.Errorf("missing fields = %q / %q", info.Purpose, info.Warnings)
			}
			if got := fda.Searches(); len(got) != 2 || got[0] != `openfda.generic_name:"Zyrtec"` {
				t.Errorf("searches = %v, want raw query for both fields", got)
			}
		})
	}
}

func TestSearch_AIOnlyFallback(t *testing.T) {
	svc, _ := newTestService(t, nil, identity("tirzepatide", "Mounjaro", "Treats type 2 diabetes."))

	info, err := svc.Search(context.Background(), "mounjaro")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	want := DrugInfo{Brand: "Mounjaro", Generic: "tirzepatide", Purpose: "Treats type 2 diabetes.", Warnings: noFDAWarnings, Source: SourceAI}
	if *info != want {
		t.Errorf("info = %+v, want %+v", *info, want)
	}
}

func TestSearch_NotFound(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)

	if _, err := svc.Search(context.Background(), "notadrug"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Search() error = %v, want ErrNotFound", err)
	}
	if _, err := svc.Search(context.Background(), "   "); !errors.Is(err, ErrNotFound) {
		t.Errorf("empty query error = %v, want ErrNotFound", err)
	}
}

func TestClient_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, tylenolLabel)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL, MaxAttempts: 3, RetryDelay: time.Millisecond})
	label, err := client.Label(context.Background(), FieldBrandName, "Tylenol")
	if err != nil {
		t.Fatalf("Label() error = %v", err)
	}
	if label.OpenFDA.BrandName[0] != "Tylenol" {
		t.Errorf("label = %+v", label)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestClient_Unavailable(t *testing.T) {
	t.Run("server keeps failing", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		client := NewClient(ClientConfig{BaseURL: srv.URL, MaxAttempts: 2, RetryDelay: time.Millisecond})
		_, err := client.Label(context.Background(), FieldGenericName, "x")
		if !errors.Is(err, ErrUnavailable) {
			t.Fatalf("Label() error = %v, want ErrUnavailable", err)
		}
		if calls.Load() != 2 {
			t.Errorf("calls = %d, want 2", calls.Load())
		}
	})

	t.Run("unexpected status is not retried", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, "<html>forbidden</html>")
		}))
		defer srv.Close()

		client := NewClient(ClientConfig{BaseURL: srv.URL, MaxAttempts: 3, RetryDelay: time.Millisecond})
		_, err := client.Label(context.Background(), FieldGenericName, "x")
		if !errors.Is(err, ErrUnavailable) {
			t.Fatalf("Label() error = %v, want ErrUnavailable", err)
		}
		if calls.Load() != 1 {
			t.Errorf("calls = %d, want 1", calls.Load())
		}
	})

	t.Run("unreachable host", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		svc := NewService(NewClient(ClientConfig{BaseURL: url, MaxAttempts: 1}), nil, nil)
		_, err := svc.Search(context.Background(), "aspirin")
		if !errors.Is(err, ErrUnavailable) {
			t.Errorf("Search() error = %v, want ErrUnavailable", err)
		}
	})
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"network", errors.New("dial tcp: refused"), true},
		{"server error", &statusError{StatusCode: 503}, true},
		{"forbidden", retry.Unrecoverable(&statusError{StatusCode: 403}), false},
		{"canceled", context.Canceled, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryable(tt.err); got != tt.want {
				t.Errorf("isRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abc", 5); got != "abc" {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("héllo wörld", 5); got != "héllo..." {
		t.Errorf("truncate() = %q, want rune-safe cut", got)
	}
}
