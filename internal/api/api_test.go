package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestClient_Get(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(ErrorResponse{Error: "not here"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	var out map[string]string
	if err := c.Get(context.Background(), "/health", &out); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if out["status"] != "ok" {
		t.Errorf("out = %v", out)
	}

	err := c.Get(context.Background(), "/missing", nil)
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("Get() error = %v, want *StatusError", err)
	}
	if se.StatusCode != http.StatusNotFound || se.Message != "not here" {
		t.Errorf("StatusError = %+v", se)
	}
}

func TestClient_Post(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			w.WriteHeader(http.StatusUnsupportedMediaType)
			return
		}
		io.Copy(w, r.Body)
	}))
	defer srv.Close()

	var out map[string]any
	if err := NewClient(srv.URL).Post(context.Background(), "/echo", map[string]any{"a": 1}, &out); err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if out["a"] != float64(1) {
		t.Errorf("out = %v", out)
	}
}

func TestClient_PostFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lab.png")
	if err := os.WriteFile(path, []byte("png-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ErrorResponse{Error: err.Error()})
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		json.NewEncoder(w).Encode(map[string]string{
			"filename": header.Filename,
			"type":     header.Header.Get("Content-Type"),
			"body":     string(data),
		})
	}))
	defer srv.Close()

	var out map[string]string
	if err := NewClient(srv.URL).PostFile(context.Background(), "/upload", "file", path, "image/png", &out); err != nil {
		t.Fatalf("PostFile() error = %v", err)
	}
	if out["filename"] != "lab.png" || out["type"] != "image/png" || out["body"] != "png-bytes" {
		t.Errorf("out = %v", out)
	}

	if err := NewClient(srv.URL).PostFile(context.Background(), "/upload", "file", filepath.Join(t.TempDir(), "nope"), "", nil); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestOutputTo(t *testing.T) {
	data := struct {
		Name  string `json:"patient_name"`
		Tests []int  `json:"tests"`
	}{"Jane", []int{}}

	var buf bytes.Buffer
	if err := OutputTo(&buf, OutputFormatJSON, data); err != nil {
		t.Fatalf("OutputTo(json) error = %v", err)
	}
	if !strings.Contains(buf.String(), `"patient_name": "Jane"`) {
		t.Errorf("json = %s", buf.String())
	}

	buf.Reset()
	if err := OutputTo(&buf, OutputFormatYAML, data); err != nil {
		t.Fatalf("OutputTo(yaml) error = %v", err)
	}
	if !strings.Contains(buf.String(), "patient_name: Jane") {
		t.Errorf("yaml should use json names, got %s", buf.String())
	}

	if err := OutputTo(&buf, "xml", data); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestSetOutputFormat(t *testing.T) {
	t.Cleanup(func() { SetOutputFormat("") })

	if err := SetOutputFormat("yaml"); err != nil || GetOutputFormat() != OutputFormatYAML {
		t.Errorf("SetOutputFormat(yaml) = %v, format %s", err, GetOutputFormat())
	}
	if err := SetOutputFormat("toml"); err == nil {
		t.Error("expected error for unknown format")
	}
	if err := SetOutputFormat(""); err != nil || GetOutputFormat() != DefaultOutput {
		t.Errorf("SetOutputFormat(\"\") = %v, format %s", err, GetOutputFormat())
	}
}

type fakeEndpoint struct {
	method, path string
	provider     bool
}

func (e fakeEndpoint) Route() (string, string, http.HandlerFunc) {
	return e.method, e.path, func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }
}
func (e fakeEndpoint) RequiresProvider() bool { return e.provider }
func (e fakeEndpoint) Command(func() string) *cobra.Command {
	return &cobra.Command{Use: strings.Trim(e.path, "/")}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register(fakeEndpoint{http.MethodGet, "/open", false})
	r.Register(fakeEndpoint{http.MethodPost, "/guarded", true})

	mux := http.NewServeMux()
	r.RegisterRoutes(mux, func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	})

	for path, want := range map[string]int{"/open": http.StatusNoContent, "/guarded": http.StatusServiceUnavailable} {
		method := http.MethodGet
		if path == "/guarded" {
			method = http.MethodPost
		}
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
		if rec.Code != want {
			t.Errorf("%s %s = %d, want %d", method, path, rec.Code, want)
		}
	}

	cmd := r.BuildCommands(func() string { return "" })
	if len(cmd.Commands()) != 2 {
		t.Errorf("commands = %d, want 2", len(cmd.Commands()))
	}
	if len(r.Endpoints()) != 2 {
		t.Errorf("Endpoints() = %d", len(r.Endpoints()))
	}
}

func TestRegistry_Groups(t *testing.T) {
	r := NewRegistry()
	r.Register(fakeEndpoint{http.MethodGet, "/health", false})
	r.RegisterGroup(Group{
		Name:  "drugs",
		Short: "drug commands",
		Endpoints: []Endpoint{
			fakeEndpoint{http.MethodGet, "/search", false},
			fakeEndpoint{http.MethodGet, "/label", false},
		},
	})

	mux := http.NewServeMux()
	r.RegisterRoutes(mux, func(next http.HandlerFunc) http.HandlerFunc { return next })
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("GET /search = %d, want grouped route mounted", rec.Code)
	}

	cmd := r.BuildCommands(func() string { return "" })
	sub, _, err := cmd.Find([]string{"drugs", "label"})
	if err != nil || sub.Use != "label" {
		t.Fatalf("Find(drugs label) = %v, %v", sub, err)
	}
	if top, _, _ := cmd.Find([]string{"search"}); top != cmd {
		t.Error("grouped command should not appear at top level")
	}
	if len(r.Endpoints()) != 3 {
		t.Errorf("Endpoints() = %d, want 3", len(r.Endpoints()))
	}
}
