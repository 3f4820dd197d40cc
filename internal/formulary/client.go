// Package formulary looks up drug labels in the OpenFDA database, using the
// reasoning service to map colloquial names onto the names FDA indexes by.
package formulary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	DefaultBaseURL     = "https://api.fda.gov"
	DefaultTimeout     = 15 * time.Second
	DefaultMaxAttempts = 3

	labelPath = "/drug/label.json"
)

// Search fields understood by Label.
const (
	FieldGenericName = "openfda.generic_name"
	FieldBrandName   = "openfda.brand_name"
)

var (
	ErrNotFound    = errors.New("drug not found")
	ErrUnavailable = errors.New("fda service unavailable")
)

// User-facing messages for the lookup failures.
const (
	MsgNotFound    = "Drug not found in FDA database."
	MsgUnavailable = "Connection to FDA service failed."
)

// ClientConfig configures the OpenFDA client.
type ClientConfig struct {
	BaseURL     string
	Timeout     time.Duration
	MaxAttempts int           // attempts per request (default 3, 1 disables retries)
	RetryDelay  time.Duration // base backoff (default 500ms)
	HTTPClient  *http.Client  // Optional (tests)
	Logger      *slog.Logger
}

// Client queries the OpenFDA drug label endpoint.
type Client struct {
	baseURL     string
	client      *http.Client
	maxAttempts int
	retryDelay  time.Duration
	logger      *slog.Logger
}

// NewClient creates an OpenFDA client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 500 * time.Millisecond
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		client:      httpClient,
		maxAttempts: cfg.MaxAttempts,
		retryDelay:  cfg.RetryDelay,
		logger:      cfg.Logger,
	}
}

// Label is the subset of an FDA drug label the lookup reports.
type Label struct {
	OpenFDA struct {
		BrandName   []string `json:"brand_name"`
		GenericName []string `json:"generic_name"`
	} `json:"openfda"`
	Purpose  []string `json:"purpose"`
	Warnings []string `json:"warnings"`
}

type labelResponse struct {
	Results []Label `json:"results"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// statusError is a non-200 reply without a usable body.
type statusError struct {
	StatusCode int
	Body       string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("openfda returned status %d: %s", e.StatusCode, e.Body)
}

// Label returns the first label whose field matches term exactly. It returns
// ErrNotFound when FDA reports no match and wraps ErrUnavailable when the
// service cannot be reached after retries.
func (c *Client) Label(ctx context.Context, field, term string) (*Label, error) {
	q := url.Values{}
	q.Set("search", fmt.Sprintf("%s:%q", field, term))
	q.Set("limit", "1")
	endpoint := c.baseURL + labelPath + "?" + q.Encode()

	var resp *labelResponse
	err := retry.Do(
		func() error {
			r, err := c.get(ctx, endpoint)
			if err != nil {
				return err
			}
			resp = r
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.maxAttempts)),
		retry.Delay(c.retryDelay),
		retry.MaxDelay(5*time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Debug("retrying openfda request", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.Error != nil || len(resp.Results) == 0 {
		return nil, ErrNotFound
	}
	return &resp.Results[0], nil
}

func (c *Client) get(ctx context.Context, endpoint string) (*labelResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, &statusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	// FDA answers "no match" with 404 and an error object; other 4xx bodies
	// carry the same shape.
	var out labelResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, retry.Unrecoverable(&statusError{StatusCode: resp.StatusCode, Body: string(body)})
	}
	if resp.StatusCode != http.StatusOK && out.Error == nil {
		return nil, retry.Unrecoverable(&statusError{StatusCode: resp.StatusCode, Body: string(body)})
	}
	return &out, nil
}

func isRetryable(err error) bool {
	// RetryIf replaces retry-go's own Unrecoverable check.
	if !retry.IsRecoverable(err) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	// Network errors and 429/5xx; everything else is marked unrecoverable.
	return true
}
