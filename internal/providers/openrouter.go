package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	OpenRouterName    = "openrouter"
	OpenRouterBaseURL = "https://openrouter.ai/api/v1"

	DefaultOpenRouterModel = "google/gemini-2.5-flash"
)

// OpenRouterConfig holds configuration for the OpenRouter client.
type OpenRouterConfig struct {
	APIKey       string
	BaseURL      string
	DefaultModel string
	Timeout      time.Duration
	// Rate limiting
	RPS        float64       // Requests per second (0 = unlimited)
	MaxRetries int           // Max attempts per request (default: 3, 1 disables retries)
	RetryDelay time.Duration // Base delay between retries (default: 1s)
	HTTPClient *http.Client  // Optional (tests)
	Logger     *slog.Logger
}

// OpenRouterClient implements LLMClient using the OpenRouter API.
type OpenRouterClient struct {
	apiKey       string
	baseURL      string
	defaultModel string
	client       *http.Client
	limiter      *rate.Limiter
	logger       *slog.Logger
	// Rate limiting
	rps        float64
	maxRetries int
	retryDelay time.Duration
}

// NewOpenRouterClient creates a new OpenRouter client.
func NewOpenRouterClient(cfg OpenRouterConfig) *OpenRouterClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = OpenRouterBaseURL
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = DefaultOpenRouterModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &OpenRouterClient{
		apiKey:       cfg.APIKey,
		baseURL:      cfg.BaseURL,
		defaultModel: cfg.DefaultModel,
		client:       httpClient,
		limiter:      newLimiter(cfg.RPS),
		logger:       cfg.Logger,
		rps:          cfg.RPS,
		maxRetries:   cfg.MaxRetries,
		retryDelay:   cfg.RetryDelay,
	}
}

func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// Name returns the client identifier.
func (c *OpenRouterClient) Name() string {
	return OpenRouterName
}

// Model returns the default model.
func (c *OpenRouterClient) Model() string {
	return c.defaultModel
}

// Chat sends a chat completion request.
func (c *OpenRouterClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	start := time.Now()

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}
	result := &ChatResult{
		RequestID: requestID,
		Provider:  OpenRouterName,
	}

	if c.apiKey == "" {
		result.ErrorType = "auth"
		result.ErrorMessage = ErrMissingAPIKey.Error()
		return result, ErrMissingAPIKey
	}

	model := req.Model
	if model == "" {
		model = c.defaultModel
	}

	orReq := openRouterRequest{
		Model:       model,
		Messages:    make([]openRouterMessage, 0, len(req.Messages)),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	for _, m := range req.Messages {
		orMsg := openRouterMessage{Role: m.Role}
		if len(m.Images) > 0 {
			parts := []openRouterContent{{Type: "text", Text: m.Content}}
			for _, img := range m.Images {
				parts = append(parts, openRouterContent{
					Type:     "image_url",
					ImageURL: &openRouterImageURL{URL: img.DataURL()},
				})
			}
			orMsg.Content = parts
		} else {
			orMsg.Content = m.Content
		}
		orReq.Messages = append(orReq.Messages, orMsg)
	}

	rf, err := adaptedResponseFormat(model, req.ResponseFormat)
	if err != nil {
		result.ErrorType = "schema"
		result.ErrorMessage = err.Error()
		return result, err
	}
	orReq.ResponseFormat = rf

	orResp, attempts, err := c.doRequest(ctx, "/chat/completions", &orReq)
	result.Attempts = attempts
	result.ExecutionTime = time.Since(start)
	if err != nil {
		result.ErrorType = "http_error"
		result.ErrorMessage = err.Error()
		return result, err
	}

	content, err := messageText(orResp.Choices[0].Message.Content)
	if err != nil {
		result.ErrorType = "content_marshal_error"
		result.ErrorMessage = err.Error()
		return result, err
	}

	result.Success = true
	result.Content = content
	result.ModelUsed = orResp.Model
	result.PromptTokens = orResp.Usage.PromptTokens
	result.CompletionTokens = orResp.Usage.CompletionTokens
	result.TotalTokens = orResp.Usage.TotalTokens
	result.CostUSD = orResp.Usage.Cost

	applyStructuredOutput(result, req.ResponseFormat)
	return result, nil
}

// messageText flattens string or multipart message content.
func messageText(content any) (string, error) {
	switch v := content.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []any:
		var buf bytes.Buffer
		for _, part := range v {
			if m, ok := part.(map[string]any); ok {
				if text, ok := m["text"].(string); ok {
					buf.WriteString(text)
				}
			}
		}
		return buf.String(), nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("failed to marshal content: %w", err)
		}
		return string(b), nil
	}
}

// doRequest makes an HTTP request to OpenRouter with retry logic. It returns
// the number of attempts made.
func (c *OpenRouterClient) doRequest(ctx context.Context, path string, orReq *openRouterRequest) (*openRouterResponse, int, error) {
	var (
		orResp   *openRouterResponse
		attempts int
	)

	err := retry.Do(
		func() error {
			attempts++
			if err := c.limiter.Wait(ctx); err != nil {
				return retry.Unrecoverable(err)
			}
			resp, err := c.post(ctx, path, orReq)
			if err != nil {
				return err
			}
			orResp = resp
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.maxRetries)),
		retry.Delay(c.retryDelay),
		retry.MaxDelay(10*time.Second),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.MaxJitter(c.retryDelay/2),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Debug("retrying openrouter request", "attempt", n+1, "error", err)
			// Changing the payload gets past upstream caching on 413/422.
			var se *StatusError
			if errors.As(err, &se) && (se.StatusCode == http.StatusRequestEntityTooLarge || se.StatusCode == http.StatusUnprocessableEntity) {
				injectNonce(orReq, int(n)+1)
			}
		}),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = fmt.Errorf("%w: %v", ctxErr, err)
		}
		return nil, attempts, err
	}
	return orResp, attempts, nil
}

func (c *OpenRouterClient) post(ctx context.Context, path string, orReq *openRouterRequest) (*openRouterResponse, error) {
	bodyBytes, err := json.Marshal(orReq)
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("failed to marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("HTTP-Referer", "https://github.com/jackzampolin/medlens")
	req.Header.Set("X-Title", "Medlens")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Provider: "OpenRouter", StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var orResp openRouterResponse
	if err := json.Unmarshal(respBody, &orResp); err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("failed to unmarshal response: %w", err))
	}
	if err := checkResponse(&orResp); err != nil {
		return nil, err
	}
	return &orResp, nil
}

// errTransient marks 200 responses whose body indicates a retryable failure.
var errTransient = errors.New("transient provider error")

// checkResponse inspects a 200 OK body for API-level errors and empty choices.
func checkResponse(resp *openRouterResponse) error {
	if resp.Error != nil {
		code := fmt.Sprintf("%v", resp.Error.Code)
		switch code {
		case "overloaded", "rate_limit_exceeded", "503", "502", "500":
			return fmt.Errorf("%w: OpenRouter API error: %s", errTransient, resp.Error.Message)
		}
		return retry.Unrecoverable(fmt.Errorf("OpenRouter API error (%s): %s", code, resp.Error.Message))
	}
	if len(resp.Choices) == 0 {
		return fmt.Errorf("%w: empty choices in response (model=%s, id=%s)", errTransient, resp.Model, resp.ID)
	}
	return nil
}

func isRetryable(err error) bool {
	// RetryIf replaces retry-go's own Unrecoverable check.
	if !retry.IsRecoverable(err) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	// Network errors and transient bodies.
	return true
}

// injectNonce appends a unique comment to the last user message's text.
func injectNonce(req *openRouterRequest, attempt int) {
	comment := fmt.Sprintf("\n<!-- retry_%d_id: %s -->", attempt, uuid.New().String()[:16])
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role != "user" {
			continue
		}
		switch content := req.Messages[i].Content.(type) {
		case string:
			req.Messages[i].Content = content + comment
		case []openRouterContent:
			for j := range content {
				if content[j].Type == "text" {
					content[j].Text += comment
					break
				}
			}
		}
		return
	}
}

// OpenRouter API types

type openRouterRequest struct {
	Model          string                    `json:"model"`
	Messages       []openRouterMessage       `json:"messages"`
	Temperature    float64                   `json:"temperature,omitempty"`
	MaxTokens      int                       `json:"max_tokens,omitempty"`
	ResponseFormat *openRouterResponseFormat `json:"response_format,omitempty"`
}

type openRouterMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"` // string or []openRouterContent
}

type openRouterContent struct {
	Type     string              `json:"type"`
	Text     string              `json:"text,omitempty"`
	ImageURL *openRouterImageURL `json:"image_url,omitempty"`
}

type openRouterImageURL struct {
	URL string `json:"url"`
}

type openRouterResponseFormat struct {
	Type       string          `json:"type"`
	JSONSchema json.RawMessage `json:"json_schema,omitempty"`
}

type openRouterResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content any    `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int     `json:"prompt_tokens"`
		CompletionTokens int     `json:"completion_tokens"`
		TotalTokens      int     `json:"total_tokens"`
		Cost             float64 `json:"cost,omitempty"`
	} `json:"usage"`
	Error *openRouterError `json:"error,omitempty"`
}

type openRouterError struct {
	Message string `json:"message"`
	Code    any    `json:"code,omitempty"` // string or int
}

var _ LLMClient = (*OpenRouterClient)(nil)
