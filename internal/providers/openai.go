package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"golang.org/x/time/rate"
)

const (
	OpenAIName         = "openai"
	DefaultOpenAIModel = "gpt-4o-mini"
)

// OpenAIConfig holds configuration for the OpenAI chat client.
type OpenAIConfig struct {
	APIKey       string
	DefaultModel string
	RateLimit    float64       // Requests per second (0 = unlimited)
	MaxRetries   int           // Retry attempts for SDK transport
	Timeout      time.Duration // HTTP timeout
	BaseURL      string        // Optional (tests, compatible gateways)
	HTTPClient   *http.Client  // Optional (tests)
}

// OpenAIClient implements LLMClient using the official OpenAI SDK. Retries
// are delegated to the SDK.
type OpenAIClient struct {
	apiKey       string
	defaultModel string
	rateLimit    float64
	maxRetries   int
	limiter      *rate.Limiter
	client       openai.Client
}

// NewOpenAIClient creates a new OpenAI chat client.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = DefaultOpenAIModel
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	// The SDK counts retries, not attempts.
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(cfg.MaxRetries - 1),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIClient{
		apiKey:       cfg.APIKey,
		defaultModel: cfg.DefaultModel,
		rateLimit:    cfg.RateLimit,
		maxRetries:   cfg.MaxRetries,
		limiter:      newLimiter(cfg.RateLimit),
		client:       openai.NewClient(opts...),
	}
}

// Name returns the provider identifier.
func (c *OpenAIClient) Name() string {
	return OpenAIName
}

// Model returns the default model.
func (c *OpenAIClient) Model() string {
	return c.defaultModel
}

// Chat sends a chat completion request.
func (c *OpenAIClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	start := time.Now()

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}
	result := &ChatResult{
		RequestID: requestID,
		Provider:  OpenAIName,
		Attempts:  1,
	}

	if c.apiKey == "" {
		result.ErrorType = "auth"
		result.ErrorMessage = ErrMissingAPIKey.Error()
		return result, ErrMissingAPIKey
	}
	if err := c.limiter.Wait(ctx); err != nil {
		result.ErrorType = "rate_limit"
		result.ErrorMessage = err.Error()
		return result, err
	}

	model := req.Model
	if model == "" {
		model = c.defaultModel
	}

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(model),
		Messages: make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)),
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}
	for _, m := range req.Messages {
		params.Messages = append(params.Messages, openAIMessage(m))
	}

	rf, err := openAIResponseFormat(req.ResponseFormat)
	if err != nil {
		result.ErrorType = "schema"
		result.ErrorMessage = err.Error()
		return result, err
	}
	if rf != nil {
		params.ResponseFormat = *rf
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	result.ExecutionTime = time.Since(start)
	if err != nil {
		err = mapOpenAIError(err)
		result.ErrorType = "http_error"
		result.ErrorMessage = err.Error()
		return result, err
	}
	if len(completion.Choices) == 0 {
		err := fmt.Errorf("no choices in response")
		result.ErrorType = "empty_response"
		result.ErrorMessage = err.Error()
		return result, err
	}

	result.Success = true
	result.Content = completion.Choices[0].Message.Content
	result.ModelUsed = completion.Model
	result.PromptTokens = int(completion.Usage.PromptTokens)
	result.CompletionTokens = int(completion.Usage.CompletionTokens)
	result.TotalTokens = int(completion.Usage.TotalTokens)

	applyStructuredOutput(result, req.ResponseFormat)
	return result, nil
}

func openAIMessage(m Message) openai.ChatCompletionMessageParamUnion {
	switch m.Role {
	case "system":
		return openai.SystemMessage(m.Content)
	case "assistant":
		return openai.AssistantMessage(m.Content)
	}
	if len(m.Images) == 0 {
		return openai.UserMessage(m.Content)
	}
	parts := []openai.ChatCompletionContentPartUnionParam{openai.TextContentPart(m.Content)}
	for _, img := range m.Images {
		parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL:    img.DataURL(),
			Detail: "high",
		}))
	}
	return openai.UserMessage(parts)
}

// openAIResponseFormat maps a json_schema wrapper onto the SDK union.
func openAIResponseFormat(rf *ResponseFormat) (*openai.ChatCompletionNewParamsResponseFormatUnion, error) {
	if rf == nil {
		return nil, nil
	}
	switch rf.Type {
	case "json_object":
		return &openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}, nil
	case "json_schema":
		var wrapper struct {
			Name   string         `json:"name"`
			Strict bool           `json:"strict"`
			Schema map[string]any `json:"schema"`
		}
		if err := json.Unmarshal(rf.JSONSchema, &wrapper); err != nil {
			return nil, fmt.Errorf("invalid json_schema: %w", err)
		}
		if wrapper.Name == "" {
			wrapper.Name = "response"
		}
		return &openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   wrapper.Name,
					Schema: wrapper.Schema,
					Strict: openai.Bool(wrapper.Strict),
				},
			},
		}, nil
	default:
		return nil, fmt.Errorf("unsupported response format type %q", rf.Type)
	}
}

func mapOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		se := &StatusError{Provider: "OpenAI", StatusCode: apiErr.StatusCode, Body: apiErr.Message}
		if se.Body == "" {
			se.Body = http.StatusText(apiErr.StatusCode)
		}
		return se
	}
	return err
}

var _ LLMClient = (*OpenAIClient)(nil)
