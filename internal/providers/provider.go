// Package providers holds the chat-completion clients the analysis core talks
// to, and the registry that builds them from configuration.
package providers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrMissingAPIKey is returned by clients constructed without credentials.
var ErrMissingAPIKey = errors.New("API key missing")

// LLMClient is the interface for chat/completion requests.
type LLMClient interface {
	// Chat sends a chat completion request.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error)

	// Name returns the client identifier (e.g., "openrouter").
	Name() string
}

// Image is an inline image attachment.
type Image struct {
	Data []byte
	MIME string // defaults to image/jpeg
}

// DataURL encodes the image as a base64 data URL.
func (i Image) DataURL() string {
	mime := i.MIME
	if mime == "" {
		mime = "image/jpeg"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// Message represents a chat message.
type Message struct {
	Role    string  `json:"role"` // "system", "user", "assistant"
	Content string  `json:"content"`
	Images  []Image `json:"-"` // For vision models
}

// ResponseFormat specifies structured output format.
type ResponseFormat struct {
	Type       string          `json:"type"` // "json_schema" or "json_object"
	JSONSchema json.RawMessage `json:"json_schema,omitempty"`
}

// NewResponseFormat converts a {"type": ..., "json_schema": {...}} wrapper,
// as declared by the prompt packages, into a ResponseFormat.
func NewResponseFormat(wrapper map[string]any) (*ResponseFormat, error) {
	if wrapper == nil {
		return nil, nil
	}
	typ, _ := wrapper["type"].(string)
	if typ == "" {
		return nil, fmt.Errorf("response format missing type")
	}
	rf := &ResponseFormat{Type: typ}
	if js, ok := wrapper["json_schema"]; ok {
		b, err := json.Marshal(js)
		if err != nil {
			return nil, fmt.Errorf("failed to encode json_schema: %w", err)
		}
		rf.JSONSchema = b
	}
	return rf, nil
}

// ChatRequest is a request to an LLM.
type ChatRequest struct {
	// Required
	Messages []Message `json:"messages"`

	// Model selection (uses client default if empty)
	Model string `json:"model,omitempty"`

	// Generation parameters
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`

	// Structured output
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`

	// Request tracking
	RequestID string `json:"-"`
}

// ChatResult is the complete response from an LLM call.
type ChatResult struct {
	// Response content
	Content    string          `json:"content"`
	ParsedJSON json.RawMessage `json:"parsed_json,omitempty"` // Set if ResponseFormat was requested and parsed

	// Token counts
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`

	// Cost and timing
	CostUSD       float64       `json:"cost_usd"`
	ExecutionTime time.Duration `json:"execution_time"`

	// Provider info
	Provider  string `json:"provider"`
	ModelUsed string `json:"model_used"`

	// Request tracking
	RequestID string `json:"request_id"`
	Attempts  int    `json:"attempts"`

	// Success/error. Schema mismatches are reported here without failing the call.
	Success      bool   `json:"success"`
	ErrorType    string `json:"error_type,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// StatusError is a non-2xx response from a provider API.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s error (status %d): %s", e.Provider, e.StatusCode, e.Body)
}

// Retryable reports whether the status is worth another attempt.
func (e *StatusError) Retryable() bool {
	switch e.StatusCode {
	case http.StatusRequestEntityTooLarge, // retried with a nonce
		http.StatusUnprocessableEntity, // often cache/format issues, retried with a nonce
		http.StatusTooManyRequests:
		return true
	}
	return e.StatusCode >= 500
}
