package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/avast/retry-go/v4"
)

func chatResponse(content string) map[string]any {
	return map[string]any{
		"id":    "test-id",
		"model": "google/gemini-2.5-flash",
		"choices": []map[string]any{
			{
				"message": map[string]any{
					"role":    "assistant",
					"content": content,
				},
				"finish_reason": "stop",
			},
		},
		"usage": map[string]any{
			"prompt_tokens":     10,
			"completion_tokens": 8,
			"total_tokens":      18,
			"cost":              0.0002,
		},
	}
}

func newTestOpenRouter(url string) *OpenRouterClient {
	return NewOpenRouterClient(OpenRouterConfig{
		APIKey:     "test-key",
		BaseURL:    url,
		RetryDelay: time.Millisecond,
	})
}

func TestOpenRouterClient_Chat(t *testing.T) {
	t.Run("successful chat", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/chat/completions" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			if r.Method != http.MethodPost {
				t.Errorf("unexpected method: %s", r.Method)
			}
			if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
				t.Errorf("unexpected authorization: %s", auth)
			}

			var req openRouterRequest
			json.NewDecoder(r.Body).Decode(&req)
			if req.Model != DefaultOpenRouterModel {
				t.Errorf("model = %s, want default %s", req.Model, DefaultOpenRouterModel)
			}

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(chatResponse("Hello!"))
		}))
		defer server.Close()

		result, err := newTestOpenRouter(server.URL).Chat(context.Background(), &ChatRequest{
			Messages: []Message{{Role: "user", Content: "Hello"}},
		})
		if err != nil {
			t.Fatalf("Chat() error = %v", err)
		}
		if !result.Success {
			t.Error("expected Success = true")
		}
		if result.Content != "Hello!" {
			t.Errorf("Content = %q", result.Content)
		}
		if result.TotalTokens != 18 {
			t.Errorf("TotalTokens = %d, want 18", result.TotalTokens)
		}
		if result.CostUSD != 0.0002 {
			t.Errorf("CostUSD = %f, want 0.0002", result.CostUSD)
		}
		if result.Attempts != 1 {
			t.Errorf("Attempts = %d, want 1", result.Attempts)
		}
		if result.RequestID == "" {
			t.Error("expected a generated RequestID")
		}
	})

	t.Run("vision message uses image MIME in data URL", func(t *testing.T) {
		var received []map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Messages []struct {
					Content []map[string]any `json:"content"`
				} `json:"messages"`
			}
			json.NewDecoder(r.Body).Decode(&req)
			if len(req.Messages) > 0 {
				received = req.Messages[0].Content
			}
			json.NewEncoder(w).Encode(chatResponse("I see a lab report"))
		}))
		defer server.Close()

		_, err := newTestOpenRouter(server.URL).Chat(context.Background(), &ChatRequest{
			Messages: []Message{{
				Role:    "user",
				Content: "Analyze this",
				Images:  []Image{{Data: []byte("png-bytes"), MIME: "image/png"}},
			}},
		})
		if err != nil {
			t.Fatalf("Chat() error = %v", err)
		}
		if len(received) != 2 {
			t.Fatalf("expected 2 content parts, got %d", len(received))
		}
		if received[0]["type"] != "text" || received[0]["text"] != "Analyze this" {
			t.Errorf("first part = %v, want the prompt text", received[0])
		}
		imageURL, _ := received[1]["image_url"].(map[string]any)
		url, _ := imageURL["url"].(string)
		if !strings.HasPrefix(url, "data:image/png;base64,") {
			t.Errorf("image url = %q, want png data URL", url)
		}
	})

	t.Run("structured output", func(t *testing.T) {
		var gotFormat map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req map[string]any
			json.NewDecoder(r.Body).Decode(&req)
			gotFormat, _ = req["response_format"].(map[string]any)
			json.NewEncoder(w).Encode(chatResponse("```json\n{\"generic_name\": \"ibuprofen\"}\n```"))
		}))
		defer server.Close()

		rf, err := NewResponseFormat(map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   "drug",
				"schema": map[string]any{"type": "object", "required": []string{"generic_name"}},
			},
		})
		if err != nil {
			t.Fatalf("NewResponseFormat() error = %v", err)
		}

		result, err := newTestOpenRouter(server.URL).Chat(context.Background(), &ChatRequest{
			Messages:       []Message{{Role: "user", Content: "test"}},
			ResponseFormat: rf,
		})
		if err != nil {
			t.Fatalf("Chat() error = %v", err)
		}
		if gotFormat["type"] != "json_schema" {
			t.Errorf("response_format = %v", gotFormat)
		}
		if string(result.ParsedJSON) != `{"generic_name":"ibuprofen"}` {
			t.Errorf("ParsedJSON = %s", result.ParsedJSON)
		}
		if !result.Success {
			t.Errorf("expected Success, got %s: %s", result.ErrorType, result.ErrorMessage)
		}
	})

	t.Run("missing API key", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
		}))
		defer server.Close()

		client := NewOpenRouterClient(OpenRouterConfig{BaseURL: server.URL})
		_, err := client.Chat(context.Background(), &ChatRequest{Messages: []Message{{Role: "user", Content: "x"}}})
		if !errors.Is(err, ErrMissingAPIKey) {
			t.Errorf("error = %v, want ErrMissingAPIKey", err)
		}
		if calls.Load() != 0 {
			t.Error("no request should be sent without an API key")
		}
	})

	t.Run("retries transient errors", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			json.NewEncoder(w).Encode(chatResponse("ok"))
		}))
		defer server.Close()

		result, err := newTestOpenRouter(server.URL).Chat(context.Background(), &ChatRequest{
			Messages: []Message{{Role: "user", Content: "test"}},
		})
		if err != nil {
			t.Fatalf("Chat() error = %v", err)
		}
		if result.Attempts != 2 || calls.Load() != 2 {
			t.Errorf("Attempts = %d, calls = %d, want 2", result.Attempts, calls.Load())
		}
	})

	t.Run("injects nonce on 422 retry", func(t *testing.T) {
		var calls atomic.Int32
		var secondText string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Messages []struct {
					Content string `json:"content"`
				} `json:"messages"`
			}
			json.NewDecoder(r.Body).Decode(&req)
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusUnprocessableEntity)
				return
			}
			secondText = req.Messages[0].Content
			json.NewEncoder(w).Encode(chatResponse("ok"))
		}))
		defer server.Close()

		if _, err := newTestOpenRouter(server.URL).Chat(context.Background(), &ChatRequest{
			Messages: []Message{{Role: "user", Content: "test"}},
		}); err != nil {
			t.Fatalf("Chat() error = %v", err)
		}
		if !strings.Contains(secondText, "retry_") {
			t.Errorf("retried content = %q, want nonce", secondText)
		}
	})

	t.Run("does not retry client errors", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error": {"message": "bad model"}}`))
		}))
		defer server.Close()

		result, err := newTestOpenRouter(server.URL).Chat(context.Background(), &ChatRequest{
			Messages: []Message{{Role: "user", Content: "test"}},
		})
		var se *StatusError
		if !errors.As(err, &se) || se.StatusCode != http.StatusBadRequest {
			t.Fatalf("error = %v, want StatusError 400", err)
		}
		if calls.Load() != 1 {
			t.Errorf("calls = %d, want 1", calls.Load())
		}
		if result.Success || result.ErrorType != "http_error" {
			t.Errorf("Success = %v, ErrorType = %s", result.Success, result.ErrorType)
		}
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		client := NewOpenRouterClient(OpenRouterConfig{
			APIKey:     "test-key",
			BaseURL:    server.URL,
			MaxRetries: 2,
			RetryDelay: time.Millisecond,
		})
		_, err := client.Chat(context.Background(), &ChatRequest{Messages: []Message{{Role: "user", Content: "x"}}})
		if err == nil {
			t.Fatal("expected error")
		}
		if calls.Load() != 2 {
			t.Errorf("calls = %d, want 2", calls.Load())
		}
	})

	t.Run("empty choices are retried", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				json.NewEncoder(w).Encode(map[string]any{"id": "x", "choices": []any{}})
				return
			}
			json.NewEncoder(w).Encode(chatResponse("ok"))
		}))
		defer server.Close()

		result, err := newTestOpenRouter(server.URL).Chat(context.Background(), &ChatRequest{
			Messages: []Message{{Role: "user", Content: "test"}},
		})
		if err != nil {
			t.Fatalf("Chat() error = %v", err)
		}
		if result.Content != "ok" {
			t.Errorf("Content = %q", result.Content)
		}
	})

	t.Run("non-retryable API error body", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"message": "content filtered", "code": "content_filter"},
			})
		}))
		defer server.Close()

		_, err := newTestOpenRouter(server.URL).Chat(context.Background(), &ChatRequest{
			Messages: []Message{{Role: "user", Content: "test"}},
		})
		if err == nil || !strings.Contains(err.Error(), "content filtered") {
			t.Errorf("error = %v, want content filter error", err)
		}
		if calls.Load() != 1 {
			t.Errorf("calls = %d, want 1", calls.Load())
		}
	})

	t.Run("malformed body is not retried", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.Write([]byte("{not json"))
		}))
		defer server.Close()

		_, err := newTestOpenRouter(server.URL).Chat(context.Background(), &ChatRequest{
			Messages: []Message{{Role: "user", Content: "test"}},
		})
		if err == nil {
			t.Fatal("Chat() error = nil, want unmarshal error")
		}
		if calls.Load() != 1 {
			t.Errorf("calls = %d, want 1", calls.Load())
		}
	})

	t.Run("context cancellation", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(chatResponse("late"))
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := newTestOpenRouter(server.URL).Chat(ctx, &ChatRequest{
			Messages: []Message{{Role: "user", Content: "test"}},
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"network", errors.New("connection reset"), true},
		{"transient body", errTransient, true},
		{"server error", &StatusError{Provider: "OpenRouter", StatusCode: 502}, true},
		{"rate limited", &StatusError{Provider: "OpenRouter", StatusCode: 429}, true},
		{"bad request", &StatusError{Provider: "OpenRouter", StatusCode: 400}, false},
		{"unrecoverable", retry.Unrecoverable(errors.New("content filter")), false},
		{"unrecoverable status", retry.Unrecoverable(&StatusError{StatusCode: 503}), false},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryable(tt.err); got != tt.want {
				t.Errorf("isRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestOpenRouterClient_Config(t *testing.T) {
	client := NewOpenRouterClient(OpenRouterConfig{APIKey: "test-key"})

	if client.Name() != OpenRouterName {
		t.Errorf("Name() = %s, want %s", client.Name(), OpenRouterName)
	}
	if client.baseURL != OpenRouterBaseURL {
		t.Errorf("baseURL = %s, want %s", client.baseURL, OpenRouterBaseURL)
	}
	if client.Model() != DefaultOpenRouterModel {
		t.Errorf("Model() = %s", client.Model())
	}
	if client.maxRetries != 3 {
		t.Errorf("maxRetries = %d, want 3", client.maxRetries)
	}
}

func TestInjectNonce(t *testing.T) {
	req := &openRouterRequest{Messages: []openRouterMessage{
		{Role: "system", Content: "sys"},
		{Role: "user", Content: []openRouterContent{{Type: "text", Text: "prompt"}, {Type: "image_url"}}},
	}}
	injectNonce(req, 1)

	parts := req.Messages[1].Content.([]openRouterContent)
	if !strings.HasPrefix(parts[0].Text, "prompt\n<!-- retry_1_id: ") {
		t.Errorf("text part = %q", parts[0].Text)
	}
	if req.Messages[0].Content != "sys" {
		t.Error("system message must not change")
	}
}

// TestOpenRouterIntegration runs a real call against the OpenRouter API.
// Requires OPENROUTER_API_KEY.
func TestOpenRouterIntegration(t *testing.T) {
	cfg := LoadTestConfig()
	if !cfg.HasOpenRouter() {
		t.Skip("OPENROUTER_API_KEY not set - skipping integration test")
	}

	client := NewOpenRouterClient(OpenRouterConfig{APIKey: cfg.OpenRouterAPIKey})
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := client.Chat(ctx, &ChatRequest{
		Messages: []Message{
			{Role: "user", Content: `Return exactly this JSON: {"greeting": "hello"}`},
		},
		ResponseFormat: &ResponseFormat{Type: "json_object"},
		MaxTokens:      50,
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	t.Logf("Response: %s (model %s, %d tokens)", result.Content, result.ModelUsed, result.TotalTokens)
}
