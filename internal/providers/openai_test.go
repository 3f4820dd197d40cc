package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func openAICompletion(content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			},
		},
		"usage": map[string]any{"prompt_tokens": 12, "completion_tokens": 4, "total_tokens": 16},
	}
}

func TestOpenAIClient_Chat(t *testing.T) {
	t.Run("vision request", func(t *testing.T) {
		var body map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
				t.Errorf("unexpected authorization: %s", auth)
			}
			json.NewDecoder(r.Body).Decode(&body)
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(openAICompletion(`{"is_medical_report": false, "error": "nope"}`))
		}))
		defer server.Close()

		client := NewOpenAIClient(OpenAIConfig{APIKey: "sk-test", BaseURL: server.URL, MaxRetries: 1})
		result, err := client.Chat(context.Background(), &ChatRequest{
			Messages: []Message{{
				Role:    "user",
				Content: "Analyze this",
				Images:  []Image{{Data: []byte{1, 2, 3}, MIME: "image/png"}},
			}},
			ResponseFormat: &ResponseFormat{
				Type:       "json_schema",
				JSONSchema: json.RawMessage(`{"name":"medical_report","strict":false,"schema":{"type":"object"}}`),
			},
		})
		if err != nil {
			t.Fatalf("Chat() error = %v", err)
		}
		if !result.Success {
			t.Errorf("expected Success, got %s: %s", result.ErrorType, result.ErrorMessage)
		}
		if result.Provider != OpenAIName || result.TotalTokens != 16 {
			t.Errorf("Provider = %s, TotalTokens = %d", result.Provider, result.TotalTokens)
		}
		if len(result.ParsedJSON) == 0 {
			t.Error("expected ParsedJSON to be set")
		}

		if body["model"] != DefaultOpenAIModel {
			t.Errorf("model = %v, want %s", body["model"], DefaultOpenAIModel)
		}
		rf, _ := body["response_format"].(map[string]any)
		if rf["type"] != "json_schema" {
			t.Errorf("response_format = %v", rf)
		}
		messages, _ := body["messages"].([]any)
		if len(messages) != 1 {
			t.Fatalf("messages = %v", messages)
		}
		msg, _ := messages[0].(map[string]any)
		parts, _ := msg["content"].([]any)
		if len(parts) != 2 {
			t.Fatalf("content parts = %v, want text and image", msg["content"])
		}
		imagePart, _ := parts[1].(map[string]any)
		imageURL, _ := imagePart["image_url"].(map[string]any)
		if url, _ := imageURL["url"].(string); !strings.HasPrefix(url, "data:image/png;base64,") {
			t.Errorf("image url = %q", url)
		}
	})

	t.Run("API error maps to StatusError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": {"message": "invalid api key", "type": "invalid_request_error"}}`))
		}))
		defer server.Close()

		client := NewOpenAIClient(OpenAIConfig{APIKey: "sk-bad", BaseURL: server.URL, MaxRetries: 1})
		result, err := client.Chat(context.Background(), &ChatRequest{Messages: []Message{{Role: "user", Content: "hi"}}})

		var se *StatusError
		if !errors.As(err, &se) || se.StatusCode != http.StatusUnauthorized {
			t.Fatalf("error = %v, want StatusError 401", err)
		}
		if se.Retryable() {
			t.Error("401 should not be retryable")
		}
		if result.Success {
			t.Error("expected Success = false")
		}
	})

	t.Run("missing API key", func(t *testing.T) {
		client := NewOpenAIClient(OpenAIConfig{})
		if _, err := client.Chat(context.Background(), &ChatRequest{}); !errors.Is(err, ErrMissingAPIKey) {
			t.Errorf("error = %v, want ErrMissingAPIKey", err)
		}
	})
}

func TestOpenAIResponseFormat(t *testing.T) {
	if rf, err := openAIResponseFormat(nil); rf != nil || err != nil {
		t.Errorf("nil format = %v, %v", rf, err)
	}

	rf, err := openAIResponseFormat(&ResponseFormat{Type: "json_object"})
	if err != nil || rf.OfJSONObject == nil {
		t.Errorf("json_object = %+v, %v", rf, err)
	}

	rf, err = openAIResponseFormat(&ResponseFormat{Type: "json_schema", JSONSchema: json.RawMessage(`{"schema":{"type":"object"}}`)})
	if err != nil || rf.OfJSONSchema == nil {
		t.Fatalf("json_schema = %+v, %v", rf, err)
	}
	if rf.OfJSONSchema.JSONSchema.Name != "response" {
		t.Errorf("default name = %q, want response", rf.OfJSONSchema.JSONSchema.Name)
	}

	if _, err := openAIResponseFormat(&ResponseFormat{Type: "xml"}); err == nil {
		t.Error("unsupported type should fail")
	}
}
