package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const MockClientName = "mock"

// MockResponse is one scripted reply.
type MockResponse struct {
	Text string
	Err  error
}

// MockClient is an LLMClient for testing. Scripted responses are consumed in
// order; once exhausted, ResponseText is returned.
type MockClient struct {
	// Configurable behavior
	Latency      time.Duration
	ShouldFail   bool
	FailAfter    int // Fail after N requests (0 = never)
	ResponseText string
	ResponseJSON json.RawMessage

	mu       sync.Mutex
	script   []MockResponse
	requests []*ChatRequest

	// State
	requestCount atomic.Int64
}

// NewMockClient creates a new mock client with sensible defaults.
func NewMockClient() *MockClient {
	return &MockClient{
		ResponseText: "mock response",
	}
}

// Script queues responses returned by subsequent calls.
func (c *MockClient) Script(responses ...MockResponse) *MockClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.script = append(c.script, responses...)
	return c
}

// Name returns the client identifier.
func (c *MockClient) Name() string {
	return MockClientName
}

// Chat sends a mock chat request.
func (c *MockClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	start := time.Now()
	count := c.requestCount.Add(1)

	c.mu.Lock()
	c.requests = append(c.requests, req)
	var next *MockResponse
	if len(c.script) > 0 {
		next = &c.script[0]
		c.script = c.script[1:]
	}
	c.mu.Unlock()

	result := &ChatResult{
		RequestID: fmt.Sprintf("mock-%d", count),
		Provider:  MockClientName,
		ModelUsed: req.Model,
		Attempts:  1,
	}

	fail := func(err error) (*ChatResult, error) {
		result.Success = false
		result.ErrorType = "mock_failure"
		result.ErrorMessage = err.Error()
		result.ExecutionTime = time.Since(start)
		return result, err
	}

	if c.ShouldFail {
		return fail(fmt.Errorf("mock client configured to fail"))
	}
	if c.FailAfter > 0 && int(count) > c.FailAfter {
		return fail(fmt.Errorf("mock client failed after %d requests", c.FailAfter))
	}

	if c.Latency > 0 {
		select {
		case <-time.After(c.Latency):
		case <-ctx.Done():
			result.ErrorType = "context_cancelled"
			result.ErrorMessage = ctx.Err().Error()
			return result, ctx.Err()
		}
	} else if err := ctx.Err(); err != nil {
		result.ErrorType = "context_cancelled"
		result.ErrorMessage = err.Error()
		return result, err
	}

	content := c.ResponseText
	if next != nil {
		if next.Err != nil {
			return fail(next.Err)
		}
		content = next.Text
	} else if req.ResponseFormat != nil && len(c.ResponseJSON) > 0 {
		content = string(c.ResponseJSON)
		result.ParsedJSON = c.ResponseJSON
	}

	result.Success = true
	result.Content = content
	result.ExecutionTime = time.Since(start)

	// Rough token estimate
	promptTokens := 0
	for _, m := range req.Messages {
		promptTokens += len(m.Content) / 4
	}
	result.PromptTokens = promptTokens
	result.CompletionTokens = len(content) / 4
	result.TotalTokens = result.PromptTokens + result.CompletionTokens

	return result, nil
}

// RequestCount returns the number of requests made.
func (c *MockClient) RequestCount() int64 {
	return c.requestCount.Load()
}

// Requests returns the requests received so far.
func (c *MockClient) Requests() []*ChatRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*ChatRequest(nil), c.requests...)
}

// LastRequest returns the most recent request, or nil.
func (c *MockClient) LastRequest() *ChatRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.requests) == 0 {
		return nil
	}
	return c.requests[len(c.requests)-1]
}

// Reset clears the request history and counter.
func (c *MockClient) Reset() {
	c.mu.Lock()
	c.requests = nil
	c.script = nil
	c.mu.Unlock()
	c.requestCount.Store(0)
}

var _ LLMClient = (*MockClient)(nil)
