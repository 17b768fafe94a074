package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"
)

const MockClientName = "mock"

// MockClient is an LLMClient for testing.
type MockClient struct {
	// Configurable behavior
	Latency      time.Duration
	ShouldFail   bool
	FailAfter    int // Fail after N requests (0 = never)
	ResponseText string
	ResponseJSON json.RawMessage

	// State
	requestCount atomic.Int64
}

// NewMockClient creates a new mock client with sensible defaults.
func NewMockClient() *MockClient {
	return &MockClient{
		Latency:      time.Millisecond,
		ResponseText: "mock response",
	}
}

// Name returns the client identifier.
func (c *MockClient) Name() string {
	return MockClientName
}

// RequestCount returns the number of Chat calls made.
func (c *MockClient) RequestCount() int64 {
	return c.requestCount.Load()
}

// Chat returns the configured response after the configured latency.
func (c *MockClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	n := c.requestCount.Add(1)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(c.Latency):
	}

	if c.ShouldFail || (c.FailAfter > 0 && n > int64(c.FailAfter)) {
		return &ChatResult{
			Provider:     MockClientName,
			Success:      false,
			ErrorType:    "mock_failure",
			ErrorMessage: "mock configured to fail",
		}, fmt.Errorf("mock configured to fail")
	}

	result := &ChatResult{
		Content:          c.ResponseText,
		Provider:         MockClientName,
		ModelUsed:        "mock-model",
		Success:          true,
		Attempts:         1,
		PromptTokens:     10,
		CompletionTokens: 20,
		TotalTokens:      30,
	}
	if len(c.ResponseJSON) > 0 {
		result.Content = string(c.ResponseJSON)
		result.ParsedJSON = c.ResponseJSON
	}
	return result, nil
}
