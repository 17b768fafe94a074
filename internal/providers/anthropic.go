package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	AnthropicName    = "anthropic"
	AnthropicBaseURL = "https://api.anthropic.com/v1"

	anthropicVersion = "2023-06-01"
)

// AnthropicConfig holds configuration for the Anthropic client.
type AnthropicConfig struct {
	APIKey       string
	BaseURL      string
	DefaultModel string
	MaxTokens    int // Default completion budget
	Timeout      time.Duration
	MaxRetries   int           // Max retry attempts (default: 3)
	RetryDelay   time.Duration // Base delay between retries (default: 1s)
}

// AnthropicClient implements LLMClient using the Anthropic Messages API.
type AnthropicClient struct {
	apiKey       string
	baseURL      string
	defaultModel string
	maxTokens    int
	client       *http.Client
	maxRetries   int
	retryDelay   time.Duration
}

// NewAnthropicClient creates a new Anthropic client.
func NewAnthropicClient(cfg AnthropicConfig) *AnthropicClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = AnthropicBaseURL
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = "claude-sonnet-4-5"
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 4096
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}

	return &AnthropicClient{
		apiKey:       cfg.APIKey,
		baseURL:      cfg.BaseURL,
		defaultModel: cfg.DefaultModel,
		maxTokens:    cfg.MaxTokens,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}
}

// Name returns the client identifier.
func (c *AnthropicClient) Name() string {
	return AnthropicName
}

// anthropicRequest is the Messages API request body.
type anthropicRequest struct {
	Model       string             `json:"model"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// anthropicResponse is the Messages API response body.
type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	StopReason string `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Chat sends a chat completion request.
func (c *AnthropicClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	start := time.Now()

	if c.apiKey == "" {
		return nil, fmt.Errorf("anthropic: %w", ErrMissingAPIKey)
	}

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	model := req.Model
	if model == "" {
		model = c.defaultModel
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}

	aReq := anthropicRequest{
		Model:       model,
		System:      req.System,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
		Messages:    make([]anthropicMessage, 0, len(req.Messages)),
	}
	for _, m := range req.Messages {
		aReq.Messages = append(aReq.Messages, anthropicMessage{Role: m.Role, Content: m.Content})
	}

	aResp, attempts, err := c.doRequest(ctx, "/messages", &aReq)

	result := &ChatResult{
		RequestID: requestID,
		Provider:  AnthropicName,
		ModelUsed: model,
		Attempts:  attempts,
	}

	if err != nil {
		result.Success = false
		result.ErrorType = "http_error"
		result.ErrorMessage = err.Error()
		result.TotalTime = time.Since(start)
		return result, err
	}

	for _, block := range aResp.Content {
		if block.Type == "text" {
			result.Content += block.Text
		}
	}

	result.Success = true
	result.PromptTokens = aResp.Usage.InputTokens
	result.CompletionTokens = aResp.Usage.OutputTokens
	result.TotalTokens = aResp.Usage.InputTokens + aResp.Usage.OutputTokens
	result.TotalTime = time.Since(start)

	if req.ResponseFormat != nil && req.ResponseFormat.Type == "json_schema" {
		parsed, err := ValidateStructured(req.ResponseFormat.JSONSchema, result.Content)
		if err != nil {
			result.Success = false
			result.ErrorType = "structured_output"
			result.ErrorMessage = err.Error()
			return result, fmt.Errorf("structured output validation failed: %w", err)
		}
		result.ParsedJSON = parsed
	}

	return result, nil
}

// doRequest posts to the Anthropic API with retry on transient failures.
// Returns the parsed response and the number of attempts made.
func (c *AnthropicClient) doRequest(ctx context.Context, path string, body *anthropicRequest) (*anthropicResponse, int, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, attempt, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(bodyBytes))
		if err != nil {
			return nil, attempt, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("anthropic-version", anthropicVersion)

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			c.sleepWithJitter(ctx, attempt)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			c.sleepWithJitter(ctx, attempt)
			continue
		}

		if c.shouldRetry(resp.StatusCode) {
			lastErr = &UpstreamError{StatusCode: resp.StatusCode, Message: extractErrorMessage(respBody)}
			c.sleepWithJitter(ctx, attempt)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			return nil, attempt + 1, &UpstreamError{StatusCode: resp.StatusCode, Message: extractErrorMessage(respBody)}
		}

		var aResp anthropicResponse
		if err := json.Unmarshal(respBody, &aResp); err != nil {
			return nil, attempt + 1, fmt.Errorf("failed to unmarshal response: %w", err)
		}
		return &aResp, attempt + 1, nil
	}

	return nil, c.maxRetries, fmt.Errorf("max retries (%d) exceeded: %w", c.maxRetries, lastErr)
}

// shouldRetry returns true for status codes that should be retried.
func (c *AnthropicClient) shouldRetry(statusCode int) bool {
	switch statusCode {
	case 429: // Rate limited
		return true
	case 529: // Anthropic overloaded
		return true
	default:
		return statusCode >= 500
	}
}

// sleepWithJitter waits with exponential backoff plus jitter, respecting
// context cancellation.
func (c *AnthropicClient) sleepWithJitter(ctx context.Context, attempt int) {
	delay := c.retryDelay * time.Duration(1<<attempt)
	delay += time.Duration(rand.Int63n(int64(c.retryDelay)))
	select {
	case <-ctx.Done():
	case <-time.After(delay):
	}
}

// extractErrorMessage pulls a human-readable message out of an Anthropic
// error body, falling back to the raw body.
func extractErrorMessage(body []byte) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	if len(body) > 512 {
		body = body[:512]
	}
	return string(body)
}
