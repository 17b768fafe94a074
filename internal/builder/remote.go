package builder

import (
	"context"
	"encoding/json"

	"github.com/jackzampolin/fable/internal/api"
	"github.com/jackzampolin/fable/internal/providers"
)

// RemoteLLM satisfies providers.LLMClient by proxying through the
// server's generate endpoint, so the stage runner can drive a remote
// server the same way it drives an in-process client.
type RemoteLLM struct {
	Client *api.Client

	// Provider selects a registered provider by name; empty uses the
	// server's configured default.
	Provider string
}

func (r *RemoteLLM) Name() string {
	if r.Provider != "" {
		return r.Provider
	}
	return "remote"
}

// generateRequest mirrors the generate endpoint's request body.
type generateRequest struct {
	Provider       string                    `json:"provider,omitempty"`
	Model          string                    `json:"model,omitempty"`
	System         string                    `json:"system,omitempty"`
	Messages       []providers.Message       `json:"messages"`
	Temperature    float64                   `json:"temperature,omitempty"`
	MaxTokens      int                       `json:"max_tokens,omitempty"`
	ResponseFormat *providers.ResponseFormat `json:"response_format,omitempty"`
}

// generateResponse mirrors the generate endpoint's response body.
type generateResponse struct {
	Content     string          `json:"content"`
	ParsedJSON  json.RawMessage `json:"parsed_json,omitempty"`
	Provider    string          `json:"provider"`
	Model       string          `json:"model"`
	TotalTokens int             `json:"total_tokens"`
	Attempts    int             `json:"attempts"`
}

func (r *RemoteLLM) Chat(ctx context.Context, req *providers.ChatRequest) (*providers.ChatResult, error) {
	body := generateRequest{
		Provider:       r.Provider,
		Model:          req.Model,
		System:         req.System,
		Messages:       req.Messages,
		Temperature:    req.Temperature,
		MaxTokens:      req.MaxTokens,
		ResponseFormat: req.ResponseFormat,
	}
	var resp generateResponse
	if err := r.Client.Post(ctx, "/api/generate", body, &resp); err != nil {
		return nil, err
	}
	return &providers.ChatResult{
		Content:     resp.Content,
		ParsedJSON:  resp.ParsedJSON,
		Provider:    resp.Provider,
		ModelUsed:   resp.Model,
		TotalTokens: resp.TotalTokens,
		Attempts:    resp.Attempts,
		Success:     true,
	}, nil
}
