package concepts

import (
	"encoding/json"
	"fmt"

	"github.com/jackzampolin/fable/internal/book"
	"github.com/jackzampolin/fable/internal/prompts"
	"github.com/jackzampolin/fable/internal/providers"
)

// DefaultCount is the number of concepts proposed per run.
const DefaultCount = 3

// Input contains the data needed to build a concept generation request.
type Input struct {
	Brief book.Brief
	Count int
}

// promptData flattens Input for the user template.
type promptData struct {
	Audience     string
	AgeRange     string
	Theme        string
	Premise      string
	ReadingLevel string
	PageCount    int
	Count        int
}

// BuildRequest builds the chat request for concept generation.
func BuildRequest(r *prompts.Resolver, input Input) (*providers.ChatRequest, error) {
	if input.Count <= 0 {
		input.Count = DefaultCount
	}

	system, err := r.Resolve(SystemPromptKey)
	if err != nil {
		return nil, err
	}
	user, err := r.Resolve(UserPromptKey)
	if err != nil {
		return nil, err
	}

	userPrompt := prompts.MustRender(user.Text, promptData{
		Audience:     input.Brief.Audience,
		AgeRange:     input.Brief.AgeRange,
		Theme:        input.Brief.Theme,
		Premise:      input.Brief.Premise,
		ReadingLevel: input.Brief.ReadingLevel,
		PageCount:    input.Brief.PageCount,
		Count:        input.Count,
	})

	return &providers.ChatRequest{
		System:         system.Text,
		Messages:       []providers.Message{{Role: "user", Content: userPrompt}},
		ResponseFormat: responseFormat(),
		Temperature:    0.8,
		MaxTokens:      2048,
	}, nil
}

// Result is the parsed concept generation output.
type Result struct {
	Concepts []book.Concept `json:"concepts"`
}

// ParseResult parses validated LLM output into concepts.
func ParseResult(parsedJSON json.RawMessage) (*Result, error) {
	var result Result
	if err := json.Unmarshal(parsedJSON, &result); err != nil {
		return nil, fmt.Errorf("failed to parse concepts: %w", err)
	}
	if len(result.Concepts) == 0 {
		return nil, fmt.Errorf("no concepts in response")
	}
	return &result, nil
}
