package characters

import (
	"encoding/json"
	"fmt"

	"github.com/jackzampolin/fable/internal/book"
	"github.com/jackzampolin/fable/internal/prompts"
	"github.com/jackzampolin/fable/internal/providers"
)

// Input contains the data needed to build a character cast request.
type Input struct {
	Brief   book.Brief
	Concept book.Concept
}

type promptData struct {
	Audience     string
	AgeRange     string
	Theme        string
	Premise      string
	ConceptTitle string
	Logline      string
	StyleNotes   string
}

// BuildRequest builds the chat request for character generation.
func BuildRequest(r *prompts.Resolver, input Input) (*providers.ChatRequest, error) {
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
		ConceptTitle: input.Concept.Title,
		Logline:      input.Concept.Logline,
		StyleNotes:   input.Concept.StyleNotes,
	})

	return &providers.ChatRequest{
		System:         system.Text,
		Messages:       []providers.Message{{Role: "user", Content: userPrompt}},
		ResponseFormat: responseFormat(),
		Temperature:    0.7,
		MaxTokens:      2048,
	}, nil
}

// Result is the parsed character cast output.
type Result struct {
	Characters []book.Character `json:"characters"`
}

// ParseResult parses validated LLM output into a character cast.
func ParseResult(parsedJSON json.RawMessage) (*Result, error) {
	var result Result
	if err := json.Unmarshal(parsedJSON, &result); err != nil {
		return nil, fmt.Errorf("failed to parse characters: %w", err)
	}
	if len(result.Characters) == 0 {
		return nil, fmt.Errorf("no characters in response")
	}
	return &result, nil
}
