package outline

import (
	"encoding/json"
	"fmt"

	"github.com/jackzampolin/fable/internal/book"
	"github.com/jackzampolin/fable/internal/prompts"
	"github.com/jackzampolin/fable/internal/providers"
)

// Input contains the data needed to build an outline request for one
// page range. EarlierBeats carries already-outlined pages so a later
// batch continues the arc instead of restarting it.
type Input struct {
	Brief        book.Brief
	Concept      book.Concept
	Characters   []book.Character
	TotalPages   int
	StartPage    int // inclusive, zero-based
	EndPage      int // inclusive
	EarlierBeats string
}

type promptData struct {
	Audience       string
	AgeRange       string
	Theme          string
	Premise        string
	ConceptTitle   string
	Logline        string
	CharacterSheet string
	TotalPages     int
	StartPage      int
	EndPage        int
	EarlierBeats   string
}

// BuildRequest builds the chat request for one outline batch.
func BuildRequest(r *prompts.Resolver, input Input) (*providers.ChatRequest, error) {
	if input.StartPage > input.EndPage {
		return nil, fmt.Errorf("invalid page range %d-%d", input.StartPage, input.EndPage)
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
		Audience:       input.Brief.Audience,
		AgeRange:       input.Brief.AgeRange,
		Theme:          input.Brief.Theme,
		Premise:        input.Brief.Premise,
		ConceptTitle:   input.Concept.Title,
		Logline:        input.Concept.Logline,
		CharacterSheet: book.CharacterSheet(input.Characters),
		TotalPages:     input.TotalPages,
		StartPage:      input.StartPage,
		EndPage:        input.EndPage,
		EarlierBeats:   input.EarlierBeats,
	})

	return &providers.ChatRequest{
		System:         system.Text,
		Messages:       []providers.Message{{Role: "user", Content: userPrompt}},
		ResponseFormat: responseFormat(),
		Temperature:    0.7,
		MaxTokens:      4096,
	}, nil
}

// PageBeat is one outlined page.
type PageBeat struct {
	Index   int    `json:"index"`
	Outline string `json:"outline"`
}

// Result is the parsed outline output for one batch.
type Result struct {
	Pages []PageBeat `json:"pages"`
}

// ParseResult parses validated LLM output and checks that every beat
// falls inside the requested range.
func ParseResult(parsedJSON json.RawMessage, startPage, endPage int) (*Result, error) {
	var result Result
	if err := json.Unmarshal(parsedJSON, &result); err != nil {
		return nil, fmt.Errorf("failed to parse outline: %w", err)
	}
	if len(result.Pages) == 0 {
		return nil, fmt.Errorf("no pages in outline response")
	}
	for _, p := range result.Pages {
		if p.Index < startPage || p.Index > endPage {
			return nil, fmt.Errorf("outline page %d outside requested range %d-%d", p.Index, startPage, endPage)
		}
	}
	return &result, nil
}
