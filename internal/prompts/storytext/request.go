package storytext

import (
	"encoding/json"
	"fmt"

	"github.com/jackzampolin/fable/internal/book"
	"github.com/jackzampolin/fable/internal/prompts"
	"github.com/jackzampolin/fable/internal/providers"
)

// PageRef identifies one page to write, with its outline beat.
type PageRef struct {
	Index   int
	Outline string
}

// Input contains the data needed to build a story text request for one
// batch of pages. Rules is extra writing guidance appended to the system
// prompt (banned words, syllable limits).
type Input struct {
	Brief      book.Brief
	Concept    book.Concept
	Characters []book.Character
	Outline    string // full outline, all pages
	Pages      []PageRef
	Rules      string
}

type systemData struct {
	Rules string
}

type userData struct {
	ConceptTitle   string
	Logline        string
	Audience       string
	AgeRange       string
	ReadingLevel   string
	CharacterSheet string
	OutlineText    string
	Pages          []PageRef
}

// BuildRequest builds the chat request for one text batch.
func BuildRequest(r *prompts.Resolver, input Input) (*providers.ChatRequest, error) {
	if len(input.Pages) == 0 {
		return nil, fmt.Errorf("no pages requested")
	}

	system, err := r.Resolve(SystemPromptKey)
	if err != nil {
		return nil, err
	}
	user, err := r.Resolve(UserPromptKey)
	if err != nil {
		return nil, err
	}

	systemPrompt := prompts.MustRender(system.Text, systemData{Rules: input.Rules})
	userPrompt := prompts.MustRender(user.Text, userData{
		ConceptTitle:   input.Concept.Title,
		Logline:        input.Concept.Logline,
		Audience:       input.Brief.Audience,
		AgeRange:       input.Brief.AgeRange,
		ReadingLevel:   input.Brief.ReadingLevel,
		CharacterSheet: book.CharacterSheet(input.Characters),
		OutlineText:    input.Outline,
		Pages:          input.Pages,
	})

	return &providers.ChatRequest{
		System:         systemPrompt,
		Messages:       []providers.Message{{Role: "user", Content: userPrompt}},
		ResponseFormat: responseFormat(),
		Temperature:    0.7,
		MaxTokens:      4096,
	}, nil
}

// PageText is one written page.
type PageText struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Result is the parsed story text output for one batch.
type Result struct {
	Pages []PageText `json:"pages"`
}

// ParseResult parses validated LLM output and checks that every page
// was one of the requested pages.
func ParseResult(parsedJSON json.RawMessage, requested []PageRef) (*Result, error) {
	var result Result
	if err := json.Unmarshal(parsedJSON, &result); err != nil {
		return nil, fmt.Errorf("failed to parse story text: %w", err)
	}
	if len(result.Pages) == 0 {
		return nil, fmt.Errorf("no pages in text response")
	}

	want := make(map[int]bool, len(requested))
	for _, p := range requested {
		want[p.Index] = true
	}
	for _, p := range result.Pages {
		if !want[p.Index] {
			return nil, fmt.Errorf("text for page %d was not requested", p.Index)
		}
	}
	return &result, nil
}
