package imageprompts

import (
	"encoding/json"
	"fmt"

	"github.com/jackzampolin/fable/internal/book"
	"github.com/jackzampolin/fable/internal/prompts"
	"github.com/jackzampolin/fable/internal/providers"
)

// PageRef identifies one page needing an illustration prompt.
type PageRef struct {
	Index int
	Text  string
}

// Input contains the data needed to build an image prompt request for
// one batch of pages.
type Input struct {
	Concept     book.Concept
	Characters  []book.Character
	AspectRatio string
	Pages       []PageRef
}

type userData struct {
	ConceptTitle   string
	StyleNotes     string
	AspectRatio    string
	CharacterSheet string
	Pages          []PageRef
}

// BuildRequest builds the chat request for one image prompt batch.
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

	userPrompt := prompts.MustRender(user.Text, userData{
		ConceptTitle:   input.Concept.Title,
		StyleNotes:     input.Concept.StyleNotes,
		AspectRatio:    input.AspectRatio,
		CharacterSheet: book.CharacterSheet(input.Characters),
		Pages:          input.Pages,
	})

	return &providers.ChatRequest{
		System:         system.Text,
		Messages:       []providers.Message{{Role: "user", Content: userPrompt}},
		ResponseFormat: responseFormat(),
		Temperature:    0.6,
		MaxTokens:      4096,
	}, nil
}

// PagePrompt is one page's illustration prompt.
type PagePrompt struct {
	Index       int    `json:"index"`
	ImagePrompt string `json:"image_prompt"`
}

// Result is the parsed image prompt output for one batch.
type Result struct {
	Pages []PagePrompt `json:"pages"`
}

// ParseResult parses validated LLM output and checks that every page
// was one of the requested pages.
func ParseResult(parsedJSON json.RawMessage, requested []PageRef) (*Result, error) {
	var result Result
	if err := json.Unmarshal(parsedJSON, &result); err != nil {
		return nil, fmt.Errorf("failed to parse image prompts: %w", err)
	}
	if len(result.Pages) == 0 {
		return nil, fmt.Errorf("no pages in image prompt response")
	}

	want := make(map[int]bool, len(requested))
	for _, p := range requested {
		want[p.Index] = true
	}
	for _, p := range result.Pages {
		if !want[p.Index] {
			return nil, fmt.Errorf("prompt for page %d was not requested", p.Index)
		}
	}
	return &result, nil
}
