package storytext

import (
	_ "embed"

	"github.com/jackzampolin/fable/internal/prompts"
)

//go:embed system.tmpl
var systemPromptTmpl string

//go:embed user.tmpl
var userPromptTmpl string

// Prompt keys
const (
	SystemPromptKey = "stages.text.system"
	UserPromptKey   = "stages.text.user"
)

// RegisterPrompts registers the story text prompts with the resolver.
func RegisterPrompts(r *prompts.Resolver) {
	r.Register(prompts.EmbeddedPrompt{
		Key:         SystemPromptKey,
		Text:        systemPromptTmpl,
		Description: "Story text system prompt template - writes page text at the brief's reading level",
	})
	r.Register(prompts.EmbeddedPrompt{
		Key:         UserPromptKey,
		Text:        userPromptTmpl,
		Description: "Story text user prompt template",
	})
}
