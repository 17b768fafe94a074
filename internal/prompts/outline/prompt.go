package outline

import (
	_ "embed"

	"github.com/jackzampolin/fable/internal/prompts"
)

//go:embed system.tmpl
var systemPrompt string

//go:embed user.tmpl
var userPromptTmpl string

// Prompt keys
const (
	SystemPromptKey = "stages.outline.system"
	UserPromptKey   = "stages.outline.user"
)

// RegisterPrompts registers the outline prompts with the resolver.
func RegisterPrompts(r *prompts.Resolver) {
	r.Register(prompts.EmbeddedPrompt{
		Key:         SystemPromptKey,
		Text:        systemPrompt,
		Description: "Outline system prompt - writes per-page story beats for a page range",
	})
	r.Register(prompts.EmbeddedPrompt{
		Key:         UserPromptKey,
		Text:        userPromptTmpl,
		Description: "Outline user prompt template",
	})
}
