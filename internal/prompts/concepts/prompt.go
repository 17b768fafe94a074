package concepts

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
	SystemPromptKey = "stages.concepts.system"
	UserPromptKey   = "stages.concepts.user"
)

// RegisterPrompts registers the concept prompts with the resolver.
func RegisterPrompts(r *prompts.Resolver) {
	r.Register(prompts.EmbeddedPrompt{
		Key:         SystemPromptKey,
		Text:        systemPrompt,
		Description: "Concept generation system prompt - proposes distinct story concepts from a brief",
	})
	r.Register(prompts.EmbeddedPrompt{
		Key:         UserPromptKey,
		Text:        userPromptTmpl,
		Description: "Concept generation user prompt template",
	})
}
