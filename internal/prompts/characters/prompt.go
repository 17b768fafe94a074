package characters

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
	SystemPromptKey = "stages.characters.system"
	UserPromptKey   = "stages.characters.user"
)

// RegisterPrompts registers the character prompts with the resolver.
func RegisterPrompts(r *prompts.Resolver) {
	r.Register(prompts.EmbeddedPrompt{
		Key:         SystemPromptKey,
		Text:        systemPrompt,
		Description: "Character cast system prompt - defines recurring characters with stable visual descriptions",
	})
	r.Register(prompts.EmbeddedPrompt{
		Key:         UserPromptKey,
		Text:        userPromptTmpl,
		Description: "Character cast user prompt template",
	})
}
