package imageprompts

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
	SystemPromptKey = "stages.imageprompts.system"
	UserPromptKey   = "stages.imageprompts.user"
)

// RegisterPrompts registers the image prompt prompts with the resolver.
func RegisterPrompts(r *prompts.Resolver) {
	r.Register(prompts.EmbeddedPrompt{
		Key:         SystemPromptKey,
		Text:        systemPrompt,
		Description: "Image prompt system prompt - writes per-page illustration prompts with verbatim character descriptions",
	})
	r.Register(prompts.EmbeddedPrompt{
		Key:         UserPromptKey,
		Text:        userPromptTmpl,
		Description: "Image prompt user prompt template",
	})
}
