// Package prompts manages the prompt templates used by the book pipeline.
//
// Embedded .tmpl files in the stage subpackages are the source of truth.
// Each stage registers its prompts with a Resolver at startup; operators
// can replace any prompt text via the prompts section of the config file,
// which wins over the embedded default.
package prompts

// EmbeddedPrompt is a prompt loaded from an embedded .tmpl file.
type EmbeddedPrompt struct {
	Key         string   // Hierarchical key: stages.outline.system
	Text        string   // The prompt text (Go template)
	Description string   // Human-readable description
	Variables   []string // Extracted template variables
	Hash        string   // SHA256 of the text for change detection
}

// ResolvedPrompt is the result of resolving a key against overrides.
type ResolvedPrompt struct {
	Key        string   `json:"key"`
	Text       string   `json:"text"`
	Variables  []string `json:"variables,omitempty"`
	IsOverride bool     `json:"is_override"`
	Hash       string   `json:"hash"`
}
