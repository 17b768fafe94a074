package config

// Config holds fable configuration.
// Stored at: {home}/config.yaml
type Config struct {
	LLMProviders map[string]LLMProviderCfg `mapstructure:"llm_providers" yaml:"llm_providers"`
	ImageEngine  ImageEngineCfg            `mapstructure:"image_engine" yaml:"image_engine"`
	Jobs         JobsCfg                   `mapstructure:"jobs" yaml:"jobs"`
	Defaults     DefaultsCfg               `mapstructure:"defaults" yaml:"defaults"`
	Rules        RulesCfg                  `mapstructure:"rules" yaml:"rules"`

	// PromptOverrides maps prompt keys (stages.outline.system) to
	// replacement text, winning over the embedded defaults.
	PromptOverrides map[string]string `mapstructure:"prompt_overrides" yaml:"prompt_overrides,omitempty"`
}

// LLMProviderCfg configures an LLM provider.
type LLMProviderCfg struct {
	Type      string `mapstructure:"type" yaml:"type"`             // "anthropic", "openai"
	Model     string `mapstructure:"model" yaml:"model"`           // Default model name
	APIKey    string `mapstructure:"api_key" yaml:"api_key"`       // API key (supports ${ENV_VAR} syntax)
	MaxTokens int    `mapstructure:"max_tokens" yaml:"max_tokens"` // Default completion budget
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
}

// ImageEngineCfg configures the external image generation workflow engine.
type ImageEngineCfg struct {
	// WebhookURL is the engine endpoint that accepts dispatches
	// (supports ${ENV_VAR} syntax). Empty means image generation is
	// unavailable; submissions fail with a configuration error.
	WebhookURL string `mapstructure:"webhook_url" yaml:"webhook_url"`

	// Models lists the image models the engine can route to.
	Models []string `mapstructure:"models" yaml:"models"`
}

// JobsCfg configures the image job store.
type JobsCfg struct {
	// Backend selects the store implementation: "file" or "memory".
	Backend string `mapstructure:"backend" yaml:"backend"`

	// RetentionMinutes is how long job records are kept before the
	// sweep deletes them.
	RetentionMinutes int `mapstructure:"retention_minutes" yaml:"retention_minutes"`

	// SweepProbability is the chance (0..1) that a status read triggers
	// a sweep. The sweep is opportunistic rather than scheduled.
	SweepProbability float64 `mapstructure:"sweep_probability" yaml:"sweep_probability"`
}

// DefaultsCfg specifies default selections for the builder.
type DefaultsCfg struct {
	LLMProvider         string   `mapstructure:"llm_provider" yaml:"llm_provider"`
	ImageModels         []string `mapstructure:"image_models" yaml:"image_models"`
	AspectRatio         string   `mapstructure:"aspect_ratio" yaml:"aspect_ratio"`
	PollIntervalSeconds int      `mapstructure:"poll_interval_seconds" yaml:"poll_interval_seconds"`
	PollTimeoutSeconds  int      `mapstructure:"poll_timeout_seconds" yaml:"poll_timeout_seconds"`
	TextBatchSize       int      `mapstructure:"text_batch_size" yaml:"text_batch_size"`
	OutlineBatches      int      `mapstructure:"outline_batches" yaml:"outline_batches"`
}

// RulesCfg configures the advisory content rules applied to generated text.
type RulesCfg struct {
	BannedWords         []string `mapstructure:"banned_words" yaml:"banned_words"`
	MaxSyllablesPerWord int      `mapstructure:"max_syllables_per_word" yaml:"max_syllables_per_word"`
}
