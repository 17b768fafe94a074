package config

// DefaultConfig returns the built-in configuration. Values here are the
// viper defaults; a config file and FABLE_ environment variables override
// them.
func DefaultConfig() *Config {
	return &Config{
		LLMProviders: map[string]LLMProviderCfg{
			"anthropic": {
				Type:      "anthropic",
				Model:     "claude-sonnet-4-5",
				APIKey:    "${ANTHROPIC_API_KEY}",
				MaxTokens: 4096,
				Enabled:   true,
			},
			"openai": {
				Type:      "openai",
				Model:     "gpt-4o",
				APIKey:    "${OPENAI_API_KEY}",
				MaxTokens: 4096,
				Enabled:   false,
			},
		},
		ImageEngine: ImageEngineCfg{
			WebhookURL: "${FABLE_ENGINE_WEBHOOK_URL}",
			Models:     []string{"flux-schnell", "seedream", "nanobanana"},
		},
		Jobs: JobsCfg{
			Backend:          "file",
			RetentionMinutes: 60,
			SweepProbability: 0.02,
		},
		Defaults: DefaultsCfg{
			LLMProvider:         "anthropic",
			ImageModels:         []string{"flux-schnell"},
			AspectRatio:         "3:2",
			PollIntervalSeconds: 3,
			PollTimeoutSeconds:  300,
			TextBatchSize:       3,
			OutlineBatches:      2,
		},
		Rules: RulesCfg{
			BannedWords:         []string{},
			MaxSyllablesPerWord: 0, // 0 disables the syllable check
		},
	}
}
