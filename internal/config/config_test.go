package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestResolveEnvVars(t *testing.T) {
	t.Setenv("FABLE_TEST_KEY", "secret-123")

	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"plain string untouched", "anthropic", "anthropic"},
		{"env var resolved", "${FABLE_TEST_KEY}", "secret-123"},
		{"embedded env var", "key-${FABLE_TEST_KEY}-suffix", "key-secret-123-suffix"},
		{"missing var resolves empty", "${FABLE_NO_SUCH_VAR}", ""},
		{"empty string", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResolveEnvVars(tc.input); got != tc.want {
				t.Errorf("ResolveEnvVars(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestToProviderRegistryConfig(t *testing.T) {
	t.Setenv("FABLE_TEST_API_KEY", "resolved-key")

	cfg := &Config{
		LLMProviders: map[string]LLMProviderCfg{
			"anthropic": {
				Type:      "anthropic",
				Model:     "claude-sonnet-4-5",
				APIKey:    "${FABLE_TEST_API_KEY}",
				MaxTokens: 2048,
				Enabled:   true,
			},
		},
	}

	rc := cfg.ToProviderRegistryConfig()
	p, ok := rc.LLMProviders["anthropic"]
	if !ok {
		t.Fatal("anthropic provider missing")
	}
	if p.APIKey != "resolved-key" {
		t.Errorf("APIKey = %q, want resolved-key", p.APIKey)
	}
	if p.MaxTokens != 2048 || !p.Enabled {
		t.Errorf("unexpected provider config: %+v", p)
	}
}

func TestJobRetention(t *testing.T) {
	cfg := &Config{Jobs: JobsCfg{RetentionMinutes: 30}}
	if got := cfg.JobRetention(); got != 30*time.Minute {
		t.Errorf("JobRetention() = %v, want 30m", got)
	}

	cfg = &Config{}
	if got := cfg.JobRetention(); got != time.Hour {
		t.Errorf("JobRetention() = %v, want 1h default", got)
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("config file is empty")
	}
	for _, want := range []string{"llm_providers", "image_engine", "jobs"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("config file missing section %q", want)
		}
	}
}
