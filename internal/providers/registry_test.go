package providers

import (
	"context"
	"sort"
	"testing"
)

func TestRegistry(t *testing.T) {
	t.Run("register and get", func(t *testing.T) {
		r := NewRegistry()
		mock := NewMockClient()
		r.RegisterLLM("mock", mock)

		got, err := r.GetLLM("mock")
		if err != nil {
			t.Fatalf("GetLLM() error = %v", err)
		}
		if got != mock {
			t.Error("GetLLM returned a different client")
		}
	})

	t.Run("get unknown provider", func(t *testing.T) {
		r := NewRegistry()
		if _, err := r.GetLLM("nope"); err == nil {
			t.Error("expected error for unknown provider")
		}
	})

	t.Run("reload replaces clients", func(t *testing.T) {
		r := NewRegistry()
		r.RegisterLLM("stale", NewMockClient())

		r.Reload(RegistryConfig{
			LLMProviders: map[string]LLMProviderConfig{
				"anthropic": {Type: "anthropic", Model: "claude-sonnet-4-5", APIKey: "k", Enabled: true},
				"mock":      {Type: "mock", Enabled: true},
				"disabled":  {Type: "openai", Enabled: false},
				"weird":     {Type: "cobol", Enabled: true},
			},
		})

		if _, err := r.GetLLM("stale"); err == nil {
			t.Error("stale client survived reload")
		}
		if _, err := r.GetLLM("disabled"); err == nil {
			t.Error("disabled provider was registered")
		}
		if _, err := r.GetLLM("weird"); err == nil {
			t.Error("unknown provider type was registered")
		}

		names := r.LLMNames()
		sort.Strings(names)
		if len(names) != 2 || names[0] != "anthropic" || names[1] != "mock" {
			t.Errorf("LLMNames() = %v", names)
		}
	})
}

func TestMockClient(t *testing.T) {
	ctx := context.Background()

	t.Run("fail after N requests", func(t *testing.T) {
		c := NewMockClient()
		c.FailAfter = 2

		for i := 0; i < 2; i++ {
			if _, err := c.Chat(ctx, &ChatRequest{}); err != nil {
				t.Fatalf("request %d failed early: %v", i+1, err)
			}
		}
		if _, err := c.Chat(ctx, &ChatRequest{}); err == nil {
			t.Error("expected failure on third request")
		}
		if c.RequestCount() != 3 {
			t.Errorf("RequestCount() = %d, want 3", c.RequestCount())
		}
	})

	t.Run("json response", func(t *testing.T) {
		c := NewMockClient()
		c.ResponseJSON = []byte(`{"ok": true}`)

		res, err := c.Chat(ctx, &ChatRequest{})
		if err != nil {
			t.Fatalf("Chat() error = %v", err)
		}
		if string(res.ParsedJSON) != `{"ok": true}` {
			t.Errorf("ParsedJSON = %s", res.ParsedJSON)
		}
	})
}
