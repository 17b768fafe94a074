package providers

import (
	"fmt"
	"log/slog"
	"sync"
)

// Registry holds references to LLM clients. It supports config-driven
// instantiation, hot-reload, and provides thread-safe access.
type Registry struct {
	mu         sync.RWMutex
	llmClients map[string]LLMClient
	logger     *slog.Logger
}

// NewRegistry creates a new empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		llmClients: make(map[string]LLMClient),
		logger:     slog.Default(),
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

// RegisterLLM registers an LLM client by name.
func (r *Registry) RegisterLLM(name string, client LLMClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.llmClients[name] = client
	if r.logger != nil {
		r.logger.Info("registered LLM client", "name", name)
	}
}

// GetLLM returns an LLM client by name.
func (r *Registry) GetLLM(name string) (LLMClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	client, ok := r.llmClients[name]
	if !ok {
		return nil, fmt.Errorf("LLM client not found: %s", name)
	}
	return client, nil
}

// LLMNames returns the names of all registered LLM clients.
func (r *Registry) LLMNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.llmClients))
	for name := range r.llmClients {
		names = append(names, name)
	}
	return names
}

// RegistryConfig drives Reload.
type RegistryConfig struct {
	// LLMProviders maps provider names to their config
	LLMProviders map[string]LLMProviderConfig
}

// LLMProviderConfig matches config.LLMProviderCfg with resolved API key.
type LLMProviderConfig struct {
	Type      string // "anthropic", "openai"
	Model     string // Default model name
	APIKey    string // Resolved API key
	MaxTokens int
	Enabled   bool
}

// Reload replaces the registered clients based on the given config.
// Disabled providers and unknown types are skipped. Called at startup
// and again from the config manager's change callback.
func (r *Registry) Reload(cfg RegistryConfig) {
	clients := make(map[string]LLMClient)

	for name, pc := range cfg.LLMProviders {
		if !pc.Enabled {
			continue
		}
		switch pc.Type {
		case "anthropic":
			clients[name] = NewAnthropicClient(AnthropicConfig{
				APIKey:       pc.APIKey,
				DefaultModel: pc.Model,
				MaxTokens:    pc.MaxTokens,
			})
		case "openai":
			clients[name] = NewOpenAIClient(OpenAIConfig{
				APIKey:       pc.APIKey,
				DefaultModel: pc.Model,
				MaxTokens:    pc.MaxTokens,
			})
		case "mock":
			clients[name] = NewMockClient()
		default:
			r.logger.Warn("unknown LLM provider type", "name", name, "type", pc.Type)
		}
	}

	r.mu.Lock()
	r.llmClients = clients
	r.mu.Unlock()

	r.logger.Info("provider registry reloaded", "llm_clients", len(clients))
}
