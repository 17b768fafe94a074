// Package server wires the fable HTTP server: endpoint routing, service
// injection, and lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/jackzampolin/fable/internal/api"
	"github.com/jackzampolin/fable/internal/book"
	"github.com/jackzampolin/fable/internal/config"
	"github.com/jackzampolin/fable/internal/engine"
	"github.com/jackzampolin/fable/internal/home"
	"github.com/jackzampolin/fable/internal/imagejob"
	"github.com/jackzampolin/fable/internal/prompts"
	"github.com/jackzampolin/fable/internal/prompts/characters"
	"github.com/jackzampolin/fable/internal/prompts/concepts"
	"github.com/jackzampolin/fable/internal/prompts/imageprompts"
	"github.com/jackzampolin/fable/internal/prompts/outline"
	"github.com/jackzampolin/fable/internal/prompts/storytext"
	"github.com/jackzampolin/fable/internal/providers"
	"github.com/jackzampolin/fable/internal/server/endpoints"
	"github.com/jackzampolin/fable/internal/svcctx"
)

// Server is the main Fable HTTP server.
type Server struct {
	httpServer *http.Server
	registry   *providers.Registry
	resolver   *prompts.Resolver
	configMgr  *config.Manager
	logger     *slog.Logger

	// services holds all core services for context enrichment
	services *svcctx.Services

	// endpoints registry for HTTP routes
	endpointRegistry *api.Registry

	mu      sync.RWMutex
	running bool
}

// Config holds server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1)
	Host string
	// Port is the port to listen on (default: 8080)
	Port string
	// Home is the fable home directory
	Home *home.Dir
	// ConfigManager provides configuration with hot-reload support
	ConfigManager *config.Manager
	// Logger is the structured logger to use
	Logger *slog.Logger
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Home == nil {
		return nil, errors.New("home directory is required")
	}
	if cfg.ConfigManager == nil {
		return nil, errors.New("config manager is required")
	}
	if err := cfg.Home.EnsureExists(); err != nil {
		return nil, fmt.Errorf("failed to prepare home directory: %w", err)
	}

	// Provider registry with config hot reload
	registry := providers.NewRegistry()
	registry.SetLogger(cfg.Logger)
	registry.Reload(cfg.ConfigManager.Get().ToProviderRegistryConfig())

	// Prompt resolver with embedded defaults and config overrides
	resolver := prompts.NewResolver(cfg.Logger)
	concepts.RegisterPrompts(resolver)
	characters.RegisterPrompts(resolver)
	outline.RegisterPrompts(resolver)
	storytext.RegisterPrompts(resolver)
	imageprompts.RegisterPrompts(resolver)
	resolver.SetOverrides(cfg.ConfigManager.Get().PromptOverrides)

	cfg.ConfigManager.OnChange(func(c *config.Config) {
		registry.Reload(c.ToProviderRegistryConfig())
		resolver.SetOverrides(c.PromptOverrides)
		cfg.Logger.Info("providers and prompt overrides reloaded from config")
	})

	// Job store per configured backend
	conf := cfg.ConfigManager.Get()
	var jobStore imagejob.Store
	switch conf.Jobs.Backend {
	case "memory":
		jobStore = imagejob.NewMemStore()
	default:
		fileStore := imagejob.NewFileStore(cfg.Home.JobsPath(), cfg.Logger)
		fileStore.SetRetention(conf.JobRetention())
		jobStore = fileStore
	}

	engineClient := engine.NewClient(conf.EngineWebhookURL())

	s := &Server{
		registry:  registry,
		resolver:  resolver,
		configMgr: cfg.ConfigManager,
		logger:    cfg.Logger,
		services: &svcctx.Services{
			Books:     book.NewStore(cfg.Home.BooksPath(), cfg.Logger),
			Jobs:      jobStore,
			Submitter: imagejob.NewSubmitter(jobStore, engineClient, cfg.Logger),
			Registry:  registry,
			Engine:    engineClient,
			Resolver:  resolver,
			Config:    cfg.ConfigManager,
			Home:      cfg.Home,
			Logger:    cfg.Logger,
		},
	}

	// Create endpoint registry and register all endpoints
	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All(endpoints.Config{SwaggerSpecPath: endpoints.GetSwaggerSpecPath()}) {
		s.endpointRegistry.Register(ep)
	}

	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, s.requireInit)

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:      s.withServices(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute, // generate calls block on the upstream LLM
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// Start starts the server. It blocks until the context is cancelled or
// an error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	// Watch for config file changes
	s.configMgr.WatchConfig()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			s.setNotRunning()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

// shutdown performs graceful shutdown of the HTTP server.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	s.setNotRunning()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Registry returns the provider registry.
func (s *Server) Registry() *providers.Registry {
	return s.registry
}

// Handler returns the fully wired HTTP handler. Used by tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if s.services != nil {
			ctx = svcctx.WithServices(ctx, s.services)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireInit is middleware that ensures the server is fully initialized.
func (s *Server) requireInit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svcctx.ServicesFrom(r.Context()) == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"server not fully initialized"}`))
			return
		}
		next(w, r)
	}
}
