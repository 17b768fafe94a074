// Package svcctx provides service context for dependency injection via context.
// This package is separate from server to avoid import cycles with endpoints.
package svcctx

import (
	"context"
	"log/slog"

	"github.com/jackzampolin/fable/internal/book"
	"github.com/jackzampolin/fable/internal/config"
	"github.com/jackzampolin/fable/internal/engine"
	"github.com/jackzampolin/fable/internal/home"
	"github.com/jackzampolin/fable/internal/imagejob"
	"github.com/jackzampolin/fable/internal/prompts"
	"github.com/jackzampolin/fable/internal/providers"
)

// Services holds all core services that flow through context.
// Components extract what they need via the individual extractors.
type Services struct {
	Books     *book.Store
	Jobs      imagejob.Store
	Submitter *imagejob.Submitter
	Registry  *providers.Registry
	Engine    *engine.Client
	Resolver  *prompts.Resolver
	Config    *config.Manager
	Home      *home.Dir
	Logger    *slog.Logger
}

type servicesKey struct{}

// WithServices returns a new context with services attached.
func WithServices(ctx context.Context, s *Services) context.Context {
	return context.WithValue(ctx, servicesKey{}, s)
}

// ServicesFrom extracts the full Services struct from context.
// Returns nil if not present.
func ServicesFrom(ctx context.Context) *Services {
	s, _ := ctx.Value(servicesKey{}).(*Services)
	return s
}

// BooksFrom extracts the book store from context.
func BooksFrom(ctx context.Context) *book.Store {
	if s := ServicesFrom(ctx); s != nil {
		return s.Books
	}
	return nil
}

// JobsFrom extracts the image job store from context.
func JobsFrom(ctx context.Context) imagejob.Store {
	if s := ServicesFrom(ctx); s != nil {
		return s.Jobs
	}
	return nil
}

// SubmitterFrom extracts the image job submitter from context.
func SubmitterFrom(ctx context.Context) *imagejob.Submitter {
	if s := ServicesFrom(ctx); s != nil {
		return s.Submitter
	}
	return nil
}

// RegistryFrom extracts the provider registry from context.
func RegistryFrom(ctx context.Context) *providers.Registry {
	if s := ServicesFrom(ctx); s != nil {
		return s.Registry
	}
	return nil
}

// EngineFrom extracts the image engine client from context.
func EngineFrom(ctx context.Context) *engine.Client {
	if s := ServicesFrom(ctx); s != nil {
		return s.Engine
	}
	return nil
}

// ResolverFrom extracts the prompt resolver from context.
func ResolverFrom(ctx context.Context) *prompts.Resolver {
	if s := ServicesFrom(ctx); s != nil {
		return s.Resolver
	}
	return nil
}

// ConfigFrom extracts the config manager from context.
func ConfigFrom(ctx context.Context) *config.Manager {
	if s := ServicesFrom(ctx); s != nil {
		return s.Config
	}
	return nil
}

// HomeFrom extracts the home directory from context.
func HomeFrom(ctx context.Context) *home.Dir {
	if s := ServicesFrom(ctx); s != nil {
		return s.Home
	}
	return nil
}

// LoggerFrom extracts the logger from context. Falls back to the default
// logger so callers never need a nil check.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if s := ServicesFrom(ctx); s != nil && s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
