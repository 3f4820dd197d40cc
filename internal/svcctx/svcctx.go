// Package svcctx provides service context for dependency injection via context.
// This package is separate from server to avoid import cycles with endpoints.
package svcctx

import (
	"context"
	"log/slog"

	"github.com/jackzampolin/medlens/internal/config"
	"github.com/jackzampolin/medlens/internal/formulary"
	"github.com/jackzampolin/medlens/internal/home"
	"github.com/jackzampolin/medlens/internal/normalize"
	"github.com/jackzampolin/medlens/internal/prompts"
	"github.com/jackzampolin/medlens/internal/providers"
)

// Services holds all core services that flow through context.
// Components extract what they need via the individual extractors.
type Services struct {
	Registry   *providers.Registry
	Config     *config.Manager
	Prompts    *prompts.Resolver
	Normalizer *normalize.Normalizer
	FDA        *formulary.Client
	Logger     *slog.Logger
	Home       *home.Dir
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

// RegistryFrom extracts the provider registry from context.
func RegistryFrom(ctx context.Context) *providers.Registry {
	if s := ServicesFrom(ctx); s != nil {
		return s.Registry
	}
	return nil
}

// ConfigFrom returns the active configuration, or the defaults when no
// manager is attached.
func ConfigFrom(ctx context.Context) *config.Config {
	if s := ServicesFrom(ctx); s != nil && s.Config != nil {
		return s.Config.Get()
	}
	return config.DefaultConfig()
}

// PromptsFrom extracts the prompt resolver from context.
func PromptsFrom(ctx context.Context) *prompts.Resolver {
	if s := ServicesFrom(ctx); s != nil {
		return s.Prompts
	}
	return nil
}

// NormalizerFrom extracts the document normalizer from context.
func NormalizerFrom(ctx context.Context) *normalize.Normalizer {
	if s := ServicesFrom(ctx); s != nil {
		return s.Normalizer
	}
	return nil
}

// FDAFrom extracts the OpenFDA client from context.
func FDAFrom(ctx context.Context) *formulary.Client {
	if s := ServicesFrom(ctx); s != nil {
		return s.FDA
	}
	return nil
}

// LoggerFrom extracts the logger from context, falling back to slog.Default.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if s := ServicesFrom(ctx); s != nil && s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// HomeFrom extracts the home directory from context.
func HomeFrom(ctx context.Context) *home.Dir {
	if s := ServicesFrom(ctx); s != nil {
		return s.Home
	}
	return nil
}
