// Package provider adapts hosted inference APIs to a single call shape:
// run a model with an input map and wait for its terminal output.
//
// Clients are never shared. A Factory builds a fresh client for every
// invocation from the Settings it was created with, so credentials can be
// rotated by restarting with new configuration and no request observes
// another request's client state.
package provider

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/DeniskaUa/ai-web-kruchko/pkg/catalog"
)

var (
	// ErrMissingCredentials is returned when a backend's secret is not configured.
	ErrMissingCredentials = fmt.Errorf("provider: missing credentials")
	// ErrUnknownBackend is returned for backends this package does not implement.
	ErrUnknownBackend = fmt.Errorf("provider: unknown backend")
)

// Provider runs one model invocation synchronously.
type Provider interface {
	Run(ctx context.Context, model string, input map[string]any) (any, error)
}

// Settings carries the secrets and endpoints injected from configuration.
type Settings struct {
	ReplicateToken   string
	ReplicateBaseURL string
	ArkAPIKey        string
	GeminiAPIKey     string
}

// Factory returns a new Provider for a backend.
type Factory func(ctx context.Context, backend string) (Provider, error)

// NewFactory returns a Factory that constructs request-scoped clients from s.
func NewFactory(s Settings) Factory {
	return func(ctx context.Context, backend string) (Provider, error) {
		slog.Debug("provider_client_init", "backend", backend)

		switch backend {
		case catalog.BackendReplicate:
			return newReplicate(s)
		case catalog.BackendArk:
			return newArk(s)
		case catalog.BackendGemini:
			return newGemini(ctx, s)
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, backend)
		}
	}
}

// Func adapts a function to the Provider interface.
type Func func(ctx context.Context, model string, input map[string]any) (any, error)

// Run calls f.
func (f Func) Run(ctx context.Context, model string, input map[string]any) (any, error) {
	return f(ctx, model, input)
}

func stringParam(input map[string]any, key string) string {
	s, _ := input[key].(string)
	return s
}
