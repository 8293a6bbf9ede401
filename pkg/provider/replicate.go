package provider

import (
	"context"
	"log/slog"

	"github.com/DeniskaUa/ai-web-kruchko/pkg/errors"
	"github.com/replicate/replicate-go"
)

type replicateProvider struct {
	client *replicate.Client
}

func newReplicate(s Settings) (Provider, error) {
	if s.ReplicateToken == "" {
		return nil, errors.Wrap(ErrMissingCredentials, "replicate")
	}

	opts := []replicate.ClientOption{replicate.WithToken(s.ReplicateToken)}
	if s.ReplicateBaseURL != "" {
		opts = append(opts, replicate.WithBaseURL(s.ReplicateBaseURL))
	}

	client, err := replicate.NewClient(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create replicate client")
	}
	return &replicateProvider{client: client}, nil
}

// Run creates a prediction for model ("owner/name:version") and waits for it.
func (p *replicateProvider) Run(ctx context.Context, model string, input map[string]any) (any, error) {
	slog.Info("replicate_run_start", "model", model)

	output, err := p.client.Run(ctx, model, replicate.PredictionInput(input), nil)
	if err != nil {
		slog.Error("replicate_run_failed", "model", model, "error", err)
		return nil, errors.Wrapf(err, "replicate run %s", model)
	}

	slog.Info("replicate_run_complete", "model", model)
	return any(output), nil
}
