package provider

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/DeniskaUa/ai-web-kruchko/pkg/errors"
	"github.com/volcengine/volcengine-go-sdk/service/arkruntime"
	"github.com/volcengine/volcengine-go-sdk/service/arkruntime/model"
	"github.com/volcengine/volcengine-go-sdk/volcengine"
)

type arkProvider struct {
	client *arkruntime.Client
}

func newArk(s Settings) (Provider, error) {
	if s.ArkAPIKey == "" {
		return nil, errors.Wrap(ErrMissingCredentials, "ark")
	}
	return &arkProvider{client: arkruntime.NewClientWithApiKey(s.ArkAPIKey)}, nil
}

// Run generates images from input["prompt"] and returns their URLs as a list.
// Recognized params: size (string), watermark (bool).
func (p *arkProvider) Run(ctx context.Context, modelID string, input map[string]any) (any, error) {
	slog.Info("ark_generate_start", "model", modelID)

	req := model.GenerateImagesRequest{
		Model:          modelID,
		Prompt:         stringParam(input, "prompt"),
		ResponseFormat: volcengine.String(model.GenerateImagesResponseFormatURL),
	}
	if size := stringParam(input, "size"); size != "" {
		req.Size = volcengine.String(size)
	}
	if wm, ok := input["watermark"].(bool); ok {
		req.Watermark = volcengine.Bool(wm)
	}

	resp, err := p.client.GenerateImages(ctx, req)
	if err != nil {
		slog.Error("ark_generate_failed", "model", modelID, "error", err)
		return nil, errors.Wrapf(err, "ark generate %s", modelID)
	}
	if resp.Error != nil {
		slog.Error("ark_generate_rejected", "model", modelID, "code", resp.Error.Code, "message", resp.Error.Message)
		return nil, fmt.Errorf("ark generate %s: %s - %s", modelID, resp.Error.Code, resp.Error.Message)
	}

	urls := make([]any, 0, len(resp.Data))
	for _, image := range resp.Data {
		if image.Url == nil {
			continue
		}
		urls = append(urls, *image.Url)
	}

	slog.Info("ark_generate_complete", "model", modelID, "image_count", len(urls))
	return urls, nil
}
