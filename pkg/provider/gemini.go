package provider

import (
	"context"
	"log/slog"

	"github.com/DeniskaUa/ai-web-kruchko/pkg/errors"
	"github.com/DeniskaUa/ai-web-kruchko/pkg/media"
	"google.golang.org/genai"
)

type geminiProvider struct {
	client *genai.Client
}

func newGemini(ctx context.Context, s Settings) (Provider, error) {
	if s.GeminiAPIKey == "" {
		return nil, errors.Wrap(ErrMissingCredentials, "gemini")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  s.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create gemini client")
	}
	return &geminiProvider{client: client}, nil
}

// Run asks the model about input["image"] using the instruction in
// input["prompt"] and returns the answer text.
func (p *geminiProvider) Run(ctx context.Context, model string, input map[string]any) (any, error) {
	slog.Info("gemini_generate_start", "model", model)

	img, err := media.Parse(stringParam(input, "image"))
	if err != nil {
		return nil, errors.Wrap(err, "gemini input image")
	}

	// the Gemini API only reads http(s) images it hosts itself
	if img.Remote() {
		return nil, errors.Wrapf(media.ErrInvalidImage, "gemini takes inline image data, got %s", img.URL)
	}

	parts := []*genai.Part{
		genai.NewPartFromText(stringParam(input, "prompt")),
		genai.NewPartFromBytes(img.Data, img.MIMEType),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	resp, err := p.client.Models.GenerateContent(ctx, model, contents, nil)
	if err != nil {
		slog.Error("gemini_generate_failed", "model", model, "error", err)
		return nil, errors.Wrapf(err, "gemini generate %s", model)
	}

	text := resp.Text()
	slog.Info("gemini_generate_complete", "model", model, "text_length", len(text))
	if text == "" {
		return nil, nil
	}
	return text, nil
}
