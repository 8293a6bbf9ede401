package catalog

import (
	"errors"
	"strings"
	"testing"

	"github.com/DeniskaUa/ai-web-kruchko/pkg/result"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("default catalog invalid: %v", err)
	}

	tests := []struct {
		name    string
		backend string
		fields  []Field
		shape   result.Shape
	}{
		{"remove-background", BackendReplicate, []Field{FieldImage}, result.ShapeURL},
		{"photo-colorizer", BackendReplicate, []Field{FieldImage}, result.ShapeURL},
		{"object-removal", BackendReplicate, []Field{FieldImage, FieldMask}, result.ShapeURL},
		{"text-extractor", BackendReplicate, []Field{FieldImage}, result.ShapeText},
		{"image-captioning", BackendReplicate, []Field{FieldImage}, result.ShapeText},
		{"face-to-sticker", BackendReplicate, []Field{FieldImage, FieldPrompt}, result.ShapeURLList},
		{"text-to-image", BackendReplicate, []Field{FieldPrompt}, result.ShapeURLList},
		{"restore-faces", BackendReplicate, []Field{FieldImage}, result.ShapeURL},
		{"image-description", BackendGemini, []Field{FieldImage}, result.ShapeText},
		{"text-to-image-seedream", BackendArk, []Field{FieldPrompt}, result.ShapeURLList},
	}

	if len(c.All()) != len(tests) {
		t.Errorf("catalog has %d tools, want %d", len(c.All()), len(tests))
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool, err := c.Lookup(tt.name)
			if err != nil {
				t.Fatalf("lookup failed: %v", err)
			}
			if tool.Backend != tt.backend {
				t.Errorf("backend = %s, want %s", tool.Backend, tt.backend)
			}
			if tool.Result != tt.shape {
				t.Errorf("result = %s, want %s", tool.Result, tt.shape)
			}
			if len(tool.Fields) != len(tt.fields) {
				t.Fatalf("fields = %v, want %v", tool.Fields, tt.fields)
			}
			for i := range tt.fields {
				if tool.Fields[i] != tt.fields[i] {
					t.Errorf("fields = %v, want %v", tool.Fields, tt.fields)
				}
			}
			if tool.FailureMessage == "" || tool.TransportErrorMessage == "" || tool.RequiredFieldsMessage == "" {
				t.Error("messages must be filled in")
			}
		})
	}
}

func TestTextToImageTemplate(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("default catalog invalid: %v", err)
	}
	tool, _ := c.Lookup("text-to-image")

	if tool.MissingInputMessage != "Please enter a prompt." {
		t.Errorf("missing input message = %q", tool.MissingInputMessage)
	}

	input := tool.Input(map[Field]string{FieldPrompt: "a red fox", FieldImage: "ignored"})
	if input["prompt"] != "a red fox" {
		t.Errorf("prompt not merged: %v", input["prompt"])
	}
	if _, ok := input["image"]; ok {
		t.Error("fields the tool does not require must be dropped")
	}
	if input["scheduler"] != "K_EULER" || input["num_inference_steps"] != 4 {
		t.Errorf("fixed params not merged: %v", input)
	}
	neg, _ := input["negative_prompt"].(string)
	if !strings.HasPrefix(neg, "Low quality, low resolution") || strings.Contains(neg, "\n") {
		t.Errorf("negative prompt not folded into one line: %q", neg)
	}

	// the template itself is not modified by building an input
	if _, ok := tool.Params["prompt"]; ok {
		t.Error("Input leaked client fields into the shared params map")
	}
}

func TestMissing(t *testing.T) {
	c, _ := Default()
	tool, _ := c.Lookup("face-to-sticker")

	missing := tool.Missing(map[Field]string{FieldImage: "data:image/png;base64,AA", FieldPrompt: "   "})
	if len(missing) != 1 || missing[0] != FieldPrompt {
		t.Errorf("missing = %v, want [prompt]", missing)
	}
	if got := tool.Missing(map[Field]string{FieldImage: "x", FieldPrompt: "cat"}); len(got) != 0 {
		t.Errorf("missing = %v, want none", got)
	}
}

func TestLookupUnknown(t *testing.T) {
	c, _ := Default()
	if _, err := c.Lookup("upscale"); !errors.Is(err, ErrUnknownTool) {
		t.Errorf("expected ErrUnknownTool, got %v", err)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", "tools: []"},
		{"unknown backend", `
tools:
  - {name: a, backend: openai, model: m, requires: [image], result: url, failure_message: f, missing_input_message: m}`},
		{"unknown shape", `
tools:
  - {name: a, backend: replicate, model: m, requires: [image], result: video, failure_message: f, missing_input_message: m}`},
		{"no fields", `
tools:
  - {name: a, backend: replicate, model: m, result: url, failure_message: f, missing_input_message: m}`},
		{"param shadows field", `
tools:
  - {name: a, backend: replicate, model: m, requires: [prompt], result: url, params: {prompt: x}, failure_message: f, missing_input_message: m}`},
		{"gemini with remote images", `
tools:
  - {name: a, backend: gemini, model: m, requires: [image], result: text, failure_message: f, missing_input_message: m}`},
		{"duplicate", `
tools:
  - {name: a, backend: replicate, model: m, requires: [image], result: url, failure_message: f, missing_input_message: m}
  - {name: a, backend: replicate, model: m, requires: [image], result: url, failure_message: f, missing_input_message: m}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}

func TestParseDefaults(t *testing.T) {
	c, err := Parse([]byte(`
tools:
  - {name: a, backend: replicate, model: m, requires: [image], result: url, failure_message: boom, missing_input_message: need image}`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	tool, _ := c.Lookup("a")
	if tool.RequiredFieldsMessage != "need image" || tool.TransportErrorMessage != "boom" ||
		tool.ProviderErrorMessage != "boom" || tool.DownloadName != "a.png" || tool.InlineImages {
		t.Errorf("defaults not applied: %+v", tool)
	}
}
