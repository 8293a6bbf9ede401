// Package catalog holds the per-tool configuration records: which model a
// tool runs, which client fields it requires, the fixed parameters merged
// into every call and the messages shown when something goes wrong.
package catalog

import (
	_ "embed"
	"fmt"
	"maps"
	"sort"
	"strings"

	"github.com/DeniskaUa/ai-web-kruchko/pkg/result"
	"gopkg.in/yaml.v3"
)

//go:embed tools.yaml
var defaultTools []byte

// ErrUnknownTool is returned by Lookup for unregistered names.
var ErrUnknownTool = fmt.Errorf("catalog: unknown tool")

// Field names a client-supplied input.
type Field string

const (
	FieldImage  Field = "image"
	FieldMask   Field = "mask"
	FieldPrompt Field = "prompt"
)

// Backends understood by the provider package.
const (
	BackendReplicate = "replicate"
	BackendArk       = "ark"
	BackendGemini    = "gemini"
)

// Tool is the configuration record for one tool.
type Tool struct {
	Name    string         `yaml:"name" json:"name"`
	Title   string         `yaml:"title" json:"title"`
	Backend string         `yaml:"backend" json:"backend"`
	Model   string         `yaml:"model" json:"model"`
	Fields  []Field        `yaml:"requires" json:"requires"`
	Result  result.Shape   `yaml:"result" json:"result"`
	Params  map[string]any `yaml:"params" json:"-"`

	// InlineImages tools take uploaded images only, never remote URLs.
	InlineImages bool `yaml:"inline_images" json:"-"`

	DownloadName          string `yaml:"download_name" json:"-"`
	MissingInputMessage   string `yaml:"missing_input_message" json:"-"`
	RequiredFieldsMessage string `yaml:"required_fields_message" json:"-"`
	FailureMessage        string `yaml:"failure_message" json:"-"`
	TransportErrorMessage string `yaml:"transport_error_message" json:"-"`
	ProviderErrorMessage  string `yaml:"provider_error_message" json:"-"`
}

// Requires reports whether f is one of the tool's required fields.
func (t Tool) Requires(f Field) bool {
	for _, r := range t.Fields {
		if r == f {
			return true
		}
	}
	return false
}

// Missing returns the required fields that are blank in values.
func (t Tool) Missing(values map[Field]string) []Field {
	var missing []Field
	for _, f := range t.Fields {
		if strings.TrimSpace(values[f]) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// Input builds the provider input: the fixed params plus the required
// client fields. Fields the tool does not require are dropped.
func (t Tool) Input(values map[Field]string) map[string]any {
	input := make(map[string]any, len(t.Params)+len(t.Fields))
	maps.Copy(input, t.Params)
	for _, f := range t.Fields {
		input[string(f)] = values[f]
	}
	return input
}

func (t Tool) validate() error {
	if t.Name == "" {
		return fmt.Errorf("tool without name")
	}
	if t.Model == "" {
		return fmt.Errorf("tool %s: model is required", t.Name)
	}
	switch t.Backend {
	case BackendReplicate, BackendArk, BackendGemini:
	default:
		return fmt.Errorf("tool %s: unknown backend %q", t.Name, t.Backend)
	}
	if !t.Result.Valid() {
		return fmt.Errorf("tool %s: unknown result shape %q", t.Name, t.Result)
	}
	if len(t.Fields) == 0 {
		return fmt.Errorf("tool %s: at least one required field", t.Name)
	}
	for _, f := range t.Fields {
		switch f {
		case FieldImage, FieldMask, FieldPrompt:
		default:
			return fmt.Errorf("tool %s: unknown field %q", t.Name, f)
		}
		if _, clash := t.Params[string(f)]; clash {
			return fmt.Errorf("tool %s: param %q shadows a client field", t.Name, f)
		}
	}
	if t.Backend == BackendGemini && t.Requires(FieldImage) && !t.InlineImages {
		return fmt.Errorf("tool %s: gemini tools take inline images only", t.Name)
	}
	if t.FailureMessage == "" || t.MissingInputMessage == "" {
		return fmt.Errorf("tool %s: failure and missing input messages are required", t.Name)
	}
	return nil
}

// Catalog is an immutable set of tools.
type Catalog struct {
	tools  []Tool
	byName map[string]Tool
}

type file struct {
	Tools []Tool `yaml:"tools"`
}

// Parse decodes and validates a YAML tool table.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	if len(f.Tools) == 0 {
		return nil, fmt.Errorf("catalog: no tools defined")
	}

	c := &Catalog{byName: make(map[string]Tool, len(f.Tools))}
	for _, t := range f.Tools {
		if err := t.validate(); err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		if _, dup := c.byName[t.Name]; dup {
			return nil, fmt.Errorf("catalog: duplicate tool %s", t.Name)
		}
		if t.RequiredFieldsMessage == "" {
			t.RequiredFieldsMessage = t.MissingInputMessage
		}
		if t.TransportErrorMessage == "" {
			t.TransportErrorMessage = t.FailureMessage
		}
		if t.ProviderErrorMessage == "" {
			t.ProviderErrorMessage = t.FailureMessage
		}
		if t.DownloadName == "" {
			t.DownloadName = t.Name + ".png"
		}
		c.byName[t.Name] = t
		c.tools = append(c.tools, t)
	}

	return c, nil
}

// Default returns the built-in tool table.
func Default() (*Catalog, error) {
	return Parse(defaultTools)
}

// All returns the tools in declaration order.
func (c *Catalog) All() []Tool {
	return append([]Tool(nil), c.tools...)
}

// Names returns the tool names sorted alphabetically.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.tools))
	for _, t := range c.tools {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return names
}

// Lookup finds a tool by name.
func (c *Catalog) Lookup(name string) (Tool, error) {
	t, ok := c.byName[name]
	if !ok {
		return Tool{}, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return t, nil
}
