// Package api defines the JSON bodies exchanged between the client and the
// proxy routes.
package api

import (
	"github.com/DeniskaUa/ai-web-kruchko/pkg/catalog"
)

// PathPrefix is where tool routes are mounted: POST /api/<tool>.
const PathPrefix = "/api"

// Request is the body of a tool invocation. Which fields are required
// depends on the tool.
type Request struct {
	Image  string `json:"image,omitempty" validate:"omitempty,datauri|url"`
	Mask   string `json:"mask,omitempty" validate:"omitempty,datauri|url"`
	Prompt string `json:"prompt,omitempty" validate:"omitempty,max=4000"`
}

// Fields maps the request onto catalog field names.
func (r Request) Fields() map[catalog.Field]string {
	return map[catalog.Field]string{
		catalog.FieldImage:  r.Image,
		catalog.FieldMask:   r.Mask,
		catalog.FieldPrompt: r.Prompt,
	}
}

// For drops the fields t does not take, so they are neither validated nor
// forwarded.
func (r Request) For(t catalog.Tool) Request {
	if !t.Requires(catalog.FieldImage) {
		r.Image = ""
	}
	if !t.Requires(catalog.FieldMask) {
		r.Mask = ""
	}
	if !t.Requires(catalog.FieldPrompt) {
		r.Prompt = ""
	}
	return r
}

// Response is the body of every tool route. On success Output (a URL or a
// list of URLs) or Text is set; on failure only Error is set.
type Response struct {
	Output any    `json:"output,omitempty"`
	Text   string `json:"text,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ToolInfo describes a tool in the GET /api/tools listing.
type ToolInfo struct {
	Name     string          `json:"name"`
	Title    string          `json:"title"`
	Requires []catalog.Field `json:"requires"`
	Result   string          `json:"result"`
}
