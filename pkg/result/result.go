// Package result normalizes raw provider output into a tagged result.
//
// Providers return loosely typed JSON: a URL string, a list of URL strings,
// or free text, and sometimes nothing at all. Normalize classifies a raw
// value against the shape a tool expects so callers branch on Kind instead
// of inspecting the payload.
package result

import (
	"fmt"
	"strings"
)

// Kind tags a normalized result.
type Kind int

const (
	// Ok means the payload matched the expected shape and is non-empty.
	Ok Kind = iota
	// Empty means the provider returned nil, an empty string or an empty list.
	Empty
	// Malformed means the payload did not match the expected shape.
	Malformed
)

func (k Kind) String() string {
	switch k {
	case Ok:
		return "ok"
	case Empty:
		return "empty"
	case Malformed:
		return "malformed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Shape is the output form a tool promises to its caller.
type Shape string

const (
	ShapeURL     Shape = "url"
	ShapeURLList Shape = "url_list"
	ShapeText    Shape = "text"
)

// Valid reports whether s is a known shape.
func (s Shape) Valid() bool {
	switch s {
	case ShapeURL, ShapeURLList, ShapeText:
		return true
	}
	return false
}

// Result is the normalized outcome of one invocation.
type Result struct {
	Kind   Kind
	Shape  Shape
	URLs   []string
	Text   string
	Reason string
}

// Normalize classifies raw against shape.
func Normalize(shape Shape, raw any) Result {
	r := Result{Shape: shape}

	switch shape {
	case ShapeURL:
		switch v := raw.(type) {
		case nil:
			return r.empty("no output")
		case string:
			if strings.TrimSpace(v) == "" {
				return r.empty("empty url")
			}
			r.URLs = []string{v}
			return r
		default:
			return r.malformed("expected a url, got %T", raw)
		}

	case ShapeURLList:
		urls, kind, reason := urlList(raw)
		switch kind {
		case Empty:
			return r.empty(reason)
		case Malformed:
			return r.malformed("%s", reason)
		}
		r.URLs = urls
		return r

	case ShapeText:
		switch v := raw.(type) {
		case nil:
			return r.empty("no output")
		case string:
			if strings.TrimSpace(v) == "" {
				return r.empty("empty text")
			}
			r.Text = v
			return r
		default:
			return r.malformed("expected text, got %T", raw)
		}
	}

	return r.malformed("unknown shape %q", string(shape))
}

func urlList(raw any) ([]string, Kind, string) {
	switch v := raw.(type) {
	case nil:
		return nil, Empty, "no output"
	case []string:
		if len(v) == 0 {
			return nil, Empty, "empty list"
		}
		for i, u := range v {
			if strings.TrimSpace(u) == "" {
				return nil, Malformed, fmt.Sprintf("element %d is empty", i)
			}
		}
		return append([]string(nil), v...), Ok, ""
	case []any:
		if len(v) == 0 {
			return nil, Empty, "empty list"
		}
		urls := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok || strings.TrimSpace(s) == "" {
				return nil, Malformed, fmt.Sprintf("element %d is not a url", i)
			}
			urls = append(urls, s)
		}
		return urls, Ok, ""
	default:
		return nil, Malformed, fmt.Sprintf("expected a list of urls, got %T", raw)
	}
}

func (r Result) empty(reason string) Result {
	r.Kind = Empty
	r.Reason = reason
	return r
}

func (r Result) malformed(format string, args ...any) Result {
	r.Kind = Malformed
	r.Reason = fmt.Sprintf(format, args...)
	return r
}
