// Package media converts image bytes to and from the string forms sent over
// the wire: base64 data URIs and remote http(s) URLs.
package media

import (
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/mvdan/xurls"
)

// ErrInvalidImage is returned when a string is neither a data URI nor a URL.
var ErrInvalidImage = fmt.Errorf("media: not a data URI or http(s) URL")

const dataPrefix = "data:"

// Image is an encoded image reference. Exactly one of Data or URL is set.
type Image struct {
	MIMEType string
	Data     []byte
	URL      string
}

// Remote reports whether the image is referenced by URL rather than inlined.
func (i Image) Remote() bool {
	return i.URL != ""
}

// Size is the decoded payload size, zero for remote images.
func (i Image) Size() int64 {
	return int64(len(i.Data))
}

// String renders the wire form of the image.
func (i Image) String() string {
	if i.Remote() {
		return i.URL
	}
	return Encode(i.MIMEType, i.Data)
}

// Encode renders data as a base64 data URI.
func Encode(mimeType string, data []byte) string {
	var b strings.Builder
	b.Grow(len(dataPrefix) + len(mimeType) + len(";base64,") + base64.StdEncoding.EncodedLen(len(data)))
	b.WriteString(dataPrefix)
	b.WriteString(mimeType)
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(data))
	return b.String()
}

// Parse decodes a data URI or validates a remote URL.
func Parse(s string) (Image, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, dataPrefix) {
		return parseDataURI(s)
	}
	if IsRemoteURL(s) {
		return Image{URL: s}, nil
	}
	return Image{}, ErrInvalidImage
}

// IsRemoteURL reports whether s is exactly one absolute http(s) URL.
func IsRemoteURL(s string) bool {
	if s == "" || xurls.Strict.FindString(s) != s {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Sniff returns the MIME type of data without parameters.
func Sniff(data []byte) string {
	return baseType(http.DetectContentType(data))
}

func parseDataURI(s string) (Image, error) {
	header, payload, ok := strings.Cut(s[len(dataPrefix):], ",")
	if !ok {
		return Image{}, fmt.Errorf("%w: data URI has no payload", ErrInvalidImage)
	}

	params := strings.Split(header, ";")
	if params[len(params)-1] != "base64" {
		return Image{}, fmt.Errorf("%w: data URI is not base64 encoded", ErrInvalidImage)
	}
	mimeType := baseType(strings.Join(params[:len(params)-1], ";"))
	if mimeType == "" {
		mimeType = "text/plain"
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	return Image{MIMEType: mimeType, Data: data}, nil
}

func baseType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mt
}
