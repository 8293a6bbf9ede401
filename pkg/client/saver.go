package client

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/DeniskaUa/ai-web-kruchko/pkg/errors"
)

// Saver stores a downloaded result and returns where it went.
type Saver interface {
	Save(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// FileSaver writes results into a local directory.
type FileSaver struct {
	Dir string
}

// Save writes data to Dir/name. name is slash separated and must stay
// inside Dir.
func (f FileSaver) Save(ctx context.Context, name, contentType string, data []byte) (string, error) {
	rel := filepath.FromSlash(name)
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("download name %q escapes the download directory", name)
	}

	path := filepath.Join(f.Dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", errors.Wrap(err, "failed to create download directory")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", errors.Wrap(err, "failed to write download")
	}
	return path, nil
}
