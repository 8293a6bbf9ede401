package security

import (
	"fmt"
	"log/slog"
	"strings"
)

// DefaultMaxImageSize is the ceiling applied to a single image payload.
const DefaultMaxImageSize = 5 * 1024 * 1024

// DefaultAllowedTypes are the image MIME types accepted for upload.
var DefaultAllowedTypes = []string{"image/jpeg", "image/png"}

// Validator enforces the upload allow-list and size ceiling on image input.
// It holds no per-request state and is safe for concurrent use.
type Validator struct {
	maxImageSize int64
	allowed      map[string]struct{}
}

// NewValidator creates a new image validator
func NewValidator(maxImageSize int64, allowedTypes []string) *Validator {
	if len(allowedTypes) == 0 {
		allowedTypes = DefaultAllowedTypes
	}

	allowed := make(map[string]struct{}, len(allowedTypes))
	for _, t := range allowedTypes {
		allowed[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}

	slog.Info("security_validator_init",
		"max_image_size_mb", maxImageSize/1024/1024,
		"allowed_types", strings.Join(allowedTypes, ","))

	return &Validator{
		maxImageSize: maxImageSize,
		allowed:      allowed,
	}
}

// MaxImageSize returns the configured ceiling in bytes.
func (v *Validator) MaxImageSize() int64 {
	return v.maxImageSize
}

// ValidateFileSize checks that an image is non-empty and within the ceiling
func (v *Validator) ValidateFileSize(size int64) error {
	if size <= 0 {
		slog.Error("security_file_empty")
		return fmt.Errorf("security: file is empty")
	}
	if size > v.maxImageSize {
		slog.Error("security_file_size_exceeded",
			"file_size_kb", size/1024,
			"max_file_size_mb", v.maxImageSize/1024/1024)
		return fmt.Errorf("security: file size %d exceeds max %d", size, v.maxImageSize)
	}
	return nil
}

// ValidateMIMEType checks the type against the allow-list
func (v *Validator) ValidateMIMEType(mimeType string) error {
	if _, ok := v.allowed[strings.ToLower(mimeType)]; !ok {
		slog.Error("security_mime_type_rejected", "mime_type", mimeType)
		return fmt.Errorf("security: file type %q is not allowed", mimeType)
	}
	return nil
}

// ValidateImage applies both checks, type first.
func (v *Validator) ValidateImage(mimeType string, size int64) error {
	if err := v.ValidateMIMEType(mimeType); err != nil {
		return err
	}
	return v.ValidateFileSize(size)
}
