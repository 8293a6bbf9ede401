package security

import (
	"testing"
)

func TestValidateFileSize(t *testing.T) {
	v := NewValidator(100, nil)

	tests := []struct {
		size      int64
		shouldErr bool
	}{
		{0, true},
		{1, false},
		{50, false},
		{100, false},
		{101, true},
	}

	for _, tt := range tests {
		err := v.ValidateFileSize(tt.size)
		if tt.shouldErr && err == nil {
			t.Errorf("expected error for size %d", tt.size)
		}
		if !tt.shouldErr && err != nil {
			t.Errorf("unexpected error for size %d: %v", tt.size, err)
		}
	}
}

func TestValidateMIMEType(t *testing.T) {
	v := NewValidator(DefaultMaxImageSize, nil)

	tests := []struct {
		mimeType  string
		shouldErr bool
	}{
		{"image/jpeg", false},
		{"image/png", false},
		{"IMAGE/PNG", false},
		{"image/gif", true},
		{"image/webp", true},
		{"application/pdf", true},
		{"", true},
	}

	for _, tt := range tests {
		err := v.ValidateMIMEType(tt.mimeType)
		if tt.shouldErr && err == nil {
			t.Errorf("expected error for type %q", tt.mimeType)
		}
		if !tt.shouldErr && err != nil {
			t.Errorf("unexpected error for type %q: %v", tt.mimeType, err)
		}
	}
}

func TestValidateImage_CustomAllowList(t *testing.T) {
	v := NewValidator(10, []string{"image/webp"})

	if err := v.ValidateImage("image/webp", 10); err != nil {
		t.Errorf("expected webp within limit to pass, got: %v", err)
	}
	if err := v.ValidateImage("image/jpeg", 5); err == nil {
		t.Error("expected jpeg to be rejected by custom allow-list")
	}
	if err := v.ValidateImage("image/webp", 11); err == nil {
		t.Error("expected oversized webp to be rejected")
	}
}

func TestDefaultCeiling(t *testing.T) {
	v := NewValidator(DefaultMaxImageSize, nil)

	if v.MaxImageSize() != 5*1024*1024 {
		t.Fatalf("unexpected ceiling %d", v.MaxImageSize())
	}
	if err := v.ValidateImage("image/jpeg", 5*1024*1024); err != nil {
		t.Errorf("image at the ceiling must pass: %v", err)
	}
	if err := v.ValidateImage("image/jpeg", 5*1024*1024+1); err == nil {
		t.Error("image above the ceiling must fail")
	}
}
