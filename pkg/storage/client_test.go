package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type capturedPut struct {
	method      string
	path        string
	contentType string
	sha256      string
	body        []byte
}

func newTestClient(t *testing.T, prefix string, status int) (*Client, *capturedPut) {
	t.Helper()

	var (
		mu  sync.Mutex
		got capturedPut
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		got = capturedPut{
			method:      r.Method,
			path:        r.URL.Path,
			contentType: r.Header.Get("Content-Type"),
			sha256:      r.Header.Get("X-Amz-Meta-Sha256"),
			body:        body,
		}
		mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)

	cfg := aws.Config{
		Region:      "us-east-1",
		Credentials: aws.AnonymousCredentials{},
	}
	c := NewClientFromConfig(cfg, "results", prefix, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(srv.URL)
		o.UsePathStyle = true
		o.RetryMaxAttempts = 1
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})
	return c, &got
}

func TestKey(t *testing.T) {
	tests := []struct {
		prefix string
		name   string
		want   string
	}{
		{"", "generated-image.png", "generated-image.png"},
		{"kruchko", "generated-image.png", "kruchko/generated-image.png"},
		{"/kruchko/results/", "a.png", "kruchko/results/a.png"},
		{"results", "remove-background/0b7c/processed-image.png", "results/remove-background/0b7c/processed-image.png"},
	}

	for _, tt := range tests {
		c := NewClientFromConfig(aws.Config{Region: "us-east-1"}, "b", tt.prefix)
		if got := c.Key(tt.name); got != tt.want {
			t.Errorf("Key(%q) with prefix %q = %q, want %q", tt.name, tt.prefix, got, tt.want)
		}
	}
}

func TestSave(t *testing.T) {
	c, got := newTestClient(t, "archive", http.StatusOK)

	location, err := c.Save(context.Background(), "processed-image.png", "image/png", []byte("png-bytes"))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if location != "s3://results/archive/processed-image.png" {
		t.Errorf("location = %s", location)
	}
	if got.method != http.MethodPut || got.path != "/results/archive/processed-image.png" {
		t.Errorf("request = %s %s", got.method, got.path)
	}
	if string(got.body) != "png-bytes" {
		t.Errorf("body = %q", got.body)
	}
	if got.contentType != "image/png" {
		t.Errorf("content type = %q", got.contentType)
	}
	if len(got.sha256) != 64 {
		t.Errorf("sha256 metadata = %q", got.sha256)
	}
}

func TestSaveFailure(t *testing.T) {
	c, _ := newTestClient(t, "", http.StatusForbidden)

	if _, err := c.Save(context.Background(), "a.png", "image/png", []byte("x")); err == nil {
		t.Fatal("expected error for forbidden upload")
	}
}
