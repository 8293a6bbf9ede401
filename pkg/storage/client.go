// Package storage archives downloaded tool results in an S3 bucket.
package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/DeniskaUa/ai-web-kruchko/pkg/errors"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Client provides S3 storage operations
type Client struct {
	s3Client *s3.Client
	bucket   string
	prefix   string
}

// NewClient creates an S3 client using the default credential chain
func NewClient(ctx context.Context, bucket, region, prefix string) (*Client, error) {
	slog.Info("s3_client_init", "bucket", bucket, "region", region, "prefix", prefix)

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		slog.Error("aws_config_load_failed", "error", err)
		return nil, errors.Wrap(err, "failed to load AWS config")
	}

	return NewClientFromConfig(cfg, bucket, prefix), nil
}

// NewClientFromConfig creates a client from an already loaded AWS config.
func NewClientFromConfig(cfg aws.Config, bucket, prefix string, optFns ...func(*s3.Options)) *Client {
	return &Client{
		s3Client: s3.NewFromConfig(cfg, optFns...),
		bucket:   bucket,
		prefix:   strings.Trim(prefix, "/"),
	}
}

// Key returns the object key a file name is stored under.
func (c *Client) Key(name string) string {
	if c.prefix == "" {
		return name
	}
	return path.Join(c.prefix, name)
}

// Save uploads data under the prefixed name and returns its s3:// location.
func (c *Client) Save(ctx context.Context, name, contentType string, data []byte) (string, error) {
	key := c.Key(name)
	slog.Info("s3_upload_start", "bucket", c.bucket, "s3_key", key, "size_kb", len(data)/1024)

	sum := sha256.Sum256(data)
	checksum := hex.EncodeToString(sum[:])

	_, err := c.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		Metadata:    map[string]string{"sha256": checksum},
	})
	if err != nil {
		slog.Error("s3_put_object_failed", "s3_key", key, "error", err)
		return "", errors.Wrap(err, "failed to upload object to S3")
	}

	location := fmt.Sprintf("s3://%s/%s", c.bucket, key)
	slog.Info("s3_upload_complete", "location", location, "sha256", checksum[:16]+"...")
	return location, nil
}

// ListObjects lists archived keys under the client prefix
func (c *Client) ListObjects(ctx context.Context) ([]string, error) {
	prefix := c.prefix
	if prefix != "" {
		prefix += "/"
	}
	slog.Info("s3_list_start", "bucket", c.bucket, "prefix", prefix)

	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
		Prefix: aws.String(prefix),
	}

	var keys []string
	paginator := s3.NewListObjectsV2Paginator(c.s3Client, input)

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			slog.Error("s3_list_failed", "prefix", prefix, "error", err)
			return nil, errors.Wrap(err, "failed to list objects")
		}

		for _, obj := range page.Contents {
			if obj.Key != nil {
				keys = append(keys, *obj.Key)
			}
		}
	}

	slog.Info("s3_list_complete", "prefix", prefix, "object_count", len(keys))
	return keys, nil
}
