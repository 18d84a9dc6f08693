package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

type GCSConfig struct {
	Bucket          string
	CredentialsFile string
	CredentialsJSON string
	Endpoint        string
}

type GCSClient struct {
	client *gcs.Client
	bucket string
}

func NewGCSClient(ctx context.Context, cfg GCSConfig) (*GCSClient, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("gcs bucket is required")
	}
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	} else if cfg.CredentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	}
	// emulator
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	return &GCSClient{client: client, bucket: cfg.Bucket}, nil
}

func (c *GCSClient) Download(ctx context.Context, path string) (string, error) {
	key := objectKey(path)
	r, err := c.client.Bucket(c.bucket).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return "", notFound("gcs", "download", key, err)
		}
		return "", newError("gcs", "download", key, err)
	}
	defer func() {
		_ = r.Close()
	}()
	b, err := io.ReadAll(r)
	if err != nil {
		return "", newError("gcs", "download", key, err)
	}
	return string(b), nil
}

func (c *GCSClient) Upload(ctx context.Context, path, contents string) error {
	key := objectKey(path)
	w := c.client.Bucket(c.bucket).Object(key).NewWriter(ctx)
	w.ContentType = "text/plain; charset=utf-8"
	if _, err := w.Write([]byte(contents)); err != nil {
		_ = w.Close()
		return newError("gcs", "upload", key, err)
	}
	// the object is committed on Close
	if err := w.Close(); err != nil {
		return newError("gcs", "upload", key, err)
	}
	return nil
}

func (c *GCSClient) Close() error {
	return c.client.Close()
}
