package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinIOConfig struct {
	Endpoint        string // e.g. "minio:9000"
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
}

type MinIOClient struct {
	mc     *minio.Client
	bucket string
}

func NewMinIOClient(cfg MinIOConfig) (*MinIOClient, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("minio endpoint and bucket are required")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return &MinIOClient{mc: mc, bucket: cfg.Bucket}, nil
}

func (c *MinIOClient) Download(ctx context.Context, path string) (string, error) {
	key := objectKey(path)
	obj, err := c.mc.GetObject(ctx, c.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return "", c.wrap("download", key, err)
	}
	defer obj.Close()
	// GetObject is lazy, errors show up on first read
	b, err := io.ReadAll(obj)
	if err != nil {
		return "", c.wrap("download", key, err)
	}
	return string(b), nil
}

func (c *MinIOClient) Upload(ctx context.Context, path, contents string) error {
	key := objectKey(path)
	_, err := c.mc.PutObject(ctx, c.bucket, key, strings.NewReader(contents), int64(len(contents)),
		minio.PutObjectOptions{ContentType: "text/plain; charset=utf-8"})
	if err != nil {
		return c.wrap("upload", key, err)
	}
	return nil
}

func (c *MinIOClient) wrap(op, key string, err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return notFound("minio", op, key, err)
	}
	return newError("minio", op, key, err)
}
