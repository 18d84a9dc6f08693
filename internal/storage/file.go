package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileClient stores files below a local root directory.
// It is handy for development and for mounting a synced folder.
type FileClient struct {
	root string
}

func NewFileClient(root string) (*FileClient, error) {
	if root == "" {
		return nil, fmt.Errorf("local root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure root dir: %w", err)
	}
	return &FileClient{root: root}, nil
}

func (c *FileClient) Download(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	abs, err := c.resolve(path)
	if err != nil {
		return "", newError("local", "download", path, err)
	}
	b, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", notFound("local", "download", path, nil)
		}
		return "", newError("local", "download", path, err)
	}
	return string(b), nil
}

// Upload overwrites an existing file. Like the remote backends it does not
// create missing parents.
func (c *FileClient) Upload(ctx context.Context, path, contents string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	abs, err := c.resolve(path)
	if err != nil {
		return newError("local", "upload", path, err)
	}
	if _, err := os.Stat(filepath.Dir(abs)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return notFound("local", "upload", path, err)
		}
		return newError("local", "upload", path, err)
	}
	if err := os.WriteFile(abs, []byte(contents), 0o644); err != nil {
		return newError("local", "upload", path, err)
	}
	return nil
}

// resolve keeps path inside root.
func (c *FileClient) resolve(path string) (string, error) {
	clean := filepath.Clean("/" + strings.TrimSpace(path))
	if clean == "/" {
		return "", fmt.Errorf("path points at root")
	}
	return filepath.Join(c.root, filepath.FromSlash(clean)), nil
}
