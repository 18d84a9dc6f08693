package storage

import (
	"context"
	"sync"
)

// MemoryClient keeps files in process memory.
// Each call is individually synchronized, the pair Download+Upload is not.
type MemoryClient struct {
	mu    sync.Mutex
	files map[string]string
	calls []Call
}

// Call records one operation, in order, for inspection.
type Call struct {
	Op       string
	Path     string
	Contents string
}

func NewMemoryClient(files map[string]string) *MemoryClient {
	m := &MemoryClient{files: make(map[string]string, len(files))}
	for k, v := range files {
		m.files[k] = v
	}
	return m
}

func (m *MemoryClient) Download(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Op: "download", Path: path})
	s, ok := m.files[path]
	if !ok {
		return "", notFound("memory", "download", path, nil)
	}
	return s, nil
}

func (m *MemoryClient) Upload(ctx context.Context, path, contents string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Op: "upload", Path: path, Contents: contents})
	m.files[path] = contents
	return nil
}

// Get returns the current content of path.
func (m *MemoryClient) Get(path string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.files[path]
	return s, ok
}

func (m *MemoryClient) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}
