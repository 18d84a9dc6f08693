package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

const (
	BackendDropbox = "dropbox"
	BackendGDrive  = "gdrive"
	BackendS3      = "s3"
	BackendGCS     = "gcs"
	BackendAzure   = "azblob"
	BackendMinIO   = "minio"
	BackendLocal   = "local"
	BackendMemory  = "memory"
)

// Settings carries the credentials of every backend; only the ones an agent
// actually uses need to be filled.
type Settings struct {
	Dropbox   DropboxConfig
	GDrive    GDriveConfig
	S3        S3Config
	GCS       GCSConfig
	Azure     AzureBlobConfig
	MinIO     MinIOConfig
	LocalRoot string
}

// Factory creates backend clients lazily and shares them between agents.
type Factory struct {
	settings Settings
	mu       sync.Mutex
	clients  map[string]Client
}

func NewFactory(settings Settings) *Factory {
	return &Factory{settings: settings, clients: make(map[string]Client)}
}

func (f *Factory) Get(ctx context.Context, backend string) (Client, error) {
	name := strings.ToLower(strings.TrimSpace(backend))
	if name == "" {
		name = BackendDropbox
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.clients[name]; ok {
		return c, nil
	}
	c, err := f.open(ctx, name)
	if err != nil {
		return nil, err
	}
	f.clients[name] = c
	return c, nil
}

func (f *Factory) open(ctx context.Context, name string) (Client, error) {
	s := f.settings
	switch name {
	case BackendDropbox:
		return NewDropboxClient(ctx, s.Dropbox)
	case BackendGDrive:
		return NewGDriveClient(ctx, s.GDrive)
	case BackendS3:
		return NewS3Client(ctx, s.S3)
	case BackendGCS:
		return NewGCSClient(ctx, s.GCS)
	case BackendAzure:
		return NewAzureBlobClient(s.Azure)
	case BackendMinIO:
		return NewMinIOClient(s.MinIO)
	case BackendLocal:
		return NewFileClient(s.LocalRoot)
	case BackendMemory:
		return NewMemoryClient(nil), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", name)
	}
}

// Set installs a ready client under a backend name.
func (f *Factory) Set(backend string, c Client) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clients[strings.ToLower(backend)] = c
}
