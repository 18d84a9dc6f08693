package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

type AzureBlobConfig struct {
	AccountName        string
	AccountKey         string
	ConnectionString   string
	Container          string
	UseManagedIdentity bool
}

type AzureBlobClient struct {
	client    *azblob.Client
	container string
}

func NewAzureBlobClient(cfg AzureBlobConfig) (*AzureBlobClient, error) {
	if cfg.Container == "" {
		return nil, fmt.Errorf("azure container is required")
	}
	var (
		client *azblob.Client
		err    error
	)
	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net/", cfg.AccountName)
	switch {
	case cfg.ConnectionString != "":
		client, err = azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	case cfg.AccountKey != "":
		cred, credErr := azblob.NewSharedKeyCredential(cfg.AccountName, cfg.AccountKey)
		if credErr != nil {
			return nil, fmt.Errorf("failed to create shared key credential: %w", credErr)
		}
		client, err = azblob.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
	case cfg.UseManagedIdentity:
		cred, credErr := azidentity.NewDefaultAzureCredential(nil)
		if credErr != nil {
			return nil, fmt.Errorf("failed to create Azure credential: %w", credErr)
		}
		client, err = azblob.NewClient(serviceURL, cred, nil)
	default:
		return nil, fmt.Errorf("azure connection string, account key or managed identity is required")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create azure blob client: %w", err)
	}
	return &AzureBlobClient{client: client, container: cfg.Container}, nil
}

func (c *AzureBlobClient) Download(ctx context.Context, path string) (string, error) {
	name := objectKey(path)
	resp, err := c.client.DownloadStream(ctx, c.container, name, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return "", notFound("azblob", "download", name, err)
		}
		return "", newError("azblob", "download", name, err)
	}
	b, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return "", newError("azblob", "download", name, err)
	}
	return string(b), nil
}

func (c *AzureBlobClient) Upload(ctx context.Context, path, contents string) error {
	name := objectKey(path)
	if _, err := c.client.UploadBuffer(ctx, c.container, name, []byte(contents), nil); err != nil {
		return newError("azblob", "upload", name, err)
	}
	return nil
}
