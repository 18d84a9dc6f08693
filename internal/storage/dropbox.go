package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox"
	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/files"
	"golang.org/x/oauth2"
)

// DropboxEndpoint is the OAuth2 endpoint of the Dropbox API.
var DropboxEndpoint = oauth2.Endpoint{
	AuthURL:  "https://www.dropbox.com/oauth2/authorize",
	TokenURL: "https://api.dropboxapi.com/oauth2/token",
}

type DropboxConfig struct {
	// AccessToken is used as is when no refresh token is configured.
	AccessToken  string
	AppKey       string
	AppSecret    string
	RefreshToken string
}

// DropboxClient talks to the Dropbox files API.
type DropboxClient struct {
	files files.Client
}

func NewDropboxClient(ctx context.Context, cfg DropboxConfig) (*DropboxClient, error) {
	dbxCfg := dropbox.Config{
		Token:    cfg.AccessToken,
		LogLevel: dropbox.LogOff,
	}
	switch {
	case cfg.RefreshToken != "":
		if cfg.AppKey == "" || cfg.AppSecret == "" {
			return nil, fmt.Errorf("dropbox refresh token requires app key and secret")
		}
		oauthCfg := &oauth2.Config{
			ClientID:     cfg.AppKey,
			ClientSecret: cfg.AppSecret,
			Endpoint:     DropboxEndpoint,
		}
		ts := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})
		tok, err := ts.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to refresh dropbox token: %w", err)
		}
		log.Printf("🔑 Dropbox token refreshed, expires %v", tok.Expiry)
		dbxCfg.Token = tok.AccessToken
		dbxCfg.Client = oauth2.NewClient(ctx, ts)
	case cfg.AccessToken == "":
		return nil, fmt.Errorf("dropbox access token or refresh token is required")
	}
	return &DropboxClient{files: files.New(dbxCfg)}, nil
}

func (c *DropboxClient) Download(ctx context.Context, path string) (string, error) {
	p := dropboxPath(path)
	type result struct {
		body string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		_, rc, err := c.files.Download(files.NewDownloadArg(p))
		if err != nil {
			done <- result{err: err}
			return
		}
		defer rc.Close()
		b, err := io.ReadAll(rc)
		done <- result{body: string(b), err: err}
	}()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		if r.err != nil {
			if isDropboxNotFound(r.err) {
				return "", notFound("dropbox", "download", p, r.err)
			}
			return "", newError("dropbox", "download", p, r.err)
		}
		return r.body, nil
	}
}

func (c *DropboxClient) Upload(ctx context.Context, path, contents string) error {
	p := dropboxPath(path)
	arg := files.NewUploadArg(p)
	arg.Mode = &files.WriteMode{Tagged: dropbox.Tagged{Tag: files.WriteModeOverwrite}}
	done := make(chan error, 1)
	go func() {
		_, err := c.files.Upload(arg, strings.NewReader(contents))
		done <- err
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return newError("dropbox", "upload", p, err)
		}
		return nil
	}
}

// dropboxPath turns a relative account path into the absolute form the API expects.
func dropboxPath(path string) string {
	p := strings.TrimSpace(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

func isDropboxNotFound(err error) bool {
	var apiErr files.DownloadAPIError
	if errors.As(err, &apiErr) {
		if apiErr.EndpointError != nil && apiErr.EndpointError.Path != nil {
			return apiErr.EndpointError.Path.Tag == files.LookupErrorNotFound
		}
	}
	return strings.Contains(err.Error(), "path/not_found")
}
