package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// OAuth2Credentials is the client section of a Google Cloud Console credentials file.
type OAuth2Credentials struct {
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	RedirectURIs []string `json:"redirect_uris"`
	AuthURI      string   `json:"auth_uri"`
	TokenURI     string   `json:"token_uri"`
}

// GoogleCredentialsFile is credentials.json as downloaded from Google Cloud Console.
type GoogleCredentialsFile struct {
	Installed *OAuth2Credentials `json:"installed,omitempty"`
	Web       *OAuth2Credentials `json:"web,omitempty"`
}

// ParseGoogleCredentials accepts either the bare client object or the
// console format with an "installed"/"web" section.
func ParseGoogleCredentials(data []byte) (*OAuth2Credentials, error) {
	var direct OAuth2Credentials
	if err := json.Unmarshal(data, &direct); err == nil {
		if direct.ClientID != "" && direct.ClientSecret != "" {
			return &direct, nil
		}
	}
	var file GoogleCredentialsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse credentials as Google format: %w", err)
	}
	if file.Installed != nil {
		return file.Installed, nil
	}
	if file.Web != nil {
		return file.Web, nil
	}
	return nil, fmt.Errorf("no valid credentials found in JSON - expected 'installed' or 'web' section")
}

// GoogleOAuthConfig builds the OAuth2 config used for Drive access.
func GoogleOAuthConfig(creds *OAuth2Credentials) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  "urn:ietf:wg:oauth:2.0:oob",
		Scopes:       []string{drive.DriveScope},
		Endpoint:     google.Endpoint,
	}
}

type GDriveConfig struct {
	CredentialsJSON string
	RefreshToken    string
}

// GDriveClient maps slash separated paths onto the Drive folder tree,
// starting at the user's "My Drive" root.
type GDriveClient struct {
	srv *drive.Service
}

func NewGDriveClient(ctx context.Context, cfg GDriveConfig) (*GDriveClient, error) {
	if cfg.CredentialsJSON == "" || cfg.RefreshToken == "" {
		return nil, fmt.Errorf("google drive credentials and refresh token are required")
	}
	creds, err := ParseGoogleCredentials([]byte(cfg.CredentialsJSON))
	if err != nil {
		return nil, err
	}
	oauthCfg := GoogleOAuthConfig(creds)
	ts := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})
	if _, err := ts.Token(); err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	log.Printf("🔑 Google Drive token refreshed")
	srv, err := drive.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}
	return &GDriveClient{srv: srv}, nil
}

func (c *GDriveClient) Download(ctx context.Context, path string) (string, error) {
	id, err := c.lookup(ctx, path)
	if err != nil {
		return "", c.wrap("download", path, err)
	}
	resp, err := c.srv.Files.Get(id).Context(ctx).Download()
	if err != nil {
		return "", c.wrap("download", path, err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", newError("gdrive", "download", path, err)
	}
	return string(b), nil
}

func (c *GDriveClient) Upload(ctx context.Context, path, contents string) error {
	id, err := c.lookup(ctx, path)
	if err != nil {
		return c.wrap("upload", path, err)
	}
	_, err = c.srv.Files.Update(id, &drive.File{}).
		Media(strings.NewReader(contents)).
		Context(ctx).
		Do()
	if err != nil {
		return c.wrap("upload", path, err)
	}
	return nil
}

// lookup walks the path one segment at a time.
func (c *GDriveClient) lookup(ctx context.Context, path string) (string, error) {
	segs := splitPath(path)
	if len(segs) == 0 {
		return "", fmt.Errorf("empty path")
	}
	parent := "root"
	for i, name := range segs {
		list, err := c.srv.Files.List().
			Q(driveChildQuery(parent, name, i < len(segs)-1)).
			Fields("files(id, name)").
			PageSize(1).
			Context(ctx).
			Do()
		if err != nil {
			return "", err
		}
		if len(list.Files) == 0 {
			return "", ErrNotFound
		}
		parent = list.Files[0].Id
	}
	return parent, nil
}

func (c *GDriveClient) wrap(op, path string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return notFound("gdrive", op, path, nil)
	}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) && gErr.Code == http.StatusNotFound {
		return notFound("gdrive", op, path, err)
	}
	return newError("gdrive", op, path, err)
}

const driveFolderMime = "application/vnd.google-apps.folder"

func driveChildQuery(parent, name string, folder bool) string {
	q := fmt.Sprintf("name = '%s' and '%s' in parents and trashed = false", driveEscape(name), driveEscape(parent))
	if folder {
		q += fmt.Sprintf(" and mimeType = '%s'", driveFolderMime)
	}
	return q
}

func driveEscape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

func splitPath(path string) []string {
	var out []string
	for _, s := range strings.Split(strings.TrimSpace(path), "/") {
		if s != "" && s != "." {
			out = append(out, s)
		}
	}
	return out
}
