package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/oauth2"

	"file-appender/internal/storage"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: auth-helper dropbox | auth-helper gdrive <credentials.json>")
	}
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	switch os.Args[1] {
	case "dropbox":
		dropboxFlow()
	case "gdrive":
		if len(os.Args) < 3 {
			log.Fatal("Usage: auth-helper gdrive <credentials.json>")
		}
		gdriveFlow(os.Args[2])
	default:
		log.Fatalf("Unknown provider %q, expected dropbox or gdrive", os.Args[1])
	}
}

func dropboxFlow() {
	key, secret := os.Getenv("DROPBOX_OAUTH_KEY"), os.Getenv("DROPBOX_OAUTH_SECRET")
	if key == "" || secret == "" {
		log.Fatal("DROPBOX_OAUTH_KEY and DROPBOX_OAUTH_SECRET are required")
	}
	config := &oauth2.Config{
		ClientID:     key,
		ClientSecret: secret,
		Endpoint:     storage.DropboxEndpoint,
	}
	// Dropbox issues refresh tokens only for offline access
	authURL := config.AuthCodeURL("state-token", oauth2.SetAuthURLParam("token_access_type", "offline"))

	token := exchange("Dropbox", config, authURL)
	fmt.Printf("Add this to your .env file:\n\n")
	if token.RefreshToken != "" {
		fmt.Printf("DROPBOX_REFRESH_TOKEN='%s'\n", token.RefreshToken)
	} else {
		fmt.Printf("DROPBOX_ACCESS_TOKEN='%s'\n", token.AccessToken)
	}
}

func gdriveFlow(credentialsFile string) {
	credentialsData, err := os.ReadFile(credentialsFile)
	if err != nil {
		log.Fatalf("Failed to read credentials file: %v", err)
	}
	credentials, err := storage.ParseGoogleCredentials(credentialsData)
	if err != nil {
		log.Fatalf("Failed to parse credentials: %v", err)
	}
	config := storage.GoogleOAuthConfig(credentials)
	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)

	token := exchange("Google Drive", config, authURL)
	fmt.Printf("Add these to your .env file:\n\n")
	fmt.Printf("GDRIVE_CREDENTIALS_JSON_PATH='%s'\n", credentialsFile)
	if token.RefreshToken != "" {
		fmt.Printf("GDRIVE_REFRESH_TOKEN='%s'\n", token.RefreshToken)
	}
}

func exchange(provider string, config *oauth2.Config, authURL string) *oauth2.Token {
	fmt.Printf("🔗 %s OAuth2 Authorization Helper\n", provider)
	fmt.Printf("=====================================\n")
	fmt.Printf("1. Open this URL in your browser:\n")
	fmt.Printf("   %s\n\n", authURL)
	fmt.Printf("2. Authorize the application\n")
	fmt.Printf("3. Copy the authorization code and enter it below\n\n")
	fmt.Printf("📝 Enter the authorization code: ")

	var authCode string
	if _, err := fmt.Scan(&authCode); err != nil {
		log.Fatalf("Failed to read authorization code: %v", err)
	}

	token, err := config.Exchange(context.Background(), authCode)
	if err != nil {
		log.Fatalf("Failed to exchange code for token: %v", err)
	}

	fmt.Printf("\n✅ Successfully obtained tokens!\n")
	fmt.Printf("=====================================\n")
	fmt.Printf("Expires: %v\n", token.Expiry)
	return token
}
