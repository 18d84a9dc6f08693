package config

import (
	"log"
	"os"

	"github.com/caarlos0/env/v6"

	"file-appender/internal/storage"
)

type Config struct {
	// Agents
	AgentsFile string `env:"AGENTS_FILE" envDefault:"config/agents.yaml"`

	// HTTP API
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	// Agent state: "file" or "redis"
	StateBackend   string `env:"STATE_BACKEND" envDefault:"file"`
	StateDir       string `env:"STATE_DIR" envDefault:"data/state"`
	RedisAddr      string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword  string `env:"REDIS_PASSWORD"`
	RedisDB        int    `env:"REDIS_DB" envDefault:"0"`
	AgentLogLength int    `env:"AGENT_LOG_LENGTH" envDefault:"200"`

	// Health checks (cron spec, UTC)
	HealthCheckSchedule string `env:"HEALTH_CHECK_SCHEDULE" envDefault:"@hourly"`

	// Dropbox
	DropboxAccessToken  string `env:"DROPBOX_ACCESS_TOKEN"`
	DropboxOAuthKey     string `env:"DROPBOX_OAUTH_KEY"`
	DropboxOAuthSecret  string `env:"DROPBOX_OAUTH_SECRET"`
	DropboxRefreshToken string `env:"DROPBOX_REFRESH_TOKEN"`

	// Google Drive
	GDriveCredentialsJSON     string `env:"GDRIVE_CREDENTIALS_JSON"`
	GDriveCredentialsJSONPath string `env:"GDRIVE_CREDENTIALS_JSON_PATH"`
	GDriveRefreshToken        string `env:"GDRIVE_REFRESH_TOKEN"`

	// S3 and compatibles
	S3Bucket          string `env:"S3_BUCKET"`
	S3Region          string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint        string `env:"S3_ENDPOINT"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
	S3ForcePathStyle  bool   `env:"S3_FORCE_PATH_STYLE" envDefault:"false"`

	// Google Cloud Storage
	GCSBucket          string `env:"GCS_BUCKET"`
	GCSCredentialsFile string `env:"GCS_CREDENTIALS_FILE"`
	GCSEndpoint        string `env:"GCS_ENDPOINT"`

	// Azure Blob Storage
	AzureAccountName        string `env:"AZURE_STORAGE_ACCOUNT"`
	AzureAccountKey         string `env:"AZURE_STORAGE_KEY"`
	AzureConnectionString   string `env:"AZURE_STORAGE_CONNECTION_STRING"`
	AzureContainer          string `env:"AZURE_STORAGE_CONTAINER"`
	AzureUseManagedIdentity bool   `env:"AZURE_USE_MANAGED_IDENTITY" envDefault:"false"`

	// MinIO
	MinIOEndpoint  string `env:"MINIO_ENDPOINT"`
	MinIOAccessKey string `env:"MINIO_ACCESS_KEY"`
	MinIOSecretKey string `env:"MINIO_SECRET_KEY"`
	MinIOBucket    string `env:"MINIO_BUCKET"`
	MinIOUseSSL    bool   `env:"MINIO_USE_SSL" envDefault:"false"`

	// Local directory backend
	LocalRoot string `env:"LOCAL_ROOT" envDefault:"data/files"`

	// Telegram event source (optional)
	TelegramBotToken string  `env:"TELEGRAM_BOT_TOKEN"`
	TelegramAgentID  string  `env:"TELEGRAM_AGENT_ID"`
	AllowedUsers     []int64 `env:"ALLOWED_USERS" envSeparator:":"`
}

func New() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if cfg.GDriveCredentialsJSON == "" && cfg.GDriveCredentialsJSONPath != "" {
		if data, err := os.ReadFile(cfg.GDriveCredentialsJSONPath); err == nil {
			cfg.GDriveCredentialsJSON = string(data)
		} else {
			log.Printf("⚠️ Google Drive credentials file unreadable at %s: %v", cfg.GDriveCredentialsJSONPath, err)
		}
	}
	return cfg, nil
}

// StorageSettings maps the environment onto backend settings.
func (c *Config) StorageSettings() storage.Settings {
	return storage.Settings{
		Dropbox: storage.DropboxConfig{
			AccessToken:  c.DropboxAccessToken,
			AppKey:       c.DropboxOAuthKey,
			AppSecret:    c.DropboxOAuthSecret,
			RefreshToken: c.DropboxRefreshToken,
		},
		GDrive: storage.GDriveConfig{
			CredentialsJSON: c.GDriveCredentialsJSON,
			RefreshToken:    c.GDriveRefreshToken,
		},
		S3: storage.S3Config{
			Bucket:          c.S3Bucket,
			Region:          c.S3Region,
			Endpoint:        c.S3Endpoint,
			AccessKeyID:     c.S3AccessKeyID,
			SecretAccessKey: c.S3SecretAccessKey,
			ForcePathStyle:  c.S3ForcePathStyle,
		},
		GCS: storage.GCSConfig{
			Bucket:          c.GCSBucket,
			CredentialsFile: c.GCSCredentialsFile,
			Endpoint:        c.GCSEndpoint,
		},
		Azure: storage.AzureBlobConfig{
			AccountName:        c.AzureAccountName,
			AccountKey:         c.AzureAccountKey,
			ConnectionString:   c.AzureConnectionString,
			Container:          c.AzureContainer,
			UseManagedIdentity: c.AzureUseManagedIdentity,
		},
		MinIO: storage.MinIOConfig{
			Endpoint:        c.MinIOEndpoint,
			AccessKeyID:     c.MinIOAccessKey,
			SecretAccessKey: c.MinIOSecretKey,
			Bucket:          c.MinIOBucket,
			UseSSL:          c.MinIOUseSSL,
		},
		LocalRoot: c.LocalRoot,
	}
}
