package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/picorama/server/internal/observability"
)

// Config holds all application configuration
type Config struct {
	ServerAddress string       `json:"serverAddress"`
	DatabasePath  string       `json:"databasePath"`
	DatabaseURL   string       `json:"databaseUrl"`
	Media         MediaStorage `json:"media"`
	Security      Security     `json:"security"`
}

// UsePostgres returns true if PostgreSQL should be used
func (c *Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}

// MediaStorage configuration
type MediaStorage struct {
	MediaPath     string `json:"mediaPath"`
	ThumbsPath    string `json:"thumbsPath"`
	MaxFileSizeMB int64  `json:"maxFileSizeMB"`
}

// Security configuration. AuthCode is the shared upload secret; clients
// send its bcrypt hash as a bearer token.
type Security struct {
	AuthCode string `json:"authCode"`
}

// Default configuration
func defaultConfig() *Config {
	return &Config{
		ServerAddress: ":8000",
		DatabasePath:  "picorama.db",
		Media: MediaStorage{
			MediaPath:     "./media",
			ThumbsPath:    "./thumbs",
			MaxFileSizeMB: 50,
		},
	}
}

// Load loads configuration from file or environment
func Load() (*Config, error) {
	cfg := defaultConfig()

	// Try to load from config file
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.json"
	}

	if data, err := os.ReadFile(configPath); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	// Override from environment variables
	if addr := os.Getenv("SERVER_ADDRESS"); addr != "" {
		cfg.ServerAddress = addr
	}
	if dbPath := os.Getenv("DATABASE_PATH"); dbPath != "" {
		cfg.DatabasePath = dbPath
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.DatabaseURL = dbURL
	}
	if mediaPath := os.Getenv("MEDIA_PATH"); mediaPath != "" {
		cfg.Media.MediaPath = mediaPath
	}
	if thumbsPath := os.Getenv("THUMBS_PATH"); thumbsPath != "" {
		cfg.Media.ThumbsPath = thumbsPath
	}
	if maxSize := os.Getenv("MAX_FILE_SIZE_MB"); maxSize != "" {
		if mb, err := strconv.ParseInt(maxSize, 10, 64); err == nil && mb > 0 {
			cfg.Media.MaxFileSizeMB = mb
		}
	}
	if authCode := os.Getenv("PICORAMA_AUTH_CODE"); authCode != "" {
		cfg.Security.AuthCode = authCode
	}

	// Without a configured auth code nobody can compute a valid upload
	// token, so generate a throwaway one and tell the operator.
	if cfg.Security.AuthCode == "" {
		cfg.Security.AuthCode = uuid.NewString()
		observability.Warnf("no auth code configured, generated one-off code %s (set PICORAMA_AUTH_CODE to persist)", cfg.Security.AuthCode)
	}

	// Ensure storage directories exist and are absolute
	for _, dir := range []*string{&cfg.Media.MediaPath, &cfg.Media.ThumbsPath} {
		if err := os.MkdirAll(*dir, 0755); err != nil {
			return nil, err
		}
		absPath, err := filepath.Abs(*dir)
		if err != nil {
			return nil, err
		}
		*dir = absPath
	}

	return cfg, nil
}
