package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/DeniskaUa/ai-web-kruchko/pkg/db"
	"github.com/DeniskaUa/ai-web-kruchko/pkg/provider"
	"github.com/DeniskaUa/ai-web-kruchko/pkg/security"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Proxy server
	ListenAddr string `mapstructure:"listen-addr"`
	Debug      bool   `mapstructure:"debug"`
	LogLevel   string `mapstructure:"log-level"`

	// Client side: where the proxy lives and where results go
	ServerURL   string `mapstructure:"server-url"`
	DownloadDir string `mapstructure:"download-dir"`

	// Provider secrets, never sent to clients
	ReplicateAPIToken string `mapstructure:"replicate-api-token"`
	ReplicateBaseURL  string `mapstructure:"replicate-base-url"`
	ArkAPIKey         string `mapstructure:"ark-api-key"`
	GeminiAPIKey      string `mapstructure:"gemini-api-key"`

	// Upload limits
	MaxImageSize      int64    `mapstructure:"max-image-size"`
	AllowedImageTypes []string `mapstructure:"allowed-image-types"`

	// Invocation history, disabled when the DSN is empty
	HistoryDriver string `mapstructure:"history-driver"`
	HistoryDSN    string `mapstructure:"history-dsn"`

	// S3 result archive, disabled when the bucket is empty
	S3Bucket string `mapstructure:"s3-bucket"`
	S3Region string `mapstructure:"s3-region"`
	S3Prefix string `mapstructure:"s3-prefix"`

	// FSM store for the run command
	FSMDBPath string `mapstructure:"fsm-db-path"`
}

// Load reads configuration from environment, config file, and defaults
func Load() (*Config, error) {
	viper.SetDefault("listen-addr", ":8080")
	viper.SetDefault("debug", false)
	viper.SetDefault("log-level", "info")
	viper.SetDefault("server-url", "http://localhost:8080")
	viper.SetDefault("download-dir", ".artifacts/downloads")
	viper.SetDefault("replicate-api-token", "")
	viper.SetDefault("replicate-base-url", "")
	viper.SetDefault("ark-api-key", "")
	viper.SetDefault("gemini-api-key", "")
	viper.SetDefault("max-image-size", security.DefaultMaxImageSize)
	viper.SetDefault("allowed-image-types", security.DefaultAllowedTypes)
	viper.SetDefault("history-driver", db.DriverSQLite)
	viper.SetDefault("history-dsn", "")
	viper.SetDefault("s3-bucket", "")
	viper.SetDefault("s3-region", "us-east-1")
	viper.SetDefault("s3-prefix", "results")
	viper.SetDefault("fsm-db-path", ".artifacts/fsm")

	// Environment variables (KRUCHKO_LISTEN_ADDR, etc.)
	viper.SetEnvPrefix("KRUCHKO")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// Provider secrets also come from their conventional names
	viper.BindEnv("replicate-api-token", "KRUCHKO_REPLICATE_API_TOKEN", "REPLICATE_API_TOKEN")
	viper.BindEnv("ark-api-key", "KRUCHKO_ARK_API_KEY", "ARK_API_KEY")
	viper.BindEnv("gemini-api-key", "KRUCHKO_GEMINI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY")

	// Config file (optional)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.kruchko")

	// Read config file (ignore if not found)
	_ = viper.ReadInConfig()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration for errors
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen-addr cannot be empty")
	}
	if c.MaxImageSize <= 0 {
		return fmt.Errorf("max-image-size must be positive")
	}
	if len(c.AllowedImageTypes) == 0 {
		return fmt.Errorf("allowed-image-types cannot be empty")
	}
	for _, t := range c.AllowedImageTypes {
		if !strings.HasPrefix(t, "image/") {
			return fmt.Errorf("allowed-image-types: %q is not an image type", t)
		}
	}
	switch c.HistoryDriver {
	case db.DriverSQLite, db.DriverMySQL:
	default:
		return fmt.Errorf("history-driver must be %q or %q", db.DriverSQLite, db.DriverMySQL)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// HistoryEnabled reports whether invocations are recorded.
func (c *Config) HistoryEnabled() bool {
	return c.HistoryDSN != ""
}

// ArchiveEnabled reports whether downloads go to S3.
func (c *Config) ArchiveEnabled() bool {
	return c.S3Bucket != ""
}

// ProviderSettings extracts what the provider factory needs.
func (c *Config) ProviderSettings() provider.Settings {
	return provider.Settings{
		ReplicateToken:   c.ReplicateAPIToken,
		ReplicateBaseURL: c.ReplicateBaseURL,
		ArkAPIKey:        c.ArkAPIKey,
		GeminiAPIKey:     c.GeminiAPIKey,
	}
}

// SlogLevel parses log-level.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log-level: %w", err)
	}
	return level, nil
}
