package config

import (
	"log/slog"
	"testing"

	"github.com/spf13/viper"
)

func validConfig() *Config {
	return &Config{
		ListenAddr:        ":8080",
		LogLevel:          "info",
		MaxImageSize:      5 * 1024 * 1024,
		AllowedImageTypes: []string{"image/jpeg", "image/png"},
		HistoryDriver:     "sqlite",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		shouldErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"empty listen addr", func(c *Config) { c.ListenAddr = "" }, true},
		{"zero ceiling", func(c *Config) { c.MaxImageSize = 0 }, true},
		{"no types", func(c *Config) { c.AllowedImageTypes = nil }, true},
		{"non image type", func(c *Config) { c.AllowedImageTypes = []string{"application/pdf"} }, true},
		{"mysql history", func(c *Config) { c.HistoryDriver = "mysql" }, false},
		{"postgres history", func(c *Config) { c.HistoryDriver = "postgres" }, true},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.shouldErr && err == nil {
				t.Error("expected error")
			}
			if !tt.shouldErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoadDefaultsAndEnv(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("REPLICATE_API_TOKEN", "r8_from_env")
	t.Setenv("KRUCHKO_LISTEN_ADDR", ":9999")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}

	if cfg.ListenAddr != ":9999" {
		t.Errorf("listen addr = %q", cfg.ListenAddr)
	}
	if cfg.ReplicateAPIToken != "r8_from_env" {
		t.Errorf("replicate token = %q", cfg.ReplicateAPIToken)
	}
	if cfg.MaxImageSize != 5*1024*1024 {
		t.Errorf("max image size = %d", cfg.MaxImageSize)
	}
	if cfg.HistoryEnabled() || cfg.ArchiveEnabled() {
		t.Error("history and archive must be off by default")
	}
	if s := cfg.ProviderSettings(); s.ReplicateToken != "r8_from_env" {
		t.Errorf("settings = %+v", s)
	}
}

func TestSlogLevel(t *testing.T) {
	c := validConfig()
	c.LogLevel = "debug"
	level, err := c.SlogLevel()
	if err != nil || level != slog.LevelDebug {
		t.Errorf("level = %v, %v", level, err)
	}
}
