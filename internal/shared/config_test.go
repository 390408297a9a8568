package shared

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.API.BaseURL != "http://localhost:5000" {
			t.Errorf("expected api base URL http://localhost:5000, got %s", config.API.BaseURL)
		}

		if config.Stub.Port != 5000 {
			t.Errorf("expected stub port 5000, got %d", config.Stub.Port)
		}

		if config.API.TimeoutDuration() != 0 {
			t.Errorf("expected no timeout by default, got %v", config.API.TimeoutDuration())
		}

		if config.Log.Level != "info" {
			t.Errorf("expected log level info, got %s", config.Log.Level)
		}

		if err := config.Validate(); err != nil {
			t.Errorf("default config should be valid: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.API.BaseURL != DefaultConfig().API.BaseURL {
			t.Errorf("created config base URL doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[api]
base_url = "https://design.example.com"
timeout = 15
rate_limit = 2.5
rate_burst = 3

[database]
path = "/custom/path.db"

[stub]
host = "0.0.0.0"
port = 8080

[log]
level = "debug"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.API.BaseURL != "https://design.example.com" {
			t.Errorf("expected base URL https://design.example.com, got %s", config.API.BaseURL)
		}
		if config.API.TimeoutDuration() != 15*time.Second {
			t.Errorf("expected 15s timeout, got %v", config.API.TimeoutDuration())
		}
		if config.API.RateLimit != 2.5 || config.API.RateBurst != 3 {
			t.Errorf("unexpected rate settings: %v/%d", config.API.RateLimit, config.API.RateBurst)
		}
		if config.DatabasePath() != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.DatabasePath())
		}
		if config.Stub.Addr() != "0.0.0.0:8080" {
			t.Errorf("expected stub addr 0.0.0.0:8080, got %s", config.Stub.Addr())
		}
		if config.Database.MaxOpenConns != 1 {
			t.Errorf("missing keys should keep defaults, got max_open_conns=%d", config.Database.MaxOpenConns)
		}
	})

	t.Run("LoadConfig Rejects Invalid Values", func(t *testing.T) {
		tt := []struct {
			name string
			body string
		}{
			{name: "relative base url", body: "[api]\nbase_url = \"localhost\"\n"},
			{name: "negative timeout", body: "[api]\ntimeout = -1\n"},
			{name: "negative rate", body: "[api]\nrate_limit = -2.0\n"},
			{name: "unknown log level", body: "[log]\nlevel = \"loud\"\n"},
		}

		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				configPath := filepath.Join(t.TempDir(), "config.toml")
				if err := os.WriteFile(configPath, []byte(tc.body), 0644); err != nil {
					t.Fatalf("failed to write test config: %v", err)
				}

				_, err := LoadConfig(configPath)
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
			})
		}
	})

	t.Run("ResolveConfig Falls Back To Defaults", func(t *testing.T) {
		config, err := ResolveConfig(filepath.Join(t.TempDir(), "missing.toml"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if config.API.BaseURL != DefaultConfig().API.BaseURL {
			t.Error("expected default config")
		}
	})

	t.Run("XDG Defaults", func(t *testing.T) {
		config := DefaultConfig()

		if !strings.HasSuffix(config.DatabasePath(), filepath.Join(AppName, "swatch.db")) {
			t.Errorf("expected XDG database path, got %s", config.DatabasePath())
		}
		if !strings.HasSuffix(config.LogFilePath(), filepath.Join(AppName, "swatch-tui.log")) {
			t.Errorf("expected XDG log path, got %s", config.LogFilePath())
		}
	})
}
