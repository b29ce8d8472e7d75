package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"console/internal/types"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", filepath.Join(t.TempDir(), "home"))
	t.Chdir(t.TempDir())
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL() != "http://127.0.0.1:8001/api" {
		t.Fatalf("unexpected base url: %q", cfg.BaseURL())
	}
	if cfg.PollInterval() != 10*time.Second {
		t.Fatalf("unexpected poll interval: %v", cfg.PollInterval())
	}
	if cfg.RequestTimeout() != 15*time.Second {
		t.Fatalf("unexpected request timeout: %v", cfg.RequestTimeout())
	}
	if cfg.DefaultFilter() != types.StatusFilterAll {
		t.Fatalf("unexpected default filter: %q", cfg.DefaultFilter())
	}
	if cfg.StorageBackend() != StorageBackendBbolt {
		t.Fatalf("unexpected storage backend: %q", cfg.StorageBackend())
	}
}

func TestLoadFromTOML(t *testing.T) {
	home := filepath.Join(t.TempDir(), "home")
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	dataDir := filepath.Join(home, ".console")
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	content := []byte(`
[remote]
base_url = "console.example.com/api/"
request_timeout_seconds = 500

[poll]
interval_seconds = 3
default_filter = "transferred"

[auth]
token_path = "creds/token"

[storage]
backend = "file"
`)
	if err := os.WriteFile(filepath.Join(dataDir, "config.toml"), content, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL() != "http://console.example.com/api" {
		t.Fatalf("unexpected base url: %q", cfg.BaseURL())
	}
	if cfg.RequestTimeout() != 120*time.Second {
		t.Fatalf("expected timeout clamp, got %v", cfg.RequestTimeout())
	}
	if cfg.PollInterval() != 3*time.Second {
		t.Fatalf("unexpected poll interval: %v", cfg.PollInterval())
	}
	if cfg.DefaultFilter() != types.StatusFilter(types.SessionStatusTransferred) {
		t.Fatalf("unexpected filter: %q", cfg.DefaultFilter())
	}
	tokenPath, err := cfg.ResolveTokenPath()
	if err != nil {
		t.Fatalf("ResolveTokenPath: %v", err)
	}
	if tokenPath != filepath.Join(dataDir, "creds", "token") {
		t.Fatalf("unexpected token path: %s", tokenPath)
	}
	if cfg.StorageBackend() != StorageBackendFile {
		t.Fatalf("unexpected backend: %q", cfg.StorageBackend())
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	cfg := Default()
	env := map[string]string{
		envBaseURL:      "https://remote.internal/api",
		envToken:        "secret",
		envLogLevel:     "debug",
		envPollInterval: "2",
	}
	cfg.applyEnv(func(key string) string { return env[key] })
	if cfg.BaseURL() != "https://remote.internal/api" {
		t.Fatalf("unexpected base url: %q", cfg.BaseURL())
	}
	if cfg.Token() != "secret" {
		t.Fatalf("expected env token")
	}
	if cfg.LogLevel() != "debug" {
		t.Fatalf("unexpected log level: %q", cfg.LogLevel())
	}
	if cfg.PollInterval() != 2*time.Second {
		t.Fatalf("unexpected poll interval: %v", cfg.PollInterval())
	}
}

func TestDotEnvIsLoadedFromWorkingDirectory(t *testing.T) {
	t.Setenv("HOME", filepath.Join(t.TempDir(), "home"))
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(envBaseURL, "placeholder")
	if err := os.Unsetenv(envBaseURL); err != nil {
		t.Fatalf("Unsetenv: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("CONSOLE_BASE_URL=http://from-dotenv:9000/api\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL() != "http://from-dotenv:9000/api" {
		t.Fatalf("unexpected base url: %q", cfg.BaseURL())
	}
}

func TestValidateRejectsUnknownFilter(t *testing.T) {
	cfg := Default()
	cfg.Poll.DefaultFilter = "pending"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}
