package main

import (
	"os"
	"path/filepath"
	"testing"
)

func withTempConfig(t *testing.T) {
	t.Helper()
	prev := configPathOverride
	configPathOverride = filepath.Join(t.TempDir(), "config.json")
	t.Cleanup(func() { configPathOverride = prev })
}

func TestLoadConfigMissingFileReturnsZeroValue(t *testing.T) {
	withTempConfig(t)

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.UploadURL != "" {
		t.Errorf("expected zero-value config, got %+v", cfg)
	}
}

func TestSaveThenLoadConfigRoundTrips(t *testing.T) {
	withTempConfig(t)

	cfg := &Config{UploadURL: "https://example.com/api", PlayerURL: "https://example.com/play"}
	if err := saveConfig(cfg); err != nil {
		t.Fatalf("saveConfig: %v", err)
	}

	loaded, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if loaded.UploadURL != cfg.UploadURL {
		t.Errorf("UploadURL = %q, want %q", loaded.UploadURL, cfg.UploadURL)
	}
}

func TestResolvedUploadURLPrecedence(t *testing.T) {
	withTempConfig(t)
	os.Unsetenv("REWINDTTY_UPLOAD_URL")

	cfg := &Config{}
	if got := cfg.resolvedUploadURL(); got != DefaultUploadURL {
		t.Errorf("with no config/env, got %q, want default %q", got, DefaultUploadURL)
	}

	cfg.UploadURL = "https://config.example.com"
	if got := cfg.resolvedUploadURL(); got != cfg.UploadURL {
		t.Errorf("config value not used: got %q", got)
	}

	os.Setenv("REWINDTTY_UPLOAD_URL", "https://env.example.com")
	defer os.Unsetenv("REWINDTTY_UPLOAD_URL")
	if got := cfg.resolvedUploadURL(); got != "https://env.example.com" {
		t.Errorf("env var should take precedence, got %q", got)
	}
}
