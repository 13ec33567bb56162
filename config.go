package main

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config is the on-disk ambient configuration at ~/.rewindtty/config.json,
// per spec §3. Grounded on the teacher's Config/loadConfig/saveConfig in
// main.go, generalized from the Telegram-bridge-only fields to rewindtty's
// full set of optional components (uploader, live viewer, notifier).
type Config struct {
	UploadURL         string `json:"upload_url,omitempty"`
	PlayerURL         string `json:"player_url,omitempty"`
	WatchPasswordHash string `json:"watch_password_hash,omitempty"`
	TelegramBotToken  string `json:"telegram_bot_token,omitempty"`
	TelegramChatID    string `json:"telegram_chat_id,omitempty"`
}

// configPathOverride lets tests redirect config to a temp directory without
// touching the real home directory.
var configPathOverride string

func getConfigPath() string {
	if configPathOverride != "" {
		os.MkdirAll(filepath.Dir(configPathOverride), 0700)
		return configPathOverride
	}
	home, _ := os.UserHomeDir()
	dir := filepath.Join(home, ".rewindtty")
	os.MkdirAll(dir, 0700)
	return filepath.Join(dir, "config.json")
}

// loadConfig reads the config file, returning a zero-value Config (not an
// error) if it doesn't exist yet — every field is then resolved from its
// env var or default, per spec §6.4.
func loadConfig() (*Config, error) {
	data, err := os.ReadFile(getConfigPath())
	if os.IsNotExist(err) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func saveConfig(cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(getConfigPath(), data, 0600)
}

// resolvedUploadURL applies the precedence order env var, then config file,
// then built-in default (spec §6.4).
func (c *Config) resolvedUploadURL() string {
	if v := os.Getenv("REWINDTTY_UPLOAD_URL"); v != "" {
		return v
	}
	if c != nil && c.UploadURL != "" {
		return c.UploadURL
	}
	return DefaultUploadURL
}

func (c *Config) resolvedPlayerURL() string {
	if v := os.Getenv("REWINDTTY_PLAYER_URL"); v != "" {
		return v
	}
	if c != nil && c.PlayerURL != "" {
		return c.PlayerURL
	}
	return DefaultPlayerURL
}

func (c *Config) resolvedTelegramToken() string {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		return v
	}
	if c != nil {
		return c.TelegramBotToken
	}
	return ""
}

func (c *Config) resolvedTelegramChatID() string {
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		return v
	}
	if c != nil {
		return c.TelegramChatID
	}
	return ""
}
