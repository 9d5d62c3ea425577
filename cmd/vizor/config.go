package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Config holds all vizor server configuration.
// Priority: env vars > settings.json > defaults.
type Config struct {
	ListenAddr    string `json:"listen_addr"`
	DBPath        string `json:"db_path"`
	LogLevel      string `json:"log_level"`
	Viewer        bool   `json:"viewer"`
	Fullscreen    bool   `json:"fullscreen"`
	RetentionCron string `json:"retention_cron"`
	RetentionDays int    `json:"retention_days"`
}

func defaultConfig() Config {
	return Config{
		ListenAddr:    ":4700",
		DBPath:        filepath.Join(vizorDir(), "vizor.db"),
		LogLevel:      "info",
		Viewer:        true,
		RetentionCron: "0 3 * * *",
		RetentionDays: 30,
	}
}

func vizorDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".vizor"
	}
	return filepath.Join(home, ".vizor")
}

func settingsPath() string {
	return filepath.Join(vizorDir(), "settings.json")
}

func loadConfig() Config {
	cfg := defaultConfig()

	// Layer 2: settings.json (ignore if missing).
	if data, err := os.ReadFile(settingsPath()); err == nil {
		_ = json.Unmarshal(data, &cfg)
	}

	// Layer 3: env vars override.
	if v := os.Getenv("VIZOR_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("VIZOR_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("VIZOR_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("VIZOR_VIEWER"); v != "" {
		cfg.Viewer = v == "true" || v == "1"
	}
	if v := os.Getenv("VIZOR_FULLSCREEN"); v != "" {
		cfg.Fullscreen = v == "true" || v == "1"
	}
	if v := os.Getenv("VIZOR_RETENTION_CRON"); v != "" {
		cfg.RetentionCron = v
	}

	return cfg
}

// retentionMaxAge converts the configured retention window to a duration.
// Zero or negative days disables the sweeper.
func (c Config) retentionMaxAge() time.Duration {
	if c.RetentionDays <= 0 {
		return 0
	}
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}
