package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

// Config holds process-lifetime settings. Game settings that may change
// while running live in the settings file and are re-read every tick.
type Config struct {
	AppEnv    string `env:"APP_ENV" default:"development"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	LogFile       string `env:"LOG_FILE"`
	LogMaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" default:"20"`
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS" default:"5"`
	LogMaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" default:"30"`

	// HTTPAddr serves health and metrics; empty disables the server.
	HTTPAddr string `env:"HTTP_ADDR" default:":9090"`

	SettingsPath string `env:"SETTINGS_PATH" default:"~/.config/vc-auto-poster.toml"`

	ForumRequestsPerSecond float64       `env:"FORUM_REQUESTS_PER_SECOND" default:"2"`
	ForumTimeout           time.Duration `env:"FORUM_TIMEOUT" default:"30s"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.SettingsPath == "" {
		return errors.New("SETTINGS_PATH is required")
	}

	switch cfg.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	if cfg.ForumRequestsPerSecond <= 0 {
		return errors.New("FORUM_REQUESTS_PER_SECOND must be positive")
	}
	if cfg.ForumTimeout <= 0 {
		return errors.New("FORUM_TIMEOUT must be positive")
	}
	if cfg.LogFile != "" && cfg.LogMaxSizeMB <= 0 {
		return errors.New("LOG_MAX_SIZE_MB must be positive when LOG_FILE is set")
	}

	return nil
}
