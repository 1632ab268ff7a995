// Package settingsfile loads game settings from a TOML file with
// environment overrides. The file is read in full on every Load so edits
// take effect on the next tick.
package settingsfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/notblackorwhite/vc-auto-poster/internal/domain"
	apperrors "github.com/notblackorwhite/vc-auto-poster/internal/errors"
)

const envPrefix = "VCPOSTER"

// fileSettings mirrors the keys of the settings file.
type fileSettings struct {
	URL         string `mapstructure:"url"`
	Topic       int    `mapstructure:"topic"`
	APIUsername string `mapstructure:"api_username"`
	APIKey      string `mapstructure:"api_key"`

	MinDelay     int      `mapstructure:"min_delay"`
	MinPosts     int      `mapstructure:"min_posts"`
	AutoAlign    bool     `mapstructure:"auto_align"`
	SuppressTags []string `mapstructure:"suppress_tags"`

	Pretty   bool   `mapstructure:"pretty"`
	Links    bool   `mapstructure:"links"`
	GameName string `mapstructure:"game_name"`

	KeepUnknownVotes          bool `mapstructure:"keep_unknown_votes"`
	UniqueVoterSubstringMatch bool `mapstructure:"unique_voter_substring_match"`
	MinVoterSubstringLength   int  `mapstructure:"min_voter_substring_length"`
}

// Source reads settings from one file path.
type Source struct {
	path string
}

var _ domain.SettingsSource = (*Source)(nil)

// New returns a source for path. A leading ~ is expanded to the home
// directory.
func New(path string) (*Source, error) {
	expanded, err := expandHome(path)
	if err != nil {
		return nil, apperrors.ConfigError("failed to resolve settings path", err).WithContext("path", path)
	}
	return &Source{path: expanded}, nil
}

// Path is the resolved settings file path.
func (s *Source) Path() string {
	return s.path
}

// Load reads and validates the settings file.
func (s *Source) Load(_ context.Context) (domain.Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(s.path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return domain.Settings{}, apperrors.ConfigError("failed to read settings file", err).WithContext("path", s.path)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var fs fileSettings
	if err := v.Unmarshal(&fs); err != nil {
		return domain.Settings{}, apperrors.ConfigError("failed to parse settings", err).WithContext("path", s.path)
	}

	if err := fs.validate(); err != nil {
		return domain.Settings{}, apperrors.ConfigError("invalid settings", err).WithContext("path", s.path)
	}

	return fs.toDomain(), nil
}

func setDefaults(v *viper.Viper) {
	// Required keys get zero defaults so environment overrides are seen by Unmarshal.
	v.SetDefault("url", "")
	v.SetDefault("topic", 0)
	v.SetDefault("api_username", "")
	v.SetDefault("api_key", "")

	v.SetDefault("min_delay", 20)
	v.SetDefault("min_posts", 50)
	v.SetDefault("auto_align", true)
	v.SetDefault("suppress_tags", []string{})

	v.SetDefault("pretty", false)
	v.SetDefault("links", false)
	v.SetDefault("game_name", "")

	v.SetDefault("keep_unknown_votes", false)
	v.SetDefault("unique_voter_substring_match", false)
	v.SetDefault("min_voter_substring_length", 3)
}

func (fs fileSettings) validate() error {
	var missing []string
	if strings.TrimSpace(fs.URL) == "" {
		missing = append(missing, "url")
	}
	if fs.Topic <= 0 {
		missing = append(missing, "topic")
	}
	if strings.TrimSpace(fs.APIUsername) == "" {
		missing = append(missing, "api_username")
	}
	if strings.TrimSpace(fs.APIKey) == "" {
		missing = append(missing, "api_key")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}

	if fs.MinDelay < 1 {
		return fmt.Errorf("min_delay must be at least 1 minute, got %d", fs.MinDelay)
	}
	if fs.MinPosts < 0 {
		return fmt.Errorf("min_posts must not be negative, got %d", fs.MinPosts)
	}
	if fs.MinVoterSubstringLength < 1 {
		return fmt.Errorf("min_voter_substring_length must be at least 1, got %d", fs.MinVoterSubstringLength)
	}
	return nil
}

func (fs fileSettings) toDomain() domain.Settings {
	tags := make([]string, 0, len(fs.SuppressTags))
	for _, tag := range fs.SuppressTags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	return domain.Settings{
		Endpoint: domain.Endpoint{
			URL:         strings.TrimRight(strings.TrimSpace(fs.URL), "/"),
			APIUsername: fs.APIUsername,
			APIKey:      fs.APIKey,
		},
		Topic:           fs.Topic,
		Interval:        time.Duration(fs.MinDelay) * time.Minute,
		MinPostsBetween: fs.MinPosts,
		AutoAlign:       fs.AutoAlign,
		SuppressTags:    tags,
		Pretty:          fs.Pretty,
		Links:           fs.Links,
		GameName:        strings.TrimSpace(fs.GameName),
		KeepUnresolved:  fs.KeepUnknownVotes,
		Match: domain.MatchOptions{
			UniqueSubstringMatch: fs.UniqueVoterSubstringMatch,
			MinSubstringLength:   fs.MinVoterSubstringLength,
		},
	}
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return filepath.Clean(path), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
