package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/notblackorwhite/vc-auto-poster/internal/adapter/discourse"
	"github.com/notblackorwhite/vc-auto-poster/internal/adapter/metrics"
	"github.com/notblackorwhite/vc-auto-poster/internal/adapter/settingsfile"
	"github.com/notblackorwhite/vc-auto-poster/internal/app"
	"github.com/notblackorwhite/vc-auto-poster/internal/domain"
	"github.com/notblackorwhite/vc-auto-poster/internal/platform/config"
	"github.com/notblackorwhite/vc-auto-poster/internal/platform/logging"
	"github.com/notblackorwhite/vc-auto-poster/internal/platform/version"
)

// setup loads the bootstrap config and installs the logger. The returned
// closer flushes the log file, if any.
func setup() (*config.Config, io.Closer, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if settingsPath != "" {
		cfg.SettingsPath = settingsPath
	}

	closer := logging.InitLogger(cfg.LogLevel, cfg.LogFormat, logging.FileOptions{
		Path:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
	return cfg, closer, nil
}

func newSettingsSource(cfg *config.Config) (*settingsfile.Source, error) {
	src, err := settingsfile.New(cfg.SettingsPath)
	if err != nil {
		return nil, err
	}
	slog.Info("Using settings file", "path", src.Path())
	return src, nil
}

func forumFactory(cfg *config.Config, observer discourse.Observer) app.ForumFactory {
	return func(endpoint domain.Endpoint) (domain.Forum, error) {
		return discourse.New(endpoint, discourse.Options{
			Timeout:           cfg.ForumTimeout,
			RequestsPerSecond: cfg.ForumRequestsPerSecond,
			UserAgent:         version.Get().UserAgent(),
			Observer:          observer,
		})
	}
}

func newPoster(cfg *config.Config, set *metrics.Set, clock clockwork.Clock) *app.Poster {
	if set == nil {
		return app.NewPoster(forumFactory(cfg, nil), nil, clock)
	}
	return app.NewPoster(forumFactory(cfg, set.Forum), set.Poster, clock)
}
