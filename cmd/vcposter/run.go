package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/notblackorwhite/vc-auto-poster/internal/adapter/httpserver"
	"github.com/notblackorwhite/vc-auto-poster/internal/adapter/metrics"
	"github.com/notblackorwhite/vc-auto-poster/internal/app"
	"github.com/notblackorwhite/vc-auto-poster/internal/platform/version"
)

const shutdownTimeout = 10 * time.Second

func init() {
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Post votecounts on a schedule until interrupted (default)",
	RunE:  runLoop,
}

func runLoop(cmd *cobra.Command, _ []string) error {
	cfg, closer, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	slog.Info("VC auto-poster starting", "env", cfg.AppEnv, "version", version.Get().Version)

	settings, err := newSettingsSource(cfg)
	if err != nil {
		return err
	}

	clock := clockwork.NewRealClock()
	set := metrics.NewSet()
	loop := app.NewLoop(settings, newPoster(cfg, set, clock), clock)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return loop.Run(ctx)
	})

	if cfg.HTTPAddr != "" {
		srv := httpserver.NewServer(cfg.HTTPAddr, loop, set, []httpserver.HealthCheck{
			{Name: "loop", Check: loop.Check},
		})
		g.Go(srv.Start)
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("poster stopped: %w", err)
	}
	slog.Info("VC auto-poster stopped")
	return nil
}
