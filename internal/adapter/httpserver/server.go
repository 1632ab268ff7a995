package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/notblackorwhite/vc-auto-poster/internal/adapter/metrics"
	"github.com/notblackorwhite/vc-auto-poster/internal/domain"
)

// TickStatus reports how the publication loop is doing.
type TickStatus interface {
	LastTick() (time.Time, domain.TickOutcome)
}

// Server exposes health, version, status and metrics endpoints. It carries
// no forum functionality.
type Server struct {
	echo *echo.Echo
	addr string

	status       TickStatus
	metrics      *metrics.Set
	healthChecks []HealthCheck
	startTime    time.Time
}

// NewServer builds the status server. metricsSet may be nil, which disables
// /metrics.
func NewServer(addr string, status TickStatus, metricsSet *metrics.Set, healthChecks []HealthCheck) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:         e,
		addr:         addr,
		status:       status,
		metrics:      metricsSet,
		healthChecks: healthChecks,
		startTime:    time.Now(),
	}

	srv.registerRoutes()
	return srv
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	slog.Info("Starting status server", "addr", s.addr)
	if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}
