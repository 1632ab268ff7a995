package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/notblackorwhite/vc-auto-poster/internal/platform/version"
)

const readyCheckTimeout = 5 * time.Second

// HealthCheck is one named readiness condition, typically Loop.Check.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type livenessResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
	Uptime    float64   `json:"uptime"`
}

type checkResult struct {
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status string        `json:"status"`
	Checks []checkResult `json:"checks"`
}

func (s *Server) registerHealthRoutes() {
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/version", s.handleVersion)
}

// handleLiveness only reports that the process serves requests; a stuck
// loop shows up in readiness instead.
func (s *Server) handleLiveness(c echo.Context) error {
	resp := livenessResponse{
		Status:    "ok",
		StartedAt: s.startTime.UTC(),
		Uptime:    time.Since(s.startTime).Seconds(),
	}
	if err := c.JSON(http.StatusOK, resp); err != nil {
		return fmt.Errorf("failed to write liveness response: %w", err)
	}
	return nil
}

// handleReadiness runs every check and reports each result.
func (s *Server) handleReadiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readyCheckTimeout)
	defer cancel()

	resp := readinessResponse{Status: "ready", Checks: make([]checkResult, 0, len(s.healthChecks))}
	code := http.StatusOK
	for _, hc := range s.healthChecks {
		result := checkResult{Name: hc.Name, OK: true}
		if err := hc.Check(ctx); err != nil {
			result.OK = false
			result.Error = err.Error()
			resp.Status = "not_ready"
			code = http.StatusServiceUnavailable
		}
		resp.Checks = append(resp.Checks, result)
	}

	if err := c.JSON(code, resp); err != nil {
		return fmt.Errorf("failed to write readiness response: %w", err)
	}
	return nil
}

func (s *Server) handleVersion(c echo.Context) error {
	if err := c.JSON(http.StatusOK, version.Get()); err != nil {
		return fmt.Errorf("failed to write version response: %w", err)
	}
	return nil
}
