package httpserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type statusResponse struct {
	LastTick    *time.Time `json:"last_tick,omitempty"`
	LastOutcome string     `json:"last_outcome,omitempty"`
}

func (s *Server) handleStatus(c echo.Context) error {
	var resp statusResponse
	if s.status != nil {
		if at, outcome := s.status.LastTick(); !at.IsZero() {
			resp.LastTick = &at
			resp.LastOutcome = string(outcome)
		}
	}

	if err := c.JSON(http.StatusOK, resp); err != nil {
		return fmt.Errorf("failed to write status response: %w", err)
	}
	return nil
}
