package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pscheid92/bookhub/internal/platform/version"
)

const (
	startupProbeTimeout   = 2 * time.Second
	readinessProbeTimeout = 5 * time.Second

	checkPassed = "ok"
)

// HealthCheck probes one dependency of the running service, such as the
// broadcaster registry, the store lock or the gRPC listener.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type healthReport struct {
	Status      string            `json:"status"`
	FailedCheck string            `json:"failed_check,omitempty"`
	Checks      map[string]string `json:"checks"`
}

func (s *Server) registerHealthRoutes() {
	s.echo.GET("/health/startup", s.handleStartup)
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/version", s.handleVersion)
}

func (s *Server) handleStartup(c echo.Context) error {
	return s.reportHealth(c, startupProbeTimeout)
}

func (s *Server) handleReadiness(c echo.Context) error {
	return s.reportHealth(c, readinessProbeTimeout)
}

// handleLiveness only proves the HTTP loop answers; dependencies belong to
// readiness.
func (s *Server) handleLiveness(c echo.Context) error {
	response := map[string]any{
		"status":     "ok",
		"started_at": s.startTime.UTC().Format(time.RFC3339),
		"uptime":     s.clock.Since(s.startTime).Seconds(),
	}
	if err := c.JSON(http.StatusOK, response); err != nil {
		return fmt.Errorf("failed to write liveness response: %w", err)
	}
	return nil
}

func (s *Server) reportHealth(c echo.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
	defer cancel()

	report := s.runHealthChecks(ctx)
	code := http.StatusOK
	if report.FailedCheck != "" {
		code = http.StatusServiceUnavailable
		slog.WarnContext(ctx, "Health check failed", "path", c.Path(), "check", report.FailedCheck, "error", report.Checks[report.FailedCheck])
	}

	if err := c.JSON(code, report); err != nil {
		return fmt.Errorf("failed to send health response: %w", err)
	}
	return nil
}

// runHealthChecks runs every check so one report shows all broken
// dependencies. FailedCheck names the first in registration order.
func (s *Server) runHealthChecks(ctx context.Context) healthReport {
	report := healthReport{Status: "ready", Checks: make(map[string]string, len(s.healthChecks))}
	for _, hc := range s.healthChecks {
		if err := hc.Check(ctx); err != nil {
			report.Checks[hc.Name] = err.Error()
			if report.FailedCheck == "" {
				report.Status = "unhealthy"
				report.FailedCheck = hc.Name
			}
			continue
		}
		report.Checks[hc.Name] = checkPassed
	}
	return report
}

func (s *Server) handleVersion(c echo.Context) error {
	if err := c.JSON(http.StatusOK, version.Get()); err != nil {
		return fmt.Errorf("failed to write version response: %w", err)
	}
	return nil
}
