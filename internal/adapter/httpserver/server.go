package httpserver

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/pscheid92/bookhub/internal/adapter/metrics"
	"github.com/pscheid92/bookhub/internal/domain"
	"github.com/pscheid92/bookhub/internal/platform/config"
)

//go:embed templates/*.html
var templateFiles embed.FS

type bookService interface {
	ListBooks(ctx context.Context, filter domain.BookFilter) ([]domain.Book, error)
	AddBook(ctx context.Context, title string) (domain.Book, error)
	GetBook(ctx context.Context, id int) (domain.Book, error)
	UpdateBook(ctx context.Context, id int, title string) (domain.Book, error)
	DeleteBook(ctx context.Context, id int) error
}

// Handlers are the non-REST front ends mounted on the HTTP server. Nil
// entries are not routed.
type Handlers struct {
	GraphQL echo.HandlerFunc
	SOAP    echo.HandlerFunc

	BookUpdatesWebSocket http.Handler
	AdminWebSocket       http.Handler

	Metrics http.Handler
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	books       bookService
	handlers    Handlers
	httpMetrics *metrics.HTTPMetrics

	templates    *template.Template
	healthChecks []HealthCheck
	clock        clockwork.Clock
	startTime    time.Time
}

func NewServer(cfg *config.Config, books bookService, handlers Handlers, httpMetrics *metrics.HTTPMetrics, healthChecks []HealthCheck, clock clockwork.Clock) (*Server, error) {
	templates, err := template.ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:         e,
		config:       cfg,
		books:        books,
		handlers:     handlers,
		httpMetrics:  httpMetrics,
		templates:    templates,
		healthChecks: healthChecks,
		clock:        clock,
		startTime:    clock.Now(),
	}

	srv.registerRoutes()

	return srv, nil
}

func (s *Server) Start() error {
	slog.Info("Starting HTTP server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
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

// ServeHTTP exposes the router for in-process tests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

func (s *Server) renderTemplate(c echo.Context, name string, data any) error {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		slog.ErrorContext(c.Request().Context(), "Template execution failed", "path", c.Request().URL.Path, "error", err)
		if err := c.String(http.StatusInternalServerError, "Failed to render page"); err != nil {
			return fmt.Errorf("failed to send error response: %w", err)
		}
		return nil
	}
	if err := c.HTMLBlob(http.StatusOK, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to send HTML response: %w", err)
	}
	return nil
}

// webSocketURL derives the ws:// or wss:// base from the request, honouring
// X-Forwarded-Proto.
func webSocketURL(c echo.Context) string {
	scheme := "ws"
	if c.Request().TLS != nil {
		scheme = "wss"
	}
	switch c.Request().Header.Get("X-Forwarded-Proto") {
	case "https":
		scheme = "wss"
	case "http":
		scheme = "ws"
	}
	return fmt.Sprintf("%s://%s", scheme, c.Request().Host)
}
