package httpserver

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func (s *Server) registerRoutes() {
	s.echo.Use(s.setupRequestLoggerMiddleware())
	s.echo.Use(middleware.Recover())
	s.echo.Use(correlationMiddleware)
	if s.httpMetrics != nil {
		s.echo.Use(s.httpMetrics.Middleware())
	}
	s.echo.Use(ErrorHandlingMiddleware())

	s.registerHealthRoutes()
	s.registerBookRoutes()

	if s.handlers.Metrics != nil {
		s.echo.GET("/metrics", echo.WrapHandler(s.handlers.Metrics))
	}
	if s.handlers.GraphQL != nil {
		s.echo.POST("/graphql", s.handlers.GraphQL)
	}
	if s.handlers.SOAP != nil {
		s.echo.POST("/soap", s.handlers.SOAP)
	}

	s.registerWebSocketRoutes()
}

func (s *Server) registerWebSocketRoutes() {
	s.echo.GET("/websocket/", s.handleWebSocketConsole)
	if s.handlers.BookUpdatesWebSocket != nil {
		s.echo.GET("/websocket/book-updates", echo.WrapHandler(s.handlers.BookUpdatesWebSocket))
	}
	if s.handlers.AdminWebSocket != nil {
		s.echo.GET("/websocket/admin", echo.WrapHandler(s.handlers.AdminWebSocket))
	}
}

func (s *Server) setupRequestLoggerMiddleware() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
			}
			slog.InfoContext(c.Request().Context(), "Request", attrs...)
			return nil
		},
	})
}

func (s *Server) handleWebSocketConsole(c echo.Context) error {
	return s.renderTemplate(c, "websocket.html", map[string]string{
		"BaseURL": webSocketURL(c),
	})
}
