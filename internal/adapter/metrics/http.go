package metrics

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// Front ends served over plain HTTP. WebSocket upgrades and operational
// routes are not measured here.
const (
	FrontendREST    = "rest"
	FrontendGraphQL = "graphql"
	FrontendSOAP    = "soap"
	FrontendOther   = "other"

	frontendSkipped = ""
)

// Request outcomes derived from the response status.
const (
	OutcomeOK          = "ok"
	OutcomeInvalid     = "invalid"
	OutcomeNotFound    = "not_found"
	OutcomeRateLimited = "rate_limited"
	OutcomeClientError = "client_error"
	OutcomeServerError = "server_error"
)

// HTTPMetrics tracks requests per front end and how they ended, so a spike in
// REST 404s or GraphQL 400s is visible without reading logs.
type HTTPMetrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
	InFlight *prometheus.GaugeVec
}

func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	m := &HTTPMetrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by front end, method, route and outcome.",
		}, []string{"frontend", "method", "route", "outcome"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by front end and outcome.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"frontend", "outcome"}),
		InFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "HTTP requests currently being served, by front end.",
		}, []string{"frontend"}),
	}

	reg.MustRegister(m.Requests, m.Duration, m.InFlight)
	return m
}

// Frontend names the front end that owns an echo route template.
func Frontend(route string) string {
	switch {
	case route == "/rest" || strings.HasPrefix(route, "/rest/"):
		return FrontendREST
	case route == "/graphql":
		return FrontendGraphQL
	case route == "/soap":
		return FrontendSOAP
	case route == "/metrics", route == "/version",
		strings.HasPrefix(route, "/health/"), strings.HasPrefix(route, "/websocket/"):
		return frontendSkipped
	default:
		return FrontendOther
	}
}

// Outcome classifies a response status.
func Outcome(status int) string {
	switch {
	case status < http.StatusBadRequest:
		return OutcomeOK
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return OutcomeInvalid
	case status == http.StatusNotFound:
		return OutcomeNotFound
	case status == http.StatusTooManyRequests:
		return OutcomeRateLimited
	case status < http.StatusInternalServerError:
		return OutcomeClientError
	default:
		return OutcomeServerError
	}
}

// Middleware records every request to a book front end. Errors that reach it
// without a written response (echo.HTTPError) are classified by their code.
func (m *HTTPMetrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			route := c.Path()
			frontend := Frontend(route)
			if frontend == frontendSkipped {
				return next(c)
			}

			inFlight := m.InFlight.WithLabelValues(frontend)
			inFlight.Inc()
			defer inFlight.Dec()

			start := time.Now()
			err := next(c)

			outcome := Outcome(responseStatus(c, err))
			m.Duration.WithLabelValues(frontend, outcome).Observe(time.Since(start).Seconds())
			m.Requests.WithLabelValues(frontend, c.Request().Method, route, outcome).Inc()
			return err
		}
	}
}

func responseStatus(c echo.Context, err error) int {
	if err == nil || c.Response().Committed {
		return c.Response().Status
	}
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code
	}
	return http.StatusInternalServerError
}
