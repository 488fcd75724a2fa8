package httpserver

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/bookhub/internal/app"
	"github.com/pscheid92/bookhub/internal/bookstore"
	"github.com/pscheid92/bookhub/internal/platform/config"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu       sync.Mutex
	messages map[string][]string
}

func (p *recordingPublisher) Broadcast(_ context.Context, channel, message string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.messages == nil {
		p.messages = make(map[string][]string)
	}
	p.messages[channel] = append(p.messages[channel], message)
	return nil
}

func (p *recordingPublisher) on(channel string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.messages[channel]...)
}

type testServer struct {
	*Server
	store     *bookstore.Store
	publisher *recordingPublisher
	clock     *clockwork.FakeClock
}

type serverOption func(*serverSetup)

type serverSetup struct {
	cfg          *config.Config
	handlers     Handlers
	healthChecks []HealthCheck
}

func withHealthChecks(checks ...HealthCheck) serverOption {
	return func(s *serverSetup) { s.healthChecks = checks }
}

func withHandlers(h Handlers) serverOption {
	return func(s *serverSetup) { s.handlers = h }
}

func withRateLimit(rps float64, burst int) serverOption {
	return func(s *serverSetup) {
		s.cfg.RateLimitRPS = rps
		s.cfg.RateLimitBurst = burst
	}
}

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()

	setup := &serverSetup{
		cfg: &config.Config{
			AppEnv:         "test",
			Port:           "8000",
			RateLimitRPS:   1000,
			RateLimitBurst: 1000,
		},
	}
	for _, opt := range opts {
		opt(setup)
	}

	store := bookstore.New()
	publisher := &recordingPublisher{}
	svc, err := app.NewService(store, publisher, app.SourceREST)
	require.NoError(t, err)

	clock := clockwork.NewFakeClock()
	srv, err := NewServer(setup.cfg, svc, setup.handlers, nil, setup.healthChecks, clock)
	require.NoError(t, err)

	return &testServer{Server: srv, store: store, publisher: publisher, clock: clock}
}

func (ts *testServer) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)
	return rec
}

var _ http.Handler = (*Server)(nil)
