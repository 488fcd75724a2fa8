package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/bookhub/internal/adapter/graphqlapi"
	"github.com/pscheid92/bookhub/internal/adapter/grpcapi"
	"github.com/pscheid92/bookhub/internal/adapter/httpserver"
	"github.com/pscheid92/bookhub/internal/adapter/metrics"
	"github.com/pscheid92/bookhub/internal/adapter/soap"
	"github.com/pscheid92/bookhub/internal/adapter/websocket"
	"github.com/pscheid92/bookhub/internal/admin"
	"github.com/pscheid92/bookhub/internal/app"
	"github.com/pscheid92/bookhub/internal/bookstore"
	"github.com/pscheid92/bookhub/internal/broadcast"
	"github.com/pscheid92/bookhub/internal/notify"
	"github.com/pscheid92/bookhub/internal/platform/config"
	"github.com/pscheid92/bookhub/internal/platform/logging"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and gRPC servers",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

type services struct {
	rest, graphql, grpc, soap, websocket *app.Service
}

func newServices(store *bookstore.Store, broadcaster *broadcast.Broadcaster, opts ...notify.Option) (*services, error) {
	build := func(source app.Source) (*app.Service, error) {
		svc, err := app.NewService(store, broadcaster, source, opts...)
		if err != nil {
			return nil, fmt.Errorf("create %s service: %w", source, err)
		}
		return svc, nil
	}

	var s services
	var err error
	targets := []struct {
		dst    **app.Service
		source app.Source
	}{
		{&s.rest, app.SourceREST},
		{&s.graphql, app.SourceGraphQL},
		{&s.grpc, app.SourceGRPC},
		{&s.soap, app.SourceSOAP},
		{&s.websocket, app.SourceWebSocket},
	}
	for _, t := range targets {
		if *t.dst, err = build(t.source); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// slog is not configured yet
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func runServe(cmd *cobra.Command, _ []string) error {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "grpc_port", cfg.GRPCPort)

	registry := metrics.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)
	wsMetrics := metrics.NewWebSocketMetrics(registry)
	grpcMetrics := metrics.NewGRPCMetrics(registry)
	notifyMetrics := metrics.NewNotifyMetrics(registry)

	store := bookstore.New()
	metrics.RegisterStoreSize(registry, store.Len)

	broadcaster := broadcast.NewBroadcaster(metrics.NewBroadcastMetrics(registry))

	svcs, err := newServices(store, broadcaster, notify.WithMetrics(notifyMetrics))
	if err != nil {
		return err
	}

	graphqlHandler, err := graphqlapi.NewHandler(svcs.graphql)
	if err != nil {
		return err
	}

	wsHandler := websocket.NewHandler(
		broadcaster,
		admin.NewHandler(svcs.websocket),
		websocket.NewCheckOrigin(cfg.AppURL, cfg.IsDevelopment()),
		wsMetrics,
		clock,
		cfg.WebSocketWriteTimeout,
	)

	grpcServer := grpcapi.NewServer(svcs.grpc, grpcMetrics)
	grpcListener, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("failed to listen on gRPC port: %w", err)
	}

	healthChecks := []httpserver.HealthCheck{
		{Name: "broadcaster", Check: broadcaster.Ping},
		{Name: "store", Check: store.Ping},
		{Name: "grpc", Check: grpcServer.Healthy},
	}

	srv, err := httpserver.NewServer(cfg, svcs.rest, httpserver.Handlers{
		GraphQL:              graphqlHandler.Handle,
		SOAP:                 soap.NewHandler(svcs.soap).Handle,
		BookUpdatesWebSocket: wsHandler.BookUpdates(),
		AdminWebSocket:       wsHandler.Admin(),
		Metrics:              metrics.Handler(registry),
	}, httpMetrics, healthChecks, clock)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	grpcErr := make(chan error, 1)
	go func() { grpcErr <- grpcServer.Serve(grpcListener) }()

	httpErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			httpErr <- err
		}
		close(httpErr)
	}()

	var runErr error
	select {
	case <-cmd.Context().Done():
		slog.Info("Shutdown signal received, cleaning up...")
	case err := <-grpcErr:
		runErr = err
	case err := <-httpErr:
		runErr = err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", "error", err)
	}
	grpcServer.Stop(shutdownCtx)
	broadcaster.Stop()

	slog.Info("Shutdown complete")
	return runErr
}
