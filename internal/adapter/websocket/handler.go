package websocket

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/bookhub/internal/adapter/metrics"
	"github.com/pscheid92/bookhub/internal/broadcast"
	"github.com/pscheid92/bookhub/internal/domain"
	"github.com/pscheid92/bookhub/internal/platform/correlation"
)

const (
	MessageGreeting     = "Connection established"
	MessageDisconnected = "Client disconnected"

	endpointBookUpdates = "book-updates"
	endpointAdmin       = "admin"
)

type hub interface {
	Connect(sub broadcast.Subscriber, channel string)
	Disconnect(sub broadcast.Subscriber, channel string)
	SendPersonal(ctx context.Context, sub broadcast.Subscriber, message string) error
	Broadcast(ctx context.Context, channel, message string) error
}

type commandHandler interface {
	Handle(ctx context.Context, line string) string
}

// Handler serves the two WebSocket endpoints. Every connection becomes a
// subscriber of exactly one channel for its lifetime.
type Handler struct {
	upgrader     websocket.Upgrader
	hub          hub
	commands     commandHandler
	metrics      *metrics.WebSocketMetrics
	clock        clockwork.Clock
	writeTimeout time.Duration
}

// NewHandler wires the endpoints to hub. wsMetrics may be nil.
func NewHandler(h hub, commands commandHandler, checkOrigin func(*http.Request) bool, wsMetrics *metrics.WebSocketMetrics, clock clockwork.Clock, writeTimeout time.Duration) *Handler {
	return &Handler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		hub:          h,
		commands:     commands,
		metrics:      wsMetrics,
		clock:        clock,
		writeTimeout: writeTimeout,
	}
}

// BookUpdates listens on the book_updates channel. Inbound text is logged and
// otherwise ignored. When the client leaves, the remaining listeners are told.
func (h *Handler) BookUpdates() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.serve(w, r, endpointBookUpdates, domain.ChannelBookUpdates,
			func(ctx context.Context, line string) {
				slog.DebugContext(ctx, "WebSocket message ignored", "endpoint", endpointBookUpdates, "message", line)
			},
			func(ctx context.Context) {
				if err := h.hub.Broadcast(ctx, domain.ChannelBookUpdates, MessageDisconnected); err != nil {
					slog.WarnContext(ctx, "Disconnect notice not delivered", "error", err)
				}
			},
		)
	})
}

// Admin subscribes to admin_notifications and runs every inbound line through
// the command handler; the reply goes to the whole admin channel.
func (h *Handler) Admin() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.serve(w, r, endpointAdmin, domain.ChannelAdminNotifications,
			func(ctx context.Context, line string) {
				reply := h.commands.Handle(ctx, line)
				if err := h.hub.Broadcast(ctx, domain.ChannelAdminNotifications, reply); err != nil {
					slog.WarnContext(ctx, "Admin reply not delivered", "error", err)
				}
			},
			nil,
		)
	})
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, endpoint, channel string, onMessage func(context.Context, string), onClose func(context.Context)) {
	ctx := requestContext(r)

	connection, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.WarnContext(ctx, "WebSocket upgrade failed", "endpoint", endpoint, "error", err)
		return
	}

	conn := newConn(connection, h.clock, h.writeTimeout)
	defer conn.close()

	if h.metrics != nil {
		h.metrics.ActiveConnections.WithLabelValues(endpoint).Inc()
		defer h.metrics.ActiveConnections.WithLabelValues(endpoint).Dec()
	}

	h.hub.Connect(conn, channel)
	slog.InfoContext(ctx, "WebSocket connected", "endpoint", endpoint, "subscriber", conn.ID())

	if err := h.hub.SendPersonal(ctx, conn, MessageGreeting); err != nil {
		slog.WarnContext(ctx, "Greeting not delivered", "subscriber", conn.ID(), "error", err)
		h.hub.Disconnect(conn, channel)
		return
	}

	for {
		line, err := conn.read()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				slog.InfoContext(ctx, "WebSocket closed unexpectedly", "subscriber", conn.ID(), "error", err)
			}
			break
		}
		if h.metrics != nil {
			h.metrics.MessagesReceived.WithLabelValues(endpoint).Inc()
		}
		onMessage(ctx, line)
	}

	h.hub.Disconnect(conn, channel)
	slog.InfoContext(ctx, "WebSocket disconnected", "endpoint", endpoint, "subscriber", conn.ID())

	if onClose != nil {
		onClose(ctx)
	}
}

// requestContext keeps the correlation ID the HTTP middleware already assigned
// and only mints one when the handler is mounted without it.
func requestContext(r *http.Request) context.Context {
	if _, ok := correlation.ID(r.Context()); ok {
		return r.Context()
	}
	ctx, _ := correlation.Ensure(r.Context(), r.Header.Get(correlation.Header))
	return ctx
}
