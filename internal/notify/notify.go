package notify

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"text/template"

	"github.com/pscheid92/bookhub/internal/adapter/metrics"
)

// Publisher delivers a rendered message to every subscriber of a channel.
type Publisher interface {
	Broadcast(ctx context.Context, channel, message string) error
}

// Event is the data a notification template is executed against.
//
// On failure Result holds the error itself and Error its text; on success
// Error is empty.
type Event struct {
	Func    string
	Channel string
	Args    any
	Result  any
	Error   string
}

// Operation is any context-aware call with a single input and output.
type Operation[In, Out any] func(ctx context.Context, in In) (Out, error)

// Notifier renders one template and broadcasts it to one channel.
type Notifier struct {
	channel   string
	tmpl      *template.Template
	publisher Publisher
	metrics   *metrics.NotifyMetrics
}

type Option func(*Notifier)

// WithMetrics counts events, render errors and publish errors.
func WithMetrics(m *metrics.NotifyMetrics) Option {
	return func(n *Notifier) { n.metrics = m }
}

// New parses text as a template for notifications sent to channel.
func New(publisher Publisher, channel, text string, opts ...Option) (*Notifier, error) {
	tmpl, err := template.New(channel).Option("missingkey=zero").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse notification template for %s: %w", channel, err)
	}

	n := &Notifier{channel: channel, tmpl: tmpl, publisher: publisher}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// Channel returns the channel this notifier broadcasts to.
func (n *Notifier) Channel() string {
	return n.channel
}

// Render executes the template for ev.
func (n *Notifier) Render(ev Event) (string, error) {
	var buf bytes.Buffer
	if err := n.tmpl.Execute(&buf, ev); err != nil {
		return "", fmt.Errorf("render notification for %s: %w", n.channel, err)
	}
	return buf.String(), nil
}

func (n *Notifier) report(ctx context.Context, ev Event, failed bool) {
	if n.metrics != nil {
		outcome := metrics.OutcomeSuccess
		if failed {
			outcome = metrics.OutcomeFailure
		}
		n.metrics.Events.WithLabelValues(n.channel, outcome).Inc()
	}

	message, err := n.Render(ev)
	if err != nil {
		slog.ErrorContext(ctx, "Notification template failed", "channel", n.channel, "func", ev.Func, "error", err)
		if n.metrics != nil {
			n.metrics.RenderErrors.WithLabelValues(n.channel).Inc()
		}
		return
	}

	if err := n.publisher.Broadcast(ctx, n.channel, message); err != nil {
		slog.WarnContext(ctx, "Notification delivery failed", "channel", n.channel, "func", ev.Func, "error", err)
		if n.metrics != nil {
			n.metrics.PublishErrors.WithLabelValues(n.channel).Inc()
		}
	}
}

// Wrap returns op decorated with n. The notification is broadcast after op
// returns; op's result and error are passed through unchanged. The broadcast
// keeps ctx's values but not its cancellation, so a caller that hangs up
// after op committed still gets its change announced.
func Wrap[In, Out any](n *Notifier, name string, op Operation[In, Out]) Operation[In, Out] {
	return func(ctx context.Context, in In) (Out, error) {
		out, err := op(ctx, in)

		ev := Event{Func: name, Channel: n.channel, Args: in, Result: out}
		if err != nil {
			ev.Result = err
			ev.Error = err.Error()
		}
		n.report(context.WithoutCancel(ctx), ev, err != nil)

		return out, err
	}
}

// Stack wraps op with notifiers in decorator order: notifiers[0] is the
// outermost and broadcasts last.
func Stack[In, Out any](name string, op Operation[In, Out], notifiers ...*Notifier) Operation[In, Out] {
	for i := len(notifiers) - 1; i >= 0; i-- {
		op = Wrap(notifiers[i], name, op)
	}
	return op
}
