package broadcast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pscheid92/bookhub/internal/adapter/metrics"
)

// ErrStopped is returned by SendPersonal and Broadcast after Stop.
var ErrStopped = errors.New("broadcaster stopped")

// Subscriber is an opaque handle to a live connection. Implementations must be
// comparable (pointer types) and safe for concurrent Send calls.
type Subscriber interface {
	ID() string
	Send(ctx context.Context, message string) error
}

type subscriberSet map[Subscriber]struct{}

// broadcasterCmd is the command interface for the Broadcaster actor.
type broadcasterCmd interface{ isBroadcasterCmd() }

type baseBroadcasterCmd struct{}

func (baseBroadcasterCmd) isBroadcasterCmd() {}

type connectCmd struct {
	baseBroadcasterCmd
	channel    string
	subscriber Subscriber
	done       chan struct{}
}

type disconnectCmd struct {
	baseBroadcasterCmd
	channel    string
	subscriber Subscriber
	done       chan struct{}
}

type snapshotCmd struct {
	baseBroadcasterCmd
	channel      string
	replyChannel chan []Subscriber
}

type pingCmd struct {
	baseBroadcasterCmd
	done chan struct{}
}

type stopCmd struct {
	baseBroadcasterCmd
}

// Broadcaster owns the channel registry. Channels are created on first Connect
// and kept for the lifetime of the process.
type Broadcaster struct {
	cmdCh    chan broadcasterCmd
	channels map[string]subscriberSet
	metrics  *metrics.BroadcastMetrics
	done     chan struct{}
}

// NewBroadcaster starts the registry goroutine. m may be nil.
func NewBroadcaster(m *metrics.BroadcastMetrics) *Broadcaster {
	b := &Broadcaster{
		cmdCh:    make(chan broadcasterCmd, 64),
		channels: make(map[string]subscriberSet),
		metrics:  m,
		done:     make(chan struct{}),
	}
	go b.run()
	return b
}

// Connect adds sub to channel. Connecting the same handle twice is a no-op.
// Once Connect returns, every later Broadcast to channel includes sub.
func (b *Broadcaster) Connect(sub Subscriber, channel string) {
	done := make(chan struct{})
	if b.send(connectCmd{channel: channel, subscriber: sub, done: done}) {
		b.wait(done)
	}
}

// Disconnect removes sub from channel if present.
func (b *Broadcaster) Disconnect(sub Subscriber, channel string) {
	done := make(chan struct{})
	if b.send(disconnectCmd{channel: channel, subscriber: sub, done: done}) {
		b.wait(done)
	}
}

// SendPersonal delivers message to exactly sub, blocking until its transport
// accepts it.
func (b *Broadcaster) SendPersonal(ctx context.Context, sub Subscriber, message string) error {
	select {
	case <-b.done:
		return ErrStopped
	default:
	}

	if err := sub.Send(ctx, message); err != nil {
		return fmt.Errorf("send to subscriber %s: %w", sub.ID(), err)
	}
	return nil
}

// Broadcast delivers message to every subscriber connected to channel at the
// time of the call, one at a time and in no particular order. A channel
// without subscribers is a no-op. The first delivery fault stops the fan-out
// and is returned.
func (b *Broadcaster) Broadcast(ctx context.Context, channel, message string) error {
	subscribers, ok := b.snapshot(channel)
	if !ok {
		return ErrStopped
	}

	for _, sub := range subscribers {
		if err := sub.Send(ctx, message); err != nil {
			if b.metrics != nil {
				b.metrics.Faults.WithLabelValues(channel).Inc()
			}
			return fmt.Errorf("broadcast to %s: subscriber %s: %w", channel, sub.ID(), err)
		}
		if b.metrics != nil {
			b.metrics.Deliveries.WithLabelValues(channel).Inc()
		}
	}
	return nil
}

// SubscriberCount returns the number of subscribers currently in channel.
func (b *Broadcaster) SubscriberCount(channel string) int {
	subscribers, _ := b.snapshot(channel)
	return len(subscribers)
}

// Ping round-trips a command through the registry goroutine. It returns
// ErrStopped after Stop and ctx's error when the registry does not answer in
// time.
func (b *Broadcaster) Ping(ctx context.Context) error {
	done := make(chan struct{})
	select {
	case b.cmdCh <- pingCmd{done: done}:
	case <-b.done:
		return ErrStopped
	case <-ctx.Done():
		return fmt.Errorf("ping broadcaster: %w", ctx.Err())
	}

	select {
	case <-done:
		return nil
	case <-b.done:
		return ErrStopped
	case <-ctx.Done():
		return fmt.Errorf("ping broadcaster: %w", ctx.Err())
	}
}

// Stop shuts the registry goroutine down. Subscriber connections are owned by
// their transports and are not closed here.
func (b *Broadcaster) Stop() {
	if b.send(stopCmd{}) {
		<-b.done
	}
}

func (b *Broadcaster) snapshot(channel string) ([]Subscriber, bool) {
	replyCh := make(chan []Subscriber, 1)
	if !b.send(snapshotCmd{channel: channel, replyChannel: replyCh}) {
		return nil, false
	}
	select {
	case subscribers := <-replyCh:
		return subscribers, true
	case <-b.done:
		return nil, false
	}
}

// wait blocks until the actor acknowledged a command or exited.
func (b *Broadcaster) wait(ack <-chan struct{}) {
	select {
	case <-ack:
	case <-b.done:
	}
}

func (b *Broadcaster) send(cmd broadcasterCmd) bool {
	select {
	case b.cmdCh <- cmd:
		return true
	case <-b.done:
		return false
	}
}

func (b *Broadcaster) run() {
	defer close(b.done)

	for cmd := range b.cmdCh {
		switch c := cmd.(type) {
		case connectCmd:
			b.handleConnect(c)
		case disconnectCmd:
			b.handleDisconnect(c)
		case snapshotCmd:
			set := b.channels[c.channel]
			subscribers := make([]Subscriber, 0, len(set))
			for sub := range set {
				subscribers = append(subscribers, sub)
			}
			c.replyChannel <- subscribers
		case pingCmd:
			close(c.done)
		case stopCmd:
			slog.Info("Broadcaster shutting down", "channels", len(b.channels))
			return
		default:
			slog.Warn("Broadcaster received unknown command type", "command_type", fmt.Sprintf("%T", cmd))
		}
	}
}

func (b *Broadcaster) handleConnect(c connectCmd) {
	defer close(c.done)

	set, exists := b.channels[c.channel]
	if !exists {
		set = make(subscriberSet)
		b.channels[c.channel] = set
	}
	if _, already := set[c.subscriber]; already {
		return
	}
	set[c.subscriber] = struct{}{}

	if b.metrics != nil {
		b.metrics.Subscribers.WithLabelValues(c.channel).Set(float64(len(set)))
	}
	slog.Debug("Subscriber connected", "channel", c.channel, "subscriber_id", c.subscriber.ID(), "total_subscribers", len(set))
}

func (b *Broadcaster) handleDisconnect(c disconnectCmd) {
	defer close(c.done)

	set, exists := b.channels[c.channel]
	if !exists {
		return
	}
	if _, present := set[c.subscriber]; !present {
		return
	}
	delete(set, c.subscriber)

	if b.metrics != nil {
		b.metrics.Subscribers.WithLabelValues(c.channel).Set(float64(len(set)))
	}
	slog.Debug("Subscriber disconnected", "channel", c.channel, "subscriber_id", c.subscriber.ID(), "remaining_subscribers", len(set))
}
