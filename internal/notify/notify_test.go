package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/pscheid92/bookhub/internal/adapter/metrics"
	"github.com/pscheid92/bookhub/internal/domain"
	"github.com/pscheid92/bookhub/internal/platform/correlation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	channel string
	message string
}

type mockPublisher struct {
	mu   sync.Mutex
	log  []published
	err  error
	hook func(channel string)
}

func (m *mockPublisher) Broadcast(_ context.Context, channel, message string) error {
	if m.hook != nil {
		m.hook(channel)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log = append(m.log, published{channel: channel, message: message})
	return m.err
}

func (m *mockPublisher) messages() []published {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]published(nil), m.log...)
}

// ctxPublisher refuses delivery on a done context, like a transport write
// bounded by the caller's deadline.
type ctxPublisher struct {
	mockPublisher
	ids []string
}

func (p *ctxPublisher) Broadcast(ctx context.Context, channel, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id, _ := correlation.ID(ctx)
	p.mu.Lock()
	p.ids = append(p.ids, id)
	p.mu.Unlock()
	return p.mockPublisher.Broadcast(ctx, channel, message)
}

type codedError struct{ code int }

func (e *codedError) Error() string { return fmt.Sprintf("code %d", e.code) }

func mustNotifier(t *testing.T, pub Publisher, channel, text string, opts ...Option) *Notifier {
	t.Helper()
	n, err := New(pub, channel, text, opts...)
	require.NoError(t, err)
	return n
}

func TestNew_InvalidTemplate(t *testing.T) {
	_, err := New(&mockPublisher{}, "book_updates", "{{.Func")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "book_updates")
}

func TestWrap_SuccessBroadcastsResultOnce(t *testing.T) {
	pub := &mockPublisher{}
	n := mustNotifier(t, pub, "book_updates", "{{.Func}} args={{.Args}} return={{.Result}} error={{.Error}}")

	op := Wrap(n, "add_book", func(_ context.Context, title string) (domain.Book, error) {
		return domain.Book{ID: 7, Title: title}, nil
	})

	book, err := op(context.Background(), "Dune")

	require.NoError(t, err)
	assert.Equal(t, domain.Book{ID: 7, Title: "Dune"}, book)
	require.Len(t, pub.messages(), 1)
	assert.Equal(t, published{
		channel: "book_updates",
		message: "add_book args=Dune return=Book(id=7 title=Dune) error=",
	}, pub.messages()[0])
}

func TestWrap_FailureBroadcastsErrorAndReturnsSameError(t *testing.T) {
	pub := &mockPublisher{}
	n := mustNotifier(t, pub, "admin_notifications", "{{.Func}}({{.Args}}) -> {{.Result}} / {{.Error}}")

	sentinel := &codedError{code: 404}
	op := Wrap(n, "delete_book", func(_ context.Context, id int) (bool, error) {
		return false, sentinel
	})

	ok, err := op(context.Background(), 3)

	assert.False(t, ok)
	assert.Same(t, sentinel, err)
	var coded *codedError
	require.ErrorAs(t, err, &coded)
	assert.Equal(t, 404, coded.code)

	require.Len(t, pub.messages(), 1)
	assert.Equal(t, "delete_book(3) -> code 404 / code 404", pub.messages()[0].message)
}

func TestWrap_WrappedSentinelSurvives(t *testing.T) {
	pub := &mockPublisher{}
	n := mustNotifier(t, pub, "book_updates", "{{.Error}}")

	op := Wrap(n, "get_book", func(_ context.Context, id int) (domain.Book, error) {
		return domain.Book{}, fmt.Errorf("get %d: %w", id, domain.ErrBookNotFound)
	})

	_, err := op(context.Background(), 9)

	assert.ErrorIs(t, err, domain.ErrBookNotFound)
	assert.Equal(t, "get 9: book not found", pub.messages()[0].message)
}

func TestWrap_TemplateFieldsFromStructArgs(t *testing.T) {
	pub := &mockPublisher{}
	n := mustNotifier(t, pub, "admin_notifications",
		"function: {{.Func}}, title: {{.Args.Title}}, id__gt: {{.Args.IDGt}}, channel: {{.Channel}}")

	op := Wrap(n, "get_books", func(_ context.Context, f domain.BookFilter) ([]domain.Book, error) {
		return nil, nil
	})

	_, err := op(context.Background(), domain.BookFilter{Title: "X", IDGt: 2})
	require.NoError(t, err)

	assert.Equal(t, "function: get_books, title: X, id__gt: 2, channel: admin_notifications", pub.messages()[0].message)
}

func TestStack_InnerBroadcastsFirstAfterOperation(t *testing.T) {
	var mu sync.Mutex
	var order []string
	record := func(s string) {
		mu.Lock()
		defer mu.Unlock()
		order = append(order, s)
	}

	pub := &mockPublisher{hook: func(channel string) { record("broadcast:" + channel) }}
	outer := mustNotifier(t, pub, "book_updates", "short")
	inner := mustNotifier(t, pub, "admin_notifications", "long {{.Result}}")

	op := Stack("add_book", func(_ context.Context, title string) (string, error) {
		record("op")
		return title, nil
	}, outer, inner)

	got, err := op(context.Background(), "A")

	require.NoError(t, err)
	assert.Equal(t, "A", got)
	assert.Equal(t, []string{"op", "broadcast:admin_notifications", "broadcast:book_updates"}, order)
}

func TestStack_FailureReportedByEveryLayer(t *testing.T) {
	pub := &mockPublisher{}
	outer := mustNotifier(t, pub, "book_updates", "outer {{.Error}}")
	inner := mustNotifier(t, pub, "admin_notifications", "inner {{.Error}}")
	boom := errors.New("boom")

	op := Stack("update_book", func(context.Context, domain.BookUpdate) (domain.Book, error) {
		return domain.Book{}, boom
	}, outer, inner)

	_, err := op(context.Background(), domain.BookUpdate{ID: 1, Title: "x"})

	assert.Same(t, boom, err)
	assert.Equal(t, []published{
		{channel: "admin_notifications", message: "inner boom"},
		{channel: "book_updates", message: "outer boom"},
	}, pub.messages())
}

func TestWrap_DeliveryFaultDoesNotAlterOutcome(t *testing.T) {
	pub := &mockPublisher{err: errors.New("subscriber gone")}
	n := mustNotifier(t, pub, "book_updates", "{{.Result}}")

	op := Wrap(n, "add_book", func(_ context.Context, title string) (string, error) {
		return title + "!", nil
	})

	got, err := op(context.Background(), "A")

	require.NoError(t, err)
	assert.Equal(t, "A!", got)
}

func TestWrap_RenderFailureSkipsBroadcast(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewNotifyMetrics(reg)
	pub := &mockPublisher{}
	// Args is an int, so .Args.Title cannot be evaluated.
	n := mustNotifier(t, pub, "book_updates", "{{.Args.Title}}", WithMetrics(m))

	op := Wrap(n, "get_book", func(_ context.Context, id int) (int, error) { return id, nil })

	got, err := op(context.Background(), 5)

	require.NoError(t, err)
	assert.Equal(t, 5, got)
	assert.Empty(t, pub.messages())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RenderErrors.WithLabelValues("book_updates")))
}

func TestWrap_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewNotifyMetrics(reg)
	pub := &mockPublisher{}
	n := mustNotifier(t, pub, "book_updates", "{{.Func}}", WithMetrics(m))

	ok := Wrap(n, "ok", func(context.Context, int) (int, error) { return 1, nil })
	bad := Wrap(n, "bad", func(context.Context, int) (int, error) { return 0, errors.New("x") })

	_, _ = ok(context.Background(), 0)
	_, _ = ok(context.Background(), 0)
	_, _ = bad(context.Background(), 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Events.WithLabelValues("book_updates", metrics.OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Events.WithLabelValues("book_updates", metrics.OutcomeFailure)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.PublishErrors.WithLabelValues("book_updates")))
}

func TestWrap_CallerCancelledAfterCommitStillBroadcasts(t *testing.T) {
	pub := &ctxPublisher{}
	n := mustNotifier(t, pub, "book_updates", "added {{.Result}}")

	ctx, cancel := context.WithCancel(correlation.WithID(context.Background(), "req-1"))
	defer cancel()

	op := Wrap(n, "add_book", func(_ context.Context, title string) (string, error) {
		cancel()
		return title, nil
	})

	got, err := op(ctx, "A")

	require.NoError(t, err)
	assert.Equal(t, "A", got)
	assert.Equal(t, []published{{channel: "book_updates", message: "added A"}}, pub.messages())
	assert.Equal(t, []string{"req-1"}, pub.ids)
}

func TestWrap_ExpiredDeadlineStillBroadcasts(t *testing.T) {
	pub := &ctxPublisher{}
	n := mustNotifier(t, pub, "admin_notifications", "{{.Error}}")

	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()
	<-ctx.Done()

	boom := errors.New("boom")
	op := Wrap(n, "update_book", func(context.Context, int) (int, error) { return 0, boom })

	_, err := op(ctx, 1)

	assert.Same(t, boom, err)
	assert.Equal(t, []published{{channel: "admin_notifications", message: "boom"}}, pub.messages())
}
