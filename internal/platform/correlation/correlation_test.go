package correlation

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewID(t *testing.T) {
	ids := make(map[string]struct{}, 100)
	for range 100 {
		id := NewID()
		assert.Len(t, id, 8)
		ids[id] = struct{}{}
	}
	assert.Len(t, ids, 100)
}

func TestID(t *testing.T) {
	id, ok := ID(context.Background())
	assert.False(t, ok)
	assert.Empty(t, id)

	id, ok = ID(WithID(context.Background(), ""))
	assert.False(t, ok)
	assert.Empty(t, id)

	id, ok = ID(WithID(context.Background(), "abc12345"))
	assert.True(t, ok)
	assert.Equal(t, "abc12345", id)
}

func TestEnsure(t *testing.T) {
	ctx, id := Ensure(context.Background(), "from-client")
	assert.Equal(t, "from-client", id)
	got, _ := ID(ctx)
	assert.Equal(t, "from-client", got)

	_, id = Ensure(context.Background(), "")
	assert.Len(t, id, 8)

	_, id = Ensure(context.Background(), strings.Repeat("x", 65))
	assert.Len(t, id, 8, "oversized inbound IDs are replaced")
}

func TestHandler_AddsCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(slog.NewTextHandler(&buf, nil)))

	logger.InfoContext(WithID(context.Background(), "deadbeef"), "Request")
	assert.Contains(t, buf.String(), "correlation_id=deadbeef")

	buf.Reset()
	logger.InfoContext(context.Background(), "Request")
	assert.NotContains(t, buf.String(), "correlation_id")
}

func TestHandler_WithAttrsAndGroupKeepCorrelation(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(slog.NewTextHandler(&buf, nil))).With("channel", "book_updates").WithGroup("op")

	logger.InfoContext(WithID(context.Background(), "cafe0001"), "Broadcast", "name", "add_book")

	out := buf.String()
	assert.Contains(t, out, "channel=book_updates")
	assert.Contains(t, out, "op.name=add_book")
	assert.Contains(t, out, "cafe0001")
}
