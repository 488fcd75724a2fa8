package admin

import (
	"context"
	"errors"
	"testing"

	"github.com/pscheid92/bookhub/internal/bookstore"
	"github.com/pscheid92/bookhub/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeAdder adapts the bare store to the handler's dependency.
type storeAdder struct {
	store *bookstore.Store
}

func (s storeAdder) AddBook(_ context.Context, title string) (domain.Book, error) {
	return s.store.Insert(title), nil
}

type failingAdder struct{ err error }

func (f failingAdder) AddBook(context.Context, string) (domain.Book, error) {
	return domain.Book{}, f.err
}

func TestHandle(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		reply string
		added int
	}{
		{"ping", "ping", "pong", 0},
		{"add book", "/add_book Dune", `Book "Dune" with ID 0 added!`, 1},
		{"add book without title", "/add_book", replyFallback, 0},
		{"add book with two words", "/add_book War Peace", replyFallback, 0},
		{"command must lead", "hello /add_book", replyFallback, 0},
		{"ping is exact", "ping ", replyFallback, 0},
		{"unknown", "help", replyFallback, 0},
		{"empty", "", replyFallback, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := bookstore.New()
			h := NewHandler(storeAdder{store: store})

			assert.Equal(t, tt.reply, h.Handle(context.Background(), tt.line))
			assert.Equal(t, tt.added, store.Len())
		})
	}
}

func TestHandle_ConsecutiveAddsGetNewIDs(t *testing.T) {
	store := bookstore.New()
	h := NewHandler(storeAdder{store: store})

	assert.Equal(t, `Book "A" with ID 0 added!`, h.Handle(context.Background(), "/add_book A"))
	assert.Equal(t, `Book "B" with ID 1 added!`, h.Handle(context.Background(), "/add_book B"))

	book, ok := store.Get(domain.ByID(1))
	require.True(t, ok)
	assert.Equal(t, "B", book.Title)
}

func TestHandle_AddErrorBecomesReply(t *testing.T) {
	h := NewHandler(failingAdder{err: errors.New("store unavailable")})

	assert.Equal(t, "Error: store unavailable", h.Handle(context.Background(), "/add_book Dune"))
}
