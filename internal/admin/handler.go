// Package admin interprets the text commands sent over the admin WebSocket.
package admin

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pscheid92/bookhub/internal/domain"
)

const (
	commandPing    = "ping"
	commandAddBook = "/add_book"

	replyPong     = "pong"
	replyFallback = "Sorry, my functionality is limited :("
)

type bookAdder interface {
	AddBook(ctx context.Context, title string) (domain.Book, error)
}

// Handler turns one command line into one reply. It never broadcasts; the
// caller delivers the reply.
type Handler struct {
	books bookAdder
}

func NewHandler(books bookAdder) *Handler {
	return &Handler{books: books}
}

// Handle interprets line. Supported commands are "ping" and
// "/add_book <title>" where title is a single token.
func (h *Handler) Handle(ctx context.Context, line string) string {
	if line == commandPing {
		return replyPong
	}

	args := strings.Split(line, " ")
	if len(args) == 2 && args[0] == commandAddBook {
		book, err := h.books.AddBook(ctx, args[1])
		if err != nil {
			slog.WarnContext(ctx, "Admin command failed", "command", commandAddBook, "error", err)
			return fmt.Sprintf("Error: %v", err)
		}
		return fmt.Sprintf("Book %q with ID %d added!", book.Title, book.ID)
	}

	return replyFallback
}
