package soap

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pscheid92/bookhub/internal/domain"
	apperrors "github.com/pscheid92/bookhub/internal/platform/errors"
)

const maxRequestBytes = 1 << 20

type bookService interface {
	ListBooks(ctx context.Context, filter domain.BookFilter) ([]domain.Book, error)
	AddBook(ctx context.Context, title string) (domain.Book, error)
	GetBook(ctx context.Context, id int) (domain.Book, error)
	UpdateBook(ctx context.Context, id int, title string) (domain.Book, error)
	DeleteBook(ctx context.Context, id int) error
}

type Handler struct {
	books bookService
}

func NewHandler(books bookService) *Handler {
	return &Handler{books: books}
}

// Handle decodes one SOAP envelope, dispatches the operation in its body and
// writes the response envelope. Failures are reported as SOAP faults.
func (h *Handler) Handle(c echo.Context) error {
	ctx := c.Request().Context()

	data, err := io.ReadAll(io.LimitReader(c.Request().Body, maxRequestBytes))
	if err != nil {
		return h.writeFault(c, apperrors.ValidationError("failed to read request body"))
	}

	var env requestEnvelope
	if err := xml.Unmarshal(data, &env); err != nil {
		return h.writeFault(c, apperrors.ValidationError("malformed SOAP envelope").WithField("cause", err.Error()))
	}

	content, err := h.dispatch(ctx, env.Body)
	if err != nil {
		return h.writeFault(c, apperrors.AsStructuredError(err))
	}
	return h.write(c, http.StatusOK, newResponse(content))
}

func (h *Handler) dispatch(ctx context.Context, body requestBody) (any, error) {
	switch {
	case body.AddBook != nil:
		if body.AddBook.Title == nil {
			return nil, apperrors.ValidationError("title is required")
		}
		b, err := h.books.AddBook(ctx, *body.AddBook.Title)
		if err != nil {
			return nil, err
		}
		return addBookResponse{Result: toBook(b)}, nil

	case body.GetBooks != nil:
		books, err := h.books.ListBooks(ctx, domain.BookFilter{})
		if err != nil {
			return nil, err
		}
		resp := getBooksResponse{Result: bookArray{Books: make([]book, 0, len(books))}}
		for _, b := range books {
			resp.Result.Books = append(resp.Result.Books, toBook(b))
		}
		return resp, nil

	case body.GetBook != nil:
		if body.GetBook.ID == nil {
			return nil, apperrors.ValidationError("id is required")
		}
		b, err := h.books.GetBook(ctx, *body.GetBook.ID)
		if errors.Is(err, domain.ErrBookNotFound) {
			return getBookResponse{}, nil
		}
		if err != nil {
			return nil, err
		}
		result := toBook(b)
		return getBookResponse{Result: &result}, nil

	case body.UpdateBook != nil:
		if body.UpdateBook.ID == nil || body.UpdateBook.Title == nil {
			return nil, apperrors.ValidationError("id and title are required")
		}
		b, err := h.books.UpdateBook(ctx, *body.UpdateBook.ID, *body.UpdateBook.Title)
		if errors.Is(err, domain.ErrBookNotFound) {
			return updateBookResponse{}, nil
		}
		if err != nil {
			return nil, err
		}
		result := toBook(b)
		return updateBookResponse{Result: &result}, nil

	case body.DeleteBook != nil:
		if body.DeleteBook.ID == nil {
			return nil, apperrors.ValidationError("id is required")
		}
		err := h.books.DeleteBook(ctx, *body.DeleteBook.ID)
		if errors.Is(err, domain.ErrBookNotFound) {
			return deleteBookResponse{Result: false}, nil
		}
		if err != nil {
			return nil, err
		}
		return deleteBookResponse{Result: true}, nil
	}

	return nil, apperrors.ValidationError("unknown or missing operation")
}

// writeFault answers with status 500 as SOAP 1.1 requires for faults.
func (h *Handler) writeFault(c echo.Context, err *apperrors.Error) error {
	slog.InfoContext(c.Request().Context(), "SOAP fault", "error_type", err.Type, "message", err.Message)
	return h.write(c, http.StatusInternalServerError, newResponse(fault{
		Code:   err.SOAPFaultCode(),
		String: err.Message,
	}))
}

func (h *Handler) write(c echo.Context, code int, env responseEnvelope) error {
	out, err := xml.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal SOAP response: %w", err)
	}
	body := append([]byte(xml.Header), out...)
	if err := c.Blob(code, "text/xml; charset=utf-8", body); err != nil {
		return fmt.Errorf("failed to send SOAP response: %w", err)
	}
	return nil
}

func toBook(b domain.Book) book {
	return book{ID: b.ID, Title: b.Title}
}
