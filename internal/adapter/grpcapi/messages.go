package grpcapi

import (
	"math"

	"github.com/pscheid92/bookhub/internal/domain"
	apperrors "github.com/pscheid92/bookhub/internal/platform/errors"
)

type Book struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// GetBooksRequest filters like the REST query; zero fields are ignored.
type GetBooksRequest struct {
	ID    int64  `json:"id,omitempty"`
	Title string `json:"title,omitempty"`
	IDLt  int64  `json:"id_lt,omitempty"`
	IDGt  int64  `json:"id_gt,omitempty"`
}

type BooksResponse struct {
	Books []Book `json:"books"`
}

type CreateBookRequest struct {
	Title string `json:"title"`
}

type UpdateBookRequest struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

type DeleteBookRequest struct {
	ID int64 `json:"id"`
}

type DeleteResponse struct {
	Success bool `json:"success"`
}

func toBook(b domain.Book) *Book {
	return &Book{ID: int64(b.ID), Title: b.Title}
}

func (r *GetBooksRequest) filter() (domain.BookFilter, error) {
	var f domain.BookFilter
	var err error
	if f.ID, err = bookID("id", r.ID); err != nil {
		return domain.BookFilter{}, err
	}
	if f.IDLt, err = bookID("id_lt", r.IDLt); err != nil {
		return domain.BookFilter{}, err
	}
	if f.IDGt, err = bookID("id_gt", r.IDGt); err != nil {
		return domain.BookFilter{}, err
	}
	f.Title = r.Title
	return f, nil
}

// bookID converts a wire id to the store's int, refusing values the platform
// int cannot hold.
func bookID(field string, v int64) (int, error) {
	if v > math.MaxInt || v < math.MinInt {
		return 0, apperrors.ValidationError(field+" is out of range").WithField(field, v)
	}
	return int(v), nil
}
