package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"github.com/pscheid92/bookhub/internal/domain"
	apperrors "github.com/pscheid92/bookhub/internal/platform/errors"
)

const maxTitleFilterLength = 100

type bookRequest struct {
	Title *string `json:"title"`
}

func (s *Server) registerBookRoutes() {
	rest := s.echo.Group("/rest", newRateLimiter(s.config.RateLimitRPS, s.config.RateLimitBurst))
	rest.GET("", s.handleListBooks)
	rest.GET("/", s.handleListBooks)
	rest.POST("", s.handleAddBook)
	rest.POST("/", s.handleAddBook)
	rest.GET("/:book_id", s.handleGetBook)
	rest.PUT("/:book_id", s.handleUpdateBook)
	rest.DELETE("/:book_id", s.handleDeleteBook)
}

func (s *Server) handleListBooks(c echo.Context) error {
	filter, err := parseBookFilter(c)
	if err != nil {
		return err
	}

	books, err := s.books.ListBooks(c.Request().Context(), filter)
	if err != nil {
		return apperrors.InternalError("failed to list books", err)
	}

	if err := c.JSON(http.StatusOK, map[string][]domain.Book{"books": books}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleAddBook(c echo.Context) error {
	title, err := bindTitle(c)
	if err != nil {
		return err
	}

	book, err := s.books.AddBook(c.Request().Context(), title)
	if err != nil {
		return apperrors.InternalError("failed to add book", err)
	}

	if err := c.JSON(http.StatusOK, map[string]domain.Book{"book": book}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleGetBook(c echo.Context) error {
	id, err := bookIDParam(c)
	if err != nil {
		return err
	}

	book, err := s.books.GetBook(c.Request().Context(), id)
	if errors.Is(err, domain.ErrBookNotFound) {
		return apperrors.NotFoundError("Book not found").WithField("book_id", id)
	}
	if err != nil {
		return apperrors.InternalError("failed to get book", err).WithField("book_id", id)
	}

	if err := c.JSON(http.StatusOK, map[string]domain.Book{"book": book}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleUpdateBook(c echo.Context) error {
	id, err := bookIDParam(c)
	if err != nil {
		return err
	}
	title, err := bindTitle(c)
	if err != nil {
		return err
	}

	book, err := s.books.UpdateBook(c.Request().Context(), id, title)
	if errors.Is(err, domain.ErrBookNotFound) {
		return apperrors.NotFoundError("Book not found").WithField("book_id", id)
	}
	if err != nil {
		return apperrors.InternalError("failed to update book", err).WithField("book_id", id)
	}

	if err := c.JSON(http.StatusOK, map[string]domain.Book{"book": book}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleDeleteBook(c echo.Context) error {
	id, err := bookIDParam(c)
	if err != nil {
		return err
	}

	err = s.books.DeleteBook(c.Request().Context(), id)
	if errors.Is(err, domain.ErrBookNotFound) {
		return apperrors.NotFoundError("Book not found").WithField("book_id", id)
	}
	if err != nil {
		return apperrors.InternalError("failed to delete book", err).WithField("book_id", id)
	}

	if err := c.JSON(http.StatusOK, map[string]bool{"success": true}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func parseBookFilter(c echo.Context) (domain.BookFilter, error) {
	var filter domain.BookFilter

	ints := []struct {
		name string
		dst  *int
	}{
		{"id", &filter.ID},
		{"id__lt", &filter.IDLt},
		{"id__gt", &filter.IDGt},
	}
	for _, p := range ints {
		raw := c.QueryParam(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return domain.BookFilter{}, apperrors.ValidationError(p.name + " must be an integer").WithField(p.name, raw)
		}
		*p.dst = n
	}

	filter.Title = c.QueryParam("title")
	if utf8.RuneCountInString(filter.Title) > maxTitleFilterLength {
		return domain.BookFilter{}, apperrors.ValidationError(fmt.Sprintf("title exceeds %d characters", maxTitleFilterLength))
	}

	return filter, nil
}

func bookIDParam(c echo.Context) (int, error) {
	raw := c.Param("book_id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.ValidationError("book_id must be an integer").WithField("book_id", raw)
	}
	return id, nil
}

func bindTitle(c echo.Context) (string, error) {
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return "", apperrors.ValidationError("invalid request body")
	}
	if req.Title == nil {
		return "", apperrors.ValidationError("title is required")
	}
	return *req.Title, nil
}
