package bookstore

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/pscheid92/bookhub/internal/domain"
)

// Store holds books in insertion order. The zero value is not usable; use New.
type Store struct {
	mu     sync.Mutex
	books  []domain.Book
	nextID int
}

func New() *Store {
	return &Store{books: make([]domain.Book, 0)}
}

// Ping reports whether the store lock can be taken before ctx ends. A probe
// that times out leaves one goroutine waiting for the lock.
func (s *Store) Ping(ctx context.Context) error {
	acquired := make(chan struct{})
	go func() {
		s.mu.Lock()
		s.mu.Unlock()
		close(acquired)
	}()

	select {
	case <-acquired:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("store lock not acquired: %w", ctx.Err())
	}
}

// Insert assigns the next id to a new book and appends it.
func (s *Store) Insert(title string) domain.Book {
	s.mu.Lock()
	defer s.mu.Unlock()

	book := domain.Book{ID: s.nextID, Title: title}
	s.nextID++
	s.books = append(s.books, book)
	return book
}

// List returns the books matching every supplied predicate of filter, in
// insertion order.
func (s *Store) List(filter domain.BookFilter) []domain.Book {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]domain.Book, 0, len(s.books))
	for _, book := range s.books {
		if matches(book, filter) {
			result = append(result, book)
		}
	}
	return result
}

// Get looks a book up by id when lookup.ID is set, otherwise by title.
// With neither set it reports absent.
func (s *Store) Get(lookup domain.Lookup) (domain.Book, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case lookup.ID != nil:
		if i := s.indexOf(*lookup.ID); i >= 0 {
			return s.books[i], true
		}
	case lookup.Title != nil:
		for _, book := range s.books {
			if book.Title == *lookup.Title {
				return book, true
			}
		}
	}
	return domain.Book{}, false
}

// Update replaces the title of the book with the given id.
func (s *Store) Update(id int, title string) (domain.Book, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return domain.Book{}, false
	}
	s.books[i].Title = title
	return s.books[i], true
}

// Delete removes the book with the given id and reports whether it existed.
func (s *Store) Delete(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.books = slices.Delete(s.books, i, i+1)
	return true
}

// Len returns the number of stored books.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.books)
}

// indexOf must be called with mu held.
func (s *Store) indexOf(id int) int {
	return slices.IndexFunc(s.books, func(b domain.Book) bool { return b.ID == id })
}

func matches(book domain.Book, f domain.BookFilter) bool {
	if f.IDGt != 0 && !(book.ID > f.IDGt) {
		return false
	}
	if f.IDLt != 0 && !(book.ID < f.IDLt) {
		return false
	}
	if f.ID != 0 && book.ID != f.ID {
		return false
	}
	if f.Title != "" && book.Title != f.Title {
		return false
	}
	return true
}
