package app

import (
	"context"
	"fmt"

	"github.com/pscheid92/bookhub/internal/domain"
	"github.com/pscheid92/bookhub/internal/notify"
)

// Source names the front end a Service instance serves.
type Source string

const (
	SourceREST      Source = "REST"
	SourceGraphQL   Source = "GraphQL"
	SourceGRPC      Source = "gRPC"
	SourceSOAP      Source = "SOAP"
	SourceWebSocket Source = "WebSocket"
)

type bookStore interface {
	Insert(title string) domain.Book
	List(filter domain.BookFilter) []domain.Book
	Get(lookup domain.Lookup) (domain.Book, bool)
	Update(id int, title string) (domain.Book, bool)
	Delete(id int) bool
}

type Service struct {
	source Source

	listBooks  notify.Operation[domain.BookFilter, []domain.Book]
	addBook    notify.Operation[string, domain.Book]
	getBook    notify.Operation[int, domain.Book]
	updateBook notify.Operation[domain.BookUpdate, domain.Book]
	deleteBook notify.Operation[int, bool]
}

// NewService instruments every store operation for source. opts are applied
// to each notifier.
func NewService(store bookStore, publisher notify.Publisher, source Source, opts ...notify.Option) (*Service, error) {
	b := &builder{publisher: publisher, source: source, opts: opts}
	s := &Service{source: source}

	s.listBooks = notify.Stack(opListBooks.name, func(_ context.Context, f domain.BookFilter) ([]domain.Book, error) {
		return store.List(f), nil
	}, b.notifiers(opListBooks)...)

	s.addBook = notify.Stack(opAddBook.name, func(_ context.Context, title string) (domain.Book, error) {
		return store.Insert(title), nil
	}, b.notifiers(opAddBook)...)

	s.getBook = notify.Stack(opGetBook.name, func(_ context.Context, id int) (domain.Book, error) {
		book, ok := store.Get(domain.ByID(id))
		if !ok {
			return domain.Book{}, domain.ErrBookNotFound
		}
		return book, nil
	}, b.notifiers(opGetBook)...)

	s.updateBook = notify.Stack(opUpdateBook.name, func(_ context.Context, u domain.BookUpdate) (domain.Book, error) {
		book, ok := store.Update(u.ID, u.Title)
		if !ok {
			return domain.Book{}, domain.ErrBookNotFound
		}
		return book, nil
	}, b.notifiers(opUpdateBook)...)

	s.deleteBook = notify.Stack(opDeleteBook.name, func(_ context.Context, id int) (bool, error) {
		if !store.Delete(id) {
			return false, domain.ErrBookNotFound
		}
		return true, nil
	}, b.notifiers(opDeleteBook)...)

	if b.err != nil {
		return nil, b.err
	}
	return s, nil
}

// Source returns the front end this service reports as.
func (s *Service) Source() Source {
	return s.source
}

func (s *Service) ListBooks(ctx context.Context, filter domain.BookFilter) ([]domain.Book, error) {
	return s.listBooks(ctx, filter)
}

func (s *Service) AddBook(ctx context.Context, title string) (domain.Book, error) {
	return s.addBook(ctx, title)
}

// GetBook returns domain.ErrBookNotFound for an unknown id.
func (s *Service) GetBook(ctx context.Context, id int) (domain.Book, error) {
	return s.getBook(ctx, id)
}

// UpdateBook returns domain.ErrBookNotFound for an unknown id.
func (s *Service) UpdateBook(ctx context.Context, id int, title string) (domain.Book, error) {
	return s.updateBook(ctx, domain.BookUpdate{ID: id, Title: title})
}

// DeleteBook returns domain.ErrBookNotFound for an unknown id.
func (s *Service) DeleteBook(ctx context.Context, id int) error {
	_, err := s.deleteBook(ctx, id)
	return err
}

// builder collects the first template error so NewService can report it once.
type builder struct {
	publisher notify.Publisher
	source    Source
	opts      []notify.Option
	err       error
}

func (b *builder) notifiers(op operation) []*notify.Notifier {
	summary, err := notify.New(b.publisher, domain.ChannelBookUpdates, summaryTemplate(b.source, op), b.opts...)
	if err != nil {
		b.fail(op, err)
		return nil
	}
	detailed, err := notify.New(b.publisher, domain.ChannelAdminNotifications, detailedTemplate(b.source, op), b.opts...)
	if err != nil {
		b.fail(op, err)
		return nil
	}
	return []*notify.Notifier{summary, detailed}
}

func (b *builder) fail(op operation, err error) {
	if b.err == nil {
		b.err = fmt.Errorf("build %s notifiers: %w", op.name, err)
	}
}
