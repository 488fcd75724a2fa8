package app

import (
	"context"
	"sync"
	"testing"

	"github.com/pscheid92/bookhub/internal/bookstore"
	"github.com/pscheid92/bookhub/internal/broadcast"
	"github.com/pscheid92/bookhub/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type message struct {
	channel string
	text    string
}

type mockPublisher struct {
	mu       sync.Mutex
	messages []message
}

func (m *mockPublisher) Broadcast(_ context.Context, channel, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, message{channel: channel, text: text})
	return nil
}

func (m *mockPublisher) take() []message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.messages
	m.messages = nil
	return out
}

func newTestService(t *testing.T, source Source) (*Service, *bookstore.Store, *mockPublisher) {
	t.Helper()
	store := bookstore.New()
	pub := &mockPublisher{}
	svc, err := NewService(store, pub, source)
	require.NoError(t, err)
	return svc, store, pub
}

func TestAddBook_NotifiesBothChannels(t *testing.T) {
	svc, store, pub := newTestService(t, SourceREST)

	book, err := svc.AddBook(context.Background(), "Dune")

	require.NoError(t, err)
	assert.Equal(t, domain.Book{ID: 0, Title: "Dune"}, book)
	assert.Equal(t, 1, store.Len())

	msgs := pub.take()
	require.Len(t, msgs, 2)
	assert.Equal(t, domain.ChannelAdminNotifications, msgs[0].channel)
	assert.Equal(t, "[INFO] REST: Adding a new book:\n"+
		"    function: add_book,\n"+
		"    book: Dune,\n"+
		"    return: Book(id=0 title=Dune),\n"+
		"    error: ", msgs[0].text)
	assert.Equal(t, message{channel: domain.ChannelBookUpdates, text: "[INFO] REST: Adding a new book"}, msgs[1])
}

func TestListBooks_FiltersAndReportsArgs(t *testing.T) {
	svc, store, pub := newTestService(t, SourceGraphQL)
	for _, title := range []string{"a", "b", "c", "d"} {
		store.Insert(title)
	}

	books, err := svc.ListBooks(context.Background(), domain.BookFilter{IDGt: 1})

	require.NoError(t, err)
	assert.Equal(t, []domain.Book{{ID: 2, Title: "c"}, {ID: 3, Title: "d"}}, books)

	msgs := pub.take()
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0].text, "[INFO] GraphQL: Listing all books:")
	assert.Contains(t, msgs[0].text, "id__gt: 1,")
	assert.Contains(t, msgs[0].text, "return: [Book(id=2 title=c) Book(id=3 title=d)]")
	assert.Equal(t, "[INFO] GraphQL: Listing all books", msgs[1].text)
}

func TestGetBook(t *testing.T) {
	svc, store, pub := newTestService(t, SourceSOAP)
	store.Insert("A")

	book, err := svc.GetBook(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "A", book.Title)
	pub.take()

	_, err = svc.GetBook(context.Background(), 5)
	assert.ErrorIs(t, err, domain.ErrBookNotFound)

	msgs := pub.take()
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0].text, "book_id: 5,")
	assert.Contains(t, msgs[0].text, "return: book not found,")
	assert.Contains(t, msgs[0].text, "error: book not found")
}

func TestUpdateBook(t *testing.T) {
	svc, store, pub := newTestService(t, SourceGRPC)
	store.Insert("A")
	store.Insert("B")

	book, err := svc.UpdateBook(context.Background(), 0, "A2")
	require.NoError(t, err)
	assert.Equal(t, domain.Book{ID: 0, Title: "A2"}, book)

	msgs := pub.take()
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0].text, "[INFO] gRPC: Updating a book:")
	assert.Contains(t, msgs[0].text, "title: A2,")

	_, err = svc.UpdateBook(context.Background(), 9, "x")
	assert.ErrorIs(t, err, domain.ErrBookNotFound)
	assert.Equal(t, []domain.Book{{ID: 0, Title: "A2"}, {ID: 1, Title: "B"}}, store.List(domain.BookFilter{}))
}

func TestDeleteBook(t *testing.T) {
	svc, store, pub := newTestService(t, SourceWebSocket)
	store.Insert("A")

	require.NoError(t, svc.DeleteBook(context.Background(), 0))
	assert.Equal(t, 0, store.Len())

	err := svc.DeleteBook(context.Background(), 0)
	assert.ErrorIs(t, err, domain.ErrBookNotFound)

	msgs := pub.take()
	require.Len(t, msgs, 4)
	assert.Contains(t, msgs[0].text, "return: true,")
	assert.Contains(t, msgs[2].text, "error: book not found")
	assert.Equal(t, "[INFO] WebSocket: Deleting a book", msgs[3].text)
}

func TestServicesShareStoreAndBroadcaster(t *testing.T) {
	store := bookstore.New()
	b := broadcast.NewBroadcaster(nil)
	t.Cleanup(b.Stop)

	rest, err := NewService(store, b, SourceREST)
	require.NoError(t, err)
	grpc, err := NewService(store, b, SourceGRPC)
	require.NoError(t, err)

	_, err = rest.AddBook(context.Background(), "A")
	require.NoError(t, err)
	book, err := grpc.GetBook(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, "A", book.Title)
	assert.Equal(t, SourceGRPC, grpc.Source())
}

func TestScenarioThroughService(t *testing.T) {
	svc, _, _ := newTestService(t, SourceREST)
	ctx := context.Background()

	a, err := svc.AddBook(ctx, "A")
	require.NoError(t, err)
	b, err := svc.AddBook(ctx, "B")
	require.NoError(t, err)
	assert.Equal(t, 0, a.ID)
	assert.Equal(t, 1, b.ID)

	_, err = svc.UpdateBook(ctx, 0, "A2")
	require.NoError(t, err)
	require.NoError(t, svc.DeleteBook(ctx, 1))

	books, err := svc.ListBooks(ctx, domain.BookFilter{})
	require.NoError(t, err)
	assert.Equal(t, []domain.Book{{ID: 0, Title: "A2"}}, books)

	_, err = svc.UpdateBook(ctx, 1, "x")
	assert.ErrorIs(t, err, domain.ErrBookNotFound)
}
