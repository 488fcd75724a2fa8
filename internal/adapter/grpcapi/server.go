package grpcapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/pscheid92/bookhub/internal/adapter/metrics"
	"github.com/pscheid92/bookhub/internal/domain"
	"github.com/pscheid92/bookhub/internal/platform/correlation"
	apperrors "github.com/pscheid92/bookhub/internal/platform/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// correlationMetadataKey is the lower-cased correlation header.
const correlationMetadataKey = "x-correlation-id"

type bookService interface {
	ListBooks(ctx context.Context, filter domain.BookFilter) ([]domain.Book, error)
	AddBook(ctx context.Context, title string) (domain.Book, error)
	UpdateBook(ctx context.Context, id int, title string) (domain.Book, error)
	DeleteBook(ctx context.Context, id int) error
}

// Server owns the grpc.Server hosting books.BookService and the standard
// health service.
type Server struct {
	grpc   *grpc.Server
	health *health.Server
}

// NewServer builds the gRPC server. grpcMetrics may be nil.
func NewServer(books bookService, grpcMetrics *metrics.GRPCMetrics) *Server {
	interceptors := []grpc.UnaryServerInterceptor{loggingInterceptor}
	if grpcMetrics != nil {
		interceptors = append(interceptors, grpcMetrics.UnaryInterceptor())
	}

	s := grpc.NewServer(grpc.ChainUnaryInterceptor(interceptors...))
	RegisterBookServiceServer(s, &bookServer{books: books})

	hs := health.NewServer()
	hs.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)

	return &Server{grpc: s, health: hs}
}

// Serve blocks accepting connections on lis until Stop.
func (s *Server) Serve(lis net.Listener) error {
	slog.Info("Starting gRPC server", "addr", lis.Addr().String())
	if err := s.grpc.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("failed to serve grpc: %w", err)
	}
	return nil
}

// Stop marks the service as not serving and drains in-flight calls until ctx
// expires, then forces the remaining ones closed.
func (s *Server) Stop(ctx context.Context) {
	s.health.Shutdown()

	stopped := make(chan struct{})
	go func() {
		s.grpc.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-ctx.Done():
		s.grpc.Stop()
	}
}

// Healthy reports an error unless the health service publishes SERVING for
// books.BookService. It turns unhealthy as soon as Stop begins.
func (s *Server) Healthy(ctx context.Context) error {
	resp, err := s.health.Check(ctx, &healthpb.HealthCheckRequest{Service: serviceName})
	if err != nil {
		return fmt.Errorf("check grpc health: %w", err)
	}
	if st := resp.GetStatus(); st != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("%s is %s", serviceName, st)
	}
	return nil
}

func loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	var inbound string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(correlationMetadataKey); len(values) > 0 {
			inbound = values[0]
		}
	}
	ctx, id := correlation.Ensure(ctx, inbound)
	_ = grpc.SetHeader(ctx, metadata.Pairs(correlationMetadataKey, id))

	start := time.Now()
	resp, err := handler(ctx, req)

	attrs := []any{
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"latency", time.Since(start),
	}
	if err != nil {
		attrs = append(attrs, "error", err)
	}
	slog.InfoContext(ctx, "gRPC call", attrs...)

	return resp, err
}

type bookServer struct {
	books bookService
}

func (s *bookServer) GetBooks(ctx context.Context, req *GetBooksRequest) (*BooksResponse, error) {
	filter, err := req.filter()
	if err != nil {
		return nil, err
	}
	books, err := s.books.ListBooks(ctx, filter)
	if err != nil {
		return nil, apperrors.InternalError("failed to list books", err)
	}

	resp := &BooksResponse{Books: make([]Book, 0, len(books))}
	for _, b := range books {
		resp.Books = append(resp.Books, *toBook(b))
	}
	return resp, nil
}

func (s *bookServer) CreateBook(ctx context.Context, req *CreateBookRequest) (*Book, error) {
	book, err := s.books.AddBook(ctx, req.Title)
	if err != nil {
		return nil, apperrors.InternalError("failed to add book", err)
	}
	return toBook(book), nil
}

func (s *bookServer) UpdateBook(ctx context.Context, req *UpdateBookRequest) (*Book, error) {
	id, err := bookID("id", req.ID)
	if err != nil {
		return nil, err
	}
	book, err := s.books.UpdateBook(ctx, id, req.Title)
	if err != nil {
		return nil, apperrors.AsStructuredError(err)
	}
	return toBook(book), nil
}

func (s *bookServer) DeleteBook(ctx context.Context, req *DeleteBookRequest) (*DeleteResponse, error) {
	id, err := bookID("id", req.ID)
	if err != nil {
		return nil, err
	}
	if err := s.books.DeleteBook(ctx, id); err != nil {
		return nil, apperrors.AsStructuredError(err)
	}
	return &DeleteResponse{Success: true}, nil
}
