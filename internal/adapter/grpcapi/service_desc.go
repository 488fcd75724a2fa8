package grpcapi

import (
	"context"

	"google.golang.org/grpc"
)

const serviceName = "books.BookService"

// BookServiceServer is the server API for books.BookService.
type BookServiceServer interface {
	GetBooks(ctx context.Context, req *GetBooksRequest) (*BooksResponse, error)
	CreateBook(ctx context.Context, req *CreateBookRequest) (*Book, error)
	UpdateBook(ctx context.Context, req *UpdateBookRequest) (*Book, error)
	DeleteBook(ctx context.Context, req *DeleteBookRequest) (*DeleteResponse, error)
}

var bookServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*BookServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("GetBooks", BookServiceServer.GetBooks),
		unary("CreateBook", BookServiceServer.CreateBook),
		unary("UpdateBook", BookServiceServer.UpdateBook),
		unary("DeleteBook", BookServiceServer.DeleteBook),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "books.proto",
}

// RegisterBookServiceServer registers srv on s.
func RegisterBookServiceServer(s grpc.ServiceRegistrar, srv BookServiceServer) {
	s.RegisterService(&bookServiceDesc, srv)
}

func fullMethod(name string) string {
	return "/" + serviceName + "/" + name
}

func unary[Req, Resp any](name string, call func(BookServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(BookServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(BookServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
