package grpcapi

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Client calls books.BookService using the JSON codec.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Dial opens a plaintext connection to addr. The caller closes the returned
// connection.
func Dial(addr string, opts ...grpc.DialOption) (*Client, *grpc.ClientConn, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return NewClient(conn), conn, nil
}

func (c *Client) GetBooks(ctx context.Context, req *GetBooksRequest) (*BooksResponse, error) {
	return invoke[BooksResponse](ctx, c.cc, "GetBooks", req)
}

func (c *Client) CreateBook(ctx context.Context, req *CreateBookRequest) (*Book, error) {
	return invoke[Book](ctx, c.cc, "CreateBook", req)
}

func (c *Client) UpdateBook(ctx context.Context, req *UpdateBookRequest) (*Book, error) {
	return invoke[Book](ctx, c.cc, "UpdateBook", req)
}

func (c *Client) DeleteBook(ctx context.Context, req *DeleteBookRequest) (*DeleteResponse, error) {
	return invoke[DeleteResponse](ctx, c.cc, "DeleteBook", req)
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, req any) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, fullMethod(method), req, out, grpc.CallContentSubtype(CodecName)); err != nil {
		return nil, err
	}
	return out, nil
}
