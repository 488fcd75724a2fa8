// Package graphqlapi exposes the book catalogue as a GraphQL schema served
// over POST /graphql.
package graphqlapi

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/graphql-go/graphql"
	"github.com/pscheid92/bookhub/internal/domain"
)

type bookService interface {
	ListBooks(ctx context.Context, filter domain.BookFilter) ([]domain.Book, error)
	AddBook(ctx context.Context, title string) (domain.Book, error)
	UpdateBook(ctx context.Context, id int, title string) (domain.Book, error)
	DeleteBook(ctx context.Context, id int) error
}

var bookType = graphql.NewObject(graphql.ObjectConfig{
	Name:        "BookType",
	Description: "A catalogue record.",
	Fields: graphql.Fields{
		"id":    &graphql.Field{Type: graphql.ID},
		"title": &graphql.Field{Type: graphql.String},
	},
})

var bookCreateInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "BookCreateInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"title": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
	},
})

var bookUpdateInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "BookUpdateInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"title": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
	},
})

// NewSchema builds the Query and Mutation types over books.
func NewSchema(books bookService) (graphql.Schema, error) {
	r := resolver{books: books}

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"books": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(bookType))),
				Description: "Books matching every supplied filter.",
				Args: graphql.FieldConfigArgument{
					"id":    &graphql.ArgumentConfig{Type: graphql.ID},
					"title": &graphql.ArgumentConfig{Type: graphql.String},
					"idGt":  &graphql.ArgumentConfig{Type: graphql.Int},
					"idLt":  &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: r.listBooks,
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"addBook": &graphql.Field{
				Type: graphql.NewNonNull(bookType),
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(bookCreateInput)},
				},
				Resolve: r.addBook,
			},
			"updateBook": &graphql.Field{
				Type:        bookType,
				Description: "Null when no book has the given id.",
				Args: graphql.FieldConfigArgument{
					"id":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(bookUpdateInput)},
				},
				Resolve: r.updateBook,
			},
			"deleteBook": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Boolean),
				Description: "False when no book has the given id.",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: r.deleteBook,
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{Query: query, Mutation: mutation})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("build graphql schema: %w", err)
	}
	return schema, nil
}

type resolver struct {
	books bookService
}

func (r resolver) listBooks(p graphql.ResolveParams) (any, error) {
	var filter domain.BookFilter

	if raw, ok := p.Args["id"].(string); ok {
		id, err := parseID(raw)
		if err != nil {
			return nil, err
		}
		filter.ID = id
	}
	if title, ok := p.Args["title"].(string); ok {
		filter.Title = title
	}
	if gt, ok := p.Args["idGt"].(int); ok {
		filter.IDGt = gt
	}
	if lt, ok := p.Args["idLt"].(int); ok {
		filter.IDLt = lt
	}

	return r.books.ListBooks(p.Context, filter)
}

func (r resolver) addBook(p graphql.ResolveParams) (any, error) {
	return r.books.AddBook(p.Context, inputTitle(p))
}

// updateBook resolves an unknown id to null. The service has already
// broadcast the not-found failure by then.
func (r resolver) updateBook(p graphql.ResolveParams) (any, error) {
	id, err := parseID(p.Args["id"])
	if err != nil {
		return nil, err
	}

	book, err := r.books.UpdateBook(p.Context, id, inputTitle(p))
	if errors.Is(err, domain.ErrBookNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return book, nil
}

// deleteBook resolves an unknown id to false, after the service broadcast the
// not-found failure.
func (r resolver) deleteBook(p graphql.ResolveParams) (any, error) {
	id, _ := p.Args["id"].(int)

	err := r.books.DeleteBook(p.Context, id)
	if errors.Is(err, domain.ErrBookNotFound) {
		return false, nil
	}
	if err != nil {
		return nil, err
	}
	return true, nil
}

func inputTitle(p graphql.ResolveParams) string {
	input, _ := p.Args["input"].(map[string]any)
	title, _ := input["title"].(string)
	return title
}

func parseID(raw any) (int, error) {
	s, ok := raw.(string)
	if !ok {
		return 0, fmt.Errorf("invalid id %v", raw)
	}
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
