package graphqlapi

import (
	"fmt"
	"net/http"

	"github.com/graphql-go/graphql"
	"github.com/labstack/echo/v4"
	apperrors "github.com/pscheid92/bookhub/internal/platform/errors"
)

type request struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
	OperationName string         `json:"operationName"`
}

type Handler struct {
	schema graphql.Schema
}

func NewHandler(books bookService) (*Handler, error) {
	schema, err := NewSchema(books)
	if err != nil {
		return nil, err
	}
	return &Handler{schema: schema}, nil
}

// Handle executes one GraphQL request. Resolver errors are reported in the
// response's "errors" array with status 200.
func (h *Handler) Handle(c echo.Context) error {
	var req request
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid graphql request body")
	}
	if req.Query == "" {
		return apperrors.ValidationError("query is required")
	}

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        c.Request().Context(),
	})

	if err := c.JSON(http.StatusOK, result); err != nil {
		return fmt.Errorf("failed to send graphql response: %w", err)
	}
	return nil
}
