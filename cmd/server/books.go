package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/pscheid92/bookhub/internal/adapter/grpcapi"
	"github.com/spf13/cobra"
)

const clientTimeout = 5 * time.Second

var booksCmd = &cobra.Command{
	Use:   "books",
	Short: "Talk to a running instance over gRPC",
}

var booksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List books, optionally filtered",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		flags := cmd.Flags()
		title, _ := flags.GetString("title")
		idGt, _ := flags.GetInt64("id-gt")
		idLt, _ := flags.GetInt64("id-lt")

		return withClient(cmd, func(ctx context.Context, c *grpcapi.Client) error {
			resp, err := c.GetBooks(ctx, &grpcapi.GetBooksRequest{Title: title, IDGt: idGt, IDLt: idLt})
			if err != nil {
				return fmt.Errorf("list books: %w", err)
			}
			for _, b := range resp.Books {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", b.ID, b.Title)
			}
			return nil
		})
	},
}

var booksAddCmd = &cobra.Command{
	Use:   "add TITLE",
	Short: "Add a book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c *grpcapi.Client) error {
			b, err := c.CreateBook(ctx, &grpcapi.CreateBookRequest{Title: args[0]})
			if err != nil {
				return fmt.Errorf("add book: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", b.ID, b.Title)
			return nil
		})
	},
}

var booksDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", args[0], err)
		}
		return withClient(cmd, func(ctx context.Context, c *grpcapi.Client) error {
			if _, err := c.DeleteBook(ctx, &grpcapi.DeleteBookRequest{ID: id}); err != nil {
				return fmt.Errorf("delete book: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d\n", id)
			return nil
		})
	},
}

func init() {
	booksCmd.PersistentFlags().String("addr", "localhost:50051", "gRPC address of the server")
	booksListCmd.Flags().String("title", "", "only books with this exact title")
	booksListCmd.Flags().Int64("id-gt", 0, "only books with a greater id")
	booksListCmd.Flags().Int64("id-lt", 0, "only books with a smaller id")

	booksCmd.AddCommand(booksListCmd, booksAddCmd, booksDeleteCmd)
	rootCmd.AddCommand(booksCmd)
}

func withClient(cmd *cobra.Command, fn func(context.Context, *grpcapi.Client) error) error {
	addr, _ := cmd.Flags().GetString("addr")

	client, conn, err := grpcapi.Dial(addr)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), clientTimeout)
	defer cancel()
	return fn(ctx, client)
}
