// Command server runs the bookhub catalogue service.
//
// Usage:
//
//	server serve                  # HTTP (REST, GraphQL, SOAP, WebSocket) + gRPC
//	server books list             # query a running instance over gRPC
//	server books add "Dune"
//	server version
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Book catalogue served over REST, GraphQL, gRPC, SOAP and WebSocket",
	Long: `bookhub keeps an in-memory catalogue of books and exposes it through
five front ends. Every operation is announced on the book_updates WebSocket
channel and described in detail on the admin_notifications channel.

Configuration is read from the environment (and an optional .env file):
PORT, GRPC_PORT, APP_URL, APP_ENV, LOG_LEVEL, LOG_FORMAT, RATE_LIMIT_RPS,
RATE_LIMIT_BURST, WS_WRITE_TIMEOUT.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
