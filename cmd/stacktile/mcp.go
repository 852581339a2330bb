package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/1broseidon/stacktile/internal/mcp"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the tiling controls as MCP tools over stdio",
		Long: `Run an MCP server on stdin/stdout. Its tools query and drive the running
daemon over the IPC socket.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			// stdout carries the protocol; logs go to stderr.
			server := mcp.NewServer(newClient(), newLogger(slog.LevelInfo))
			return server.Run(ctx)
		},
	}
}
