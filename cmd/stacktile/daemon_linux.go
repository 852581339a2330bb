//go:build linux

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/1broseidon/stacktile/internal/config"
	"github.com/1broseidon/stacktile/internal/daemon"
)

func newDaemonCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the tiling daemon",
		Long: `Run the tiling daemon on the current X display.

The daemon re-reads its configuration when the file changes or on SIGHUP, and
restores every tiled window when it exits.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			path := configPath
			if path == "" {
				p, err := config.DefaultConfigPath()
				if err != nil {
					log.Fatalf("Failed to resolve config path: %v", err)
				}
				path = p
			}
			res, err := config.LoadFromPath(path)
			if err != nil {
				log.Fatalf("Failed to load configuration: %v", err)
			}
			logger := newLogger(res.Config.Level())

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			hup := make(chan os.Signal, 1)
			signal.Notify(hup, syscall.SIGHUP)
			defer signal.Stop(hup)
			reload := make(chan struct{}, 1)
			go func() {
				for {
					select {
					case <-ctx.Done():
						return
					case <-hup:
						logger.Info("received SIGHUP, reloading config")
						select {
						case reload <- struct{}{}:
						default:
						}
					}
				}
			}()

			opts := daemon.Options{ConfigPath: path, Logger: logger, Reload: reload}
			if err := daemon.Run(ctx, opts); err != nil {
				log.Fatalf("Daemon failed: %v", err)
			}
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "Config file path (default: ~/.config/stacktile/config.yaml)")
	return cmd
}
