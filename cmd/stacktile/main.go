// Package main implements the stacktile command: the tiling daemon and the
// clients that talk to it.
package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/1broseidon/stacktile/internal/actions"
	"github.com/1broseidon/stacktile/internal/ipc"
	"github.com/1broseidon/stacktile/internal/tiling"
)

var version = "dev"

// Global flags
var (
	socketPath string
	debugMode  bool
)

func newClient() *ipc.Client {
	if socketPath != "" {
		return ipc.NewClientWithSocket(socketPath)
	}
	return ipc.NewClient()
}

func newLogger(level slog.Level) *slog.Logger {
	if debugMode {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "stacktile",
		Short: "Stack tiling for EWMH window managers",
		Long: `stacktile tiles the windows of each virtual desktop into stacks.

The daemon watches the window manager over X11 and keeps every desk laid out.
The other commands talk to a running daemon over its unix socket.`,
		Example: `  # Run the daemon
  stacktile daemon

  # Split the current desk into three columns
  stacktile set-desk --x 0 --stacks 3

  # Swap the focused window with a labelled one
  stacktile action swap`,
		Version:      version,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&socketPath, "socket", "", "Daemon socket path (default: $XDG_RUNTIME_DIR/stacktile.sock)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(
		newDaemonCmd(),
		newActionCmd(),
		newStatusCmd(),
		newSetDeskCmd(),
		newReloadCmd(),
		newMCPCmd(),
		newConfigCmd(),
	)
	return rootCmd
}

func newActionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "action <name> [param]",
		Short: "Run a tiling action on the focused window",
		Long: `Run a tiling action on the focused window, as its hotkey would.

Actions: ` + fmt.Sprint(actions.Names()),
		Args: cobra.RangeArgs(1, 2),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return []string{"left", "right", "up", "down"}, cobra.ShellCompDirectiveNoFileComp
			}
			return actions.Names(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			param := ""
			if len(args) > 1 {
				param = args[1]
			}
			return newClient().RunAction(args[0], param)
		},
	}
}

func newSetDeskCmd() *cobra.Command {
	var desk ipc.SetDeskPayload
	cmd := &cobra.Command{
		Use:   "set-desk",
		Short: "Change how a virtual desktop tiles",
		Long: `Change the stack count, orientation or layout of a virtual desktop.

Setting --stacks 0 disables tiling and restores the desk's windows. The record
is saved and survives daemon restarts.`,
		Example: `  stacktile set-desk --x 1 --stacks 2 --rows
  stacktile set-desk --zone 1 --x 0 --stacks 1 --layout tree`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := desk.Validate(); err != nil {
				return err
			}
			if err := newClient().SetDesk(desk); err != nil {
				return err
			}
			fmt.Printf("desk %d:%d:%d: %d stacks\n", desk.Zone, desk.X, desk.Y, desk.NbStacks)
			return nil
		},
	}
	cmd.Flags().IntVar(&desk.X, "x", 0, "Horizontal desktop coordinate")
	cmd.Flags().IntVar(&desk.Y, "y", 0, "Vertical desktop coordinate")
	cmd.Flags().IntVar(&desk.Zone, "zone", 0, "Zone (monitor index)")
	cmd.Flags().IntVar(&desk.NbStacks, "stacks", 1, fmt.Sprintf("Number of stacks (0-%d, 0 disables tiling)", tiling.MaxStacks))
	cmd.Flags().BoolVar(&desk.UseRows, "rows", false, "Lay stacks out as rows instead of columns")
	cmd.Flags().StringVar(&desk.Layout, "layout", "", "Layout kind: stacks or tree")
	return cmd
}

func newReloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Re-read the configuration in the running daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newClient().Reload(); err != nil {
				return err
			}
			fmt.Println("config reloaded")
			return nil
		},
	}
}

func main() {
	log.SetFlags(0)
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
