package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/1broseidon/stacktile/internal/ipc"
	"github.com/1broseidon/stacktile/internal/platform"
)

func newStatusCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the stacks of every tiled desk",
		Long: `Show the daemon's tiling state.

Prints a table when stdout is a terminal and JSON otherwise or with --json.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := newClient().Status()
			if err != nil {
				return err
			}
			if asJSON || !term.IsTerminal(int(os.Stdout.Fd())) {
				return printStatusJSON(os.Stdout, st)
			}
			return printStatusTable(os.Stdout, st)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func printStatusJSON(w io.Writer, st *ipc.StatusData) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(st)
}

func printStatusTable(w io.Writer, st *ipc.StatusData) error {
	fmt.Fprintf(w, "uptime:  %ds\n", st.UptimeSeconds)
	fmt.Fprintf(w, "mode:    %s\n", st.Mode)
	if st.Current != nil {
		fmt.Fprintf(w, "current: %s\n", st.Current)
	}
	if st.Focused != 0 {
		fmt.Fprintf(w, "focused: 0x%x\n", st.Focused)
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DESK\tLAYOUT\tSTACK\tPOS\tSIZE\tWINDOWS")
	for _, d := range st.Desks {
		layout := string(d.Layout)
		if d.UseRows {
			layout += "/rows"
		}
		if len(d.Stacks) == 0 {
			fmt.Fprintf(tw, "%s\t%s\t-\t-\t-\t%s\n", d.Desk, layout, floatingNote(d.Floating))
			continue
		}
		for i, s := range d.Stacks {
			desk, kind := "", ""
			if i == 0 {
				desk, kind = d.Desk.String(), layout
			}
			wins := formatWindows(s.Windows)
			if i == len(d.Stacks)-1 {
				if note := floatingNote(d.Floating); note != "" {
					wins += "  " + note
				}
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\n", desk, kind, i, s.Pos, s.Size, wins)
		}
	}
	return tw.Flush()
}

func formatWindows(ids []platform.WindowID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("0x%x", uint32(id))
	}
	return strings.Join(parts, " ")
}

func floatingNote(ids []platform.WindowID) string {
	if len(ids) == 0 {
		return ""
	}
	return "floating: " + formatWindows(ids)
}
