//go:build !linux

package main

import (
	"errors"

	"github.com/spf13/cobra"
)

func newDaemonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the tiling daemon (X11 only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return errors.New("the daemon requires X11 on linux")
		},
	}
}
