package main

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dgnsrekt/narrator/internal/daemon"
	"github.com/dgnsrekt/narrator/internal/tui"
)

// tuiActive keeps log output off the terminal while the TUI owns it.
var tuiActive bool

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Run with a terminal dashboard instead of the tray",
	Long:  paragraph("\nRun narrator in the terminal. The global hotkeys stay active and the dashboard shows playback, speed and the last text read."),
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return errors.New("the dashboard needs a terminal")
		}
		tuiActive = true
		return run(cmd.Context(), daemon.Options{Hotkeys: true}, tuiFront)
	},
}

func tuiFront(ctx context.Context, rt *daemon.Runtime) error {
	m := tui.New(rt.Handlers, rt.Handle.Store, rt.Handle.Speed)
	return tui.Run(ctx, m)
}
