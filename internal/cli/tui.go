package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/brianhealey/booklist/internal/tui"
)

// NewTUICommand creates the tui command.
func NewTUICommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tui",
		Short:         "Manage a book list in the terminal",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, rootOpts)
		},
	}
	return cmd
}

func runTUI(cmd *cobra.Command, rootOpts *RootOptions) error {
	// The terminal belongs to the UI; logs go nowhere unless debugging.
	var logOut io.Writer = io.Discard
	if rootOpts.Debug {
		f, err := os.OpenFile("booklist-tui.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		logOut = f
	}
	setupLogging(logOut, rootOpts.Debug)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ws, err := loadWorkspace(rootOpts.ConfigPath)
	if err != nil {
		return err
	}
	go func() {
		if err := ws.watch(ctx, nil); err != nil {
			slog.Warn("config: hot reload disabled", "err", err)
		}
	}()

	ctrl := ws.newController()
	defer ctrl.Close()

	dir, err := os.Getwd()
	if err != nil {
		dir = "."
	}
	return tui.Run(ctx, ctrl, ws.decoder, dir)
}
