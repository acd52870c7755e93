// Package cli wires the booklist commands together.
package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/brianhealey/booklist/internal/config"
	"github.com/brianhealey/booklist/internal/identity"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Debug      bool
	ConfigPath string
}

// NewRootCommand creates the root command for the booklist CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "booklist",
		Short:   "Booklist - a session-local book list manager",
		Long:    "Add, edit and delete books with optional poster images, from a browser or a terminal.\nNothing is persisted: records live as long as the session.",
		Version: identity.GetVersion(),
	}

	cmd.PersistentFlags().BoolVar(&opts.Debug, "debug", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", config.DefaultFileName, "settings file (YAML)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewTUICommand(opts))

	return cmd
}

// setupLogging installs the default slog handler.
func setupLogging(w io.Writer, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}
