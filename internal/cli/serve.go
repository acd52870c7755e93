package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/brianhealey/booklist/internal/api"
	"github.com/brianhealey/booklist/internal/config"
	"github.com/brianhealey/booklist/internal/identity"
	"github.com/brianhealey/booklist/internal/models"
	"github.com/brianhealey/booklist/internal/session"
	"github.com/brianhealey/booklist/internal/view"
	"github.com/brianhealey/booklist/internal/zeroconf"
)

const (
	sweepInterval   = time.Minute
	shutdownTimeout = 15 * time.Second
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	Addr string
	MDNS bool
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the book list web UI",
		Long: `Serve the book list web UI over HTTP.

Every browser session gets its own list, kept in memory until the session
has been idle for session_ttl. Settings are reloaded when the file changes.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(cmd.ErrOrStderr(), rootOpts.Debug)
			return runServe(cmd, rootOpts, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", config.DefaultAddr, "HTTP listen address (overrides settings)")
	cmd.Flags().BoolVar(&opts.MDNS, "mdns", false, "advertise the UI over mDNS (overrides settings)")

	return cmd
}

// applyServeFlags lets explicitly set flags win over the settings file.
func applyServeFlags(cmd *cobra.Command, opts *ServeOptions, s *config.Settings) {
	if cmd.Flags().Changed("addr") {
		s.Addr = opts.Addr
	}
	if cmd.Flags().Changed("mdns") {
		s.MDNS = opts.MDNS
	}
}

func runServe(cmd *cobra.Command, rootOpts *RootOptions, opts *ServeOptions) error {
	base := cmd.Context()
	if base == nil {
		base = context.Background()
	}
	ctx, cancel := signal.NotifyContext(base, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ws, err := loadWorkspace(rootOpts.ConfigPath)
	if err != nil {
		return err
	}
	settings := ws.Settings()
	applyServeFlags(cmd, opts, settings)

	sessions := session.NewRegistry(settings.SessionTTL, ws.newController)
	sessions.SetLimit(settings.MaxSessions)
	defer sessions.Close()
	go sessions.Run(ctx, sweepInterval)

	go func() {
		err := ws.watch(ctx, func(s *config.Settings) {
			sessions.SetTTL(s.SessionTTL)
			sessions.SetLimit(s.MaxSessions)
		})
		if err != nil {
			slog.Warn("config: hot reload disabled", "err", err)
		}
	}()

	renderer, err := view.New()
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}
	hostname := identity.GetHostname()
	info := func() models.Info {
		return models.Info{
			Version:  identity.GetVersion(),
			Hostname: hostname,
			Sessions: sessions.Len(),
		}
	}
	router := api.NewRouter(sessions, renderer, ws.decoder, info)

	ln, err := net.Listen("tcp", settings.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", settings.Addr, err)
	}

	if settings.MDNS {
		startMDNS(ctx, hostname, ln.Addr().String())
	}

	srv := &http.Server{
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // 0 = no timeout (needed for SSE)
		IdleTimeout:  120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("booklist listening", "addr", ln.Addr().String(), "config", ws.store.Path())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
	}
	slog.Info("shutting down...")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutCancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		slog.Warn("server shutdown error", "err", err)
	}

	slog.Info("shutdown complete")
	return nil
}

func startMDNS(ctx context.Context, hostname, addr string) {
	port, err := zeroconf.PortFromAddr(addr)
	if err != nil {
		slog.Warn("zeroconf disabled", "err", err)
		return
	}
	zc := zeroconf.New("booklist-"+hostname, port, identity.GetVersion())
	go func() {
		if err := zc.Start(ctx); err != nil {
			slog.Warn("zeroconf failed", "err", err)
		}
	}()
}
