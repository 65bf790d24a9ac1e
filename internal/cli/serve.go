package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/cutroom/internal/api"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a session over HTTP and websocket",
		Long: `Replay a session from the journal and serve it over HTTP.

Commands posted to /v1/commands are executed in order and appended to the
journal. Every applied command is broadcast to websocket clients on
/v1/events. The server stops gracefully on SIGINT or SIGTERM.

Examples:
  cutroom serve --db project.db
  cutroom serve --addr 0.0.0.0:7340 --session review`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (default from config)")

	return cmd
}

func runServe(ctx context.Context, opts *ServeOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ws, err := opts.openWorkspace(ctx, opts.sessionOr(""))
	if err != nil {
		return err
	}
	defer ws.Close()

	addr := opts.Addr
	if addr == "" {
		addr = opts.Config.Server.Addr
	}
	logger := opts.logger()
	logger.Info("serving session", "session", ws.session, "journal", opts.databasePath(), "entries", ws.entries)

	srv := api.NewServer(api.ServerConfig{
		Addr:      addr,
		Engine:    ws.engine,
		Logger:    logger,
		StartTime: time.Now(),
	})
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitFailure, "server failed", err)
	}
	logger.Info("server stopped")
	return nil
}
