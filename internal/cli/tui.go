package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/roach88/cutroom/internal/tui"
)

// NewTUICommand creates the tui command.
func NewTUICommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Edit a session in the terminal",
		Long: `Open a session from the journal in a terminal timeline editor.

Drag clips with the mouse to move them, drag their edges to trim, and click
the ruler to seek. Every edit is journaled like any other command.

Keys:
  space   play / pause
  + -     zoom in / out
  s       split the selected clip at the playhead
  d       duplicate the selected clip
  x       delete the selected clip
  esc     cancel the current drag
  q       quit`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), rootOpts)
		},
	}
	return cmd
}

func runTUI(ctx context.Context, opts *RootOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM)
	defer stop()

	// Log lines would tear the screen.
	quiet := *opts
	quiet.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	ws, err := quiet.openWorkspace(ctx, opts.sessionOr(""))
	if err != nil {
		return err
	}
	defer ws.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open terminal", err)
	}
	if err := screen.Init(); err != nil {
		return WrapExitError(ExitCommandError, "failed to init terminal", err)
	}
	defer screen.Fini()

	view := tui.New(ctx, ws.engine, ws.session, quiet.Logger)
	if err := view.Run(screen); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
