package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/cutroom/internal/engine"
	"github.com/roach88/cutroom/internal/ir"
)

// InvokeOptions holds flags for the invoke command.
type InvokeOptions struct {
	*RootOptions
	Args string
}

// NewInvokeCommand creates the invoke command.
func NewInvokeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InvokeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "invoke <op>",
		Short: "Run one operation against the journal",
		Long: `Run one operation against the journal.

The session is replayed from the journal first, so the op sees the state
left by every earlier command. Mutating ops are appended to the journal;
queries are answered without being recorded. Times are given in seconds.

Exit codes:
  0 - Outcome is Ok
  1 - Outcome is an error case (NotFound, Conflict, ...)
  2 - Command error (unknown op, bad args, unreadable journal)

Examples:
  cutroom invoke addTrack --args '{"type":"video"}'
  cutroom invoke addClip --args '{"trackId":"<id>","start":0,"duration":4.5}'
  cutroom invoke listTracks --session review --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return invokeOp(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Args, "args", "{}", "op arguments as JSON")

	return cmd
}

func invokeOp(ctx context.Context, opts *InvokeOptions, name string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}

	native := map[string]any{}
	dec := json.NewDecoder(strings.NewReader(opts.Args))
	dec.UseNumber()
	if err := dec.Decode(&native); err != nil {
		return WrapExitError(ExitCommandError, "invalid --args JSON", err)
	}

	op := ir.OpName(name)
	args, err := engine.EncodeArgs(op, native)
	if err != nil {
		var ce *engine.CommandError
		if errors.As(err, &ce) {
			_ = opts.formatter(cmd).Error(string(ce.Code), ce.Message, ce)
		}
		return WrapExitError(ExitCommandError, "invalid command", err)
	}

	ws, err := opts.openWorkspace(ctx, opts.sessionOr(""))
	if err != nil {
		return err
	}
	defer ws.Close()

	out, err := ws.engine.Execute(ctx, ws.session, op, args)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to execute", err)
	}
	return reportOutcome(opts.formatter(cmd), op, out)
}

// reportOutcome prints out and maps a failed case to ExitFailure.
func reportOutcome(f *OutputFormatter, op ir.OpName, out ir.Outcome) error {
	if !out.OK() {
		if err := f.Error(out.Case, out.Message(), out); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %s", op, out.Case))
	}
	return f.Success(out, func(w io.Writer) {
		writeOutcomeLine(w, op, out)
	})
}

func writeOutcomeLine(w io.Writer, op ir.OpName, out ir.Outcome) {
	result, err := ir.MarshalCanonical(out.Result)
	if err != nil {
		result = []byte("?")
	}
	if out.Seq > 0 {
		fmt.Fprintf(w, "[%d] %s %s %s\n", out.Seq, op, out.Case, result)
		return
	}
	fmt.Fprintf(w, "%s %s %s\n", op, out.Case, result)
}
