package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/cutroom/internal/harness"
	"github.com/roach88/cutroom/internal/ir"
)

// ExecOptions holds flags for the exec command.
type ExecOptions struct {
	*RootOptions
	KeepGoing bool
}

// StepResult is one executed script step.
type StepResult struct {
	Step    int        `json:"step"`
	Op      ir.OpName  `json:"op"`
	Outcome ir.Outcome `json:"outcome"`
	Error   string     `json:"error,omitempty"`
}

// ExecResult holds the result of running a script.
type ExecResult struct {
	Session  string            `json:"session"`
	Steps    []StepResult      `json:"steps"`
	Bindings map[string]string `json:"bindings"`
	Failed   int               `json:"failed"`
}

// NewExecCommand creates the exec command.
func NewExecCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExecOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "exec <script.yaml>",
		Short: "Run a script of operations against the journal",
		Long: `Run a YAML script of operations against the journal.

A script is a session token and a list of steps in the scenario step
format. Ids created by a step can be bound to names and referenced by
later steps as $name. Execution stops at the first step whose outcome does
not match its expectation unless --keep-going is set.

Examples:
  cutroom exec testdata/scripts/demo.yaml
  cutroom exec edit.yaml --db project.db --session rough-cut`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.KeepGoing, "keep-going", false, "continue after a failed step")

	return cmd
}

func runExec(ctx context.Context, opts *ExecOptions, path string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}

	script, err := harness.LoadScript(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load script", err)
	}

	ws, err := opts.openWorkspace(ctx, opts.sessionOr(script.Session))
	if err != nil {
		return err
	}
	defer ws.Close()

	f := opts.formatter(cmd)
	f.VerboseLog("replayed %d entries for session %s", ws.entries, ws.session)

	runner := harness.NewRunner(ws.engine, ws.session, opts.logger())
	result := ExecResult{Session: ws.session, Steps: make([]StepResult, 0, len(script.Steps))}
	for i, step := range script.Steps {
		out, err := runner.Step(ctx, step)
		sr := StepResult{Step: i + 1, Op: ir.OpName(step.Invoke), Outcome: out}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			sr.Error = err.Error()
			result.Failed++
		}
		result.Steps = append(result.Steps, sr)
		if err != nil && !opts.KeepGoing {
			break
		}
	}
	result.Bindings = runner.Bindings()

	if err := f.Success(result, func(w io.Writer) { writeExecText(w, result) }); err != nil {
		return err
	}
	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d step(s) failed", result.Failed))
	}
	return nil
}

func writeExecText(w io.Writer, result ExecResult) {
	for _, s := range result.Steps {
		status := "✓"
		if s.Error != "" {
			status = "✗"
		}
		fmt.Fprintf(w, "%s ", status)
		writeOutcomeLine(w, s.Op, s.Outcome)
		if s.Error != "" {
			fmt.Fprintf(w, "  step %d: %s\n", s.Step, s.Error)
		}
	}
	if len(result.Bindings) > 0 {
		fmt.Fprintln(w)
		for _, name := range sortedKeys(result.Bindings) {
			fmt.Fprintf(w, "  $%s = %s\n", name, result.Bindings[name])
		}
	}
}
