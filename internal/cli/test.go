package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/cutroom/internal/engine"
	"github.com/roach88/cutroom/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Filter string // scenario filter (glob pattern on the file name)
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios>",
		Short: "Run scenario files",
		Long: `Run YAML scenario files against a fresh in-memory engine each.

A scenario runs its setup and flow steps, then checks its assertions
against the final timeline and the command trace. The path may be a single
file or a directory searched recursively for .yaml and .yml files. The
journal is not touched.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  cutroom test testdata/scenarios
  cutroom test testdata/scenarios --filter "locked*"
  cutroom test rough_cut.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runTests(ctx context.Context, opts *TestOptions, path string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}

	paths, err := harness.DiscoverScenarios(path)
	if err != nil {
		var nf *harness.ScenarioNotFoundError
		if errors.As(err, &nf) {
			return NewExitError(ExitCommandError, nf.Error())
		}
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}
	paths, err = filterScenarios(paths, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid filter", err)
	}

	reg, err := opts.templateRegistry()
	if err != nil {
		return err
	}
	result, err := harness.RunSuite(ctx, paths, engine.WithTemplates(reg))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to run scenarios", err)
	}

	f := opts.formatter(cmd)
	if err := f.Success(result, func(w io.Writer) { writeTestText(w, paths, result) }); err != nil {
		return err
	}
	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

// filterScenarios keeps the paths whose base name, without extension,
// matches pattern.
func filterScenarios(paths []string, pattern string) ([]string, error) {
	if pattern == "" {
		return paths, nil
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, err
	}
	var kept []string
	for _, p := range paths {
		base := filepath.Base(p)
		name := strings.TrimSuffix(base, filepath.Ext(base))
		if ok, _ := filepath.Match(pattern, name); ok {
			kept = append(kept, p)
		}
	}
	return kept, nil
}

func writeTestText(w io.Writer, paths []string, result *harness.SuiteResult) {
	if result.TotalScenarios == 0 {
		fmt.Fprintln(w, "No scenarios found.")
		return
	}

	failed := make(map[string]harness.ScenarioFailure, len(result.Failures))
	for _, f := range result.Failures {
		failed[f.Path] = f
	}
	for _, p := range paths {
		f, ok := failed[p]
		if !ok {
			fmt.Fprintf(w, "✓ %s\n", filepath.Base(p))
			continue
		}
		name := f.Scenario
		if name == "" {
			name = filepath.Base(p)
		}
		fmt.Fprintf(w, "✗ %s\n", name)
		for _, e := range f.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Results: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.TotalScenarios)
}
