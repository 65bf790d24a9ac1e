package cli

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/cutroom/internal/ir"
	"github.com/roach88/cutroom/internal/queryir"
	"github.com/roach88/cutroom/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Op     string // optional - filter to one op
	Case   string // optional - filter to one outcome case
	Failed bool   // only non-Ok outcomes
	Since  int64
	Until  int64
	Limit  int
}

// TraceEvent is one journaled command and its outcome.
type TraceEvent struct {
	Seq       int64          `json:"seq"`
	Session   string         `json:"session"`
	CommandID string         `json:"command_id"`
	Op        string         `json:"op"`
	Args      map[string]any `json:"args"`
	Case      string         `json:"case"`
	Result    map[string]any `json:"result"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Session string       `json:"session,omitempty"`
	Events  []TraceEvent `json:"events"`
	Stats   TraceStats   `json:"stats"`
}

// TraceStats holds summary statistics for the trace.
type TraceStats struct {
	TotalEvents int            `json:"total_events"`
	Failed      int            `json:"failed"`
	Created     int            `json:"created"`
	ByOp        map[string]int `json:"by_op"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the journaled command history",
		Long: `Show the journaled commands and their outcomes in seq order.

Without --session every session in the journal is listed. Args and results
are shown in their journaled form: times are integer microseconds.

Examples:
  cutroom trace --db project.db
  cutroom trace --db project.db --session rough-cut --op moveClip
  cutroom trace --db project.db --failed --format json
  cutroom trace --db project.db --since 40 --until 80 --limit 10`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Op, "op", "", "filter to a single op")
	cmd.Flags().StringVar(&opts.Case, "case", "", "filter to one outcome case")
	cmd.Flags().BoolVar(&opts.Failed, "failed", false, "only commands with a non-Ok outcome")
	cmd.Flags().Int64Var(&opts.Since, "since", 0, "first seq to include")
	cmd.Flags().Int64Var(&opts.Until, "until", 0, "last seq to include")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of commands to show")

	return cmd
}

func runTrace(ctx context.Context, opts *TraceOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}

	q := opts.query()
	if err := queryir.Validate(q); err != nil {
		return WrapExitError(ExitCommandError, "invalid trace filter", err)
	}

	st, err := store.Open(opts.databasePath())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer st.Close()

	entries, err := st.Find(ctx, q)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read journal", err)
	}

	result := buildTrace(entries)
	result.Session = opts.Session
	return opts.formatter(cmd).Success(result, func(w io.Writer) {
		writeTraceText(w, result)
	})
}

// query translates the flags into a journal filter.
func (o *TraceOptions) query() queryir.Select {
	var preds []queryir.Predicate
	eq := func(f queryir.Field, v string) {
		if v != "" {
			preds = append(preds, queryir.Equals{Field: f, Value: ir.IRString(v)})
		}
	}
	eq(queryir.FieldSession, o.Session)
	eq(queryir.FieldOp, o.Op)
	eq(queryir.FieldCase, o.Case)
	if o.Failed {
		preds = append(preds, queryir.NotEquals{Field: queryir.FieldCase, Value: ir.IRString(ir.CaseOk)})
	}
	if o.Since > 0 || o.Until > 0 {
		r := queryir.Range{Field: queryir.FieldSeq}
		if o.Since > 0 {
			r.From = &o.Since
		}
		if o.Until > 0 {
			r.To = &o.Until
		}
		preds = append(preds, r)
	}
	return queryir.Select{Filter: queryir.Conj(preds...), Limit: o.Limit}
}

func buildTrace(entries []ir.Entry) TraceResult {
	result := TraceResult{
		Events: []TraceEvent{},
		Stats:  TraceStats{ByOp: map[string]int{}},
	}
	for _, e := range entries {
		result.Events = append(result.Events, TraceEvent{
			Seq:       e.Command.Seq,
			Session:   e.Command.Session,
			CommandID: e.Command.ID,
			Op:        string(e.Command.Op),
			Args:      nativeObject(e.Command.Args),
			Case:      e.Outcome.Case,
			Result:    nativeObject(e.Outcome.Result),
		})
		result.Stats.ByOp[string(e.Command.Op)]++
		result.Stats.Created += len(e.Outcome.Created())
		if !e.Outcome.OK() {
			result.Stats.Failed++
		}
	}
	result.Stats.TotalEvents = len(result.Events)
	return result
}

func nativeObject(obj ir.IRObject) map[string]any {
	if obj == nil {
		return map[string]any{}
	}
	m, _ := ir.ToNative(obj).(map[string]any)
	return m
}

func writeTraceText(w io.Writer, result TraceResult) {
	if len(result.Events) == 0 {
		if result.Session != "" {
			fmt.Fprintf(w, "No commands found for session: %s\n", result.Session)
		} else {
			fmt.Fprintln(w, "No commands found.")
		}
		return
	}

	showSession := result.Session == ""
	for _, ev := range result.Events {
		args, _ := ir.MarshalCanonical(ev.Args)
		prefix := fmt.Sprintf("[%d]", ev.Seq)
		if showSession {
			prefix += " " + ev.Session
		}
		fmt.Fprintf(w, "%s %s %s", prefix, ev.Op, args)
		if ev.Case == ir.CaseOk {
			fmt.Fprintln(w, " -> Ok")
		} else {
			fmt.Fprintf(w, " -> %s: %v\n", ev.Case, ev.Result["message"])
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d command(s), %d failed, %d id(s) created\n",
		result.Stats.TotalEvents, result.Stats.Failed, result.Stats.Created)
	for _, op := range sortedKeys(result.Stats.ByOp) {
		fmt.Fprintf(w, "  %-16s %d\n", op, result.Stats.ByOp[op])
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
