package harness

import (
	"github.com/roach88/cutroom/internal/ir"
	"github.com/roach88/cutroom/internal/timeline"
)

// TraceEvent is one journaled command and its outcome.
type TraceEvent struct {
	Seq    int64       `json:"seq"`
	Op     ir.OpName   `json:"op"`
	Args   ir.IRObject `json:"args"`
	Case   string      `json:"case"`
	Result ir.IRObject `json:"result"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace holds the journal in seq order. Queries are not journaled and
	// do not appear.
	Trace []TraceEvent `json:"trace"`

	// Errors lists every failed expectation.
	Errors []string `json:"errors,omitempty"`

	// Bindings maps bind names to the ids they captured.
	Bindings map[string]string `json:"bindings,omitempty"`

	// Final is the timeline after the flow.
	Final timeline.Snapshot `json:"final"`

	entries []ir.Entry
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Trace:    []TraceEvent{},
		Errors:   []string{},
		Bindings: map[string]string{},
	}
}

// AddError records a failure and marks the result failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

func traceOf(entries []ir.Entry) []TraceEvent {
	trace := make([]TraceEvent, 0, len(entries))
	for _, e := range entries {
		trace = append(trace, TraceEvent{
			Seq:    e.Command.Seq,
			Op:     e.Command.Op,
			Args:   e.Command.Args,
			Case:   e.Outcome.Case,
			Result: e.Outcome.Result,
		})
	}
	return trace
}
