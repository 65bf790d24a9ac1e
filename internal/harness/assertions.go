package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"reflect"
	"sort"
	"strings"

	"github.com/roach88/cutroom/internal/engine"
	"github.com/roach88/cutroom/internal/geometry"
	"github.com/roach88/cutroom/internal/ir"
	"github.com/roach88/cutroom/internal/templates"
	"github.com/roach88/cutroom/internal/testutil"
	"github.com/roach88/cutroom/internal/timeline"
)

// timeTolerance absorbs the microsecond quantization of IR times.
const timeTolerance = 1e-6

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Trace for context, when relevant
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %s\n", event.Seq, event.Op, event.Case)
		}
	}
	return buf.String()
}

// AssertionContext gives assertions access to the engine that ran the
// scenario.
type AssertionContext struct {
	Ctx     context.Context
	Engine  *engine.Engine
	Runner  *Runner
	Entries []ir.Entry

	// ReplayOptions configure the engine rebuilt by a replay assertion.
	ReplayOptions []engine.Option
}

// EvaluateAssertions evaluates all assertions and returns the failure
// messages.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertClip:
			err = assertClip(result.Final, a, actx.Runner)
		case AssertClipMissing:
			err = assertClipMissing(result.Final, a, actx.Runner)
		case AssertTrack:
			err = assertTrack(result.Final, a, actx.Runner)
		case AssertTotalDuration:
			err = assertTotalDuration(actx.Engine, a)
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, a, actx.Runner)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, a)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, a)
		case AssertValid:
			err = assertValid(actx.Engine)
		case AssertReplay:
			err = assertReplay(actx, result.Final)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, a.Type)
		}
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func assertClip(snap timeline.Snapshot, a Assertion, r *Runner) error {
	id, err := r.Resolve(a.ID)
	if err != nil {
		return err
	}
	c, ok := snap.Clip(id)
	if !ok {
		return &AssertionError{Type: AssertClip, Expected: fmt.Sprintf("clip %s", id), Actual: "not found"}
	}
	return matchFields(AssertClip, id, clipFields(c), a.Expect, r)
}

func assertClipMissing(snap timeline.Snapshot, a Assertion, r *Runner) error {
	id, err := r.Resolve(a.ID)
	if err != nil {
		return err
	}
	if c, ok := snap.Clip(id); ok {
		return &AssertionError{
			Type:     AssertClipMissing,
			Expected: fmt.Sprintf("no clip %s", id),
			Actual:   fmt.Sprintf("clip on %s at %gs", c.TrackID, c.StartTime),
		}
	}
	return nil
}

func assertTrack(snap timeline.Snapshot, a Assertion, r *Runner) error {
	id, err := r.Resolve(a.ID)
	if err != nil {
		return err
	}
	t, ok := snap.Track(id)
	if !ok {
		return &AssertionError{Type: AssertTrack, Expected: fmt.Sprintf("track %s", id), Actual: "not found"}
	}
	return matchFields(AssertTrack, id, trackFields(t), a.Expect, r)
}

func clipFields(c timeline.Clip) map[string]any {
	return map[string]any{
		"track":    c.TrackID,
		"type":     string(c.Type),
		"name":     c.Name,
		"start":    c.StartTime,
		"duration": c.Duration,
		"end":      c.End(),
		"offset":   c.Offset,
		"content":  c.ContentRef,
		"text":     c.Text,
		"volume":   c.Volume,
		"opacity":  c.Opacity,
		"locked":   c.Locked,
		"muted":    c.Muted,
		"effects":  len(c.Effects),
	}
}

func trackFields(t timeline.Track) map[string]any {
	return map[string]any{
		"name":    t.Name,
		"type":    string(t.Type),
		"order":   t.Order,
		"height":  t.Height,
		"volume":  t.Volume,
		"visible": t.Visible,
		"locked":  t.Locked,
		"muted":   t.Muted,
		"solo":    t.Solo,
		"clips":   len(t.ClipIDs),
	}
}

// matchFields checks expected against actual, subset semantics. Keys are
// visited in sorted order so the first reported mismatch is stable.
func matchFields(typ, id string, actual, expected map[string]any, r *Runner) error {
	keys := make([]string, 0, len(expected))
	for k := range expected {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		got, ok := actual[key]
		if !ok {
			return fmt.Errorf("%s %s: unknown field %q", typ, id, key)
		}
		want := expected[key]
		if s, ok := want.(string); ok {
			resolved, err := r.Resolve(s)
			if err != nil {
				return err
			}
			want = resolved
		}
		if !fieldEqual(want, got) {
			return &AssertionError{
				Type:     typ,
				Expected: fmt.Sprintf("%s.%s = %v", id, key, want),
				Actual:   fmt.Sprintf("%s.%s = %v", id, key, got),
			}
		}
	}
	return nil
}

func fieldEqual(want, got any) bool {
	switch g := got.(type) {
	case float64:
		w, ok := number(want)
		return ok && math.Abs(w-g) <= timeTolerance
	case int:
		w, ok := number(want)
		return ok && w == float64(g)
	}
	return reflect.DeepEqual(want, got)
}

func number(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}

func assertTotalDuration(e *engine.Engine, a Assertion) error {
	var got float64
	e.View(func(tl *timeline.Timeline, _ *geometry.Mapper) { got = tl.TotalDuration() })
	if math.Abs(got-*a.Value) > timeTolerance {
		return &AssertionError{
			Type:     AssertTotalDuration,
			Expected: fmt.Sprintf("%gs", *a.Value),
			Actual:   fmt.Sprintf("%gs", got),
		}
	}
	return nil
}

// assertTraceContains looks for a command with a.Op whose args contain
// a.Args (given in seconds) and, if set, whose outcome case is a.Case.
func assertTraceContains(trace []TraceEvent, a Assertion, r *Runner) error {
	native, err := r.resolveArgs(a.Args)
	if err != nil {
		return err
	}
	want, err := engine.EncodeArgs(ir.OpName(a.Op), native)
	if err != nil {
		return fmt.Errorf("trace_contains: %w", err)
	}
	for _, event := range trace {
		if string(event.Op) != a.Op {
			continue
		}
		if a.Case != "" && event.Case != a.Case {
			continue
		}
		if matchArgs(event.Args, want) {
			return nil
		}
	}
	expected := fmt.Sprintf("op %s with args %v", a.Op, a.Args)
	if a.Case != "" {
		expected += " and case " + a.Case
	}
	return &AssertionError{Type: AssertTraceContains, Expected: expected, Actual: "not found in trace", Trace: trace}
}

// assertTraceOrder checks that ops appear in the given order. Other ops may
// appear in between.
func assertTraceOrder(trace []TraceEvent, a Assertion) error {
	positions := make(map[string]int)
	for i, event := range trace {
		for _, op := range a.Ops {
			if string(event.Op) == op && positions[op] == 0 {
				positions[op] = i + 1 // 1-indexed for readability
			}
		}
	}

	for _, op := range a.Ops {
		if positions[op] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all ops present: %v", a.Ops),
				Actual:   fmt.Sprintf("missing op: %s", op),
				Trace:    trace,
			}
		}
	}
	for i := 1; i < len(a.Ops); i++ {
		prev, curr := a.Ops[i-1], a.Ops[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("ops in order: %v", a.Ops),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}
	return nil
}

func assertTraceCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, event := range trace {
		if string(event.Op) == a.Op {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", a.Count, a.Op),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}
	return nil
}

func assertValid(e *engine.Engine) error {
	if err := e.Validate(); err != nil {
		return &AssertionError{Type: AssertValid, Expected: "all invariants hold", Actual: err.Error()}
	}
	return nil
}

// assertReplay rebuilds the timeline from the journal and requires every
// outcome to reproduce and the final state to match.
func assertReplay(actx *AssertionContext, final timeline.Snapshot) error {
	ctx := actx.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	opts := append([]engine.Option{
		engine.WithIDGenerator(testutil.NewSequenceIDs("replay")),
		engine.WithTemplates(templates.Builtin()),
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, actx.ReplayOptions...)

	replayed, divergences, err := engine.Replay(ctx, actx.Entries, opts...)
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}
	if len(divergences) > 0 {
		msgs := make([]string, 0, len(divergences))
		for _, d := range divergences {
			msgs = append(msgs, d.String())
		}
		return &AssertionError{
			Type:     AssertReplay,
			Expected: "no divergences",
			Actual:   strings.Join(msgs, "; "),
		}
	}
	if got := replayed.Snapshot(); !reflect.DeepEqual(got, final) {
		return &AssertionError{
			Type:     AssertReplay,
			Expected: fmt.Sprintf("%d tracks, %d clips", len(final.Tracks), len(final.Clips)),
			Actual:   fmt.Sprintf("replayed state differs: %d tracks, %d clips", len(got.Tracks), len(got.Clips)),
		}
	}
	return nil
}

// matchArgs reports whether actual contains every expected arg.
func matchArgs(actual, expected ir.IRObject) bool {
	for key, want := range expected {
		got, ok := actual[key]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}
