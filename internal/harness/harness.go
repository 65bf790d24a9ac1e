package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/cutroom/internal/engine"
	"github.com/roach88/cutroom/internal/ir"
	"github.com/roach88/cutroom/internal/templates"
	"github.com/roach88/cutroom/internal/testutil"
)

// Runner executes steps against an engine and tracks bound ids.
type Runner struct {
	engine   *engine.Engine
	session  string
	bindings map[string]string
	logger   *slog.Logger
}

// NewRunner creates a runner that executes in session.
func NewRunner(e *engine.Engine, session string, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{engine: e, session: session, bindings: map[string]string{}, logger: logger}
}

// Bindings returns a copy of the bound ids.
func (r *Runner) Bindings() map[string]string {
	out := make(map[string]string, len(r.bindings))
	for k, v := range r.bindings {
		out[k] = v
	}
	return out
}

// Resolve returns the id bound to a "$name" reference, or s unchanged.
func (r *Runner) Resolve(s string) (string, error) {
	name, ok := strings.CutPrefix(s, "$")
	if !ok {
		return s, nil
	}
	id, ok := r.bindings[name]
	if !ok {
		return "", fmt.Errorf("unbound reference %s", s)
	}
	return id, nil
}

// Step runs one step and checks its expectation. The outcome is returned
// even when the expectation fails. Args that do not encode for the op
// never reach the engine; they yield an unjournaled InvalidArgument or
// UnknownOp outcome, as the HTTP API does.
func (r *Runner) Step(ctx context.Context, step Step) (ir.Outcome, error) {
	native, err := r.resolveArgs(step.Args)
	if err != nil {
		return ir.Outcome{}, err
	}
	op := ir.OpName(step.Invoke)

	var out ir.Outcome
	a, err := engine.EncodeArgs(op, native)
	var ce *engine.CommandError
	switch {
	case errors.As(err, &ce):
		out = ir.Outcome{Case: string(ce.Code), Result: ir.IRObject{"message": ir.IRString(ce.Message)}}
	case err != nil:
		return ir.Outcome{}, err
	default:
		out, err = r.engine.Execute(ctx, r.session, op, a)
		if err != nil {
			return out, err
		}
	}

	r.logger.Debug("step executed", "op", op, "seq", out.Seq, "case", out.Case)

	if err := checkExpect(step, out); err != nil {
		return out, err
	}
	created := out.Created()
	if len(step.Bind) > len(created) {
		return out, fmt.Errorf("%s: bind wants %d ids, outcome created %d", op, len(step.Bind), len(created))
	}
	for i, name := range step.Bind {
		r.bindings[name] = created[i]
	}
	return out, nil
}

func checkExpect(step Step, out ir.Outcome) error {
	want := ir.CaseOk
	if step.Expect != nil {
		want = step.Expect.Case
	}
	if out.Case != want {
		if out.OK() {
			return fmt.Errorf("%s: expected %s, got Ok", step.Invoke, want)
		}
		return fmt.Errorf("%s: expected %s, got %s: %s", step.Invoke, want, out.Case, out.Message())
	}
	if step.Expect != nil && step.Expect.Created != nil {
		if n := len(out.Created()); n != *step.Expect.Created {
			return fmt.Errorf("%s: expected %d created ids, got %d", step.Invoke, *step.Expect.Created, n)
		}
	}
	return nil
}

// resolveArgs copies args, replacing "$name" strings at any depth.
func (r *Runner) resolveArgs(args map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(args))
	for k, v := range args {
		rv, err := r.resolveValue(v)
		if err != nil {
			return nil, fmt.Errorf("arg %q: %w", k, err)
		}
		out[k] = rv
	}
	return out, nil
}

func (r *Runner) resolveValue(v any) (any, error) {
	switch x := v.(type) {
	case string:
		return r.Resolve(x)
	case map[string]any:
		return r.resolveArgs(x)
	case []any:
		out := make([]any, len(x))
		for i, elem := range x {
			rv, err := r.resolveValue(elem)
			if err != nil {
				return nil, err
			}
			out[i] = rv
		}
		return out, nil
	}
	return v, nil
}

// Run executes a scenario on a fresh engine.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext executes a scenario on a fresh engine with sequential ids,
// the builtin templates and an in-memory journal. opts are applied after
// those defaults.
//
// Setup failures abort the run with an error. Flow and assertion failures
// are collected in the result.
func RunContext(ctx context.Context, scenario *Scenario, opts ...engine.Option) (*Result, error) {
	session := scenario.Session
	if session == "" {
		session = DefaultSession
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	journal := &engine.MemoryJournal{}
	base := []engine.Option{
		engine.WithIDGenerator(testutil.NewSequenceIDs("id")),
		engine.WithSession(session),
		engine.WithJournal(journal),
		engine.WithTemplates(templates.Builtin()),
		engine.WithLogger(logger),
	}
	e := engine.New(append(base, opts...)...)
	runner := NewRunner(e, session, logger)

	for i, step := range scenario.Setup {
		if _, err := runner.Step(ctx, step); err != nil {
			return nil, fmt.Errorf("setup step %d: %w", i, err)
		}
	}

	result := NewResult()
	for i, step := range scenario.Flow {
		if _, err := runner.Step(ctx, step); err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			result.AddError(fmt.Sprintf("flow step %d: %v", i, err))
		}
	}

	result.entries = journal.Entries()
	result.Trace = traceOf(result.entries)
	result.Bindings = runner.Bindings()
	result.Final = e.Snapshot()

	actx := &AssertionContext{
		Ctx:     ctx,
		Engine:  e,
		Runner:  runner,
		Entries: result.entries,

		ReplayOptions: opts,
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}
	return result, nil
}
