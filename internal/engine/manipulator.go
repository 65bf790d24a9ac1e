package engine

import (
	"context"

	"github.com/roach88/cutroom/internal/ir"
	"github.com/roach88/cutroom/internal/timeline"
)

// Manipulator commits drag gestures as journaled moveClip and resizeClip
// commands. It implements drag.Manipulator.
type Manipulator struct {
	e       *Engine
	ctx     context.Context
	session string
}

// Manipulator returns an adapter that executes in session under ctx.
func (e *Engine) Manipulator(ctx context.Context, session string) *Manipulator {
	return &Manipulator{e: e, ctx: ctx, session: session}
}

// Editable reports whether the clip can be dragged.
func (m *Manipulator) Editable(id string) error {
	m.e.mu.Lock()
	defer m.e.mu.Unlock()
	return m.e.tl.Editable(id)
}

// GetClip returns the clip with id.
func (m *Manipulator) GetClip(id string) (timeline.Clip, error) {
	m.e.mu.Lock()
	defer m.e.mu.Unlock()
	return m.e.tl.GetClip(id)
}

// MoveClip executes moveClip.
func (m *Manipulator) MoveClip(id string, rawStart float64, targetTrackID string) (timeline.Clip, error) {
	a := ir.IRObject{"clipId": ir.IRString(id), "start": ir.Micros(rawStart)}
	if targetTrackID != "" {
		a["trackId"] = ir.IRString(targetTrackID)
	}
	return m.run("moveClip", id, a)
}

// ResizeClip executes resizeClip.
func (m *Manipulator) ResizeClip(id string, edge timeline.Edge, rawBoundary float64) (timeline.Clip, error) {
	return m.run("resizeClip", id, ir.IRObject{
		"clipId": ir.IRString(id),
		"edge":   ir.IRString(edge),
		"time":   ir.Micros(rawBoundary),
	})
}

func (m *Manipulator) run(op ir.OpName, id string, a ir.IRObject) (timeline.Clip, error) {
	out, err := m.e.Execute(m.ctx, m.session, op, a)
	if err != nil {
		return timeline.Clip{}, err
	}
	if !out.OK() {
		return timeline.Clip{}, OutcomeError(op, out)
	}
	return m.GetClip(id)
}

// OutcomeError turns a failed outcome back into the error that produced
// it: a *timeline.Error for domain cases, a *CommandError otherwise.
// Returns nil for a successful outcome.
func OutcomeError(op ir.OpName, out ir.Outcome) error {
	switch out.Case {
	case ir.CaseOk:
		return nil
	case string(CodeInvalidArgument), string(CodeUnknownOp):
		return &CommandError{Code: CommandErrorCode(out.Case), Message: out.Message(), Op: op}
	default:
		return &timeline.Error{Kind: timeline.Kind(out.Case), Message: out.Message()}
	}
}
