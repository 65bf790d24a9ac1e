// Package tui is a terminal front end for an engine: a ruler row, one row
// per track and a status line. The mouse drives the drag controller and
// every edit goes through the engine as a journaled command.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/roach88/cutroom/internal/drag"
	"github.com/roach88/cutroom/internal/engine"
	"github.com/roach88/cutroom/internal/geometry"
	"github.com/roach88/cutroom/internal/ir"
	"github.com/roach88/cutroom/internal/playhead"
	"github.com/roach88/cutroom/internal/timeline"
)

// labelWidth is the track name column; the timeline starts right of it.
const labelWidth = 12

const zoomStep = 1.25

var (
	styleRuler    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleLabel    = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleClip     = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorSilver)
	styleLocked   = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorGray)
	styleSelected = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow)
	stylePreview  = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	stylePlayhead = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleStatus   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
)

// View renders an engine and turns input into commands. Not safe for
// concurrent use; drive it from one event loop.
type View struct {
	engine  *engine.Engine
	ctx     context.Context
	session string
	drag    *drag.Controller
	logger  *slog.Logger

	selected string
	preview  *drag.Geometry
	status   string
}

// lockedMapper reads the engine's mapper under the engine lock.
type lockedMapper struct {
	e *engine.Engine
}

func (m lockedMapper) PixelToTime(x float64) float64 {
	var t float64
	m.e.View(func(_ *timeline.Timeline, gm *geometry.Mapper) { t = gm.PixelToTime(x) })
	return t
}

func (m lockedMapper) SnapTime(t float64) float64 {
	var s float64
	m.e.View(func(_ *timeline.Timeline, gm *geometry.Mapper) { s = gm.SnapTime(t) })
	return s
}

// New creates a view that executes in session.
func New(ctx context.Context, e *engine.Engine, session string, logger *slog.Logger) *View {
	if logger == nil {
		logger = slog.Default()
	}
	return &View{
		engine:  e,
		ctx:     ctx,
		session: session,
		drag:    drag.NewController(e.Manipulator(ctx, session), lockedMapper{e: e}, e.MinDuration()),
		logger:  logger,
	}
}

// Run draws and handles events until q, Ctrl-C or ctx cancellation. The
// screen must be initialized; Run enables the mouse.
func (v *View) Run(s tcell.Screen) error {
	s.EnableMouse()
	s.Clear()

	redraw := func() { _ = s.PostEvent(tcell.NewEventInterrupt(nil)) }
	unsubscribe := v.engine.Subscribe(func(engine.Notification) { redraw() })
	defer unsubscribe()
	unsubscribePlayhead := v.engine.Playhead().Subscribe(func(playhead.Event) { redraw() })
	defer unsubscribePlayhead()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-v.ctx.Done():
			_ = s.PostEvent(tcell.NewEventInterrupt(quitEvent))
		case <-done:
		}
	}()

	for {
		v.Render(s)
		ev := s.PollEvent()
		if ev == nil {
			return nil
		}
		if in, ok := ev.(*tcell.EventInterrupt); ok && in.Data() == quitEvent {
			return v.ctx.Err()
		}
		if v.HandleEvent(s, ev) {
			return nil
		}
	}
}

type quitSignal struct{}

var quitEvent = quitSignal{}

// HandleEvent applies one event and reports whether the view should quit.
func (v *View) HandleEvent(s tcell.Screen, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return v.handleKey(ev)
	case *tcell.EventMouse:
		v.handleMouse(ev)
	case *tcell.EventResize:
		s.Sync()
	}
	return false
}

func (v *View) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyCtrlC:
		return true
	case tcell.KeyEscape:
		v.drag.Cancel()
		v.preview = nil
		v.status = "drag cancelled"
		return false
	case tcell.KeyRune:
	default:
		return false
	}

	switch ev.Rune() {
	case 'q':
		return true
	case '+', '=':
		v.zoomBy(zoomStep)
	case '-':
		v.zoomBy(1 / zoomStep)
	case ' ':
		if v.engine.Playhead().Playing() {
			v.exec("pause", ir.IRObject{})
		} else {
			v.exec("play", ir.IRObject{})
		}
	case 's':
		if v.selected == "" {
			v.status = "select a clip to split"
			break
		}
		at := v.engine.Playhead().Time()
		if out, ok := v.exec("splitClip", ir.IRObject{"clipId": ir.IRString(v.selected), "at": ir.Micros(at)}); ok {
			v.selected = clipID(out.Result, "right")
		}
	case 'd':
		if v.selected != "" {
			if out, ok := v.exec("duplicateClip", ir.IRObject{"clipId": ir.IRString(v.selected)}); ok {
				v.selected = clipID(out.Result, "clip")
			}
		}
	case 'x':
		if v.selected != "" {
			if _, ok := v.exec("deleteClip", ir.IRObject{"clipId": ir.IRString(v.selected)}); ok {
				v.selected = ""
			}
		}
	}
	return false
}

func clipID(result ir.IRObject, key string) string {
	obj, _ := result[key].(ir.IRObject)
	return obj.String("id")
}

func (v *View) zoomBy(factor float64) {
	var zoom float64
	v.engine.View(func(_ *timeline.Timeline, m *geometry.Mapper) { zoom = m.Zoom() })
	v.exec("setZoom", ir.IRObject{"zoom": ir.Micros(zoom * factor)})
}

// exec runs op and records a failure in the status line.
func (v *View) exec(op ir.OpName, a ir.IRObject) (ir.Outcome, bool) {
	out, err := v.engine.Execute(v.ctx, v.session, op, a)
	if err != nil {
		v.logger.Error("tui command", "op", op, "error", err)
		v.status = err.Error()
		return out, false
	}
	if !out.OK() {
		v.status = fmt.Sprintf("%s: %s", out.Case, out.Message())
		return out, false
	}
	v.status = string(op)
	return out, true
}

func (v *View) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	px := float64(x - labelWidth)
	pressed := ev.Buttons()&tcell.Button1 != 0

	if v.drag.State() == drag.Dragging {
		trackID := v.trackAtRow(y)
		if pressed {
			if g, ok := v.drag.PointerMove(px, trackID); ok {
				v.preview = &g
			}
			return
		}
		moved := v.preview != nil
		v.preview = nil
		if !moved {
			// A click without travel only selects.
			v.drag.Cancel()
			return
		}
		if x < labelWidth {
			v.drag.Leave()
			v.status = "drag abandoned"
			return
		}
		c, err := v.drag.PointerUp(px, trackID)
		if err != nil {
			v.status = err.Error()
			return
		}
		v.status = fmt.Sprintf("%s at %.2fs", c.ID, c.StartTime)
		return
	}

	if !pressed || x < labelWidth {
		return
	}
	if y == 0 {
		var t float64
		v.engine.View(func(_ *timeline.Timeline, m *geometry.Mapper) { t = m.PixelToTime(px) })
		v.exec("seek", ir.IRObject{"time": ir.Micros(math.Max(t, 0))})
		return
	}

	id, mode := v.hitTest(x-labelWidth, y)
	if id == "" {
		v.selected = ""
		return
	}
	v.selected = id
	if err := v.drag.PointerDown(id, mode, px); err != nil {
		v.status = err.Error()
	}
}

// hitTest finds the clip under cell col on row y and the drag mode for
// that spot: the first cell resizes the start, the last the end.
func (v *View) hitTest(col, y int) (string, drag.Mode) {
	var id string
	mode := drag.ModeMove
	v.engine.View(func(tl *timeline.Timeline, m *geometry.Mapper) {
		tracks := tl.ListTracks()
		if y < 1 || y > len(tracks) {
			return
		}
		clips, _ := tl.TrackClips(tracks[y-1].ID)
		for _, c := range clips {
			first, last := cellSpan(m, c.StartTime, c.End())
			if col < first || col > last {
				continue
			}
			id = c.ID
			if last-first >= 2 {
				switch col {
				case first:
					mode = drag.ModeResizeStart
				case last:
					mode = drag.ModeResizeEnd
				}
			}
			return
		}
	})
	return id, mode
}

func (v *View) trackAtRow(y int) string {
	var id string
	v.engine.View(func(tl *timeline.Timeline, _ *geometry.Mapper) {
		tracks := tl.ListTracks()
		if y >= 1 && y <= len(tracks) {
			id = tracks[y-1].ID
		}
	})
	return id
}

// cellSpan returns the first and last cell a time interval covers. Every
// clip covers at least one cell.
func cellSpan(m *geometry.Mapper, start, end float64) (int, int) {
	first := int(math.Floor(m.TimeToPixel(start)))
	last := int(math.Ceil(m.TimeToPixel(end))) - 1
	if last < first {
		last = first
	}
	return first, last
}
