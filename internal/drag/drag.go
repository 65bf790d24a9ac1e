// Package drag turns pointer gestures on clips into move and resize
// commands.
//
// The Controller is a two-state machine, Idle and Dragging. While dragging
// it only computes a preview geometry; the timeline is touched exactly once,
// on PointerUp, through a Manipulator. Cancel and Leave abandon the gesture
// without any call.
package drag

import (
	"errors"
	"fmt"
	"math"

	"github.com/roach88/cutroom/internal/timeline"
)

// Mode is what a drag does to its clip.
type Mode string

const (
	ModeMove        Mode = "move"
	ModeResizeStart Mode = "resize-start"
	ModeResizeEnd   Mode = "resize-end"
)

// State is the controller state.
type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// ErrNotDragging is returned by PointerUp outside a gesture.
var ErrNotDragging = errors.New("drag: no gesture in progress")

// Manipulator is the timeline surface a drag commits through. Implemented
// by timeline.Timeline and by the engine's journaled adapter.
type Manipulator interface {
	Editable(id string) error
	GetClip(id string) (timeline.Clip, error)
	MoveClip(id string, rawStart float64, targetTrackID string) (timeline.Clip, error)
	ResizeClip(id string, edge timeline.Edge, rawBoundary float64) (timeline.Clip, error)
}

// Mapper converts pointer pixels to time and snaps previews.
// geometry.Mapper implements it.
type Mapper interface {
	PixelToTime(x float64) float64
	SnapTime(t float64) float64
}

// Geometry is a clip's placement.
type Geometry struct {
	TrackID   string
	StartTime float64
	Duration  float64
}

// End returns StartTime+Duration.
func (g Geometry) End() float64 {
	return g.StartTime + g.Duration
}

func geometryOf(c timeline.Clip) Geometry {
	return Geometry{TrackID: c.TrackID, StartTime: c.StartTime, Duration: c.Duration}
}

// Controller drives one gesture at a time. Not safe for concurrent use.
type Controller struct {
	m           Manipulator
	mapper      Mapper
	minDuration float64

	state    State
	clipID   string
	mode     Mode
	anchor   float64
	original Geometry
	proposal Geometry
}

// NewController creates an idle controller. minDuration bounds resize
// previews and should match the timeline's MinDuration.
func NewController(m Manipulator, mapper Mapper, minDuration float64) *Controller {
	if minDuration <= 0 {
		minDuration = timeline.DefaultMinDuration
	}
	return &Controller{m: m, mapper: mapper, minDuration: minDuration}
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// ClipID returns the dragged clip, or "" when idle.
func (c *Controller) ClipID() string {
	return c.clipID
}

// Mode returns the gesture mode, or "" when idle.
func (c *Controller) Mode() Mode {
	return c.mode
}

// Proposal returns the preview geometry while dragging.
func (c *Controller) Proposal() (Geometry, bool) {
	return c.proposal, c.state == Dragging
}

// PointerDown starts a gesture on clipID at pixel x. A locked clip or
// track returns the Locked error and the controller stays idle.
func (c *Controller) PointerDown(clipID string, mode Mode, x float64) error {
	if c.state == Dragging {
		return fmt.Errorf("drag: gesture already in progress on %s", c.clipID)
	}
	switch mode {
	case ModeMove, ModeResizeStart, ModeResizeEnd:
	default:
		return fmt.Errorf("drag: unknown mode %q", mode)
	}
	if err := c.m.Editable(clipID); err != nil {
		return err
	}
	clip, err := c.m.GetClip(clipID)
	if err != nil {
		return err
	}

	c.state = Dragging
	c.clipID = clipID
	c.mode = mode
	c.anchor = x
	c.original = geometryOf(clip)
	c.proposal = c.original
	return nil
}

// PointerMove updates the preview for pixel x. targetTrackID is the track
// under the pointer, or "" to stay on the original track; it only matters
// for moves. Nothing is sent to the timeline.
func (c *Controller) PointerMove(x float64, targetTrackID string) (Geometry, bool) {
	if c.state != Dragging {
		return Geometry{}, false
	}
	raw := c.raw(x)
	g := c.original
	switch c.mode {
	case ModeMove:
		g.StartTime = math.Max(0, c.mapper.SnapTime(raw))
		if targetTrackID != "" {
			g.TrackID = targetTrackID
		}
	case ModeResizeStart:
		end := c.original.End()
		g.StartTime = math.Max(0, math.Min(c.mapper.SnapTime(raw), end-c.minDuration))
		g.Duration = end - g.StartTime
	case ModeResizeEnd:
		g.Duration = math.Max(c.mapper.SnapTime(raw)-g.StartTime, c.minDuration)
	}
	c.proposal = g
	return g, true
}

// PointerUp commits the gesture with the raw value under pixel x and
// returns to Idle whatever the outcome.
func (c *Controller) PointerUp(x float64, targetTrackID string) (timeline.Clip, error) {
	if c.state != Dragging {
		return timeline.Clip{}, ErrNotDragging
	}
	raw := c.raw(x)
	id, mode := c.clipID, c.mode
	c.reset()

	switch mode {
	case ModeMove:
		return c.m.MoveClip(id, raw, targetTrackID)
	case ModeResizeStart:
		return c.m.ResizeClip(id, timeline.EdgeStart, raw)
	default:
		return c.m.ResizeClip(id, timeline.EdgeEnd, raw)
	}
}

// Cancel abandons the gesture (Escape) and returns the original geometry.
func (c *Controller) Cancel() (Geometry, bool) {
	if c.state != Dragging {
		return Geometry{}, false
	}
	g := c.original
	c.reset()
	return g, true
}

// Leave abandons the gesture because the pointer left every drop target.
func (c *Controller) Leave() (Geometry, bool) {
	return c.Cancel()
}

// raw is the unsnapped time the pointer designates: the dragged edge (or
// the start, for moves) shifted by the pointer travel.
func (c *Controller) raw(x float64) float64 {
	delta := c.mapper.PixelToTime(x) - c.mapper.PixelToTime(c.anchor)
	if c.mode == ModeResizeEnd {
		return c.original.End() + delta
	}
	return c.original.StartTime + delta
}

func (c *Controller) reset() {
	c.state = Idle
	c.clipID = ""
	c.mode = ""
	c.anchor = 0
	c.original = Geometry{}
	c.proposal = Geometry{}
}
