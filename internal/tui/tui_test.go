package tui

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cutroom/internal/engine"
	"github.com/roach88/cutroom/internal/ir"
	"github.com/roach88/cutroom/internal/testutil"
)

const (
	screenW = 100
	screenH = 8
)

// setupView builds an engine with one video track (id-1) holding clip
// id-2 at 1s..3s, which the default 20px/s scale puts in cells 20..59.
func setupView(t *testing.T) (*View, *engine.Engine, tcell.SimulationScreen) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := engine.New(
		engine.WithIDGenerator(testutil.NewSequenceIDs("id")),
		engine.WithSession("test"),
		engine.WithLogger(logger),
	)
	exec(t, e, "addTrack", map[string]any{"type": "video"})
	exec(t, e, "addClip", map[string]any{
		"trackId": "id-1", "start": 1.0, "duration": 2.0, "name": "intro", "content": "intro.mp4",
	})
	t.Cleanup(func() {
		assert.NoError(t, e.Validate())
	})

	s := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, s.Init())
	s.SetSize(screenW, screenH)
	t.Cleanup(s.Fini)

	return New(context.Background(), e, "test", logger), e, s
}

func exec(t *testing.T, e *engine.Engine, op string, native map[string]any) ir.Outcome {
	t.Helper()
	a, err := engine.EncodeArgs(ir.OpName(op), native)
	require.NoError(t, err)
	out, err := e.Execute(context.Background(), "test", ir.OpName(op), a)
	require.NoError(t, err)
	require.True(t, out.OK(), "%s: %s", op, out.Message())
	return out
}

func rowText(s tcell.Screen, y int) string {
	var runes []rune
	for x := 0; x < screenW; x++ {
		r, _, _, _ := s.GetContent(x, y)
		runes = append(runes, r)
	}
	return string(runes)
}

func press(v *View, s tcell.Screen, x, y int) {
	v.HandleEvent(s, tcell.NewEventMouse(x, y, tcell.Button1, tcell.ModNone))
}

func release(v *View, s tcell.Screen, x, y int) {
	v.HandleEvent(s, tcell.NewEventMouse(x, y, tcell.ButtonNone, tcell.ModNone))
}

func key(v *View, s tcell.Screen, r rune) bool {
	return v.HandleEvent(s, tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
}

func clipStart(t *testing.T, e *engine.Engine, id string) float64 {
	t.Helper()
	c, ok := e.Snapshot().Clip(id)
	require.True(t, ok, "clip %s", id)
	return c.StartTime
}

func TestRender_Layout(t *testing.T) {
	v, _, s := setupView(t)
	v.Render(s)

	track := rowText(s, 1)
	assert.Contains(t, track[:labelWidth], "Video 1")

	r, _, _, _ := s.GetContent(labelWidth+20, 1)
	assert.Equal(t, '[', r)
	r, _, _, _ = s.GetContent(labelWidth+59, 1)
	assert.Equal(t, ']', r)
	assert.Contains(t, track, "intro")

	ruler := rowText(s, 0)
	assert.Contains(t, ruler, "1s")
	assert.Contains(t, ruler, "2s")

	// Playhead at 0s.
	r, _, _, _ = s.GetContent(labelWidth, 1)
	assert.Equal(t, '│', r)

	assert.Contains(t, rowText(s, screenH-1), "0.00s  paused  zoom 1.00x")
}

func TestRender_TooSmall(t *testing.T) {
	v, _, s := setupView(t)
	s.SetSize(labelWidth, 1)
	assert.NotPanics(t, func() { v.Render(s) })
}

func TestMouse_DragMove(t *testing.T) {
	v, e, s := setupView(t)

	press(v, s, labelWidth+28, 1)
	assert.Equal(t, "id-2", v.selected)

	press(v, s, labelWidth+48, 1)
	require.NotNil(t, v.preview)
	assert.InDelta(t, 2.0, v.preview.StartTime, 1e-9)
	v.Render(s)
	r, _, _, _ := s.GetContent(labelWidth+40, 1)
	assert.Equal(t, '░', r, "preview drawn over the original")

	release(v, s, labelWidth+48, 1)
	assert.Nil(t, v.preview)
	assert.InDelta(t, 2.0, clipStart(t, e, "id-2"), 1e-9)
	assert.Equal(t, int64(3), e.Clock().Current(), "move is journaled")
}

func TestMouse_ResizeEnd(t *testing.T) {
	v, e, s := setupView(t)

	press(v, s, labelWidth+59, 1)
	press(v, s, labelWidth+79, 1)
	release(v, s, labelWidth+79, 1)

	c, ok := e.Snapshot().Clip("id-2")
	require.True(t, ok)
	assert.InDelta(t, 1.0, c.StartTime, 1e-9)
	assert.InDelta(t, 3.0, c.Duration, 1e-9)
}

func TestMouse_ClickSelectsWithoutCommand(t *testing.T) {
	v, e, s := setupView(t)

	press(v, s, labelWidth+30, 1)
	release(v, s, labelWidth+30, 1)

	assert.Equal(t, "id-2", v.selected)
	assert.Equal(t, int64(2), e.Clock().Current())

	press(v, s, labelWidth+5, 1)
	assert.Empty(t, v.selected, "empty space clears the selection")
}

func TestMouse_EscapeCancelsDrag(t *testing.T) {
	v, e, s := setupView(t)

	press(v, s, labelWidth+28, 1)
	press(v, s, labelWidth+68, 1)
	v.HandleEvent(s, tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone))
	release(v, s, labelWidth+68, 1)

	assert.Nil(t, v.preview)
	assert.InDelta(t, 1.0, clipStart(t, e, "id-2"), 1e-9)
	assert.Equal(t, "drag cancelled", v.status)
}

func TestMouse_ReleaseOverLabelsAbandons(t *testing.T) {
	v, e, s := setupView(t)

	press(v, s, labelWidth+28, 1)
	press(v, s, labelWidth+48, 1)
	release(v, s, 2, 1)

	assert.InDelta(t, 1.0, clipStart(t, e, "id-2"), 1e-9)
	assert.Equal(t, "drag abandoned", v.status)
}

func TestMouse_LockedClip(t *testing.T) {
	v, e, s := setupView(t)
	exec(t, e, "updateTrack", map[string]any{"trackId": "id-1", "locked": true})

	press(v, s, labelWidth+28, 1)
	assert.Contains(t, v.status, "locked")
	press(v, s, labelWidth+48, 1)
	assert.Nil(t, v.preview)
}

func TestMouse_RulerSeeks(t *testing.T) {
	v, e, s := setupView(t)

	press(v, s, labelWidth+40, 0)
	assert.InDelta(t, 2.0, e.Playhead().Time(), 1e-9)

	v.Render(s)
	r, _, _, _ := s.GetContent(labelWidth+40, 0)
	assert.Equal(t, '│', r)
}

func TestKeys_Edit(t *testing.T) {
	v, e, s := setupView(t)

	key(v, s, 's')
	assert.Equal(t, "select a clip to split", v.status)

	press(v, s, labelWidth+30, 1)
	release(v, s, labelWidth+30, 1)
	press(v, s, labelWidth+40, 0)

	key(v, s, 's')
	assert.Equal(t, "id-4", v.selected)
	assert.InDelta(t, 2.0, clipStart(t, e, "id-4"), 1e-9)

	key(v, s, 'd')
	assert.Equal(t, "id-5", v.selected)
	assert.InDelta(t, 3.0, clipStart(t, e, "id-5"), 1e-9)

	key(v, s, 'x')
	assert.Empty(t, v.selected)
	_, ok := e.Snapshot().Clip("id-5")
	assert.False(t, ok)
}

func TestKeys_ZoomAndPlay(t *testing.T) {
	v, e, s := setupView(t)

	key(v, s, '+')
	key(v, s, '+')
	key(v, s, '-')
	assert.Equal(t, "setZoom", v.status)

	key(v, s, ' ')
	assert.True(t, e.Playhead().Playing())
	key(v, s, ' ')
	assert.False(t, e.Playhead().Playing())

	v.Render(s)
	assert.Contains(t, rowText(s, screenH-1), "zoom 1.25x")
}

func TestKeys_Quit(t *testing.T) {
	v, _, s := setupView(t)

	assert.False(t, key(v, s, 'z'))
	assert.True(t, key(v, s, 'q'))
	assert.True(t, v.HandleEvent(s, tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModNone)))
}

func TestRun_StopsOnCancel(t *testing.T) {
	v, _, s := setupView(t)
	ctx, cancel := context.WithCancel(context.Background())
	v.ctx = ctx

	done := make(chan error, 1)
	go func() { done <- v.Run(s) }()
	cancel()

	assert.ErrorIs(t, <-done, context.Canceled)
}
