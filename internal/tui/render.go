package tui

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/roach88/cutroom/internal/drag"
	"github.com/roach88/cutroom/internal/geometry"
	"github.com/roach88/cutroom/internal/timeline"
)

// Render draws the whole view and shows it.
func (v *View) Render(s tcell.Screen) {
	s.Clear()
	w, h := s.Size()
	if w <= labelWidth || h < 2 {
		s.Show()
		return
	}

	ph := v.engine.Playhead()
	at := ph.Time()
	var zoom float64
	v.engine.View(func(tl *timeline.Timeline, m *geometry.Mapper) {
		zoom = m.Zoom()
		drawRuler(s, m, w)
		for i, t := range tl.ListTracks() {
			y := i + 1
			if y >= h-1 {
				break
			}
			v.drawTrack(s, tl, m, t, y, w)
		}
		if v.preview != nil {
			v.drawPreview(s, tl, m, *v.preview, w, h)
		}
		col := labelWidth + int(math.Round(m.TimeToPixel(at)))
		if col < w {
			for y := 0; y < h-1; y++ {
				r, _, _, _ := s.GetContent(col, y)
				if r == ' ' || y == 0 {
					s.SetContent(col, y, '│', nil, stylePlayhead)
				}
			}
		}
	})

	state := "paused"
	if ph.Playing() {
		state = "playing"
	}
	status := fmt.Sprintf(" %.2fs  %s  zoom %.2fx  %s", at, state, zoom, v.status)
	drawText(s, 0, h-1, w, status, styleStatus)
	s.Show()
}

// drawRuler labels every whole second that has room for its label.
func drawRuler(s tcell.Screen, m *geometry.Mapper, w int) {
	step := 1
	for m.PixelsPerSecond()*float64(step) < 6 {
		step *= 2
	}
	for sec := 0; ; sec += step {
		col := labelWidth + int(math.Round(m.TimeToPixel(float64(sec))))
		if col >= w {
			return
		}
		s.SetContent(col, 0, '┊', nil, styleRuler)
		drawText(s, col+1, 0, w, fmt.Sprintf("%ds", sec), styleRuler)
	}
}

func (v *View) drawTrack(s tcell.Screen, tl *timeline.Timeline, m *geometry.Mapper, t timeline.Track, y, w int) {
	label := t.Name
	if t.Locked {
		label = "*" + label
	}
	drawText(s, 0, y, labelWidth-1, label, styleLabel)

	clips, _ := tl.TrackClips(t.ID)
	for _, c := range clips {
		style := styleClip
		switch {
		case c.ID == v.selected:
			style = styleSelected
		case c.Locked || t.Locked:
			style = styleLocked
		}
		first, last := cellSpan(m, c.StartTime, c.End())
		for col := first; col <= last; col++ {
			x := labelWidth + col
			if x >= w {
				break
			}
			s.SetContent(x, y, clipGlyph(c.Type), nil, style)
		}
		if last > first {
			s.SetContent(labelWidth+first, y, '[', nil, style)
			if labelWidth+last < w {
				s.SetContent(labelWidth+last, y, ']', nil, style)
			}
		}
		name := c.Name
		if name == "" {
			name = c.ID
		}
		if last-first > 2 {
			drawText(s, labelWidth+first+1, y, min(labelWidth+last, w), name, style)
		}
	}
}

// drawPreview outlines where the clip being dragged would land.
func (v *View) drawPreview(s tcell.Screen, tl *timeline.Timeline, m *geometry.Mapper, g drag.Geometry, w, h int) {
	y := 0
	for i, t := range tl.ListTracks() {
		if t.ID == g.TrackID {
			y = i + 1
		}
	}
	if y == 0 || y >= h-1 {
		return
	}
	first, last := cellSpan(m, g.StartTime, g.End())
	for col := first; col <= last; col++ {
		if x := labelWidth + col; x < w {
			s.SetContent(x, y, '░', nil, stylePreview)
		}
	}
}

func clipGlyph(t timeline.ClipType) rune {
	switch t {
	case timeline.ClipAudio:
		return '~'
	case timeline.ClipImage:
		return '#'
	case timeline.ClipText:
		return 'T'
	default:
		return '='
	}
}

// drawText writes str from x up to (not including) column limit.
func drawText(s tcell.Screen, x, y, limit int, str string, style tcell.Style) {
	for _, r := range str {
		if x >= limit {
			return
		}
		s.SetContent(x, y, r, nil, style)
		x++
	}
}
