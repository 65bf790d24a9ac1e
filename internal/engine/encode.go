package engine

import (
	"github.com/roach88/cutroom/internal/ir"
	"github.com/roach88/cutroom/internal/timeline"
)

func clipValue(c timeline.Clip) ir.IRObject {
	effects := make(ir.IRArray, 0, len(c.Effects))
	for _, fx := range c.Effects {
		effects = append(effects, ir.IRObject{"id": ir.IRString(fx.ID), "kind": ir.IRString(fx.Kind)})
	}
	transitions := make(ir.IRArray, 0, len(c.Transitions))
	for _, tr := range c.Transitions {
		transitions = append(transitions, ir.IRObject{
			"id":       ir.IRString(tr.ID),
			"kind":     ir.IRString(tr.Kind),
			"duration": ir.Micros(tr.Duration),
		})
	}
	return ir.IRObject{
		"id":       ir.IRString(c.ID),
		"trackId":  ir.IRString(c.TrackID),
		"type":     ir.IRString(c.Type),
		"name":     ir.IRString(c.Name),
		"start":    ir.Micros(c.StartTime),
		"duration": ir.Micros(c.Duration),
		"offset":   ir.Micros(c.Offset),
		"content":  ir.IRString(c.ContentRef),
		"text":     ir.IRString(c.Text),
		"locked":   ir.IRBool(c.Locked),
		"muted":    ir.IRBool(c.Muted),
		"volume":   ir.IRInt(c.Volume),
		"opacity":  ir.IRInt(c.Opacity),
		"transform": ir.IRObject{
			"x":        ir.IRInt(c.Transform.X),
			"y":        ir.IRInt(c.Transform.Y),
			"scale":    ir.IRInt(c.Transform.Scale),
			"rotation": ir.IRInt(c.Transform.Rotation),
		},
		"effects":     effects,
		"transitions": transitions,
	}
}

func clipValues(cs []timeline.Clip) ir.IRArray {
	out := make(ir.IRArray, 0, len(cs))
	for _, c := range cs {
		out = append(out, clipValue(c))
	}
	return out
}

func trackValue(t timeline.Track) ir.IRObject {
	return ir.IRObject{
		"id":      ir.IRString(t.ID),
		"name":    ir.IRString(t.Name),
		"type":    ir.IRString(t.Type),
		"order":   ir.IRInt(t.Order),
		"height":  ir.IRInt(t.Height),
		"visible": ir.IRBool(t.Visible),
		"locked":  ir.IRBool(t.Locked),
		"muted":   ir.IRBool(t.Muted),
		"solo":    ir.IRBool(t.Solo),
		"volume":  ir.IRInt(t.Volume),
		"clipIds": stringArray(t.ClipIDs),
	}
}

func stringArray(ss []string) ir.IRArray {
	out := make(ir.IRArray, 0, len(ss))
	for _, s := range ss {
		out = append(out, ir.IRString(s))
	}
	return out
}
