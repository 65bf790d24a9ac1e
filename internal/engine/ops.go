package engine

import (
	"slices"
	"strings"

	"github.com/roach88/cutroom/internal/ir"
	"github.com/roach88/cutroom/internal/staging"
	"github.com/roach88/cutroom/internal/timeline"
)

type handler func(e *Engine, a args) (ir.IRObject, error)

type opDef struct {
	sig ir.OpSig
	run handler
}

func arg(name string, t ir.ArgType) ir.ArgSpec {
	return ir.ArgSpec{Name: name, Type: t}
}

func opt(name string, t ir.ArgType) ir.ArgSpec {
	return ir.ArgSpec{Name: name, Type: t, Optional: true}
}

func command(name ir.OpName, run handler, specs ...ir.ArgSpec) opDef {
	return opDef{sig: ir.OpSig{Name: name, Args: specs}, run: run}
}

func query(name ir.OpName, run handler, specs ...ir.ArgSpec) opDef {
	return opDef{sig: ir.OpSig{Name: name, Args: specs, ReadOnly: true}, run: run}
}

// catalog is every op the engine answers, keyed by name.
var catalog = buildCatalog(
	// Tracks
	command("addTrack", (*Engine).addTrack, opt("type", ir.ArgString), opt("template", ir.ArgString)),
	command("removeTrack", (*Engine).removeTrack, arg("trackId", ir.ArgString)),
	command("reorderTrack", (*Engine).reorderTrack, arg("from", ir.ArgInt), arg("to", ir.ArgInt)),
	command("updateTrack", (*Engine).updateTrack,
		arg("trackId", ir.ArgString),
		opt("name", ir.ArgString),
		opt("height", ir.ArgInt),
		opt("visible", ir.ArgBool),
		opt("locked", ir.ArgBool),
		opt("muted", ir.ArgBool),
		opt("solo", ir.ArgBool),
		opt("volume", ir.ArgInt),
	),
	command("duplicateTrack", (*Engine).duplicateTrack, arg("trackId", ir.ArgString)),

	// Clips
	command("addClip", (*Engine).addClip,
		arg("trackId", ir.ArgString),
		arg("start", ir.ArgTime),
		arg("duration", ir.ArgTime),
		opt("offset", ir.ArgTime),
		opt("type", ir.ArgString),
		opt("name", ir.ArgString),
		opt("content", ir.ArgString),
		opt("text", ir.ArgString),
		opt("volume", ir.ArgInt),
		opt("opacity", ir.ArgInt),
	),
	command("moveClip", (*Engine).moveClip, arg("clipId", ir.ArgString), arg("start", ir.ArgTime), opt("trackId", ir.ArgString)),
	command("resizeClip", (*Engine).resizeClip, arg("clipId", ir.ArgString), arg("edge", ir.ArgString), arg("time", ir.ArgTime)),
	command("splitClip", (*Engine).splitClip, arg("clipId", ir.ArgString), arg("at", ir.ArgTime)),
	command("mergeClip", (*Engine).mergeClip, arg("clipId", ir.ArgString), arg("targetId", ir.ArgString)),
	command("duplicateClip", (*Engine).duplicateClip, arg("clipId", ir.ArgString)),
	command("deleteClip", (*Engine).deleteClip, arg("clipId", ir.ArgString)),

	// Staged edits
	command("stage", (*Engine).stage, arg("session", ir.ArgString), arg("clipId", ir.ArgString), arg("fields", ir.ArgObject)),
	command("apply", (*Engine).apply, arg("session", ir.ArgString)),
	command("discard", (*Engine).discard, arg("session", ir.ArgString)),

	// Playhead and view
	command("seek", (*Engine).seek, arg("time", ir.ArgTime)),
	command("play", (*Engine).play),
	command("pause", (*Engine).pause),
	command("setZoom", (*Engine).setZoom, arg("zoom", ir.ArgScale)),
	command("setSnapGrid", (*Engine).setSnapGrid, opt("size", ir.ArgTime), arg("enabled", ir.ArgBool)),

	// Queries
	query("getTrack", (*Engine).getTrack, arg("trackId", ir.ArgString)),
	query("listTracks", (*Engine).listTracks),
	query("getClip", (*Engine).getClip, arg("clipId", ir.ArgString)),
	query("getClipsInRange", (*Engine).getClipsInRange, arg("trackId", ir.ArgString), arg("from", ir.ArgTime), arg("to", ir.ArgTime)),
	query("totalDuration", (*Engine).totalDuration),
	query("hasPendingChanges", (*Engine).hasPendingChanges, opt("session", ir.ArgString)),
	query("read", (*Engine).read, arg("session", ir.ArgString), arg("clipId", ir.ArgString)),
	query("playhead", (*Engine).playheadState),
)

func buildCatalog(defs ...opDef) map[ir.OpName]opDef {
	m := make(map[ir.OpName]opDef, len(defs))
	for _, d := range defs {
		if _, dup := m[d.sig.Name]; dup {
			panic("engine: duplicate op " + string(d.sig.Name))
		}
		m[d.sig.Name] = d
	}
	return m
}

// Catalog returns every op signature sorted by name.
func Catalog() []ir.OpSig {
	sigs := make([]ir.OpSig, 0, len(catalog))
	for _, d := range catalog {
		sigs = append(sigs, d.sig)
	}
	slices.SortFunc(sigs, func(a, b ir.OpSig) int { return strings.Compare(string(a.Name), string(b.Name)) })
	return sigs
}

// Signature returns the signature of op.
func Signature(op ir.OpName) (ir.OpSig, bool) {
	d, ok := catalog[op]
	return d.sig, ok
}

// Tracks

func (e *Engine) addTrack(a args) (ir.IRObject, error) {
	var tmpl *timeline.TrackTemplate
	if name := a.str("template"); name != "" {
		if e.templates == nil {
			return nil, &timeline.Error{Kind: timeline.KindInvalidReference, Message: "no templates loaded", ID: name}
		}
		t, ok := e.templates.Template(name)
		if !ok {
			return nil, &timeline.Error{Kind: timeline.KindInvalidReference, Message: "unknown track template", ID: name}
		}
		tmpl = &t
	}
	t, err := e.tl.AddTrack(timeline.TrackType(a.str("type")), tmpl)
	if err != nil {
		return nil, err
	}
	return ir.IRObject{"track": trackValue(t)}, nil
}

func (e *Engine) removeTrack(a args) (ir.IRObject, error) {
	removed, err := e.tl.RemoveTrack(a.str("trackId"))
	if err != nil {
		return nil, err
	}
	return ir.IRObject{"removed": stringArray(removed)}, nil
}

func (e *Engine) reorderTrack(a args) (ir.IRObject, error) {
	if err := e.tl.ReorderTrack(a.int("from"), a.int("to")); err != nil {
		return nil, err
	}
	var ids []string
	for _, t := range e.tl.ListTracks() {
		ids = append(ids, t.ID)
	}
	return ir.IRObject{"tracks": stringArray(ids)}, nil
}

func (e *Engine) updateTrack(a args) (ir.IRObject, error) {
	t, err := e.tl.UpdateTrack(a.str("trackId"), timeline.TrackPatch{
		Name:    a.optString("name"),
		Height:  a.optInt("height"),
		Visible: a.optBool("visible"),
		Locked:  a.optBool("locked"),
		Muted:   a.optBool("muted"),
		Solo:    a.optBool("solo"),
		Volume:  a.optInt("volume"),
	})
	if err != nil {
		return nil, err
	}
	return ir.IRObject{"track": trackValue(t)}, nil
}

func (e *Engine) duplicateTrack(a args) (ir.IRObject, error) {
	t, err := e.tl.DuplicateTrack(a.str("trackId"))
	if err != nil {
		return nil, err
	}
	return ir.IRObject{"track": trackValue(t)}, nil
}

// Clips

func (e *Engine) addClip(a args) (ir.IRObject, error) {
	c, err := e.tl.AddClip(timeline.ClipSpec{
		TrackID:    a.str("trackId"),
		Type:       timeline.ClipType(a.str("type")),
		Name:       a.str("name"),
		StartTime:  a.seconds("start"),
		Duration:   a.seconds("duration"),
		Offset:     a.seconds("offset"),
		ContentRef: a.str("content"),
		Text:       a.str("text"),
		Volume:     a.int("volume"),
		Opacity:    a.int("opacity"),
	})
	return clipResult(c, err)
}

func (e *Engine) moveClip(a args) (ir.IRObject, error) {
	return clipResult(e.tl.MoveClip(a.str("clipId"), a.seconds("start"), a.str("trackId")))
}

func (e *Engine) resizeClip(a args) (ir.IRObject, error) {
	return clipResult(e.tl.ResizeClip(a.str("clipId"), timeline.Edge(a.str("edge")), a.seconds("time")))
}

func (e *Engine) splitClip(a args) (ir.IRObject, error) {
	left, right, err := e.tl.SplitClip(a.str("clipId"), a.seconds("at"))
	if err != nil {
		return nil, err
	}
	return ir.IRObject{"left": clipValue(left), "right": clipValue(right)}, nil
}

func (e *Engine) mergeClip(a args) (ir.IRObject, error) {
	return clipResult(e.tl.MergeClip(a.str("clipId"), a.str("targetId")))
}

func (e *Engine) duplicateClip(a args) (ir.IRObject, error) {
	return clipResult(e.tl.DuplicateClip(a.str("clipId")))
}

func (e *Engine) deleteClip(a args) (ir.IRObject, error) {
	id := a.str("clipId")
	if err := e.tl.DeleteClip(id); err != nil {
		return nil, err
	}
	return ir.IRObject{"deleted": ir.IRString(id)}, nil
}

func clipResult(c timeline.Clip, err error) (ir.IRObject, error) {
	if err != nil {
		return nil, err
	}
	return ir.IRObject{"clip": clipValue(c)}, nil
}

// Staged edits

func (e *Engine) stage(a args) (ir.IRObject, error) {
	s, err := e.editor(a)
	if err != nil {
		return nil, err
	}
	fields, _ := ir.ToNative(a.object("fields")).(map[string]any)
	id := a.str("clipId")
	if err := s.Stage(id, staging.Patch(fields)); err != nil {
		return nil, err
	}
	return clipResult(s.Read(id))
}

func (e *Engine) apply(a args) (ir.IRObject, error) {
	s, err := e.editor(a)
	if err != nil {
		return nil, err
	}
	ids := s.Pending()
	n, err := s.Apply()
	if err != nil {
		return nil, err
	}
	return ir.IRObject{"applied": ir.IRInt(n), "clipIds": stringArray(ids)}, nil
}

func (e *Engine) discard(a args) (ir.IRObject, error) {
	s, err := e.editor(a)
	if err != nil {
		return nil, err
	}
	return ir.IRObject{"discarded": ir.IRInt(s.Discard())}, nil
}

func (e *Engine) hasPendingChanges(a args) (ir.IRObject, error) {
	if !a.has("session") {
		pending := false
		for _, s := range e.sessions {
			pending = pending || s.HasPendingChanges()
		}
		return ir.IRObject{"pending": ir.IRBool(pending)}, nil
	}
	s, err := e.editor(a)
	if err != nil {
		return nil, err
	}
	return ir.IRObject{"pending": ir.IRBool(s.HasPendingChanges())}, nil
}

func (e *Engine) read(a args) (ir.IRObject, error) {
	s, err := e.editor(a)
	if err != nil {
		return nil, err
	}
	return clipResult(s.Read(a.str("clipId")))
}

// editor returns the named staging session, creating it on first use.
func (e *Engine) editor(a args) (*staging.Session[timeline.Clip], error) {
	name := a.str("session")
	if strings.TrimSpace(name) == "" {
		return nil, argError(a.op, "session", "session name must not be empty")
	}
	s, ok := e.sessions[name]
	if !ok {
		s = staging.NewSession[timeline.Clip](name, e.tl.ClipEdits())
		e.sessions[name] = s
	}
	return s, nil
}

// Playhead and view

func (e *Engine) seek(a args) (ir.IRObject, error) {
	t := e.playhead.Seek(a.seconds("time"))
	return ir.IRObject{"time": ir.Micros(t)}, nil
}

func (e *Engine) play(args) (ir.IRObject, error) {
	e.playhead.Play()
	return e.playheadState(args{})
}

func (e *Engine) pause(args) (ir.IRObject, error) {
	e.playhead.Pause()
	return e.playheadState(args{})
}

func (e *Engine) playheadState(args) (ir.IRObject, error) {
	return ir.IRObject{
		"time":    ir.Micros(e.playhead.Time()),
		"playing": ir.IRBool(e.playhead.Playing()),
	}, nil
}

func (e *Engine) setZoom(a args) (ir.IRObject, error) {
	z := a.seconds("zoom")
	if z <= 0 {
		return nil, rangeError("zoom must be positive, got %g", z)
	}
	return ir.IRObject{"zoom": ir.Micros(e.mapper.SetZoom(z))}, nil
}

func (e *Engine) setSnapGrid(a args) (ir.IRObject, error) {
	size, _ := e.mapper.SnapGrid()
	if a.has("size") {
		size = a.seconds("size")
	}
	if err := e.mapper.SetSnapGrid(size, a.bool("enabled")); err != nil {
		return nil, rangeError("%v", err)
	}
	size, enabled := e.mapper.SnapGrid()
	return ir.IRObject{"size": ir.Micros(size), "enabled": ir.IRBool(enabled)}, nil
}

// Queries

func (e *Engine) getTrack(a args) (ir.IRObject, error) {
	t, err := e.tl.GetTrack(a.str("trackId"))
	if err != nil {
		return nil, err
	}
	return ir.IRObject{"track": trackValue(t)}, nil
}

func (e *Engine) listTracks(args) (ir.IRObject, error) {
	tracks := e.tl.ListTracks()
	out := make(ir.IRArray, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, trackValue(t))
	}
	return ir.IRObject{"tracks": out}, nil
}

func (e *Engine) getClip(a args) (ir.IRObject, error) {
	return clipResult(e.tl.GetClip(a.str("clipId")))
}

func (e *Engine) getClipsInRange(a args) (ir.IRObject, error) {
	cs, err := e.tl.ClipsInRange(a.str("trackId"), a.seconds("from"), a.seconds("to"))
	if err != nil {
		return nil, err
	}
	return ir.IRObject{"clips": clipValues(cs)}, nil
}

func (e *Engine) totalDuration(args) (ir.IRObject, error) {
	return ir.IRObject{"duration": ir.Micros(e.tl.TotalDuration())}, nil
}
