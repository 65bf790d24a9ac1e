package timeline

import "math"

// MoveClip moves a clip to max(0, snap(rawStart)) on targetTrackID, or on
// its current track when targetTrackID is empty. An overlap on the target
// track is a Conflict and leaves the clip where it was.
func (tl *Timeline) MoveClip(id string, rawStart float64, targetTrackID string) (Clip, error) {
	c, src, err := tl.editable(id)
	if err != nil {
		return Clip{}, err
	}
	if !finite(rawStart) {
		return Clip{}, newError(KindInvalidRange, id, "start time must be finite")
	}
	dst := src
	if targetTrackID != "" && targetTrackID != src.ID {
		if dst, err = tl.tracks.get(targetTrackID); err != nil {
			return Clip{}, err
		}
		if dst.Locked {
			return Clip{}, newError(KindLocked, dst.ID, "track is locked")
		}
	}

	start := math.Max(0, tl.snap.SnapTime(rawStart))
	if err := tl.placementError(KindConflict, dst, start, start+c.Duration, c.ID); err != nil {
		return Clip{}, err
	}

	c.StartTime = start
	if dst != src {
		tl.detach(src, c.ID)
		tl.attach(dst, c)
	} else {
		tl.sortTrack(src)
	}
	return c.clone(), nil
}

// ResizeClip moves one edge of a clip to snap(rawBoundary).
//
// EdgeEnd keeps the start and sets the duration to boundary-start, clamped
// up to MinDuration. EdgeStart keeps the end fixed; the new start is
// min(boundary, end-MinDuration) clamped to >= 0, and Offset shifts with it.
// An overlap with a neighbour is rejected as InvalidRange.
func (tl *Timeline) ResizeClip(id string, edge Edge, rawBoundary float64) (Clip, error) {
	c, t, err := tl.editable(id)
	if err != nil {
		return Clip{}, err
	}
	if !finite(rawBoundary) {
		return Clip{}, newError(KindInvalidRange, id, "boundary must be finite")
	}
	boundary := tl.snap.SnapTime(rawBoundary)
	minDur := tl.opts.MinDuration

	switch edge {
	case EdgeEnd:
		d := math.Max(boundary-c.StartTime, minDur)
		if d <= 0 {
			return Clip{}, newError(KindInvalidRange, id, "duration %g must be positive", d)
		}
		if err := tl.placementError(KindInvalidRange, t, c.StartTime, c.StartTime+d, c.ID); err != nil {
			return Clip{}, err
		}
		c.Duration = d

	case EdgeStart:
		end := c.End()
		start := math.Max(0, math.Min(boundary, end-minDur))
		d := end - start
		if d <= 0 {
			return Clip{}, newError(KindInvalidRange, id, "duration %g must be positive", d)
		}
		if err := tl.placementError(KindInvalidRange, t, start, end, c.ID); err != nil {
			return Clip{}, err
		}
		c.Offset = math.Max(0, c.Offset+start-c.StartTime)
		c.StartTime = start
		c.Duration = d
		tl.sortTrack(t)

	default:
		return Clip{}, newError(KindInvalidRange, id, "unknown edge %q", edge)
	}
	return c.clone(), nil
}

// SplitClip cuts a clip at time at into two clips with fresh ids. The split
// point must leave at least MinDuration on both sides. The original id is
// retired.
func (tl *Timeline) SplitClip(id string, at float64) (Clip, Clip, error) {
	c, t, err := tl.editable(id)
	if err != nil {
		return Clip{}, Clip{}, err
	}
	if !finite(at) {
		return Clip{}, Clip{}, newError(KindInvalidRange, id, "split time must be finite")
	}
	minDur := tl.opts.MinDuration
	local := at - c.StartTime
	if local < minDur-timeEpsilon || local > c.Duration-minDur+timeEpsilon {
		return Clip{}, Clip{}, newError(KindInvalidRange, id,
			"split point %g outside [%g, %g]", at, c.StartTime+minDur, c.End()-minDur)
	}

	a := c.clone()
	a.ID = tl.ids.NewID()
	a.Duration = local

	b := c.clone()
	b.ID = tl.ids.NewID()
	b.StartTime = at
	b.Duration = c.Duration - local
	b.Offset = c.Offset + local

	tl.detach(t, c.ID)
	tl.clips.delete(c.ID)
	tl.clips.put(&a)
	tl.clips.put(&b)
	tl.attach(t, &a)
	tl.attach(t, &b)
	return a.clone(), b.clone(), nil
}

// MergeClip joins two adjacent clips on one track into a new clip spanning
// both. ContentRef, Offset and the other attributes come from the earlier
// clip. Both inputs are retired.
func (tl *Timeline) MergeClip(id, targetID string) (Clip, error) {
	a, err := tl.clips.get(id)
	if err != nil {
		return Clip{}, err
	}
	b, err := tl.clips.get(targetID)
	if err != nil {
		return Clip{}, err
	}
	if a.ID == b.ID {
		return Clip{}, newError(KindMergeNotAdjacent, id, "cannot merge a clip with itself")
	}
	if a.TrackID != b.TrackID {
		return Clip{}, newError(KindMergeNotAdjacent, id, "clips are on different tracks (%s, %s)", a.TrackID, b.TrackID)
	}
	first, second := a, b
	if second.StartTime < first.StartTime {
		first, second = second, first
	}
	if math.Abs(first.End()-second.StartTime) >= tl.opts.MergeEpsilon {
		return Clip{}, newError(KindMergeNotAdjacent, id,
			"gap of %g between clips exceeds %g", second.StartTime-first.End(), tl.opts.MergeEpsilon)
	}
	if _, _, err := tl.editable(first.ID); err != nil {
		return Clip{}, err
	}
	if _, _, err := tl.editable(second.ID); err != nil {
		return Clip{}, err
	}

	t, _ := tl.tracks.get(first.TrackID)
	start := first.StartTime
	end := math.Max(first.End(), second.End())
	if err := tl.placementError(KindConflict, t, start, end, first.ID, second.ID); err != nil {
		return Clip{}, err
	}

	merged := first.clone()
	merged.ID = tl.ids.NewID()
	merged.Duration = end - start

	tl.detach(t, first.ID)
	tl.detach(t, second.ID)
	tl.clips.delete(first.ID)
	tl.clips.delete(second.ID)
	tl.clips.put(&merged)
	tl.attach(t, &merged)
	return merged.clone(), nil
}

// DuplicateClip copies a clip to start at the source's end on the same
// track. The copy shares ContentRef. An overlap is a Conflict; callers may
// retry on another track.
func (tl *Timeline) DuplicateClip(id string) (Clip, error) {
	src, err := tl.clips.get(id)
	if err != nil {
		return Clip{}, err
	}
	t, err := tl.tracks.get(src.TrackID)
	assertf(err == nil, "clip %s references missing track %s", src.ID, src.TrackID)
	if t.Locked {
		return Clip{}, newError(KindLocked, t.ID, "track is locked")
	}
	start := src.End()
	if err := tl.placementError(KindConflict, t, start, start+src.Duration); err != nil {
		return Clip{}, err
	}

	dup := src.clone()
	dup.ID = tl.ids.NewID()
	dup.StartTime = start
	tl.clips.put(&dup)
	tl.attach(t, &dup)
	return dup.clone(), nil
}
