package timeline

// ClipsInRange returns the clips on a track intersecting [from, to), sorted
// by start time.
func (tl *Timeline) ClipsInRange(trackID string, from, to float64) ([]Clip, error) {
	t, err := tl.tracks.get(trackID)
	if err != nil {
		return nil, err
	}
	if !finite(from, to) || to < from {
		return nil, newError(KindInvalidRange, trackID, "invalid range [%g, %g)", from, to)
	}
	var out []Clip
	for _, id := range t.ClipIDs {
		c := tl.clips.mustGet(id)
		if c.StartTime < to && c.End() > from {
			out = append(out, c.clone())
		}
	}
	return out, nil
}

// TrackClips returns all clips on a track, sorted by start time.
func (tl *Timeline) TrackClips(trackID string) ([]Clip, error) {
	t, err := tl.tracks.get(trackID)
	if err != nil {
		return nil, err
	}
	out := make([]Clip, 0, len(t.ClipIDs))
	for _, id := range t.ClipIDs {
		out = append(out, tl.clips.mustGet(id).clone())
	}
	return out, nil
}

// TotalDuration is the latest clip end over all tracks, or 0 when empty.
func (tl *Timeline) TotalDuration() float64 {
	total := 0.0
	for _, c := range tl.clips.byID {
		if end := c.End(); end > total {
			total = end
		}
	}
	return total
}

// Snapshot copies the whole timeline.
func (tl *Timeline) Snapshot() Snapshot {
	s := Snapshot{Tracks: tl.tracks.list()}
	s.Clips = make([]Clip, 0, tl.clips.Len())
	for _, t := range s.Tracks {
		for _, id := range t.ClipIDs {
			s.Clips = append(s.Clips, tl.clips.mustGet(id).clone())
		}
	}
	return s
}
