package timeline

// AddClip places a new clip on a track.
func (tl *Timeline) AddClip(spec ClipSpec) (Clip, error) {
	t, err := tl.tracks.get(spec.TrackID)
	if err != nil {
		return Clip{}, err
	}
	if !finite(spec.StartTime, spec.Duration, spec.Offset) {
		return Clip{}, newError(KindInvalidRange, "", "times must be finite")
	}
	if spec.StartTime < 0 {
		return Clip{}, newError(KindInvalidRange, "", "start time %g is negative", spec.StartTime)
	}
	if spec.Duration <= 0 {
		return Clip{}, newError(KindInvalidRange, "", "duration %g must be positive", spec.Duration)
	}
	if spec.Offset < 0 {
		return Clip{}, newError(KindInvalidRange, "", "offset %g is negative", spec.Offset)
	}
	typ := spec.Type
	if typ == "" {
		typ = defaultClipType(t.Type)
	}
	if !typ.Valid() {
		return Clip{}, newError(KindInvalidRange, "", "unknown clip type %q", typ)
	}
	volume, opacity := spec.Volume, spec.Opacity
	if volume == 0 {
		volume = DefaultVolume
	}
	if opacity == 0 {
		opacity = DefaultOpacity
	}
	if volume < 0 || volume > 100 || opacity < 0 || opacity > 100 {
		return Clip{}, newError(KindInvalidRange, "", "volume and opacity must be within 0..100")
	}
	if t.Locked {
		return Clip{}, newError(KindLocked, t.ID, "track is locked")
	}
	if err := tl.placementError(KindConflict, t, spec.StartTime, spec.StartTime+spec.Duration); err != nil {
		return Clip{}, err
	}

	c := &Clip{
		ID:         tl.ids.NewID(),
		Type:       typ,
		Name:       spec.Name,
		StartTime:  spec.StartTime,
		Duration:   spec.Duration,
		Offset:     spec.Offset,
		ContentRef: spec.ContentRef,
		Text:       spec.Text,
		Volume:     volume,
		Opacity:    opacity,
		Transform:  Transform{Scale: 100},
	}
	tl.clips.put(c)
	tl.attach(t, c)
	return c.clone(), nil
}

func defaultClipType(t TrackType) ClipType {
	switch t {
	case TrackAudio:
		return ClipAudio
	case TrackOverlay:
		return ClipImage
	default:
		return ClipVideo
	}
}

// DeleteClip removes a clip.
func (tl *Timeline) DeleteClip(id string) error {
	c, t, err := tl.editable(id)
	if err != nil {
		return err
	}
	tl.detach(t, c.ID)
	tl.clips.delete(c.ID)
	return nil
}

// GetClip returns a copy of a clip.
func (tl *Timeline) GetClip(id string) (Clip, error) {
	c, err := tl.clips.get(id)
	if err != nil {
		return Clip{}, err
	}
	return c.clone(), nil
}

// editable resolves a clip and its track, rejecting locked ones.
func (tl *Timeline) editable(id string) (*Clip, *Track, error) {
	c, err := tl.clips.get(id)
	if err != nil {
		return nil, nil, err
	}
	t, err := tl.tracks.get(c.TrackID)
	assertf(err == nil, "clip %s references missing track %s", c.ID, c.TrackID)
	if c.Locked {
		return nil, nil, newError(KindLocked, c.ID, "clip is locked")
	}
	if t.Locked {
		return nil, nil, newError(KindLocked, t.ID, "track is locked")
	}
	return c, t, nil
}

// Editable reports whether a clip and its track accept edits. It returns
// InvalidReference for an unknown id and Locked for a locked clip or track.
func (tl *Timeline) Editable(id string) error {
	_, _, err := tl.editable(id)
	return err
}
