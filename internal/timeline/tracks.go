package timeline

import (
	"fmt"
	"strings"
)

// AddTrack appends a track. The template, when given, supplies the default
// type, height, volume and name; an explicit typ wins over the template's.
func (tl *Timeline) AddTrack(typ TrackType, tmpl *TrackTemplate) (Track, error) {
	if typ == "" && tmpl != nil {
		typ = tmpl.Type
	}
	if typ == "" {
		typ = TrackVideo
	}
	if !typ.Valid() {
		return Track{}, newError(KindInvalidRange, "", "unknown track type %q", typ)
	}

	if tmpl != nil && tmpl.Volume != nil && (*tmpl.Volume < 0 || *tmpl.Volume > 100) {
		return Track{}, newError(KindInvalidRange, "", "template volume %d outside 0..100", *tmpl.Volume)
	}

	t := &Track{
		ID:      tl.ids.NewID(),
		Name:    fmt.Sprintf("%s %d", title(string(typ)), tl.tracks.countType(typ)+1),
		Type:    typ,
		Height:  tl.opts.height(typ),
		Visible: true,
		Volume:  DefaultVolume,
	}
	if tmpl != nil {
		if tmpl.Name != "" {
			t.Name = tmpl.Name
		}
		if tmpl.Height > 0 {
			t.Height = tmpl.Height
		}
		if tmpl.Volume != nil {
			t.Volume = *tmpl.Volume
		}
	}

	tl.tracks.append(t)
	return t.clone(), nil
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// RemoveTrack deletes a track and every clip on it, returning the ids of
// the removed clips.
func (tl *Timeline) RemoveTrack(id string) ([]string, error) {
	t, err := tl.tracks.get(id)
	if err != nil {
		return nil, err
	}
	if t.Locked {
		return nil, newError(KindLocked, id, "track is locked")
	}

	removed := append([]string(nil), t.ClipIDs...)
	for _, clipID := range removed {
		c := tl.clips.mustGet(clipID)
		assertf(c.TrackID == id, "clip %s listed on track %s but assigned to %s", clipID, id, c.TrackID)
		tl.clips.delete(clipID)
	}
	tl.tracks.remove(id)
	return removed, nil
}

// ReorderTrack moves the track at index from to index to. Orders stay
// contiguous; clip times are untouched.
func (tl *Timeline) ReorderTrack(from, to int) error {
	return tl.tracks.move(from, to)
}

// UpdateTrack applies field updates. Setting Solo clears the solo flag of
// any other track.
func (tl *Timeline) UpdateTrack(id string, p TrackPatch) (Track, error) {
	t, err := tl.tracks.get(id)
	if err != nil {
		return Track{}, err
	}
	if p.Volume != nil && (*p.Volume < 0 || *p.Volume > 100) {
		return Track{}, newError(KindInvalidRange, id, "volume %d outside 0..100", *p.Volume)
	}
	if p.Height != nil && *p.Height <= 0 {
		return Track{}, newError(KindInvalidRange, id, "height must be positive, got %d", *p.Height)
	}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return Track{}, newError(KindInvalidRange, id, "name must not be empty")
	}

	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Height != nil {
		t.Height = *p.Height
	}
	if p.Visible != nil {
		t.Visible = *p.Visible
	}
	if p.Locked != nil {
		t.Locked = *p.Locked
	}
	if p.Muted != nil {
		t.Muted = *p.Muted
	}
	if p.Volume != nil {
		t.Volume = *p.Volume
	}
	if p.Solo != nil {
		tl.tracks.setSolo(t, *p.Solo)
	}
	return t.clone(), nil
}

// DuplicateTrack appends a copy of a track with copies of all its clips.
// Clip copies get fresh ids and share the source ContentRef. The copy is
// never soloed.
func (tl *Timeline) DuplicateTrack(id string) (Track, error) {
	src, err := tl.tracks.get(id)
	if err != nil {
		return Track{}, err
	}

	dup := src.clone()
	dup.ID = tl.ids.NewID()
	dup.Name = src.Name + " copy"
	dup.Solo = false
	dup.ClipIDs = nil
	tl.tracks.append(&dup)

	for _, clipID := range src.ClipIDs {
		c := tl.clips.mustGet(clipID).clone()
		c.ID = tl.ids.NewID()
		tl.clips.put(&c)
		tl.attach(&dup, &c)
	}
	return dup.clone(), nil
}

// GetTrack returns a copy of a track.
func (tl *Timeline) GetTrack(id string) (Track, error) {
	t, err := tl.tracks.get(id)
	if err != nil {
		return Track{}, err
	}
	return t.clone(), nil
}

// ListTracks returns copies of all tracks in order.
func (tl *Timeline) ListTracks() []Track {
	return tl.tracks.list()
}

// SoloTrackID returns the soloed track id, or "".
func (tl *Timeline) SoloTrackID() string {
	return tl.tracks.SoloTrackID()
}
