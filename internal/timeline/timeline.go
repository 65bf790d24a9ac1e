package timeline

import (
	"cmp"
	"math"
	"slices"
)

// Timeline is the canonical project state: tracks, clips and edit policies.
// It is not safe for concurrent use; the engine serializes access.
type Timeline struct {
	tracks *TrackRegistry
	clips  *ClipStore
	opts   Options
	snap   Snapper
	ids    IDGenerator
}

// New creates an empty timeline.
func New(opts ...Option) *Timeline {
	tl := &Timeline{
		tracks: newTrackRegistry(),
		clips:  newClipStore(),
		opts:   DefaultOptions(),
		snap:   noSnap{},
		ids:    UUIDGenerator{},
	}
	for _, opt := range opts {
		opt(tl)
	}
	return tl
}

// Options returns the edit policies in effect.
func (tl *Timeline) Options() Options {
	return tl.opts
}

// TrackRegistry is the ordered collection of tracks.
type TrackRegistry struct {
	byID  map[string]*Track
	order []string

	// soloTrackID is the single soloed track, or "".
	soloTrackID string
}

func newTrackRegistry() *TrackRegistry {
	return &TrackRegistry{byID: make(map[string]*Track)}
}

// Len returns the number of tracks.
func (r *TrackRegistry) Len() int {
	return len(r.order)
}

// SoloTrackID returns the soloed track id, or "".
func (r *TrackRegistry) SoloTrackID() string {
	return r.soloTrackID
}

func (r *TrackRegistry) get(id string) (*Track, error) {
	t, ok := r.byID[id]
	if !ok {
		return nil, newError(KindInvalidReference, id, "unknown track")
	}
	return t, nil
}

func (r *TrackRegistry) append(t *Track) {
	t.Order = len(r.order)
	r.byID[t.ID] = t
	r.order = append(r.order, t.ID)
}

func (r *TrackRegistry) remove(id string) {
	delete(r.byID, id)
	r.order = slices.DeleteFunc(r.order, func(v string) bool { return v == id })
	if r.soloTrackID == id {
		r.soloTrackID = ""
	}
	r.renumber()
}

func (r *TrackRegistry) move(from, to int) error {
	n := len(r.order)
	if from < 0 || from >= n || to < 0 || to >= n {
		return newError(KindInvalidRange, "", "track index out of range (from=%d, to=%d, tracks=%d)", from, to, n)
	}
	id := r.order[from]
	r.order = slices.Delete(r.order, from, from+1)
	r.order = slices.Insert(r.order, to, id)
	r.renumber()
	return nil
}

func (r *TrackRegistry) renumber() {
	for i, id := range r.order {
		r.byID[id].Order = i
	}
}

// setSolo keeps at most one track soloed.
func (r *TrackRegistry) setSolo(t *Track, solo bool) {
	if solo {
		if r.soloTrackID != "" && r.soloTrackID != t.ID {
			prev, ok := r.byID[r.soloTrackID]
			assertf(ok, "solo track %s not in registry", r.soloTrackID)
			prev.Solo = false
		}
		r.soloTrackID = t.ID
	} else if r.soloTrackID == t.ID {
		r.soloTrackID = ""
	}
	t.Solo = solo
}

func (r *TrackRegistry) countType(typ TrackType) int {
	n := 0
	for _, t := range r.byID {
		if t.Type == typ {
			n++
		}
	}
	return n
}

func (r *TrackRegistry) list() []Track {
	out := make([]Track, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id].clone())
	}
	return out
}

// ClipStore owns every clip, keyed by id.
type ClipStore struct {
	byID map[string]*Clip
}

func newClipStore() *ClipStore {
	return &ClipStore{byID: make(map[string]*Clip)}
}

// Len returns the number of clips.
func (s *ClipStore) Len() int {
	return len(s.byID)
}

func (s *ClipStore) get(id string) (*Clip, error) {
	c, ok := s.byID[id]
	if !ok {
		return nil, newError(KindInvalidReference, id, "unknown clip")
	}
	return c, nil
}

// mustGet is for ids reached through a track's ClipIDs.
func (s *ClipStore) mustGet(id string) *Clip {
	c, ok := s.byID[id]
	assertf(ok, "track references missing clip %s", id)
	return c
}

func (s *ClipStore) put(c *Clip) {
	s.byID[c.ID] = c
}

func (s *ClipStore) delete(id string) {
	_, ok := s.byID[id]
	assertf(ok, "delete of missing clip %s", id)
	delete(s.byID, id)
}

// attach adds c to its track's id list, keeping start order.
func (tl *Timeline) attach(t *Track, c *Clip) {
	c.TrackID = t.ID
	t.ClipIDs = append(t.ClipIDs, c.ID)
	tl.sortTrack(t)
}

func (tl *Timeline) detach(t *Track, clipID string) {
	n := len(t.ClipIDs)
	t.ClipIDs = slices.DeleteFunc(t.ClipIDs, func(v string) bool { return v == clipID })
	assertf(len(t.ClipIDs) == n-1, "clip %s not listed on track %s", clipID, t.ID)
}

func (tl *Timeline) sortTrack(t *Track) {
	slices.SortStableFunc(t.ClipIDs, func(a, b string) int {
		ca, cb := tl.clips.mustGet(a), tl.clips.mustGet(b)
		if c := cmp.Compare(ca.StartTime, cb.StartTime); c != 0 {
			return c
		}
		return cmp.Compare(ca.ID, cb.ID)
	})
}

// overlapping returns the first clip on t intersecting [start, end),
// ignoring the excluded ids.
func (tl *Timeline) overlapping(t *Track, start, end float64, exclude ...string) (string, bool) {
	for _, id := range t.ClipIDs {
		if slices.Contains(exclude, id) {
			continue
		}
		c := tl.clips.mustGet(id)
		if start < c.End()-timeEpsilon && c.StartTime < end-timeEpsilon {
			return id, true
		}
	}
	return "", false
}

// placementError reports an overlap as kind, unless overlaps are allowed.
func (tl *Timeline) placementError(kind Kind, t *Track, start, end float64, exclude ...string) error {
	if tl.opts.AllowOverlap {
		return nil
	}
	if other, ok := tl.overlapping(t, start, end, exclude...); ok {
		return newError(kind, other, "interval [%g, %g) overlaps clip on track %s", start, end, t.ID)
	}
	return nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
