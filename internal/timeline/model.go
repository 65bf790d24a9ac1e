package timeline

import "slices"

// TrackType is the kind of media a track lane carries.
type TrackType string

const (
	TrackVideo   TrackType = "video"
	TrackAudio   TrackType = "audio"
	TrackOverlay TrackType = "overlay"
)

// Valid reports whether t is a known track type.
func (t TrackType) Valid() bool {
	switch t {
	case TrackVideo, TrackAudio, TrackOverlay:
		return true
	}
	return false
}

// ClipType is the kind of content a clip places on a track.
type ClipType string

const (
	ClipVideo ClipType = "video"
	ClipAudio ClipType = "audio"
	ClipImage ClipType = "image"
	ClipText  ClipType = "text"
)

// Valid reports whether t is a known clip type.
func (t ClipType) Valid() bool {
	switch t {
	case ClipVideo, ClipAudio, ClipImage, ClipText:
		return true
	}
	return false
}

// Edge selects which boundary of a clip a resize moves.
type Edge string

const (
	EdgeStart Edge = "start"
	EdgeEnd   Edge = "end"
)

// Track is one lane of the timeline.
type Track struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Type    TrackType `json:"type"`
	Order   int       `json:"order"`
	Height  int       `json:"height"`
	Visible bool      `json:"visible"`
	Locked  bool      `json:"locked"`
	Muted   bool      `json:"muted"`
	Solo    bool      `json:"solo"`
	Volume  int       `json:"volume"` // 0..100

	// ClipIDs lists the track's clips sorted by start time.
	ClipIDs []string `json:"clip_ids"`
}

func (t Track) clone() Track {
	t.ClipIDs = slices.Clone(t.ClipIDs)
	return t
}

// EffectRef points at an effect applied to a clip.
type EffectRef struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
}

// TransitionRef points at a transition attached to a clip.
type TransitionRef struct {
	ID       string  `json:"id"`
	Kind     string  `json:"kind"`
	Duration float64 `json:"duration"`
}

// Transform positions visual clips in the frame. Scale is a percentage.
type Transform struct {
	X        int `json:"x"`
	Y        int `json:"y"`
	Scale    int `json:"scale"`
	Rotation int `json:"rotation"`
}

// Clip is a time-bounded reference to content placed on one track.
// Times are in seconds; the interval is [StartTime, StartTime+Duration).
type Clip struct {
	ID        string   `json:"id"`
	TrackID   string   `json:"track_id"`
	Type      ClipType `json:"type"`
	Name      string   `json:"name,omitempty"`
	StartTime float64  `json:"start"`
	Duration  float64  `json:"duration"`

	// Offset is the source in-point: the media time shown at StartTime.
	Offset float64 `json:"offset"`

	// ContentRef is an opaque asset handle, shared between duplicates.
	ContentRef string `json:"content"`

	// Text holds caption content for text clips.
	Text string `json:"text,omitempty"`

	Locked      bool            `json:"locked"`
	Muted       bool            `json:"muted"`
	Volume      int             `json:"volume"`  // 0..100
	Opacity     int             `json:"opacity"` // 0..100
	Effects     []EffectRef     `json:"effects"`
	Transitions []TransitionRef `json:"transitions"`
	Transform   Transform       `json:"transform"`
}

// End returns the exclusive end time.
func (c Clip) End() float64 {
	return c.StartTime + c.Duration
}

func (c Clip) clone() Clip {
	c.Effects = slices.Clone(c.Effects)
	c.Transitions = slices.Clone(c.Transitions)
	return c
}

// ClipSpec describes a clip to add. Zero Volume and Opacity mean 100; an
// empty Type is derived from the track type.
type ClipSpec struct {
	TrackID    string
	Type       ClipType
	Name       string
	StartTime  float64
	Duration   float64
	Offset     float64
	ContentRef string
	Text       string
	Volume     int
	Opacity    int
}

// TrackTemplate supplies defaults for AddTrack. A zero Height or nil Volume
// keeps the track-type default.
type TrackTemplate struct {
	Name   string
	Type   TrackType
	Height int
	Volume *int
}

// TrackPatch lists track field updates; nil fields are left alone.
type TrackPatch struct {
	Name    *string
	Height  *int
	Visible *bool
	Locked  *bool
	Muted   *bool
	Solo    *bool
	Volume  *int
}

// Snapshot is a read-only copy of the whole timeline, for export and
// rendering. Tracks are in order; clips are grouped by track in that order
// and sorted by start time within a track.
type Snapshot struct {
	Tracks []Track `json:"tracks"`
	Clips  []Clip  `json:"clips"`
}

// Clip returns the snapshot's clip with id.
func (s Snapshot) Clip(id string) (Clip, bool) {
	for _, c := range s.Clips {
		if c.ID == id {
			return c, true
		}
	}
	return Clip{}, false
}

// Track returns the snapshot's track with id.
func (s Snapshot) Track(id string) (Track, bool) {
	for _, t := range s.Tracks {
		if t.ID == id {
			return t, true
		}
	}
	return Track{}, false
}
