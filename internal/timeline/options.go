package timeline

// Defaults for Options.
const (
	DefaultMinDuration  = 0.1
	DefaultMergeEpsilon = 0.05
	DefaultVolume       = 100
	DefaultOpacity      = 100
)

// timeEpsilon absorbs float noise when comparing interval boundaries.
const timeEpsilon = 1e-9

// Options are the edit policies of a Timeline.
type Options struct {
	// MinDuration is the shortest clip a resize or split may produce.
	MinDuration float64

	// MergeEpsilon is the largest gap between clips that still counts as
	// adjacent for MergeClip.
	MergeEpsilon float64

	// AllowOverlap disables overlap rejection on the same track.
	AllowOverlap bool

	// TrackHeights are the default heights per track type.
	TrackHeights map[TrackType]int
}

// DefaultOptions returns the standard edit policies.
func DefaultOptions() Options {
	return Options{
		MinDuration:  DefaultMinDuration,
		MergeEpsilon: DefaultMergeEpsilon,
		TrackHeights: map[TrackType]int{
			TrackVideo:   60,
			TrackAudio:   40,
			TrackOverlay: 30,
		},
	}
}

func (o Options) height(t TrackType) int {
	if h := o.TrackHeights[t]; h > 0 {
		return h
	}
	return 60
}

// Snapper quantizes raw times. geometry.Mapper implements it.
type Snapper interface {
	SnapTime(t float64) float64
}

type noSnap struct{}

func (noSnap) SnapTime(t float64) float64 { return t }

// Option configures a Timeline.
type Option func(*Timeline)

// WithOptions replaces the edit policies. Zero fields keep their defaults.
func WithOptions(o Options) Option {
	return func(tl *Timeline) {
		if o.MinDuration > 0 {
			tl.opts.MinDuration = o.MinDuration
		}
		if o.MergeEpsilon > 0 {
			tl.opts.MergeEpsilon = o.MergeEpsilon
		}
		tl.opts.AllowOverlap = o.AllowOverlap
		for k, v := range o.TrackHeights {
			if v > 0 {
				tl.opts.TrackHeights[k] = v
			}
		}
	}
}

// WithSnapper sets the snapping source used by MoveClip and ResizeClip.
func WithSnapper(s Snapper) Option {
	return func(tl *Timeline) {
		if s != nil {
			tl.snap = s
		}
	}
}

// WithIDGenerator sets the id source for new tracks and clips.
func WithIDGenerator(g IDGenerator) Option {
	return func(tl *Timeline) {
		if g != nil {
			tl.ids = g
		}
	}
}
