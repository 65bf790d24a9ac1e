package geometry

import (
	"fmt"
	"math"
)

// Defaults used when no option overrides them.
const (
	DefaultBaseScale = 20.0
	DefaultMinZoom   = 0.1
	DefaultMaxZoom   = 5.0
	DefaultGridSize  = 0.5
)

// Mapper converts between seconds and pixels for the current zoom and
// quantizes times to the snap grid.
type Mapper struct {
	zoom      float64
	minZoom   float64
	maxZoom   float64
	baseScale float64
	gridSize  float64
	snap      bool
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithBaseScale sets pixels per second at zoom 1.
func WithBaseScale(scale float64) Option {
	return func(m *Mapper) {
		if scale > 0 {
			m.baseScale = scale
		}
	}
}

// WithZoomBounds sets the inclusive zoom range.
func WithZoomBounds(minZoom, maxZoom float64) Option {
	return func(m *Mapper) {
		if minZoom > 0 && maxZoom >= minZoom {
			m.minZoom = minZoom
			m.maxZoom = maxZoom
		}
	}
}

// WithZoom sets the initial zoom. It is clamped after all options apply.
func WithZoom(zoom float64) Option {
	return func(m *Mapper) {
		m.zoom = zoom
	}
}

// WithSnapGrid sets the grid size and whether snapping is on.
func WithSnapGrid(size float64, enabled bool) Option {
	return func(m *Mapper) {
		if size > 0 {
			m.gridSize = size
		}
		m.snap = enabled
	}
}

// NewMapper returns a Mapper at zoom 1 with snapping disabled unless options
// say otherwise.
func NewMapper(opts ...Option) *Mapper {
	m := &Mapper{
		zoom:      1,
		minZoom:   DefaultMinZoom,
		maxZoom:   DefaultMaxZoom,
		baseScale: DefaultBaseScale,
		gridSize:  DefaultGridSize,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.zoom = m.clamp(m.zoom)
	return m
}

// Zoom returns the current zoom factor.
func (m *Mapper) Zoom() float64 {
	return m.zoom
}

// ZoomBounds returns the configured zoom range.
func (m *Mapper) ZoomBounds() (float64, float64) {
	return m.minZoom, m.maxZoom
}

// SetZoom clamps zoom into bounds, stores it and returns the applied value.
func (m *Mapper) SetZoom(zoom float64) float64 {
	m.zoom = m.clamp(zoom)
	return m.zoom
}

func (m *Mapper) clamp(zoom float64) float64 {
	if math.IsNaN(zoom) {
		return m.minZoom
	}
	return math.Min(math.Max(zoom, m.minZoom), m.maxZoom)
}

// PixelsPerSecond is zoom * baseScale.
func (m *Mapper) PixelsPerSecond() float64 {
	return m.zoom * m.baseScale
}

// TimeToPixel converts seconds to pixels.
func (m *Mapper) TimeToPixel(t float64) float64 {
	return t * m.PixelsPerSecond()
}

// PixelToTime converts pixels to seconds.
func (m *Mapper) PixelToTime(x float64) float64 {
	return x / m.PixelsPerSecond()
}

// SetSnapGrid configures snapping. A non-positive size is rejected while
// snapping is enabled; when disabling, the previous size is kept.
func (m *Mapper) SetSnapGrid(size float64, enabled bool) error {
	if enabled && !(size > 0) {
		return fmt.Errorf("snap grid size must be positive, got %v", size)
	}
	if size > 0 {
		m.gridSize = size
	}
	m.snap = enabled
	return nil
}

// SnapGrid returns the grid size and whether snapping is enabled.
func (m *Mapper) SnapGrid() (float64, bool) {
	return m.gridSize, m.snap
}

// SnapTime quantizes t to the grid when snapping is enabled, otherwise
// returns t unchanged.
func (m *Mapper) SnapTime(t float64) float64 {
	if !m.snap {
		return t
	}
	return Snap(t, m.gridSize)
}

// Snap rounds t to the nearest multiple of gridSize. A non-positive grid
// leaves t unchanged.
func Snap(t, gridSize float64) float64 {
	if gridSize <= 0 {
		return t
	}
	return math.Round(t/gridSize) * gridSize
}
