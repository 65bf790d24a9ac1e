package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnap(t *testing.T) {
	tests := []struct {
		name string
		t    float64
		grid float64
		want float64
	}{
		{"rounds down", 1.23, 0.5, 1.0},
		{"rounds up", 1.3, 0.5, 1.5},
		{"exact", 2.0, 0.5, 2.0},
		{"zero", 0, 0.5, 0},
		{"whole seconds", 7.6, 1, 8},
		{"no grid", 1.23, 0, 1.23},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Snap(tt.t, tt.grid))
		})
	}
}

func TestMapperSnapTime(t *testing.T) {
	m := NewMapper()
	assert.Equal(t, 1.23, m.SnapTime(1.23), "snapping disabled by default")

	require.NoError(t, m.SetSnapGrid(0.5, true))
	assert.Equal(t, 1.0, m.SnapTime(1.23))
	assert.Equal(t, 1.5, m.SnapTime(1.3))

	require.NoError(t, m.SetSnapGrid(0, false))
	size, enabled := m.SnapGrid()
	assert.Equal(t, 0.5, size, "disabling keeps the previous size")
	assert.False(t, enabled)
	assert.Equal(t, 1.3, m.SnapTime(1.3))
}

func TestMapperSetSnapGridRejectsNonPositive(t *testing.T) {
	m := NewMapper()
	assert.Error(t, m.SetSnapGrid(0, true))
	assert.Error(t, m.SetSnapGrid(-1, true))
}

func TestMapperConversions(t *testing.T) {
	m := NewMapper()
	assert.Equal(t, 20.0, m.PixelsPerSecond())
	assert.Equal(t, 100.0, m.TimeToPixel(5))
	assert.Equal(t, 5.0, m.PixelToTime(100))

	m.SetZoom(2)
	assert.Equal(t, 40.0, m.PixelsPerSecond())
	assert.Equal(t, 2.5, m.PixelToTime(100))
}

func TestMapperZoomClamp(t *testing.T) {
	m := NewMapper()

	assert.Equal(t, 5.0, m.SetZoom(12))
	assert.Equal(t, 0.1, m.SetZoom(0.01))
	assert.Equal(t, 0.1, m.SetZoom(-3))
	assert.Equal(t, 1.5, m.SetZoom(1.5))
	assert.Equal(t, 1.5, m.Zoom())
}

func TestMapperOptions(t *testing.T) {
	m := NewMapper(
		WithBaseScale(10),
		WithZoomBounds(0.5, 2),
		WithZoom(4),
		WithSnapGrid(0.25, true),
	)

	assert.Equal(t, 2.0, m.Zoom(), "initial zoom is clamped to bounds")
	assert.Equal(t, 20.0, m.PixelsPerSecond())
	minZoom, maxZoom := m.ZoomBounds()
	assert.Equal(t, 0.5, minZoom)
	assert.Equal(t, 2.0, maxZoom)
	assert.Equal(t, 1.25, m.SnapTime(1.3))
}
