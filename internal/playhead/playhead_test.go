package playhead

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cutroom/internal/geometry"
)

type fixedDuration float64

func (d fixedDuration) TotalDuration() float64 { return float64(d) }

func TestSeekClamps(t *testing.T) {
	c := New(fixedDuration(30))

	tests := []struct {
		in, want float64
	}{
		{12.5, 12.5},
		{-4, 0},
		{45, 30},
		{math.NaN(), 0},
		{math.Inf(1), 30},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Seek(tt.in), "seek %v", tt.in)
		assert.Equal(t, tt.want, c.Time())
	}
}

func TestSeekOnEmptyTimeline(t *testing.T) {
	c := New(fixedDuration(0))
	assert.Equal(t, 0.0, c.Seek(5))
}

func TestEventsPublished(t *testing.T) {
	c := New(fixedDuration(10))
	var got []Event
	unsubscribe := c.Subscribe(func(ev Event) { got = append(got, ev) })

	c.Seek(3)
	c.Play()
	c.Sync(4)
	c.Pause()

	require.Len(t, got, 3, "sync publishes nothing")
	assert.Equal(t, Event{Kind: EventSeek, Time: 3}, got[0])
	assert.Equal(t, Event{Kind: EventPlay, Time: 3, Playing: true}, got[1])
	assert.Equal(t, Event{Kind: EventPause, Time: 4}, got[2])
	assert.False(t, c.Playing())

	unsubscribe()
	c.Seek(1)
	assert.Len(t, got, 3)
}

func TestClickRuler(t *testing.T) {
	c := New(fixedDuration(60))
	m := geometry.NewMapper(geometry.WithZoom(2))

	// 2x zoom at 20 px/s puts 10s at pixel 400.
	assert.Equal(t, 10.0, c.ClickRuler(400, m))
	assert.Equal(t, 60.0, c.ClickRuler(1e6, m))
}
