// Package playhead tracks the current playback position of a timeline.
//
// The Controller holds the authoritative position and an advisory playing
// flag. Playback itself happens in an external player; the player reports
// its position back through Sync. User-driven changes (Seek, Play, Pause)
// are published to subscribers, player updates are not.
package playhead

import (
	"math"
	"sync"
)

// EventKind names a playhead change.
type EventKind string

const (
	EventSeek  EventKind = "seek"
	EventPlay  EventKind = "play"
	EventPause EventKind = "pause"
)

// Event is published to subscribers after a user-driven change.
type Event struct {
	Kind    EventKind `json:"kind"`
	Time    float64   `json:"time"`
	Playing bool      `json:"playing"`
}

// DurationSource bounds the playhead. timeline.Timeline implements it.
type DurationSource interface {
	TotalDuration() float64
}

// PixelMapper converts ruler pixels to time. geometry.Mapper implements it.
type PixelMapper interface {
	PixelToTime(x float64) float64
}

// Controller owns the playhead position. It is safe for concurrent use.
type Controller struct {
	src DurationSource

	mu      sync.Mutex
	time    float64
	playing bool
	subs    map[int]func(Event)
	nextSub int
}

// New creates a controller at time 0, paused.
func New(src DurationSource) *Controller {
	return &Controller{src: src, subs: make(map[int]func(Event))}
}

// Time returns the current position in seconds.
func (c *Controller) Time() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.time
}

// Playing reports the advisory playing flag.
func (c *Controller) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

// Seek moves the playhead to t clamped to [0, TotalDuration] and returns
// the clamped time.
func (c *Controller) Seek(t float64) float64 {
	c.mu.Lock()
	c.time = c.clamp(t)
	ev := Event{Kind: EventSeek, Time: c.time, Playing: c.playing}
	c.mu.Unlock()

	c.publish(ev)
	return ev.Time
}

// Play sets the playing flag.
func (c *Controller) Play() {
	c.setPlaying(true, EventPlay)
}

// Pause clears the playing flag.
func (c *Controller) Pause() {
	c.setPlaying(false, EventPause)
}

func (c *Controller) setPlaying(playing bool, kind EventKind) {
	c.mu.Lock()
	c.playing = playing
	ev := Event{Kind: kind, Time: c.time, Playing: playing}
	c.mu.Unlock()

	c.publish(ev)
}

// Sync records a position reported by the player. No event is published.
func (c *Controller) Sync(t float64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.time = c.clamp(t)
	return c.time
}

// ClickRuler seeks to the time under pixel x.
func (c *Controller) ClickRuler(x float64, m PixelMapper) float64 {
	return c.Seek(m.PixelToTime(x))
}

// Subscribe registers fn for future events and returns a function that
// removes it. fn runs on the goroutine that made the change.
func (c *Controller) Subscribe(fn func(Event)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

func (c *Controller) publish(ev Event) {
	c.mu.Lock()
	fns := make([]func(Event), 0, len(c.subs))
	for id := 0; id < c.nextSub; id++ {
		if fn, ok := c.subs[id]; ok {
			fns = append(fns, fn)
		}
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// clamp must be called with mu held.
func (c *Controller) clamp(t float64) float64 {
	if math.IsNaN(t) || t < 0 {
		return 0
	}
	if total := c.src.TotalDuration(); t > total {
		return total
	}
	return t
}
