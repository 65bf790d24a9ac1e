package engine

import "sync/atomic"

// Clock is the monotonic logical clock that stamps commands.
//
// Safe for concurrent use, though only the engine's writer calls Next.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock whose next value is start+1. Used to resume a
// journaled session.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next increments the clock and returns the new value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last issued value without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}

func (c *Clock) reset(to int64) {
	c.seq.Store(to)
}
