package engine

import (
	"sync"

	"github.com/roach88/cutroom/internal/timeline"
)

// recordingIDs passes ids through from base and remembers the ones minted
// during the current command, so the outcome can list them as "created".
type recordingIDs struct {
	base   timeline.IDGenerator
	minted []string
}

func (r *recordingIDs) NewID() string {
	id := r.base.NewID()
	r.minted = append(r.minted, id)
	return id
}

func (r *recordingIDs) start() {
	r.minted = r.minted[:0]
}

func (r *recordingIDs) finish() []string {
	out := append([]string(nil), r.minted...)
	r.minted = r.minted[:0]
	return out
}

// ReplayGenerator hands back ids recorded in a journal. Each command's
// created ids are loaded before it is re-executed; once they run out the
// fallback generator takes over.
type ReplayGenerator struct {
	mu       sync.Mutex
	queue    []string
	fallback timeline.IDGenerator
	misses   int
}

// NewReplayGenerator creates a generator that falls back to fallback.
func NewReplayGenerator(fallback timeline.IDGenerator) *ReplayGenerator {
	if fallback == nil {
		fallback = timeline.UUIDGenerator{}
	}
	return &ReplayGenerator{fallback: fallback}
}

// Load replaces the pending ids.
func (g *ReplayGenerator) Load(ids []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queue = append(g.queue[:0], ids...)
}

// NewID returns the next recorded id, or a fallback id.
func (g *ReplayGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.queue) == 0 {
		g.misses++
		return g.fallback.NewID()
	}
	id := g.queue[0]
	g.queue = g.queue[1:]
	return id
}

// Misses counts ids that had to come from the fallback.
func (g *ReplayGenerator) Misses() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.misses
}
