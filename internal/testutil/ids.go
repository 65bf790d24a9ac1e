// Package testutil holds deterministic helpers shared by tests and the
// scenario harness.
package testutil

import (
	"fmt"
	"sync"
)

// SequenceIDs mints ids "<prefix>-1", "<prefix>-2", ... in order.
//
// This enables deterministic test execution and golden trace comparison:
// the same scenario with a fresh SequenceIDs produces byte-identical
// outcomes.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SequenceIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceIDs creates a generator. An empty prefix means "id".
func NewSequenceIDs(prefix string) *SequenceIDs {
	if prefix == "" {
		prefix = "id"
	}
	return &SequenceIDs{prefix: prefix}
}

// NewID returns the next id. Implements timeline.IDGenerator.
func (g *SequenceIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}

// Count returns how many ids have been minted.
func (g *SequenceIDs) Count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.n
}
