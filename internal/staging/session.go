// Package staging buffers cosmetic edits for preview before they reach
// canonical state.
//
// A Session overlays pending field patches on top of a Target. Reads see the
// overlay; the Target is untouched until Apply, which hands every pending
// patch to the Target in one Commit call. Targets validate the whole batch
// before mutating anything, so an Apply is either fully visible or not at
// all.
package staging

import "maps"

// Patch is a sparse set of field overrides keyed by field name.
type Patch map[string]any

// merged returns a copy of p with next laid over it.
func (p Patch) merged(next Patch) Patch {
	out := make(Patch, len(p)+len(next))
	maps.Copy(out, p)
	maps.Copy(out, next)
	return out
}

// Target is the canonical store a Session edits.
type Target[T any] interface {
	// Get returns the canonical entity.
	Get(id string) (T, error)

	// Overlay returns entity with p applied. It must not mutate canonical
	// state.
	Overlay(entity T, p Patch) (T, error)

	// Commit applies every patch or none of them.
	Commit(patches map[string]Patch) error
}

// Session is one named overlay of pending patches.
type Session[T any] struct {
	name    string
	target  Target[T]
	pending map[string]Patch
	order   []string
}

// NewSession creates an empty session over target.
func NewSession[T any](name string, target Target[T]) *Session[T] {
	return &Session[T]{
		name:    name,
		target:  target,
		pending: make(map[string]Patch),
	}
}

// Name returns the session name.
func (s *Session[T]) Name() string {
	return s.name
}

// Stage merges p into the pending patch for id; later values for a field
// replace earlier ones. The merged patch is checked against the canonical
// entity, and a patch that would not apply is rejected without staging.
func (s *Session[T]) Stage(id string, p Patch) error {
	entity, err := s.target.Get(id)
	if err != nil {
		return err
	}
	merged := s.pending[id].merged(p)
	if _, err := s.target.Overlay(entity, merged); err != nil {
		return err
	}
	if _, ok := s.pending[id]; !ok {
		s.order = append(s.order, id)
	}
	s.pending[id] = merged
	return nil
}

// Read returns the canonical entity with any pending patch applied.
func (s *Session[T]) Read(id string) (T, error) {
	entity, err := s.target.Get(id)
	if err != nil {
		return entity, err
	}
	p, ok := s.pending[id]
	if !ok {
		return entity, nil
	}
	return s.target.Overlay(entity, p)
}

// Apply commits all pending patches and clears them, returning how many
// entities were committed. With nothing pending it is a no-op. If the
// target rejects the batch, nothing is committed and the patches stay
// pending.
func (s *Session[T]) Apply() (int, error) {
	if len(s.pending) == 0 {
		return 0, nil
	}
	if err := s.target.Commit(maps.Clone(s.pending)); err != nil {
		return 0, err
	}
	n := len(s.pending)
	s.reset()
	return n, nil
}

// Discard drops all pending patches and returns how many there were.
func (s *Session[T]) Discard() int {
	n := len(s.pending)
	s.reset()
	return n
}

func (s *Session[T]) reset() {
	clear(s.pending)
	s.order = s.order[:0]
}

// HasPendingChanges reports whether any patch is staged.
func (s *Session[T]) HasPendingChanges() bool {
	return len(s.pending) > 0
}

// Pending returns the staged entity ids in first-staged order.
func (s *Session[T]) Pending() []string {
	return append([]string(nil), s.order...)
}

// PendingPatch returns a copy of the staged patch for id.
func (s *Session[T]) PendingPatch(id string) (Patch, bool) {
	p, ok := s.pending[id]
	if !ok {
		return nil, false
	}
	return maps.Clone(p), true
}
