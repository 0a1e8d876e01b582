package reactive

import (
	"slices"
	"sync"
)

// Signal is a read/write value that notifies the reactions that read it.
type Signal[T comparable] struct {
	mu sync.Mutex

	value     T
	reactions []reaction
}

// NewSignal creates a signal holding initial.
func NewSignal[T comparable](initial T) *Signal[T] {
	return &Signal[T]{value: initial}
}

// Read returns the current value, tracking it if called from an effect.
func (s *Signal[T]) Read() T {
	if rt, ok := lookup(); ok && rt.reaction != nil {
		s.track(rt.reaction)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Peek returns the current value without tracking.
func (s *Signal[T]) Peek() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Write stores v and re-runs dependents. Writing an equal value is a no-op.
func (s *Signal[T]) Write(v T) {
	s.mu.Lock()
	if s.value == v {
		s.mu.Unlock()
		return
	}
	s.value = v
	// clonning to avoid mutation during iteration
	reactions := slices.Clone(s.reactions)
	s.mu.Unlock()

	rt := current()
	for _, r := range reactions {
		rt.queue(r)
	}
	rt.release()
}

func (s *Signal[T]) track(r reaction) {
	s.mu.Lock()
	if slices.Contains(s.reactions, r) {
		s.mu.Unlock()
		return
	}
	s.reactions = append(s.reactions, r)
	s.mu.Unlock()

	r.dependOn(s)
}

func (s *Signal[T]) untrack(r reaction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := slices.Index(s.reactions, r); i != -1 {
		s.reactions = slices.Delete(s.reactions, i, i+1)
	}
}

// subscribers reports how many reactions currently depend on s.
func (s *Signal[T]) subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reactions)
}
