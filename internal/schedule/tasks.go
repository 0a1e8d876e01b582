package schedule

import (
	"sync"
	"time"
)

// Tasks owns a set of delayed callbacks so they can be cancelled together.
// A cancelled task never runs, even if its timer already fired and the
// callback is waiting to start.
type Tasks struct {
	mu sync.Mutex

	clock   Clock
	next    uint64
	pending map[uint64]Timer
}

// NewTasks creates an empty task set on clock. A nil clock means Real().
func NewTasks(clock Clock) *Tasks {
	if clock == nil {
		clock = Real()
	}
	return &Tasks{
		clock:   clock,
		pending: make(map[uint64]Timer),
	}
}

// After schedules fn to run once after d.
func (t *Tasks) After(d time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.next++
	id := t.next
	t.pending[id] = t.clock.AfterFunc(d, func() {
		if t.claim(id) {
			fn()
		}
	})
}

// Cancel stops every pending task and returns how many were dropped.
func (t *Tasks) Cancel() int {
	t.mu.Lock()
	pending := t.pending
	t.pending = make(map[uint64]Timer)
	t.mu.Unlock()

	for _, timer := range pending {
		timer.Stop()
	}
	return len(pending)
}

// Pending reports how many tasks have not run or been cancelled.
func (t *Tasks) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

func (t *Tasks) claim(id uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.pending[id]; !ok {
		return false
	}
	delete(t.pending, id)
	return true
}
