package reactive

import (
	"sync"

	"github.com/petermattis/goid"
)

// reaction is a computation that re-runs when one of the signals it read changes.
type reaction interface {
	execute()

	dependOn(o observable)
}

// observable is a value source that reactions can subscribe to.
type observable interface {
	untrack(r reaction)
}

// runtime holds the per-goroutine reactive state.
type runtime struct {
	// owner receives the nodes created while it is active
	owner *Owner

	// reaction is the computation currently tracking reads
	reaction reaction

	// if depth > 0, reactions are queued until the outermost batch is complete
	batchDepth int
	pending    []reaction
}

var runtimes sync.Map

func current() *runtime {
	gid := goid.Get()
	if r, ok := runtimes.Load(gid); ok {
		return r.(*runtime)
	}

	r := &runtime{}
	runtimes.Store(gid, r)
	return r
}

func lookup() (*runtime, bool) {
	r, ok := runtimes.Load(goid.Get())
	if !ok {
		return nil, false
	}
	return r.(*runtime), true
}

// release drops the goroutine's runtime once nothing is active on it, so
// goroutines that only write a signal now and then do not accumulate state.
func (rt *runtime) release() {
	if rt.owner == nil && rt.reaction == nil && rt.batchDepth == 0 && len(rt.pending) == 0 {
		runtimes.Delete(goid.Get())
	}
}

func (rt *runtime) queue(r reaction) {
	// if not in batch mode, execute immediately
	if rt.batchDepth == 0 {
		r.execute()
		return
	}

	for _, p := range rt.pending {
		if p == r {
			return
		}
	}
	rt.pending = append(rt.pending, r)
}

func (rt *runtime) flush() {
	for len(rt.pending) > 0 {
		reactions := rt.pending
		rt.pending = nil

		for _, r := range reactions {
			r.execute()
		}
	}
}

// Batch runs fn and defers every reaction it triggers until fn returns.
// Nested batches flush when the outermost one completes.
func Batch(fn func()) {
	rt := current()

	rt.batchDepth++
	func() {
		defer func() { rt.batchDepth-- }()
		fn()
	}()

	if rt.batchDepth == 0 {
		rt.flush()
		rt.release()
	}
}

// Untrack runs fn without tracking the signals it reads.
func Untrack[T any](fn func() T) T {
	rt, ok := lookup()
	if !ok || rt.reaction == nil {
		return fn()
	}

	prev := rt.reaction
	rt.reaction = nil
	defer func() { rt.reaction = prev }()

	return fn()
}

// OnCleanup registers fn on the active owner. Inside an effect, fn runs
// before the effect re-executes and when it is disposed.
func OnCleanup(fn func()) {
	rt, ok := lookup()
	if !ok || rt.owner == nil {
		return
	}
	rt.owner.OnCleanup(fn)
}
