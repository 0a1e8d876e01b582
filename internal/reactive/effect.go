package reactive

import "slices"

// Effect re-runs its function whenever a signal it read changes.
type Effect struct {
	owner *Owner

	fn   func()
	deps []observable
}

// NewEffect creates an effect under the active owner and runs it once.
func NewEffect(fn func()) *Effect {
	e := &Effect{fn: fn, owner: NewOwner()}
	e.execute()

	return e
}

// Dispose stops the effect and runs its cleanups.
func (e *Effect) Dispose() {
	e.owner.Dispose()
}

func (e *Effect) execute() {
	if e.owner.disposed {
		return
	}

	// cleanups are consumed by reset, so dependency release is re-registered on every run
	e.owner.reset()
	e.owner.OnCleanup(e.clearDeps)

	rt := current()

	prevOwner, prevReaction := rt.owner, rt.reaction
	rt.owner, rt.reaction = e.owner, e
	defer func() {
		rt.owner, rt.reaction = prevOwner, prevReaction
		rt.release()
	}()

	e.owner.guard(e.fn)
}

func (e *Effect) dependOn(o observable) {
	if !slices.Contains(e.deps, o) {
		e.deps = append(e.deps, o)
	}
}

func (e *Effect) clearDeps() {
	// clonning to avoid mutation during iteration
	deps := slices.Clone(e.deps)
	e.deps = nil

	for _, dep := range deps {
		dep.untrack(e)
	}
}
