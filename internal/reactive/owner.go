package reactive

import "slices"

// Owner scopes the lifetime of the effects and cleanups created under it.
type Owner struct {
	parent   *Owner
	children []*Owner

	// cleanup functions to be called when the owner is reset or disposed
	cleanups []func()

	// panic handlers
	catchers []func(any)

	disposed bool
}

// NewOwner creates an owner attached to the active owner, if any.
func NewOwner() *Owner {
	var parent *Owner
	if rt, ok := lookup(); ok {
		parent = rt.owner
	}
	return newOwner(parent)
}

func newOwner(parent *Owner) *Owner {
	o := &Owner{parent: parent}
	if parent != nil {
		parent.children = append(parent.children, o)
	}
	return o
}

// Run executes fn with o as the active owner. A panic inside fn is handed
// to the nearest OnError handler; with none registered it propagates.
func (o *Owner) Run(fn func() error) (err error) {
	rt := current()

	prev := rt.owner
	rt.owner = o
	defer func() {
		rt.owner = prev
		rt.release()
	}()

	o.guard(func() { err = fn() })
	return err
}

// OnCleanup registers fn to run when the owner is reset or disposed.
func (o *Owner) OnCleanup(fn func()) {
	if o.disposed {
		fn()
		return
	}
	o.cleanups = append(o.cleanups, fn)
}

// OnError registers a handler for panics raised under this owner.
func (o *Owner) OnError(fn func(any)) {
	o.catchers = append(o.catchers, fn)
}

// Disposed reports whether Dispose has been called.
func (o *Owner) Disposed() bool { return o.disposed }

// Dispose disposes children, runs cleanups and detaches o from its parent.
// Calling it again is a no-op.
func (o *Owner) Dispose() {
	if o.disposed {
		return
	}
	o.reset()
	o.disposed = true

	if o.parent != nil {
		if i := slices.Index(o.parent.children, o); i != -1 {
			o.parent.children = slices.Delete(o.parent.children, i, i+1)
		}
		o.parent = nil
	}
}

// reset disposes children and runs cleanups, keeping o usable.
func (o *Owner) reset() {
	children := o.children
	o.children = nil
	for i := len(children) - 1; i >= 0; i-- {
		children[i].parent = nil
		children[i].Dispose()
	}

	cleanups := o.cleanups
	o.cleanups = nil
	for _, fn := range cleanups {
		fn()
	}
}

func (o *Owner) guard(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			if !o.handle(r) {
				panic(r)
			}
		}
	}()

	fn()
}

func (o *Owner) handle(r any) bool {
	for owner := o; owner != nil; owner = owner.parent {
		if len(owner.catchers) == 0 {
			continue
		}
		for _, catcher := range owner.catchers {
			catcher(r)
		}
		return true
	}
	return false
}
