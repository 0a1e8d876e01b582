//go:build js && wasm

package dom

import (
	"sync"
	"syscall/js"
	"time"

	"github.com/AnatoleLucet/editable/internal/schedule"
)

// Clock schedules callbacks with window.setTimeout, so they run on the
// page's event loop like every other widget callback.
type Clock struct{}

var _ schedule.Clock = Clock{}

func (Clock) AfterFunc(d time.Duration, fn func()) schedule.Timer {
	t := &timer{}

	t.cb = js.FuncOf(func(js.Value, []js.Value) any {
		if t.finish() {
			fn()
		}
		return nil
	})
	t.handle = js.Global().Call("setTimeout", t.cb, d.Milliseconds())
	return t
}

type timer struct {
	mu     sync.Mutex
	cb     js.Func
	handle js.Value
	done   bool
}

func (t *timer) Stop() bool {
	if !t.finish() {
		return false
	}
	js.Global().Call("clearTimeout", t.handle)
	return true
}

// finish marks the timer done and releases its callback; it reports false
// if the timer had already fired or been stopped.
func (t *timer) finish() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done {
		return false
	}
	t.done = true
	t.cb.Release()
	return true
}
