package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManualClock(t *testing.T) {
	t.Run("fires due timers in order", func(t *testing.T) {
		log := []string{}
		c := NewManualClock()

		c.AfterFunc(1000*time.Millisecond, func() { log = append(log, "slider") })
		c.AfterFunc(500*time.Millisecond, func() { log = append(log, "editor") })

		c.Advance(499 * time.Millisecond)
		assert.Empty(t, log)

		c.Advance(time.Millisecond)
		assert.Equal(t, []string{"editor"}, log)

		c.Advance(time.Second)
		assert.Equal(t, []string{"editor", "slider"}, log)
		assert.Equal(t, 0, c.Pending())
	})

	t.Run("stopped timers never fire", func(t *testing.T) {
		fired := false
		c := NewManualClock()

		timer := c.AfterFunc(time.Second, func() { fired = true })
		assert.True(t, timer.Stop())
		assert.False(t, timer.Stop())

		c.Advance(time.Hour)
		assert.False(t, fired)
	})

	t.Run("timers scheduled by callbacks fire within the same advance", func(t *testing.T) {
		log := []string{}
		c := NewManualClock()

		c.AfterFunc(time.Second, func() {
			log = append(log, "first")
			c.AfterFunc(time.Second, func() { log = append(log, "second") })
		})

		c.Advance(3 * time.Second)
		assert.Equal(t, []string{"first", "second"}, log)
		assert.Equal(t, 3*time.Second, c.Now())
	})
}

func TestTasks(t *testing.T) {
	t.Run("runs and forgets", func(t *testing.T) {
		c := NewManualClock()
		tasks := NewTasks(c)

		runs := 0
		tasks.After(time.Second, func() { runs++ })
		require.Equal(t, 1, tasks.Pending())

		c.Advance(time.Second)
		assert.Equal(t, 1, runs)
		assert.Equal(t, 0, tasks.Pending())
	})

	t.Run("cancel drops everything pending", func(t *testing.T) {
		c := NewManualClock()
		tasks := NewTasks(c)

		runs := 0
		tasks.After(time.Second, func() { runs++ })
		tasks.After(2*time.Second, func() { runs++ })

		assert.Equal(t, 2, tasks.Cancel())
		assert.Equal(t, 0, tasks.Cancel())

		c.Advance(time.Minute)
		assert.Equal(t, 0, runs)
		assert.Equal(t, 0, c.Pending())
	})

	t.Run("cancelled task does not run when its timer ignores stop", func(t *testing.T) {
		c := &stubbornClock{}
		tasks := NewTasks(c)

		runs := 0
		tasks.After(time.Second, func() { runs++ })
		tasks.Cancel()

		c.fire()
		assert.Equal(t, 0, runs)
	})

	t.Run("real clock", func(t *testing.T) {
		tasks := NewTasks(nil)

		done := make(chan struct{})
		tasks.After(time.Millisecond, func() { close(done) })

		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("task did not run")
		}
	})
}

// stubbornClock hands out timers whose Stop never prevents the callback.
type stubbornClock struct {
	fns []func()
}

type stubbornTimer struct{}

func (stubbornTimer) Stop() bool { return false }

func (c *stubbornClock) AfterFunc(_ time.Duration, fn func()) Timer {
	c.fns = append(c.fns, fn)
	return stubbornTimer{}
}

func (c *stubbornClock) fire() {
	for _, fn := range c.fns {
		fn()
	}
}
