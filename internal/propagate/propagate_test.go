package propagate

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnatoleLucet/editable/internal/schedule"
	"github.com/AnatoleLucet/editable/memhost"
)

func newPropagator(clock schedule.Clock, hide bool) *Propagator {
	return New(Options{
		ExcludeBinding: "IsLocked",
		ButtonClass:    "lockable",
		HideButtons:    hide,
		Clock:          clock,
	})
}

func TestApply(t *testing.T) {
	t.Run("disables fields except the condition attribute", func(t *testing.T) {
		form := memhost.NewForm("IsLocked", "lockable")
		p := newPropagator(schedule.NewManualClock(), false)

		matched := p.Apply(form.Anchor, false)

		assert.Equal(t, 6, matched)
		assert.True(t, form.Name.Disabled())
		assert.True(t, form.Notes.Disabled())
		assert.True(t, form.Notes.ReadOnly())
		assert.False(t, form.Locked.Disabled())
	})

	t.Run("re-enables fields", func(t *testing.T) {
		form := memhost.NewForm("IsLocked", "lockable")
		p := newPropagator(schedule.NewManualClock(), false)

		p.Apply(form.Anchor, false)
		p.Apply(form.Anchor, true)

		assert.False(t, form.Name.Disabled())
		assert.False(t, form.Notes.ReadOnly())
	})

	t.Run("disables only buttons with the class", func(t *testing.T) {
		form := memhost.NewForm("IsLocked", "lockable")
		p := newPropagator(schedule.NewManualClock(), false)

		p.Apply(form.Anchor, false)

		assert.True(t, form.Save.Disabled())
		assert.True(t, form.Save.ReadOnly())
		assert.Equal(t, "inline-flex", form.Save.ComputedDisplay())
		assert.False(t, form.Cancel.Disabled())
	})

	t.Run("empty button class matches nothing", func(t *testing.T) {
		form := memhost.NewForm("IsLocked", "")
		p := New(Options{ExcludeBinding: "IsLocked", Clock: schedule.NewManualClock()})

		p.Apply(form.Anchor, false)

		assert.False(t, form.Save.Disabled())
		assert.False(t, form.Cancel.Disabled())
	})

	t.Run("is idempotent", func(t *testing.T) {
		clock := schedule.NewManualClock()
		form := memhost.NewForm("IsLocked", "lockable")
		form.Body.AttachEditor()
		p := newPropagator(clock, true)

		p.Apply(form.Anchor, true)
		clock.Advance(time.Second)
		once := form.Root.Snapshot()

		p.Apply(form.Anchor, true)
		clock.Advance(time.Second)

		assert.Equal(t, once, form.Root.Snapshot())
	})

	t.Run("missing container is a no-op", func(t *testing.T) {
		orphan := memhost.NewPanel("root")
		anchor := memhost.NewLabel("editable")
		input := memhost.NewInput("name", "Name")
		orphan.Append(anchor, input)

		p := newPropagator(schedule.NewManualClock(), false)

		assert.Equal(t, 0, p.Apply(anchor, false))
		assert.Equal(t, 0, p.Apply(nil, false))
		assert.False(t, input.Disabled())
	})
}

func TestHideButtons(t *testing.T) {
	for _, display := range []string{"block", "inline-flex", "table-cell"} {
		t.Run("restores "+display, func(t *testing.T) {
			view := memhost.NewDataView("view")
			anchor := memhost.NewLabel("editable")
			button := memhost.NewButton("save", display, "lockable")
			view.Append(anchor, button)

			p := newPropagator(schedule.NewManualClock(), true)

			p.Apply(anchor, false)
			assert.Equal(t, "none", button.ComputedDisplay())
			assert.False(t, button.Disabled())

			p.Apply(anchor, true)
			assert.Equal(t, display, button.ComputedDisplay())
		})
	}

	t.Run("remembers display across repeated hides", func(t *testing.T) {
		view := memhost.NewDataView("view")
		anchor := memhost.NewLabel("editable")
		button := memhost.NewButton("save", "inline", "lockable")
		view.Append(anchor, button)

		p := newPropagator(schedule.NewManualClock(), true)

		p.Apply(anchor, false)
		p.Apply(anchor, false)
		p.Apply(anchor, true)

		assert.Equal(t, "inline", button.ComputedDisplay())
	})

	t.Run("forgets buttons that left the container", func(t *testing.T) {
		view := memhost.NewDataView("view")
		anchor := memhost.NewLabel("editable")
		view.Append(anchor)

		p := newPropagator(schedule.NewManualClock(), true)

		for i := 0; i < 5; i++ {
			button := memhost.NewButton(fmt.Sprintf("save-%d", i), "inline-flex", "lockable")
			view.Append(button)
			p.Apply(anchor, false)
			button.Detach()
		}
		p.Apply(anchor, true)

		assert.Empty(t, p.displays)
	})

	t.Run("keeps the display of buttons still present", func(t *testing.T) {
		view := memhost.NewDataView("view")
		anchor := memhost.NewLabel("editable")
		keep := memhost.NewButton("keep", "inline-flex", "lockable")
		gone := memhost.NewButton("gone", "table-cell", "lockable")
		view.Append(anchor, keep, gone)

		p := newPropagator(schedule.NewManualClock(), true)

		p.Apply(anchor, false)
		gone.Detach()
		p.Apply(anchor, false)
		p.Apply(anchor, true)

		assert.Equal(t, map[string]string{"keep": "inline-flex"}, p.displays)
		assert.Equal(t, "inline-flex", keep.ComputedDisplay())
	})
}

func TestEditor(t *testing.T) {
	t.Run("applies after the delay once attached", func(t *testing.T) {
		clock := schedule.NewManualClock()
		form := memhost.NewForm("IsLocked", "lockable")
		p := newPropagator(clock, false)

		p.Apply(form.Anchor, false)
		editor := form.Body.AttachEditor()

		clock.Advance(DefaultEditorDelay - time.Millisecond)
		assert.Equal(t, 0, editor.Calls())

		clock.Advance(time.Millisecond)
		assert.Equal(t, 1, editor.Calls())
		assert.True(t, editor.ReadOnly())
	})

	t.Run("editor that never attached is skipped", func(t *testing.T) {
		clock := schedule.NewManualClock()
		form := memhost.NewForm("IsLocked", "lockable")
		p := newPropagator(clock, false)

		p.Apply(form.Anchor, false)

		assert.NotPanics(t, func() { clock.Advance(time.Second) })
		assert.Equal(t, 0, p.Pending())
	})

	t.Run("cancel prevents the update", func(t *testing.T) {
		clock := schedule.NewManualClock()
		form := memhost.NewForm("IsLocked", "lockable")
		editor := form.Body.AttachEditor()
		p := newPropagator(clock, false)

		p.Apply(form.Anchor, false)
		assert.Equal(t, 2, p.Cancel())

		clock.Advance(time.Minute)
		assert.Equal(t, 0, editor.Calls())
		assert.False(t, form.Shipping.Marker(SliderMarker))
	})
}

func TestSliders(t *testing.T) {
	t.Run("marks every slider in one delayed pass", func(t *testing.T) {
		clock := schedule.NewManualClock()
		form := memhost.NewForm("IsLocked", "lockable")
		p := newPropagator(clock, false)

		p.Apply(form.Anchor, false)
		assert.False(t, form.Shipping.Marker(SliderMarker))
		assert.Equal(t, 2, p.Pending(), "one editor task and one slider batch")

		clock.Advance(DefaultSliderDelay)

		assert.True(t, form.Shipping.Marker(SliderMarker))
		assert.True(t, form.Billing.Marker(SliderMarker))
	})

	t.Run("removes the marker when editable", func(t *testing.T) {
		clock := schedule.NewManualClock()
		form := memhost.NewForm("IsLocked", "lockable")
		p := newPropagator(clock, false)

		p.Apply(form.Anchor, false)
		clock.Advance(DefaultSliderDelay)
		p.Apply(form.Anchor, true)
		clock.Advance(DefaultSliderDelay)

		assert.False(t, form.Shipping.Marker(SliderMarker))
		assert.False(t, form.Billing.Marker(SliderMarker))
	})

	t.Run("latest pass wins under rapid toggling", func(t *testing.T) {
		clock := schedule.NewManualClock()
		form := memhost.NewForm("IsLocked", "lockable")
		editor := form.Body.AttachEditor()
		p := newPropagator(clock, false)

		p.Apply(form.Anchor, false)
		clock.Advance(200 * time.Millisecond)
		p.Apply(form.Anchor, true)
		require.Equal(t, 2, p.Pending())

		clock.Advance(2 * time.Second)

		assert.False(t, form.Shipping.Marker(SliderMarker))
		assert.False(t, form.Billing.Marker(SliderMarker))
		assert.Equal(t, 1, editor.Calls())
		assert.False(t, editor.ReadOnly())
	})

	t.Run("pass without a container still cancels pending tasks", func(t *testing.T) {
		clock := schedule.NewManualClock()
		form := memhost.NewForm("IsLocked", "lockable")
		editor := form.Body.AttachEditor()
		p := newPropagator(clock, false)

		p.Apply(form.Anchor, false)
		form.Anchor.Detach()

		assert.Equal(t, 0, p.Apply(form.Anchor, true))
		assert.Equal(t, 0, p.Pending())

		clock.Advance(2 * time.Second)

		assert.Equal(t, 0, editor.Calls())
		assert.False(t, form.Shipping.Marker(SliderMarker))
		assert.False(t, form.Billing.Marker(SliderMarker))
	})

	t.Run("custom delay", func(t *testing.T) {
		clock := schedule.NewManualClock()
		form := memhost.NewForm("IsLocked", "lockable")
		p := New(Options{SliderDelay: 50 * time.Millisecond, Clock: clock})

		p.Apply(form.Anchor, false)
		clock.Advance(50 * time.Millisecond)

		assert.True(t, form.Billing.Marker(SliderMarker))
	})
}
