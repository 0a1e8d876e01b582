// Package propagate applies an editable/read-only state to every descendant
// control of the widget's container.
package propagate

import (
	"strings"
	"sync"
	"time"

	"github.com/AnatoleLucet/editable/internal/control"
	"github.com/AnatoleLucet/editable/internal/logging"
	"github.com/AnatoleLucet/editable/internal/schedule"
)

const (
	DefaultEditorDelay = 500 * time.Millisecond
	DefaultSliderDelay = 1000 * time.Millisecond

	// SliderMarker is the attribute set on sliders that are not editable.
	SliderMarker = "disabled"

	displayNone    = "none"
	displayDefault = "block"
)

// Options configure a Propagator.
type Options struct {
	// ExcludeBinding is the condition attribute; fields bound to it stay editable.
	ExcludeBinding string
	// ButtonClass selects the buttons to act on. Empty matches none.
	ButtonClass string
	// HideButtons hides matched buttons instead of disabling them.
	HideButtons bool

	// EditorDelay is how long to wait for rich text editors to attach.
	// The delay is a workaround: an editor that attaches later still misses the update.
	EditorDelay time.Duration
	// SliderDelay is how long to wait before marking the slider batch.
	SliderDelay time.Duration

	Clock  schedule.Clock
	Logger logging.Logger
}

// Propagator walks a container and applies editability per control capability.
type Propagator struct {
	mu sync.Mutex

	opts  Options
	log   logging.Logger
	tasks *schedule.Tasks

	// natural display of each hideable button, keyed by control id
	displays map[string]string
}

// New creates a Propagator.
func New(opts Options) *Propagator {
	if opts.EditorDelay <= 0 {
		opts.EditorDelay = DefaultEditorDelay
	}
	if opts.SliderDelay <= 0 {
		opts.SliderDelay = DefaultSliderDelay
	}
	opts.ButtonClass = strings.TrimSpace(opts.ButtonClass)

	log := opts.Logger
	if log == nil {
		log = logging.NoOp()
	}

	return &Propagator{
		opts:     opts,
		log:      log,
		tasks:    schedule.NewTasks(opts.Clock),
		displays: make(map[string]string),
	}
}

// Apply runs one propagation pass and returns how many descendants it
// mutated or scheduled. Tasks left pending by a previous pass are cancelled
// first, so the latest pass always wins.
func (p *Propagator) Apply(anchor control.Anchor, editable bool) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	if dropped := p.tasks.Cancel(); dropped > 0 {
		p.log.Debug("editable.apply.cancelled_pending", "tasks", dropped)
	}

	if anchor == nil {
		return 0
	}
	container, ok := anchor.EnclosingContainer()
	if !ok || container == nil {
		p.log.Debug("editable.apply.container_missing")
		return 0
	}

	var (
		matched int
		editors []control.EditorHost
		sliders []control.Slider
		buttons = make(map[string]struct{})
	)

	for _, d := range control.ClassifyAll(container.Children(true)) {
		hit := false

		if d.Caps.Has(control.CapField) && d.Binding != p.opts.ExcludeBinding {
			d.Control.(control.Field).SetDisabled(!editable)
			hit = true
		}
		if d.Caps.Has(control.CapContent) {
			d.Control.(control.ContentBearer).SetReadOnly(!editable)
			hit = true
		}
		if d.Caps.Has(control.CapButton) {
			if b := d.Control.(control.Button); p.matchesButton(b) {
				p.applyButton(b, editable)
				buttons[b.ID()] = struct{}{}
				hit = true
			}
		}
		if d.Caps.Has(control.CapEditor) {
			editors = append(editors, d.Control.(control.EditorHost))
			hit = true
		}
		if d.Caps.Has(control.CapSlider) {
			sliders = append(sliders, d.Control.(control.Slider))
			hit = true
		}

		if hit {
			matched++
		}
	}

	// forget buttons that left the container
	for id := range p.displays {
		if _, ok := buttons[id]; !ok {
			delete(p.displays, id)
		}
	}

	for _, e := range editors {
		p.scheduleEditor(e, editable)
	}
	if len(sliders) > 0 {
		p.scheduleSliders(sliders, editable)
	}

	p.log.Debug("editable.apply.done", "editable", editable, "matched", matched)
	return matched
}

// Cancel drops every pending editor and slider task.
func (p *Propagator) Cancel() int {
	return p.tasks.Cancel()
}

// Pending reports the number of scheduled tasks that have not run yet.
func (p *Propagator) Pending() int {
	return p.tasks.Pending()
}

func (p *Propagator) matchesButton(b control.Button) bool {
	return p.opts.ButtonClass != "" && b.HasClass(p.opts.ButtonClass)
}

func (p *Propagator) applyButton(b control.Button, editable bool) {
	if !p.opts.HideButtons {
		b.SetReadOnly(!editable)
		b.SetDisabled(!editable)
		return
	}

	natural, seen := p.displays[b.ID()]
	if !seen {
		natural = b.ComputedDisplay()
		if natural == "" || natural == displayNone {
			natural = displayDefault
		}
		p.displays[b.ID()] = natural
	}

	if editable {
		b.SetDisplay(natural)
	} else {
		b.SetDisplay(displayNone)
	}
}

func (p *Propagator) scheduleEditor(host control.EditorHost, editable bool) {
	p.tasks.After(p.opts.EditorDelay, func() {
		editor, ok := host.EditorInstance()
		if !ok || editor == nil {
			p.log.Warn("editable.apply.editor_missing", "control", host.ID())
			return
		}
		editor.SetReadOnly(!editable)
	})
}

func (p *Propagator) scheduleSliders(sliders []control.Slider, editable bool) {
	p.tasks.After(p.opts.SliderDelay, func() {
		for _, s := range sliders {
			s.SetMarker(SliderMarker, !editable)
		}
	})
}
