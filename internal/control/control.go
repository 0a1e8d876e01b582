// Package control classifies descendant controls by the capabilities they
// expose instead of by concrete type.
package control

import "strings"

// Control is any descendant of the container.
type Control interface {
	ID() string
}

// Field is a control bound to an attribute or association.
type Field interface {
	Control
	Binding() (attribute string, ok bool)
	SetDisabled(disabled bool)
}

// ContentBearer wraps a content node, e.g. a rich text area container.
type ContentBearer interface {
	Control
	HasContentNode() bool
	SetReadOnly(readOnly bool)
}

// Button is a clickable control that can be disabled or hidden.
type Button interface {
	Control
	IsButton() bool
	HasClass(class string) bool
	SetDisabled(disabled bool)
	SetReadOnly(readOnly bool)
	// ComputedDisplay is the display mode currently in effect.
	ComputedDisplay() string
	SetDisplay(display string)
}

// Editor is a rich text editor instance.
type Editor interface {
	SetReadOnly(readOnly bool)
}

// EditorHost carries a rich text editor that attaches to the page after the
// widget mounts. EditorInstance may report false until it has attached.
type EditorHost interface {
	Control
	HasEditor() bool
	EditorInstance() (Editor, bool)
}

// Slider is a slider-style toggle, disabled through a marker attribute.
type Slider interface {
	Control
	IsSlider() bool
	SetMarker(name string, present bool)
}

// Container owns a set of descendant controls.
type Container interface {
	// Children lists descendants in document order.
	Children(recursive bool) []Control
}

// Anchor is the widget's own place in the page.
type Anchor interface {
	// EnclosingContainer finds the nearest ancestor container.
	EnclosingContainer() (Container, bool)
}

// Capability is a set of capabilities detected on a control.
type Capability uint8

const (
	CapField Capability = 1 << iota
	CapContent
	CapButton
	CapEditor
	CapSlider
)

var capabilityNames = []struct {
	cap  Capability
	name string
}{
	{CapField, "field"},
	{CapContent, "content"},
	{CapButton, "button"},
	{CapEditor, "editor"},
	{CapSlider, "slider"},
}

// Has reports whether every capability in o is present in c.
func (c Capability) Has(o Capability) bool { return c&o == o && o != 0 }

func (c Capability) String() string {
	names := []string{}
	for _, n := range capabilityNames {
		if c.Has(n.cap) {
			names = append(names, n.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// Descriptor is the classification of one control for a propagation pass.
type Descriptor struct {
	Control Control
	Caps    Capability
	// Binding is the attribute a field control is bound to.
	Binding string
}

// Classify inspects c once and records what it can do.
func Classify(c Control) Descriptor {
	d := Descriptor{Control: c}

	if f, ok := c.(Field); ok {
		if attr, bound := f.Binding(); bound {
			d.Caps |= CapField
			d.Binding = attr
		}
	}
	if cb, ok := c.(ContentBearer); ok && cb.HasContentNode() {
		d.Caps |= CapContent
	}
	if b, ok := c.(Button); ok && b.IsButton() {
		d.Caps |= CapButton
	}
	if e, ok := c.(EditorHost); ok && e.HasEditor() {
		d.Caps |= CapEditor
	}
	if s, ok := c.(Slider); ok && s.IsSlider() {
		d.Caps |= CapSlider
	}

	return d
}

// ClassifyAll classifies every control in order.
func ClassifyAll(controls []Control) []Descriptor {
	out := make([]Descriptor, 0, len(controls))
	for _, c := range controls {
		if c == nil {
			continue
		}
		out = append(out, Classify(c))
	}
	return out
}
