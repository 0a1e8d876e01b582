package memhost

import (
	"slices"
	"sync"

	"github.com/AnatoleLucet/editable/internal/control"
)

// Kind is the element type of a page node.
type Kind int

const (
	KindPanel Kind = iota
	KindDataView
	KindLabel
	KindInput
	KindTextArea
	KindButton
	KindRichText
	KindSlider
)

var kindNames = map[Kind]string{
	KindPanel:    "panel",
	KindDataView: "dataview",
	KindLabel:    "label",
	KindInput:    "input",
	KindTextArea: "textarea",
	KindButton:   "button",
	KindRichText: "richtext",
	KindSlider:   "slider",
}

func (k Kind) String() string { return kindNames[k] }

// Element is one node of the in-memory page. It implements every control
// capability interface and answers the probes according to its Kind.
type Element struct {
	mu sync.Mutex

	id      string
	kind    Kind
	binding string
	classes []string

	natural  string
	display  string
	disabled bool
	readOnly bool
	markers  map[string]bool
	editor   *RichEditor

	parent   *Element
	children []*Element
}

var (
	_ control.Field         = (*Element)(nil)
	_ control.ContentBearer = (*Element)(nil)
	_ control.Button        = (*Element)(nil)
	_ control.EditorHost    = (*Element)(nil)
	_ control.Slider        = (*Element)(nil)
	_ control.Container     = (*Element)(nil)
	_ control.Anchor        = (*Element)(nil)
)

func newElement(id string, kind Kind) *Element {
	return &Element{id: id, kind: kind, natural: "block", markers: make(map[string]bool)}
}

// NewDataView creates a container that owns its descendant controls.
func NewDataView(id string) *Element { return newElement(id, KindDataView) }

// NewPanel creates a layout node that is not a container.
func NewPanel(id string) *Element { return newElement(id, KindPanel) }

// NewLabel creates an inert node, e.g. the widget's own mount point.
func NewLabel(id string) *Element { return newElement(id, KindLabel) }

// NewInput creates a field bound to attribute.
func NewInput(id, attribute string) *Element {
	e := newElement(id, KindInput)
	e.binding = attribute
	return e
}

// NewTextArea creates a bound field that also wraps a content node.
func NewTextArea(id, attribute string) *Element {
	e := newElement(id, KindTextArea)
	e.binding = attribute
	return e
}

// NewButton creates a button whose natural display is display.
func NewButton(id, display string, classes ...string) *Element {
	e := newElement(id, KindButton)
	e.natural = display
	e.classes = classes
	return e
}

// NewRichText creates a rich text host. Its editor attaches on AttachEditor.
func NewRichText(id string) *Element { return newElement(id, KindRichText) }

// NewSlider creates a slider-style toggle.
func NewSlider(id string) *Element { return newElement(id, KindSlider) }

// Append adds children in order and returns e.
func (e *Element) Append(children ...*Element) *Element {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, c := range children {
		c.parent = e
		e.children = append(e.children, c)
	}
	return e
}

// Detach removes e from its parent, as when a page re-renders a subtree.
func (e *Element) Detach() {
	parent := e.parentNode()
	if parent == nil {
		return
	}

	parent.mu.Lock()
	if i := slices.Index(parent.children, e); i != -1 {
		parent.children = slices.Delete(parent.children, i, i+1)
	}
	parent.mu.Unlock()

	e.mu.Lock()
	e.parent = nil
	e.mu.Unlock()
}

func (e *Element) ID() string { return e.id }
func (e *Element) Kind() Kind { return e.kind }

// Find returns the descendant (or e itself) with id.
func (e *Element) Find(id string) (*Element, bool) {
	if e.id == id {
		return e, true
	}
	for _, c := range e.childList() {
		if found, ok := c.Find(id); ok {
			return found, true
		}
	}
	return nil, false
}

// Children lists descendants in document order.
func (e *Element) Children(recursive bool) []control.Control {
	var out []control.Control
	for _, c := range e.childList() {
		out = append(out, c)
		if recursive {
			out = append(out, c.Children(true)...)
		}
	}
	return out
}

// EnclosingContainer walks up to the nearest data view.
func (e *Element) EnclosingContainer() (control.Container, bool) {
	for p := e.parentNode(); p != nil; p = p.parentNode() {
		if p.kind == KindDataView {
			return p, true
		}
	}
	return nil, false
}

func (e *Element) Binding() (string, bool) {
	switch e.kind {
	case KindInput, KindTextArea:
		return e.binding, e.binding != ""
	default:
		return "", false
	}
}

func (e *Element) HasContentNode() bool { return e.kind == KindTextArea }
func (e *Element) IsButton() bool       { return e.kind == KindButton }
func (e *Element) IsSlider() bool       { return e.kind == KindSlider }
func (e *Element) HasEditor() bool      { return e.kind == KindRichText }

func (e *Element) HasClass(class string) bool {
	return slices.Contains(e.classes, class)
}

func (e *Element) SetDisabled(disabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.disabled = disabled
}

func (e *Element) SetReadOnly(readOnly bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.readOnly = readOnly
}

// ComputedDisplay is the inline display if set, else the natural one.
func (e *Element) ComputedDisplay() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.display != "" {
		return e.display
	}
	return e.natural
}

func (e *Element) SetDisplay(display string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.display = display
}

func (e *Element) SetMarker(name string, present bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if present {
		e.markers[name] = true
	} else {
		delete(e.markers, name)
	}
}

// AttachEditor simulates the rich text editor finishing its own mount.
func (e *Element) AttachEditor() *RichEditor {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.editor == nil {
		e.editor = &RichEditor{}
	}
	return e.editor
}

func (e *Element) EditorInstance() (control.Editor, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.editor == nil {
		return nil, false
	}
	return e.editor, true
}

// Disabled reports the disabled flag.
func (e *Element) Disabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.disabled
}

// ReadOnly reports the read-only flag.
func (e *Element) ReadOnly() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.readOnly
}

// Marker reports whether the named marker attribute is present.
func (e *Element) Marker(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.markers[name]
}

// State is a snapshot of an element's visible state.
type State struct {
	Disabled       bool     `yaml:"disabled"`
	ReadOnly       bool     `yaml:"read_only"`
	Display        string   `yaml:"display"`
	Markers        []string `yaml:"markers,omitempty"`
	EditorReadOnly bool     `yaml:"editor_read_only,omitempty"`
}

// Snapshot captures e and every descendant, keyed by id.
func (e *Element) Snapshot() map[string]State {
	out := map[string]State{}
	e.snapshot(out)
	return out
}

func (e *Element) snapshot(out map[string]State) {
	e.mu.Lock()
	st := State{Disabled: e.disabled, ReadOnly: e.readOnly, Display: e.display}
	if st.Display == "" {
		st.Display = e.natural
	}
	for name := range e.markers {
		st.Markers = append(st.Markers, name)
	}
	slices.Sort(st.Markers)
	if e.editor != nil {
		st.EditorReadOnly = e.editor.ReadOnly()
	}
	e.mu.Unlock()

	out[e.id] = st
	for _, c := range e.childList() {
		c.snapshot(out)
	}
}

func (e *Element) childList() []*Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.children)
}

func (e *Element) parentNode() *Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.parent
}

// RichEditor is the editor instance attached to a rich text element.
type RichEditor struct {
	mu sync.Mutex

	readOnly bool
	calls    int
}

func (r *RichEditor) SetReadOnly(readOnly bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.readOnly = readOnly
	r.calls++
}

// ReadOnly reports the editor's read-only flag.
func (r *RichEditor) ReadOnly() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.readOnly
}

// Calls reports how many times SetReadOnly was invoked.
func (r *RichEditor) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}
