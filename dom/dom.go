//go:build js && wasm

// Package dom adapts browser elements to the editable host interfaces.
//
// Markup conventions:
//
//	data-view            marks a container
//	data-binding="Attr"  marks a field bound to Attr
//	data-editor          marks a rich text host; the editor instance is read
//	                     from the element's "editor" property once attached
//	class="slider"       marks a slider-style toggle
//
// Textareas are content bearers; button elements and elements with
// type="button" are buttons.
package dom

import (
	"strconv"
	"strings"
	"sync/atomic"
	"syscall/js"

	"github.com/AnatoleLucet/editable/internal/control"
)

const (
	attrView    = "data-view"
	attrBinding = "data-binding"
	attrEditor  = "data-editor"
	attrID      = "data-editable-id"
	classSlider = "slider"
)

var (
	_ control.Field         = Element{}
	_ control.ContentBearer = Element{}
	_ control.Button        = Element{}
	_ control.EditorHost    = Element{}
	_ control.Slider        = Element{}
	_ control.Container     = Element{}
	_ control.Anchor        = Element{}
)

var nextID atomic.Uint64

// Element wraps one DOM element.
type Element struct {
	v js.Value
}

// Wrap adapts v.
func Wrap(v js.Value) Element { return Element{v: v} }

// ByID finds the element with id in the current document.
func ByID(id string) (Element, bool) {
	v := js.Global().Get("document").Call("getElementById", id)
	if !v.Truthy() {
		return Element{}, false
	}
	return Element{v: v}, true
}

// Value returns the wrapped element.
func (e Element) Value() js.Value { return e.v }

// ID returns the element id, assigning a stable one when the markup has none.
func (e Element) ID() string {
	if id := e.v.Get("id").String(); id != "" {
		return id
	}
	if id := e.attr(attrID); id != "" {
		return id
	}
	id := "editable-" + strconv.FormatUint(nextID.Add(1), 10)
	e.v.Call("setAttribute", attrID, id)
	return id
}

func (e Element) Binding() (string, bool) {
	attr := strings.TrimSpace(e.attr(attrBinding))
	return attr, attr != ""
}

func (e Element) SetDisabled(disabled bool) { e.v.Set("disabled", disabled) }

func (e Element) HasContentNode() bool { return e.tag() == "TEXTAREA" }

func (e Element) SetReadOnly(readOnly bool) { e.v.Set("readOnly", readOnly) }

func (e Element) IsButton() bool {
	return e.tag() == "BUTTON" || e.v.Get("type").String() == "button"
}

func (e Element) HasClass(class string) bool {
	return e.v.Get("classList").Call("contains", class).Bool()
}

func (e Element) ComputedDisplay() string {
	style := js.Global().Call("getComputedStyle", e.v)
	if !style.Truthy() {
		return ""
	}
	return style.Get("display").String()
}

func (e Element) SetDisplay(display string) {
	e.v.Get("style").Set("display", display)
}

func (e Element) HasEditor() bool { return e.v.Call("hasAttribute", attrEditor).Bool() }

// EditorInstance reads the editor the rich text library attached to the
// element. It reports false until the library has finished loading.
func (e Element) EditorInstance() (control.Editor, bool) {
	ed := e.v.Get("editor")
	if !ed.Truthy() || ed.Get("setReadOnly").Type() != js.TypeFunction {
		return nil, false
	}
	return editor{v: ed}, true
}

func (e Element) IsSlider() bool { return e.HasClass(classSlider) }

func (e Element) SetMarker(name string, present bool) {
	if present {
		e.v.Call("setAttribute", name, "")
		return
	}
	e.v.Call("removeAttribute", name)
}

// Children lists descendant elements in document order.
func (e Element) Children(recursive bool) []control.Control {
	var list js.Value
	if recursive {
		list = e.v.Call("querySelectorAll", "*")
	} else {
		list = e.v.Get("children")
	}

	n := list.Get("length").Int()
	out := make([]control.Control, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Element{v: list.Call("item", i)})
	}
	return out
}

// EnclosingContainer finds the nearest ancestor marked with data-view.
func (e Element) EnclosingContainer() (control.Container, bool) {
	parent := e.v.Get("parentElement")
	if !parent.Truthy() {
		return nil, false
	}
	view := parent.Call("closest", "["+attrView+"]")
	if !view.Truthy() {
		return nil, false
	}
	return Element{v: view}, true
}

func (e Element) tag() string { return e.v.Get("tagName").String() }

func (e Element) attr(name string) string {
	v := e.v.Call("getAttribute", name)
	if v.IsNull() {
		return ""
	}
	return v.String()
}

type editor struct {
	v js.Value
}

func (ed editor) SetReadOnly(readOnly bool) { ed.v.Call("setReadOnly", readOnly) }
