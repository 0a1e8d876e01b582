package memhost

// Form is a ready-made page: a data view holding the widget's mount point
// next to a representative set of controls.
type Form struct {
	Root   *Element
	View   *Element
	Anchor *Element

	Name     *Element
	Notes    *Element
	Locked   *Element
	Save     *Element
	Cancel   *Element
	Body     *Element
	Shipping *Element
	Billing  *Element
}

// NewForm builds a form whose condition field is bound to conditionAttr and
// whose Save button carries buttonClass.
func NewForm(conditionAttr, buttonClass string) *Form {
	f := &Form{
		Root:     NewPanel("page"),
		View:     NewDataView("dataview"),
		Anchor:   NewLabel("editable"),
		Name:     NewInput("name", "Name"),
		Notes:    NewTextArea("notes", "Notes"),
		Locked:   NewInput("locked", conditionAttr),
		Save:     NewButton("save", "inline-flex", "btn", buttonClass),
		Cancel:   NewButton("cancel", "inline-block", "btn"),
		Body:     NewRichText("body"),
		Shipping: NewSlider("shipping"),
		Billing:  NewSlider("billing"),
	}

	f.Root.Append(
		f.View.Append(
			f.Anchor,
			NewPanel("fields").Append(f.Name, f.Notes, f.Locked),
			f.Body,
			NewPanel("toggles").Append(f.Shipping, f.Billing),
			NewPanel("actions").Append(f.Save, f.Cancel),
		),
	)
	return f
}
