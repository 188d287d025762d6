package dom

import "golang.org/x/net/html"

// Type simulates a user typing text into a control: the value grows one rune
// at a time and an input event fires after each rune.
func (d *Document) Type(n *html.Node, text string) {
	current := []rune(Value(n))
	for _, r := range text {
		current = append(current, r)
		SetValue(n, string(current))
		d.Dispatch(NewEvent(EventInput, n))
	}
}

// Fill replaces the value of a control and fires a single input event.
func (d *Document) Fill(n *html.Node, value string) {
	SetValue(n, value)
	d.Dispatch(NewEvent(EventInput, n))
}

// Check sets the checked state of a checkbox or radio and fires change.
// Checking a named radio unchecks the rest of its set.
func (d *Document) Check(n *html.Node, checked bool) {
	if checked && InputType(n) == "radio" {
		uncheckRadioSet(n)
	}
	SetChecked(n, checked)
	d.Dispatch(NewEvent(EventChange, n))
}

func uncheckRadioSet(n *html.Node) {
	name := Attr(n, "name")
	if name == "" {
		return
	}
	scope := ClosestTag(n, "form")
	if scope == nil {
		for scope = n; scope.Parent != nil; scope = scope.Parent {
		}
	}
	for _, other := range FindIn(scope, ".//input[@name]") {
		if other != n && Attr(other, "name") == name && InputType(other) == "radio" {
			SetChecked(other, false)
		}
	}
}

// Blur fires a blur event on n.
func (d *Document) Blur(n *html.Node) {
	d.Dispatch(NewEvent(EventBlur, n))
}

// Click fires a click event and reports whether the default action survived.
func (d *Document) Click(n *html.Node) bool {
	return d.Dispatch(NewEvent(EventClick, n))
}

// Submit fires a submit event on form and reports whether the native
// submission would proceed.
func (d *Document) Submit(form *html.Node) bool {
	return d.Dispatch(NewEvent(EventSubmit, form))
}
