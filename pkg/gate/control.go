package gate

import (
	"golang.org/x/net/html"

	"github.com/goliatone/go-formguard/pkg/dom"
)

// submitControlExpr selects submit buttons, including buttons with no type.
const submitControlExpr = `.//*[(self::button and (not(@type) or @type='submit')) or (self::input and @type='submit')]`

// ControlState is the submit control as it looked before an attempt touched it.
type ControlState struct {
	Present  bool
	Label    string
	Disabled bool
	Busy     bool
	AriaBusy string

	hadAriaBusy bool
	hadValue    bool
	isInput     bool
	children    []*html.Node
}

// SubmitControl returns the first submit control in form, or nil.
func SubmitControl(form *html.Node) *html.Node {
	return dom.FindOneIn(form, submitControlExpr)
}

func controlLabel(control *html.Node) string {
	if dom.TagName(control) == "input" {
		return dom.Attr(control, "value")
	}
	return dom.TextContent(control)
}

// capture records control and switches it to the submitting presentation.
func capture(control *html.Node, label, busyClass string) ControlState {
	if control == nil {
		return ControlState{}
	}
	ariaBusy, hadAriaBusy := dom.LookupAttr(control, "aria-busy")
	state := ControlState{
		Present:     true,
		Label:       controlLabel(control),
		Disabled:    dom.Disabled(control),
		Busy:        dom.HasClass(control, busyClass),
		AriaBusy:    ariaBusy,
		hadAriaBusy: hadAriaBusy,
		isInput:     dom.TagName(control) == "input",
	}

	dom.SetDisabled(control, true)
	dom.AddClass(control, busyClass)
	dom.SetAttr(control, "aria-busy", "true")
	if state.isInput {
		_, state.hadValue = dom.LookupAttr(control, "value")
		dom.SetAttr(control, "value", label)
		return state
	}
	for child := control.FirstChild; child != nil; {
		next := child.NextSibling
		control.RemoveChild(child)
		state.children = append(state.children, child)
		child = next
	}
	control.AppendChild(dom.NewText(label))
	return state
}

// restore puts control back exactly as captured.
func restore(control *html.Node, state ControlState, busyClass string) {
	if control == nil || !state.Present {
		return
	}
	dom.SetDisabled(control, state.Disabled)
	if !state.Busy {
		dom.RemoveClass(control, busyClass)
	}
	if state.hadAriaBusy {
		dom.SetAttr(control, "aria-busy", state.AriaBusy)
	} else {
		dom.RemoveAttr(control, "aria-busy")
	}
	if state.isInput {
		if state.hadValue {
			dom.SetAttr(control, "value", state.Label)
		} else {
			dom.RemoveAttr(control, "value")
		}
		return
	}
	dom.SetTextContent(control, "")
	for _, child := range state.children {
		control.AppendChild(child)
	}
}
