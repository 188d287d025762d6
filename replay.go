package formguard

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"slices"

	"golang.org/x/net/html"

	"github.com/goliatone/go-formguard/pkg/controller"
	"github.com/goliatone/go-formguard/pkg/dom"
	"github.com/goliatone/go-formguard/pkg/field"
	"github.com/goliatone/go-formguard/pkg/gate"
)

// ErrNoPublicForm is returned when a page has no form the gate observes.
var ErrNoPublicForm = errors.New("formguard: page has no public form")

// Replay is the outcome of running a posted submission through a page.
type Replay struct {
	Document *dom.Document
	Attempt  *Attempt
	// Proceed is true when the native submission would have been sent.
	Proceed bool
}

// ReplayPage parses page, initialises a controller with options, fills the
// first public form with values and dispatches submit. The controller is torn
// down before returning; the document keeps the resulting annotations.
func ReplayPage(page io.Reader, values url.Values, options ...controller.Option) (*Replay, error) {
	doc, err := dom.Parse(page)
	if err != nil {
		return nil, fmt.Errorf("formguard: replay: %w", err)
	}
	ctrl := controller.New(options...)
	if err := ctrl.Init(doc); err != nil {
		return nil, fmt.Errorf("formguard: replay: %w", err)
	}
	defer ctrl.Teardown()
	return Submit(doc, ctrl.Gate(), values)
}

// Submit fills the first form carrying the gate's class and submits it.
func Submit(doc *dom.Document, g *gate.Gate, values url.Values) (*Replay, error) {
	form := PublicForm(doc, g.FormClass())
	if form == nil {
		return nil, ErrNoPublicForm
	}
	Fill(doc, form, values)

	var attempt *Attempt
	detach := g.OnAttempt(func(a *gate.Attempt) {
		if a.Form == form {
			attempt = a
		}
	})
	defer detach()

	proceed := doc.Submit(form)
	if attempt == nil {
		return nil, fmt.Errorf("formguard: submit was not observed by the gate")
	}
	return &Replay{Document: doc, Attempt: attempt, Proceed: proceed}, nil
}

// PublicForm returns the first form carrying class, or nil.
func PublicForm(doc *dom.Document, class string) *html.Node {
	return doc.FindOne("//form[" + dom.ClassPredicate(class) + "]")
}

// Controls lists the named controls of form in document order.
func Controls(form *html.Node) []*html.Node {
	return dom.FindIn(form, `.//*[@name and (self::input or self::textarea or self::select)]`)
}

// Fill copies values into the named controls of form, firing the same input
// and change events a person typing would. Controls without a submitted key
// keep their markup value; checkboxes and radios are checked when their value
// was submitted.
func Fill(doc *dom.Document, form *html.Node, values url.Values) {
	for _, control := range Controls(form) {
		name := dom.Attr(control, "name")
		submitted, present := values[name]
		switch dom.InputType(control) {
		case "checkbox", "radio":
			want := present && slices.Contains(submitted, dom.Value(control))
			if dom.Checked(control) != want {
				doc.Check(control, want)
			}
		case "submit", "button", "reset", "image", "file":
		default:
			if !present {
				continue
			}
			value := ""
			if len(submitted) > 0 {
				value = submitted[0]
			}
			doc.Fill(control, value)
		}
	}
}

// Fields snapshots every named control of form, one entry per checkbox group
// or radio set.
func Fields(form *html.Node) []field.Field {
	seen := map[string]bool{}
	var out []field.Field
	for _, control := range Controls(form) {
		switch dom.InputType(control) {
		case "submit", "button", "reset", "image", "hidden":
			continue
		}
		if field.IsGroupMember(control) {
			name := dom.Attr(control, "name")
			if seen[name] {
				continue
			}
			seen[name] = true
			control = field.GroupLeader(control)
		}
		out = append(out, field.FromNode(control))
	}
	return out
}
