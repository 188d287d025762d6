// Package presenter keeps a single inline error annotation next to each form
// control. Annotations are located by live lookup directly after the control,
// never cached, so a re-rendered form starts clean.
package presenter

import (
	"github.com/google/uuid"
	"golang.org/x/net/html"

	"github.com/goliatone/go-formguard/pkg/dom"
	"github.com/goliatone/go-formguard/pkg/field"
)

const (
	// ErrorClass marks an invalid control.
	ErrorClass = "field-error"
	// MessageClass marks the annotation node holding the message.
	MessageClass = "error-message"
	// KeyAttribute links an annotation to its control.
	KeyAttribute = "data-error-for"
	// GeneratedKeyAttribute stores a key minted for controls without id or name.
	GeneratedKeyAttribute = "data-field-key"
)

// Option customises a Presenter.
type Option func(*Presenter)

// WithErrorClass overrides the class added to invalid controls.
func WithErrorClass(class string) Option {
	return func(p *Presenter) {
		if class != "" {
			p.errorClass = class
		}
	}
}

// WithMessageClass overrides the annotation node class.
func WithMessageClass(class string) Option {
	return func(p *Presenter) {
		if class != "" {
			p.messageClass = class
		}
	}
}

// WithKeyGenerator replaces the generator used for anonymous controls.
func WithKeyGenerator(next func() string) Option {
	return func(p *Presenter) {
		if next != nil {
			p.newKey = next
		}
	}
}

// Presenter shows and clears annotations. It holds configuration only.
type Presenter struct {
	errorClass   string
	messageClass string
	newKey       func() string
}

// New returns a presenter using the default class names.
func New(opts ...Option) *Presenter {
	p := &Presenter{
		errorClass:   ErrorClass,
		messageClass: MessageClass,
		newKey:       uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Default is the presenter used by the package-level helpers.
var Default = New()

// Key returns the identity used to pair control and annotation: the id, then
// the name, then a generated key persisted on the control.
func (p *Presenter) Key(control *html.Node) string {
	if id := dom.Attr(control, "id"); id != "" {
		return id
	}
	if name := dom.Attr(control, "name"); name != "" {
		return name
	}
	if key := dom.Attr(control, GeneratedKeyAttribute); key != "" {
		return key
	}
	key := p.newKey()
	dom.SetAttr(control, GeneratedKeyAttribute, key)
	return key
}

// ShowError replaces any annotation for control with one carrying message,
// placed directly after the control.
func (p *Presenter) ShowError(control *html.Node, message string) {
	if control == nil {
		return
	}
	p.ClearError(control)

	dom.AddClass(control, p.errorClass)
	dom.SetAttr(control, "aria-invalid", "true")

	note := dom.NewElement("div",
		"class", p.messageClass,
		KeyAttribute, p.Key(control),
		"role", "alert",
	)
	note.AppendChild(dom.NewText(message))
	dom.InsertAfter(control, note)
}

// ClearError removes the annotation for control. No-op when none exists.
func (p *Presenter) ClearError(control *html.Node) {
	if control == nil {
		return
	}
	dom.RemoveClass(control, p.errorClass)
	dom.RemoveAttr(control, "aria-invalid")
	for _, note := range p.annotations(control) {
		dom.Remove(note)
	}
}

// HasError reports whether control currently carries an annotation.
func (p *Presenter) HasError(control *html.Node) bool {
	return len(p.annotations(control)) > 0
}

// Message returns the text of the current annotation, if any.
func (p *Presenter) Message(control *html.Node) (string, bool) {
	notes := p.annotations(control)
	if len(notes) == 0 {
		return "", false
	}
	return dom.TextContent(notes[0]), true
}

// Sync applies result: invalid shows its message, valid clears.
func (p *Presenter) Sync(control *html.Node, result field.Result) {
	if result.Valid {
		p.ClearError(control)
		return
	}
	p.ShowError(control, result.Message)
}

// annotations walks the run of annotation nodes directly after the control.
// Controls sharing an id or name each own the run that follows them, so a
// same-named sibling's annotation is never matched.
func (p *Presenter) annotations(control *html.Node) []*html.Node {
	if control == nil || control.Parent == nil {
		return nil
	}
	key, ok := p.existingKey(control)
	if !ok {
		return nil
	}
	var notes []*html.Node
	for sibling := dom.NextElementSibling(control); sibling != nil; sibling = dom.NextElementSibling(sibling) {
		if !dom.HasClass(sibling, p.messageClass) || dom.Attr(sibling, KeyAttribute) != key {
			break
		}
		notes = append(notes, sibling)
	}
	return notes
}

func (p *Presenter) existingKey(control *html.Node) (string, bool) {
	for _, attr := range []string{"id", "name", GeneratedKeyAttribute} {
		if value := dom.Attr(control, attr); value != "" {
			return value, true
		}
	}
	return "", false
}

// ShowError annotates control using Default.
func ShowError(control *html.Node, message string) { Default.ShowError(control, message) }

// ClearError clears control using Default.
func ClearError(control *html.Node) { Default.ClearError(control) }

// HasError queries control using Default.
func HasError(control *html.Node) bool { return Default.HasError(control) }

// Sync applies result using Default.
func Sync(control *html.Node, result field.Result) { Default.Sync(control, result) }
