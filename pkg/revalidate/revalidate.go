// Package revalidate keeps annotations in sync while the user edits: every
// control is revalidated when it loses focus, and a control that already
// shows an error is revalidated on each edit so the error clears as soon as
// the value becomes acceptable.
package revalidate

import (
	"github.com/charmbracelet/log"
	"golang.org/x/net/html"

	"github.com/goliatone/go-formguard/pkg/dom"
	"github.com/goliatone/go-formguard/pkg/field"
	"github.com/goliatone/go-formguard/pkg/presenter"
)

// Options configures a Loop.
type Options struct {
	Validator *field.Validator
	Presenter *presenter.Presenter
	Logger    *log.Logger
}

// Loop wires the blur, input and change triggers.
type Loop struct {
	validator *field.Validator
	presenter *presenter.Presenter
	logger    *log.Logger
}

// New builds a Loop, defaulting any unset collaborator.
func New(opts Options) *Loop {
	l := &Loop{
		validator: opts.Validator,
		presenter: opts.Presenter,
		logger:    opts.Logger,
	}
	if l.validator == nil {
		l.validator = field.New()
	}
	if l.presenter == nil {
		l.presenter = presenter.Default
	}
	if l.logger == nil {
		l.logger = log.Default()
	}
	return l
}

// Attach registers the document-level listeners and returns a function that
// removes all of them. Blur does not bubble, so it is observed in capture.
func (l *Loop) Attach(doc *dom.Document) func() {
	detachers := []func(){
		doc.AddEventListener(dom.EventBlur, l.onBlur, dom.ListenerOptions{Capture: true}),
		doc.AddEventListener(dom.EventInput, l.onInput),
		doc.AddEventListener(dom.EventChange, l.onChange),
	}
	return func() {
		for _, detach := range detachers {
			detach()
		}
	}
}

// Revalidate validates control (or its group) and syncs the annotation.
func (l *Loop) Revalidate(control *html.Node) field.Result {
	anchor := control
	if field.IsGroupMember(control) {
		anchor = field.GroupLeader(control)
	}
	result := l.validator.Validate(field.FromNode(anchor))
	l.presenter.Sync(anchor, result)
	return result
}

func (l *Loop) onBlur(ev *dom.Event) {
	if !dom.IsFormControl(ev.Target) {
		return
	}
	l.Revalidate(ev.Target)
}

func (l *Loop) onInput(ev *dom.Event) {
	if !dom.IsFormControl(ev.Target) || !l.presenter.HasError(ev.Target) {
		return
	}
	l.Revalidate(ev.Target)
}

func (l *Loop) onChange(ev *dom.Event) {
	target := ev.Target
	if !field.IsGroupMember(target) {
		return
	}
	leader := field.GroupLeader(target)
	checked := field.CheckedValues(field.GroupMembers(target))
	l.logger.Debug("group changed", "name", dom.Attr(target, "name"), "checked", checked)
	if l.presenter.HasError(leader) {
		l.Revalidate(leader)
	}
}
