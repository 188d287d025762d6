// Package gate intercepts submit events on publicly submittable forms, runs
// the field validator over every required control and either lets the native
// submission proceed or cancels it and restores the submit control.
package gate

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/net/html"

	"github.com/goliatone/go-formguard/pkg/dom"
	"github.com/goliatone/go-formguard/pkg/field"
	"github.com/goliatone/go-formguard/pkg/presenter"
)

const (
	DefaultFormClass       = "public-form"
	DefaultSubmittingLabel = "Submitting..."
	DefaultBusyClass       = "loading"
)

const requiredControlsExpr = `.//*[@required and (self::input or self::textarea or self::select)]`

// Options configures a Gate. Zero values fall back to the defaults.
type Options struct {
	FormClass       string
	SubmittingLabel string
	BusyClass       string
	Validator       *field.Validator
	Presenter       *presenter.Presenter
	Logger          *log.Logger
	NewID           func() string
	Now             func() time.Time
}

func (o Options) withDefaults() Options {
	if o.FormClass == "" {
		o.FormClass = DefaultFormClass
	}
	if o.SubmittingLabel == "" {
		o.SubmittingLabel = DefaultSubmittingLabel
	}
	if o.BusyClass == "" {
		o.BusyClass = DefaultBusyClass
	}
	if o.Validator == nil {
		o.Validator = field.New()
	}
	if o.Presenter == nil {
		o.Presenter = presenter.Default
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// FieldResult pairs a validated control with its outcome. For checkbox groups
// and radio sets Node is the group leader.
type FieldResult struct {
	Node   *html.Node
	Key    string
	Field  field.Field
	Result field.Result
}

// Attempt is one submit event from capture to resolution. It references live
// nodes and is only meaningful for the render that produced it.
type Attempt struct {
	ID        string
	Form      *html.Node
	Control   ControlState
	Fields    []FieldResult
	State     State
	StartedAt time.Time
}

// Invalid lists the fields that blocked the attempt.
func (a *Attempt) Invalid() []FieldResult {
	var out []FieldResult
	for _, fr := range a.Fields {
		if !fr.Result.Valid {
			out = append(out, fr)
		}
	}
	return out
}

// Allowed reports whether the native submission proceeded.
func (a *Attempt) Allowed() bool {
	return a.State == StateAllowed
}

// Observer is notified after each attempt resolves.
type Observer func(*Attempt)

// Gate is stateless between attempts apart from its observers.
type Gate struct {
	opts      Options
	observers []*observerEntry
}

type observerEntry struct {
	fn Observer
}

// New builds a Gate.
func New(opts Options) *Gate {
	return &Gate{opts: opts.withDefaults()}
}

// FormClass is the class that marks a form as gated.
func (g *Gate) FormClass() string {
	return g.opts.FormClass
}

// OnAttempt registers an observer for resolved attempts and returns a
// function that removes it.
func (g *Gate) OnAttempt(fn Observer) func() {
	if fn == nil {
		return func() {}
	}
	entry := &observerEntry{fn: fn}
	g.observers = append(g.observers, entry)
	return func() {
		kept := g.observers[:0]
		for _, existing := range g.observers {
			if existing != entry {
				kept = append(kept, existing)
			}
		}
		g.observers = kept
	}
}

// Attach installs a single document-level submit listener and returns the
// function that removes it.
func (g *Gate) Attach(doc *dom.Document) func() {
	return doc.AddEventListener(dom.EventSubmit, func(ev *dom.Event) {
		g.Handle(ev)
	})
}

// Handle runs one attempt for ev. Events from forms without the gated class
// are ignored and yield nil.
func (g *Gate) Handle(ev *dom.Event) *Attempt {
	form := ev.Target
	if dom.TagName(form) != "form" || !dom.HasClass(form, g.opts.FormClass) {
		return nil
	}

	attempt := &Attempt{
		ID:        g.opts.NewID(),
		Form:      form,
		State:     StateIdle,
		StartedAt: g.opts.Now(),
	}
	control := SubmitControl(form)
	attempt.Control = capture(control, g.opts.SubmittingLabel, g.opts.BusyClass)
	attempt.State = StateValidating

	valid := true
	for _, node := range RequiredControls(form) {
		snapshot := field.FromNode(node)
		result := g.opts.Validator.Validate(snapshot)
		g.opts.Presenter.Sync(node, result)
		attempt.Fields = append(attempt.Fields, FieldResult{
			Node:   node,
			Key:    g.opts.Presenter.Key(node),
			Field:  snapshot,
			Result: result,
		})
		if !result.Valid {
			valid = false
		}
	}

	logger := g.opts.Logger.With("attempt", attempt.ID, "fields", len(attempt.Fields))
	if valid {
		attempt.State = StateAllowed
		logger.Debug("submission allowed")
	} else {
		ev.PreventDefault()
		restore(control, attempt.Control, g.opts.BusyClass)
		attempt.State = StateBlocked
		logger.Debug("submission blocked", "invalid", len(attempt.Invalid()))
	}

	for _, observer := range append([]*observerEntry(nil), g.observers...) {
		observer.fn(attempt)
	}
	return attempt
}

// RequiredControls lists the controls of form that must be validated on
// submit. A checkbox group or radio set appears once, as its leader, when any
// member is required.
func RequiredControls(form *html.Node) []*html.Node {
	seen := make(map[*html.Node]struct{})
	var out []*html.Node
	for _, node := range dom.FindIn(form, requiredControlsExpr) {
		if field.IsGroupMember(node) {
			node = field.GroupLeader(node)
		}
		if _, dup := seen[node]; dup {
			continue
		}
		seen[node] = struct{}{}
		out = append(out, node)
	}
	return out
}
