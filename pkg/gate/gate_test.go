package gate_test

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"

	"github.com/goliatone/go-formguard/pkg/dom"
	"github.com/goliatone/go-formguard/pkg/gate"
	"github.com/goliatone/go-formguard/pkg/presenter"
)

const signup = `<html><body>
<form class="public-form" action="/signup" method="post">
  <input id="name" name="name" required>
  <input name="email" type="email" required>
  <input name="age" type="number" min="18">
  <input name="topics[]" type="checkbox" value="go" required>
  <input name="topics[]" type="checkbox" value="zig" required>
  <button type="submit" class="btn"><span class="icon"></span> Send</button>
</form>
<form class="private" action="/internal"><input name="x" required><button>Go</button></form>
</body></html>`

func setup(t *testing.T) (*dom.Document, *gate.Gate) {
	t.Helper()
	doc, err := dom.ParseString(signup)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	ids := 0
	g := gate.New(gate.Options{
		Logger: log.New(&bytes.Buffer{}),
		NewID: func() string {
			ids++
			return "attempt-" + string(rune('0'+ids))
		},
	})
	g.Attach(doc)
	return doc, g
}

func annotationKeys(doc *dom.Document) []string {
	var keys []string
	for _, note := range doc.Find("//div[" + dom.ClassPredicate(presenter.MessageClass) + "]") {
		keys = append(keys, dom.Attr(note, presenter.KeyAttribute))
	}
	return keys
}

func TestGate_BlocksAndRestoresControl(t *testing.T) {
	doc, g := setup(t)
	form := doc.FindOne("//form[@action='/signup']")
	button := gate.SubmitControl(form)
	before := dom.TextContent(button)

	var seen []*gate.Attempt
	g.OnAttempt(func(a *gate.Attempt) { seen = append(seen, a) })

	dom.SetValue(doc.FindOne("//input[@name='name']"), "Ada")
	dom.SetValue(doc.FindOne("//input[@name='email']"), "ada@example.com")

	if proceed := doc.Submit(form); proceed {
		t.Fatalf("expected native submission to be cancelled")
	}
	if dom.Disabled(button) {
		t.Fatalf("control should be re-enabled after a blocked attempt")
	}
	if got := dom.TextContent(button); got != before {
		t.Fatalf("label not restored: got %q want %q", got, before)
	}
	if dom.FindOneIn(button, ".//span[@class='icon']") == nil {
		t.Fatalf("original control markup should be restored")
	}
	if dom.HasClass(button, gate.DefaultBusyClass) || dom.HasAttr(button, "aria-busy") {
		t.Fatalf("busy marker not cleared")
	}

	if diff := cmp.Diff([]string{"topics[]"}, annotationKeys(doc)); diff != "" {
		t.Fatalf("annotations mismatch (-want +got):\n%s", diff)
	}
	leader := doc.FindOne("//input[@value='go']")
	if !presenter.HasError(leader) {
		t.Fatalf("group annotation should sit on the first member")
	}

	if len(seen) != 1 {
		t.Fatalf("expected one observed attempt, got %d", len(seen))
	}
	attempt := seen[0]
	if attempt.State != gate.StateBlocked || attempt.ID != "attempt-1" {
		t.Fatalf("unexpected attempt %s %s", attempt.ID, attempt.State)
	}
	if len(attempt.Fields) != 3 || len(attempt.Invalid()) != 1 {
		t.Fatalf("expected 3 fields with 1 invalid, got %d/%d", len(attempt.Fields), len(attempt.Invalid()))
	}
	if attempt.Control.Label != before || attempt.Control.Disabled {
		t.Fatalf("unexpected captured control %+v", attempt.Control)
	}
}

func TestGate_SingleRequiredEmptyField(t *testing.T) {
	doc, err := dom.ParseString(`<form class="public-form"><input name="phone" type="tel" required><button type="submit">Pay</button></form>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	gate.New(gate.Options{Logger: log.New(&bytes.Buffer{})}).Attach(doc)
	form := doc.FindOne("//form")

	if doc.Submit(form) {
		t.Fatalf("expected submission to be cancelled")
	}
	button := doc.FindOne("//button")
	if dom.Disabled(button) || dom.TextContent(button) != "Pay" {
		t.Fatalf("control not restored: disabled=%v label=%q", dom.Disabled(button), dom.TextContent(button))
	}
	if diff := cmp.Diff([]string{"phone"}, annotationKeys(doc)); diff != "" {
		t.Fatalf("annotations mismatch (-want +got):\n%s", diff)
	}
}

func TestGate_AllowsValidSubmissionAndKeepsControlBusy(t *testing.T) {
	doc, g := setup(t)
	form := doc.FindOne("//form[@action='/signup']")
	button := gate.SubmitControl(form)

	var last *gate.Attempt
	g.OnAttempt(func(a *gate.Attempt) { last = a })

	dom.SetValue(doc.FindOne("//input[@name='name']"), "Ada")
	dom.SetValue(doc.FindOne("//input[@name='email']"), "ada@example.com")
	dom.SetChecked(doc.FindOne("//input[@value='zig']"), true)

	if !doc.Submit(form) {
		t.Fatalf("expected native submission to proceed")
	}
	if !dom.Disabled(button) {
		t.Fatalf("control must stay disabled after an allowed attempt")
	}
	if got := dom.TextContent(button); got != gate.DefaultSubmittingLabel {
		t.Fatalf("expected submitting label, got %q", got)
	}
	if !dom.HasClass(button, gate.DefaultBusyClass) || dom.Attr(button, "aria-busy") != "true" {
		t.Fatalf("busy marker missing")
	}
	if len(annotationKeys(doc)) != 0 {
		t.Fatalf("no annotations expected")
	}
	if last == nil || !last.Allowed() {
		t.Fatalf("expected allowed attempt, got %+v", last)
	}
}

func TestGate_RetryClearsPreviousErrors(t *testing.T) {
	doc, _ := setup(t)
	form := doc.FindOne("//form[@action='/signup']")

	doc.Submit(form)
	if diff := cmp.Diff([]string{"name", "email", "topics[]"}, annotationKeys(doc)); diff != "" {
		t.Fatalf("annotations mismatch (-want +got):\n%s", diff)
	}

	dom.SetValue(doc.FindOne("//input[@name='name']"), "Ada")
	dom.SetValue(doc.FindOne("//input[@name='email']"), "not-an-email")
	doc.Submit(form)
	if diff := cmp.Diff([]string{"email", "topics[]"}, annotationKeys(doc)); diff != "" {
		t.Fatalf("annotations mismatch (-want +got):\n%s", diff)
	}
	if msg, _ := presenter.Default.Message(doc.FindOne("//input[@name='email']")); msg != "Enter a valid email address." {
		t.Fatalf("unexpected email message %q", msg)
	}
}

func TestGate_IgnoresUntaggedForms(t *testing.T) {
	doc, g := setup(t)
	calls := 0
	g.OnAttempt(func(*gate.Attempt) { calls++ })

	private := doc.FindOne("//form[@action='/internal']")
	if !doc.Submit(private) {
		t.Fatalf("untagged forms must not be gated")
	}
	if calls != 0 || len(annotationKeys(doc)) != 0 {
		t.Fatalf("untagged form should be left alone")
	}
}

func TestGate_InputSubmitControl(t *testing.T) {
	doc, err := dom.ParseString(`<form class="join"><input name="code" required><input type="submit" value="Join"></form>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	g := gate.New(gate.Options{FormClass: "join", SubmittingLabel: "Joining", Logger: log.New(&bytes.Buffer{})})
	form := doc.FindOne("//form")
	control := gate.SubmitControl(form)

	var labelDuring string
	g.OnAttempt(func(a *gate.Attempt) { labelDuring = a.Control.Label })
	attempt := g.Handle(dom.NewEvent(dom.EventSubmit, form))

	if attempt == nil || attempt.State != gate.StateBlocked {
		t.Fatalf("expected blocked attempt, got %+v", attempt)
	}
	if labelDuring != "Join" || dom.Attr(control, "value") != "Join" {
		t.Fatalf("input label not restored: %q", dom.Attr(control, "value"))
	}

	dom.SetValue(doc.FindOne("//input[@name='code']"), "XYZ")
	attempt = g.Handle(dom.NewEvent(dom.EventSubmit, form))
	if !attempt.Allowed() || dom.Attr(control, "value") != "Joining" {
		t.Fatalf("expected allowed attempt with submitting label, got %s %q", attempt.State, dom.Attr(control, "value"))
	}
}

func TestGate_OnAttemptDetach(t *testing.T) {
	doc, g := setup(t)
	form := doc.FindOne("//form[@action='/signup']")

	var first, second int
	detachFirst := g.OnAttempt(func(*gate.Attempt) { first++ })
	g.OnAttempt(func(*gate.Attempt) {
		second++
		detachFirst()
	})

	doc.Submit(form)
	doc.Submit(form)

	if first != 1 || second != 2 {
		t.Fatalf("expected first observer once and second twice, got %d and %d", first, second)
	}
	if g.OnAttempt(nil) == nil {
		t.Fatalf("expected a no-op detach for a nil observer")
	}
}

func TestState_String(t *testing.T) {
	got := []string{gate.StateIdle.String(), gate.StateValidating.String(), gate.StateBlocked.String(), gate.StateAllowed.String()}
	if diff := cmp.Diff([]string{"idle", "validating", "blocked", "allowed"}, got); diff != "" {
		t.Fatalf("state names mismatch (-want +got):\n%s", diff)
	}
	if gate.StateValidating.Terminal() || !gate.StateBlocked.Terminal() {
		t.Fatalf("unexpected terminal classification")
	}
}

func TestGate_SameNamedControlsAnnotatedIndependently(t *testing.T) {
	doc, err := dom.ParseString(`<form class="public-form">
  <input name="contact" required>
  <input name="contact" value="x" required>
  <button type="submit">Send</button>
</form>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	gate.New(gate.Options{Logger: log.New(&bytes.Buffer{})}).Attach(doc)
	form := doc.FindOne("//form")
	contacts := doc.Find("//input[@name='contact']")

	if doc.Submit(form) {
		t.Fatalf("expected submission to be cancelled")
	}
	if diff := cmp.Diff([]string{"contact"}, annotationKeys(doc)); diff != "" {
		t.Fatalf("annotations mismatch (-want +got):\n%s", diff)
	}
	if msg, ok := presenter.Default.Message(contacts[0]); !ok || msg != "This field is required." {
		t.Fatalf("first control lost its message: %q ok=%v", msg, ok)
	}
	if presenter.HasError(contacts[1]) || dom.HasClass(contacts[1], presenter.ErrorClass) {
		t.Fatalf("valid control should carry no annotation")
	}
}

func TestGate_RequiredRadioSet(t *testing.T) {
	doc, err := dom.ParseString(`<form class="public-form">
  <input name="plan" type="radio" value="free">
  <input name="plan" type="radio" value="pro" required>
  <button type="submit">Go</button>
</form>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	gate.New(gate.Options{Logger: log.New(&bytes.Buffer{})}).Attach(doc)
	form := doc.FindOne("//form")
	radios := doc.Find("//input[@name='plan']")

	if diff := cmp.Diff(radios[:1], gate.RequiredControls(form), cmp.Comparer(func(a, b *html.Node) bool { return a == b })); diff != "" {
		t.Fatalf("radio set should be listed once, as its first member")
	}
	if doc.Submit(form) {
		t.Fatalf("required radio set with nothing checked must block")
	}
	if !presenter.HasError(radios[0]) {
		t.Fatalf("annotation should sit on the first radio")
	}

	doc.Check(radios[0], true)
	if !doc.Submit(form) {
		t.Fatalf("a checked radio should satisfy the set")
	}
	if presenter.HasError(radios[0]) {
		t.Fatalf("annotation should clear once the set is satisfied")
	}
}
