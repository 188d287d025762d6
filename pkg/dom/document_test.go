package dom_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formguard/pkg/dom"
)

const page = `<!doctype html>
<html><head><title> Signup </title></head>
<body>
<form class="public-form wide" action="/submit">
  <input name="email" type="email" value="a@b.com" required>
  <textarea name="bio">hello</textarea>
  <select name="plan"><option value="free">Free</option><option value="pro" selected>Pro</option></select>
  <input name="terms" type="checkbox">
  <button type="submit">Send</button>
</form>
</body></html>`

func mustParse(t *testing.T, markup string, opts ...dom.Option) *dom.Document {
	t.Helper()
	doc, err := dom.ParseString(markup, opts...)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestDocument_QueriesAndValues(t *testing.T) {
	doc := mustParse(t, page)

	if got := doc.Title(); got != "Signup" {
		t.Fatalf("title: got %q", got)
	}
	form := doc.FindOne("//form[" + dom.ClassPredicate("public-form") + "]")
	if form == nil {
		t.Fatalf("expected public form")
	}

	got := map[string]string{}
	for _, control := range dom.FindIn(form, ".//input|.//textarea|.//select") {
		got[dom.Attr(control, "name")] = dom.Value(control)
	}
	want := map[string]string{
		"email": "a@b.com",
		"bio":   "hello",
		"plan":  "pro",
		"terms": "on",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestSetValue_UpdatesEachControlKind(t *testing.T) {
	doc := mustParse(t, page)

	bio := doc.FindOne("//textarea")
	dom.SetValue(bio, "updated")
	if dom.Value(bio) != "updated" {
		t.Fatalf("textarea value not updated: %q", dom.Value(bio))
	}

	plan := doc.FindOne("//select")
	dom.SetValue(plan, "free")
	if dom.Value(plan) != "free" {
		t.Fatalf("select value not updated: %q", dom.Value(plan))
	}

	email := doc.FindOne("//input[@name='email']")
	dom.SetValue(email, "x@y.org")
	if dom.Attr(email, "value") != "x@y.org" {
		t.Fatalf("input value not updated")
	}
}

func TestClassHelpers(t *testing.T) {
	node := dom.NewElement("div", "class", "a b")
	dom.AddClass(node, "c")
	dom.AddClass(node, "a")
	if diff := cmp.Diff([]string{"a", "b", "c"}, dom.Classes(node)); diff != "" {
		t.Fatalf("classes mismatch (-want +got):\n%s", diff)
	}
	dom.RemoveClass(node, "a")
	dom.RemoveClass(node, "b")
	dom.RemoveClass(node, "c")
	if dom.HasAttr(node, "class") {
		t.Fatalf("expected empty class attribute to be removed")
	}
}

func TestDispatch_CaptureAndBubblePhases(t *testing.T) {
	doc := mustParse(t, page)
	input := doc.FindOne("//input[@name='email']")

	var calls []string
	doc.AddEventListener(dom.EventBlur, func(*dom.Event) { calls = append(calls, "blur-bubble") })
	doc.AddEventListener(dom.EventBlur, func(*dom.Event) { calls = append(calls, "blur-capture") }, dom.ListenerOptions{Capture: true})
	doc.AddEventListener(dom.EventInput, func(*dom.Event) { calls = append(calls, "input-bubble") })
	doc.AddEventListener(dom.EventInput, func(*dom.Event) { calls = append(calls, "input-capture") }, dom.ListenerOptions{Capture: true})

	doc.Blur(input)
	doc.Fill(input, "z@z.io")

	want := []string{"blur-capture", "input-capture", "input-bubble"}
	if diff := cmp.Diff(want, calls); diff != "" {
		t.Fatalf("dispatch order mismatch (-want +got):\n%s", diff)
	}
}

func TestDispatch_PanickingListenerIsIsolated(t *testing.T) {
	var faults []string
	doc := mustParse(t, page, dom.WithFaultHandler(func(source string, recovered any) {
		faults = append(faults, source)
	}))
	form := doc.FindOne("//form")

	ran := false
	doc.AddEventListener(dom.EventSubmit, func(*dom.Event) { panic("boom") })
	doc.AddEventListener(dom.EventSubmit, func(ev *dom.Event) {
		ran = true
		ev.PreventDefault()
	})

	if proceed := doc.Submit(form); proceed {
		t.Fatalf("expected default to be prevented")
	}
	if !ran {
		t.Fatalf("expected second listener to run after the first panicked")
	}
	if diff := cmp.Diff([]string{dom.EventSubmit}, faults); diff != "" {
		t.Fatalf("faults mismatch (-want +got):\n%s", diff)
	}
}

func TestAddEventListener_Detach(t *testing.T) {
	doc := mustParse(t, page)
	detach := doc.AddEventListener(dom.EventClick, func(*dom.Event) {})
	if doc.ListenerCount(dom.EventClick) != 1 {
		t.Fatalf("expected one listener")
	}
	detach()
	detach()
	if doc.ListenerCount(dom.EventClick) != 0 {
		t.Fatalf("expected listener to be detached")
	}
}

func TestReplace_BumpsGeneration(t *testing.T) {
	doc := mustParse(t, page)
	form := doc.FindOne("//form")
	before := doc.Generation()

	nodes, err := doc.Replace(form, `<form class="public-form"><input name="phone" type="tel" required></form>`)
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if len(nodes) != 1 {
		t.Fatalf("expected one replacement node, got %d", len(nodes))
	}
	if doc.Generation() != before+1 {
		t.Fatalf("expected generation bump")
	}
	if doc.Attached(form) {
		t.Fatalf("old form should be detached")
	}
	if doc.FindOne("//input[@name='phone']") == nil {
		t.Fatalf("expected replacement markup to be queryable")
	}

	if _, err := doc.Replace(form, "<p></p>"); !errors.Is(err, dom.ErrNoParent) {
		t.Fatalf("expected ErrNoParent for detached node, got %v", err)
	}
}

func TestAsync_ContinuationRunsOnSettle(t *testing.T) {
	doc := mustParse(t, page)
	body := doc.Body()

	doc.Async("clipboard", func() func() {
		return func() {
			body.AppendChild(dom.NewElement("div", "id", "done"))
		}
	})

	if ran := doc.Settle(); ran != 1 {
		t.Fatalf("expected one task, got %d", ran)
	}
	if doc.FindOne("//div[@id='done']") == nil {
		t.Fatalf("expected continuation to mutate the document")
	}
}

func TestAsync_PanicIsReportedOnDrain(t *testing.T) {
	var sources []string
	doc := mustParse(t, page, dom.WithFaultHandler(func(source string, _ any) {
		sources = append(sources, source)
	}))

	doc.Async("share", func() func() { panic("sdk crashed") })
	doc.Settle()

	if diff := cmp.Diff([]string{"share"}, sources); diff != "" {
		t.Fatalf("fault sources mismatch (-want +got):\n%s", diff)
	}
}

func TestType_FiresInputPerRune(t *testing.T) {
	doc := mustParse(t, page)
	bio := doc.FindOne("//textarea")
	dom.SetValue(bio, "")

	var seen []string
	doc.AddEventListener(dom.EventInput, func(ev *dom.Event) {
		seen = append(seen, dom.Value(ev.Target))
	})
	doc.Type(bio, "abc")

	if diff := cmp.Diff([]string{"a", "ab", "abc"}, seen); diff != "" {
		t.Fatalf("typed values mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(doc.String(), "abc</textarea>") {
		t.Fatalf("expected rendered textarea to contain typed value")
	}
}
