package revalidate_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/goliatone/go-formguard/pkg/dom"
	"github.com/goliatone/go-formguard/pkg/presenter"
	"github.com/goliatone/go-formguard/pkg/revalidate"
)

const form = `<form class="public-form">
  <input name="email" type="email" required>
  <input name="nick">
  <input name="colors[]" type="checkbox" value="red" required>
  <input name="colors[]" type="checkbox" value="blue">
</form>`

func setup(t *testing.T) (*dom.Document, *bytes.Buffer, func()) {
	t.Helper()
	doc, err := dom.ParseString(form)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var logs bytes.Buffer
	loop := revalidate.New(revalidate.Options{
		Logger: log.NewWithOptions(&logs, log.Options{Level: log.DebugLevel}),
	})
	return doc, &logs, loop.Attach(doc)
}

func TestLoop_TypingDoesNotFlagCleanField(t *testing.T) {
	doc, _, _ := setup(t)
	email := doc.FindOne("//input[@name='email']")

	doc.Type(email, "a")
	if presenter.HasError(email) {
		t.Fatalf("editing a clean field must not annotate it before blur")
	}

	doc.Blur(email)
	if !presenter.HasError(email) {
		t.Fatalf("blur should validate and annotate the invalid value")
	}
}

func TestLoop_InputClearsErrorOnceValid(t *testing.T) {
	doc, _, _ := setup(t)
	email := doc.FindOne("//input[@name='email']")

	doc.Blur(email)
	if msg, _ := presenter.Default.Message(email); msg != "This field is required." {
		t.Fatalf("unexpected message %q", msg)
	}

	doc.Type(email, "a@b")
	if msg, _ := presenter.Default.Message(email); msg != "Enter a valid email address." {
		t.Fatalf("expected format error while typing, got %q", msg)
	}
	doc.Type(email, ".c")
	if presenter.HasError(email) {
		t.Fatalf("error should clear on the input event that makes the value valid")
	}
}

func TestLoop_BlurOnOptionalFieldStaysClean(t *testing.T) {
	doc, _, _ := setup(t)
	nick := doc.FindOne("//input[@name='nick']")
	doc.Blur(nick)
	if presenter.HasError(nick) {
		t.Fatalf("empty optional field is valid")
	}
}

func TestLoop_CheckboxGroupChange(t *testing.T) {
	doc, logs, _ := setup(t)
	members := doc.Find("//input[@name='colors[]']")

	doc.Blur(members[1])
	if !presenter.HasError(members[0]) {
		t.Fatalf("group annotation should be anchored on the leader")
	}

	doc.Check(members[1], true)
	if presenter.HasError(members[0]) {
		t.Fatalf("checking a member should clear the group error")
	}
	if !strings.Contains(logs.String(), "checkbox group changed") {
		t.Fatalf("expected debug log for group change, got %q", logs.String())
	}
}

func TestLoop_Detach(t *testing.T) {
	doc, _, detach := setup(t)
	detach()
	email := doc.FindOne("//input[@name='email']")
	doc.Blur(email)
	if presenter.HasError(email) {
		t.Fatalf("detached loop must not react")
	}
	if doc.ListenerCount(dom.EventBlur) != 0 {
		t.Fatalf("expected listeners to be removed")
	}
}
