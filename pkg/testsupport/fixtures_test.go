package testsupport_test

import (
	"testing"

	"github.com/goliatone/go-formguard/pkg/presenter"
	"github.com/goliatone/go-formguard/pkg/testsupport"
)

func TestLoadPage_Signup(t *testing.T) {
	doc := testsupport.LoadPage(t, testsupport.SignupPage)
	if got := doc.Title(); got != "Community meetup signup" {
		t.Fatalf("unexpected title %q", got)
	}
	if len(doc.Find("//form[@id='signup']//*[@required]")) != 4 {
		t.Fatalf("expected four required controls in the signup fixture")
	}

	presenter.ShowError(doc.FindOne("//input[@id='email']"), "bad")
	want := map[string]string{"email": "bad"}
	if diff := testsupport.CompareGolden(want, testsupport.Annotations(doc)); diff != "" {
		t.Fatalf("annotations mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadPageFromPath_Errors(t *testing.T) {
	if _, err := testsupport.LoadPageFromPath(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
	if _, err := testsupport.LoadPageFromPath(testsupport.FixturePath("missing.html")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
