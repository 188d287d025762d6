package testsupport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formguard/pkg/dom"
	"github.com/goliatone/go-formguard/pkg/presenter"
)

// SignupPage is a public form exercising every validation rule.
const SignupPage = "signup.html"

// FixturePath resolves a file shipped in this package's testdata directory.
func FixturePath(name string) string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "testdata", name)
}

// LoadPage parses a testdata page into a document.
func LoadPage(t *testing.T, name string, opts ...dom.Option) *dom.Document {
	t.Helper()

	doc, err := LoadPageFromPath(FixturePath(name), opts...)
	if err != nil {
		t.Fatalf("load page: %v", err)
	}
	return doc
}

// LoadPageFromPath reads and parses an HTML file without requiring testing.T.
func LoadPageFromPath(path string, opts ...dom.Option) (*dom.Document, error) {
	if path == "" {
		return nil, errors.New("testsupport: page path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read page: %w", err)
	}
	doc, err := dom.Parse(bytes.NewReader(data), opts...)
	if err != nil {
		return nil, fmt.Errorf("testsupport: parse page: %w", err)
	}
	return doc, nil
}

// ParsePage parses inline markup, failing the test on error.
func ParsePage(t *testing.T, markup string, opts ...dom.Option) *dom.Document {
	t.Helper()

	doc, err := dom.ParseString(markup, opts...)
	if err != nil {
		t.Fatalf("parse page: %v", err)
	}
	return doc
}

// Annotations maps each annotation key to its message.
func Annotations(doc *dom.Document) map[string]string {
	out := map[string]string{}
	for _, note := range doc.Find("//*[" + dom.ClassPredicate(presenter.MessageClass) + "]") {
		out[dom.Attr(note, presenter.KeyAttribute)] = dom.TextContent(note)
	}
	return out
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return string(data)
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
