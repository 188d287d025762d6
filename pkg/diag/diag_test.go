package diag_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formguard/pkg/diag"
	"github.com/goliatone/go-formguard/pkg/dom"
)

func TestRecorder_GuardSwallowsPanics(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.ErrorLevel})
	rec := diag.NewRecorder(diag.WithLogger(logger))

	if ok := rec.Guard("listener", func() { panic("boom") }); ok {
		t.Fatalf("expected guard to report failure")
	}
	if ok := rec.Guard("listener", func() {}); !ok {
		t.Fatalf("expected guard to report success")
	}

	faults := rec.Faults()
	if len(faults) != 1 {
		t.Fatalf("expected one fault, got %d", len(faults))
	}
	if faults[0].Source != "listener" || faults[0].Err.Error() != "panic: boom" {
		t.Fatalf("unexpected fault %+v", faults[0])
	}
	if faults[0].Stack == "" {
		t.Fatalf("expected stack to be captured")
	}
	if !strings.Contains(buf.String(), "unexpected runtime fault") {
		t.Fatalf("expected fault to be logged, got %q", buf.String())
	}
}

func TestRecorder_KeepsErrorsAndHonoursLimit(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rec := diag.NewRecorder(
		diag.WithLogger(log.New(&bytes.Buffer{})),
		diag.WithLimit(2),
		diag.WithClock(func() time.Time { return fixed }),
	)
	sentinel := errors.New("clipboard rejected")

	rec.Record("a", sentinel)
	rec.Record("b", "second")
	rec.Record("c", "third")
	rec.Record("ignored", nil)

	var sources []string
	for _, fault := range rec.Faults() {
		sources = append(sources, fault.Source)
		if !fault.At.Equal(fixed) {
			t.Fatalf("unexpected timestamp %v", fault.At)
		}
	}
	if diff := cmp.Diff([]string{"b", "c"}, sources); diff != "" {
		t.Fatalf("retained faults mismatch (-want +got):\n%s", diff)
	}
	if rec.Count() != 3 {
		t.Fatalf("expected total count 3, got %d", rec.Count())
	}

	rec.Reset()
	if rec.Count() != 0 || len(rec.Faults()) != 0 {
		t.Fatalf("expected reset to clear history")
	}
}

func TestRecorder_AsDocumentFaultHandler(t *testing.T) {
	rec := diag.NewRecorder(diag.WithLogger(log.New(&bytes.Buffer{})))
	doc, err := dom.ParseString(`<button id="b">x</button>`, dom.WithFaultHandler(rec.Handler()))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	clicked := false
	doc.AddEventListener(dom.EventClick, func(*dom.Event) { panic(errors.New("handler broke")) })
	doc.AddEventListener(dom.EventClick, func(*dom.Event) { clicked = true })

	doc.Click(doc.FindOne("//button"))

	if !clicked {
		t.Fatalf("later listener must still run")
	}
	faults := rec.Faults()
	if len(faults) != 1 || faults[0].Err.Error() != "handler broke" {
		t.Fatalf("unexpected faults %+v", faults)
	}
}
