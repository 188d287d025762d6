// Package diag records unexpected runtime faults: panics in event listeners
// and failed background tasks. Faults are logged and kept for inspection but
// never surfaced to the person using the page.
package diag

import (
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultLimit caps how many faults a Recorder retains.
const DefaultLimit = 64

// Fault is one captured failure.
type Fault struct {
	Source string
	Err    error
	Stack  string
	At     time.Time
}

// Recorder collects faults. It is safe for concurrent use because background
// tasks may fail off the document goroutine.
type Recorder struct {
	logger *log.Logger
	limit  int
	now    func() time.Time

	mu     sync.Mutex
	faults []Fault
	total  int
}

// Option customises a Recorder.
type Option func(*Recorder)

// WithLogger sets the logger faults are written to.
func WithLogger(logger *log.Logger) Option {
	return func(r *Recorder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithLimit bounds the retained history; older faults are dropped first.
func WithLimit(limit int) Option {
	return func(r *Recorder) {
		if limit > 0 {
			r.limit = limit
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRecorder builds a Recorder logging through log.Default unless configured.
func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{
		logger: log.Default(),
		limit:  DefaultLimit,
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	r.logger = r.logger.WithPrefix("diag")
	return r
}

// Record captures recovered, which may be an error, a panic value or nil.
// Nil is ignored.
func (r *Recorder) Record(source string, recovered any) {
	if r == nil || recovered == nil {
		return
	}
	err, ok := recovered.(error)
	if !ok {
		err = fmt.Errorf("panic: %v", recovered)
	}
	fault := Fault{
		Source: source,
		Err:    err,
		Stack:  string(debug.Stack()),
		At:     r.now(),
	}

	r.mu.Lock()
	r.total++
	r.faults = append(r.faults, fault)
	if overflow := len(r.faults) - r.limit; overflow > 0 {
		r.faults = append([]Fault(nil), r.faults[overflow:]...)
	}
	r.mu.Unlock()

	r.logger.Error("unexpected runtime fault", "source", source, "err", err)
	r.logger.Debug("fault stack", "source", source, "stack", fault.Stack)
}

// Handler adapts Record to the callback shape used by dom.WithFaultHandler.
func (r *Recorder) Handler() func(source string, recovered any) {
	return r.Record
}

// Guard runs fn and records a panic instead of propagating it. It reports
// whether fn completed normally.
func (r *Recorder) Guard(source string, fn func()) (ok bool) {
	defer func() {
		if recovered := recover(); recovered != nil {
			r.Record(source, recovered)
			ok = false
		}
	}()
	fn()
	return true
}

// Faults returns a copy of the retained faults, oldest first.
func (r *Recorder) Faults() []Fault {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Fault(nil), r.faults...)
}

// Count is the number of faults recorded since creation, including dropped ones.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total
}

// Reset forgets every retained fault.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.faults = nil
	r.total = 0
	r.mu.Unlock()
}
