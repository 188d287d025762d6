package dom

import "golang.org/x/net/html"

// Event types dispatched by the interaction helpers.
const (
	EventSubmit     = "submit"
	EventInput      = "input"
	EventChange     = "change"
	EventBlur       = "blur"
	EventFocus      = "focus"
	EventClick      = "click"
	EventTouchStart = "touchstart"
	EventTouchEnd   = "touchend"
)

var nonBubbling = map[string]struct{}{
	EventBlur:  {},
	EventFocus: {},
}

// Event is a single dispatched interaction.
type Event struct {
	Type   string
	Target *html.Node

	bubbles          bool
	defaultPrevented bool
	stopped          bool
}

// NewEvent builds an event whose bubbling follows the browser defaults for
// its type: focus and blur do not bubble, everything else does.
func NewEvent(eventType string, target *html.Node) *Event {
	_, quiet := nonBubbling[eventType]
	return &Event{
		Type:    eventType,
		Target:  target,
		bubbles: !quiet,
	}
}

// Bubbles reports whether bubble-phase listeners observe the event.
func (e *Event) Bubbles() bool {
	return e.bubbles
}

// PreventDefault cancels the default action (for submit, the native
// network submission).
func (e *Event) PreventDefault() {
	e.defaultPrevented = true
}

// DefaultPrevented reports whether any listener cancelled the default action.
func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

// StopPropagation prevents later listeners from observing the event.
func (e *Event) StopPropagation() {
	e.stopped = true
}

// Listener handles a delegated event.
type Listener func(*Event)

// ListenerOptions mirror the addEventListener options that matter here.
type ListenerOptions struct {
	// Capture registers the listener for the capture phase, which also sees
	// non-bubbling events such as blur.
	Capture bool
}

type listener struct {
	id      uint64
	typ     string
	capture bool
	fn      Listener
}

// AddEventListener registers fn at document level and returns a function
// that detaches it. Detaching twice is harmless.
func (d *Document) AddEventListener(eventType string, fn Listener, opts ...ListenerOptions) func() {
	if fn == nil {
		return func() {}
	}
	var options ListenerOptions
	if len(opts) > 0 {
		options = opts[0]
	}
	d.nextID++
	entry := &listener{id: d.nextID, typ: eventType, capture: options.Capture, fn: fn}
	d.listeners = append(d.listeners, entry)
	return func() {
		d.removeListener(entry.id)
	}
}

// ListenerCount reports how many listeners are attached for eventType.
func (d *Document) ListenerCount(eventType string) int {
	count := 0
	for _, entry := range d.listeners {
		if entry.typ == eventType {
			count++
		}
	}
	return count
}

func (d *Document) removeListener(id uint64) {
	kept := d.listeners[:0]
	for _, entry := range d.listeners {
		if entry.id != id {
			kept = append(kept, entry)
		}
	}
	d.listeners = kept
}

// Dispatch runs capture listeners, then bubble listeners when the event
// bubbles. A panicking listener is reported to the fault handler and does not
// stop the remaining listeners. The return value is false when the default
// action was prevented.
func (d *Document) Dispatch(ev *Event) bool {
	if ev == nil {
		return true
	}
	snapshot := append([]*listener(nil), d.listeners...)
	for _, phase := range []bool{true, false} {
		if !phase && !ev.bubbles {
			break
		}
		for _, entry := range snapshot {
			if ev.stopped {
				return !ev.defaultPrevented
			}
			if entry.typ != ev.Type || entry.capture != phase {
				continue
			}
			d.invoke(ev.Type, func() { entry.fn(ev) })
		}
	}
	return !ev.defaultPrevented
}

func (d *Document) invoke(source string, fn func()) {
	defer func() {
		if recovered := recover(); recovered != nil && d.onFault != nil {
			d.onFault(source, recovered)
		}
	}()
	fn()
}
