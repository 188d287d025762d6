package env

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/goliatone/go-formguard/pkg/dom"
)

// Body classes applied per probe.
const (
	ClassMobile = "mobile-device"
	ClassInApp  = "wechat-browser"
	ClassIOS    = "ios-device"

	// ClassTouchActive is added while a touch-feedback element is pressed.
	ClassTouchActive = "touch-active"

	ViewportContent = "width=device-width, initial-scale=1.0, maximum-scale=1.0, user-scalable=no"

	touchReleaseDelay = 150 * time.Millisecond
	doubleTapWindow   = 300 * time.Millisecond
)

// Adapter applies cosmetic adaptations for constrained environments.
type Adapter struct {
	Probes Probes
	Logger *log.Logger
	Now    func() time.Time
	Sleep  func(time.Duration)

	mu          sync.Mutex
	lastTouchUp time.Time
}

// Apply tags the body with device classes and pins the viewport.
func (a *Adapter) Apply(doc *dom.Document) {
	probes := a.probes()
	if body := doc.Body(); body != nil {
		if probes.Touch() {
			dom.AddClass(body, ClassMobile)
		}
		if probes.InAppBrowser() {
			dom.AddClass(body, ClassInApp)
		}
		if probes.MobileOS() {
			dom.AddClass(body, ClassIOS)
		}
	}
	a.setViewport(doc)
	a.logger().Debug("environment applied",
		"touch", probes.Touch(), "in_app", probes.InAppBrowser(), "mobile_os", probes.MobileOS())
}

func (a *Adapter) setViewport(doc *dom.Document) {
	viewport := doc.FindOne("//meta[@name='viewport']")
	if viewport == nil {
		head := doc.Head()
		if head == nil {
			return
		}
		viewport = dom.NewElement("meta", "name", "viewport")
		head.AppendChild(viewport)
	}
	dom.SetAttr(viewport, "content", ViewportContent)
}

// AttachTouch installs press feedback on ".btn" and ".touch-feedback"
// elements and suppresses the default of a second touchend within the
// double-tap window.
func (a *Adapter) AttachTouch(doc *dom.Document) func() {
	start := doc.AddEventListener(dom.EventTouchStart, func(ev *dom.Event) {
		if touchFeedback(ev) {
			dom.AddClass(ev.Target, ClassTouchActive)
		}
	})
	end := doc.AddEventListener(dom.EventTouchEnd, func(ev *dom.Event) {
		if touchFeedback(ev) {
			target := ev.Target
			sleep := a.sleep()
			doc.Async("touch-feedback", func() func() {
				sleep(touchReleaseDelay)
				return func() { dom.RemoveClass(target, ClassTouchActive) }
			})
		}
		if a.doubleTap() {
			ev.PreventDefault()
		}
	})
	return func() {
		start()
		end()
	}
}

func (a *Adapter) doubleTap() bool {
	now := a.now()
	a.mu.Lock()
	defer a.mu.Unlock()
	quick := !a.lastTouchUp.IsZero() && now.Sub(a.lastTouchUp) <= doubleTapWindow
	a.lastTouchUp = now
	return quick
}

func touchFeedback(ev *dom.Event) bool {
	return dom.HasClass(ev.Target, "btn") || dom.HasClass(ev.Target, "touch-feedback")
}

func (a *Adapter) probes() Probes {
	if a.Probes == nil {
		return Static{}
	}
	return a.Probes
}

func (a *Adapter) logger() *log.Logger {
	if a.Logger == nil {
		return log.Default()
	}
	return a.Logger
}

func (a *Adapter) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

func (a *Adapter) sleep() func(time.Duration) {
	if a.Sleep == nil {
		return time.Sleep
	}
	return a.Sleep
}
