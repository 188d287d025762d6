package env

import (
	"fmt"
	"html"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	theme "github.com/goliatone/go-theme"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formguard/pkg/dom"
)

const (
	// DefaultToastDuration is how long a toast stays before it is dismissed.
	DefaultToastDuration = 3 * time.Second
	toastAnimationsID    = "toast-animations"
)

const toastAnimations = `@keyframes slideDown {
  from { opacity: 0; transform: translateX(-50%) translateY(-20px); }
  to { opacity: 1; transform: translateX(-50%) translateY(0); }
}
@keyframes slideUp {
  from { opacity: 1; transform: translateX(-50%) translateY(0); }
  to { opacity: 0; transform: translateX(-50%) translateY(-20px); }
}`

var (
	toastPolicyOnce sync.Once
	toastPolicy     *bluemonday.Policy
)

func plainText(message string) string {
	toastPolicyOnce.Do(func() {
		toastPolicy = bluemonday.StrictPolicy()
	})
	return html.UnescapeString(toastPolicy.Sanitize(message))
}

// ToastOptions configures a ToastNotifier.
type ToastOptions struct {
	Manifest *theme.Manifest
	// Selector, when set, takes precedence over Manifest.
	Selector  theme.ThemeSelector
	ThemeName string
	Duration  time.Duration
	Logger    *log.Logger
	// Sleep waits out the toast duration off the document loop.
	Sleep func(time.Duration)
}

// ToastNotifier renders transient toasts into the page body.
type ToastNotifier struct {
	doc  *dom.Document
	opts ToastOptions
}

// NewToastNotifier binds a notifier to doc.
func NewToastNotifier(doc *dom.Document, opts ToastOptions) *ToastNotifier {
	if opts.Manifest == nil {
		opts.Manifest = DefaultToastManifest()
	}
	if opts.ThemeName == "" {
		opts.ThemeName = DefaultToastTheme
	}
	if opts.Duration <= 0 {
		opts.Duration = DefaultToastDuration
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Sleep == nil {
		opts.Sleep = time.Sleep
	}
	return &ToastNotifier{doc: doc, opts: opts}
}

// Notify shows message and schedules its removal.
func (t *ToastNotifier) Notify(message string, severity Severity) {
	if !severity.Valid() {
		severity = SeverityInfo
	}
	body := t.doc.Body()
	if body == nil {
		t.opts.Logger.Warn("toast dropped, page has no body", "message", message)
		return
	}
	t.ensureAnimations()

	palette := t.palette(severity)
	toast := dom.NewElement("div",
		"class", "toast toast-"+string(severity),
		"role", "status",
		"style", toastStyle(palette),
	)
	toast.AppendChild(dom.NewText(plainText(message)))
	body.AppendChild(toast)

	duration := t.opts.Duration
	sleep := t.opts.Sleep
	t.doc.Async("toast", func() func() {
		sleep(duration)
		return func() { dom.Remove(toast) }
	})
}

func (t *ToastNotifier) palette(severity Severity) Palette {
	if t.opts.Selector != nil {
		palette, err := SelectPalette(t.opts.Selector, t.opts.ThemeName, severity)
		if err == nil {
			return palette
		}
		t.opts.Logger.Debug("toast theme selection failed, using manifest", "err", err)
	}
	return PaletteFor(t.opts.Manifest, severity)
}

func (t *ToastNotifier) ensureAnimations() {
	if t.doc.FindOne("//style[@id='"+toastAnimationsID+"']") != nil {
		return
	}
	head := t.doc.Head()
	if head == nil {
		return
	}
	style := dom.NewElement("style", "id", toastAnimationsID)
	style.AppendChild(dom.NewText(toastAnimations))
	head.AppendChild(style)
}

func toastStyle(p Palette) string {
	return fmt.Sprintf(
		"position: fixed; top: 20px; left: 50%%; transform: translateX(-50%%); "+
			"background: %s; color: %s; padding: 12px 24px; border-radius: %s; "+
			"z-index: 9999; font-size: 14px; box-shadow: %s; animation: slideDown 0.3s ease-out;",
		p[TokenToastBackground], p[TokenToastText], p[TokenToastRadius], p[TokenToastShadow],
	)
}
