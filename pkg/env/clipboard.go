package env

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/net/html"

	"github.com/goliatone/go-formguard/pkg/dom"
)

const (
	MsgCopied     = "Link copied to clipboard"
	MsgCopyFailed = "Copy failed, please copy manually"

	copyClass     = "copy-btn"
	copyAttribute = "data-copy"
)

// ErrClipboardUnavailable is reported when neither the clipboard nor the
// legacy copy command can be used.
var ErrClipboardUnavailable = errors.New("env: clipboard unavailable")

// Clipboard is the asynchronous clipboard capability.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// ClipboardFunc adapts a function to Clipboard.
type ClipboardFunc func(ctx context.Context, text string) error

func (f ClipboardFunc) WriteText(ctx context.Context, text string) error { return f(ctx, text) }

// ExecCopyFunc copies the selected contents of a temporary textarea, the
// legacy path used when no Clipboard is available.
type ExecCopyFunc func(doc *dom.Document, textarea *html.Node) error

// CopyAffordance handles clicks on copy buttons.
type CopyAffordance struct {
	Clipboard Clipboard
	ExecCopy  ExecCopyFunc
	Notifier  Notifier
	Logger    *log.Logger
	Timeout   time.Duration
}

// Attach listens for clicks on ".copy-btn" or "[data-copy]" elements.
func (c *CopyAffordance) Attach(doc *dom.Document) func() {
	return doc.AddEventListener(dom.EventClick, func(ev *dom.Event) {
		target := ev.Target
		if !dom.HasClass(target, copyClass) && !dom.HasAttr(target, copyAttribute) {
			return
		}
		ev.PreventDefault()
		c.Copy(doc, CopyText(target))
	})
}

// CopyText is the data-copy attribute, or the value of the previous sibling
// control when the attribute is absent.
func CopyText(target *html.Node) string {
	if text := dom.Attr(target, copyAttribute); text != "" {
		return text
	}
	if prev := dom.PreviousElementSibling(target); prev != nil {
		return dom.Value(prev)
	}
	return ""
}

// Copy writes text through the clipboard without blocking the caller. The
// outcome is reported through the notifier once the document drains.
func (c *CopyAffordance) Copy(doc *dom.Document, text string) {
	notifier := c.notifier()
	if c.Clipboard == nil {
		c.report(notifier, c.legacyCopy(doc, text))
		return
	}
	clipboard := c.Clipboard
	timeout := c.Timeout
	doc.Async("clipboard", func() func() {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		err := clipboard.WriteText(ctx, text)
		return func() { c.report(notifier, err) }
	})
}

func (c *CopyAffordance) legacyCopy(doc *dom.Document, text string) error {
	if c.ExecCopy == nil {
		return ErrClipboardUnavailable
	}
	body := doc.Body()
	if body == nil {
		return fmt.Errorf("env: legacy copy: %w", ErrClipboardUnavailable)
	}
	textarea := dom.NewElement("textarea", "aria-hidden", "true")
	dom.SetValue(textarea, text)
	body.AppendChild(textarea)
	defer dom.Remove(textarea)
	return c.ExecCopy(doc, textarea)
}

func (c *CopyAffordance) report(notifier Notifier, err error) {
	if err != nil {
		c.logger().Debug("copy failed", "err", err)
		notifier.Notify(MsgCopyFailed, SeverityError)
		return
	}
	notifier.Notify(MsgCopied, SeveritySuccess)
}

func (c *CopyAffordance) notifier() Notifier {
	return OrAlert(c.Notifier, nil, c.logger())
}

func (c *CopyAffordance) logger() *log.Logger {
	if c.Logger == nil {
		return log.Default()
	}
	return c.Logger
}

