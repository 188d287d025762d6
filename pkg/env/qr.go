package env

import (
	"encoding/base64"
	"fmt"
	"strconv"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/goliatone/go-formguard/pkg/dom"
)

const (
	DefaultQRSize   = 200
	qrURLAttribute  = "data-qr-url"
	qrDoneAttribute = "data-qr-rendered"
)

// QRDecorator renders a QR code image inside every [data-qr-url] container.
type QRDecorator struct {
	Size  int
	// Level zero selects qrcode.Medium.
	Level qrcode.RecoveryLevel
	// Disabled turns the decorator off, as when no QR renderer is shipped.
	Disabled bool
}

func (q QRDecorator) Name() string { return "qrcode" }

// Available is true when enabled and the page has something to render.
func (q QRDecorator) Available(doc *dom.Document, _ Probes) bool {
	return !q.Disabled && doc.FindOne("//*[@"+qrURLAttribute+"]") != nil
}

// Decorate renders pending containers. Containers already rendered are left
// untouched so repeated runs are harmless.
func (q QRDecorator) Decorate(doc *dom.Document) error {
	size := q.Size
	if size <= 0 {
		size = DefaultQRSize
	}
	level := q.Level
	if level == 0 {
		level = qrcode.Medium
	}
	for _, container := range doc.Find("//*[@" + qrURLAttribute + " and not(@" + qrDoneAttribute + ")]") {
		content := dom.Attr(container, qrURLAttribute)
		if content == "" {
			continue
		}
		png, err := qrcode.Encode(content, level, size)
		if err != nil {
			return fmt.Errorf("encode %q: %w", content, err)
		}
		img := dom.NewElement("img",
			"class", "qr-code",
			"alt", content,
			"width", strconv.Itoa(size),
			"height", strconv.Itoa(size),
			"src", "data:image/png;base64,"+base64.StdEncoding.EncodeToString(png),
		)
		container.AppendChild(img)
		dom.SetAttr(container, qrDoneAttribute, "true")
	}
	return nil
}
