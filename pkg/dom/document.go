package dom

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// ErrNoParent is returned when a node cannot be replaced because it is not
// attached to the document tree.
var ErrNoParent = errors.New("dom: node has no parent")

// FaultHandler receives panics recovered from listeners and queued tasks.
// source names the event type or task that failed.
type FaultHandler func(source string, recovered any)

// Option configures a Document at construction time.
type Option func(*Document)

// WithFaultHandler installs the handler invoked when a listener or task
// panics. Without one, recovered panics are dropped silently.
func WithFaultHandler(handler FaultHandler) Option {
	return func(d *Document) {
		d.onFault = handler
	}
}

// Document is a mutable HTML page with document-level event delegation.
type Document struct {
	root       *html.Node
	generation uint64

	listeners []*listener
	nextID    uint64
	onFault   FaultHandler

	mu      sync.Mutex
	tasks   []task
	pending sync.WaitGroup
}

type task struct {
	source string
	fn     func()
}

// Parse reads a full HTML page.
func Parse(r io.Reader, options ...Option) (*Document, error) {
	root, err := htmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse: %w", err)
	}
	return New(root, options...), nil
}

// ParseString is a convenience wrapper around Parse.
func ParseString(markup string, options ...Option) (*Document, error) {
	return Parse(strings.NewReader(markup), options...)
}

// New wraps an already parsed tree.
func New(root *html.Node, options ...Option) *Document {
	d := &Document{root: root, generation: 1}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(d)
	}
	return d
}

// SetFaultHandler replaces the fault handler after construction. A nil
// handler drops recovered panics again.
func (d *Document) SetFaultHandler(handler FaultHandler) {
	d.onFault = handler
}

// Root returns the document node.
func (d *Document) Root() *html.Node {
	return d.root
}

// Generation reports the current render generation. It starts at 1 and is
// incremented by every Replace.
func (d *Document) Generation() uint64 {
	return d.generation
}

// Body returns the <body> element, or nil for fragments without one.
func (d *Document) Body() *html.Node {
	return d.FindOne("//body")
}

// Head returns the <head> element, or nil when missing.
func (d *Document) Head() *html.Node {
	return d.FindOne("//head")
}

// Title returns the trimmed text of the <title> element.
func (d *Document) Title() string {
	node := d.FindOne("//title")
	if node == nil {
		return ""
	}
	return strings.TrimSpace(TextContent(node))
}

// Replace swaps target for the nodes parsed from markup, modelling an
// out-of-band re-render. The render generation is bumped on success.
func (d *Document) Replace(target *html.Node, markup string) ([]*html.Node, error) {
	if target == nil || target.Parent == nil {
		return nil, ErrNoParent
	}
	parent := target.Parent
	context := parent
	if context.Type != html.ElementNode {
		context = d.Body()
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil, fmt.Errorf("dom: parse fragment: %w", err)
	}
	for _, node := range nodes {
		parent.InsertBefore(node, target)
	}
	parent.RemoveChild(target)
	d.generation++
	return nodes, nil
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// String renders the document, returning an empty string on failure.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}
