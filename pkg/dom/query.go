package dom

import (
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// Find returns every node matching the XPath expression, in document order.
// Invalid expressions match nothing.
func (d *Document) Find(expr string) []*html.Node {
	return FindIn(d.root, expr)
}

// FindOne returns the first node matching expr, or nil.
func (d *Document) FindOne(expr string) *html.Node {
	return FindOneIn(d.root, expr)
}

// FindIn evaluates expr relative to scope.
func FindIn(scope *html.Node, expr string) []*html.Node {
	if scope == nil {
		return nil
	}
	nodes, err := htmlquery.QueryAll(scope, expr)
	if err != nil {
		return nil
	}
	return nodes
}

// FindOneIn evaluates expr relative to scope and returns the first match.
func FindOneIn(scope *html.Node, expr string) *html.Node {
	if scope == nil {
		return nil
	}
	node, err := htmlquery.Query(scope, expr)
	if err != nil {
		return nil
	}
	return node
}

// ClassPredicate builds an XPath predicate body matching elements whose class
// list contains class, for use inside [...].
func ClassPredicate(class string) string {
	return fmt.Sprintf("contains(concat(' ', normalize-space(@class), ' '), ' %s ')", strings.TrimSpace(class))
}

// ByClass returns an expression selecting descendants carrying class.
func ByClass(class string) string {
	return ".//*[" + ClassPredicate(class) + "]"
}

// Closest walks from n up through its ancestors (n included) and returns the
// first element accepted by match.
func Closest(n *html.Node, match func(*html.Node) bool) *html.Node {
	for current := n; current != nil; current = current.Parent {
		if current.Type == html.ElementNode && match(current) {
			return current
		}
	}
	return nil
}

// ClosestTag returns the nearest ancestor-or-self element with the tag name.
func ClosestTag(n *html.Node, tag string) *html.Node {
	return Closest(n, func(node *html.Node) bool {
		return node.Data == tag
	})
}

// Contains reports whether descendant sits inside ancestor (or is it).
func Contains(ancestor, descendant *html.Node) bool {
	for current := descendant; current != nil; current = current.Parent {
		if current == ancestor {
			return true
		}
	}
	return false
}

// Attached reports whether n is still reachable from the document root.
func (d *Document) Attached(n *html.Node) bool {
	return Contains(d.root, n)
}
