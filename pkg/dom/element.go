package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// NewElement creates a detached element. attrs are key/value pairs.
func NewElement(tag string, attrs ...string) *html.Node {
	node := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	for i := 0; i+1 < len(attrs); i += 2 {
		node.Attr = append(node.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return node
}

// NewText creates a detached text node.
func NewText(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}

// TagName returns the lower-case tag of an element, or "" for other nodes.
func TagName(n *html.Node) string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}
	return strings.ToLower(n.Data)
}

// Attr returns the attribute value, or "" when absent.
func Attr(n *html.Node, key string) string {
	value, _ := LookupAttr(n, key)
	return value
}

// LookupAttr returns the attribute value and whether it is present.
func LookupAttr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, attr := range n.Attr {
		if attr.Namespace == "" && attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

// HasAttr reports whether the attribute is present, regardless of value.
func HasAttr(n *html.Node, key string) bool {
	_, ok := LookupAttr(n, key)
	return ok
}

// SetAttr sets or adds an attribute.
func SetAttr(n *html.Node, key, value string) {
	if n == nil {
		return
	}
	for i, attr := range n.Attr {
		if attr.Namespace == "" && attr.Key == key {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: value})
}

// RemoveAttr drops an attribute; missing attributes are ignored.
func RemoveAttr(n *html.Node, key string) {
	if n == nil {
		return
	}
	out := n.Attr[:0]
	for _, attr := range n.Attr {
		if attr.Namespace == "" && attr.Key == key {
			continue
		}
		out = append(out, attr)
	}
	n.Attr = out
}

// Classes returns the element's class list.
func Classes(n *html.Node) []string {
	return strings.Fields(Attr(n, "class"))
}

// HasClass reports whether the class list contains class.
func HasClass(n *html.Node, class string) bool {
	for _, existing := range Classes(n) {
		if existing == class {
			return true
		}
	}
	return false
}

// AddClass appends class when missing.
func AddClass(n *html.Node, class string) {
	if n == nil || class == "" || HasClass(n, class) {
		return
	}
	SetAttr(n, "class", strings.Join(append(Classes(n), class), " "))
}

// RemoveClass drops class. The attribute is removed once the list is empty.
func RemoveClass(n *html.Node, class string) {
	if n == nil || !HasClass(n, class) {
		return
	}
	kept := make([]string, 0, len(Classes(n)))
	for _, existing := range Classes(n) {
		if existing != class {
			kept = append(kept, existing)
		}
	}
	if len(kept) == 0 {
		RemoveAttr(n, "class")
		return
	}
	SetAttr(n, "class", strings.Join(kept, " "))
}

// TextContent concatenates all descendant text.
func TextContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		b.WriteString(TextContent(child))
	}
	return b.String()
}

// SetTextContent replaces every child of n with a single text node.
func SetTextContent(n *html.Node, text string) {
	if n == nil {
		return
	}
	for child := n.FirstChild; child != nil; {
		next := child.NextSibling
		n.RemoveChild(child)
		child = next
	}
	if text != "" {
		n.AppendChild(NewText(text))
	}
}

// NextElementSibling skips text and comment nodes.
func NextElementSibling(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	for sibling := n.NextSibling; sibling != nil; sibling = sibling.NextSibling {
		if sibling.Type == html.ElementNode {
			return sibling
		}
	}
	return nil
}

// PreviousElementSibling skips text and comment nodes.
func PreviousElementSibling(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	for sibling := n.PrevSibling; sibling != nil; sibling = sibling.PrevSibling {
		if sibling.Type == html.ElementNode {
			return sibling
		}
	}
	return nil
}

// InsertAfter places node immediately after ref. It is a no-op when ref is
// detached.
func InsertAfter(ref, node *html.Node) {
	if ref == nil || ref.Parent == nil || node == nil {
		return
	}
	if node.Parent != nil {
		node.Parent.RemoveChild(node)
	}
	ref.Parent.InsertBefore(node, ref.NextSibling)
}

// Remove detaches n from its parent.
func Remove(n *html.Node) {
	if n == nil || n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// IsFormControl reports whether n is an input, textarea or select element.
func IsFormControl(n *html.Node) bool {
	switch TagName(n) {
	case "input", "textarea", "select":
		return true
	default:
		return false
	}
}

// InputType returns the lower-cased type of an <input>, defaulting to "text".
// Other controls report their tag name.
func InputType(n *html.Node) string {
	tag := TagName(n)
	if tag != "input" {
		return tag
	}
	kind := strings.ToLower(strings.TrimSpace(Attr(n, "type")))
	if kind == "" {
		return "text"
	}
	return kind
}

// Value returns the current value of a form control the way the browser
// exposes it through the value property.
func Value(n *html.Node) string {
	switch TagName(n) {
	case "textarea":
		return TextContent(n)
	case "select":
		return selectedOptionValue(n)
	case "input":
		value, ok := LookupAttr(n, "value")
		if !ok {
			switch InputType(n) {
			case "checkbox", "radio":
				return "on"
			}
		}
		return value
	default:
		return Attr(n, "value")
	}
}

// SetValue updates the value of a form control.
func SetValue(n *html.Node, value string) {
	switch TagName(n) {
	case "textarea":
		SetTextContent(n, value)
	case "select":
		for _, option := range FindIn(n, ".//option") {
			if optionValue(option) == value {
				SetAttr(option, "selected", "")
				continue
			}
			RemoveAttr(option, "selected")
		}
	default:
		SetAttr(n, "value", value)
	}
}

// Checked reports the checked state of a checkbox or radio input.
func Checked(n *html.Node) bool {
	return HasAttr(n, "checked")
}

// SetChecked toggles the checked attribute.
func SetChecked(n *html.Node, checked bool) {
	if checked {
		SetAttr(n, "checked", "")
		return
	}
	RemoveAttr(n, "checked")
}

// Disabled reports whether the control carries the disabled attribute.
func Disabled(n *html.Node) bool {
	return HasAttr(n, "disabled")
}

// SetDisabled toggles the disabled attribute.
func SetDisabled(n *html.Node, disabled bool) {
	if disabled {
		SetAttr(n, "disabled", "")
		return
	}
	RemoveAttr(n, "disabled")
}

func selectedOptionValue(n *html.Node) string {
	options := FindIn(n, ".//option")
	if len(options) == 0 {
		return ""
	}
	for _, option := range options {
		if HasAttr(option, "selected") {
			return optionValue(option)
		}
	}
	return optionValue(options[0])
}

func optionValue(option *html.Node) string {
	if value, ok := LookupAttr(option, "value"); ok {
		return value
	}
	return strings.TrimSpace(TextContent(option))
}
