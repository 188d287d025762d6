package field

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/goliatone/go-formguard/pkg/dom"
)

// Kind classifies a control for rule selection.
type Kind string

const (
	KindText          Kind = "text"
	KindEmail         Kind = "email"
	KindPhone         Kind = "phone"
	KindNumber        Kind = "number"
	KindCheckbox      Kind = "checkbox"
	KindCheckboxGroup Kind = "checkbox-group"
	KindRadio         Kind = "radio"
	KindTextArea      Kind = "textarea"
	KindSelect        Kind = "select"
	KindOther         Kind = "other"
)

// GroupSuffix marks checkbox names that form a multi-value group.
const GroupSuffix = "[]"

// Field is a snapshot of one control taken at validation time.
type Field struct {
	Name     string
	Kind     Kind
	Value    string
	Required bool
	// Min and Max hold the raw attribute values; empty means undeclared.
	Min string
	Max string
	// Checked lists the checked values of a checkbox group or radio set.
	Checked []string
}

// Result is the outcome of validating a single field.
type Result struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// Valid is the shared passing result.
func Valid() Result {
	return Result{Valid: true}
}

// Invalid builds a failing result.
func Invalid(message string) Result {
	return Result{Valid: false, Message: message}
}

// KindOf maps a control's declared type onto a Kind.
func KindOf(n *html.Node) Kind {
	switch dom.TagName(n) {
	case "textarea":
		return KindTextArea
	case "select":
		return KindSelect
	case "input":
	default:
		return KindOther
	}

	inputType := dom.InputType(n)
	if inputType == "checkbox" && IsGroupMember(n) {
		return KindCheckboxGroup
	}
	kind, _ := ParseKind(inputType)
	return kind
}

// ParseKind maps an input type or a Kind name onto a Kind. Unknown names
// report false and map to KindOther.
func ParseKind(name string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "email":
		return KindEmail, true
	case "tel", "phone":
		return KindPhone, true
	case "number", "range":
		return KindNumber, true
	case "checkbox":
		return KindCheckbox, true
	case "checkbox-group":
		return KindCheckboxGroup, true
	case "radio":
		return KindRadio, true
	case "text", "search", "url", "password":
		return KindText, true
	case "textarea":
		return KindTextArea, true
	case "select":
		return KindSelect, true
	case "other":
		return KindOther, true
	default:
		return KindOther, false
	}
}

// IsGroupMember reports whether n belongs to a multi-control set: a checkbox
// named with the group suffix, or a named radio button.
func IsGroupMember(n *html.Node) bool {
	switch dom.InputType(n) {
	case "checkbox":
		return strings.HasSuffix(dom.Attr(n, "name"), GroupSuffix)
	case "radio":
		return dom.Attr(n, "name") != ""
	default:
		return false
	}
}

// FromNode snapshots the live control. Checkbox groups and radio sets are
// resolved against the nearest enclosing form, or the whole tree when the
// control is not in a form, so the returned Field describes the set as a whole.
func FromNode(n *html.Node) Field {
	f := Field{
		Name:     dom.Attr(n, "name"),
		Kind:     KindOf(n),
		Required: dom.HasAttr(n, "required"),
		Min:      strings.TrimSpace(dom.Attr(n, "min")),
		Max:      strings.TrimSpace(dom.Attr(n, "max")),
	}

	switch f.Kind {
	case KindCheckbox:
		if dom.Checked(n) {
			f.Value = dom.Value(n)
		}
	case KindCheckboxGroup, KindRadio:
		members := GroupMembers(n)
		f.Checked = CheckedValues(members)
		f.Value = strings.Join(f.Checked, ",")
		for _, member := range members {
			if dom.HasAttr(member, "required") {
				f.Required = true
				break
			}
		}
	default:
		f.Value = dom.Value(n)
	}
	return f
}

// GroupMembers returns every control of n's type sharing its group name
// within the same scope, in document order.
func GroupMembers(n *html.Node) []*html.Node {
	if !IsGroupMember(n) {
		return []*html.Node{n}
	}
	scope := dom.ClosestTag(n, "form")
	if scope == nil {
		scope = root(n)
	}
	name, inputType := dom.Attr(n, "name"), dom.InputType(n)
	var members []*html.Node
	for _, candidate := range dom.FindIn(scope, ".//input[@name]") {
		if dom.Attr(candidate, "name") == name && dom.InputType(candidate) == inputType {
			members = append(members, candidate)
		}
	}
	if len(members) == 0 {
		return []*html.Node{n}
	}
	return members
}

// GroupLeader returns the first member of n's group; for any other control it
// returns n. Group annotations are anchored on the leader.
func GroupLeader(n *html.Node) *html.Node {
	members := GroupMembers(n)
	return members[0]
}

// CheckedValues collects the values of the checked members.
func CheckedValues(members []*html.Node) []string {
	var values []string
	for _, member := range members {
		if dom.Checked(member) {
			values = append(values, dom.Value(member))
		}
	}
	return values
}

func root(n *html.Node) *html.Node {
	current := n
	for current.Parent != nil {
		current = current.Parent
	}
	return current
}
