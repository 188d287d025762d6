// Package formsource supplies the public-form pages served and checked by
// formguard: static HTML files from a directory and pages generated from
// OpenAPI request bodies.
package formsource

import (
	"regexp"
	"strings"
)

// Control types emitted for generated forms. They match HTML input types
// except for the composite kinds.
const (
	ControlText          = "text"
	ControlEmail         = "email"
	ControlTel           = "tel"
	ControlNumber        = "number"
	ControlCheckbox      = "checkbox"
	ControlCheckboxGroup = "checkbox-group"
	ControlSelect        = "select"
	ControlTextArea      = "textarea"
)

// Option is one choice of a select or checkbox group.
type Option struct {
	Value string
	Label string
}

// Control describes one generated form control.
type Control struct {
	Name        string
	Label       string
	Type        string
	Description string
	Required    bool
	Min         string
	Max         string
	Default     string
	Options     []Option
}

// Form is a generated public form.
type Form struct {
	ID          string
	Title       string
	Description string
	Method      string
	Action      string
	Controls    []Control
}

var splitWords = regexp.MustCompile(`[_\-\s.]+`)

// Label turns a property name such as "contact_email" or "contactEmail" into
// "Contact email".
func Label(name string) string {
	var words []string
	for _, chunk := range splitWords.Split(strings.TrimSuffix(name, "[]"), -1) {
		words = append(words, splitCamel(chunk)...)
	}
	if len(words) == 0 {
		return ""
	}
	for i := range words {
		words[i] = strings.ToLower(words[i])
	}
	words[0] = strings.ToUpper(words[0][:1]) + words[0][1:]
	return strings.Join(words, " ")
}

func splitCamel(word string) []string {
	var out []string
	start := 0
	for i := 1; i < len(word); i++ {
		prev, cur := word[i-1], word[i]
		if isLower(prev) && isUpper(cur) || isLetter(prev) && isDigit(cur) || isDigit(prev) && isLetter(cur) {
			out = append(out, word[start:i])
			start = i
		}
	}
	if start < len(word) {
		out = append(out, word[start:])
	}
	return out
}

func isUpper(b byte) bool  { return b >= 'A' && b <= 'Z' }
func isLower(b byte) bool  { return b >= 'a' && b <= 'z' }
func isDigit(b byte) bool  { return b >= '0' && b <= '9' }
func isLetter(b byte) bool { return isUpper(b) || isLower(b) }
