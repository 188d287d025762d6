package tui

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/net/html"

	formguard "github.com/goliatone/go-formguard"
	"github.com/goliatone/go-formguard/pkg/dom"
	"github.com/goliatone/go-formguard/pkg/field"
)

// DefaultMaxRetries bounds re-prompting for answers the driver cannot
// validate inline.
const DefaultMaxRetries = 3

// ErrTooManyRetries is returned when an answer stays invalid after
// MaxRetries prompts.
var ErrTooManyRetries = errors.New("tui: answer still invalid")

// Filler prompts for every control of a public form and writes the answers
// into the document, firing the same events typing would.
type Filler struct {
	Driver     PromptDriver
	Validator  *field.Validator
	Logger     *log.Logger
	MaxRetries int
}

// Fill asks for each named control of form in document order and returns
// the submitted values.
func (f *Filler) Fill(ctx context.Context, doc *dom.Document, form *html.Node) (url.Values, error) {
	if f.Driver == nil {
		return nil, errors.New("tui: prompt driver is required")
	}
	values := url.Values{}
	seen := map[string]bool{}
	for _, control := range formguard.Controls(form) {
		name := dom.Attr(control, "name")
		switch dom.InputType(control) {
		case "submit", "button", "reset", "image", "hidden", "file":
			continue
		}
		if field.IsGroupMember(control) {
			if seen[name] {
				continue
			}
			seen[name] = true
		}

		var err error
		switch field.KindOf(control) {
		case field.KindCheckboxGroup:
			err = f.askGroup(ctx, doc, control, values)
		case field.KindRadio:
			err = f.askRadio(ctx, doc, control, values)
		case field.KindCheckbox:
			err = f.askCheckbox(ctx, doc, control, values)
		case field.KindSelect:
			err = f.askSelect(ctx, doc, control, values)
		case field.KindTextArea:
			err = f.askTextArea(ctx, doc, control, values)
		default:
			err = f.askInput(ctx, doc, control, values)
		}
		if err != nil {
			return values, fmt.Errorf("tui: %s: %w", name, err)
		}
	}
	return values, nil
}

func (f *Filler) askInput(ctx context.Context, doc *dom.Document, control *html.Node, values url.Values) error {
	snapshot := field.FromNode(control)
	answer, err := f.Driver.Input(ctx, InputConfig{
		Message: promptLabel(control),
		Default: snapshot.Value,
		Help:    helpText(snapshot),
		Validator: func(value string) error {
			candidate := snapshot
			candidate.Value = value
			return asError(f.validator().Validate(candidate))
		},
	})
	if err != nil {
		return err
	}
	doc.Fill(control, answer)
	values.Set(snapshot.Name, answer)
	return nil
}

func (f *Filler) askTextArea(ctx context.Context, doc *dom.Document, control *html.Node, values url.Values) error {
	snapshot := field.FromNode(control)
	return f.retry(ctx, func() (field.Result, error) {
		answer, err := f.Driver.TextArea(ctx, TextAreaConfig{
			Message: promptLabel(control),
			Default: snapshot.Value,
			Help:    helpText(snapshot),
		})
		if err != nil {
			return field.Result{}, err
		}
		doc.Fill(control, answer)
		values.Set(snapshot.Name, answer)
		return f.validator().Validate(field.FromNode(control)), nil
	})
}

func (f *Filler) askCheckbox(ctx context.Context, doc *dom.Document, control *html.Node, values url.Values) error {
	return f.retry(ctx, func() (field.Result, error) {
		checked, err := f.Driver.Confirm(ctx, ConfirmConfig{
			Message: promptLabel(control),
			Default: dom.Checked(control),
		})
		if err != nil {
			return field.Result{}, err
		}
		if dom.Checked(control) != checked {
			doc.Check(control, checked)
		}
		name := dom.Attr(control, "name")
		values.Del(name)
		if checked {
			values.Set(name, dom.Value(control))
		}
		return f.validator().Validate(field.FromNode(control)), nil
	})
}

func (f *Filler) askGroup(ctx context.Context, doc *dom.Document, control *html.Node, values url.Values) error {
	members := field.GroupMembers(control)
	options := make([]string, len(members))
	var defaults []int
	for i, member := range members {
		options[i] = optionLabel(member)
		if dom.Checked(member) {
			defaults = append(defaults, i)
		}
	}
	name := dom.Attr(control, "name")
	return f.retry(ctx, func() (field.Result, error) {
		picked, err := f.Driver.MultiSelect(ctx, SelectConfig{
			Message:  groupLabel(control),
			Options:  options,
			Defaults: defaults,
		})
		if err != nil {
			return field.Result{}, err
		}
		chosen := make(map[int]bool, len(picked))
		for _, idx := range picked {
			chosen[idx] = true
		}
		values.Del(name)
		for i, member := range members {
			if dom.Checked(member) != chosen[i] {
				doc.Check(member, chosen[i])
			}
			if chosen[i] {
				values.Add(name, dom.Value(member))
			}
		}
		defaults = picked
		return f.validator().Validate(field.FromNode(control)), nil
	})
}

func (f *Filler) askRadio(ctx context.Context, doc *dom.Document, control *html.Node, values url.Values) error {
	members := field.GroupMembers(control)
	options := make([]string, len(members))
	defaultIndex := 0
	for i, member := range members {
		options[i] = optionLabel(member)
		if dom.Checked(member) {
			defaultIndex = i
		}
	}
	name := dom.Attr(control, "name")
	return f.retry(ctx, func() (field.Result, error) {
		idx, err := f.Driver.Select(ctx, SelectConfig{
			Message:      groupLabel(control),
			Options:      options,
			DefaultIndex: defaultIndex,
		})
		if err != nil {
			return field.Result{}, err
		}
		if idx < 0 || idx >= len(members) {
			return field.Result{}, fmt.Errorf("option %d out of range", idx)
		}
		doc.Check(members[idx], true)
		values.Set(name, dom.Value(members[idx]))
		defaultIndex = idx
		return f.validator().Validate(field.FromNode(control)), nil
	})
}

func (f *Filler) askSelect(ctx context.Context, doc *dom.Document, control *html.Node, values url.Values) error {
	optionNodes := dom.FindIn(control, ".//option")
	if len(optionNodes) == 0 {
		return nil
	}
	labels := make([]string, len(optionNodes))
	current := dom.Value(control)
	defaultIndex := 0
	for i, option := range optionNodes {
		labels[i] = strings.TrimSpace(dom.TextContent(option))
		if labels[i] == "" {
			labels[i] = optionValue(option)
		}
		if optionValue(option) == current {
			defaultIndex = i
		}
	}
	name := dom.Attr(control, "name")
	return f.retry(ctx, func() (field.Result, error) {
		idx, err := f.Driver.Select(ctx, SelectConfig{
			Message:      promptLabel(control),
			Options:      labels,
			DefaultIndex: defaultIndex,
		})
		if err != nil {
			return field.Result{}, err
		}
		if idx < 0 || idx >= len(optionNodes) {
			return field.Result{}, fmt.Errorf("option %d out of range", idx)
		}
		value := optionValue(optionNodes[idx])
		doc.Fill(control, value)
		values.Set(name, value)
		defaultIndex = idx
		return f.validator().Validate(field.FromNode(control)), nil
	})
}

// retry re-prompts while ask yields an invalid result, reporting each
// message through the driver.
func (f *Filler) retry(ctx context.Context, ask func() (field.Result, error)) error {
	limit := f.MaxRetries
	if limit <= 0 {
		limit = DefaultMaxRetries
	}
	for attempt := 1; ; attempt++ {
		result, err := ask()
		if err != nil {
			return err
		}
		if result.Valid {
			return nil
		}
		f.logger().Debug("answer rejected", "attempt", attempt, "message", result.Message)
		if attempt >= limit {
			return fmt.Errorf("%w: %s", ErrTooManyRetries, result.Message)
		}
		if err := f.Driver.Info(ctx, result.Message); err != nil {
			return err
		}
	}
}

func (f *Filler) validator() *field.Validator {
	if f.Validator == nil {
		f.Validator = field.New()
	}
	return f.Validator
}

func (f *Filler) logger() *log.Logger {
	if f.Logger == nil {
		return log.Default()
	}
	return f.Logger
}

func asError(result field.Result) error {
	if result.Valid {
		return nil
	}
	return errors.New(result.Message)
}

func helpText(f field.Field) string {
	var parts []string
	if f.Required {
		parts = append(parts, "required")
	}
	if f.Min != "" {
		parts = append(parts, "min "+f.Min)
	}
	if f.Max != "" {
		parts = append(parts, "max "+f.Max)
	}
	return strings.Join(parts, ", ")
}

func promptLabel(control *html.Node) string {
	label := ""
	if id := dom.Attr(control, "id"); id != "" {
		if root := rootOf(control); root != nil {
			for _, candidate := range dom.FindIn(root, ".//label[@for]") {
				if dom.Attr(candidate, "for") == id {
					label = strings.TrimSpace(dom.TextContent(candidate))
					break
				}
			}
		}
	}
	if label == "" {
		if parent := control.Parent; dom.TagName(parent) == "label" {
			label = strings.TrimSpace(dom.TextContent(parent))
		}
	}
	if label == "" {
		label = strings.TrimSuffix(dom.Attr(control, "name"), field.GroupSuffix)
	}
	return label
}

func groupLabel(control *html.Node) string {
	if fieldset := dom.ClosestTag(control, "fieldset"); fieldset != nil {
		if legend := dom.FindIn(fieldset, "./legend"); len(legend) > 0 {
			if text := strings.TrimSpace(dom.TextContent(legend[0])); text != "" {
				return text
			}
		}
	}
	return strings.TrimSuffix(dom.Attr(control, "name"), field.GroupSuffix)
}

func optionLabel(member *html.Node) string {
	if parent := member.Parent; dom.TagName(parent) == "label" {
		if text := strings.TrimSpace(dom.TextContent(parent)); text != "" {
			return text
		}
	}
	return dom.Value(member)
}

func optionValue(option *html.Node) string {
	if value, ok := dom.LookupAttr(option, "value"); ok {
		return value
	}
	return strings.TrimSpace(dom.TextContent(option))
}

func rootOf(n *html.Node) *html.Node {
	for n != nil && n.Parent != nil {
		n = n.Parent
	}
	return n
}
