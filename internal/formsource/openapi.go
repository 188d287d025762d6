package formsource

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

const (
	kindExtension  = "x-formguard-kind"
	orderExtension = "x-formguard-order"
	textAreaLength = 200
)

// ErrNoForms is returned when a document has no operation with an object
// request body.
var ErrNoForms = errors.New("formsource: document has no form operations")

// OpenAPIOptions tunes document loading.
type OpenAPIOptions struct {
	// Validate runs the kin-openapi document validation before conversion.
	Validate bool
}

// FormsFromOpenAPI converts every operation with an object request body into
// a Form keyed by operationId.
func FormsFromOpenAPI(ctx context.Context, data []byte, opts OpenAPIOptions) (map[string]Form, error) {
	if len(data) == 0 {
		return nil, errors.New("formsource: openapi document is empty")
	}
	loader := &openapi3.Loader{Context: ctx, IsExternalRefsAllowed: false}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("formsource: load openapi: %w", err)
	}
	if opts.Validate {
		if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("formsource: validate openapi: %w", err)
		}
	}

	forms := make(map[string]Form)
	if doc.Paths != nil {
		for path, item := range doc.Paths.Map() {
			if item == nil {
				continue
			}
			for method, operation := range item.Operations() {
				if form, ok := formFromOperation(method, path, operation); ok {
					forms[form.ID] = form
				}
			}
		}
	}
	if len(forms) == 0 {
		return nil, ErrNoForms
	}
	return forms, nil
}

func formFromOperation(method, path string, operation *openapi3.Operation) (Form, bool) {
	if operation == nil || operation.RequestBody == nil || operation.RequestBody.Value == nil {
		return Form{}, false
	}
	schema := requestSchema(operation.RequestBody.Value.Content)
	if schema == nil || !hasType(schema, "object") || len(schema.Properties) == 0 {
		return Form{}, false
	}

	id := operation.OperationID
	if id == "" {
		id = strings.ToLower(method) + strings.ReplaceAll(path, "/", "-")
	}
	title := operation.Summary
	if title == "" {
		title = Label(id)
	}

	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}

	form := Form{
		ID:          id,
		Title:       title,
		Description: operation.Description,
		Method:      strings.ToUpper(method),
		Action:      path,
	}
	for _, name := range orderedProperties(schema.Properties) {
		ref := schema.Properties[name]
		if ref == nil || ref.Value == nil || ref.Value.ReadOnly {
			continue
		}
		form.Controls = append(form.Controls, controlFromSchema(name, ref.Value, required[name]))
	}
	return form, len(form.Controls) > 0
}

func requestSchema(content openapi3.Content) *openapi3.Schema {
	for _, mediaType := range []string{"application/x-www-form-urlencoded", "multipart/form-data", "application/json"} {
		if mt, ok := content[mediaType]; ok && mt != nil && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	for _, mt := range content {
		if mt != nil && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

func controlFromSchema(name string, schema *openapi3.Schema, required bool) Control {
	control := Control{
		Name:        name,
		Label:       schema.Title,
		Type:        ControlText,
		Description: schema.Description,
		Required:    required,
	}
	if control.Label == "" {
		control.Label = Label(name)
	}
	if schema.Default != nil {
		control.Default = fmt.Sprint(schema.Default)
	}
	kind, _ := schema.Extensions[kindExtension].(string)

	switch {
	case hasType(schema, "integer") || hasType(schema, "number"):
		control.Type = ControlNumber
		if schema.Min != nil {
			control.Min = formatBound(*schema.Min)
		}
		if schema.Max != nil {
			control.Max = formatBound(*schema.Max)
		}
	case hasType(schema, "boolean"):
		control.Type = ControlCheckbox
	case hasType(schema, "array") && schema.Items != nil && schema.Items.Value != nil && len(schema.Items.Value.Enum) > 0:
		control.Type = ControlCheckboxGroup
		control.Name = name + "[]"
		control.Options = enumOptions(schema.Items.Value.Enum)
	case len(schema.Enum) > 0:
		control.Type = ControlSelect
		control.Options = enumOptions(schema.Enum)
	case kind == "phone" || schema.Format == "phone" || schema.Format == "tel":
		control.Type = ControlTel
	case schema.Format == "email":
		control.Type = ControlEmail
	case kind == "textarea" || (schema.MaxLength != nil && *schema.MaxLength > textAreaLength):
		control.Type = ControlTextArea
	}
	return control
}

func enumOptions(values []any) []Option {
	options := make([]Option, 0, len(values))
	for _, value := range values {
		text := fmt.Sprint(value)
		options = append(options, Option{Value: text, Label: Label(text)})
	}
	return options
}

func orderedProperties(props openapi3.Schemas) []string {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.SliceStable(names, func(i, j int) bool {
		oi, oj := propertyOrder(props[names[i]]), propertyOrder(props[names[j]])
		if oi != oj {
			return oi < oj
		}
		return names[i] < names[j]
	})
	return names
}

func propertyOrder(ref *openapi3.SchemaRef) float64 {
	if ref == nil || ref.Value == nil {
		return 1 << 20
	}
	if order, ok := ref.Value.Extensions[orderExtension].(float64); ok {
		return order
	}
	return 1 << 20
}

func hasType(schema *openapi3.Schema, want string) bool {
	if schema.Type == nil {
		return false
	}
	for _, typ := range schema.Type.Slice() {
		if typ == want {
			return true
		}
	}
	return false
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
