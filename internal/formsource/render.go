package formsource

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"
)

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

const (
	pageTemplate  = "page.html.tpl"
	indexTemplate = "index.html.tpl"
)

// Defaults used when rendering generated pages.
const (
	DefaultFormClass   = "public-form"
	DefaultSubmitLabel = "Submit"
	DefaultLang        = "en"
)

// Renderer turns Forms into public-form pages using pongo2 templates. It is
// safe for concurrent use.
type Renderer struct {
	mu        sync.RWMutex
	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
	policy    *bluemonday.Policy

	FormClass   string
	SubmitLabel string
	Lang        string
}

// RendererOption customises a Renderer.
type RendererOption func(*Renderer)

// WithFormClass sets the class written on generated forms.
func WithFormClass(class string) RendererOption {
	return func(r *Renderer) {
		if class = strings.TrimSpace(class); class != "" {
			r.FormClass = class
		}
	}
}

// WithSubmitLabel sets the submit button caption.
func WithSubmitLabel(label string) RendererOption {
	return func(r *Renderer) {
		if label = strings.TrimSpace(label); label != "" {
			r.SubmitLabel = label
		}
	}
}

// WithLang sets the page language attribute.
func WithLang(lang string) RendererOption {
	return func(r *Renderer) {
		if lang = strings.TrimSpace(lang); lang != "" {
			r.Lang = lang
		}
	}
}

// WithTemplates overrides the embedded templates. files must provide
// page.html.tpl and index.html.tpl.
func WithTemplates(files fs.FS) RendererOption {
	return func(r *Renderer) {
		if files != nil {
			r.set = pongo2.NewSet("formguard", pongo2.NewFSLoader(files))
		}
	}
}

// NewRenderer builds a Renderer backed by the embedded templates.
func NewRenderer(options ...RendererOption) (*Renderer, error) {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return nil, fmt.Errorf("formsource: open embedded templates: %w", err)
	}
	r := &Renderer{
		set:         pongo2.NewSet("formguard", pongo2.NewFSLoader(sub)),
		templates:   make(map[string]*pongo2.Template),
		policy:      bluemonday.StrictPolicy(),
		FormClass:   DefaultFormClass,
		SubmitLabel: DefaultSubmitLabel,
		Lang:        DefaultLang,
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r, nil
}

// RenderForm writes the page for form to w.
func (r *Renderer) RenderForm(w io.Writer, form Form) error {
	action := form.Action
	if action == "" {
		action = "/forms/" + form.ID
	}
	return r.execute(w, pageTemplate, pongo2.Context{
		"form":         r.sanitize(form),
		"form_class":   r.FormClass,
		"submit_label": r.SubmitLabel,
		"action":       action,
		"lang":         r.Lang,
	})
}

// RenderIndex writes the list of published pages to w.
func (r *Renderer) RenderIndex(w io.Writer, title string, pages []Summary) error {
	return r.execute(w, indexTemplate, pongo2.Context{
		"title": r.policy.Sanitize(title),
		"pages": pages,
		"lang":  r.Lang,
	})
}

// Page renders form into a Page value.
func (r *Renderer) Page(form Form) (Page, error) {
	var buf bytes.Buffer
	if err := r.RenderForm(&buf, form); err != nil {
		return Page{}, err
	}
	return Page{ID: form.ID, Title: r.sanitize(form).Title, Markup: buf.Bytes()}, nil
}

func (r *Renderer) execute(w io.Writer, name string, ctx pongo2.Context) error {
	if r == nil || r.set == nil {
		return errors.New("formsource: renderer is nil")
	}
	tmpl, err := r.template(name)
	if err != nil {
		return err
	}
	if err := tmpl.ExecuteWriter(ctx, w); err != nil {
		return fmt.Errorf("formsource: execute template %q: %w", name, err)
	}
	return nil
}

func (r *Renderer) template(name string) (*pongo2.Template, error) {
	r.mu.RLock()
	tmpl, ok := r.templates[name]
	r.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if tmpl, ok := r.templates[name]; ok {
		return tmpl, nil
	}
	tmpl, err := r.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("formsource: load template %q: %w", name, err)
	}
	r.templates[name] = tmpl
	return tmpl, nil
}

// sanitize strips markup from author supplied text. pongo2 escapes the
// result again on output.
func (r *Renderer) sanitize(form Form) Form {
	clean := func(s string) string {
		return strings.TrimSpace(html.UnescapeString(r.policy.Sanitize(s)))
	}
	out := form
	out.Title = clean(form.Title)
	out.Description = clean(form.Description)
	out.Controls = make([]Control, len(form.Controls))
	for i, control := range form.Controls {
		control.Label = clean(control.Label)
		control.Description = clean(control.Description)
		options := make([]Option, len(control.Options))
		for j, option := range control.Options {
			options[j] = Option{Value: option.Value, Label: clean(option.Label)}
		}
		control.Options = options
		out.Controls[i] = control
	}
	return out
}
