package controller

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/goliatone/go-formguard/pkg/diag"
	"github.com/goliatone/go-formguard/pkg/dom"
	"github.com/goliatone/go-formguard/pkg/env"
	"github.com/goliatone/go-formguard/pkg/field"
	"github.com/goliatone/go-formguard/pkg/gate"
	"github.com/goliatone/go-formguard/pkg/presenter"
	"github.com/goliatone/go-formguard/pkg/revalidate"
)

// ErrBoundElsewhere is returned when Init is called with a second document
// before Teardown.
var ErrBoundElsewhere = errors.New("controller: already initialised for another document")

// Controller owns the page lifecycle of the form pipeline.
type Controller struct {
	validator   *field.Validator
	presenter   *presenter.Presenter
	gateOptions gate.Options
	observers   []gate.Observer
	probes      env.Probes
	notifier    env.Notifier
	toasts      *env.ToastOptions
	alert       env.AlertFunc
	clipboard   env.Clipboard
	execCopy    env.ExecCopyFunc
	decorators  []env.Decorator
	recorder    *diag.Recorder
	logger      *log.Logger

	gate    *gate.Gate
	loop    *revalidate.Loop
	adapter *env.Adapter

	doc     *dom.Document
	active  env.Notifier
	detach  []func()
	applied []string
}

// New constructs a Controller applying any provided options.
func New(options ...Option) *Controller {
	c := &Controller{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	c.applyDefaults()
	return c
}

func (c *Controller) applyDefaults() {
	if c.logger == nil {
		c.logger = log.Default()
	}
	if c.validator == nil {
		c.validator = field.New()
	}
	if c.presenter == nil {
		c.presenter = presenter.Default
	}
	if c.probes == nil {
		c.probes = env.Static{}
	}
	if c.recorder == nil {
		c.recorder = diag.NewRecorder(diag.WithLogger(c.logger))
	}

	gateOptions := c.gateOptions
	gateOptions.Validator = c.validator
	gateOptions.Presenter = c.presenter
	gateOptions.Logger = c.logger.WithPrefix("gate")
	c.gate = gate.New(gateOptions)
	for _, observer := range c.observers {
		c.gate.OnAttempt(observer)
	}

	c.loop = revalidate.New(revalidate.Options{
		Validator: c.validator,
		Presenter: c.presenter,
		Logger:    c.logger.WithPrefix("revalidate"),
	})
	c.adapter = &env.Adapter{Probes: c.probes, Logger: c.logger.WithPrefix("env")}
}

// Init binds the controller to doc. Calling it again for the same document is
// a no-op; a different document requires Teardown first.
func (c *Controller) Init(doc *dom.Document) error {
	if doc == nil {
		return fmt.Errorf("controller: init: nil document")
	}
	if c.doc == doc {
		return nil
	}
	if c.doc != nil {
		return ErrBoundElsewhere
	}
	c.doc = doc
	doc.SetFaultHandler(c.recorder.Handler())

	c.active = c.resolveNotifier(doc)
	copyAffordance := &env.CopyAffordance{
		Clipboard: c.clipboard,
		ExecCopy:  c.execCopy,
		Notifier:  c.active,
		Logger:    c.logger.WithPrefix("clipboard"),
	}

	c.recorder.Guard("env", func() { c.adapter.Apply(doc) })
	c.detach = append(c.detach,
		c.gate.Attach(doc),
		c.loop.Attach(doc),
		copyAffordance.Attach(doc),
		c.adapter.AttachTouch(doc),
	)
	c.Redecorate()

	c.logger.Debug("controller initialised",
		"constrained", env.IsConstrainedEnvironment(c.probes),
		"decorators", c.applied,
	)
	return nil
}

// Redecorate runs the decorators again, for instance after markup was
// replaced. Decorator failures are recorded as faults.
func (c *Controller) Redecorate() []string {
	if c.doc == nil {
		return nil
	}
	applied, err := env.ApplyDecorators(c.doc, c.probes, c.decorators)
	if err != nil {
		c.recorder.Record("decorators", err)
	}
	c.applied = applied
	return applied
}

// Teardown detaches every listener and drains pending tasks. The controller
// can be initialised again afterwards.
func (c *Controller) Teardown() {
	if c.doc == nil {
		return
	}
	for i := len(c.detach) - 1; i >= 0; i-- {
		c.detach[i]()
	}
	c.detach = nil
	c.doc.Settle()
	c.doc.SetFaultHandler(nil)
	c.doc = nil
	c.active = nil
	c.applied = nil
}

// Initialised reports whether the controller is bound to a document.
func (c *Controller) Initialised() bool {
	return c.doc != nil
}

// Gate exposes the submission gate, for observers and direct handling.
func (c *Controller) Gate() *gate.Gate { return c.gate }

// Validator exposes the shared field validator.
func (c *Controller) Validator() *field.Validator { return c.validator }

// Recorder exposes the fault recorder.
func (c *Controller) Recorder() *diag.Recorder { return c.recorder }

// Notifier returns the sink in use for the bound document, or nil.
func (c *Controller) Notifier() env.Notifier { return c.active }

// Applied lists the decorators that ran on the last pass.
func (c *Controller) Applied() []string {
	return append([]string(nil), c.applied...)
}

func (c *Controller) resolveNotifier(doc *dom.Document) env.Notifier {
	if c.notifier != nil {
		return c.notifier
	}
	if c.toasts != nil {
		opts := *c.toasts
		if opts.Logger == nil {
			opts.Logger = c.logger.WithPrefix("toast")
		}
		return env.NewToastNotifier(doc, opts)
	}
	return env.AlertFallback(c.alert, c.logger)
}
