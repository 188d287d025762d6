package controller

import (
	"github.com/charmbracelet/log"

	"github.com/goliatone/go-formguard/pkg/diag"
	"github.com/goliatone/go-formguard/pkg/env"
	"github.com/goliatone/go-formguard/pkg/field"
	"github.com/goliatone/go-formguard/pkg/gate"
	"github.com/goliatone/go-formguard/pkg/presenter"
)

// Option customises the controller configuration.
type Option func(*Controller)

// WithValidator injects the field validator shared by the gate and the loop.
func WithValidator(v *field.Validator) Option {
	return func(c *Controller) {
		c.validator = v
	}
}

// WithPresenter injects the annotation presenter.
func WithPresenter(p *presenter.Presenter) Option {
	return func(c *Controller) {
		c.presenter = p
	}
}

// WithFormClass overrides the class that marks publicly submittable forms.
func WithFormClass(class string) Option {
	return func(c *Controller) {
		c.gateOptions.FormClass = class
	}
}

// WithSubmittingLabel overrides the label shown while an attempt is in flight.
func WithSubmittingLabel(label string) Option {
	return func(c *Controller) {
		c.gateOptions.SubmittingLabel = label
	}
}

// WithBusyClass overrides the class added to the submit control while busy.
func WithBusyClass(class string) Option {
	return func(c *Controller) {
		c.gateOptions.BusyClass = class
	}
}

// WithAttemptObserver registers an observer for resolved submission attempts.
func WithAttemptObserver(observer gate.Observer) Option {
	return func(c *Controller) {
		if observer != nil {
			c.observers = append(c.observers, observer)
		}
	}
}

// WithProbes supplies the environment probes. Without them the page is treated
// as an unconstrained desktop browser.
func WithProbes(probes env.Probes) Option {
	return func(c *Controller) {
		c.probes = probes
	}
}

// WithNotifier supplies the notification sink.
func WithNotifier(n env.Notifier) Option {
	return func(c *Controller) {
		c.notifier = n
	}
}

// WithToasts renders notifications as toasts in the page when no explicit
// notifier is configured.
func WithToasts(opts env.ToastOptions) Option {
	return func(c *Controller) {
		c.toasts = &opts
	}
}

// WithAlert sets the blocking alert hook used when no notifier exists.
func WithAlert(alert env.AlertFunc) Option {
	return func(c *Controller) {
		c.alert = alert
	}
}

// WithClipboard supplies the asynchronous clipboard capability.
func WithClipboard(clipboard env.Clipboard) Option {
	return func(c *Controller) {
		c.clipboard = clipboard
	}
}

// WithExecCopy supplies the legacy copy command used without a clipboard.
func WithExecCopy(exec env.ExecCopyFunc) Option {
	return func(c *Controller) {
		c.execCopy = exec
	}
}

// WithDecorators registers optional rendering decorators.
func WithDecorators(decorators ...env.Decorator) Option {
	return func(c *Controller) {
		c.decorators = append(c.decorators, decorators...)
	}
}

// WithRecorder injects the fault recorder.
func WithRecorder(r *diag.Recorder) Option {
	return func(c *Controller) {
		c.recorder = r
	}
}

// WithLogger sets the logger handed to every component.
func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}
