package formguard

import (
	"github.com/goliatone/go-formguard/pkg/controller"
	"github.com/goliatone/go-formguard/pkg/env"
	"github.com/goliatone/go-formguard/pkg/field"
	"github.com/goliatone/go-formguard/pkg/gate"
)

// Field aliases field.Field for callers validating values directly.
type Field = field.Field

// Result aliases field.Result.
type Result = field.Result

// Attempt aliases gate.Attempt, one resolved submission.
type Attempt = gate.Attempt

// Severity aliases env.Severity for notifier implementations.
type Severity = env.Severity

// Notifier aliases env.Notifier, the feedback sink injected at start-up.
type Notifier = env.Notifier

// Probes aliases env.Probes, the environment capability queries.
type Probes = env.Probes

// Decorator aliases env.Decorator for optional rendering affordances.
type Decorator = env.Decorator

// NewController exposes the controller constructor from the top-level module.
func NewController(options ...controller.Option) *controller.Controller {
	return controller.New(options...)
}

// Validate checks a single field with the default validator.
func Validate(f Field) Result {
	return field.Validate(f)
}

// WithProbes forwards environment probes to the controller.
func WithProbes(probes Probes) controller.Option {
	return controller.WithProbes(probes)
}

// WithNotifier forwards the notification sink to the controller.
func WithNotifier(n Notifier) controller.Option {
	return controller.WithNotifier(n)
}

// WithDecorators forwards optional decorators to the controller.
func WithDecorators(decorators ...Decorator) controller.Option {
	return controller.WithDecorators(decorators...)
}
