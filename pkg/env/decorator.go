package env

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-formguard/pkg/dom"
)

// Decorator is an optional rendering affordance. Decorators are queried for
// availability and silently skipped when unavailable.
type Decorator interface {
	Name() string
	Available(doc *dom.Document, probes Probes) bool
	Decorate(doc *dom.Document) error
}

// ApplyDecorators runs every available decorator and returns the names of
// those that ran. Failures, panics included, do not stop the remaining
// decorators; they are joined into the returned error.
func ApplyDecorators(doc *dom.Document, probes Probes, decorators []Decorator) ([]string, error) {
	if probes == nil {
		probes = Static{}
	}
	var applied []string
	var errs []error
	for _, decorator := range decorators {
		if decorator == nil || !decorator.Available(doc, probes) {
			continue
		}
		if err := decorate(decorator, doc); err != nil {
			errs = append(errs, fmt.Errorf("env: decorator %s: %w", decorator.Name(), err))
			continue
		}
		applied = append(applied, decorator.Name())
	}
	return applied, errors.Join(errs...)
}

func decorate(decorator Decorator, doc *dom.Document) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("panic: %v", recovered)
		}
	}()
	return decorator.Decorate(doc)
}
