package env

import (
	"github.com/charmbracelet/log"
)

// Severity classifies a notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	switch s {
	case SeverityInfo, SeveritySuccess, SeverityError:
		return true
	default:
		return false
	}
}

// Notifier receives non-validation feedback such as clipboard results.
type Notifier interface {
	Notify(message string, severity Severity)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string, severity Severity)

func (f NotifierFunc) Notify(message string, severity Severity) { f(message, severity) }

// AlertFunc is a blocking alert hook, the last-resort way to reach the user.
type AlertFunc func(message string)

// AlertFallback turns an alert hook into a Notifier that ignores severity.
// A nil hook logs the message instead.
func AlertFallback(alert AlertFunc, logger *log.Logger) Notifier {
	if alert == nil {
		if logger == nil {
			logger = log.Default()
		}
		alert = func(message string) { logger.Warn("alert", "message", message) }
	}
	return NotifierFunc(func(message string, _ Severity) { alert(message) })
}

// OrAlert returns n, or an AlertFallback when n is nil.
func OrAlert(n Notifier, alert AlertFunc, logger *log.Logger) Notifier {
	if n != nil {
		return n
	}
	return AlertFallback(alert, logger)
}
