// Package env adapts pages to constrained mobile runtimes. Nothing here gates
// validation: probes only switch cosmetic behaviour, and feedback leaves the
// package through a Notifier.
package env

import (
	"net/http"
	"regexp"
	"strings"
)

var (
	mobilePattern = regexp.MustCompile(`(?i)Android|webOS|iPhone|iPad|iPod|BlackBerry|IEMobile|Opera Mini`)
	inAppPattern  = regexp.MustCompile(`(?i)MicroMessenger`)
	iosPattern    = regexp.MustCompile(`iPad|iPhone|iPod`)
)

// Probes answers read-only questions about the hosting browser.
type Probes interface {
	Touch() bool
	InAppBrowser() bool
	MobileOS() bool
}

// IsConstrainedEnvironment is true when any probe reports a constraint.
func IsConstrainedEnvironment(p Probes) bool {
	if p == nil {
		return false
	}
	return p.Touch() || p.InAppBrowser() || p.MobileOS()
}

// UserAgent derives probes from request metadata.
type UserAgent struct {
	Value string
	// MobileHint mirrors the Sec-CH-UA-Mobile client hint.
	MobileHint bool
}

// FromUserAgent wraps a raw User-Agent string.
func FromUserAgent(ua string) UserAgent {
	return UserAgent{Value: ua}
}

// FromHeaders reads the User-Agent and mobile client hint.
func FromHeaders(h http.Header) UserAgent {
	return UserAgent{
		Value:      h.Get("User-Agent"),
		MobileHint: strings.TrimSpace(h.Get("Sec-CH-UA-Mobile")) == "?1",
	}
}

func (u UserAgent) Touch() bool        { return u.MobileHint || mobilePattern.MatchString(u.Value) }
func (u UserAgent) InAppBrowser() bool { return inAppPattern.MatchString(u.Value) }
func (u UserAgent) MobileOS() bool     { return iosPattern.MatchString(u.Value) }

// Static is a fixed probe set, handy for desktop defaults and tests.
type Static struct {
	IsTouch    bool
	IsInApp    bool
	IsMobileOS bool
}

func (s Static) Touch() bool        { return s.IsTouch }
func (s Static) InAppBrowser() bool { return s.IsInApp }
func (s Static) MobileOS() bool     { return s.IsMobileOS }
