package env

import (
	"context"
	"fmt"

	"github.com/goliatone/go-formguard/pkg/dom"
)

// Share targets exposed by the in-app browser SDK.
const (
	ShareTimeline   = "onMenuShareTimeline"
	ShareAppMessage = "onMenuShareAppMessage"

	DefaultShareDescription = "Please fill in this form"
	MsgShared               = "Shared successfully"
)

// ShareConfig is handed to the SDK once per page.
type ShareConfig struct {
	Title       string
	Link        string
	Description string
	ImageURL    string
	APIs        []string
	// OnShared is called by the SDK after a successful share.
	OnShared func(api string)
}

// ShareSDK is the in-app browser share capability.
type ShareSDK interface {
	Configure(ctx context.Context, cfg ShareConfig) error
}

// ShareDecorator configures sharing metadata inside the in-app browser.
type ShareDecorator struct {
	SDK         ShareSDK
	Link        string
	Description string
	ImageURL    string
	Notifier    Notifier
}

func (s ShareDecorator) Name() string { return "share" }

// Available requires both the SDK and an in-app browser.
func (s ShareDecorator) Available(_ *dom.Document, probes Probes) bool {
	return s.SDK != nil && probes != nil && probes.InAppBrowser()
}

// Decorate passes page metadata to the SDK.
func (s ShareDecorator) Decorate(doc *dom.Document) error {
	description := s.Description
	if description == "" {
		description = DefaultShareDescription
	}
	notifier := s.Notifier
	cfg := ShareConfig{
		Title:       doc.Title(),
		Link:        s.Link,
		Description: description,
		ImageURL:    s.ImageURL,
		APIs:        []string{ShareTimeline, ShareAppMessage},
		OnShared: func(string) {
			if notifier != nil {
				notifier.Notify(MsgShared, SeveritySuccess)
			}
		},
	}
	if err := s.SDK.Configure(context.Background(), cfg); err != nil {
		return fmt.Errorf("configure share: %w", err)
	}
	return nil
}
