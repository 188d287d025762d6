package env

import (
	"fmt"

	theme "github.com/goliatone/go-theme"
)

// Toast token names looked up in a theme manifest.
const (
	TokenToastBackground = "toast.background"
	TokenToastText       = "toast.text"
	TokenToastShadow     = "toast.shadow"
	TokenToastRadius     = "toast.radius"
)

// DefaultToastTheme is the theme name used when none is configured.
const DefaultToastTheme = "formguard"

// DefaultToastManifest carries one variant per severity.
func DefaultToastManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    DefaultToastTheme,
		Version: "1.0.0",
		Tokens: map[string]string{
			TokenToastBackground: "#3b82f6",
			TokenToastText:       "#ffffff",
			TokenToastShadow:     "0 4px 12px rgba(0, 0, 0, 0.15)",
			TokenToastRadius:     "6px",
		},
		Variants: map[string]theme.Variant{
			string(SeverityInfo):    {Tokens: map[string]string{TokenToastBackground: "#3b82f6"}},
			string(SeveritySuccess): {Tokens: map[string]string{TokenToastBackground: "#10b981"}},
			string(SeverityError):   {Tokens: map[string]string{TokenToastBackground: "#ef4444"}},
		},
	}
}

// Palette is the flattened token set for one severity.
type Palette map[string]string

// PaletteFor merges the manifest tokens with the variant named after
// severity. Variant tokens win.
func PaletteFor(manifest *theme.Manifest, severity Severity) Palette {
	out := Palette{}
	if manifest == nil {
		return out
	}
	for key, value := range manifest.Tokens {
		out[key] = value
	}
	if variant, ok := manifest.Variants[string(severity)]; ok {
		for key, value := range variant.Tokens {
			out[key] = value
		}
	}
	return out
}

// PaletteFromSelection flattens a go-theme selection.
func PaletteFromSelection(selection *theme.Selection) Palette {
	if selection == nil {
		return Palette{}
	}
	return PaletteFor(selection.Manifest, Severity(selection.Variant))
}

// SelectPalette asks selector for themeName with the severity as variant.
func SelectPalette(selector theme.ThemeSelector, themeName string, severity Severity) (Palette, error) {
	selection, err := selector.Select(themeName, string(severity))
	if err != nil {
		return nil, fmt.Errorf("env: select toast theme %q/%s: %w", themeName, severity, err)
	}
	if selection == nil || selection.Manifest == nil {
		return nil, fmt.Errorf("env: toast theme %q has no manifest", themeName)
	}
	return PaletteFromSelection(selection), nil
}
