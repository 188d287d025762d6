package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/goliatone/go-formguard/pkg/gate"
)

var (
	colorOK    = lipgloss.Color("#10b981")
	colorError = lipgloss.Color("#ef4444")
	colorMuted = lipgloss.Color("#6b7280")
)

type reportStyles struct {
	title   lipgloss.Style
	ok      lipgloss.Style
	invalid lipgloss.Style
	muted   lipgloss.Style
}

func newReportStyles(noColor bool) reportStyles {
	if noColor {
		plain := lipgloss.NewStyle()
		return reportStyles{title: plain, ok: plain, invalid: plain, muted: plain}
	}
	return reportStyles{
		title:   lipgloss.NewStyle().Bold(true),
		ok:      lipgloss.NewStyle().Foreground(colorOK),
		invalid: lipgloss.NewStyle().Foreground(colorError).Bold(true),
		muted:   lipgloss.NewStyle().Foreground(colorMuted),
	}
}

// writeReport prints one line per validated field and the attempt outcome.
func writeReport(w io.Writer, attempt *gate.Attempt, noColor bool) {
	styles := newReportStyles(noColor)

	width := 0
	for _, fr := range attempt.Fields {
		width = max(width, len(fr.Field.Name))
	}

	var b strings.Builder
	for _, fr := range attempt.Fields {
		name := fr.Field.Name + strings.Repeat(" ", width-len(fr.Field.Name))
		if fr.Result.Valid {
			fmt.Fprintf(&b, "%s  %s\n", styles.ok.Render("ok  "), name)
			continue
		}
		fmt.Fprintf(&b, "%s  %s  %s\n", styles.invalid.Render("FAIL"), name, fr.Result.Message)
	}

	state := styles.ok.Render(attempt.State.String())
	if attempt.State == gate.StateBlocked {
		state = styles.invalid.Render(attempt.State.String())
	}
	fmt.Fprintf(&b, "\n%s %s %s\n",
		styles.title.Render("submission"),
		state,
		styles.muted.Render(fmt.Sprintf("(%d fields, %d invalid, attempt %s)", len(attempt.Fields), len(attempt.Invalid()), attempt.ID)),
	)
	_, _ = io.WriteString(w, b.String())
}
