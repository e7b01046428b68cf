package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/runway/internal/recurrence"
	"github.com/theirongolddev/runway/internal/tui/components"
	"github.com/theirongolddev/runway/internal/tui/theme"
)

func (a App) renderRecurringTab(cw int) string {
	t := theme.Active
	patterns := a.data.Patterns
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	mode, _ := a.opts.Config.RecurrenceMode()
	title := fmt.Sprintf("Recurring (%s)", mode)
	if len(patterns) == 0 {
		return components.ContentCard(title, muted.Render("No recurring transactions recognized"), cw)
	}

	innerW := components.CardInnerWidth(cw)
	fixed := 10 + 22 + 12 + 12 + 6 + 5
	nameW := max(innerW-fixed, 12)

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %-10s %-22s %12s %12s %6s",
		nameW, "Name", "Type", "Cadence", "Amount", "Next", "Count")))
	b.WriteString("\n")
	b.WriteString(muted.Render(strings.Repeat("─", innerW)))
	b.WriteString("\n")

	w := recurrence.Window{From: a.data.Today, To: a.data.Summary.HorizonEnd}
	for _, p := range patterns {
		upcoming := p.Occurrences(w)
		next := "-"
		if len(upcoming) > 0 {
			next = upcoming[0].Date.Format("Jan 2")
		}
		cadence := p.Describe()
		if p.Inferred {
			cadence += "*"
		}
		in, out := p.Anchor.Flow()
		amt := lipgloss.NewStyle().Foreground(t.FlowColor(in.Sub(out))).Background(t.Surface)

		b.WriteString(rowStyle.Render(fmt.Sprintf("%-*s %-10s %-22s ", nameW, truncStr(p.Name, nameW), truncStr(string(p.Type), 10), truncStr(cadence, 22))))
		b.WriteString(amt.Render(fmt.Sprintf("%12s", a.money(p.Anchor.Amount.Abs()))))
		b.WriteString(rowStyle.Render(fmt.Sprintf(" %12s %6d", next, len(upcoming))))
		b.WriteString("\n")
	}
	if mode == recurrence.ModeInferred {
		b.WriteString("\n")
		b.WriteString(muted.Render("* cadence inferred from the spacing of past occurrences"))
	}

	return components.ContentCard(title, strings.TrimRight(b.String(), "\n"), cw)
}
