package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/pipeline"
	"github.com/theirongolddev/runway/internal/tui/components"
	"github.com/theirongolddev/runway/internal/tui/theme"
)

// dailyState holds the Daily tab cursor.
type dailyState struct {
	cursor  int
	offset  int
	history bool // include days before today
}

func (d *dailyState) move(delta, n int) {
	d.cursor += delta
	d.clamp(n)
}

func (d *dailyState) clamp(n int) {
	d.cursor = min(d.cursor, n-1)
	d.cursor = max(d.cursor, 0)
}

func (a App) dailyDays() []model.DailyProjection {
	return pipeline.FilterDays(a.data.Result, a.data.Today, a.daily.history, 0)
}

func (a App) renderDailyTab(cw, h int) string {
	t := theme.Active
	days := a.dailyDays()
	if len(days) == 0 {
		return components.ContentCard("Daily", lipgloss.NewStyle().Foreground(t.TextMuted).Render("No days in the forecast window"), cw)
	}

	leftW := max(cw*5/9, 56)
	if a.isCompactLayout() {
		leftW = cw
	}
	rightW := cw - leftW

	ds := a.daily
	visible := max(h-5, 5) // card border, header, rule
	offset := ds.offset
	if ds.cursor < offset {
		offset = ds.cursor
	}
	if ds.cursor >= offset+visible {
		offset = ds.cursor - visible + 1
	}
	end := min(offset+visible, len(days))

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	const row = "%-10s %-3s %12s %12s %12s"
	var left strings.Builder
	left.WriteString(headerStyle.Render(fmt.Sprintf(row, "Date", "", "In / Out", "Balance", "Safe")))
	left.WriteString("\n")
	left.WriteString(mutedStyle.Render(strings.Repeat("─", components.CardInnerWidth(leftW))))
	left.WriteString("\n")

	for i := offset; i < end; i++ {
		dp := days[i]
		bg := t.Surface
		if i == ds.cursor {
			bg = t.SurfaceHover
		}
		base := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(bg)
		if dp.IsHistorical {
			base = base.Foreground(t.TextDim)
		}
		net := dp.TotalIncome.Sub(dp.TotalExpenses)
		netStyle := base.Foreground(t.FlowColor(net))
		balStyle := base.Foreground(t.BalanceColor(dp.EndingBalance))

		safe := "-"
		if !dp.IsHistorical {
			safe = a.money(dp.SafeToSpend)
		}
		left.WriteString(base.Render(fmt.Sprintf("%-10s %-3s ", dp.Date.String(), dp.Date.Format("Mon"))))
		left.WriteString(netStyle.Render(fmt.Sprintf("%12s ", cli.FormatSigned(net, a.currency()))))
		left.WriteString(balStyle.Render(fmt.Sprintf("%12s ", a.money(dp.EndingBalance))))
		left.WriteString(base.Render(fmt.Sprintf("%12s", safe)))
		left.WriteString("\n")
	}

	title := "Daily"
	if ds.history {
		title += " (with history)"
	}
	leftCard := components.ContentCard(title, strings.TrimRight(left.String(), "\n"), leftW)
	if rightW <= 0 {
		return leftCard
	}

	sel := days[ds.cursor]
	rightCard := components.ContentCard(sel.Date.Format("Monday, Jan 2 2006"), a.renderDayDetail(sel, components.CardInnerWidth(rightW)), rightW)
	return components.CardRow([]string{leftCard, rightCard})
}

func (a App) renderDayDetail(dp model.DailyProjection, innerW int) string {
	t := theme.Active
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	kv := func(k, v string) {
		b.WriteString(label.Render(fmt.Sprintf("%-16s", k)))
		b.WriteString(value.Render(v))
		b.WriteString("\n")
	}
	kv("Starting", a.money(dp.StartingBalance))
	kv("Income", a.money(dp.TotalIncome))
	kv("Expenses", a.money(dp.TotalExpenses))
	kv("Ending", a.money(dp.EndingBalance))
	if !dp.IsHistorical {
		kv("Safe to spend", a.money(dp.SafeToSpend))
		kv("Safe to save", a.money(dp.SafeToSave))
		kv("Next income in", cli.FormatDays(dp.DaysUntilNextIncome))
	}
	if dp.Date == a.data.Today {
		b.WriteString(dim.Render("Today's activity is already in the balance."))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if len(dp.Transactions) == 0 {
		b.WriteString(dim.Render("No transactions"))
		return b.String()
	}

	amountW := 12
	nameW := max(innerW-amountW-3, 8)
	for _, tx := range dp.Transactions {
		in, out := tx.Flow()
		flow := in.Sub(out)
		marker := " "
		if tx.Recurring {
			marker = "↻"
		}
		amt := lipgloss.NewStyle().Foreground(t.FlowColor(flow)).Background(t.Surface)
		b.WriteString(dim.Render(marker + " "))
		b.WriteString(value.Render(fmt.Sprintf("%-*s", nameW, truncStr(tx.Name, nameW))))
		b.WriteString(amt.Render(fmt.Sprintf("%*s", amountW, cli.FormatSigned(flow, a.currency()))))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
