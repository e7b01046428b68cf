package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/pipeline"
	"github.com/theirongolddev/runway/internal/tui/components"
	"github.com/theirongolddev/runway/internal/tui/theme"
)

const (
	tabOverview = iota
	tabDaily
	tabRecurring
	tabBreakdown
)

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	s := a.data.Summary
	var b strings.Builder

	// Row 1: metric cards
	nextIncome := "none before horizon"
	if !s.NextIncomeDate.IsZero() {
		nextIncome = fmt.Sprintf("%s on %s", a.money(s.NextIncomeAmount), s.NextIncomeDate.Format("Jan 2"))
	}
	lowestColor := t.TextPrimary
	if s.LowestBalance.IsNegative() {
		lowestColor = t.Warning
	}
	metrics := []components.Metric{
		{Label: "Balance", Value: a.money(s.Balance), Note: "as of " + s.Today.Format("Jan 2"), Color: t.BalanceColor(s.Balance)},
		{Label: "Safe to spend", Value: a.money(s.SafeToSpend), Note: "save " + a.money(s.SafeToSave), Color: t.Income},
		{Label: "Next income", Value: cli.FormatDays(s.DaysUntilNextIncome), Note: nextIncome},
		{Label: "Lowest ahead", Value: a.money(s.LowestBalance), Note: "on " + s.LowestDate.Format("Jan 2"), Color: lowestColor},
	}
	b.WriteString(components.MetricCardRow(metrics, cw))
	b.WriteString("\n")

	// Row 2: projected balance chart
	var vals []float64
	var labels []string
	for _, dp := range a.data.Result.Periods {
		if dp.IsHistorical {
			continue
		}
		v, _ := dp.EndingBalance.Float64()
		vals = append(vals, v)
		labels = append(labels, dp.Date.Format("Jan 2"))
	}
	if len(vals) > 0 {
		chartH := 10
		if a.isCompactLayout() {
			chartH = 6
		}
		title := fmt.Sprintf("Projected Balance (to %s)", s.HorizonEnd.Format("Jan 2"))
		b.WriteString(components.ContentCard(title,
			components.BalanceChart(vals, labels, t.Accent, components.CardInnerWidth(cw), chartH), cw))
		b.WriteString("\n")
	}

	// Row 3: upcoming activity + outlook
	halves := components.LayoutRow(cw, 2)
	upcoming := components.ContentCard("Upcoming", a.renderUpcoming(components.CardInnerWidth(halves[0])), halves[0])
	outlook := components.ContentCard("Outlook", a.renderOutlook(components.CardInnerWidth(halves[1])), halves[1])
	if a.isCompactLayout() {
		b.WriteString(components.ContentCard("Upcoming", a.renderUpcoming(components.CardInnerWidth(cw)), cw))
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Outlook", a.renderOutlook(components.CardInnerWidth(cw)), cw))
	} else {
		b.WriteString(components.CardRow([]string{upcoming, outlook}))
	}

	return b.String()
}

func (a App) renderUpcoming(innerW int) string {
	t := theme.Active
	dateStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	days := pipeline.Upcoming(a.data.Result, a.data.Today.Add(1), 6)
	if len(days) == 0 {
		return dateStyle.Render("Nothing scheduled before the horizon")
	}

	amountW := 14
	nameW := max(innerW-7-amountW-2, 8)

	var b strings.Builder
	for _, dp := range days {
		for _, tx := range dp.Transactions {
			in, out := tx.Flow()
			flow := in.Sub(out)
			amtStyle := lipgloss.NewStyle().Foreground(t.FlowColor(flow)).Background(t.Surface)
			b.WriteString(dateStyle.Render(fmt.Sprintf("%-6s ", dp.Date.Format("Jan 2"))))
			b.WriteString(nameStyle.Render(fmt.Sprintf("%-*s ", nameW, truncStr(tx.Name, nameW))))
			b.WriteString(amtStyle.Render(fmt.Sprintf("%*s", amountW, cli.FormatSigned(flow, a.currency()))))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (a App) renderOutlook(innerW int) string {
	t := theme.Active
	s := a.data.Summary
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	warn := lipgloss.NewStyle().Foreground(t.Warning).Background(t.Surface)

	rows := []struct{ k, v string }{
		{"Projected income", a.money(s.ProjectedIncome)},
		{"Projected expenses", a.money(s.ProjectedExpenses)},
		{"Final balance", a.money(s.FinalBalance)},
		{"Avg daily spend", a.money(s.AverageDailyExpense)},
		{"Typical paycheck", a.money(s.ExpectedPaycheck)},
	}

	var b strings.Builder
	for _, r := range rows {
		b.WriteString(label.Render(fmt.Sprintf("%-20s", r.k)))
		b.WriteString(value.Render(r.v))
		b.WriteString("\n")
	}

	barW := max(innerW-20-6, 8)
	committed, _ := s.Balance.Sub(s.SafeToSpend).Sub(s.SafeToSave).Float64()
	balance, _ := s.Balance.Float64()
	b.WriteString(components.ShareBar("Bills before payday", committed, balance, 19, barW))

	if s.DaysBelowZero > 0 {
		b.WriteString("\n")
		b.WriteString(warn.Render(fmt.Sprintf("Balance goes negative on %d days", s.DaysBelowZero)))
	} else if s.Balance.LessThan(s.CushionTarget) {
		b.WriteString("\n")
		b.WriteString(warn.Render("Below the " + a.money(s.CushionTarget) + " cushion"))
	}
	return b.String()
}
