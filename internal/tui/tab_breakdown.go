package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/tui/components"
	"github.com/theirongolddev/runway/internal/tui/theme"
)

func (a App) renderBreakdownTab(cw int) string {
	var income, expenses []model.CategoryTotal
	for _, ct := range a.data.Breakdown {
		switch {
		case ct.Type == model.TypeOther, ct.Type == model.TypeInternalTransfer:
		case ct.Type == model.TypePaycheck || ct.Type == model.TypeIncome:
			income = append(income, ct)
		default:
			expenses = append(expenses, ct)
		}
	}

	title := fmt.Sprintf("%%s (%s to %s)", a.data.Today.Format("Jan 2"), a.data.Summary.HorizonEnd.Format("Jan 2"))
	if a.isCompactLayout() {
		return components.ContentCard(fmt.Sprintf(title, "Expenses"), a.renderTotals(expenses, cw, theme.Active.Expense), cw) +
			"\n" + components.ContentCard(fmt.Sprintf(title, "Income"), a.renderTotals(income, cw, theme.Active.Income), cw)
	}
	halves := components.LayoutRow(cw, 2)
	return components.CardRow([]string{
		components.ContentCard(fmt.Sprintf(title, "Expenses"), a.renderTotals(expenses, halves[0], theme.Active.Expense), halves[0]),
		components.ContentCard(fmt.Sprintf(title, "Income"), a.renderTotals(income, halves[1], theme.Active.Income), halves[1]),
	})
}

func (a App) renderTotals(totals []model.CategoryTotal, outerW int, color lipgloss.Color) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	if len(totals) == 0 {
		return muted.Render("Nothing projected")
	}

	innerW := components.CardInnerWidth(outerW)
	nameW := max(innerW/3, 10)
	amountW := 12
	barMax := max(innerW-nameW-amountW-6, 1)

	peak, _ := totals[0].Total.Float64()
	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	barStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface)

	var b strings.Builder
	for _, ct := range totals {
		v, _ := ct.Total.Float64()
		barLen := 0
		if peak > 0 {
			barLen = int(v / peak * float64(barMax))
		}
		b.WriteString(nameStyle.Render(fmt.Sprintf("%-*s ", nameW, truncStr(ct.Name, nameW))))
		b.WriteString(muted.Render(fmt.Sprintf("%*s ×%-2d ", amountW, a.money(ct.Total), ct.Count)))
		b.WriteString(barStyle.Render(strings.Repeat("█", barLen)))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
