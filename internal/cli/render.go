package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// Palette (Flexoki Dark)
var (
	colorRule   = lipgloss.Color("#575653")
	colorMuted  = lipgloss.Color("#6F6E69")
	colorText   = lipgloss.Color("#FFFCF0")
	colorAccent = lipgloss.Color("#3AA99F")
	colorIncome = lipgloss.Color("#879A39")
	colorWarn   = lipgloss.Color("#DA702C")
	colorDebit  = lipgloss.Color("#D14D41")
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorText).Align(lipgloss.Center)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	footerStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorText)
	ruleStyle    = lipgloss.NewStyle().Foreground(colorRule)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	incomeStyle  = lipgloss.NewStyle().Foreground(colorIncome)
	expenseStyle = lipgloss.NewStyle().Foreground(colorDebit)
	warnStyle    = lipgloss.NewStyle().Foreground(colorWarn)
)

// Table is a bordered text table. Columns listed in Amounts hold money
// and are right-aligned so decimal points line up; the rest are left-aligned.
// A row holding the single cell "---" draws a separator.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Amounts []int
	Footer  []string // totals row under a separator, optional
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorRule).
		Width(55).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(titleStyle.Render(title))
}

// RenderTable renders t with column widths fitted to the widest cell.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}

	cols := len(t.Headers)
	if cols == 0 {
		cols = len(t.Rows[0])
	}
	widths := make([]int, cols)
	fit := func(row []string) {
		for i, cell := range row {
			if w := lipgloss.Width(cell); i < cols && w > widths[i] {
				widths[i] = w
			}
		}
	}
	fit(t.Headers)
	for _, row := range t.Rows {
		fit(row)
	}
	fit(t.Footer)

	right := make([]bool, cols)
	for _, i := range t.Amounts {
		if i >= 0 && i < cols {
			right[i] = true
		}
	}

	var b strings.Builder
	rule := func(l, m, r string) {
		b.WriteString(ruleStyle.Render(l))
		for i, w := range widths {
			b.WriteString(ruleStyle.Render(strings.Repeat("─", w+2)))
			if i < cols-1 {
				b.WriteString(ruleStyle.Render(m))
			}
		}
		b.WriteString(ruleStyle.Render(r))
		b.WriteString("\n")
	}
	line := func(row []string, style lipgloss.Style) {
		bar := ruleStyle.Render("│")
		b.WriteString(bar)
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			if right[i] {
				cell = padLeft(cell, widths[i])
			} else {
				cell = padRight(cell, widths[i])
			}
			b.WriteString(style.Render(" " + cell + " "))
			b.WriteString(bar)
		}
		b.WriteString("\n")
	}

	if t.Title != "" {
		b.WriteString("  " + headerStyle.Render(t.Title) + "\n")
	}
	rule("╭", "┬", "╮")
	if len(t.Headers) > 0 {
		line(t.Headers, headerStyle)
		rule("├", "┼", "┤")
	}
	plain := lipgloss.NewStyle()
	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			rule("├", "┼", "┤")
			continue
		}
		line(row, plain)
	}
	if len(t.Footer) > 0 {
		rule("├", "┼", "┤")
		line(t.Footer, footerStyle)
	}
	rule("╰", "┴", "╯")
	return b.String()
}

// RenderSparkline generates a unicode block sparkline from a series of
// values. The lowest value maps to the lowest block, so negative balances
// still show their shape.
func RenderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v > hi {
			hi = v
		}
		if v < lo {
			lo = v
		}
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int((v - lo) / span * float64(len(blocks)-1))
		if idx >= len(blocks) {
			idx = len(blocks) - 1
		}
		if idx < 0 {
			idx = 0
		}
		b.WriteRune(blocks[idx])
	}

	return b.String()
}

// RenderAmount colors an already formatted amount by the sign of d:
// green above zero, red below.
func RenderAmount(d decimal.Decimal, formatted string) string {
	switch d.Sign() {
	case 1:
		return incomeStyle.Render(formatted)
	case -1:
		return expenseStyle.Render(formatted)
	default:
		return formatted
	}
}

// RenderWarning renders a warning line.
func RenderWarning(msg string) string {
	return warnStyle.Render("  ! " + msg)
}

// RenderMuted renders secondary text.
func RenderMuted(msg string) string {
	return mutedStyle.Render(msg)
}

func padRight(s string, w int) string {
	if n := w - lipgloss.Width(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}

func padLeft(s string, w int) string {
	if n := w - lipgloss.Width(s); n > 0 {
		return strings.Repeat(" ", n) + s
	}
	return s
}
