package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/runway/internal/tui/theme"
)

var blocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders values as a one-line unicode sparkline scaled between
// their minimum and maximum.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	lo, hi := bounds(values)
	span := hi - lo

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := 0
		if span > 0 {
			idx = int((v - lo) / span * float64(len(blocks)-1))
		}
		idx = min(max(idx, 0), len(blocks)-1)
		buf.WriteRune(blocks[idx])
	}

	return lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(buf.String())
}

// Resample reduces values to at most n points, keeping the last value of
// each bucket so a balance series still ends on its final balance.
func Resample(values []float64, n int) []float64 {
	if n <= 0 || len(values) <= n {
		return values
	}
	out := make([]float64, n)
	for i := range out {
		end := (i + 1) * len(values) / n
		out[i] = values[end-1]
	}
	return out
}

// BalanceChart renders a vertical bar chart of balances. The baseline is
// zero, or the lowest balance when it dips below zero; negative bars use the
// warning color.
func BalanceChart(values []float64, labels []string, color lipgloss.Color, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	if width < 15 || height < 3 {
		return Sparkline(values, color)
	}
	t := theme.Active

	lo, hi := bounds(values)
	floor := math.Min(0, lo)
	if hi <= floor {
		hi = floor + 1
	}

	yLabelW := max(len(formatChartLabel(hi)), len(formatChartLabel(floor))) + 1
	chartW := max(width-yLabelW-1, 5)

	barW := 1
	if len(values) > chartW {
		values = Resample(values, chartW)
		labels = nil
	} else {
		barW = min(chartW/len(values), 3)
	}

	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	barStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	negStyle := lipgloss.NewStyle().Foreground(t.Warning).Background(t.Surface)
	blank := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	for row := height; row >= 1; row-- {
		rowTop := floor + (hi-floor)*float64(row)/float64(height)
		rowBottom := floor + (hi-floor)*float64(row-1)/float64(height)

		label := ""
		switch row {
		case height:
			label = formatChartLabel(hi)
		case 1:
			label = formatChartLabel(floor)
		}
		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s│", yLabelW, label)))

		for _, v := range values {
			style := barStyle
			if v < 0 {
				style = negStyle
			}
			switch {
			case v >= rowTop:
				b.WriteString(style.Render(strings.Repeat("█", barW)))
			case v > rowBottom:
				idx := int((v - rowBottom) / (rowTop - rowBottom) * float64(len(blocks)-1))
				idx = min(max(idx, 0), len(blocks)-1)
				b.WriteString(style.Render(strings.Repeat(string(blocks[idx]), barW)))
			default:
				b.WriteString(blank.Render(strings.Repeat(" ", barW)))
			}
		}
		b.WriteString("\n")
	}

	axisLen := len(values) * barW
	b.WriteString(axisStyle.Render(strings.Repeat(" ", yLabelW) + "└" + strings.Repeat("─", axisLen)))

	if len(labels) == len(values) && len(labels) > 0 {
		first, last := labels[0], labels[len(labels)-1]
		gap := axisLen - len(first) - len(last)
		if gap > 0 {
			b.WriteString("\n")
			b.WriteString(axisStyle.Render(strings.Repeat(" ", yLabelW+1) + first + strings.Repeat(" ", gap) + last))
		}
	}

	return b.String()
}

func bounds(values []float64) (lo, hi float64) {
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

func formatChartLabel(v float64) string {
	a := math.Abs(v)
	switch {
	case a >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case a >= 1e3:
		if a == math.Trunc(a/1e3)*1e3 {
			return fmt.Sprintf("%.0fk", v/1e3)
		}
		return fmt.Sprintf("%.1fk", v/1e3)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}
