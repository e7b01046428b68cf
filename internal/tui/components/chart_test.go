package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestResample(t *testing.T) {
	vals := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	got := Resample(vals, 5)
	want := []float64{2, 4, 6, 8, 10}
	if len(got) != len(want) {
		t.Fatalf("Resample = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Resample = %v, want %v", got, want)
			break
		}
	}
	if got := Resample(vals, 20); len(got) != len(vals) {
		t.Errorf("Resample to a larger size changed length to %d", len(got))
	}
}

func TestSparklineFlatSeries(t *testing.T) {
	line := Sparkline([]float64{5, 5, 5}, lipgloss.Color("2"))
	if !strings.Contains(line, "▁▁▁") {
		t.Errorf("flat sparkline = %q", line)
	}
	if Sparkline(nil, lipgloss.Color("2")) != "" {
		t.Error("empty sparkline should render nothing")
	}
}

func TestBalanceChartHeight(t *testing.T) {
	vals := []float64{1000, 1000, 3100, 1600, -200, 3700}
	labels := []string{"Mar 10", "", "", "", "", "Apr 10"}
	chart := BalanceChart(vals, labels, lipgloss.Color("2"), 60, 6)

	lines := strings.Split(chart, "\n")
	// six bar rows, the axis, and the label row
	if len(lines) != 8 {
		t.Errorf("chart lines = %d, want 8", len(lines))
	}
	if !strings.Contains(chart, "Apr 10") {
		t.Error("chart missing last label")
	}
	if !strings.Contains(lines[0], "3.7k") {
		t.Errorf("top label row = %q", lines[0])
	}
}

func TestFormatChartLabel(t *testing.T) {
	tests := map[float64]string{
		0:       "0",
		950:     "950",
		3000:    "3k",
		3700:    "3.7k",
		-1500:   "-1.5k",
		2500000: "2.5M",
	}
	for v, want := range tests {
		if got := formatChartLabel(v); got != want {
			t.Errorf("formatChartLabel(%v) = %q, want %q", v, got, want)
		}
	}
}
