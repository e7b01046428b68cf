package theme

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestByName(t *testing.T) {
	if got := ByName("tokyo-night").Name; got != "tokyo-night" {
		t.Errorf("ByName(tokyo-night) = %s", got)
	}
	if got := ByName("nope").Name; got != FlexokiDark.Name {
		t.Errorf("ByName(nope) = %s, want %s", got, FlexokiDark.Name)
	}
}

func TestFlowColor(t *testing.T) {
	th := FlexokiDark
	tests := []struct {
		amount string
		want   string
	}{
		{"12.50", string(th.Income)},
		{"-3", string(th.Expense)},
		{"0", string(th.TextMuted)},
	}
	for _, tt := range tests {
		if got := th.FlowColor(decimal.RequireFromString(tt.amount)); string(got) != tt.want {
			t.Errorf("FlowColor(%s) = %s, want %s", tt.amount, got, tt.want)
		}
	}
	if got := th.BalanceColor(decimal.NewFromInt(-1)); got != th.Warning {
		t.Errorf("BalanceColor(-1) = %s, want warning", got)
	}
}
