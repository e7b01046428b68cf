package cli

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		amount   string
		currency string
		want     string
	}{
		{"0", "USD", "$0.00"},
		{"4.5", "USD", "$4.50"},
		{"1234.567", "USD", "$1,234.57"},
		{"-1500", "usd", "-$1,500.00"},
		{"1000000", "USD", "$1,000,000.00"},
		{"12.5", "XYZ", "12.50 XYZ"},
	}
	for _, tt := range tests {
		got := FormatMoney(decimal.RequireFromString(tt.amount), tt.currency)
		if got != tt.want {
			t.Errorf("FormatMoney(%s, %s) = %q, want %q", tt.amount, tt.currency, got, tt.want)
		}
	}
}

func TestFormatSigned(t *testing.T) {
	tests := map[string]string{
		"0":     "-",
		"2100":  "+$2,100.00",
		"-82.1": "-$82.10",
	}
	for in, want := range tests {
		if got := FormatSigned(decimal.RequireFromString(in), "USD"); got != want {
			t.Errorf("FormatSigned(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatDelta(t *testing.T) {
	d := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }
	if got := FormatDelta(d("3700"), d("1000"), "USD"); got != "+$2,700.00" {
		t.Errorf("FormatDelta up = %q", got)
	}
	if got := FormatDelta(d("1000"), d("1000"), "USD"); got != "$0.00" {
		t.Errorf("FormatDelta flat = %q", got)
	}
}

func TestFormatNumber(t *testing.T) {
	tests := map[int64]string{
		0:        "0",
		999:      "999",
		1000:     "1,000",
		-1234567: "-1,234,567",
	}
	for in, want := range tests {
		if got := FormatNumber(in); got != want {
			t.Errorf("FormatNumber(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatDays(t *testing.T) {
	if got := FormatDays(1); got != "1 day" {
		t.Errorf("FormatDays(1) = %q", got)
	}
	if got := FormatDays(14); got != "14 days" {
		t.Errorf("FormatDays(14) = %q", got)
	}
}

func TestFormatDayOfWeek(t *testing.T) {
	if got := FormatDayOfWeek(1); got != "Mon" {
		t.Errorf("FormatDayOfWeek(1) = %q", got)
	}
	if got := FormatDayOfWeek(9); got != "???" {
		t.Errorf("FormatDayOfWeek(9) = %q", got)
	}
}
