package pipeline

import (
	"testing"

	"github.com/theirongolddev/runway/internal/date"
	"github.com/theirongolddev/runway/internal/forecast"
	"github.com/theirongolddev/runway/internal/model"
)

func TestSummarize(t *testing.T) {
	in := testInput()
	res := forecast.Project(in)

	s := Summarize(res, in.Today, in.Config)

	if !s.Balance.Equal(dec("1000")) {
		t.Errorf("Balance = %s, want 1000", s.Balance)
	}
	if !s.SafeToSpend.Equal(dec("796.4")) {
		t.Errorf("SafeToSpend = %s, want 796.4", s.SafeToSpend)
	}
	if s.DaysUntilNextIncome != 11 {
		t.Errorf("DaysUntilNextIncome = %d, want 11", s.DaysUntilNextIncome)
	}
	if s.NextIncomeDate != date.MustParse("2025-03-21") || !s.NextIncomeAmount.Equal(dec("2100")) {
		t.Errorf("next income = %s %s, want 2025-03-21 2100", s.NextIncomeDate, s.NextIncomeAmount)
	}
	if !s.LowestBalance.Equal(dec("995.5")) || s.LowestDate != date.MustParse("2025-03-12") {
		t.Errorf("lowest = %s on %s, want 995.5 on 2025-03-12", s.LowestBalance, s.LowestDate)
	}
	if !s.FinalBalance.Equal(dec("3695.5")) || s.HorizonEnd != date.MustParse("2025-04-10") {
		t.Errorf("final = %s on %s", s.FinalBalance, s.HorizonEnd)
	}
	if !s.ProjectedIncome.Equal(dec("4200")) || !s.ProjectedExpenses.Equal(dec("1504.5")) {
		t.Errorf("projected in/out = %s/%s, want 4200/1504.5", s.ProjectedIncome, s.ProjectedExpenses)
	}
	// 1504.50 over 31 future days
	if !s.AverageDailyExpense.Equal(dec("48.53")) {
		t.Errorf("AverageDailyExpense = %s, want 48.53", s.AverageDailyExpense)
	}
	if !s.CushionTarget.Equal(dec("339.71")) {
		t.Errorf("CushionTarget = %s, want 339.71", s.CushionTarget)
	}
	if !s.ExpectedPaycheck.Equal(dec("2100")) {
		t.Errorf("ExpectedPaycheck = %s, want 2100", s.ExpectedPaycheck)
	}
	if s.DaysBelowZero != 0 {
		t.Errorf("DaysBelowZero = %d, want 0", s.DaysBelowZero)
	}
}

func TestSummarize_PaycheckFallback(t *testing.T) {
	in := testInput()
	in.Transactions = in.Transactions[:1]
	in.Config.AveragePaycheckAmount = dec("1800")

	s := Summarize(forecast.Project(in), in.Today, in.Config)
	if !s.ExpectedPaycheck.Equal(dec("1800")) {
		t.Errorf("ExpectedPaycheck = %s, want fallback 1800", s.ExpectedPaycheck)
	}
	if !s.NextIncomeDate.IsZero() {
		t.Errorf("NextIncomeDate = %s, want zero", s.NextIncomeDate)
	}
	if s.DaysBelowZero == 0 {
		t.Error("rent without income should drive the balance below zero")
	}
}

func TestFilterDays(t *testing.T) {
	in := testInput()
	res := forecast.Project(in)

	days := FilterDays(res, in.Today, false, 5)
	if len(days) != 5 || days[0].Date != in.Today {
		t.Fatalf("days = %d starting %s", len(days), days[0].Date)
	}
	all := FilterDays(res, in.Today, true, 0)
	if len(all) != len(res.Periods) {
		t.Errorf("with history = %d, want %d", len(all), len(res.Periods))
	}
}

func TestUpcoming(t *testing.T) {
	in := testInput()
	res := forecast.Project(in)

	up := Upcoming(res, in.Today, 3)
	want := []string{"2025-03-12", "2025-03-21", "2025-04-01"}
	if len(up) != len(want) {
		t.Fatalf("Upcoming = %d days, want %d", len(up), len(want))
	}
	for i, w := range want {
		if up[i].Date.String() != w {
			t.Errorf("Upcoming[%d] = %s, want %s", i, up[i].Date, w)
		}
	}
}

func TestBreakdown(t *testing.T) {
	in := testInput()
	res := forecast.Project(in)

	got := Breakdown(res, in.Today, date.MustParse("2025-04-10"))
	if len(got) != 3 {
		t.Fatalf("Breakdown = %d rows, want 3: %+v", len(got), got)
	}
	if got[0].Name != "Salary" || got[0].Count != 2 || !got[0].Total.Equal(dec("4200")) {
		t.Errorf("row 0 = %+v", got[0])
	}
	if got[1].Name != "Rent" || got[1].Type != model.TypeBill || !got[1].Total.Equal(dec("1500")) {
		t.Errorf("row 1 = %+v", got[1])
	}
	if got[2].Name != "Coffee" || !got[2].Total.Equal(dec("4.5")) {
		t.Errorf("row 2 = %+v", got[2])
	}
}
