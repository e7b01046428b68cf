package pipeline

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/runway/internal/date"
	"github.com/theirongolddev/runway/internal/forecast"
	"github.com/theirongolddev/runway/internal/ledger"
	"github.com/theirongolddev/runway/internal/logger"
	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/recurrence"
	"github.com/theirongolddev/runway/internal/source"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testInput() forecast.Input {
	cfg := model.DefaultScheduleConfig()
	cfg.MonthsToProject = 1
	return forecast.Input{
		Transactions: []model.Transaction{
			{
				ID: "rent", Name: "Rent", Amount: dec("1500"), Date: date.MustParse("2025-03-01"),
				Type: model.TypeBill, Recurring: true,
				Schedule: &model.Schedule{Frequency: model.FrequencyMonthly, Interval: 1},
			},
			{
				ID: "salary", Name: "Salary", Amount: dec("2100"), Date: date.MustParse("2025-03-07"),
				Type: model.TypePaycheck, Recurring: true,
				Schedule: &model.Schedule{Frequency: model.FrequencyBiweekly, Interval: 1},
			},
			{
				ID: "coffee", Name: "Coffee", Amount: dec("4.50"), Date: date.MustParse("2025-03-12"),
				Type: model.TypeExpense,
			},
		},
		StartingBalance: dec("1000"),
		Config:          cfg,
		Today:           date.MustParse("2025-03-10"),
		Mode:            recurrence.ModeScheduled,
		Params:          ledger.DefaultParams(),
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(testInput()); err != nil {
		t.Fatalf("Validate(good) = %v", err)
	}

	in := testInput()
	in.Transactions = append(in.Transactions,
		model.Transaction{ID: "rent", Name: "Dup", Amount: dec("1"), Date: date.MustParse("2025-03-02"), Type: model.TypeBill},
		model.Transaction{ID: "bad", Name: "Bad", Amount: dec("1"), Date: date.MustParse("2025-03-02"), Type: "gift"},
	)
	err := Validate(in)
	if !errors.Is(err, source.ErrInvalidTransaction) {
		t.Fatalf("Validate = %v, want ErrInvalidTransaction", err)
	}
	if !strings.Contains(err.Error(), `duplicate id "rent"`) || !strings.Contains(err.Error(), `unknown type "gift"`) {
		t.Errorf("Validate = %v, want both problems", err)
	}
}

func TestForecast_RejectsInvalidInput(t *testing.T) {
	in := testInput()
	in.Transactions[0].Name = ""

	res, err := Forecast(context.Background(), in, nil)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if len(res.Periods) != 0 {
		t.Errorf("partial result with %d periods", len(res.Periods))
	}
}

func TestForecast_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Forecast(ctx, testInput(), nil); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestForecast_MatchesProject(t *testing.T) {
	in := testInput()
	got, err := Forecast(context.Background(), in, nil)
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if want := forecast.Project(in); !reflect.DeepEqual(got, want) {
		t.Error("Forecast differs from forecast.Project")
	}
	if !got.FinalBalance.Equal(dec("3695.5")) {
		t.Errorf("FinalBalance = %s, want 3695.5", got.FinalBalance)
	}
}

func TestForecast_MemoAndLogging(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := logger.WithContext(context.Background(), logger.NewWithWriter(buf))
	memo := NewMemo(4)

	a, err := Forecast(ctx, testInput(), memo)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Forecast(ctx, testInput(), memo)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("memoized result differs")
	}
	if memo.Hits() != 1 || memo.Len() != 1 {
		t.Errorf("memo hits/len = %d/%d, want 1/1", memo.Hits(), memo.Len())
	}

	out := buf.String()
	for _, want := range []string{`"message":"projecting"`, `"message":"recurring group"`, `"memo_hit":true`, `"transactions":3`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s", want)
		}
	}
}
