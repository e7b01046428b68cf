// Package forecast combines recorded transactions, synthesized recurrences,
// and the daily ledger into a single projection.
package forecast

import (
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/runway/internal/date"
	"github.com/theirongolddev/runway/internal/ledger"
	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/recurrence"
)

// Input is everything one projection depends on.
type Input struct {
	Transactions    []model.Transaction
	StartingBalance decimal.Decimal
	Config          model.ScheduleConfig
	Today           date.Date
	Mode            recurrence.Mode
	Params          ledger.Params
}

// Project builds the daily projection for in. It does not modify
// in.Transactions and returns the same result for the same input.
func Project(in Input) model.Result {
	w := Window(in)
	return ledger.Build(merge(in, w), in.StartingBalance, w, in.Params)
}

// Window returns the calendar window Project walks for in.
func Window(in Input) ledger.Window {
	return ledger.NewWindow(in.Transactions, in.Today, in.Config.MonthsToProject)
}

// Merge returns the recorded transactions followed by the synthetic
// occurrences that fall between today and the horizon.
func Merge(in Input) []model.Transaction {
	return merge(in, Window(in))
}

func merge(in Input, w ledger.Window) []model.Transaction {
	synthetic := Synthesize(in, w.End)

	all := make([]model.Transaction, 0, len(in.Transactions)+len(synthetic))
	all = append(all, in.Transactions...)
	all = append(all, synthetic...)
	return all
}

// Synthesize expands the recurring groups of in.Transactions from today
// through end.
func Synthesize(in Input, end date.Date) []model.Transaction {
	return recurrence.Expand(in.Transactions,
		recurrence.Window{From: in.Today, To: end},
		recurrence.Options{Mode: in.Mode, PayPeriodDays: in.Config.PayPeriodDays},
	)
}

// Patterns lists the recurring groups recognized in in.Transactions.
func Patterns(in Input) []recurrence.Pattern {
	return recurrence.Detect(in.Transactions,
		recurrence.Options{Mode: in.Mode, PayPeriodDays: in.Config.PayPeriodDays})
}
