// Package ledger walks a calendar window day by day and computes balances
// and safe-spend guidance.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/runway/internal/date"
	"github.com/theirongolddev/runway/internal/model"
)

// historyMonths is how far before today the window always reaches.
const historyMonths = 3

// Window is the inclusive range of days to build, with today inside it.
type Window struct {
	Start date.Date
	Today date.Date
	End   date.Date
}

// Days returns the number of days in the window.
func (w Window) Days() int {
	if w.End.Before(w.Start) {
		return 0
	}
	return w.End.Sub(w.Start) + 1
}

// NewWindow starts at the earlier of three months before today and the
// earliest transaction, and ends monthsToProject months after today. A
// non-positive horizon ends the window on today.
func NewWindow(txns []model.Transaction, today date.Date, monthsToProject int) Window {
	start := today.AddMonths(-historyMonths)
	for _, tx := range txns {
		start = date.Min(start, tx.Date)
	}
	end := today
	if monthsToProject > 0 {
		end = today.AddMonths(monthsToProject)
	}
	return Window{Start: start, Today: today, End: end}
}

// Bucket holds the transactions of one day and their totals.
type Bucket struct {
	Transactions []model.Transaction
	Income       decimal.Decimal
	Expenses     decimal.Decimal
	HasIncome    bool
}

// Index maps each day to its bucket. Days without transactions are absent.
type Index map[date.Date]*Bucket

// NewIndex buckets txns by date, keeping input order inside a day.
func NewIndex(txns []model.Transaction) Index {
	idx := make(Index)
	for _, tx := range txns {
		b, ok := idx[tx.Date]
		if !ok {
			b = &Bucket{Income: decimal.Zero, Expenses: decimal.Zero}
			idx[tx.Date] = b
		}
		in, out := tx.Flow()
		b.Transactions = append(b.Transactions, tx)
		b.Income = b.Income.Add(in)
		b.Expenses = b.Expenses.Add(out)
		if in.IsPositive() {
			b.HasIncome = true
		}
	}
	return idx
}

// Build returns one projection per day of w. Days before w.Today replay the
// balance informationally, today is pinned to startingBalance, and later
// days walk forward from it. See ApplyBalancePolicy.
func Build(txns []model.Transaction, startingBalance decimal.Decimal, w Window, p Params) model.Result {
	idx := NewIndex(txns)

	n := w.Days()
	periods := make([]model.DailyProjection, 0, n)
	carry := startingBalance

	for i := 0; i < n; i++ {
		d := w.Start.Add(i)
		class := Classify(d, w.Today)

		dp := model.DailyProjection{
			Date:          d,
			Transactions:  []model.Transaction{},
			TotalIncome:   decimal.Zero,
			TotalExpenses: decimal.Zero,
			SafeToSpend:   decimal.Zero,
			SafeToSave:    decimal.Zero,
			IsHistorical:  class == Historical,
		}
		if b := idx[d]; b != nil {
			dp.Transactions = b.Transactions
			dp.TotalIncome = b.Income
			dp.TotalExpenses = b.Expenses
		}

		dp.StartingBalance, dp.EndingBalance = ApplyBalancePolicy(class, carry, startingBalance, dp.TotalIncome, dp.TotalExpenses)
		carry = dp.EndingBalance

		if class != Historical {
			est := EstimateSafeSpend(d, dp.EndingBalance, idx, p)
			dp.SafeToSpend = est.SafeToSpend
			dp.SafeToSave = est.SafeToSave
			dp.DaysUntilNextIncome = est.DaysUntilNextIncome
		}

		periods = append(periods, dp)
	}

	final := startingBalance
	if len(periods) > 0 {
		final = periods[len(periods)-1].EndingBalance
	}
	return model.Result{Periods: periods, FinalBalance: final}
}
