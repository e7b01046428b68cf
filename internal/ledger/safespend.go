package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/runway/internal/date"
)

// Params tunes the safe-spend estimate.
type Params struct {
	// SpendRatio is the share of the protected balance that is safe to
	// spend; the rest is suggested for saving.
	SpendRatio decimal.Decimal
	// LookaheadDays bounds the search for the next income day.
	LookaheadDays int
}

// DefaultParams returns an 80/20 split with a 30 day lookahead.
func DefaultParams() Params {
	return Params{
		SpendRatio:    decimal.NewFromFloat(0.8),
		LookaheadDays: 30,
	}
}

// withDefaults fills a missing lookahead and bounds SpendRatio to [0, 1].
// A zero SpendRatio is kept: everything left over is suggested for saving.
func (p Params) withDefaults() Params {
	if p.LookaheadDays <= 0 {
		p.LookaheadDays = DefaultParams().LookaheadDays
	}
	if p.SpendRatio.IsNegative() {
		p.SpendRatio = decimal.Zero
	}
	if p.SpendRatio.GreaterThan(decimal.NewFromInt(1)) {
		p.SpendRatio = decimal.NewFromInt(1)
	}
	return p
}

// Estimate is the safe-spend recommendation for one day.
type Estimate struct {
	SafeToSpend         decimal.Decimal
	SafeToSave          decimal.Decimal
	DaysUntilNextIncome int
	UpcomingExpenses    decimal.Decimal
}

// EstimateSafeSpend looks ahead from the day after d until the next income
// day (at most p.LookaheadDays) and holds back the expenses due before it.
// Expenses on the income day itself are left to that day's income.
func EstimateSafeSpend(d date.Date, ending decimal.Decimal, idx Index, p Params) Estimate {
	p = p.withDefaults()

	est := Estimate{
		DaysUntilNextIncome: p.LookaheadDays,
		UpcomingExpenses:    decimal.Zero,
	}
	for offset := 1; offset <= p.LookaheadDays; offset++ {
		b := idx[d.Add(offset)]
		if b == nil {
			continue
		}
		if b.HasIncome {
			est.DaysUntilNextIncome = offset
			break
		}
		est.UpcomingExpenses = est.UpcomingExpenses.Add(b.Expenses)
	}

	safe := ending.Sub(est.UpcomingExpenses)
	one := decimal.NewFromInt(1)
	est.SafeToSpend = decimal.Max(decimal.Zero, safe.Mul(p.SpendRatio))
	est.SafeToSave = decimal.Max(decimal.Zero, safe.Mul(one.Sub(p.SpendRatio)))
	return est
}
