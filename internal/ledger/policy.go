package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/runway/internal/date"
)

// DayClass places a day relative to today.
type DayClass int

const (
	Historical DayClass = iota // before today, informational only
	Today                      // balance is the live balance as given
	Future                     // projected from the previous day's ending balance
)

func (c DayClass) String() string {
	switch c {
	case Historical:
		return "historical"
	case Today:
		return "today"
	default:
		return "future"
	}
}

// Classify returns the class of day d when the current day is today.
func Classify(d, today date.Date) DayClass {
	switch d.Compare(today) {
	case -1:
		return Historical
	case 0:
		return Today
	default:
		return Future
	}
}

// ApplyBalancePolicy returns the starting and ending balance of one day.
//
// carry is the previous day's ending balance (the live balance for the
// first day of the window) and live is the balance supplied by the caller.
// The live balance already includes everything posted today, so today's
// income and expenses are reported but never applied: today starts and ends
// on live. Historical and future days both roll carry forward, but only the
// future walk is meaningful because it restarts from live.
func ApplyBalancePolicy(class DayClass, carry, live, income, expenses decimal.Decimal) (start, end decimal.Decimal) {
	if class == Today {
		return live, live
	}
	return carry, carry.Add(income).Sub(expenses)
}
