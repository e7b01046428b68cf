// Package model defines domain types for runway transactions and projections.
package model

import (
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/runway/internal/date"
)

// Type classifies a transaction and decides its sign convention.
type Type string

const (
	TypeBill             Type = "bill"
	TypePaycheck         Type = "paycheck"
	TypeInternalTransfer Type = "internal_transfer"
	TypeIncome           Type = "income"
	TypeExpense          Type = "expense"
	TypeOther            Type = "other"
)

// Types lists every known transaction type.
var Types = []Type{TypeBill, TypePaycheck, TypeInternalTransfer, TypeIncome, TypeExpense, TypeOther}

// Valid reports whether t is one of the known types.
func (t Type) Valid() bool {
	for _, k := range Types {
		if t == k {
			return true
		}
	}
	return false
}

// Frequency is the cadence hint carried by a recurring transaction.
type Frequency string

const (
	FrequencyWeekly    Frequency = "weekly"
	FrequencyBiweekly  Frequency = "biweekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyYearly    Frequency = "yearly"
	FrequencyPayPeriod Frequency = "pay_period" // uses ScheduleConfig.PayPeriodDays
)

// Frequencies lists every known frequency.
var Frequencies = []Frequency{FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly, FrequencyYearly, FrequencyPayPeriod}

// Valid reports whether f is one of the known frequencies.
func (f Frequency) Valid() bool {
	for _, k := range Frequencies {
		if f == k {
			return true
		}
	}
	return false
}

// Schedule is an optional repetition hint. Interval multiplies the frequency;
// zero is treated as 1.
type Schedule struct {
	Frequency Frequency `json:"frequency"`
	Interval  int       `json:"interval,omitempty"`
}

// Transaction is one dated money movement. Amount is a magnitude whose
// direction comes from Type, except for internal transfers where the sign
// of Amount is the direction.
type Transaction struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	Date      date.Date       `json:"date"`
	Type      Type            `json:"type"`
	Recurring bool            `json:"recurring"`
	Schedule  *Schedule       `json:"schedule,omitempty"`
}

// Flow splits the transaction into the income and expense it contributes to
// its day. At most one of the two is non-zero; TypeOther contributes neither.
func (t Transaction) Flow() (income, expense decimal.Decimal) {
	income, expense = decimal.Zero, decimal.Zero
	switch t.Type {
	case TypePaycheck, TypeIncome:
		income = t.Amount.Abs()
	case TypeBill, TypeExpense:
		expense = t.Amount.Abs()
	case TypeInternalTransfer:
		if t.Amount.IsPositive() {
			income = t.Amount
		} else if t.Amount.IsNegative() {
			expense = t.Amount.Abs()
		}
	}
	return income, expense
}

// IsIncome reports whether the transaction adds money to the balance.
func (t Transaction) IsIncome() bool {
	in, _ := t.Flow()
	return in.IsPositive()
}

// IsExpense reports whether the transaction takes money from the balance.
func (t Transaction) IsExpense() bool {
	_, out := t.Flow()
	return out.IsPositive()
}
