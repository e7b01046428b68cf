package model

import (
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/runway/internal/date"
)

// Summary holds the headline figures of one projection.
type Summary struct {
	Today               date.Date       `json:"today"`
	Balance             decimal.Decimal `json:"balance"`
	SafeToSpend         decimal.Decimal `json:"safe_to_spend"`
	SafeToSave          decimal.Decimal `json:"safe_to_save"`
	DaysUntilNextIncome int             `json:"days_until_next_income"`

	NextIncomeDate   date.Date       `json:"next_income_date"` // zero when none before the horizon
	NextIncomeAmount decimal.Decimal `json:"next_income_amount"`
	ExpectedPaycheck decimal.Decimal `json:"expected_paycheck"`

	HorizonEnd    date.Date       `json:"horizon_end"`
	FinalBalance  decimal.Decimal `json:"final_balance"`
	LowestBalance decimal.Decimal `json:"lowest_balance"`
	LowestDate    date.Date       `json:"lowest_date"`
	DaysBelowZero int             `json:"days_below_zero"`

	ProjectedIncome     decimal.Decimal `json:"projected_income"`
	ProjectedExpenses   decimal.Decimal `json:"projected_expenses"`
	AverageDailyExpense decimal.Decimal `json:"average_daily_expense"`
	CushionTarget       decimal.Decimal `json:"cushion_target"`
}

// CategoryTotal is the money moved by one name and type over a range of days.
type CategoryTotal struct {
	Name  string          `json:"name"`
	Type  Type            `json:"type"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}
