package model

import (
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/runway/internal/date"
)

// ScheduleConfig holds the projection settings.
type ScheduleConfig struct {
	MonthsToProject       int             // projection horizon in calendar months
	PayPeriodDays         int             // length of a pay period, used by FrequencyPayPeriod
	AveragePaycheckAmount decimal.Decimal // fallback income estimate for display
	SafetyCushionDays     int             // reserve buffer hint for display
}

// DefaultScheduleConfig returns the settings used when none are configured.
func DefaultScheduleConfig() ScheduleConfig {
	return ScheduleConfig{
		MonthsToProject:   3,
		PayPeriodDays:     14,
		SafetyCushionDays: 7,
	}
}

// DailyProjection holds the ledger for a single calendar day.
type DailyProjection struct {
	Date                date.Date       `json:"date"`
	StartingBalance     decimal.Decimal `json:"starting_balance"`
	Transactions        []Transaction   `json:"transactions"`
	TotalIncome         decimal.Decimal `json:"total_income"`
	TotalExpenses       decimal.Decimal `json:"total_expenses"`
	EndingBalance       decimal.Decimal `json:"ending_balance"`
	SafeToSpend         decimal.Decimal `json:"safe_to_spend"`
	SafeToSave          decimal.Decimal `json:"safe_to_save"`
	DaysUntilNextIncome int             `json:"days_until_next_income"`
	IsHistorical        bool            `json:"is_historical"`
}

// Result is the output of one projection.
type Result struct {
	Periods      []DailyProjection `json:"periods"`
	FinalBalance decimal.Decimal   `json:"final_balance"`
}

// Day returns the projection for d, or false when d is outside the window.
func (r Result) Day(d date.Date) (DailyProjection, bool) {
	if len(r.Periods) == 0 {
		return DailyProjection{}, false
	}
	i := d.Sub(r.Periods[0].Date)
	if i < 0 || i >= len(r.Periods) {
		return DailyProjection{}, false
	}
	return r.Periods[i], true
}
