package pipeline

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/runway/internal/date"
	"github.com/theirongolddev/runway/internal/model"
)

// Summarize computes the headline figures of res as seen from today.
// Projected totals cover the days after today.
func Summarize(res model.Result, today date.Date, cfg model.ScheduleConfig) model.Summary {
	s := model.Summary{
		Today:               today,
		Balance:             decimal.Zero,
		SafeToSpend:         decimal.Zero,
		SafeToSave:          decimal.Zero,
		NextIncomeAmount:    decimal.Zero,
		ExpectedPaycheck:    cfg.AveragePaycheckAmount,
		FinalBalance:        res.FinalBalance,
		LowestBalance:       decimal.Zero,
		ProjectedIncome:     decimal.Zero,
		ProjectedExpenses:   decimal.Zero,
		AverageDailyExpense: decimal.Zero,
		CushionTarget:       decimal.Zero,
	}
	if n := len(res.Periods); n > 0 {
		s.HorizonEnd = res.Periods[n-1].Date
	}

	if dp, ok := res.Day(today); ok {
		s.Balance = dp.EndingBalance
		s.SafeToSpend = dp.SafeToSpend
		s.SafeToSave = dp.SafeToSave
		s.DaysUntilNextIncome = dp.DaysUntilNextIncome
		s.LowestBalance = dp.EndingBalance
		s.LowestDate = today
	}

	var futureDays int
	paychecks := decimal.Zero
	var paycheckCount int64

	for _, dp := range res.Periods {
		if !dp.Date.After(today) {
			continue
		}
		futureDays++
		s.ProjectedIncome = s.ProjectedIncome.Add(dp.TotalIncome)
		s.ProjectedExpenses = s.ProjectedExpenses.Add(dp.TotalExpenses)

		if s.NextIncomeDate.IsZero() && dp.TotalIncome.IsPositive() {
			s.NextIncomeDate = dp.Date
			s.NextIncomeAmount = dp.TotalIncome
		}
		if s.LowestDate.IsZero() || dp.EndingBalance.LessThan(s.LowestBalance) {
			s.LowestBalance = dp.EndingBalance
			s.LowestDate = dp.Date
		}
		if dp.EndingBalance.IsNegative() {
			s.DaysBelowZero++
		}
		for _, tx := range dp.Transactions {
			if tx.Type == model.TypePaycheck {
				paychecks = paychecks.Add(tx.Amount.Abs())
				paycheckCount++
			}
		}
	}

	if futureDays > 0 {
		s.AverageDailyExpense = s.ProjectedExpenses.Div(decimal.NewFromInt(int64(futureDays))).Round(2)
		s.CushionTarget = s.AverageDailyExpense.Mul(decimal.NewFromInt(int64(cfg.SafetyCushionDays)))
	}
	if paycheckCount > 0 {
		s.ExpectedPaycheck = paychecks.Div(decimal.NewFromInt(paycheckCount)).Round(2)
	}
	return s
}

// FilterDays returns the days of res from the given day on, or every day
// when includeHistory is set. limit <= 0 means no limit.
func FilterDays(res model.Result, from date.Date, includeHistory bool, limit int) []model.DailyProjection {
	var out []model.DailyProjection
	for _, dp := range res.Periods {
		if !includeHistory && dp.Date.Before(from) {
			continue
		}
		out = append(out, dp)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// Upcoming returns the first n non-historical days from the given day on that
// carry transactions.
func Upcoming(res model.Result, from date.Date, n int) []model.DailyProjection {
	var out []model.DailyProjection
	for _, dp := range res.Periods {
		if len(out) >= n {
			break
		}
		if dp.IsHistorical || dp.Date.Before(from) || len(dp.Transactions) == 0 {
			continue
		}
		out = append(out, dp)
	}
	return out
}

// Breakdown totals the money moved per name and type over the days from
// since to until, both included. Results are sorted by total, largest first.
func Breakdown(res model.Result, since, until date.Date) []model.CategoryTotal {
	type key struct {
		name string
		typ  model.Type
	}
	totals := make(map[key]*model.CategoryTotal)

	for _, dp := range res.Periods {
		if dp.Date.Before(since) || dp.Date.After(until) {
			continue
		}
		for _, tx := range dp.Transactions {
			in, out := tx.Flow()
			amount := in.Add(out)
			if amount.IsZero() {
				continue
			}
			k := key{strings.ToLower(strings.TrimSpace(tx.Name)), tx.Type}
			ct, ok := totals[k]
			if !ok {
				ct = &model.CategoryTotal{Name: tx.Name, Type: tx.Type, Total: decimal.Zero}
				totals[k] = ct
			}
			ct.Count++
			ct.Total = ct.Total.Add(amount)
		}
	}

	result := make([]model.CategoryTotal, 0, len(totals))
	for _, ct := range totals {
		result = append(result, *ct)
	}
	sort.Slice(result, func(i, j int) bool {
		if c := result[i].Total.Cmp(result[j].Total); c != 0 {
			return c > 0
		}
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].Type < result[j].Type
	})
	return result
}
