package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/model"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Balance, safe-to-spend, and horizon outlook",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	p, err := loadForecast(cmd.Context())
	if err != nil {
		return err
	}

	cur := p.currency()
	s := p.summary

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("RUNWAY  %s  +%dmo", s.Today, p.input.Config.MonthsToProject)))
	fmt.Println()

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    summaryRows(s, p.asOf.String(), cur),
		Amounts: []int{1},
	}))

	if len(p.result.Periods) > 1 {
		var values []float64
		for _, dp := range p.result.Periods {
			if dp.Date.Before(s.Today) {
				continue
			}
			f, _ := dp.EndingBalance.Float64()
			values = append(values, f)
		}
		fmt.Println()
		fmt.Printf("  Balance  %s\n", cli.RenderSparkline(values))
	}

	if s.DaysBelowZero > 0 {
		fmt.Println()
		fmt.Println(cli.RenderWarning(fmt.Sprintf("balance goes negative on %s ahead (lowest %s on %s)",
			cli.FormatDays(s.DaysBelowZero), cli.FormatMoney(s.LowestBalance, cur), s.LowestDate)))
	} else if s.CushionTarget.IsPositive() && s.LowestBalance.LessThan(s.CushionTarget) {
		fmt.Println()
		fmt.Println(cli.RenderWarning(fmt.Sprintf("lowest balance %s is under the %s cushion",
			cli.FormatMoney(s.LowestBalance, cur), cli.FormatMoney(s.CushionTarget, cur))))
	}
	fmt.Println()
	return nil
}

func summaryRows(s model.Summary, asOf, cur string) [][]string {
	nextIncome := "none before horizon"
	if !s.NextIncomeDate.IsZero() {
		nextIncome = fmt.Sprintf("%s on %s (in %s)",
			cli.FormatMoney(s.NextIncomeAmount, cur), s.NextIncomeDate, cli.FormatDays(s.NextIncomeDate.Sub(s.Today)))
	}

	rows := [][]string{
		{"Balance", cli.RenderAmount(s.Balance, cli.FormatMoney(s.Balance, cur))},
		{"Recorded", asOf},
		{"---"},
		{"Safe to spend", cli.FormatMoney(s.SafeToSpend, cur)},
		{"Safe to save", cli.FormatMoney(s.SafeToSave, cur)},
		{"Days to income", cli.FormatDays(s.DaysUntilNextIncome)},
		{"Next income", nextIncome},
	}
	if s.ExpectedPaycheck.IsPositive() {
		rows = append(rows, []string{"Usual paycheck", cli.FormatMoney(s.ExpectedPaycheck, cur)})
	}
	rows = append(rows,
		[]string{"---"},
		[]string{"Income ahead", cli.FormatMoney(s.ProjectedIncome, cur)},
		[]string{"Expenses ahead", cli.FormatMoney(s.ProjectedExpenses, cur)},
		[]string{"Avg expense/day", cli.FormatMoney(s.AverageDailyExpense, cur)},
		[]string{"---"},
		[]string{"Lowest balance", fmt.Sprintf("%s on %s",
			cli.RenderAmount(s.LowestBalance, cli.FormatMoney(s.LowestBalance, cur)), s.LowestDate)},
		[]string{"Final balance", fmt.Sprintf("%s on %s",
			cli.RenderAmount(s.FinalBalance, cli.FormatMoney(s.FinalBalance, cur)), s.HorizonEnd)},
		[]string{"Change", cli.FormatDelta(s.FinalBalance, s.Balance, cur)},
	)
	return rows
}
