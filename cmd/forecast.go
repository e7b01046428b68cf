package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/pipeline"
)

var (
	flagForecastHistory bool
	flagForecastLimit   int
	flagForecastJSON    bool
	flagForecastDetail  bool
)

var forecastCmd = &cobra.Command{
	Use:     "forecast",
	Aliases: []string{"daily"},
	Short:   "Day-by-day balance projection",
	RunE:    runForecast,
}

func init() {
	forecastCmd.Flags().BoolVar(&flagForecastHistory, "history", false, "Include days before today")
	forecastCmd.Flags().IntVarP(&flagForecastLimit, "limit", "l", 31, "Max days to show (0 for all)")
	forecastCmd.Flags().BoolVar(&flagForecastJSON, "json", false, "Print the projection as JSON")
	forecastCmd.Flags().BoolVar(&flagForecastDetail, "detail", false, "List each day's transactions")
	rootCmd.AddCommand(forecastCmd)
}

func runForecast(cmd *cobra.Command, _ []string) error {
	p, err := loadForecast(cmd.Context())
	if err != nil {
		return err
	}

	days := pipeline.FilterDays(p.result, p.today, flagForecastHistory, flagForecastLimit)

	if flagForecastJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Summary model.Summary           `json:"summary"`
			Periods []model.DailyProjection `json:"periods"`
		}{p.summary, days})
	}

	if len(days) == 0 {
		fmt.Println("\n  No days in the projection window.")
		return nil
	}

	cur := p.currency()
	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("DAILY FORECAST  %s to %s", days[0].Date, days[len(days)-1].Date)))
	fmt.Println()

	rows := make([][]string, 0, len(days))
	for _, dp := range days {
		rows = append(rows, forecastRow(dp, cur))
		if flagForecastDetail {
			for _, tx := range dp.Transactions {
				rows = append(rows, transactionDetailRow(tx, cur))
			}
		}
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Date", "Day", "Start", "In", "Out", "End", "Safe", "Save", "Next"},
		Rows:    rows,
		Amounts: []int{2, 3, 4, 5, 6, 7},
	}))

	if n := len(p.result.Periods); n > 0 && days[len(days)-1].Date != p.result.Periods[n-1].Date {
		fmt.Println(cli.RenderMuted(fmt.Sprintf("  %d more days through %s; use --limit 0 to show all",
			p.result.Periods[n-1].Date.Sub(days[len(days)-1].Date), p.result.Periods[n-1].Date)))
	}
	fmt.Println()
	return nil
}

func forecastRow(dp model.DailyProjection, cur string) []string {
	day := dp.Date.String()
	if dp.IsHistorical {
		day = cli.RenderMuted(day)
	}

	end := cli.FormatMoney(dp.EndingBalance, cur)
	if dp.EndingBalance.IsNegative() {
		end = cli.RenderAmount(dp.EndingBalance, end)
	}

	safe, save, next := "-", "-", "-"
	if !dp.IsHistorical {
		safe = cli.FormatMoney(dp.SafeToSpend, cur)
		save = cli.FormatMoney(dp.SafeToSave, cur)
		next = fmt.Sprintf("%dd", dp.DaysUntilNextIncome)
	}

	return []string{
		day,
		cli.FormatDayOfWeek(int(dp.Date.Weekday())),
		cli.FormatMoney(dp.StartingBalance, cur),
		cli.FormatSigned(dp.TotalIncome, cur),
		cli.FormatSigned(dp.TotalExpenses.Neg(), cur),
		end,
		safe,
		save,
		next,
	}
}

func transactionDetailRow(tx model.Transaction, cur string) []string {
	in, out := tx.Flow()
	return []string{
		"", "",
		cli.RenderMuted("  " + tx.Name),
		cli.FormatSigned(in, cur),
		cli.FormatSigned(out.Neg(), cur),
		cli.RenderMuted(string(tx.Type)),
		"", "", "",
	}
}
