package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/forecast"
	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/recurrence"
)

var flagRecurringOccurrences bool

var recurringCmd = &cobra.Command{
	Use:   "recurring",
	Short: "Recurring transactions and their projected occurrences",
	RunE:  runRecurring,
}

func init() {
	recurringCmd.Flags().BoolVar(&flagRecurringOccurrences, "occurrences", false, "List every synthesized occurrence")
	rootCmd.AddCommand(recurringCmd)
}

func runRecurring(cmd *cobra.Command, _ []string) error {
	p, err := loadForecast(cmd.Context())
	if err != nil {
		return err
	}

	patterns := forecast.Patterns(p.input)
	if len(patterns) == 0 {
		fmt.Println("\n  No recurring transactions found.")
		fmt.Println("  Mark a transaction recurring with `runway add --recurring`.")
		return nil
	}

	cur := p.currency()
	end := forecast.Window(p.input).End
	window := recurrence.Window{From: p.today, To: end}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("RECURRING  %s mode, through %s", p.mode, end)))
	fmt.Println()

	rows := make([][]string, 0, len(patterns))
	inferred := false
	for _, pat := range patterns {
		occ := pat.Occurrences(window)
		next := "-"
		if len(occ) > 0 {
			next = occ[0].Date.String()
		}
		cadence := pat.Describe()
		if pat.Inferred {
			cadence += " *"
			inferred = true
		}
		rows = append(rows, []string{
			pat.Name,
			string(pat.Type),
			cli.FormatMoney(pat.Anchor.Amount, cur),
			cadence,
			pat.Anchor.Date.String(),
			next,
			strconv.Itoa(len(occ)),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Name", "Type", "Amount", "Cadence", "Last", "Next", "Ahead"},
		Rows:    rows,
		Amounts: []int{2},
	}))
	if inferred {
		fmt.Println(cli.RenderMuted("  * cadence inferred from transaction history"))
	}

	if flagRecurringOccurrences {
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Synthesized occurrences",
			Headers: []string{"Date", "Name", "Amount", "ID"},
			Rows:    occurrenceRows(forecast.Synthesize(p.input, end), cur),
			Amounts: []int{2},
		}))
	}
	fmt.Println()
	return nil
}

func occurrenceRows(txns []model.Transaction, cur string) [][]string {
	rows := make([][]string, 0, len(txns))
	for _, tx := range txns {
		in, out := tx.Flow()
		rows = append(rows, []string{
			tx.Date.String(),
			tx.Name,
			cli.FormatSigned(in.Sub(out), cur),
			cli.RenderMuted(tx.ID),
		})
	}
	return rows
}
