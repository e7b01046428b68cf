package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/source"
	"github.com/theirongolddev/runway/internal/store"
)

var flagBalanceAsOf string

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show the recorded starting balance",
	RunE:  runBalance,
}

var balanceSetCmd = &cobra.Command{
	Use:   "set <amount>",
	Short: "Record the live balance",
	Args:  cobra.ExactArgs(1),
	RunE:  runBalanceSet,
}

func init() {
	balanceSetCmd.Flags().StringVar(&flagBalanceAsOf, "as-of", "", "Day the balance was observed (default today)")
	balanceCmd.AddCommand(balanceSetCmd)
	rootCmd.AddCommand(balanceCmd)
}

func runBalance(_ *cobra.Command, _ []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	amount, asOf, err := st.Balance()
	if errors.Is(err, store.ErrNoBalance) {
		fmt.Println("  No starting balance set.")
		fmt.Println("  Record one with `runway balance set <amount>`.")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("  Balance: %s\n", cli.RenderAmount(amount, cli.FormatMoney(amount, s.currency())))
	fmt.Printf("  As of:   %s", asOf)
	if age := s.today.Sub(asOf); age > 0 {
		fmt.Printf(" (%s ago)", cli.FormatDays(age))
	}
	fmt.Println()
	return nil
}

func runBalanceSet(_ *cobra.Command, args []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}
	amount, err := source.ParseAmount(args[0])
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	asOf := s.today
	if flagBalanceAsOf != "" {
		if asOf, err = source.ParseDate(flagBalanceAsOf); err != nil {
			return fmt.Errorf("--as-of: %w", err)
		}
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	if err := st.SetBalance(amount, asOf); err != nil {
		return fmt.Errorf("saving balance: %w", err)
	}
	fmt.Printf("  Balance set to %s as of %s\n", cli.FormatMoney(amount, s.currency()), asOf)
	return nil
}
