package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/runway/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}
	cfg := s.cfg

	fmt.Printf("  Config file: %s\n", flagConfig)
	if _, err := os.Stat(flagConfig); err == nil {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Printf("  Database:    %s\n", flagDB)
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Currency:       %s\n", config.GetCurrency(cfg))
	if cfg.General.StatementsDir != "" {
		fmt.Printf("    Statements dir: %s\n", cfg.General.StatementsDir)
	} else {
		fmt.Println("    Statements dir: not configured")
	}
	fmt.Println()

	fmt.Println("  [Schedule]")
	fmt.Printf("    Months to project:  %d\n", cfg.Schedule.MonthsToProject)
	fmt.Printf("    Pay period days:    %d\n", cfg.Schedule.PayPeriodDays)
	if cfg.Schedule.AveragePaycheckAmount > 0 {
		fmt.Printf("    Average paycheck:   %.2f\n", cfg.Schedule.AveragePaycheckAmount)
	}
	fmt.Printf("    Safety cushion:     %d days\n", cfg.Schedule.SafetyCushionDays)
	fmt.Println()

	fmt.Println("  [Recurrence]")
	fmt.Printf("    Mode: %s\n", s.mode)
	fmt.Println()

	fmt.Println("  [Safe spend]")
	fmt.Printf("    Spend ratio:    %.2f\n", cfg.SafeSpend.SpendRatio)
	fmt.Printf("    Lookahead days: %d\n", cfg.SafeSpend.LookaheadDays)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:  %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Interval: %ds\n", cfg.Daemon.IntervalSec)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  Run `runway setup` to reconfigure.")
	return nil
}
