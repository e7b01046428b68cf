package cmd

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/runway/internal/config"
	"github.com/theirongolddev/runway/internal/source"
	"github.com/theirongolddev/runway/internal/tui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg, err := config.LoadFile(flagConfig)
	if err != nil {
		cfg = config.DefaultConfig()
	}
	today, err := parseToday(flagToday)
	if err != nil {
		return err
	}

	fmt.Println()
	if dir := cfg.General.StatementsDir; dir != "" {
		if files, _ := source.ScanDir(dir); len(files) > 0 {
			fmt.Printf("  Found %d statements in %s (%d accounts)\n\n",
				len(files), dir, source.CountAccounts(files))
		}
	}

	vals := tui.SetupValuesFrom(cfg)
	if err := tui.NewSetupForm(&vals).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup cancelled, nothing saved.")
			return nil
		}
		return fmt.Errorf("setup form: %w", err)
	}

	if err := tui.SaveSetup(vals, flagConfig, flagDB, today); err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", flagConfig)
	if vals.Balance != "" {
		fmt.Printf("  Balance recorded in %s\n", flagDB)
	}
	fmt.Println("  Run `runway setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
