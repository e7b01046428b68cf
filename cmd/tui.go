package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/runway/internal/date"
	"github.com/theirongolddev/runway/internal/logger"
	"github.com/theirongolddev/runway/internal/tui"
	"github.com/theirongolddev/runway/internal/tui/theme"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}
	theme.SetActive(s.cfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	// a zero day follows the wall clock across midnight
	var today date.Date
	if flagToday != "" {
		today = s.today
	}

	_, statErr := os.Stat(flagConfig)
	app := tui.NewApp(tui.Options{
		DBPath:        flagDB,
		ConfigPath:    flagConfig,
		StatementsDir: s.statementsDir(),
		Today:         today,
		Config:        s.cfg,
		Log:           logger.FromContext(cmd.Context()),
	}, os.IsNotExist(statErr))
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
