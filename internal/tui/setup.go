package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/runway/internal/config"
	"github.com/theirongolddev/runway/internal/date"
	"github.com/theirongolddev/runway/internal/recurrence"
	"github.com/theirongolddev/runway/internal/source"
	"github.com/theirongolddev/runway/internal/store"
	"github.com/theirongolddev/runway/internal/tui/theme"
)

// SetupValues holds the answers collected by the setup form.
type SetupValues struct {
	Balance  string // blank keeps the stored balance
	Currency string
	Months   int
	PayDays  int
	Mode     string
	Theme    string
}

// SetupValuesFrom seeds the form with the current configuration.
func SetupValuesFrom(cfg config.Config) SetupValues {
	return SetupValues{
		Currency: config.GetCurrency(cfg),
		Months:   cfg.Schedule.MonthsToProject,
		PayDays:  cfg.Schedule.PayPeriodDays,
		Mode:     cfg.Recurrence.Mode,
		Theme:    cfg.Appearance.Theme,
	}
}

// NewSetupForm builds the first-run form. Answers are written to vals.
func NewSetupForm(vals *SetupValues) *huh.Form {
	themes := make([]huh.Option[string], len(theme.All))
	for i, th := range theme.All {
		themes[i] = huh.NewOption(th.Name, th.Name)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to runway").
				Description("A few answers and your forecast is ready.\nRun `runway setup` anytime to change them."),
			huh.NewInput().
				Title("Current account balance").
				Description("What the account holds today. Leave blank to keep the stored balance.").
				Placeholder("1,250.00").
				Value(&vals.Balance).
				Validate(validateBalance),
			huh.NewInput().
				Title("Currency").
				Description("ISO 4217 code used when printing amounts.").
				Value(&vals.Currency).
				Validate(validateCurrency),
		),
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("How far ahead to project").
				Options(
					huh.NewOption("1 month", 1),
					huh.NewOption("3 months", 3),
					huh.NewOption("6 months", 6),
					huh.NewOption("12 months", 12),
				).
				Value(&vals.Months),
			huh.NewSelect[int]().
				Title("Pay period").
				Options(
					huh.NewOption("Weekly (7 days)", 7),
					huh.NewOption("Every two weeks (14 days)", 14),
					huh.NewOption("Every four weeks (28 days)", 28),
				).
				Value(&vals.PayDays),
			huh.NewSelect[string]().
				Title("Recurring transactions").
				Options(
					huh.NewOption("Use the schedule on each transaction", recurrence.ModeScheduled.String()),
					huh.NewOption("Infer cadence from history", recurrence.ModeInferred.String()),
				).
				Value(&vals.Mode),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themes...).
				Value(&vals.Theme),
		),
	).WithShowHelp(false)
}

func validateBalance(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	_, err := source.ParseAmount(s)
	return err
}

func validateCurrency(s string) error {
	s = strings.TrimSpace(s)
	if len(s) != 3 {
		return fmt.Errorf("expected a three-letter code, got %q", s)
	}
	return nil
}

// Apply copies the answers into cfg.
func (v SetupValues) Apply(cfg *config.Config) {
	cfg.General.Currency = strings.ToUpper(strings.TrimSpace(v.Currency))
	if v.Months > 0 {
		cfg.Schedule.MonthsToProject = v.Months
	}
	if v.PayDays > 0 {
		cfg.Schedule.PayPeriodDays = v.PayDays
	}
	if v.Mode != "" {
		cfg.Recurrence.Mode = v.Mode
	}
	if v.Theme != "" {
		cfg.Appearance.Theme = v.Theme
	}
}

// StartingBalance parses the balance answer. ok is false when it was left
// blank.
func (v SetupValues) StartingBalance() (amount decimal.Decimal, ok bool, err error) {
	if strings.TrimSpace(v.Balance) == "" {
		return decimal.Zero, false, nil
	}
	amount, err = source.ParseAmount(v.Balance)
	if err != nil {
		return decimal.Zero, false, err
	}
	return amount, true, nil
}

// SaveSetup writes the answers to the config file and, when a balance was
// given, records it in the store as of today.
func SaveSetup(v SetupValues, configPath, dbPath string, today date.Date) error {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		cfg = config.DefaultConfig()
	}
	v.Apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.SaveFile(configPath, cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	theme.SetActive(cfg.Appearance.Theme)

	amount, ok, err := v.StartingBalance()
	if err != nil || !ok {
		return err
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()
	return st.SetBalance(amount, today)
}
