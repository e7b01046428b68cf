// Package cmd implements the runway CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/runway/internal/config"
	"github.com/theirongolddev/runway/internal/date"
	"github.com/theirongolddev/runway/internal/forecast"
	"github.com/theirongolddev/runway/internal/logger"
	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/pipeline"
	"github.com/theirongolddev/runway/internal/recurrence"
	"github.com/theirongolddev/runway/internal/store"
)

var (
	flagDB         string
	flagConfig     string
	flagToday      string
	flagMonths     int
	flagMode       string
	flagQuiet      bool
	flagLogLevel   string
	flagStatements string
)

var rootCmd = &cobra.Command{
	Use:   "runway",
	Short: "Daily balance forecast CLI",
	Long:  "Project your balance day by day from recorded and recurring transactions, with safe-to-spend guidance.",
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}
		cmd.SetContext(logger.WithContext(cmd.Context(), log))
		return nil
	},
	RunE:          runSummary,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "  Error: %v\n", err)
		cancel()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", pipeline.DBPath(), "Transaction database path")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", config.ConfigPath(), "Config file path")
	rootCmd.PersistentFlags().StringVar(&flagToday, "today", "", "Override today's date (YYYY-MM-DD)")
	rootCmd.PersistentFlags().IntVarP(&flagMonths, "months", "m", -1, "Months to project (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagMode, "mode", "", "Recurrence mode: scheduled or inferred (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagStatements, "statements", "", "Statements directory (default from config)")
}

func newLogger() (zerolog.Logger, error) {
	lvl, err := logger.ParseLevel(flagLogLevel)
	if err != nil {
		return zerolog.Nop(), err
	}
	if flagQuiet && lvl < zerolog.WarnLevel {
		lvl = zerolog.WarnLevel
	}
	return logger.New(lvl), nil
}

// settings is the effective configuration after flag overrides.
type settings struct {
	cfg   config.Config
	today date.Date
	mode  recurrence.Mode
}

func (s settings) currency() string { return config.GetCurrency(s.cfg) }

func (s settings) statementsDir() string {
	if flagStatements != "" {
		return flagStatements
	}
	return s.cfg.General.StatementsDir
}

func loadSettings() (settings, error) {
	cfg, err := config.LoadFile(flagConfig)
	if err != nil {
		return settings{}, err
	}
	if flagMonths >= 0 {
		cfg.Schedule.MonthsToProject = flagMonths
	}
	if flagMode != "" {
		cfg.Recurrence.Mode = flagMode
	}

	mode, err := cfg.RecurrenceMode()
	if err != nil {
		return settings{}, err
	}
	today, err := parseToday(flagToday)
	if err != nil {
		return settings{}, err
	}
	return settings{cfg: cfg, today: today, mode: mode}, nil
}

func parseToday(s string) (date.Date, error) {
	if s == "" {
		return date.Today(), nil
	}
	d, err := date.Parse(s)
	if err != nil {
		return date.Date{}, fmt.Errorf("--today: %w", err)
	}
	return d, nil
}

func openStore() (*store.Store, error) {
	st, err := store.Open(flagDB)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return st, nil
}

// projection is one loaded and projected forecast.
type projection struct {
	settings
	input   forecast.Input
	result  model.Result
	summary model.Summary
	asOf    date.Date // when the starting balance was recorded
}

// loadForecast is the shared loading path used by the read commands.
func loadForecast(ctx context.Context) (*projection, error) {
	s, err := loadSettings()
	if err != nil {
		return nil, err
	}

	st, err := openStore()
	if err != nil {
		return nil, err
	}
	defer func() { _ = st.Close() }()

	txns, err := st.LoadTransactions()
	if err != nil {
		return nil, err
	}
	balance, asOf, err := st.Balance()
	if err != nil {
		if errors.Is(err, store.ErrNoBalance) {
			return nil, errors.New("no starting balance set; run `runway balance set <amount>` or `runway setup`")
		}
		return nil, err
	}

	in := inputFor(s, txns, balance)
	res, err := pipeline.Forecast(ctx, in, nil)
	if err != nil {
		return nil, err
	}

	return &projection{
		settings: s,
		input:    in,
		result:   res,
		summary:  pipeline.Summarize(res, s.today, in.Config),
		asOf:     asOf,
	}, nil
}

func inputFor(s settings, txns []model.Transaction, balance decimal.Decimal) forecast.Input {
	return forecast.Input{
		Transactions:    txns,
		StartingBalance: balance,
		Config:          s.cfg.ScheduleConfig(),
		Today:           s.today,
		Mode:            s.mode,
		Params:          s.cfg.LedgerParams(),
	}
}
