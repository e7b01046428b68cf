// Package config loads and saves the runway TOML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/runway/internal/ledger"
	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/recurrence"
)

// Config holds all runway configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Schedule   ScheduleSettings `toml:"schedule"`
	Recurrence RecurrenceConfig `toml:"recurrence"`
	SafeSpend  SafeSpendConfig  `toml:"safe_spend"`
	Daemon     DaemonConfig     `toml:"daemon"`
	Appearance AppearanceConfig `toml:"appearance"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	Currency      string `toml:"currency"`
	StatementsDir string `toml:"statements_dir,omitempty"`
}

// ScheduleSettings holds the projection horizon and pay cadence.
type ScheduleSettings struct {
	MonthsToProject       int     `toml:"months_to_project"`
	PayPeriodDays         int     `toml:"pay_period_days"`
	AveragePaycheckAmount float64 `toml:"average_paycheck_amount"`
	SafetyCushionDays     int     `toml:"safety_cushion_days"`
}

// RecurrenceConfig selects how recurring transactions are recognized.
type RecurrenceConfig struct {
	Mode string `toml:"mode"`
}

// SafeSpendConfig tunes the safe-to-spend estimate.
type SafeSpendConfig struct {
	SpendRatio    float64 `toml:"spend_ratio"`
	LookaheadDays int     `toml:"lookahead_days"`
}

// DaemonConfig holds the background service settings.
type DaemonConfig struct {
	Addr        string `toml:"addr"`
	IntervalSec int    `toml:"interval_sec"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	sc := model.DefaultScheduleConfig()
	p := ledger.DefaultParams()
	ratio, _ := p.SpendRatio.Float64()
	return Config{
		General: GeneralConfig{
			Currency: "USD",
		},
		Schedule: ScheduleSettings{
			MonthsToProject:   sc.MonthsToProject,
			PayPeriodDays:     sc.PayPeriodDays,
			SafetyCushionDays: sc.SafetyCushionDays,
		},
		Recurrence: RecurrenceConfig{
			Mode: recurrence.ModeScheduled.String(),
		},
		SafeSpend: SafeSpendConfig{
			SpendRatio:    ratio,
			LookaheadDays: p.LookaheadDays,
		},
		Daemon: DaemonConfig{
			Addr:        "127.0.0.1:8788",
			IntervalSec: 60,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "runway")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "runway")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFile(ConfigPath())
}

// LoadFile reads the config at path over the defaults.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, cfg.Validate()
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveFile(ConfigPath(), cfg)
}

// SaveFile writes the config to path, creating its directory.
func SaveFile(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// Validate reports settings the engine cannot use.
func (c Config) Validate() error {
	var errs []error
	if _, err := recurrence.ParseMode(c.Recurrence.Mode); err != nil {
		errs = append(errs, err)
	}
	if c.Schedule.PayPeriodDays < 0 {
		errs = append(errs, fmt.Errorf("schedule.pay_period_days must not be negative, got %d", c.Schedule.PayPeriodDays))
	}
	if c.SafeSpend.SpendRatio < 0 || c.SafeSpend.SpendRatio > 1 {
		errs = append(errs, fmt.Errorf("safe_spend.spend_ratio must be within [0, 1], got %g", c.SafeSpend.SpendRatio))
	}
	if c.SafeSpend.LookaheadDays <= 0 {
		errs = append(errs, fmt.Errorf("safe_spend.lookahead_days must be positive, got %d", c.SafeSpend.LookaheadDays))
	}
	if c.Daemon.IntervalSec < 0 {
		errs = append(errs, fmt.Errorf("daemon.interval_sec must not be negative, got %d", c.Daemon.IntervalSec))
	}
	return errors.Join(errs...)
}

// GetCurrency returns the currency code from env var or config, in that order.
func GetCurrency(cfg Config) string {
	if cur := os.Getenv("RUNWAY_CURRENCY"); cur != "" {
		return strings.ToUpper(cur)
	}
	if cfg.General.Currency == "" {
		return "USD"
	}
	return strings.ToUpper(cfg.General.Currency)
}

// ScheduleConfig converts the [schedule] table to engine settings.
func (c Config) ScheduleConfig() model.ScheduleConfig {
	return model.ScheduleConfig{
		MonthsToProject:       c.Schedule.MonthsToProject,
		PayPeriodDays:         c.Schedule.PayPeriodDays,
		AveragePaycheckAmount: decimal.NewFromFloat(c.Schedule.AveragePaycheckAmount).Round(2),
		SafetyCushionDays:     c.Schedule.SafetyCushionDays,
	}
}

// LedgerParams converts the [safe_spend] table to safe-spend parameters.
func (c Config) LedgerParams() ledger.Params {
	return ledger.Params{
		SpendRatio:    decimal.NewFromFloat(c.SafeSpend.SpendRatio),
		LookaheadDays: c.SafeSpend.LookaheadDays,
	}
}

// RecurrenceMode parses the [recurrence] mode.
func (c Config) RecurrenceMode() (recurrence.Mode, error) {
	return recurrence.ParseMode(c.Recurrence.Mode)
}
