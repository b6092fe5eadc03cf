// Package config loads server configuration from TOML with sane defaults.
//
// The conversion-rate and schedule sections exist because the engine is
// deliberately parameter-driven: rates and working-time policy are caller
// policy, never engine constants. Config is where an operator states that
// policy once per deployment.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/warp/attribution-engine/engine"
)

// =============================================================================
// CONFIG SECTIONS
// =============================================================================

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Finance  FinanceConfig  `toml:"finance"`
	Schedule ScheduleConfig `toml:"schedule"`
}

type ServerConfig struct {
	Port   int    `toml:"port"`
	DBPath string `toml:"db_path"`
}

type FinanceConfig struct {
	// BaseCurrency is the single currency all aggregation arithmetic
	// happens in.
	BaseCurrency string `toml:"base_currency"`
	// ConversionRates maps a foreign currency to base units per one
	// foreign unit, e.g. USD = 84.0 with an INR base.
	ConversionRates map[string]float64 `toml:"conversion_rates"`
}

type ScheduleConfig struct {
	// Defaults applied to subjects with no schedule on file.
	WorkingDaysPerYear int `toml:"working_days_per_year"`
	HoursPerDay        int `toml:"hours_per_day"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:   8080,
			DBPath: "attribution.db",
		},
		Finance: FinanceConfig{
			BaseCurrency:    "INR",
			ConversionRates: map[string]float64{"USD": 84},
		},
		Schedule: ScheduleConfig{
			WorkingDaysPerYear: 365,
			HoursPerDay:        8,
		},
	}
}

// Load reads a TOML file over the defaults. A missing file is fine; an
// unreadable or malformed one is not.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the engine would refuse anyway, just
// earlier and with a clearer message.
func (c Config) Validate() error {
	if c.Finance.BaseCurrency == "" {
		return fmt.Errorf("finance.base_currency must be set")
	}
	for cur, rate := range c.Finance.ConversionRates {
		if rate <= 0 {
			return fmt.Errorf("conversion rate for %s must be positive, got %v", cur, rate)
		}
	}
	if c.Schedule.WorkingDaysPerYear <= 0 || c.Schedule.HoursPerDay <= 0 {
		return fmt.Errorf("schedule must have positive working days and hours")
	}
	return nil
}

// RateTable builds the engine's conversion table from the config.
func (c Config) RateTable() engine.RateTable {
	rates := make(map[engine.Currency]float64, len(c.Finance.ConversionRates))
	for cur, r := range c.Finance.ConversionRates {
		rates[engine.Currency(cur)] = r
	}
	return engine.NewRateTable(engine.Currency(c.Finance.BaseCurrency), rates)
}

// DefaultSchedule builds the fallback schedule from the config.
func (c Config) DefaultSchedule() engine.WorkSchedule {
	return engine.WorkSchedule{
		WorkingDaysPerYear: c.Schedule.WorkingDaysPerYear,
		HoursPerDay:        c.Schedule.HoursPerDay,
	}
}
