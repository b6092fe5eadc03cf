package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Finance.BaseCurrency != "INR" {
		t.Errorf("Finance.BaseCurrency = %q, want %q", cfg.Finance.BaseCurrency, "INR")
	}
	if cfg.Finance.ConversionRates["USD"] != 84 {
		t.Errorf("ConversionRates[USD] = %v, want 84", cfg.Finance.ConversionRates["USD"])
	}
	if cfg.Schedule.WorkingDaysPerYear != 365 || cfg.Schedule.HoursPerDay != 8 {
		t.Errorf("Schedule = %+v, want 365x8", cfg.Schedule)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load("/nonexistent/attribution.toml")
	if err != nil {
		t.Fatalf("missing file must not error, got %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected defaults, got port %d", cfg.Server.Port)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[server]
port = 9090

[finance]
base_currency = "USD"

[finance.conversion_rates]
INR = 0.0119

[schedule]
working_days_per_year = 260
hours_per_day = 8
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Finance.BaseCurrency != "USD" {
		t.Errorf("base currency = %q, want USD", cfg.Finance.BaseCurrency)
	}
	if cfg.Schedule.WorkingDaysPerYear != 260 {
		t.Errorf("working days = %d, want 260", cfg.Schedule.WorkingDaysPerYear)
	}

	table := cfg.RateTable()
	if table.Base != "USD" {
		t.Errorf("rate table base = %q, want USD", table.Base)
	}
}

func TestLoad_RejectsNonPositiveRate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[finance]
base_currency = "INR"

[finance.conversion_rates]
USD = -1.0
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for negative conversion rate")
	}
}
