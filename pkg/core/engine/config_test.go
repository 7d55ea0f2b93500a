package engine

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	if c.CurrencyTolerance != 0.015 {
		t.Errorf("Expected currency tolerance 0.015, got %f", c.CurrencyTolerance)
	}
	if c.DaysTolerance != 0.1 {
		t.Errorf("Expected days tolerance 0.1, got %f", c.DaysTolerance)
	}
	if c.DaysInPeriod["quarter"] != 90 {
		t.Errorf("Expected 90 days for a quarter, got %f", c.DaysInPeriod["quarter"])
	}
}

func TestDaysForFallback(t *testing.T) {
	if d := DaysFor("month"); d != 30 {
		t.Errorf("Expected 30, got %f", d)
	}
	if d := DaysFor("fortnight"); d != 365 {
		t.Errorf("Expected the year fallback for an unknown label, got %f", d)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.yaml")
	content := "currency_tolerance: 0.02\ndays_tolerance: 0.2\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	defer func() { cfg = DefaultConfig() }()

	if err := LoadConfig(path); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	c := ActiveConfig()
	if c.CurrencyTolerance != 0.02 || c.DaysTolerance != 0.2 {
		t.Errorf("Expected overridden tolerances, got %+v", c)
	}
	// Keys absent from the file keep their defaults.
	if c.DaysInPeriod["month"] != 30 {
		t.Errorf("Expected default days table, got %+v", c.DaysInPeriod)
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.yaml")
	if err := os.WriteFile(path, []byte("currency_tolerance: -1\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if err := LoadConfig(path); err == nil {
		t.Error("Expected an error for a non-positive tolerance")
	}
	if err := LoadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}
