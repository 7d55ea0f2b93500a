// Package engine implements the per-period derivation engine, the
// cross-period sequencer, and the post-derivation consistency validator.
// The engine is pure and stateless: independent derivation requests may run
// concurrently, but the fold inside one DeriveAll call is strictly
// sequential because each period consumes the prior period's closing
// balances.
package engine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config carries the named tolerance constants shared by the engine and the
// consistency validator, plus the days-in-period table keyed by period type
// label ("month", "quarter", "year").
type Config struct {
	CurrencyTolerance float64            `yaml:"currency_tolerance"`
	DaysTolerance     float64            `yaml:"days_tolerance"`
	DaysInPeriod      map[string]float64 `yaml:"days_in_period"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		CurrencyTolerance: 0.015,
		DaysTolerance:     0.1,
		DaysInPeriod: map[string]float64{
			"month":   30,
			"quarter": 90,
			"year":    365,
		},
	}
}

// cfg is the active configuration. LoadConfig replaces it at startup;
// afterwards it is read-only.
var cfg = DefaultConfig()

// LoadConfig overlays the defaults with the YAML file at path. Missing keys
// keep their defaults; a missing file is an error so the caller can decide
// whether to warn and continue.
func LoadConfig(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read engine config: %w", err)
	}
	loaded := DefaultConfig()
	if err := yaml.Unmarshal(raw, &loaded); err != nil {
		return fmt.Errorf("parse engine config: %w", err)
	}
	if loaded.CurrencyTolerance <= 0 || loaded.DaysTolerance <= 0 {
		return fmt.Errorf("engine config: tolerances must be positive")
	}
	cfg = loaded
	return nil
}

// ActiveConfig returns the configuration currently in effect.
func ActiveConfig() Config {
	return cfg
}

// DaysFor maps a period type label to its day count. Unknown labels fall
// back to a full year.
func DaysFor(periodTypeLabel string) float64 {
	if d, ok := cfg.DaysInPeriod[periodTypeLabel]; ok && d > 0 {
		return d
	}
	return cfg.DaysInPeriod["year"]
}
