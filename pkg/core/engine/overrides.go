package engine

import (
	"finmodel/pkg/core/fields"
	"finmodel/pkg/models"
)

// LineItem enumerates every computed value that an override field may
// replace. Override keys resolve to line items through the explicit table
// below; the engine never constructs field names at runtime.
type LineItem int

const (
	LineCogs LineItem = iota
	LineGrossProfit
	LineEbitda
	LineEbit
	LinePbt
	LineIncomeTax
	LineNetProfit
	LineWorkingCapitalChange
	LineClosingCash
	LineAREnding
	LineInventoryEnding
	LineAPEnding
)

var overrideKeys = map[LineItem]string{
	LineCogs:                 fields.KeyOverrideCogs,
	LineGrossProfit:          fields.KeyOverrideGrossProfit,
	LineEbitda:               fields.KeyOverrideEbitda,
	LineEbit:                 fields.KeyOverrideEbit,
	LinePbt:                  fields.KeyOverridePbt,
	LineIncomeTax:            fields.KeyOverrideIncomeTax,
	LineNetProfit:            fields.KeyOverrideNetProfit,
	LineWorkingCapitalChange: fields.KeyOverrideWorkingCapitalChange,
	LineClosingCash:          fields.KeyOverrideClosingCash,
	LineAREnding:             fields.KeyOverrideAREnding,
	LineInventoryEnding:      fields.KeyOverrideInventoryEnding,
	LineAPEnding:             fields.KeyOverrideAPEnding,
}

// resolveOverride is the single override-application step: it returns the
// override value for item when the caller supplied one, otherwise the
// computed value. Every derivation stage funnels through here so that an
// override is consumed exactly once, before downstream stages read the value.
func resolveOverride(input models.PeriodInput, item LineItem, computed float64) float64 {
	if v := input.Lookup(overrideKeys[item]); v != nil {
		return *v
	}
	return computed
}
