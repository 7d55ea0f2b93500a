// Package fields holds the static field definition registry for every driver
// and override the engine understands, plus the pre-derivation input
// validator. The registry is a declarative table of tagged descriptors; the
// engine resolves override keys through it rather than constructing field
// names at runtime.
package fields

import (
	"finmodel/pkg/models"
)

// FieldType classifies how a value is interpreted and validated.
type FieldType string

const (
	TypeCurrency   FieldType = "currency"
	TypePercentage FieldType = "percentage"
	TypeDays       FieldType = "days"
)

// Category groups fields by role.
type Category string

const (
	DriverRequired Category = "driver_required"
	DriverOptional Category = "driver_optional"
	OverridePL     Category = "override_pl"
	OverrideBS     Category = "override_bs"
	OverrideCF     Category = "override_cf"
)

// Driver field keys. Keys are the JSON keys of PeriodInput.
const (
	KeyRevenue             = "revenue"
	KeyGrossMarginPct      = "grossMarginPct"
	KeyOperatingExpenses   = "operatingExpenses"
	KeyDepreciation        = "depreciation"
	KeyNetFinancialResult  = "netFinancialResult"
	KeyExtraordinaryItems  = "extraordinaryItems"
	KeyTaxRatePct          = "taxRatePct"
	KeyDividendsPaid       = "dividendsPaid"
	KeyNonCashAdjustments  = "nonCashAdjustments"
	KeyCapitalExpenditures = "capitalExpenditures"
	KeyTotalBankLoans      = "totalBankLoans"
	KeyNetFixedAssets      = "netFixedAssets"
	KeyAccountsReceivable  = "accountsReceivable"
	KeyInventory           = "inventory"
	KeyAccountsPayable     = "accountsPayable"
	KeyOpeningCash         = "openingCash"
	KeyInitialEquity       = "initialEquity"
	KeyEquityInjections    = "equityInjections"
)

// Override field keys. Each one replaces exactly one computed line item.
const (
	KeyOverrideCogs                 = "override_cogs"
	KeyOverrideGrossProfit          = "override_grossProfit"
	KeyOverrideEbitda               = "override_ebitda"
	KeyOverrideEbit                 = "override_ebit"
	KeyOverridePbt                  = "override_pbt"
	KeyOverrideIncomeTax            = "override_incomeTax"
	KeyOverrideNetProfit            = "override_netProfit"
	KeyOverrideWorkingCapitalChange = "override_workingCapitalChange"
	KeyOverrideClosingCash          = "override_closingCash"
	KeyOverrideAREnding             = "override_accountsReceivableEnding"
	KeyOverrideInventoryEnding      = "override_inventoryEnding"
	KeyOverrideAPEnding             = "override_accountsPayableEnding"
)

// ValidateFunc checks one field value in the context of its period and the
// whole period list. It returns "" when the value is acceptable, or a
// user-facing message. value is nil when the field was not provided.
type ValidateFunc func(value *float64, period models.PeriodInput, all []models.PeriodInput, periodIndex int) string

// FieldDefinition is the immutable metadata for one input field.
type FieldDefinition struct {
	Key             string
	Label           string
	Type            FieldType
	Category        Category
	FirstPeriodOnly bool
	Validate        ValidateFunc
}

// registry is the process-wide constant field table.
var registry = []FieldDefinition{
	{Key: KeyRevenue, Label: "Revenue", Type: TypeCurrency, Category: DriverRequired, Validate: nonNegative},
	{Key: KeyGrossMarginPct, Label: "Gross Margin %", Type: TypePercentage, Category: DriverRequired, Validate: percentageAtMost100},
	{Key: KeyOperatingExpenses, Label: "Operating Expenses", Type: TypeCurrency, Category: DriverRequired},
	{Key: KeyDepreciation, Label: "Depreciation", Type: TypeCurrency, Category: DriverOptional, Validate: nonNegative},
	{Key: KeyNetFinancialResult, Label: "Net Financial Result", Type: TypeCurrency, Category: DriverOptional},
	{Key: KeyExtraordinaryItems, Label: "Extraordinary Items", Type: TypeCurrency, Category: DriverOptional},
	{Key: KeyTaxRatePct, Label: "Tax Rate %", Type: TypePercentage, Category: DriverOptional, Validate: percentage0to100},
	{Key: KeyDividendsPaid, Label: "Dividends Paid", Type: TypeCurrency, Category: DriverOptional, Validate: nonNegative},
	{Key: KeyNonCashAdjustments, Label: "Non-Cash Adjustments", Type: TypeCurrency, Category: DriverOptional},
	{Key: KeyCapitalExpenditures, Label: "Capital Expenditures", Type: TypeCurrency, Category: DriverOptional, Validate: nonNegative},
	{Key: KeyTotalBankLoans, Label: "Total Bank Loans", Type: TypeCurrency, Category: DriverOptional, Validate: nonNegative},
	{Key: KeyNetFixedAssets, Label: "Net Fixed Assets", Type: TypeCurrency, Category: DriverOptional, Validate: nonNegative},
	{Key: KeyAccountsReceivable, Label: "Accounts Receivable (avg)", Type: TypeCurrency, Category: DriverOptional, Validate: nonNegative},
	{Key: KeyInventory, Label: "Inventory (avg)", Type: TypeCurrency, Category: DriverOptional, Validate: nonNegative},
	{Key: KeyAccountsPayable, Label: "Accounts Payable (avg)", Type: TypeCurrency, Category: DriverOptional, Validate: nonNegative},
	{Key: KeyOpeningCash, Label: "Opening Cash", Type: TypeCurrency, Category: DriverOptional, FirstPeriodOnly: true, Validate: firstPeriodOnly},
	{Key: KeyInitialEquity, Label: "Opening Equity", Type: TypeCurrency, Category: DriverOptional, FirstPeriodOnly: true, Validate: firstPeriodOnly},
	{Key: KeyEquityInjections, Label: "Equity Injections / Withdrawals", Type: TypeCurrency, Category: DriverOptional},

	{Key: KeyOverrideCogs, Label: "COGS (override)", Type: TypeCurrency, Category: OverridePL},
	{Key: KeyOverrideGrossProfit, Label: "Gross Profit (override)", Type: TypeCurrency, Category: OverridePL},
	{Key: KeyOverrideEbitda, Label: "EBITDA (override)", Type: TypeCurrency, Category: OverridePL},
	{Key: KeyOverrideEbit, Label: "EBIT (override)", Type: TypeCurrency, Category: OverridePL},
	{Key: KeyOverridePbt, Label: "Profit Before Tax (override)", Type: TypeCurrency, Category: OverridePL},
	{Key: KeyOverrideIncomeTax, Label: "Income Tax (override)", Type: TypeCurrency, Category: OverridePL},
	{Key: KeyOverrideNetProfit, Label: "Net Profit (override)", Type: TypeCurrency, Category: OverridePL},
	{Key: KeyOverrideWorkingCapitalChange, Label: "Working Capital Change (override)", Type: TypeCurrency, Category: OverrideCF},
	{Key: KeyOverrideClosingCash, Label: "Closing Cash (override)", Type: TypeCurrency, Category: OverrideCF},
	{Key: KeyOverrideAREnding, Label: "Accounts Receivable Ending (override)", Type: TypeCurrency, Category: OverrideBS},
	{Key: KeyOverrideInventoryEnding, Label: "Inventory Ending (override)", Type: TypeCurrency, Category: OverrideBS},
	{Key: KeyOverrideAPEnding, Label: "Accounts Payable Ending (override)", Type: TypeCurrency, Category: OverrideBS},
}

// Definitions returns the full registry. The slice is shared; callers must
// treat it as read-only.
func Definitions() []FieldDefinition {
	return registry
}

// Lookup returns the definition for key.
func Lookup(key string) (FieldDefinition, bool) {
	for _, def := range registry {
		if def.Key == key {
			return def, true
		}
	}
	return FieldDefinition{}, false
}

// FieldKeys returns the keys of every field in the given categories, in
// registry order. With no categories it returns all keys.
func FieldKeys(categories ...Category) []string {
	keys := make([]string, 0, len(registry))
	for _, def := range registry {
		if len(categories) == 0 {
			keys = append(keys, def.Key)
			continue
		}
		for _, c := range categories {
			if def.Category == c {
				keys = append(keys, def.Key)
				break
			}
		}
	}
	return keys
}

// Shared per-field validators. Each returns "" when fine.

func nonNegative(value *float64, _ models.PeriodInput, _ []models.PeriodInput, _ int) string {
	if value != nil && *value < 0 {
		return "must not be negative"
	}
	return ""
}

func percentageAtMost100(value *float64, _ models.PeriodInput, _ []models.PeriodInput, _ int) string {
	if value != nil && *value > 100 {
		return "percentage cannot exceed 100"
	}
	return ""
}

func percentage0to100(value *float64, _ models.PeriodInput, _ []models.PeriodInput, _ int) string {
	if value != nil && (*value < 0 || *value > 100) {
		return "percentage must be between 0 and 100"
	}
	return ""
}

func firstPeriodOnly(value *float64, _ models.PeriodInput, _ []models.PeriodInput, periodIndex int) string {
	if value != nil && periodIndex > 0 {
		return "only applies to the first period"
	}
	return ""
}
