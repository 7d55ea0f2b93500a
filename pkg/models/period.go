// Package models defines the shared data model of the forecast engine:
// raw per-period inputs, the calculated single source of truth (SSOT) for
// each period, and the issue/error records produced by the validators.
package models

import "math"

// PeriodInput is the raw, caller-owned input for one period: a mapping of
// driver key -> value. A nil entry (or an absent key) means "not provided".
// Override fields use the "override_" prefix and replace the matching
// computed value before any downstream stage consumes it.
type PeriodInput map[string]*float64

// Get returns the value for key, or 0 when the key is absent or nil.
func (p PeriodInput) Get(key string) float64 {
	if v, ok := p[key]; ok && v != nil {
		return *v
	}
	return 0
}

// Has reports whether key is present with a non-nil value.
func (p PeriodInput) Has(key string) bool {
	v, ok := p[key]
	return ok && v != nil
}

// Lookup returns the raw pointer for key (nil when absent).
func (p PeriodInput) Lookup(key string) *float64 {
	if v, ok := p[key]; ok {
		return v
	}
	return nil
}

// Clone returns a deep copy. The engine never mutates caller input; handlers
// clone before annotating.
func (p PeriodInput) Clone() PeriodInput {
	out := make(PeriodInput, len(p))
	for k, v := range p {
		if v == nil {
			out[k] = nil
			continue
		}
		c := *v
		out[k] = &c
	}
	return out
}

// FirstNonFinite returns the key of the first non-finite (NaN/Inf) value, or
// "" when every provided value is finite. Map order is irrelevant: any
// non-finite input aborts the period either way.
func (p PeriodInput) FirstNonFinite() string {
	for k, v := range p {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return k
		}
	}
	return ""
}

// CalculatedPeriodData is the per-period SSOT: the raw drivers plus every
// derived line item across the four sub-models. It is produced fresh on every
// run; downstream consumers (views, exports, AI context) read it only.
type CalculatedPeriodData struct {
	PeriodIndex  int     `json:"periodIndex"`
	PeriodLabel  string  `json:"periodLabel"`
	DaysInPeriod float64 `json:"daysInPeriod"`

	// Raw drivers (echoed from input)
	Revenue            float64 `json:"revenue"`
	GrossMarginPct     float64 `json:"grossMarginPct"`
	OperatingExpenses  float64 `json:"operatingExpenses"`
	Depreciation       float64 `json:"depreciation"`
	NetFinancialResult float64 `json:"netFinancialResult"`
	ExtraordinaryItems float64 `json:"extraordinaryItems"`
	TaxRatePct         float64 `json:"taxRatePct"`
	DividendsPaid      float64 `json:"dividendsPaid"`
	NonCashAdjustments float64 `json:"nonCashAdjustments"`

	// Income statement
	Cogs         float64 `json:"cogs"`
	GrossProfit  float64 `json:"grossProfit"`
	GmPct        float64 `json:"gmPct"`
	Ebitda       float64 `json:"ebitda"`
	EbitdaPct    float64 `json:"ebitdaPct"`
	Ebit         float64 `json:"ebit"`
	Pbt          float64 `json:"pbt"`
	IncomeTax    float64 `json:"incomeTax"`
	NetProfit    float64 `json:"netProfit"`
	NetProfitPct float64 `json:"netProfitPct"`

	// Working capital schedule
	AccountsReceivableAvg   float64 `json:"accountsReceivableAvg"`
	InventoryAvg            float64 `json:"inventoryAvg"`
	AccountsPayableAvg      float64 `json:"accountsPayableAvg"`
	AccountsReceivableValue float64 `json:"accountsReceivableValue"`
	InventoryValue          float64 `json:"inventoryValue"`
	AccountsPayableValue    float64 `json:"accountsPayableValue"`
	ArDays                  float64 `json:"arDays"`
	InventoryDays           float64 `json:"inventoryDays"`
	ApDays                  float64 `json:"apDays"`
	WcDays                  float64 `json:"wcDays"`
	WorkingCapitalValue     float64 `json:"workingCapitalValue"`
	WorkingCapitalChange    float64 `json:"workingCapitalChange"`

	// Cash flow
	RetainedProfit             float64 `json:"retainedProfit"`
	OperatingCashFlow          float64 `json:"operatingCashFlow"`
	CashFromOpsAfterWC         float64 `json:"cashFromOpsAfterWC"`
	CapitalExpenditures        float64 `json:"capitalExpenditures"`
	NetCashFlowBeforeFinancing float64 `json:"netCashFlowBeforeFinancing"`
	ChangeInDebt               float64 `json:"changeInDebt"`
	CashFlowFromFinancing      float64 `json:"cashFlowFromFinancing"`
	NetChangeInCash            float64 `json:"netChangeInCash"`
	OpeningCash                float64 `json:"openingCash"`
	ClosingCash                float64 `json:"closingCash"`
	FundingGapOrSurplus        float64 `json:"fundingGapOrSurplus"`

	// Balance sheet estimate
	NetFixedAssets            float64 `json:"netFixedAssets"`
	TotalBankLoans            float64 `json:"totalBankLoans"`
	EstimatedTotalAssets      float64 `json:"estimatedTotalAssets"`
	EstimatedTotalLiabilities float64 `json:"estimatedTotalLiabilities"`
	Equity                    float64 `json:"equity"`
	BalanceSheetDifference    float64 `json:"balanceSheetDifference"`

	// Trailing trend deltas (second pass; 0 for the first period)
	RevenueTrendPct     float64 `json:"revenueTrendPct"`
	EbitdaTrendPct      float64 `json:"ebitdaTrendPct"`
	NetProfitTrendPct   float64 `json:"netProfitTrendPct"`
	ClosingCashTrendAbs float64 `json:"closingCashTrendAbs"`
}

// Severity levels for consistency issues.
const (
	SeverityCritical = "CRITICAL_ERROR"
	SeverityWarning  = "WARNING"
	SeverityInfo     = "INFO"
)

// ConsistencyIssue is one advisory finding from the post-derivation
// consistency validator. Issues are returned, never stored on the SSOT.
type ConsistencyIssue struct {
	Type        string   `json:"type"`
	PeriodLabel string   `json:"periodLabel"`
	Message     string   `json:"message"`
	Severity    string   `json:"severity"`
	Expected    *float64 `json:"expected,omitempty"`
	Actual      *float64 `json:"actual,omitempty"`
}

// ValidationError reports the invalid fields of one period. Period is
// 1-based, matching what users see in the UI.
type ValidationError struct {
	Period int               `json:"period"`
	Fields map[string]string `json:"fields"`
}
