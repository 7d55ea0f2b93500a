package engine

import (
	"fmt"
	"math"

	"finmodel/pkg/core/fields"
	"finmodel/pkg/models"
)

// DerivePeriod computes the full SSOT for one period from its raw input and
// the prior period's already-derived output (nil for the first period).
// Stages run in fixed order; at each stage the matching override is applied
// before any downstream stage consumes the value. The input is assumed to
// have passed fields.ValidateAllFields; non-finite numbers still abort the
// period with a descriptive error because they would poison every downstream
// line item.
func DerivePeriod(input models.PeriodInput, prior *models.CalculatedPeriodData, periodIndex int, daysInPeriod float64) (*models.CalculatedPeriodData, error) {
	if key := input.FirstNonFinite(); key != "" {
		return nil, fmt.Errorf("non-finite value for %q in period %d", key, periodIndex+1)
	}

	revenue := input.Get(fields.KeyRevenue)
	grossMarginPct := input.Get(fields.KeyGrossMarginPct)
	opex := input.Get(fields.KeyOperatingExpenses)
	depreciation := input.Get(fields.KeyDepreciation)
	netFinancial := input.Get(fields.KeyNetFinancialResult)
	extraordinary := input.Get(fields.KeyExtraordinaryItems)
	taxRatePct := input.Get(fields.KeyTaxRatePct)
	dividends := input.Get(fields.KeyDividendsPaid)
	nonCash := input.Get(fields.KeyNonCashAdjustments)
	capex := input.Get(fields.KeyCapitalExpenditures)
	loans := input.Get(fields.KeyTotalBankLoans)
	netFixedAssets := input.Get(fields.KeyNetFixedAssets)

	// -------------------------------------------------------------------------
	// Income statement (stages 1-7)
	// -------------------------------------------------------------------------
	cogs := resolveOverride(input, LineCogs, revenue*(1-grossMarginPct/100))
	grossProfit := resolveOverride(input, LineGrossProfit, revenue-cogs)
	ebitda := resolveOverride(input, LineEbitda, grossProfit-opex)
	ebit := resolveOverride(input, LineEbit, ebitda-depreciation)
	pbt := resolveOverride(input, LinePbt, ebit+netFinancial+extraordinary)

	// Tax applies to positive pre-tax profit only; an unset rate means 0.
	incomeTax := resolveOverride(input, LineIncomeTax, math.Max(pbt, 0)*taxRatePct/100)
	netProfit := resolveOverride(input, LineNetProfit, pbt-incomeTax)

	gmPct := pctOf(grossProfit, revenue)
	ebitdaPct := pctOf(ebitda, revenue)
	netProfitPct := pctOf(netProfit, revenue)

	// -------------------------------------------------------------------------
	// Working capital (stages 8-9)
	// -------------------------------------------------------------------------
	arAvg := input.Get(fields.KeyAccountsReceivable)
	invAvg := input.Get(fields.KeyInventory)
	apAvg := input.Get(fields.KeyAccountsPayable)

	// Ending overrides supply balance-sheet values; the averages are retained
	// separately because day math always runs on averages.
	arValue := resolveOverride(input, LineAREnding, arAvg)
	invValue := resolveOverride(input, LineInventoryEnding, invAvg)
	apValue := resolveOverride(input, LineAPEnding, apAvg)

	// AR days run off revenue; inventory and AP days run off COGS. The
	// asymmetry is intentional and drives the cash conversion cycle.
	arDays := roundDays(daysRatio(arAvg, daysInPeriod, revenue))
	invDays := roundDays(daysRatio(invAvg, daysInPeriod, cogs))
	apDays := roundDays(daysRatio(apAvg, daysInPeriod, cogs))
	wcDays := roundDays(arDays + invDays - apDays)

	wcValue := arValue + invValue - apValue

	wcChange := 0.0
	if prior != nil {
		wcChange = wcValue - prior.WorkingCapitalValue
	}
	wcChange = resolveOverride(input, LineWorkingCapitalChange, wcChange)

	// -------------------------------------------------------------------------
	// Cash flow (stages 10-11)
	// -------------------------------------------------------------------------
	retainedProfit := netProfit - dividends
	operatingCashFlow := netProfit + depreciation + nonCash
	cashFromOpsAfterWC := operatingCashFlow - wcChange
	netCashBeforeFinancing := cashFromOpsAfterWC - capex

	changeInDebt := 0.0
	if prior != nil {
		changeInDebt = loans - prior.TotalBankLoans
	}
	cashFromFinancing := changeInDebt - dividends
	netChangeInCash := netCashBeforeFinancing + cashFromFinancing
	fundingGapOrSurplus := -netCashBeforeFinancing

	openingCash := input.Get(fields.KeyOpeningCash)
	if prior != nil {
		openingCash = prior.ClosingCash
	}
	// The override replaces the displayed closing cash only; the consistency
	// validator still reconciles against openingCash + netChangeInCash.
	closingCash := resolveOverride(input, LineClosingCash, openingCash+netChangeInCash)

	// -------------------------------------------------------------------------
	// Balance sheet estimate (stage 12)
	// -------------------------------------------------------------------------
	totalAssets := closingCash + arValue + invValue + netFixedAssets
	totalLiabilities := apValue + loans

	equity := input.Get(fields.KeyInitialEquity)
	if prior != nil {
		equity = prior.Equity
	}
	equity += retainedProfit + input.Get(fields.KeyEquityInjections)

	// The residual is reported, never forced to zero.
	balanceSheetDifference := totalAssets - (totalLiabilities + equity)

	return &models.CalculatedPeriodData{
		PeriodIndex:  periodIndex,
		DaysInPeriod: daysInPeriod,

		Revenue:            revenue,
		GrossMarginPct:     grossMarginPct,
		OperatingExpenses:  opex,
		Depreciation:       depreciation,
		NetFinancialResult: netFinancial,
		ExtraordinaryItems: extraordinary,
		TaxRatePct:         taxRatePct,
		DividendsPaid:      dividends,
		NonCashAdjustments: nonCash,

		Cogs:         cogs,
		GrossProfit:  grossProfit,
		GmPct:        gmPct,
		Ebitda:       ebitda,
		EbitdaPct:    ebitdaPct,
		Ebit:         ebit,
		Pbt:          pbt,
		IncomeTax:    incomeTax,
		NetProfit:    netProfit,
		NetProfitPct: netProfitPct,

		AccountsReceivableAvg:   arAvg,
		InventoryAvg:            invAvg,
		AccountsPayableAvg:      apAvg,
		AccountsReceivableValue: arValue,
		InventoryValue:          invValue,
		AccountsPayableValue:    apValue,
		ArDays:                  arDays,
		InventoryDays:           invDays,
		ApDays:                  apDays,
		WcDays:                  wcDays,
		WorkingCapitalValue:     wcValue,
		WorkingCapitalChange:    wcChange,

		RetainedProfit:             retainedProfit,
		OperatingCashFlow:          operatingCashFlow,
		CashFromOpsAfterWC:         cashFromOpsAfterWC,
		CapitalExpenditures:        capex,
		NetCashFlowBeforeFinancing: netCashBeforeFinancing,
		ChangeInDebt:               changeInDebt,
		CashFlowFromFinancing:      cashFromFinancing,
		NetChangeInCash:            netChangeInCash,
		OpeningCash:                openingCash,
		ClosingCash:                closingCash,
		FundingGapOrSurplus:        fundingGapOrSurplus,

		NetFixedAssets:            netFixedAssets,
		TotalBankLoans:            loans,
		EstimatedTotalAssets:      totalAssets,
		EstimatedTotalLiabilities: totalLiabilities,
		Equity:                    equity,
		BalanceSheetDifference:    balanceSheetDifference,
	}, nil
}

// pctOf returns numerator/base as a percentage, guarding the zero base so
// percentage fields never become NaN or Inf.
func pctOf(numerator, base float64) float64 {
	if base == 0 {
		return 0
	}
	return numerator / base * 100
}

// daysRatio converts an average balance into days of its denominator.
func daysRatio(average, daysInPeriod, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return average * daysInPeriod / denominator
}

// roundDays rounds to one decimal, the display precision of day metrics.
func roundDays(v float64) float64 {
	return math.Round(v*10) / 10
}
