package engine

import (
	"math"
	"testing"

	"finmodel/pkg/models"
)

// testInput builds a PeriodInput from plain values.
func testInput(vals map[string]float64) models.PeriodInput {
	p := make(models.PeriodInput, len(vals))
	for k, v := range vals {
		c := v
		p[k] = &c
	}
	return p
}

func TestDerivePeriodIncomeStatement(t *testing.T) {
	// Revenue 1,000,000 at 45% gross margin:
	//   COGS         = 1,000,000 * (1 - 0.45) = 550,000
	//   Gross Profit = 1,000,000 - 550,000    = 450,000
	//   EBITDA       = 450,000 - 300,000      = 150,000
	//   EBIT         = 150,000 - 20,000       = 130,000
	//   PBT          = 130,000 (no financial result)
	//   Tax          = 130,000 * 0.25         = 32,500
	//   Net Profit   = 130,000 - 32,500       = 97,500
	in := testInput(map[string]float64{
		"revenue":           1000000,
		"grossMarginPct":    45,
		"operatingExpenses": 300000,
		"depreciation":      20000,
		"taxRatePct":        25,
	})

	p, err := DerivePeriod(in, nil, 0, 30)
	if err != nil {
		t.Fatalf("DerivePeriod failed: %v", err)
	}

	if p.Cogs != 550000 {
		t.Errorf("Expected COGS 550000, got %f", p.Cogs)
	}
	if p.GrossProfit != 450000 {
		t.Errorf("Expected gross profit 450000, got %f", p.GrossProfit)
	}
	if p.Ebitda != 150000 {
		t.Errorf("Expected EBITDA 150000, got %f", p.Ebitda)
	}
	if p.Ebit != 130000 {
		t.Errorf("Expected EBIT 130000, got %f", p.Ebit)
	}
	if p.Pbt != 130000 {
		t.Errorf("Expected PBT 130000, got %f", p.Pbt)
	}
	if p.IncomeTax != 32500 {
		t.Errorf("Expected income tax 32500, got %f", p.IncomeTax)
	}
	if p.NetProfit != 97500 {
		t.Errorf("Expected net profit 97500, got %f", p.NetProfit)
	}
	if math.Abs(p.GmPct-45) > 1e-9 {
		t.Errorf("Expected GM%% 45, got %f", p.GmPct)
	}
}

func TestDerivePeriodWorkingCapitalDays(t *testing.T) {
	// 30-day period. AR days run off revenue, inventory and AP days off COGS:
	//   AR days  = 120,000 * 30 / 1,000,000 = 3.6
	//   Inv days =  90,000 * 30 /   550,000 = 4.909... -> 4.9
	//   AP days  =  70,000 * 30 /   550,000 = 3.818... -> 3.8
	//   CCC      = 3.6 + 4.9 - 3.8          = 4.7
	in := testInput(map[string]float64{
		"revenue":            1000000,
		"grossMarginPct":     45,
		"operatingExpenses":  300000,
		"accountsReceivable": 120000,
		"inventory":          90000,
		"accountsPayable":    70000,
	})

	p, err := DerivePeriod(in, nil, 0, 30)
	if err != nil {
		t.Fatalf("DerivePeriod failed: %v", err)
	}

	if p.ArDays != 3.6 {
		t.Errorf("Expected AR days 3.6, got %f", p.ArDays)
	}
	if p.InventoryDays != 4.9 {
		t.Errorf("Expected inventory days 4.9, got %f", p.InventoryDays)
	}
	if p.ApDays != 3.8 {
		t.Errorf("Expected AP days 3.8, got %f", p.ApDays)
	}
	if p.WcDays != 4.7 {
		t.Errorf("Expected CCC 4.7, got %f", p.WcDays)
	}
	// WC value = 120,000 + 90,000 - 70,000 = 140,000
	if p.WorkingCapitalValue != 140000 {
		t.Errorf("Expected WC value 140000, got %f", p.WorkingCapitalValue)
	}
	// First period has no prior, so the change must be 0.
	if p.WorkingCapitalChange != 0 {
		t.Errorf("Expected WC change 0 in the first period, got %f", p.WorkingCapitalChange)
	}
}

func TestDerivePeriodCashAndBalanceSheet(t *testing.T) {
	// Net profit 97,500 (see income statement test).
	//   OCF            = 97,500 + 20,000         = 117,500
	//   After WC       = 117,500 - 0             = 117,500
	//   Before fin.    = 117,500 - 50,000 capex  =  67,500
	//   Financing      = 0 (no debt delta, no dividends)
	//   Closing cash   = 200,000 + 67,500        = 267,500
	//   Assets         = 267,500 + 120,000 + 90,000 + 400,000 = 877,500
	//   Liabilities    = 70,000 + 150,000        = 220,000
	//   Equity         = 500,000 + 97,500        = 597,500
	//   BS difference  = 877,500 - 817,500       =  60,000
	in := testInput(map[string]float64{
		"revenue":             1000000,
		"grossMarginPct":      45,
		"operatingExpenses":   300000,
		"depreciation":        20000,
		"taxRatePct":          25,
		"capitalExpenditures": 50000,
		"accountsReceivable":  120000,
		"inventory":           90000,
		"accountsPayable":     70000,
		"netFixedAssets":      400000,
		"totalBankLoans":      150000,
		"openingCash":         200000,
		"initialEquity":       500000,
	})

	p, err := DerivePeriod(in, nil, 0, 30)
	if err != nil {
		t.Fatalf("DerivePeriod failed: %v", err)
	}

	if p.OperatingCashFlow != 117500 {
		t.Errorf("Expected OCF 117500, got %f", p.OperatingCashFlow)
	}
	if p.NetCashFlowBeforeFinancing != 67500 {
		t.Errorf("Expected net cash before financing 67500, got %f", p.NetCashFlowBeforeFinancing)
	}
	if p.ClosingCash != 267500 {
		t.Errorf("Expected closing cash 267500, got %f", p.ClosingCash)
	}
	if p.FundingGapOrSurplus != -67500 {
		t.Errorf("Expected funding surplus -67500, got %f", p.FundingGapOrSurplus)
	}
	if p.EstimatedTotalAssets != 877500 {
		t.Errorf("Expected assets 877500, got %f", p.EstimatedTotalAssets)
	}
	if p.EstimatedTotalLiabilities != 220000 {
		t.Errorf("Expected liabilities 220000, got %f", p.EstimatedTotalLiabilities)
	}
	if p.Equity != 597500 {
		t.Errorf("Expected equity 597500, got %f", p.Equity)
	}
	if p.BalanceSheetDifference != 60000 {
		t.Errorf("Expected BS difference 60000, got %f", p.BalanceSheetDifference)
	}
}

func TestDerivePeriodOverridePrecedence(t *testing.T) {
	in := testInput(map[string]float64{
		"revenue":            1000000,
		"grossMarginPct":     45,
		"operatingExpenses":  300000,
		"depreciation":       20000,
		"taxRatePct":         25,
		"override_netProfit": 50000,
	})

	p, err := DerivePeriod(in, nil, 0, 30)
	if err != nil {
		t.Fatalf("DerivePeriod failed: %v", err)
	}

	// The override must win over the computed 97,500 and feed downstream:
	// OCF = 50,000 + 20,000 = 70,000.
	if p.NetProfit != 50000 {
		t.Errorf("Expected overridden net profit 50000, got %f", p.NetProfit)
	}
	if p.OperatingCashFlow != 70000 {
		t.Errorf("Expected OCF 70000 from overridden net profit, got %f", p.OperatingCashFlow)
	}
	if p.RetainedProfit != 50000 {
		t.Errorf("Expected retained profit 50000, got %f", p.RetainedProfit)
	}
}

func TestDerivePeriodOverrideChain(t *testing.T) {
	// Overriding COGS must ripple through every later stage.
	// COGS = 600,000 -> GP = 400,000 -> EBITDA = 100,000 -> EBIT = 80,000.
	in := testInput(map[string]float64{
		"revenue":           1000000,
		"grossMarginPct":    45,
		"operatingExpenses": 300000,
		"depreciation":      20000,
		"override_cogs":     600000,
	})

	p, err := DerivePeriod(in, nil, 0, 30)
	if err != nil {
		t.Fatalf("DerivePeriod failed: %v", err)
	}

	if p.Cogs != 600000 {
		t.Errorf("Expected overridden COGS 600000, got %f", p.Cogs)
	}
	if p.GrossProfit != 400000 {
		t.Errorf("Expected gross profit 400000, got %f", p.GrossProfit)
	}
	if p.Ebitda != 100000 {
		t.Errorf("Expected EBITDA 100000, got %f", p.Ebitda)
	}
	if p.Ebit != 80000 {
		t.Errorf("Expected EBIT 80000, got %f", p.Ebit)
	}
}

func TestDerivePeriodEndingOverridesKeepAverageDays(t *testing.T) {
	// Ending overrides supply the balance-sheet values; day math always runs
	// on the averages:
	//   AR days  = 120,000 * 30 / 1,000,000 = 3.6 (not the 200,000 ending)
	//   Inv days =  90,000 * 30 /   550,000 = 4.9
	//   AP days  =  70,000 * 30 /   550,000 = 3.8
	//   WC value = 200,000 + 85,000 - 60,000 = 225,000 (ending balances)
	in := testInput(map[string]float64{
		"revenue":                           1000000,
		"grossMarginPct":                    45,
		"operatingExpenses":                 300000,
		"accountsReceivable":                120000,
		"inventory":                         90000,
		"accountsPayable":                   70000,
		"netFixedAssets":                    400000,
		"override_accountsReceivableEnding": 200000,
		"override_inventoryEnding":          85000,
		"override_accountsPayableEnding":    60000,
	})

	p, err := DerivePeriod(in, nil, 0, 30)
	if err != nil {
		t.Fatalf("DerivePeriod failed: %v", err)
	}

	if p.AccountsReceivableValue != 200000 {
		t.Errorf("Expected AR ending 200000, got %f", p.AccountsReceivableValue)
	}
	if p.InventoryValue != 85000 {
		t.Errorf("Expected inventory ending 85000, got %f", p.InventoryValue)
	}
	if p.AccountsPayableValue != 60000 {
		t.Errorf("Expected AP ending 60000, got %f", p.AccountsPayableValue)
	}
	if p.WorkingCapitalValue != 225000 {
		t.Errorf("Expected WC value 225000 from ending balances, got %f", p.WorkingCapitalValue)
	}

	// Averages are retained separately and keep driving the day metrics.
	if p.AccountsReceivableAvg != 120000 {
		t.Errorf("Expected AR average 120000, got %f", p.AccountsReceivableAvg)
	}
	if p.ArDays != 3.6 {
		t.Errorf("Expected average-based AR days 3.6, got %f", p.ArDays)
	}
	if p.InventoryDays != 4.9 {
		t.Errorf("Expected average-based inventory days 4.9, got %f", p.InventoryDays)
	}
	if p.ApDays != 3.8 {
		t.Errorf("Expected average-based AP days 3.8, got %f", p.ApDays)
	}

	// The balance sheet estimate uses the ending values too.
	expectedAssets := p.ClosingCash + 200000 + 85000 + 400000
	if p.EstimatedTotalAssets != expectedAssets {
		t.Errorf("Expected assets %f from ending balances, got %f", expectedAssets, p.EstimatedTotalAssets)
	}
	if p.EstimatedTotalLiabilities != 60000 {
		t.Errorf("Expected liabilities 60000, got %f", p.EstimatedTotalLiabilities)
	}

	// Overridden balances still reconcile internally.
	if issues := ValidateInternalConsistency(p, "Month 1"); len(issues) != 0 {
		t.Errorf("Expected no issues with ending overrides, got %+v", issues)
	}
}

func TestDerivePeriodZeroRevenue(t *testing.T) {
	// Zero revenue must not produce NaN/Inf anywhere: percentage and day
	// ratios fall back to 0.
	in := testInput(map[string]float64{
		"revenue":            0,
		"grossMarginPct":     45,
		"operatingExpenses":  100000,
		"accountsReceivable": 50000,
		"inventory":          30000,
	})

	p, err := DerivePeriod(in, nil, 0, 30)
	if err != nil {
		t.Fatalf("DerivePeriod failed: %v", err)
	}

	if p.GmPct != 0 {
		t.Errorf("Expected GM%% 0 on zero revenue, got %f", p.GmPct)
	}
	if p.ArDays != 0 {
		t.Errorf("Expected AR days 0 on zero revenue, got %f", p.ArDays)
	}
	if p.InventoryDays != 0 {
		t.Errorf("Expected inventory days 0 on zero COGS, got %f", p.InventoryDays)
	}
	if math.IsNaN(p.NetProfitPct) || math.IsInf(p.NetProfitPct, 0) {
		t.Errorf("Net profit %% must stay finite, got %f", p.NetProfitPct)
	}
}

func TestDerivePeriodNegativePBTNoTax(t *testing.T) {
	// PBT = -50,000: tax applies to positive profit only, so tax = 0 and the
	// loss flows straight into net profit.
	in := testInput(map[string]float64{
		"revenue":           100000,
		"grossMarginPct":    50,
		"operatingExpenses": 100000,
		"taxRatePct":        25,
	})

	p, err := DerivePeriod(in, nil, 0, 30)
	if err != nil {
		t.Fatalf("DerivePeriod failed: %v", err)
	}

	if p.IncomeTax != 0 {
		t.Errorf("Expected no tax on a loss, got %f", p.IncomeTax)
	}
	if p.NetProfit != -50000 {
		t.Errorf("Expected net profit -50000, got %f", p.NetProfit)
	}
}

func TestDerivePeriodRejectsNonFinite(t *testing.T) {
	in := testInput(map[string]float64{
		"revenue":           1000000,
		"grossMarginPct":    45,
		"operatingExpenses": 300000,
	})
	bad := math.Inf(1)
	in["depreciation"] = &bad

	if _, err := DerivePeriod(in, nil, 0, 30); err == nil {
		t.Error("Expected an error for non-finite input, got nil")
	}
}
