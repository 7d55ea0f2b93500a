// Package calc provides deterministic, stateless financial calculations:
// discounting primitives plus the investment-analysis calculators (NPV, IRR,
// payback, breakeven, cash-flow projection). Nothing here touches the period
// engine; every function is a pure value-in/value-out computation.
package calc

import "math"

// safeDiv guards the zero denominator so ratios never become NaN/Inf.
func safeDiv(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// GrowthRate returns (current - prior) / |prior| as a decimal, 0 when prior
// is zero.
func GrowthRate(current, prior float64) float64 {
	if prior == 0 {
		return 0
	}
	return (current - prior) / math.Abs(prior)
}

// CAGR returns the compound growth rate per period as a decimal.
func CAGR(endingValue, beginningValue float64, periods int) float64 {
	if beginningValue == 0 || periods == 0 {
		return 0
	}
	return math.Pow(endingValue/beginningValue, 1.0/float64(periods)) - 1
}

// PresentValue discounts a single cash flow received after the given number
// of periods.
//
// FORMULA: PV = CF / (1 + r)^t
func PresentValue(cashFlow, discountRate float64, periods int) float64 {
	if periods < 0 {
		return 0
	}
	return cashFlow / math.Pow(1+discountRate, float64(periods))
}

// PresentValueOfCashFlows discounts a series of end-of-period cash flows.
//
// FORMULA: PV = Σ [ CF_t / (1 + r)^t ], t = 1..n
func PresentValueOfCashFlows(cashFlows []float64, discountRate float64) float64 {
	var pv float64
	for t, cf := range cashFlows {
		pv += cf / math.Pow(1+discountRate, float64(t+1))
	}
	return pv
}
