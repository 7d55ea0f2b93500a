package calc

import (
	"fmt"
	"math"
)

// =============================================================================
// NET PRESENT VALUE
// =============================================================================

// NPVResult holds the outcome of a net-present-value calculation.
type NPVResult struct {
	NPV                float64 `json:"npv"`
	PVOfInflows        float64 `json:"pvOfInflows"`
	ProfitabilityIndex float64 `json:"profitabilityIndex"`
}

// NetPresentValue computes NPV against an up-front investment.
//
// FORMULA: NPV = Σ [ CF_t / (1 + r)^t ] - investment
//
// The profitability index is PV(inflows) / investment (0 when the investment
// is 0). Rejects empty cash-flow series and discount rates below -100%.
func NetPresentValue(cashFlows []float64, discountRate, initialInvestment float64) (*NPVResult, error) {
	if len(cashFlows) == 0 {
		return nil, fmt.Errorf("cash flow series must not be empty")
	}
	if discountRate < -1 {
		return nil, fmt.Errorf("discount rate must not be below -100%%")
	}

	pv := PresentValueOfCashFlows(cashFlows, discountRate)
	return &NPVResult{
		NPV:                pv - initialInvestment,
		PVOfInflows:        pv,
		ProfitabilityIndex: safeDiv(pv, initialInvestment),
	}, nil
}

// =============================================================================
// INTERNAL RATE OF RETURN
// =============================================================================

// IRRResult carries the found rate and whether the search converged.
type IRRResult struct {
	IRR     float64 `json:"irr"`
	IsValid bool    `json:"isValid"`
}

// irr search bounds and termination.
const (
	irrLowerBound = -0.9999
	irrUpperBound = 10.0
	irrIterations = 200
	irrTolerance  = 1e-7
)

// InternalRateOfReturn finds the discount rate at which NPV is zero, by
// bisection over [-99.99%, 1000%]. IsValid is false when the series has no
// sign change (no root can exist) or the bracket never straddles zero.
func InternalRateOfReturn(cashFlows []float64, initialInvestment float64) IRRResult {
	if len(cashFlows) == 0 {
		return IRRResult{}
	}

	// A root requires at least one inflow and one outflow across the full
	// series including the up-front investment.
	hasPositive := false
	hasNegative := initialInvestment > 0
	for _, cf := range cashFlows {
		if cf > 0 {
			hasPositive = true
		}
		if cf < 0 {
			hasNegative = true
		}
	}
	if !hasPositive || !hasNegative {
		return IRRResult{}
	}

	npvAt := func(rate float64) float64 {
		return PresentValueOfCashFlows(cashFlows, rate) - initialInvestment
	}

	lo, hi := irrLowerBound, irrUpperBound
	fLo, fHi := npvAt(lo), npvAt(hi)
	if fLo == 0 {
		return IRRResult{IRR: lo, IsValid: true}
	}
	if fHi == 0 {
		return IRRResult{IRR: hi, IsValid: true}
	}
	if fLo*fHi > 0 {
		return IRRResult{} // no sign change inside the bracket
	}

	for i := 0; i < irrIterations; i++ {
		mid := (lo + hi) / 2
		fMid := npvAt(mid)
		if math.Abs(fMid) < irrTolerance || (hi-lo)/2 < irrTolerance {
			return IRRResult{IRR: mid, IsValid: true}
		}
		if fLo*fMid < 0 {
			hi = mid
		} else {
			lo = mid
			fLo = fMid
		}
	}

	return IRRResult{IRR: (lo + hi) / 2, IsValid: true}
}

// =============================================================================
// PAYBACK PERIOD
// =============================================================================

// PaybackResult reports when cumulative cash flows recover the investment.
// PaybackPeriods is -1 when the investment is never recovered within the
// series (JSON cannot carry +Inf).
type PaybackResult struct {
	PaybackPeriods      float64 `json:"paybackPeriods"`
	IsWithinProjectLife bool    `json:"isWithinProjectLife"`
}

// PaybackPeriod finds the cumulative-sum crossing point with fractional
// interpolation inside the crossing period.
func PaybackPeriod(cashFlows []float64, initialInvestment float64) (*PaybackResult, error) {
	if len(cashFlows) == 0 {
		return nil, fmt.Errorf("cash flow series must not be empty")
	}
	if initialInvestment <= 0 {
		return &PaybackResult{PaybackPeriods: 0, IsWithinProjectLife: true}, nil
	}

	cumulative := 0.0
	for i, cf := range cashFlows {
		prev := cumulative
		cumulative += cf
		if cumulative >= initialInvestment {
			remaining := initialInvestment - prev
			fraction := 0.0
			if cf > 0 {
				fraction = remaining / cf
			}
			return &PaybackResult{
				PaybackPeriods:      float64(i) + fraction,
				IsWithinProjectLife: true,
			}, nil
		}
	}

	return &PaybackResult{PaybackPeriods: -1, IsWithinProjectLife: false}, nil
}

// =============================================================================
// BREAKEVEN
// =============================================================================

// BreakevenResult carries the unit/revenue breakeven point.
type BreakevenResult struct {
	BreakEvenUnits          float64 `json:"breakEvenUnits"`
	BreakEvenRevenue        float64 `json:"breakEvenRevenue"`
	ContributionMargin      float64 `json:"contributionMargin"`
	ContributionMarginRatio float64 `json:"contributionMarginRatio"`
}

// Breakeven computes the classic unit breakeven.
//
// FORMULA: units = fixed costs / (price - variable cost)
//
// Errors when the contribution margin is not positive: the breakeven point
// does not exist.
func Breakeven(fixedCosts, variableCostPerUnit, pricePerUnit float64) (*BreakevenResult, error) {
	margin := pricePerUnit - variableCostPerUnit
	if margin <= 0 {
		return nil, fmt.Errorf("price per unit (%.2f) must exceed variable cost per unit (%.2f)", pricePerUnit, variableCostPerUnit)
	}
	units := fixedCosts / margin
	return &BreakevenResult{
		BreakEvenUnits:          units,
		BreakEvenRevenue:        units * pricePerUnit,
		ContributionMargin:      margin,
		ContributionMarginRatio: safeDiv(margin, pricePerUnit),
	}, nil
}

// =============================================================================
// CASH FLOW PROJECTION
// =============================================================================

// ProjectionResult holds a geometric series of projected flows and their
// discounted present values.
type ProjectionResult struct {
	ProjectedFlows []float64 `json:"projectedFlows"`
	PresentValues  []float64 `json:"presentValues"`
	TotalPV        float64   `json:"totalPV"`
}

// ProjectCashFlows grows an initial flow for the given number of periods and
// discounts each projected flow back to today.
//
// FORMULA: CF_t = CF_0 × (1 + g)^t ; PV_t = CF_t / (1 + r)^t
func ProjectCashFlows(initialCashFlow, growthRate, discountRate float64, periods int) (*ProjectionResult, error) {
	if periods <= 0 {
		return nil, fmt.Errorf("projection requires at least one period")
	}
	if discountRate < -1 {
		return nil, fmt.Errorf("discount rate must not be below -100%%")
	}

	flows := make([]float64, periods)
	pvs := make([]float64, periods)
	totalPV := 0.0
	for t := 1; t <= periods; t++ {
		flow := initialCashFlow * math.Pow(1+growthRate, float64(t))
		pv := PresentValue(flow, discountRate, t)
		flows[t-1] = flow
		pvs[t-1] = pv
		totalPV += pv
	}

	return &ProjectionResult{
		ProjectedFlows: flows,
		PresentValues:  pvs,
		TotalPV:        totalPV,
	}, nil
}
