package engine

import (
	"fmt"
	"sync"

	"finmodel/pkg/core/calc"
	"finmodel/pkg/models"
)

// DeriveAll derives every period in order. It is a strict left fold: period
// i consumes period i-1's derived output, so the fold itself cannot be
// parallelized. A fatal error on any period aborts the whole batch - no
// partial result is ever returned. After the fold a second, independent pass
// fills in trailing trend deltas; each period there only reads its
// predecessor, so that pass fans out across goroutines.
func DeriveAll(inputs []models.PeriodInput, periodTypeLabel string) ([]models.CalculatedPeriodData, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no periods to derive")
	}

	days := DaysFor(periodTypeLabel)
	out := make([]models.CalculatedPeriodData, 0, len(inputs))

	var prior *models.CalculatedPeriodData
	for i, input := range inputs {
		derived, err := DerivePeriod(input, prior, i, days)
		if err != nil {
			return nil, fmt.Errorf("derive period %d: %w", i+1, err)
		}
		derived.PeriodLabel = PeriodLabel(periodTypeLabel, i)
		out = append(out, *derived)
		prior = &out[len(out)-1]
	}

	applyTrends(out)
	return out, nil
}

// applyTrends computes trailing deltas against the prior period. Safe to run
// concurrently: every goroutine writes only its own element and reads only
// the already-final predecessor.
func applyTrends(periods []models.CalculatedPeriodData) {
	var wg sync.WaitGroup
	for i := 1; i < len(periods); i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			prev := &periods[i-1]
			cur := &periods[i]
			cur.RevenueTrendPct = calc.GrowthRate(cur.Revenue, prev.Revenue) * 100
			cur.EbitdaTrendPct = calc.GrowthRate(cur.Ebitda, prev.Ebitda) * 100
			cur.NetProfitTrendPct = calc.GrowthRate(cur.NetProfit, prev.NetProfit) * 100
			cur.ClosingCashTrendAbs = cur.ClosingCash - prev.ClosingCash
		}(i)
	}
	wg.Wait()
}

// PeriodLabel builds the display label for a period, e.g. "Quarter 3".
func PeriodLabel(periodTypeLabel string, index int) string {
	switch periodTypeLabel {
	case "month":
		return fmt.Sprintf("Month %d", index+1)
	case "quarter":
		return fmt.Sprintf("Quarter %d", index+1)
	case "year":
		return fmt.Sprintf("Year %d", index+1)
	}
	return fmt.Sprintf("Period %d", index+1)
}
