package stress

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/defirisk/wsteth-risk-engine/pkg/models"
	"github.com/defirisk/wsteth-risk-engine/pkg/utils/errors"
)

// ComputeVaR derives tail-risk statistics from simulated terminal P&L.
// The liquidation probability is the exact fraction of paths whose
// health factor breached 1.0 during the horizon.
func ComputeVaR(mc *models.MonteCarloResult) (models.VaRResult, error) {
	if mc == nil || len(mc.TerminalPnL) == 0 {
		return models.VaRResult{}, errors.InvalidArgument("stress: empty simulation result")
	}

	res := tailStats(mc.TerminalPnL)

	liquidated := 0
	for _, l := range mc.Liquidated {
		if l {
			liquidated++
		}
	}
	res.LiquidationProb = float64(liquidated) / float64(len(mc.Liquidated))
	return res, nil
}

// ComputeVaRFromScenarios derives tail-risk statistics from scenario
// P&L draws. When stressed collateral and debt arrays are provided,
// the liquidation probability is the fraction of draws whose stressed
// health factor (collateral*threshold/debt) falls below 1.0; without
// them no proxy is computed and the probability is reported as 0.
func ComputeVaRFromScenarios(pnl []float64, liquidationThreshold float64, stressedCollateral, stressedDebt []float64) (models.VaRResult, error) {
	if len(pnl) == 0 {
		return models.VaRResult{}, errors.InvalidArgument("stress: empty P&L sample")
	}

	res := tailStats(pnl)

	if len(stressedCollateral) == len(pnl) && len(stressedDebt) == len(pnl) && len(pnl) > 0 {
		liquidated := 0
		for i := range pnl {
			if stressedDebt[i] <= 0 {
				continue
			}
			if stressedCollateral[i]*liquidationThreshold/stressedDebt[i] < 1.0 {
				liquidated++
			}
		}
		res.LiquidationProb = float64(liquidated) / float64(len(pnl))
	}
	return res, nil
}

func tailStats(pnl []float64) models.VaRResult {
	sorted := make([]float64, len(pnl))
	copy(sorted, pnl)
	sort.Float64s(sorted)

	var95 := stat.Quantile(0.05, stat.Empirical, sorted, nil)
	var99 := stat.Quantile(0.01, stat.Empirical, sorted, nil)

	return models.VaRResult{
		VaR95:   var95,
		VaR99:   var99,
		CVaR95:  tailMean(sorted, var95),
		CVaR99:  tailMean(sorted, var99),
		MaxLoss: sorted[0],
	}
}

// tailMean averages the sorted sample at or below the cutoff. The
// cutoff itself comes from the sample, so the tail is never empty.
func tailMean(sorted []float64, cutoff float64) float64 {
	var sum float64
	var n int
	for _, v := range sorted {
		if v > cutoff {
			break
		}
		sum += v
		n++
	}
	if n == 0 {
		return cutoff
	}
	return sum / float64(n)
}
