package position

// Unwind path for a wstETH collateral / WETH debt position:
// withdraw wstETH, unwrap to stETH (share rate, no slippage), swap
// stETH for ETH on a stable pool (price impact here), wrap to WETH,
// repay the debt.

import "github.com/defirisk/wsteth-risk-engine/pkg/models"

// DEXPoolParams parameterizes a constant-product AMM pool (x*y = k),
// used when no live swap quote is available. Stable pools follow the
// StableSwap invariant instead, so this is a conservative upper bound
// on their impact.
type DEXPoolParams struct {
	ReserveX float64 // stETH reserve
	ReserveY float64 // ETH reserve
	FeeBps   float64 // swap fee in basis points
}

// DefaultDEXPool mirrors a representative stETH/ETH stable pool.
func DefaultDEXPool() DEXPoolParams {
	return DEXPoolParams{ReserveX: 50_000.0, ReserveY: 50_000.0, FeeBps: 4.0}
}

// AMMPriceImpact computes the fractional price impact of selling
// tradeSize of token X into a constant-product pool.
func AMMPriceImpact(tradeSize float64, p DEXPoolParams) float64 {
	if tradeSize <= 0 {
		return 0.0
	}

	feeFraction := p.FeeBps / 10_000
	dxAfterFee := tradeSize * (1.0 - feeFraction)

	k := p.ReserveX * p.ReserveY
	newReserveX := p.ReserveX + dxAfterFee
	dy := p.ReserveY - k/newReserveX

	spotPrice := p.ReserveY / p.ReserveX
	expectedDy := tradeSize * spotPrice
	if expectedDy <= 0 {
		return 0.0
	}

	impact := 1.0 - dy/expectedDy
	if impact < 0 {
		return 0.0
	}
	return impact
}

// EstimateGasCost returns the ETH cost of a full unwind transaction.
// Flash loan + repay + withdraw + unwrap + swap + wrap typically runs
// 400-600k gas.
func EstimateGasCost(gasPriceGwei float64, gasUnits int) float64 {
	if gasPriceGwei <= 0 {
		gasPriceGwei = 30.0
	}
	if gasUnits <= 0 {
		gasUnits = 500_000
	}
	return float64(gasUnits) * gasPriceGwei * 1e-9
}

// EstimateUnwindCost is the simple linear-slippage estimate of the
// cost to fully unwind the position.
func EstimateUnwindCost(debtAmount, slippageBps float64) float64 {
	return debtAmount * (slippageBps / 10_000)
}

// EstimateUnwindCostDetailed produces the full unwind cost breakdown.
// With a pool model it uses the constant-product impact; otherwise it
// falls back to linear slippage. To repay debtAmount WETH roughly
// debtAmount stETH must be sold at a ~1:1 peg.
func EstimateUnwindCostDetailed(debtAmount float64, dexPool *DEXPoolParams, gasPriceGwei, slippageBps float64) models.UnwindCostResult {
	gasCost := EstimateGasCost(gasPriceGwei, 0)
	stethToSell := debtAmount

	var priceImpact, effectiveBps float64
	if dexPool != nil {
		priceImpact = AMMPriceImpact(stethToSell, *dexPool)
		effectiveBps = priceImpact * 10_000
	} else {
		priceImpact = slippageBps / 10_000
		effectiveBps = slippageBps
	}
	slippageCost := debtAmount * priceImpact

	return models.UnwindCostResult{
		SlippageCost:         slippageCost,
		PriceImpact:          priceImpact,
		GasCost:              gasCost,
		TotalCost:            slippageCost + gasCost,
		EffectiveSlippageBps: effectiveBps,
	}
}
