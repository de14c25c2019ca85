// Package liquidation implements Aave V3 liquidation mechanics:
// health factor, close factor, and depeg sensitivity analysis.
package liquidation

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/defirisk/wsteth-risk-engine/pkg/models"
)

// Model computes liquidation metrics for one collateral asset. When
// an E-mode category is supplied its parameters replace the standard
// ones entirely; the two are never blended.
type Model struct {
	ltv                  float64
	liquidationThreshold float64
	liquidationBonus     float64
}

// NewModel creates a liquidation model from standard parameters,
// optionally overridden by an E-mode category.
func NewModel(params models.LiquidationParams, emode *models.EModeCategory) *Model {
	if emode != nil {
		return &Model{
			ltv:                  emode.LTV,
			liquidationThreshold: emode.LiquidationThreshold,
			liquidationBonus:     emode.LiquidationBonus,
		}
	}
	return &Model{
		ltv:                  params.LTV,
		liquidationThreshold: params.LiquidationThreshold,
		liquidationBonus:     params.LiquidationBonus,
	}
}

// LTV returns the effective loan-to-value ratio.
func (m *Model) LTV() float64 { return m.ltv }

// LiquidationThreshold returns the effective liquidation threshold.
func (m *Model) LiquidationThreshold() float64 { return m.liquidationThreshold }

// LiquidationBonus returns the effective liquidator bonus.
func (m *Model) LiquidationBonus() float64 { return m.liquidationBonus }

// HealthFactor computes HF = (collateral * threshold) / debt.
// Returns +Inf when there is no debt.
func (m *Model) HealthFactor(collateralValue, debtValue float64) float64 {
	if debtValue <= 0 {
		return math.Inf(1)
	}
	return (collateralValue * m.liquidationThreshold) / debtValue
}

// CloseFactor returns the fraction of debt a liquidator may repay:
// 0 when the position is healthy, 0.5 for 0.95 <= HF < 1.0, and 1.0
// below 0.95. The boundary at exactly 0.95 belongs to the 0.5 branch.
func (m *Model) CloseFactor(hf float64) float64 {
	if hf >= 1.0 {
		return 0.0
	}
	if hf >= 0.95 {
		return 0.5
	}
	return 1.0
}

// MaxBorrowable is the maximum debt value allowed against the
// collateral, using LTV.
func (m *Model) MaxBorrowable(collateralValue float64) float64 {
	return collateralValue * m.ltv
}

// LiquidationPriceDrop computes the fractional collateral-value drop
// that brings HF to exactly 1.0. Returns 0 when the position is
// already liquidatable and +Inf when it has no debt.
func (m *Model) LiquidationPriceDrop(collateralValue, debtValue float64) float64 {
	if debtValue <= 0 {
		return math.Inf(1)
	}
	// HF = (collateral * (1 - drop) * threshold) / debt = 1.0
	// => drop = 1 - debt / (collateral * threshold)
	criticalRatio := debtValue / (collateralValue * m.liquidationThreshold)
	if criticalRatio >= 1.0 {
		return 0.0
	}
	return 1.0 - criticalRatio
}

// DepegToLiquidation computes the stETH/ETH peg ratio at which HF
// reaches 1.0. The money market prices wstETH off a 1:1 oracle, so the
// dominant risk is a secondary-market depeg. Returns 0 when the
// position is already liquidatable at the current peg, or has no debt.
func (m *Model) DepegToLiquidation(collateralAmount, collateralPrice, debtValue float64) float64 {
	if debtValue <= 0 {
		return 0.0
	}
	// HF = (amount * price * peg * threshold) / debt = 1.0
	pegAtLiquidation := debtValue / (collateralAmount * collateralPrice * m.liquidationThreshold)
	if pegAtLiquidation >= 1.0 {
		return 0.0
	}
	return pegAtLiquidation
}

// DepegSensitivity tabulates the health factor over a linearly spaced
// range of peg ratios. pegLow/pegHigh default to [0.85, 1.0] when both
// are zero. The table is non-decreasing in the peg.
func (m *Model) DepegSensitivity(collateralAmount, collateralPrice, debtValue, pegLow, pegHigh float64, nPoints int) []models.DepegPoint {
	if pegLow == 0 && pegHigh == 0 {
		pegLow, pegHigh = 0.85, 1.0
	}
	if nPoints < 2 {
		nPoints = 2
	}
	pegs := floats.Span(make([]float64, nPoints), pegLow, pegHigh)
	table := make([]models.DepegPoint, nPoints)
	for i, peg := range pegs {
		collateralValue := collateralAmount * collateralPrice * peg
		table[i] = models.DepegPoint{
			PegRatio:     peg,
			HealthFactor: m.HealthFactor(collateralValue, debtValue),
		}
	}
	return table
}
