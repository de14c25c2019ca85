// Package rates implements the Aave V3 kinked (piecewise linear)
// interest rate model, replicating DefaultReserveInterestRateStrategy.
package rates

import (
	"gonum.org/v1/gonum/floats"

	"github.com/defirisk/wsteth-risk-engine/pkg/models"
)

// Model computes borrow and supply rates from a reserve's rate
// strategy parameters. Pure; safe for concurrent use.
type Model struct {
	params models.ReserveParams
}

// NewModel creates a rate model for the given reserve parameters.
func NewModel(params models.ReserveParams) *Model {
	return &Model{params: params}
}

// Params returns the reserve parameters the model was built from.
func (m *Model) Params() models.ReserveParams {
	return m.params
}

// borrowRateAt evaluates the kinked curve for a utilization already
// clamped to [0, 1]. Shared by the scalar and vectorized entry points
// so the two agree bit-for-bit.
func borrowRateAt(u float64, p models.ReserveParams) float64 {
	if u <= p.OptimalUtilization {
		return p.BaseRate + (u/p.OptimalUtilization)*p.Slope1
	}
	excess := (u - p.OptimalUtilization) / (1.0 - p.OptimalUtilization)
	return p.BaseRate + p.Slope1 + excess*p.Slope2
}

func clamp01(u float64) float64 {
	if u < 0 {
		return 0.0
	}
	if u > 1 {
		return 1.0
	}
	return u
}

// BorrowRate computes the annual variable borrow rate for a given
// utilization. Input outside [0, 1] is clamped. The two linear
// branches agree exactly at the kink, and the rate is non-decreasing
// over [0, 1].
func (m *Model) BorrowRate(utilization float64) float64 {
	return borrowRateAt(clamp01(utilization), m.params)
}

// SupplyRate computes the annual supply (deposit) rate:
//
//	R_supply = R_borrow * U * (1 - reserveFactor)
func (m *Model) SupplyRate(utilization float64) float64 {
	u := clamp01(utilization)
	return borrowRateAt(u, m.params) * u * (1.0 - m.params.ReserveFactor)
}

// BorrowRateVec evaluates the borrow rate for a slice of utilizations.
// Matches BorrowRate exactly; used by the Monte Carlo engine on whole
// utilization paths.
func (m *Model) BorrowRateVec(utilizations []float64) []float64 {
	out := make([]float64, len(utilizations))
	for i, u := range utilizations {
		out[i] = borrowRateAt(clamp01(u), m.params)
	}
	return out
}

// Curve samples the full rate curve at n evenly spaced utilization
// points over [0, 1], for charting.
func (m *Model) Curve(n int) []models.RatePoint {
	if n < 2 {
		n = 2
	}
	grid := floats.Span(make([]float64, n), 0, 1)
	points := make([]models.RatePoint, n)
	for i, u := range grid {
		points[i] = models.RatePoint{
			Utilization: u,
			BorrowRate:  m.BorrowRate(u),
			SupplyRate:  m.SupplyRate(u),
		}
	}
	return points
}
