package rates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/defirisk/wsteth-risk-engine/pkg/models"
)

func wethParams() models.ReserveParams {
	return models.ReserveParams{
		OptimalUtilization: 0.92,
		BaseRate:           0.0,
		Slope1:             0.027,
		Slope2:             0.40,
		ReserveFactor:      0.15,
	}
}

func TestBorrowRateAtZero(t *testing.T) {
	m := NewModel(wethParams())
	assert.InDelta(t, 0.0, m.BorrowRate(0.0), 1e-12)
}

func TestBorrowRateAtKink(t *testing.T) {
	m := NewModel(wethParams())
	// At the kink the rate is base + slope1.
	assert.InDelta(t, 0.027, m.BorrowRate(0.92), 1e-12)
}

func TestBorrowRateAtFullUtilization(t *testing.T) {
	m := NewModel(wethParams())
	assert.InDelta(t, 0.427, m.BorrowRate(1.0), 1e-12)
}

func TestBorrowRateContinuityAtKink(t *testing.T) {
	params := []models.ReserveParams{
		wethParams(),
		{OptimalUtilization: 0.80, BaseRate: 0.0, Slope1: 0.01, Slope2: 0.40, ReserveFactor: 0.35},
		{OptimalUtilization: 0.45, BaseRate: 0.02, Slope1: 0.07, Slope2: 3.0, ReserveFactor: 0.10},
	}
	const eps = 1e-9
	for _, p := range params {
		m := NewModel(p)
		atKink := m.BorrowRate(p.OptimalUtilization)
		assert.InDelta(t, atKink, m.BorrowRate(p.OptimalUtilization-eps), 1e-6)
		assert.InDelta(t, atKink, m.BorrowRate(p.OptimalUtilization+eps), 1e-6)
	}
}

func TestBorrowRateMonotonic(t *testing.T) {
	m := NewModel(wethParams())
	prev := m.BorrowRate(0.0)
	for i := 1; i <= 1000; i++ {
		u := float64(i) / 1000.0
		r := m.BorrowRate(u)
		require.GreaterOrEqual(t, r, prev, "rate must be non-decreasing at u=%f", u)
		prev = r
	}
}

func TestBorrowRateClampsOutOfRangeInputs(t *testing.T) {
	m := NewModel(wethParams())
	assert.Equal(t, m.BorrowRate(0.0), m.BorrowRate(-0.5))
	assert.Equal(t, m.BorrowRate(1.0), m.BorrowRate(1.7))
	assert.GreaterOrEqual(t, m.BorrowRate(-1.0), 0.0)
}

func TestSupplyRateBelowBorrowRate(t *testing.T) {
	m := NewModel(wethParams())
	for i := 1; i < 100; i++ {
		u := float64(i) / 100.0
		assert.Less(t, m.SupplyRate(u), m.BorrowRate(u), "supply rate must be below borrow rate at u=%f", u)
	}
}

func TestSupplyRateFormula(t *testing.T) {
	m := NewModel(wethParams())
	u := 0.85
	expected := m.BorrowRate(u) * u * (1.0 - 0.15)
	assert.InDelta(t, expected, m.SupplyRate(u), 1e-12)
}

func TestBorrowRateVecMatchesScalar(t *testing.T) {
	m := NewModel(wethParams())
	utils := []float64{0.0, 0.46, 0.92, 0.96, 1.0, -0.2, 1.3}
	vec := m.BorrowRateVec(utils)
	require.Len(t, vec, len(utils))
	for i, u := range utils {
		assert.Equal(t, m.BorrowRate(u), vec[i], "vectorized rate must match scalar at u=%f", u)
	}
}

func TestCurve(t *testing.T) {
	m := NewModel(wethParams())
	curve := m.Curve(201)
	require.Len(t, curve, 201)
	assert.InDelta(t, 0.0, curve[0].Utilization, 1e-12)
	assert.InDelta(t, 1.0, curve[200].Utilization, 1e-12)
	for _, pt := range curve {
		assert.Equal(t, m.BorrowRate(pt.Utilization), pt.BorrowRate)
		assert.Equal(t, m.SupplyRate(pt.Utilization), pt.SupplyRate)
	}
}
