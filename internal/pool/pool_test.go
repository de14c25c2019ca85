package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/defirisk/wsteth-risk-engine/internal/rates"
	"github.com/defirisk/wsteth-risk-engine/pkg/models"
)

func newWETHModel(supply, debt float64) *Model {
	rm := rates.NewModel(models.ReserveParams{
		OptimalUtilization: 0.92,
		BaseRate:           0.0,
		Slope1:             0.027,
		Slope2:             0.40,
		ReserveFactor:      0.15,
	})
	return NewModel(State{TotalSupply: supply, TotalDebt: debt}, rm)
}

func TestUtilization(t *testing.T) {
	m := newWETHModel(2_800_000, 2_200_000)
	assert.InDelta(t, 2_200_000.0/2_800_000.0, m.Utilization(), 1e-12)
}

func TestUtilizationZeroSupply(t *testing.T) {
	m := newWETHModel(0, 100)
	assert.Equal(t, 0.0, m.Utilization())
}

func TestSimulateBorrowRaisesUtilization(t *testing.T) {
	m := newWETHModel(1000, 500)
	impact := m.SimulateBorrow(100)
	assert.InDelta(t, 0.5, impact.UtilizationBefore, 1e-12)
	assert.InDelta(t, 0.6, impact.UtilizationAfter, 1e-12)
	assert.Greater(t, impact.BorrowRateAfter, impact.BorrowRateBefore)
}

func TestSimulateWithdrawalRaisesUtilization(t *testing.T) {
	m := newWETHModel(1000, 500)
	impact := m.SimulateWithdrawal(200)
	assert.InDelta(t, 0.5, impact.UtilizationBefore, 1e-12)
	assert.InDelta(t, 0.625, impact.UtilizationAfter, 1e-12)
}

func TestSimulateWithdrawalExhaustsSupply(t *testing.T) {
	m := newWETHModel(1000, 500)
	impact := m.SimulateWithdrawal(2000)
	assert.Equal(t, 1.0, impact.UtilizationAfter)
}

func TestSimulateLiquidationImpactLowersUtilization(t *testing.T) {
	m := newWETHModel(1000, 800)
	impact := m.SimulateLiquidationImpact(300)
	assert.InDelta(t, 0.8, impact.UtilizationBefore, 1e-12)
	// Debt repaid, supply unchanged.
	assert.InDelta(t, 0.5, impact.UtilizationAfter, 1e-12)
	assert.Less(t, impact.BorrowRateAfter, impact.BorrowRateBefore)
}

func TestSimulateLiquidationImpactClampsDebt(t *testing.T) {
	m := newWETHModel(1000, 100)
	impact := m.SimulateLiquidationImpact(500)
	assert.Equal(t, 0.0, impact.UtilizationAfter)
}

func TestSimulateOperationsDoNotMutateState(t *testing.T) {
	m := newWETHModel(2_800_000, 2_200_000)
	before := m.State()

	m.SimulateBorrow(100_000)
	m.SimulateWithdrawal(250_000)
	m.SimulateLiquidationImpact(50_000)

	after := m.State()
	assert.Equal(t, before, after, "simulate operations must not mutate pool state")
	assert.Equal(t, 2_800_000.0, after.TotalSupply)
	assert.Equal(t, 2_200_000.0, after.TotalDebt)
}

func TestFromReserveState(t *testing.T) {
	s := FromReserveState(models.ReserveState{TotalSupply: 10, TotalDebt: 4})
	assert.Equal(t, State{TotalSupply: 10, TotalDebt: 4}, s)
	assert.InDelta(t, 0.4, s.Utilization(), 1e-12)
}
