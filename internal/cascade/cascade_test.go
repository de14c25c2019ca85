package cascade

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/defirisk/wsteth-risk-engine/internal/pool"
	"github.com/defirisk/wsteth-risk-engine/pkg/models"
	"github.com/defirisk/wsteth-risk-engine/pkg/utils/logger"
)

func init() {
	logger.Init("error", "test")
}

func wethParams() models.ReserveParams {
	return models.ReserveParams{
		OptimalUtilization: 0.92,
		BaseRate:           0.0,
		Slope1:             0.027,
		Slope2:             0.40,
		ReserveFactor:      0.15,
	}
}

func wethPool() pool.State {
	return pool.State{TotalSupply: 2_800_000, TotalDebt: 2_200_000}
}

func TestSimulateDoesNotMutateState(t *testing.T) {
	state := wethPool()
	before := state

	_, err := NewSimulator().Simulate(state, wethParams(), DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, before, state)
}

func TestSimulateBasicCascade(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitialDebtToLiquidate = 5000.0

	res, err := NewSimulator().Simulate(wethPool(), wethParams(), cfg)
	require.NoError(t, err)

	require.NotEmpty(t, res.Steps)
	assert.LessOrEqual(t, len(res.Steps), cfg.MaxSteps)

	first := res.Steps[0]
	assert.Equal(t, 0, first.Step)
	assert.Equal(t, 5000.0, first.DebtLiquidated)
	// seized = debt * (1 + bonus) / price
	assert.InDelta(t, 5000.0*1.01/1.18, first.CollateralSeized, 1e-9)
	// Supply is untouched by repayment.
	assert.Equal(t, 2_800_000.0, first.TotalSupply)
	assert.Equal(t, 2_195_000.0, first.TotalDebt)

	var totalDebt, totalSeized float64
	for _, step := range res.Steps {
		totalDebt += step.DebtLiquidated
		totalSeized += step.CollateralSeized
	}
	assert.InDelta(t, totalDebt, res.TotalDebtLiquidated, 1e-9)
	assert.InDelta(t, totalSeized, res.TotalCollateralSeized, 1e-9)
}

func TestSimulateStopsBelowMinDebt(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitialDebtToLiquidate = 200.0
	// 200 ETH liquidated seizes ~171 wstETH, pegDrop ~1.7e-3, at-risk
	// debt is large with sensitivity 5; lower the sensitivity so the
	// follow-on debt falls under the threshold quickly.
	cfg.DepegSensitivity = 0.01

	res, err := NewSimulator().Simulate(wethPool(), wethParams(), cfg)
	require.NoError(t, err)
	assert.Less(t, len(res.Steps), cfg.MaxSteps)
}

func TestSimulateRespectsMaxSteps(t *testing.T) {
	cfg := DefaultConfig()
	// Tuned so each round regenerates roughly the debt it liquidated,
	// keeping the cascade alive through every round.
	cfg.InitialDebtToLiquidate = 1000.0
	cfg.PriceImpactPerUnit = 1e-7
	cfg.DepegSensitivity = 5.3

	res, err := NewSimulator().Simulate(wethPool(), wethParams(), cfg)
	require.NoError(t, err)
	assert.Equal(t, cfg.MaxSteps, len(res.Steps))
}

func TestPriceFloorUnderExtremeImpact(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitialDebtToLiquidate = 2_000_000.0
	cfg.PriceImpactPerUnit = 1.0 // absurd impact to force the floor
	cfg.DepegSensitivity = 100.0

	res, err := NewSimulator().Simulate(wethPool(), wethParams(), cfg)
	require.NoError(t, err)

	for _, step := range res.Steps {
		assert.GreaterOrEqual(t, step.CollateralPrice, 0.01)
	}
}

func TestCascadeCannotLiquidateMoreThanPoolDebt(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitialDebtToLiquidate = 10_000_000.0 // more than total pool debt

	res, err := NewSimulator().Simulate(wethPool(), wethParams(), cfg)
	require.NoError(t, err)

	require.NotEmpty(t, res.Steps)
	assert.Equal(t, 2_200_000.0, res.Steps[0].DebtLiquidated)
	assert.Equal(t, 0.0, res.Steps[0].TotalDebt)
}

func TestUtilizationFallsAsDebtIsRepaid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitialDebtToLiquidate = 100_000.0
	cfg.DepegSensitivity = 2.0

	res, err := NewSimulator().Simulate(wethPool(), wethParams(), cfg)
	require.NoError(t, err)
	require.NotEmpty(t, res.Steps)

	initialUtil := wethPool().Utilization()
	prev := initialUtil
	for _, step := range res.Steps {
		assert.Less(t, step.Utilization, prev)
		prev = step.Utilization
	}
	assert.Less(t, res.FinalUtilization, initialUtil)
}

func TestSimulateRejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitialDebtToLiquidate = 0
	_, err := NewSimulator().Simulate(wethPool(), wethParams(), cfg)
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.MaxSteps = 0
	_, err = NewSimulator().Simulate(wethPool(), wethParams(), cfg)
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.CollateralPrice = 0
	_, err = NewSimulator().Simulate(wethPool(), wethParams(), cfg)
	assert.Error(t, err)
}
