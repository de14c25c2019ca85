package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/defirisk/wsteth-risk-engine/config"
	"github.com/defirisk/wsteth-risk-engine/internal/provider"
	"github.com/defirisk/wsteth-risk-engine/pkg/utils/logger"
)

func init() {
	logger.Init("error", "test")
}

func testConfig() *config.Config {
	return &config.Config{
		Position: config.PositionConfig{
			CollateralAmount: 12000,
			DebtAmount:       10500,
			EModeEnabled:     true,
		},
		Risk: config.RiskConfig{StakingAPY: 0.035},
		MonteCarlo: config.MonteCarloConfig{
			Paths:       200,
			HorizonDays: 90,
			Seed:        42,
			OUTheta:     0.78,
			OUKappa:     5.0,
			OUSigma:     0.08,
			PegDynamics: true,
			PegVol:      0.03, PegJumpIntensity: 0.1,
			PegJumpSize: -0.05, PegUtilCorrelation: -0.5,
		},
		Cascade: config.CascadeConfig{
			InitialDebtToLiquidate: 50000,
			PriceImpactPerUnit:     1e-5,
			DepegSensitivity:       5.0,
			MaxSteps:               10,
			MinDebtThreshold:       100,
		},
	}
}

func TestEvaluateProducesFullReport(t *testing.T) {
	e := NewEvaluator(provider.NewStatic(0.035), testConfig(), nil)

	report, err := e.Evaluate()
	require.NoError(t, err)

	// Valuation: 12000 wstETH at 1.18, 10500 WETH debt.
	assert.InDelta(t, 14160.0, report.CollateralValue, 1e-9)
	assert.InDelta(t, 10500.0, report.DebtValue, 1e-9)
	assert.InDelta(t, 3660.0, report.NetValue, 1e-9)
	assert.InDelta(t, 14160.0/3660.0, report.Leverage, 1e-9)

	// E-mode health factor: 14160 * 0.955 / 10500.
	assert.InDelta(t, 1.2907, report.HealthFactor, 1e-3)
	assert.Greater(t, report.DepegToLiquidation, 0.0)
	assert.Less(t, report.DepegToLiquidation, 1.0)
	assert.Greater(t, report.LiquidationPriceDrop, 0.0)

	assert.Len(t, report.Scenarios, 3)
	for _, sc := range report.Scenarios {
		assert.LessOrEqual(t, sc.Result.HFAfter, sc.Result.HFBefore)
	}

	assert.NotEmpty(t, report.Cascade.Steps)
	assert.Greater(t, report.Cascade.TotalDebtLiquidated, 0.0)

	assert.LessOrEqual(t, report.VaR.VaR99, report.VaR.VaR95)
	assert.LessOrEqual(t, report.VaR.CVaR95, report.VaR.VaR95)

	assert.Greater(t, report.UnwindCost.TotalCost, 0.0)
	assert.False(t, report.Timestamp.IsZero())
}

func TestEvaluateDeterministicTailRisk(t *testing.T) {
	cfg := testConfig()
	a, err := NewEvaluator(provider.NewStatic(0.035), cfg, nil).Evaluate()
	require.NoError(t, err)
	b, err := NewEvaluator(provider.NewStatic(0.035), cfg, nil).Evaluate()
	require.NoError(t, err)

	assert.Equal(t, a.VaR, b.VaR)
}

func TestSimulateMonteCarloShapes(t *testing.T) {
	cfg := testConfig()
	e := NewEvaluator(provider.NewStatic(0.035), cfg, nil)

	res, err := e.SimulateMonteCarlo()
	require.NoError(t, err)
	require.Len(t, res.UtilizationPaths, cfg.MonteCarlo.Paths)
	assert.Len(t, res.UtilizationPaths[0], cfg.MonteCarlo.HorizonDays+1)
	require.NotNil(t, res.PegPaths)
	// Paths start at the live wstETH price.
	assert.InDelta(t, 1.18, res.PegPaths[0][0], 1e-9)
}

func TestSimulateCascadeUsesLiveBonus(t *testing.T) {
	e := NewEvaluator(provider.NewStatic(0.035), testConfig(), nil)

	res, err := e.SimulateCascade()
	require.NoError(t, err)
	require.NotEmpty(t, res.Steps)

	// E-mode bonus 0.01 at price 1.18: seized = 50000 * 1.01 / 1.18.
	assert.InDelta(t, 50000*1.01/1.18, res.Steps[0].CollateralSeized, 1e-6)
}
