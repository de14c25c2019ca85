package stress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/defirisk/wsteth-risk-engine/internal/montecarlo"
	"github.com/defirisk/wsteth-risk-engine/internal/provider"
	"github.com/defirisk/wsteth-risk-engine/pkg/models"
	"github.com/defirisk/wsteth-risk-engine/pkg/utils/logger"
)

func init() {
	logger.Init("error", "test")
}

func testPosition() models.Position {
	return models.Position{CollateralAmount: 12000, DebtAmount: 10500, EModeEnabled: true}
}

func TestHistoricalScenariosLibrary(t *testing.T) {
	scenarios := HistoricalScenarios()
	require.Len(t, scenarios, 3)

	byName := map[string]models.StressScenario{}
	for _, sc := range scenarios {
		byName[sc.Name] = sc
	}
	june := byName["june_2022_depeg"]
	assert.Equal(t, -0.40, june.ETHPriceChange)
	assert.Equal(t, 0.93, june.StETHPeg)
	assert.Equal(t, 0.95, june.UtilizationShock)
	assert.Equal(t, 14, june.DurationDays)

	march := byName["march_2020_crash"]
	assert.Equal(t, 0.98, march.StETHPeg)
	assert.Equal(t, 3, march.DurationDays)
}

func TestApplyScenarioOnlyPegMovesHealthFactor(t *testing.T) {
	p := provider.NewStatic(0.035)
	pos := testPosition()

	// Scenario with a large ETH crash but the peg at par: the position
	// is ETH-denominated, so the health factor must not move.
	ethOnly := NewCustomScenario("eth_crash_only", -0.60, 1.0, 0.95, 7)
	res, err := ApplyScenario(pos, p, ethOnly)
	require.NoError(t, err)
	// Static provider's peg is already 1.0.
	assert.InDelta(t, res.HFBefore, res.HFAfter, 1e-9)
	assert.False(t, res.IsLiquidated)
}

func TestApplyScenarioJune2022(t *testing.T) {
	p := provider.NewStatic(0.035)
	pos := testPosition()

	var june models.StressScenario
	for _, sc := range HistoricalScenarios() {
		if sc.Name == "june_2022_depeg" {
			june = sc
		}
	}
	res, err := ApplyScenario(pos, p, june)
	require.NoError(t, err)

	// HF before: 12000 * 1.18 * 0.955 / 10500
	assert.InDelta(t, 1.2907, res.HFBefore, 1e-3)
	// At peg 0.93 collateral value scales by 0.93.
	assert.InDelta(t, res.HFBefore*0.93, res.HFAfter, 1e-9)
	assert.InDelta(t, 12000*1.18, res.CollateralBefore, 1e-9)
	assert.InDelta(t, 12000*1.18*0.93, res.CollateralAfter, 1e-6)
	assert.Less(t, res.PnLImpact, 0.0)
	assert.False(t, res.IsLiquidated, "HF ~1.20 at peg 0.93 stays solvent")
}

func TestApplyScenarioDeepDepegLiquidates(t *testing.T) {
	p := provider.NewStatic(0.035)
	pos := testPosition()

	deep := NewCustomScenario("deep_depeg", -0.40, 0.70, 0.98, 14)
	res, err := ApplyScenario(pos, p, deep)
	require.NoError(t, err)
	assert.Less(t, res.HFAfter, 1.0)
	assert.True(t, res.IsLiquidated)
}

func TestGenerateCorrelatedScenariosDeterministic(t *testing.T) {
	a, err := GenerateCorrelatedScenarios(100, 1.0, 0.785, 42)
	require.NoError(t, err)
	b, err := GenerateCorrelatedScenarios(100, 1.0, 0.785, 42)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := GenerateCorrelatedScenarios(100, 1.0, 0.785, 7)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestGenerateCorrelatedScenariosClampsAndCenters(t *testing.T) {
	scenarios, err := GenerateCorrelatedScenarios(5000, 0.95, 0.785, 42)
	require.NoError(t, err)
	require.Len(t, scenarios, 5000)

	var pegSum float64
	for _, sc := range scenarios {
		assert.Greater(t, sc.StETHPeg, 0.0)
		assert.LessOrEqual(t, sc.StETHPeg, 1.0)
		assert.GreaterOrEqual(t, sc.Utilization, 0.0)
		assert.LessOrEqual(t, sc.Utilization, 1.0)
		pegSum += sc.StETHPeg
	}
	// Recentred on the base peg, allowing for the clamp at 1.0 pulling
	// the mean down slightly.
	assert.InDelta(t, 0.95, pegSum/float64(len(scenarios)), 0.03)
}

func TestGenerateCorrelatedScenariosNegativeCorrelation(t *testing.T) {
	scenarios, err := GenerateCorrelatedScenarios(5000, 0.95, 0.5, 42)
	require.NoError(t, err)

	// ETH price change and utilization are negatively correlated:
	// crashes push utilization up. Check the sample correlation sign.
	var meanE, meanU float64
	for _, sc := range scenarios {
		meanE += sc.ETHPriceChange
		meanU += sc.Utilization
	}
	meanE /= float64(len(scenarios))
	meanU /= float64(len(scenarios))
	var cov float64
	for _, sc := range scenarios {
		cov += (sc.ETHPriceChange - meanE) * (sc.Utilization - meanU)
	}
	assert.Less(t, cov, 0.0)
}

func TestGenerateCorrelatedScenariosRejectsBadInput(t *testing.T) {
	_, err := GenerateCorrelatedScenarios(0, 1.0, 0.5, 1)
	assert.Error(t, err)
	_, err = GenerateCorrelatedScenarios(10, 0.0, 0.5, 1)
	assert.Error(t, err)
	_, err = GenerateCorrelatedScenarios(10, 1.2, 0.5, 1)
	assert.Error(t, err)
}

func TestComputeVaROrdering(t *testing.T) {
	cfg := montecarlo.Config{
		InitialUtilization:   0.785,
		CollateralValue:      11500,
		DebtValue:            10500,
		LiquidationThreshold: 0.955,
		StakingAPY:           0.035,
		SupplyAPY:            0.018,
		RateParams: models.ReserveParams{
			OptimalUtilization: 0.92,
			Slope1:             0.027,
			Slope2:             0.40,
			ReserveFactor:      0.15,
		},
		Paths:       1000,
		HorizonDays: 365,
		Seed:        42,
	}
	peg := montecarlo.DefaultPegDynamicsParams()
	cfg.Peg = &peg
	cfg.InitialPeg = 1.18

	mc, err := montecarlo.NewEngine().Run(cfg)
	require.NoError(t, err)

	res, err := ComputeVaR(mc)
	require.NoError(t, err)

	assert.LessOrEqual(t, res.VaR99, res.VaR95)
	assert.LessOrEqual(t, res.CVaR95, res.VaR95)
	assert.LessOrEqual(t, res.CVaR99, res.VaR99)
	assert.LessOrEqual(t, res.MaxLoss, res.VaR99)
	assert.GreaterOrEqual(t, res.LiquidationProb, 0.0)
	assert.LessOrEqual(t, res.LiquidationProb, 1.0)
}

func TestComputeVaRLiquidationProbMatchesPaths(t *testing.T) {
	mc := &models.MonteCarloResult{
		TerminalPnL: []float64{-10, -5, 0, 5, 10, 15, 20, 25, -30, -40},
		Liquidated:  []bool{true, false, false, false, false, false, false, false, true, true},
	}
	res, err := ComputeVaR(mc)
	require.NoError(t, err)
	assert.InDelta(t, 0.3, res.LiquidationProb, 1e-12)
	assert.Equal(t, -40.0, res.MaxLoss)
}

func TestComputeVaRFromScenarios(t *testing.T) {
	pnl := []float64{-100, -50, -20, 0, 10, 30, 60, 100}
	collateral := []float64{900, 1000, 1050, 1100, 1150, 1200, 1300, 1400}
	debt := []float64{1000, 1000, 1000, 1000, 1000, 1000, 1000, 1000}

	res, err := ComputeVaRFromScenarios(pnl, 0.955, collateral, debt)
	require.NoError(t, err)

	// HF < 1.0 for collateral below 1000/0.955 ~ 1047.1.
	assert.InDelta(t, 2.0/8.0, res.LiquidationProb, 1e-12)
	assert.Equal(t, -100.0, res.MaxLoss)
	assert.LessOrEqual(t, res.VaR99, res.VaR95)
}

func TestComputeVaRFromScenariosNoStressedArrays(t *testing.T) {
	pnl := []float64{-100, -50, 0, 50}
	res, err := ComputeVaRFromScenarios(pnl, 0.955, nil, nil)
	require.NoError(t, err)
	// Without stressed balances there is no proxy; report zero.
	assert.Equal(t, 0.0, res.LiquidationProb)
}

func TestComputeVaRRejectsEmpty(t *testing.T) {
	_, err := ComputeVaR(&models.MonteCarloResult{})
	assert.Error(t, err)
	_, err = ComputeVaRFromScenarios(nil, 0.955, nil, nil)
	assert.Error(t, err)
}
