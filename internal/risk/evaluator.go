// Package risk orchestrates the full evaluation of a leveraged
// wstETH/WETH position: valuation, solvency, carry, tail risk from
// Monte Carlo simulation, stress scenarios, and cascade analysis,
// assembled into a single report.
package risk

import (
	"time"

	"github.com/defirisk/wsteth-risk-engine/config"
	"github.com/defirisk/wsteth-risk-engine/internal/cascade"
	"github.com/defirisk/wsteth-risk-engine/internal/montecarlo"
	"github.com/defirisk/wsteth-risk-engine/internal/pool"
	"github.com/defirisk/wsteth-risk-engine/internal/position"
	"github.com/defirisk/wsteth-risk-engine/internal/provider"
	"github.com/defirisk/wsteth-risk-engine/internal/rates"
	"github.com/defirisk/wsteth-risk-engine/internal/stress"
	"github.com/defirisk/wsteth-risk-engine/pkg/metrics"
	"github.com/defirisk/wsteth-risk-engine/pkg/models"
	"github.com/defirisk/wsteth-risk-engine/pkg/utils/errors"
	"github.com/defirisk/wsteth-risk-engine/pkg/utils/logger"
)

// Evaluator runs full risk evaluations of the configured position.
type Evaluator struct {
	provider provider.PoolDataProvider
	cfg      *config.Config
	engine   *montecarlo.Engine
	cascade  *cascade.Simulator
	recorder *metrics.Recorder
	log      *logger.Logger
}

// NewEvaluator creates an evaluator. The recorder may be nil when
// metrics are not wanted (one-shot CLI runs).
func NewEvaluator(p provider.PoolDataProvider, cfg *config.Config, recorder *metrics.Recorder) *Evaluator {
	return &Evaluator{
		provider: p,
		cfg:      cfg,
		engine:   montecarlo.NewEngine(),
		cascade:  cascade.NewSimulator(),
		recorder: recorder,
		log:      logger.GetLogger("risk.evaluator"),
	}
}

// Position returns the configured position.
func (e *Evaluator) Position() models.Position {
	return models.Position{
		CollateralAmount: e.cfg.Position.CollateralAmount,
		DebtAmount:       e.cfg.Position.DebtAmount,
		EModeEnabled:     e.cfg.Position.EModeEnabled,
	}
}

// Evaluate produces a full risk report for the configured position.
func (e *Evaluator) Evaluate() (*models.RiskReport, error) {
	started := time.Now()
	report, err := e.evaluate()
	if e.recorder != nil {
		result := "success"
		if err != nil {
			result = "error"
		}
		e.recorder.RecordEvaluation(result, time.Since(started))
	}
	if err != nil {
		return nil, err
	}

	if e.recorder != nil {
		e.recorder.RecordPositionRisk(
			report.HealthFactor, report.Leverage, report.NetValue,
			report.APY.NetAPY, report.DepegToLiquidation)
		e.recorder.RecordVaR(
			report.VaR.VaR95, report.VaR.VaR99,
			report.VaR.CVaR95, report.VaR.CVaR99,
			report.VaR.LiquidationProb)
	}
	e.log.Infow("risk evaluation complete",
		"health_factor", report.HealthFactor,
		"net_value", report.NetValue,
		"var_95", report.VaR.VaR95,
		"liquidation_prob", report.VaR.LiquidationProb,
		"duration", time.Since(started))
	return report, nil
}

func (e *Evaluator) evaluate() (*models.RiskReport, error) {
	pos := e.Position()

	collateralValue, err := position.CollateralValue(pos, e.provider)
	if err != nil {
		return nil, errors.Wrap(err, "valuing collateral")
	}
	debtValue, err := position.DebtValue(pos, e.provider)
	if err != nil {
		return nil, errors.Wrap(err, "valuing debt")
	}
	leverage, err := position.Leverage(pos, e.provider)
	if err != nil {
		return nil, errors.Wrap(err, "computing leverage")
	}

	liqModel, err := position.LiquidationModel(pos, e.provider)
	if err != nil {
		return nil, errors.Wrap(err, "building liquidation model")
	}
	hf := liqModel.HealthFactor(collateralValue, debtValue)

	collateralPrice, err := e.provider.GetAssetPrice(provider.WstETH)
	if err != nil {
		return nil, errors.Wrap(err, "fetching wstETH price")
	}

	stakingAPY, err := e.provider.GetStakingAPY()
	if err != nil || stakingAPY <= 0 {
		stakingAPY = e.cfg.Risk.StakingAPY
	}

	apy, err := position.ComputeAPYBreakdown(pos, e.provider, stakingAPY)
	if err != nil {
		return nil, errors.Wrap(err, "computing APY breakdown")
	}
	dailyPnL, err := position.DailyPnL(pos, e.provider, stakingAPY)
	if err != nil {
		return nil, errors.Wrap(err, "computing daily PnL")
	}
	pnl, err := position.PnLBreakdown(pos, e.provider, stakingAPY)
	if err != nil {
		return nil, errors.Wrap(err, "computing PnL breakdown")
	}

	dexPool := position.DefaultDEXPool()
	unwind := position.EstimateUnwindCostDetailed(pos.DebtAmount, &dexPool, 0, 0)

	varResult, err := e.simulateTailRisk(collateralValue, debtValue, liqModel.LiquidationThreshold(), stakingAPY)
	if err != nil {
		return nil, err
	}

	scenarios, err := e.runScenarios(pos)
	if err != nil {
		return nil, err
	}

	cascadeResult, err := e.runCascade(collateralPrice, liqModel.LiquidationBonus())
	if err != nil {
		return nil, err
	}

	return &models.RiskReport{
		Timestamp:            time.Now().UTC(),
		Position:             pos,
		CollateralValue:      collateralValue,
		DebtValue:            debtValue,
		NetValue:             collateralValue - debtValue,
		Leverage:             leverage,
		HealthFactor:         hf,
		LiquidationPriceDrop: liqModel.LiquidationPriceDrop(collateralValue, debtValue),
		DepegToLiquidation:   liqModel.DepegToLiquidation(pos.CollateralAmount, collateralPrice, debtValue),
		APY:                  apy,
		DailyPnL:             dailyPnL,
		PnL:                  pnl,
		UnwindCost:           unwind,
		VaR:                  varResult,
		Scenarios:            scenarios,
		Cascade:              *cascadeResult,
	}, nil
}

// SimulateMonteCarlo runs the configured Monte Carlo simulation and
// returns the full path set.
func (e *Evaluator) SimulateMonteCarlo() (*models.MonteCarloResult, error) {
	pos := e.Position()
	collateralValue, err := position.CollateralValue(pos, e.provider)
	if err != nil {
		return nil, err
	}
	debtValue, err := position.DebtValue(pos, e.provider)
	if err != nil {
		return nil, err
	}
	liqModel, err := position.LiquidationModel(pos, e.provider)
	if err != nil {
		return nil, err
	}
	stakingAPY, err := e.provider.GetStakingAPY()
	if err != nil || stakingAPY <= 0 {
		stakingAPY = e.cfg.Risk.StakingAPY
	}
	cfg, err := e.monteCarloConfig(collateralValue, debtValue, liqModel.LiquidationThreshold(), stakingAPY)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	result, err := e.engine.Run(cfg)
	if e.recorder != nil && err == nil {
		e.recorder.RecordSimulation("montecarlo", time.Since(started))
	}
	return result, err
}

// SimulateCascade runs the configured liquidation cascade.
func (e *Evaluator) SimulateCascade() (*models.CascadeResult, error) {
	collateralPrice, err := e.provider.GetAssetPrice(provider.WstETH)
	if err != nil {
		return nil, err
	}
	pos := e.Position()
	liqModel, err := position.LiquidationModel(pos, e.provider)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	result, err := e.runCascade(collateralPrice, liqModel.LiquidationBonus())
	if e.recorder != nil && err == nil {
		e.recorder.RecordSimulation("cascade", time.Since(started))
	}
	return result, err
}

func (e *Evaluator) monteCarloConfig(collateralValue, debtValue, liquidationThreshold, stakingAPY float64) (montecarlo.Config, error) {
	wethState, err := e.provider.GetReserveState(provider.WETH)
	if err != nil {
		return montecarlo.Config{}, errors.Wrap(err, "fetching WETH reserve state")
	}
	wethParams, err := e.provider.GetReserveParams(provider.WETH)
	if err != nil {
		return montecarlo.Config{}, errors.Wrap(err, "fetching WETH reserve params")
	}
	wstethState, err := e.provider.GetReserveState(provider.WstETH)
	if err != nil {
		return montecarlo.Config{}, errors.Wrap(err, "fetching wstETH reserve state")
	}
	wstethParams, err := e.provider.GetReserveParams(provider.WstETH)
	if err != nil {
		return montecarlo.Config{}, errors.Wrap(err, "fetching wstETH reserve params")
	}
	collateralPrice, err := e.provider.GetAssetPrice(provider.WstETH)
	if err != nil || collateralPrice <= 0 {
		collateralPrice = 1.0
	}

	// The position earns the wstETH supply rate on its collateral.
	supplyAPY := rates.NewModel(wstethParams).SupplyRate(wstethState.Utilization())

	mc := e.cfg.MonteCarlo
	cfg := montecarlo.Config{
		InitialUtilization:   wethState.Utilization(),
		CollateralValue:      collateralValue,
		DebtValue:            debtValue,
		LiquidationThreshold: liquidationThreshold,
		StakingAPY:           stakingAPY,
		SupplyAPY:            supplyAPY,
		RateParams:           wethParams,
		OU: montecarlo.OUParams{
			Theta: mc.OUTheta,
			Kappa: mc.OUKappa,
			Sigma: mc.OUSigma,
		},
		Paths:       mc.Paths,
		HorizonDays: mc.HorizonDays,
		Seed:        mc.Seed,
	}
	if mc.PegDynamics {
		cfg.Peg = &montecarlo.PegDynamicsParams{
			Vol:             mc.PegVol,
			JumpIntensity:   mc.PegJumpIntensity,
			JumpSize:        mc.PegJumpSize,
			UtilCorrelation: mc.PegUtilCorrelation,
		}
		// The simulated exchange rate starts at the wstETH price so
		// collateral value paths track the actual position.
		cfg.InitialPeg = collateralPrice
	}
	return cfg, nil
}

func (e *Evaluator) simulateTailRisk(collateralValue, debtValue, liquidationThreshold, stakingAPY float64) (models.VaRResult, error) {
	cfg, err := e.monteCarloConfig(collateralValue, debtValue, liquidationThreshold, stakingAPY)
	if err != nil {
		return models.VaRResult{}, err
	}

	started := time.Now()
	mcResult, err := e.engine.Run(cfg)
	if err != nil {
		return models.VaRResult{}, errors.Wrap(err, "running Monte Carlo simulation")
	}
	if e.recorder != nil {
		e.recorder.RecordSimulation("montecarlo", time.Since(started))
	}

	varResult, err := stress.ComputeVaR(mcResult)
	if err != nil {
		return models.VaRResult{}, errors.Wrap(err, "computing VaR")
	}
	return varResult, nil
}

func (e *Evaluator) runScenarios(pos models.Position) ([]models.ScenarioImpact, error) {
	historical := stress.HistoricalScenarios()
	impacts := make([]models.ScenarioImpact, 0, len(historical))
	for _, sc := range historical {
		result, err := stress.ApplyScenario(pos, e.provider, sc)
		if err != nil {
			return nil, errors.Wrapf(err, "applying scenario %s", sc.Name)
		}
		impacts = append(impacts, models.ScenarioImpact{Scenario: sc, Result: result})
	}
	return impacts, nil
}

func (e *Evaluator) runCascade(collateralPrice, liquidationBonus float64) (*models.CascadeResult, error) {
	wethState, err := e.provider.GetReserveState(provider.WETH)
	if err != nil {
		return nil, errors.Wrap(err, "fetching WETH reserve state")
	}
	wethParams, err := e.provider.GetReserveParams(provider.WETH)
	if err != nil {
		return nil, errors.Wrap(err, "fetching WETH reserve params")
	}

	cc := e.cfg.Cascade
	cfg := cascade.Config{
		InitialDebtToLiquidate: cc.InitialDebtToLiquidate,
		CollateralPrice:        collateralPrice,
		LiquidationBonus:       liquidationBonus,
		PriceImpactPerUnit:     cc.PriceImpactPerUnit,
		DepegSensitivity:       cc.DepegSensitivity,
		MaxSteps:               cc.MaxSteps,
		MinDebtThreshold:       cc.MinDebtThreshold,
	}
	result, err := e.cascade.Simulate(pool.FromReserveState(wethState), wethParams, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "simulating liquidation cascade")
	}
	return result, nil
}
