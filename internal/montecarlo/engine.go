// Package montecarlo simulates correlated stochastic paths of pool
// utilization (Ornstein-Uhlenbeck) and wstETH/ETH exchange rate
// (jump-diffusion), derives per-path borrow rates, balances, and
// health factors, and freezes paths at liquidation.
package montecarlo

import (
	"math"
	"math/rand"

	"github.com/defirisk/wsteth-risk-engine/internal/rates"
	"github.com/defirisk/wsteth-risk-engine/pkg/models"
	"github.com/defirisk/wsteth-risk-engine/pkg/utils/errors"
	"github.com/defirisk/wsteth-risk-engine/pkg/utils/logger"
)

const dt = 1.0 / 365.0

// Config describes one Monte Carlo run.
type Config struct {
	InitialUtilization   float64
	CollateralValue      float64 // ETH
	DebtValue            float64 // ETH
	LiquidationThreshold float64
	StakingAPY           float64
	SupplyAPY            float64
	RateParams           models.ReserveParams
	OU                   OUParams
	Paths                int
	HorizonDays          int
	Seed                 int64
	// Peg enables exchange-rate dynamics; nil holds the peg fixed.
	Peg        *PegDynamicsParams
	InitialPeg float64
}

// Engine runs Monte Carlo simulations. All randomness flows through a
// single generator seeded per run, so results are bit-reproducible for
// a given seed.
type Engine struct {
	log *logger.Logger
}

// NewEngine creates a Monte Carlo engine.
func NewEngine() *Engine {
	return &Engine{log: logger.GetLogger("montecarlo.engine")}
}

// SimulateUtilizationPaths runs Euler-Maruyama on the OU process,
// returning [nPaths][nSteps] utilization values clamped to [0, 1].
// The generator is the caller's; identical generators give identical
// paths.
func SimulateUtilizationPaths(ou OUParams, u0 float64, nPaths, nSteps int, rng *rand.Rand) [][]float64 {
	sqrtDt := math.Sqrt(dt)
	paths := make([][]float64, nPaths)
	for i := range paths {
		path := make([]float64, nSteps)
		path[0] = u0
		for t := 1; t < nSteps; t++ {
			drift := ou.Kappa * (ou.Theta - path[t-1]) * dt
			diffusion := ou.Sigma * sqrtDt * rng.NormFloat64()
			path[t] = clamp(path[t-1]+drift+diffusion, 0.0, 1.0)
		}
		paths[i] = path
	}
	return paths
}

// simulateCorrelatedPaths draws utilization and peg paths whose
// Brownian drivers are correlated through the 2x2 Cholesky factor of
// [[1, rho], [rho, 1]]: dW_util = Z0, dW_peg = rho*Z0 + sqrt(1-rho^2)*Z1.
// Slashing events arrive as Bernoulli(lambda*dt) multiplicative jumps.
func simulateCorrelatedPaths(ou OUParams, peg PegDynamicsParams, u0, peg0, stakingAPY float64, nPaths, nSteps int, rng *rand.Rand) (utilPaths, pegPaths [][]float64) {
	rho := peg.UtilCorrelation
	sqrtOneMinusRho2 := math.Sqrt(math.Max(0.0, 1.0-rho*rho))
	sqrtDt := math.Sqrt(dt)
	jumpProbPerStep := peg.JumpIntensity * dt

	utilPaths = make([][]float64, nPaths)
	pegPaths = make([][]float64, nPaths)
	for i := 0; i < nPaths; i++ {
		util := make([]float64, nSteps)
		pegPath := make([]float64, nSteps)
		util[0] = u0
		pegPath[0] = peg0

		for t := 1; t < nSteps; t++ {
			z0 := rng.NormFloat64()
			z1 := rng.NormFloat64()
			dwUtil := z0
			dwPeg := rho*z0 + sqrtOneMinusRho2*z1

			drift := ou.Kappa * (ou.Theta - util[t-1]) * dt
			util[t] = clamp(util[t-1]+drift+ou.Sigma*sqrtDt*dwUtil, 0.0, 1.0)

			// GBM increment with staking-reward drift.
			logReturn := (stakingAPY-0.5*peg.Vol*peg.Vol)*dt + peg.Vol*sqrtDt*dwPeg
			jumpFactor := 1.0
			if rng.Float64() < jumpProbPerStep {
				jumpFactor = 1.0 + peg.JumpSize
			}
			next := pegPath[t-1] * math.Exp(logReturn) * jumpFactor
			// Floor for numerical stability.
			if next < 0.01 {
				next = 0.01
			}
			pegPath[t] = next
		}
		utilPaths[i] = util
		pegPaths[i] = pegPath
	}
	return utilPaths, pegPaths
}

// Run executes a full simulation of borrow rates, balances, health
// factors, and P&L.
func (e *Engine) Run(cfg Config) (*models.MonteCarloResult, error) {
	if cfg.Paths <= 0 {
		return nil, errors.InvalidArgument("montecarlo: paths must be positive")
	}
	if cfg.HorizonDays <= 0 {
		return nil, errors.InvalidArgument("montecarlo: horizon must be positive")
	}
	if (cfg.OU == OUParams{}) {
		cfg.OU = DefaultOUParams()
	}
	if cfg.InitialPeg <= 0 {
		cfg.InitialPeg = 1.0
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	nSteps := cfg.HorizonDays + 1 // index 0 = initial state
	rateModel := rates.NewModel(cfg.RateParams)

	var utilPaths, pegPaths [][]float64
	if cfg.Peg != nil {
		utilPaths, pegPaths = simulateCorrelatedPaths(
			cfg.OU, *cfg.Peg, cfg.InitialUtilization, cfg.InitialPeg,
			cfg.StakingAPY, cfg.Paths, nSteps, rng)
	} else {
		utilPaths = SimulateUtilizationPaths(cfg.OU, cfg.InitialUtilization, cfg.Paths, nSteps, rng)
	}

	ratePaths := make([][]float64, cfg.Paths)
	for i := range utilPaths {
		ratePaths[i] = rateModel.BorrowRateVec(utilPaths[i])
	}

	collateralPaths := make([][]float64, cfg.Paths)
	debtPaths := make([][]float64, cfg.Paths)
	dailyIncomeRate := (cfg.StakingAPY + cfg.SupplyAPY) / 365.0
	dailySupplyRate := cfg.SupplyAPY / 365.0

	for i := 0; i < cfg.Paths; i++ {
		collateral := make([]float64, nSteps)
		debt := make([]float64, nSteps)
		collateral[0] = cfg.CollateralValue
		debt[0] = cfg.DebtValue

		if pegPaths != nil {
			// The staking drift is embedded in the peg path; the
			// collateral amount itself only grows with supply yield.
			amount := cfg.CollateralValue / cfg.InitialPeg
			for t := 1; t < nSteps; t++ {
				amount *= 1.0 + dailySupplyRate
				collateral[t] = amount * pegPaths[i][t]
				debt[t] = debt[t-1] * (1.0 + ratePaths[i][t-1]/365.0)
			}
		} else {
			for t := 1; t < nSteps; t++ {
				collateral[t] = collateral[t-1] * (1.0 + dailyIncomeRate)
				debt[t] = debt[t-1] * (1.0 + ratePaths[i][t-1]/365.0)
			}
		}
		collateralPaths[i] = collateral
		debtPaths[i] = debt
	}

	// Liquidation detection and freeze: once HF first drops below 1.0
	// the position stops accruing, so balances (and the peg snapshot)
	// are pinned at the breach step.
	hfPaths := make([][]float64, cfg.Paths)
	liquidated := make([]bool, cfg.Paths)
	nLiquidated := 0
	for i := 0; i < cfg.Paths; i++ {
		hf := make([]float64, nSteps)
		breachStep := -1
		for t := 0; t < nSteps; t++ {
			hf[t] = healthFactor(collateralPaths[i][t], debtPaths[i][t], cfg.LiquidationThreshold)
			if breachStep < 0 && hf[t] < 1.0 {
				breachStep = t
			}
		}
		if breachStep >= 0 {
			liquidated[i] = true
			nLiquidated++
			for t := breachStep + 1; t < nSteps; t++ {
				collateralPaths[i][t] = collateralPaths[i][breachStep]
				debtPaths[i][t] = debtPaths[i][breachStep]
				if pegPaths != nil {
					pegPaths[i][t] = pegPaths[i][breachStep]
				}
			}
			// Recompute HF from the frozen balances.
			for t := breachStep; t < nSteps; t++ {
				hf[t] = healthFactor(collateralPaths[i][t], debtPaths[i][t], cfg.LiquidationThreshold)
			}
		}
		hfPaths[i] = hf
	}

	initialEquity := cfg.CollateralValue - cfg.DebtValue
	pnlPaths := make([][]float64, cfg.Paths)
	terminalPnL := make([]float64, cfg.Paths)
	for i := 0; i < cfg.Paths; i++ {
		pnl := make([]float64, nSteps)
		for t := 0; t < nSteps; t++ {
			pnl[t] = (collateralPaths[i][t] - debtPaths[i][t]) - initialEquity
		}
		pnlPaths[i] = pnl
		terminalPnL[i] = pnl[nSteps-1]
	}

	timesteps := make([]float64, nSteps)
	for t := range timesteps {
		timesteps[t] = float64(t)
	}

	e.log.Debugf("simulated %d paths over %d days, %d liquidated", cfg.Paths, cfg.HorizonDays, nLiquidated)

	return &models.MonteCarloResult{
		UtilizationPaths:     utilPaths,
		RatePaths:            ratePaths,
		PnLPaths:             pnlPaths,
		HFPaths:              hfPaths,
		DebtPaths:            debtPaths,
		CollateralValuePaths: collateralPaths,
		PegPaths:             pegPaths,
		Timesteps:            timesteps,
		TerminalPnL:          terminalPnL,
		Liquidated:           liquidated,
	}, nil
}

func healthFactor(collateral, debt, threshold float64) float64 {
	if debt <= 0 {
		return math.Inf(1)
	}
	return collateral * threshold / debt
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
