// Package cascade simulates self-reinforcing liquidation spirals in
// the wstETH collateral market: each liquidation round seizes
// collateral, the sale pressure pushes the peg down, and the depeg
// puts additional debt at risk for the next round.
package cascade

import (
	"github.com/defirisk/wsteth-risk-engine/internal/pool"
	"github.com/defirisk/wsteth-risk-engine/internal/rates"
	"github.com/defirisk/wsteth-risk-engine/pkg/models"
	"github.com/defirisk/wsteth-risk-engine/pkg/utils/errors"
	"github.com/defirisk/wsteth-risk-engine/pkg/utils/logger"
)

const priceFloor = 0.01

// Config parameterizes a cascade simulation.
type Config struct {
	// InitialDebtToLiquidate is the ETH debt wiped in the first round.
	InitialDebtToLiquidate float64
	// CollateralPrice is the starting wstETH price in ETH.
	CollateralPrice float64
	// LiquidationBonus paid to liquidators (e.g. 0.01).
	LiquidationBonus float64
	// PriceImpactPerUnit maps seized-and-sold collateral to peg drop.
	PriceImpactPerUnit float64
	// DepegSensitivity maps relative peg drop to newly at-risk debt.
	DepegSensitivity float64
	// MaxSteps bounds the number of rounds.
	MaxSteps int
	// MinDebtThreshold stops the cascade once the round's debt is dust.
	MinDebtThreshold float64
}

// DefaultConfig returns cascade parameters for the wstETH market.
func DefaultConfig() Config {
	return Config{
		InitialDebtToLiquidate: 1000.0,
		CollateralPrice:        1.18,
		LiquidationBonus:       0.01,
		PriceImpactPerUnit:     1e-5,
		DepegSensitivity:       5.0,
		MaxSteps:               10,
		MinDebtThreshold:       100.0,
	}
}

// Simulator runs liquidation cascades against a snapshot of pool state.
type Simulator struct {
	log *logger.Logger
}

// NewSimulator creates a cascade simulator.
func NewSimulator() *Simulator {
	return &Simulator{log: logger.GetLogger("cascade.simulator")}
}

// Simulate runs the cascade. The pool state and rate parameters are
// inputs only; the caller's state is never mutated.
func (s *Simulator) Simulate(state pool.State, rateParams models.ReserveParams, cfg Config) (*models.CascadeResult, error) {
	if cfg.InitialDebtToLiquidate <= 0 {
		return nil, errors.InvalidArgument("cascade: initial debt to liquidate must be positive")
	}
	if cfg.MaxSteps <= 0 {
		return nil, errors.InvalidArgument("cascade: max steps must be positive")
	}
	if cfg.CollateralPrice <= 0 {
		return nil, errors.InvalidArgument("cascade: collateral price must be positive")
	}

	rateModel := rates.NewModel(rateParams)

	price := cfg.CollateralPrice
	debtToLiquidate := cfg.InitialDebtToLiquidate
	current := state

	result := &models.CascadeResult{
		Steps: make([]models.CascadeStep, 0, cfg.MaxSteps),
	}

	for step := 0; step < cfg.MaxSteps; step++ {
		if debtToLiquidate < cfg.MinDebtThreshold {
			break
		}
		if debtToLiquidate > current.TotalDebt {
			debtToLiquidate = current.TotalDebt
		}
		if debtToLiquidate <= 0 {
			break
		}

		// Liquidators repay debt and seize collateral plus bonus at
		// the current price. Repayment lowers debt; supply is
		// untouched because the seized collateral only changes hands.
		seized := debtToLiquidate * (1.0 + cfg.LiquidationBonus) / price

		impact := pool.NewModel(current, rateModel).SimulateLiquidationImpact(debtToLiquidate)
		current = pool.State{TotalSupply: current.TotalSupply, TotalDebt: current.TotalDebt - debtToLiquidate}

		pegDrop := seized * cfg.PriceImpactPerUnit
		if pegDrop > 0.99 {
			pegDrop = 0.99
		}
		price *= 1.0 - pegDrop
		if price < priceFloor {
			price = priceFloor
		}

		borrowRate := rateModel.BorrowRate(current.Utilization())
		atRisk := current.TotalDebt * cfg.DepegSensitivity * pegDrop

		result.Steps = append(result.Steps, models.CascadeStep{
			Step:             step,
			DebtLiquidated:   debtToLiquidate,
			CollateralSeized: seized,
			TotalSupply:      current.TotalSupply,
			TotalDebt:        current.TotalDebt,
			Utilization:      impact.UtilizationAfter,
			BorrowRate:       borrowRate,
			CollateralPrice:  price,
			AtRiskDebt:       atRisk,
		})
		result.TotalDebtLiquidated += debtToLiquidate
		result.TotalCollateralSeized += seized

		debtToLiquidate = atRisk
	}

	result.FinalUtilization = current.Utilization()
	result.FinalBorrowRate = rateModel.BorrowRate(result.FinalUtilization)

	s.log.Debugf("cascade finished after %d steps, liquidated %.2f ETH debt, price %.4f -> %.4f",
		len(result.Steps), result.TotalDebtLiquidated, cfg.CollateralPrice, price)

	return result, nil
}
