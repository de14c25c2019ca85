// Package stress applies deterministic and randomly generated market
// shocks to a leveraged position and computes tail-risk statistics
// (VaR, CVaR) over the resulting loss distributions.
package stress

import "github.com/defirisk/wsteth-risk-engine/pkg/models"

// HistoricalScenarios returns the fixed library of replayed market
// events used as standard stress tests.
func HistoricalScenarios() []models.StressScenario {
	return []models.StressScenario{
		{
			Name:             "june_2022_depeg",
			Description:      "stETH depeg during the Celsius/3AC unwind, June 2022",
			ETHPriceChange:   -0.40,
			StETHPeg:         0.93,
			UtilizationShock: 0.95,
			DurationDays:     14,
		},
		{
			Name:             "march_2020_crash",
			Description:      "COVID liquidity crunch, March 2020",
			ETHPriceChange:   -0.50,
			StETHPeg:         0.98,
			UtilizationShock: 0.98,
			DurationDays:     3,
		},
		{
			Name:             "may_2022_luna",
			Description:      "UST/LUNA collapse contagion, May 2022",
			ETHPriceChange:   -0.35,
			StETHPeg:         0.95,
			UtilizationShock: 0.93,
			DurationDays:     7,
		},
	}
}

// NewCustomScenario builds a user-defined scenario.
func NewCustomScenario(name string, ethPriceChange, stETHPeg, utilizationShock float64, durationDays int) models.StressScenario {
	return models.StressScenario{
		Name:             name,
		Description:      "custom scenario",
		ETHPriceChange:   ethPriceChange,
		StETHPeg:         stETHPeg,
		UtilizationShock: utilizationShock,
		DurationDays:     durationDays,
	}
}
