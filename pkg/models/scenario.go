package models

// StressScenario is a named tuple of correlated market shocks, either
// a fixed historical record or user-constructed. Immutable.
type StressScenario struct {
	Name             string  `json:"name"`
	Description      string  `json:"description"`
	ETHPriceChange   float64 `json:"eth_price_change"`  // fractional, e.g. -0.40
	StETHPeg         float64 `json:"steth_peg"`         // peg ratio under stress, e.g. 0.93
	UtilizationShock float64 `json:"utilization_shock"` // absolute utilization level
	DurationDays     int     `json:"duration_days"`
}

// CorrelatedScenario is one draw from the 3-factor shock distribution.
type CorrelatedScenario struct {
	ETHPriceChange float64 `json:"eth_price_change"` // raw fractional change
	StETHPeg       float64 `json:"steth_peg"`        // recentered peg ratio, clamped (0, 1]
	Utilization    float64 `json:"utilization"`      // recentered level, clamped [0, 1]
}
