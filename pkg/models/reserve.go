package models

// ReserveParams holds the interest rate strategy parameters for one
// reserve, matching Aave V3's DefaultReserveInterestRateStrategy.
type ReserveParams struct {
	OptimalUtilization float64 `json:"optimal_utilization"`
	BaseRate           float64 `json:"base_rate"`
	Slope1             float64 `json:"slope1"`
	Slope2             float64 `json:"slope2"`
	ReserveFactor      float64 `json:"reserve_factor"`
}

// ReserveState is a snapshot of one reserve pool.
type ReserveState struct {
	TotalSupply float64 `json:"total_supply"` // total aToken supply, in asset units
	TotalDebt   float64 `json:"total_debt"`   // total variable debt, in asset units
}

// Utilization is the borrowed fraction of supplied liquidity.
// Zero supply is treated as zero utilization.
func (s ReserveState) Utilization() float64 {
	if s.TotalSupply <= 0 {
		return 0.0
	}
	return s.TotalDebt / s.TotalSupply
}

// LiquidationParams holds the standard (non E-mode) liquidation
// parameters for an asset. Invariant: LTV < LiquidationThreshold.
type LiquidationParams struct {
	LTV                  float64 `json:"ltv"`
	LiquidationThreshold float64 `json:"liquidation_threshold"`
	LiquidationBonus     float64 `json:"liquidation_bonus"`
}

// EModeCategory holds Aave V3 Efficiency Mode parameters. When a
// position has E-mode enabled, these replace the standard
// LiquidationParams entirely.
type EModeCategory struct {
	CategoryID           int     `json:"category_id"`
	Label                string  `json:"label"`
	LTV                  float64 `json:"ltv"`
	LiquidationThreshold float64 `json:"liquidation_threshold"`
	LiquidationBonus     float64 `json:"liquidation_bonus"`
}

// Position is a wstETH-collateral / WETH-debt leveraged position.
// Immutable per analysis.
type Position struct {
	CollateralAmount float64 `json:"collateral_amount"` // wstETH units
	DebtAmount       float64 `json:"debt_amount"`       // WETH units
	EModeEnabled     bool    `json:"emode_enabled"`
}
