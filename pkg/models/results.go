package models

import "time"

// RatePoint is one sample of the interest rate curve.
type RatePoint struct {
	Utilization float64 `json:"utilization"`
	BorrowRate  float64 `json:"borrow_rate"`
	SupplyRate  float64 `json:"supply_rate"`
}

// DepegPoint is one sample of a health-factor-vs-peg sensitivity table.
type DepegPoint struct {
	PegRatio     float64 `json:"peg_ratio"`
	HealthFactor float64 `json:"health_factor"`
}

// APYBreakdown decomposes the position's yield into its components.
type APYBreakdown struct {
	SupplyAPY  float64 `json:"supply_apy"`  // wstETH supply yield on the money market
	BorrowAPY  float64 `json:"borrow_apy"`  // WETH borrow cost
	StakingAPY float64 `json:"staking_apy"` // Lido staking yield embedded in wstETH
	NetAPY     float64 `json:"net_apy"`     // combined APY on equity; -Inf when equity <= 0
}

// PnLDecomposition breaks daily carry into income and cost legs.
type PnLDecomposition struct {
	StakingIncomeDaily float64 `json:"staking_income_daily"`
	SupplyIncomeDaily  float64 `json:"supply_income_daily"`
	BorrowCostDaily    float64 `json:"borrow_cost_daily"`
	NetCarryDaily      float64 `json:"net_carry_daily"`
	BasisSpread        float64 `json:"basis_spread"`
	BreakEvenPegDrop   float64 `json:"break_even_peg_drop"`
}

// UnwindCostResult is the cost breakdown for closing the position.
type UnwindCostResult struct {
	SlippageCost         float64 `json:"slippage_cost"`
	PriceImpact          float64 `json:"price_impact"`
	GasCost              float64 `json:"gas_cost"`
	TotalCost            float64 `json:"total_cost"`
	EffectiveSlippageBps float64 `json:"effective_slippage_bps"`
}

// MonteCarloResult holds all simulated paths, indexed [path][timestep].
// PegPaths is nil when exchange-rate dynamics were disabled.
//
// Invariant: once Liquidated[i] is true, every per-step value of path i
// is frozen from the first step where the health factor dropped below
// 1.0; a liquidated position stops accruing.
type MonteCarloResult struct {
	UtilizationPaths     [][]float64 `json:"utilization_paths"`
	RatePaths            [][]float64 `json:"rate_paths"`
	PnLPaths             [][]float64 `json:"pnl_paths"`
	HFPaths              [][]float64 `json:"hf_paths"`
	DebtPaths            [][]float64 `json:"debt_paths"`
	CollateralValuePaths [][]float64 `json:"collateral_value_paths"`
	PegPaths             [][]float64 `json:"peg_paths,omitempty"`
	Timesteps            []float64   `json:"timesteps"`
	TerminalPnL          []float64   `json:"terminal_pnl"`
	Liquidated           []bool      `json:"liquidated"`
}

// CascadeStep records one liquidation round.
type CascadeStep struct {
	Step             int     `json:"step"`
	DebtLiquidated   float64 `json:"debt_liquidated"`
	CollateralSeized float64 `json:"collateral_seized"`
	TotalSupply      float64 `json:"total_supply"`
	TotalDebt        float64 `json:"total_debt"`
	Utilization      float64 `json:"utilization"`
	BorrowRate       float64 `json:"borrow_rate"`
	CollateralPrice  float64 `json:"collateral_price"`
	AtRiskDebt       float64 `json:"at_risk_debt"`
}

// CascadeResult aggregates a liquidation cascade simulation.
type CascadeResult struct {
	Steps                 []CascadeStep `json:"steps"`
	TotalDebtLiquidated   float64       `json:"total_debt_liquidated"`
	TotalCollateralSeized float64       `json:"total_collateral_seized"`
	FinalUtilization      float64       `json:"final_utilization"`
	FinalBorrowRate       float64       `json:"final_borrow_rate"`
}

// ShockResult is the before/after impact of one stress scenario.
type ShockResult struct {
	HFBefore         float64 `json:"hf_before"`
	HFAfter          float64 `json:"hf_after"`
	CollateralBefore float64 `json:"collateral_before"`
	CollateralAfter  float64 `json:"collateral_after"`
	PnLImpact        float64 `json:"pnl_impact"`
	IsLiquidated     bool    `json:"is_liquidated"`
}

// VaRResult holds tail-risk statistics over a P&L distribution.
// All values are in ETH; losses are negative.
type VaRResult struct {
	VaR95           float64 `json:"var_95"`  // 5th percentile P&L
	VaR99           float64 `json:"var_99"`  // 1st percentile P&L
	CVaR95          float64 `json:"cvar_95"` // mean P&L at or below VaR95
	CVaR99          float64 `json:"cvar_99"` // mean P&L at or below VaR99
	LiquidationProb float64 `json:"liquidation_prob"`
	MaxLoss         float64 `json:"max_loss"`
}

// ScenarioImpact pairs a named scenario with its shock result.
type ScenarioImpact struct {
	Scenario StressScenario `json:"scenario"`
	Result   ShockResult    `json:"result"`
}

// RiskReport is the full evaluation output published to downstream
// consumers (dashboard, Kafka topic).
type RiskReport struct {
	Timestamp            time.Time        `json:"timestamp"`
	Position             Position         `json:"position"`
	CollateralValue      float64          `json:"collateral_value"`
	DebtValue            float64          `json:"debt_value"`
	NetValue             float64          `json:"net_value"`
	Leverage             float64          `json:"leverage"`
	HealthFactor         float64          `json:"health_factor"`
	LiquidationPriceDrop float64          `json:"liquidation_price_drop"`
	DepegToLiquidation   float64          `json:"depeg_to_liquidation"`
	APY                  APYBreakdown     `json:"apy"`
	DailyPnL             float64          `json:"daily_pnl"`
	PnL                  PnLDecomposition `json:"pnl"`
	UnwindCost           UnwindCostResult `json:"unwind_cost"`
	VaR                  VaRResult        `json:"var"`
	Scenarios            []ScenarioImpact `json:"scenarios"`
	Cascade              CascadeResult    `json:"cascade"`
}
