// Package provider defines the data-provider capability surface the
// risk engine consumes, plus a static implementation carrying Aave V3
// mainnet governance parameters. A live on-chain adapter would satisfy
// the same interface; any RPC failure is the adapter's to surface,
// since the engine assumes fully populated records.
package provider

import "github.com/defirisk/wsteth-risk-engine/pkg/models"

// Asset symbols.
const (
	WETH   = "WETH"
	WstETH = "wstETH"
)

// EModeETHCorrelated is the Aave V3 E-mode category id for
// ETH-correlated assets.
const EModeETHCorrelated = 1

// PoolDataProvider supplies reserve parameters, pool state, and prices.
type PoolDataProvider interface {
	GetReserveParams(asset string) (models.ReserveParams, error)
	GetReserveState(asset string) (models.ReserveState, error)
	GetLiquidationParams(asset string) (models.LiquidationParams, error)
	GetEModeCategory(categoryID int) (models.EModeCategory, error)
	// GetAssetPrice returns the asset price in ETH terms.
	GetAssetPrice(asset string) (float64, error)
	// GetStETHETHPeg returns the stETH/ETH secondary-market rate. The
	// money market's oracle hardcodes 1:1, so this rate does not move
	// on-chain health factors; it is the baseline for depeg scenarios.
	GetStETHETHPeg() (float64, error)
	// GetStakingAPY returns the Lido staking APY as a decimal.
	GetStakingAPY() (float64, error)
}
