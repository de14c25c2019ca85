package provider

import (
	"github.com/defirisk/wsteth-risk-engine/pkg/utils/errors"

	"github.com/defirisk/wsteth-risk-engine/pkg/models"
)

// Parameters sourced from Aave V3 Ethereum mainnet governance.
var (
	staticReserveParams = map[string]models.ReserveParams{
		WETH: {
			OptimalUtilization: 0.92,
			BaseRate:           0.0,
			Slope1:             0.027,
			Slope2:             0.40,
			ReserveFactor:      0.15,
		},
		WstETH: {
			OptimalUtilization: 0.80,
			BaseRate:           0.0,
			Slope1:             0.01,
			Slope2:             0.40,
			ReserveFactor:      0.35,
		},
	}

	staticLiquidationParams = map[string]models.LiquidationParams{
		WETH: {
			LTV:                  0.805,
			LiquidationThreshold: 0.83,
			LiquidationBonus:     0.05,
		},
		WstETH: {
			LTV:                  0.795,
			LiquidationThreshold: 0.81,
			LiquidationBonus:     0.07,
		},
	}

	staticEModeCategories = map[int]models.EModeCategory{
		EModeETHCorrelated: {
			CategoryID:           EModeETHCorrelated,
			Label:                "ETH correlated",
			LTV:                  0.935,
			LiquidationThreshold: 0.955,
			LiquidationBonus:     0.01,
		},
	}

	// Representative pool snapshots.
	staticReserveStates = map[string]models.ReserveState{
		WETH:   {TotalSupply: 2_800_000.0, TotalDebt: 2_200_000.0},
		WstETH: {TotalSupply: 2_400_000.0, TotalDebt: 50_000.0},
	}

	// Prices in ETH terms. The wstETH rate embeds accrued staking rewards.
	staticAssetPrices = map[string]float64{
		WETH:   1.0,
		WstETH: 1.18,
	}
)

// Static is a PoolDataProvider backed by the hardcoded parameter
// tables above.
type Static struct {
	peg        float64
	stakingAPY float64
}

// NewStatic creates a static provider with a perfect peg and the
// given staking APY.
func NewStatic(stakingAPY float64) *Static {
	if stakingAPY <= 0 {
		stakingAPY = 0.035
	}
	return &Static{peg: 1.0, stakingAPY: stakingAPY}
}

func (p *Static) GetReserveParams(asset string) (models.ReserveParams, error) {
	params, ok := staticReserveParams[asset]
	if !ok {
		return models.ReserveParams{}, errors.NotFoundf("no reserve params for asset %q", asset)
	}
	return params, nil
}

func (p *Static) GetReserveState(asset string) (models.ReserveState, error) {
	state, ok := staticReserveStates[asset]
	if !ok {
		return models.ReserveState{}, errors.NotFoundf("no reserve state for asset %q", asset)
	}
	return state, nil
}

func (p *Static) GetLiquidationParams(asset string) (models.LiquidationParams, error) {
	params, ok := staticLiquidationParams[asset]
	if !ok {
		return models.LiquidationParams{}, errors.NotFoundf("no liquidation params for asset %q", asset)
	}
	return params, nil
}

func (p *Static) GetEModeCategory(categoryID int) (models.EModeCategory, error) {
	category, ok := staticEModeCategories[categoryID]
	if !ok {
		return models.EModeCategory{}, errors.NotFoundf("no E-mode category %d", categoryID)
	}
	return category, nil
}

func (p *Static) GetAssetPrice(asset string) (float64, error) {
	price, ok := staticAssetPrices[asset]
	if !ok {
		return 0, errors.NotFoundf("no price for asset %q", asset)
	}
	return price, nil
}

func (p *Static) GetStETHETHPeg() (float64, error) {
	return p.peg, nil
}

func (p *Static) GetStakingAPY() (float64, error) {
	return p.stakingAPY, nil
}
