// Package position values the leveraged wstETH/WETH position and
// computes its yield, carry, and unwind economics.
package position

import (
	"math"

	"github.com/defirisk/wsteth-risk-engine/internal/liquidation"
	"github.com/defirisk/wsteth-risk-engine/internal/provider"
	"github.com/defirisk/wsteth-risk-engine/pkg/models"
	"github.com/defirisk/wsteth-risk-engine/pkg/utils/errors"
)

// CollateralValue returns the position's collateral value in ETH. The
// oracle price for wstETH already embeds the stETH/ETH peg and the
// wstETH->stETH exchange rate, so the peg must not be applied twice.
func CollateralValue(pos models.Position, p provider.PoolDataProvider) (float64, error) {
	price, err := p.GetAssetPrice(provider.WstETH)
	if err != nil {
		return 0, errors.Wrap(err, "collateral value")
	}
	return pos.CollateralAmount * price, nil
}

// DebtValue returns the position's debt value in ETH.
func DebtValue(pos models.Position, p provider.PoolDataProvider) (float64, error) {
	price, err := p.GetAssetPrice(provider.WETH)
	if err != nil {
		return 0, errors.Wrap(err, "debt value")
	}
	return pos.DebtAmount * price, nil
}

// NetValue returns the position's equity in ETH.
func NetValue(pos models.Position, p provider.PoolDataProvider) (float64, error) {
	collateral, err := CollateralValue(pos, p)
	if err != nil {
		return 0, err
	}
	debt, err := DebtValue(pos, p)
	if err != nil {
		return 0, err
	}
	return collateral - debt, nil
}

// LiquidationModel builds the liquidation model for the position,
// applying the ETH-correlated E-mode category when enabled.
func LiquidationModel(pos models.Position, p provider.PoolDataProvider) (*liquidation.Model, error) {
	params, err := p.GetLiquidationParams(provider.WstETH)
	if err != nil {
		return nil, errors.Wrap(err, "liquidation params")
	}
	var emode *models.EModeCategory
	if pos.EModeEnabled {
		category, err := p.GetEModeCategory(provider.EModeETHCorrelated)
		if err != nil {
			return nil, errors.Wrap(err, "emode category")
		}
		emode = &category
	}
	return liquidation.NewModel(params, emode), nil
}

// HealthFactor returns the position's current health factor.
func HealthFactor(pos models.Position, p provider.PoolDataProvider) (float64, error) {
	model, err := LiquidationModel(pos, p)
	if err != nil {
		return 0, err
	}
	collateral, err := CollateralValue(pos, p)
	if err != nil {
		return 0, err
	}
	debt, err := DebtValue(pos, p)
	if err != nil {
		return 0, err
	}
	return model.HealthFactor(collateral, debt), nil
}

// Leverage returns collateral value over equity, +Inf when equity is
// not positive.
func Leverage(pos models.Position, p provider.PoolDataProvider) (float64, error) {
	collateral, err := CollateralValue(pos, p)
	if err != nil {
		return 0, err
	}
	debt, err := DebtValue(pos, p)
	if err != nil {
		return 0, err
	}
	net := collateral - debt
	if net <= 0 {
		return math.Inf(1), nil
	}
	return collateral / net, nil
}
