package position

import (
	"math"

	"github.com/defirisk/wsteth-risk-engine/internal/pool"
	"github.com/defirisk/wsteth-risk-engine/internal/provider"
	"github.com/defirisk/wsteth-risk-engine/internal/rates"
	"github.com/defirisk/wsteth-risk-engine/pkg/models"
	"github.com/defirisk/wsteth-risk-engine/pkg/utils/errors"
)

const daysPerYear = 365.25

// reserveRates reads an asset's reserve and returns its current
// borrow and supply rates.
func reserveRates(p provider.PoolDataProvider, asset string) (borrow, supply float64, err error) {
	params, err := p.GetReserveParams(asset)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "reserve params for %s", asset)
	}
	state, err := p.GetReserveState(asset)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "reserve state for %s", asset)
	}
	model := rates.NewModel(params)
	u := pool.FromReserveState(state).Utilization()
	return model.BorrowRate(u), model.SupplyRate(u), nil
}

// ComputeAPYBreakdown decomposes the position's yield: supply APY on
// the wstETH collateral, borrow APY on the WETH debt, the staking
// yield embedded in wstETH, and the net APY on equity. Net APY is
// -Inf when equity is not positive.
func ComputeAPYBreakdown(pos models.Position, p provider.PoolDataProvider, stakingAPY float64) (models.APYBreakdown, error) {
	_, supplyAPY, err := reserveRates(p, provider.WstETH)
	if err != nil {
		return models.APYBreakdown{}, err
	}
	borrowAPY, _, err := reserveRates(p, provider.WETH)
	if err != nil {
		return models.APYBreakdown{}, err
	}

	collateral, err := CollateralValue(pos, p)
	if err != nil {
		return models.APYBreakdown{}, err
	}
	debt, err := DebtValue(pos, p)
	if err != nil {
		return models.APYBreakdown{}, err
	}

	equity := collateral - debt
	netAPY := math.Inf(-1)
	if equity > 0 {
		income := collateral * (stakingAPY + supplyAPY)
		cost := debt * borrowAPY
		netAPY = (income - cost) / equity
	}

	return models.APYBreakdown{
		SupplyAPY:  supplyAPY,
		BorrowAPY:  borrowAPY,
		StakingAPY: stakingAPY,
		NetAPY:     netAPY,
	}, nil
}

// DailyPnL estimates the position's daily carry in ETH. Income minus
// cost over collateral and debt values directly, regardless of equity
// sign: an underwater position keeps accruing borrow interest, so the
// figure stays negative rather than flat-lining at zero.
func DailyPnL(pos models.Position, p provider.PoolDataProvider, stakingAPY float64) (float64, error) {
	breakdown, err := ComputeAPYBreakdown(pos, p, stakingAPY)
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
	income := collateral * (stakingAPY + breakdown.SupplyAPY)
	cost := debt * breakdown.BorrowAPY
	return (income - cost) / daysPerYear, nil
}

// PnLBreakdown computes the detailed carry decomposition with basis
// spread and break-even depeg analysis.
func PnLBreakdown(pos models.Position, p provider.PoolDataProvider, stakingAPY float64) (models.PnLDecomposition, error) {
	breakdown, err := ComputeAPYBreakdown(pos, p, stakingAPY)
	if err != nil {
		return models.PnLDecomposition{}, err
	}
	collateral, err := CollateralValue(pos, p)
	if err != nil {
		return models.PnLDecomposition{}, err
	}
	debt, err := DebtValue(pos, p)
	if err != nil {
		return models.PnLDecomposition{}, err
	}

	stakingIncome := collateral * stakingAPY / daysPerYear
	supplyIncome := collateral * breakdown.SupplyAPY / daysPerYear
	borrowCost := debt * breakdown.BorrowAPY / daysPerYear
	netCarry := stakingIncome + supplyIncome - borrowCost

	// Break-even peg drop: annual net carry as a fraction of collateral
	// value is the depeg the carry can absorb over a year.
	breakEven := 0.0
	if collateral > 0 {
		breakEven = netCarry * daysPerYear / collateral
		if breakEven < 0 {
			breakEven = 0.0
		}
	}

	return models.PnLDecomposition{
		StakingIncomeDaily: stakingIncome,
		SupplyIncomeDaily:  supplyIncome,
		BorrowCostDaily:    borrowCost,
		NetCarryDaily:      netCarry,
		BasisSpread:        stakingAPY - breakdown.BorrowAPY,
		BreakEvenPegDrop:   breakEven,
	}, nil
}
