package provider

import "github.com/defirisk/wsteth-risk-engine/pkg/models"

// PegOverride wraps a provider and substitutes the stETH/ETH peg and,
// consistently, the wstETH price (scaled by the peg ratio). What-if
// depeg analysis composes this around the real provider instead of
// mutating it.
type PegOverride struct {
	inner PoolDataProvider
	peg   float64
}

// WithPegOverride wraps the provider with a fixed peg.
func WithPegOverride(inner PoolDataProvider, peg float64) *PegOverride {
	return &PegOverride{inner: inner, peg: peg}
}

func (p *PegOverride) GetReserveParams(asset string) (models.ReserveParams, error) {
	return p.inner.GetReserveParams(asset)
}

func (p *PegOverride) GetReserveState(asset string) (models.ReserveState, error) {
	return p.inner.GetReserveState(asset)
}

func (p *PegOverride) GetLiquidationParams(asset string) (models.LiquidationParams, error) {
	return p.inner.GetLiquidationParams(asset)
}

func (p *PegOverride) GetEModeCategory(categoryID int) (models.EModeCategory, error) {
	return p.inner.GetEModeCategory(categoryID)
}

// GetAssetPrice scales the wstETH price by the ratio of the override
// peg to the inner provider's peg; other assets pass through.
func (p *PegOverride) GetAssetPrice(asset string) (float64, error) {
	price, err := p.inner.GetAssetPrice(asset)
	if err != nil {
		return 0, err
	}
	if asset != WstETH {
		return price, nil
	}
	basePeg, err := p.inner.GetStETHETHPeg()
	if err != nil {
		return 0, err
	}
	if basePeg <= 0 {
		basePeg = 1.0
	}
	return price * (p.peg / basePeg), nil
}

func (p *PegOverride) GetStETHETHPeg() (float64, error) {
	return p.peg, nil
}

func (p *PegOverride) GetStakingAPY() (float64, error) {
	return p.inner.GetStakingAPY()
}
