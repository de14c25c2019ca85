package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticReserveParams(t *testing.T) {
	p := NewStatic(0.035)

	weth, err := p.GetReserveParams(WETH)
	require.NoError(t, err)
	assert.Equal(t, 0.92, weth.OptimalUtilization)
	assert.Equal(t, 0.027, weth.Slope1)

	wsteth, err := p.GetReserveParams(WstETH)
	require.NoError(t, err)
	assert.Equal(t, 0.80, wsteth.OptimalUtilization)
	assert.Equal(t, 0.35, wsteth.ReserveFactor)
}

func TestStaticUnknownAsset(t *testing.T) {
	p := NewStatic(0.035)
	_, err := p.GetReserveParams("DOGE")
	assert.Error(t, err)
	_, err = p.GetAssetPrice("DOGE")
	assert.Error(t, err)
}

func TestStaticEModeCategory(t *testing.T) {
	p := NewStatic(0.035)
	cat, err := p.GetEModeCategory(EModeETHCorrelated)
	require.NoError(t, err)
	assert.Equal(t, "ETH correlated", cat.Label)
	assert.Equal(t, 0.955, cat.LiquidationThreshold)

	_, err = p.GetEModeCategory(99)
	assert.Error(t, err)
}

func TestStaticPegAndStaking(t *testing.T) {
	p := NewStatic(0.04)
	peg, err := p.GetStETHETHPeg()
	require.NoError(t, err)
	assert.Equal(t, 1.0, peg)

	apy, err := p.GetStakingAPY()
	require.NoError(t, err)
	assert.Equal(t, 0.04, apy)
}

func TestPegOverrideScalesWstETHPrice(t *testing.T) {
	base := NewStatic(0.035)
	wrapped := WithPegOverride(base, 0.93)

	peg, err := wrapped.GetStETHETHPeg()
	require.NoError(t, err)
	assert.Equal(t, 0.93, peg)

	price, err := wrapped.GetAssetPrice(WstETH)
	require.NoError(t, err)
	assert.InDelta(t, 1.18*0.93, price, 1e-12)

	// WETH passes through untouched.
	wethPrice, err := wrapped.GetAssetPrice(WETH)
	require.NoError(t, err)
	assert.Equal(t, 1.0, wethPrice)
}

func TestPegOverrideLeavesInnerUntouched(t *testing.T) {
	base := NewStatic(0.035)
	_ = WithPegOverride(base, 0.80)

	peg, err := base.GetStETHETHPeg()
	require.NoError(t, err)
	assert.Equal(t, 1.0, peg, "wrapping must not mutate the inner provider")

	price, err := base.GetAssetPrice(WstETH)
	require.NoError(t, err)
	assert.Equal(t, 1.18, price)
}

func TestPegOverridePassesThroughParams(t *testing.T) {
	wrapped := WithPegOverride(NewStatic(0.035), 0.9)
	params, err := wrapped.GetLiquidationParams(WstETH)
	require.NoError(t, err)
	assert.Equal(t, 0.81, params.LiquidationThreshold)

	state, err := wrapped.GetReserveState(WETH)
	require.NoError(t, err)
	assert.Equal(t, 2_800_000.0, state.TotalSupply)
}
