// Package pool simulates utilization-affecting operations on a lending
// pool. Every Simulate* method is pure: it reads the current state,
// computes a hypothetical post-operation state, and returns a
// before/after record without mutating anything.
package pool

import (
	"github.com/defirisk/wsteth-risk-engine/internal/rates"
	"github.com/defirisk/wsteth-risk-engine/pkg/models"
)

// State is a supply/debt snapshot used for what-if simulation.
type State struct {
	TotalSupply float64
	TotalDebt   float64
}

// FromReserveState builds a pool state from a reserve snapshot.
func FromReserveState(rs models.ReserveState) State {
	return State{TotalSupply: rs.TotalSupply, TotalDebt: rs.TotalDebt}
}

// Utilization is the borrowed fraction of supply, 0 when supply is 0.
func (s State) Utilization() float64 {
	if s.TotalSupply <= 0 {
		return 0.0
	}
	return s.TotalDebt / s.TotalSupply
}

// Impact records utilization and rates around a simulated operation.
// Fields that a given operation does not report are left at zero.
type Impact struct {
	UtilizationBefore float64 `json:"utilization_before"`
	UtilizationAfter  float64 `json:"utilization_after"`
	BorrowRateBefore  float64 `json:"borrow_rate_before"`
	BorrowRateAfter   float64 `json:"borrow_rate_after"`
	SupplyRateBefore  float64 `json:"supply_rate_before"`
	SupplyRateAfter   float64 `json:"supply_rate_after"`
}

// Model combines a pool state with a rate model.
type Model struct {
	state     State
	rateModel *rates.Model
}

// NewModel creates a pool model over a state snapshot.
func NewModel(state State, rateModel *rates.Model) *Model {
	return &Model{state: state, rateModel: rateModel}
}

// State returns the underlying snapshot.
func (m *Model) State() State { return m.state }

// Utilization returns the current utilization.
func (m *Model) Utilization() float64 { return m.state.Utilization() }

// BorrowRate returns the current variable borrow rate.
func (m *Model) BorrowRate() float64 {
	return m.rateModel.BorrowRate(m.Utilization())
}

// SupplyRate returns the current supply rate.
func (m *Model) SupplyRate() float64 {
	return m.rateModel.SupplyRate(m.Utilization())
}

// SimulateBorrow models an additional borrow. Total supply (aToken
// supply) is unchanged: the borrowed amount comes out of available
// liquidity that is already counted in supply, so utilization rises.
func (m *Model) SimulateBorrow(amount float64) Impact {
	newDebt := m.state.TotalDebt + amount
	uAfter := 0.0
	if m.state.TotalSupply > 0 {
		uAfter = newDebt / m.state.TotalSupply
	}
	return Impact{
		UtilizationBefore: m.Utilization(),
		UtilizationAfter:  uAfter,
		BorrowRateBefore:  m.BorrowRate(),
		BorrowRateAfter:   m.rateModel.BorrowRate(uAfter),
		SupplyRateBefore:  m.SupplyRate(),
		SupplyRateAfter:   m.rateModel.SupplyRate(uAfter),
	}
}

// SimulateWithdrawal models a supply withdrawal: supply shrinks (the
// aToken is burned) while debt stays put, so utilization rises,
// clamped to 1.0 when supply is exhausted.
func (m *Model) SimulateWithdrawal(amount float64) Impact {
	newSupply := m.state.TotalSupply - amount
	if newSupply < 0 {
		newSupply = 0
	}
	uAfter := 1.0
	if newSupply > 0 {
		uAfter = m.state.TotalDebt / newSupply
		if uAfter > 1.0 {
			uAfter = 1.0
		}
	}
	return Impact{
		UtilizationBefore: m.Utilization(),
		UtilizationAfter:  uAfter,
		BorrowRateBefore:  m.BorrowRate(),
		BorrowRateAfter:   m.rateModel.BorrowRate(uAfter),
	}
}

// SimulateLiquidationImpact models a liquidation hitting the debt
// pool: debt shrinks by the repaid amount while supply is unchanged
// (the repaid WETH returns to available liquidity), so utilization
// falls. Collateral seizure happens in the collateral asset's pool,
// which is a separate State tracked by the caller.
func (m *Model) SimulateLiquidationImpact(liquidatedDebt float64) Impact {
	newDebt := m.state.TotalDebt - liquidatedDebt
	if newDebt < 0 {
		newDebt = 0
	}
	uAfter := 0.0
	if m.state.TotalSupply > 0 {
		uAfter = newDebt / m.state.TotalSupply
	}
	return Impact{
		UtilizationBefore: m.Utilization(),
		UtilizationAfter:  uAfter,
		BorrowRateBefore:  m.BorrowRate(),
		BorrowRateAfter:   m.rateModel.BorrowRate(uAfter),
		SupplyRateBefore:  m.SupplyRate(),
		SupplyRateAfter:   m.rateModel.SupplyRate(uAfter),
	}
}
