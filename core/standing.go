package core

import "loans/pkg/number"

// Standing derived classification of a position's health. Only
// StandingLiquidate is actionable.
type Standing int

const (
	// StandingZero no outstanding debt
	StandingZero Standing = iota
	// StandingLiquidate collateral no longer covers the liquidation ratio
	StandingLiquidate
	// StandingNotMining debt below the mining floor, dormant
	StandingNotMining
	// StandingMining actively tracked, earns mining rewards
	StandingMining
)

func (s Standing) String() string {
	switch s {
	case StandingZero:
		return "Zero"
	case StandingLiquidate:
		return "Liquidate"
	case StandingNotMining:
		return "Not Mining"
	case StandingMining:
		return "Mining"
	default:
		return "Unknown"
	}
}

// StandingPolicy classifies a position from its debt and collateral
// values. Pluggable; the exact thresholds are governance policy.
type StandingPolicy func(debtValue, collateralValue number.Amount, params *Params) Standing

// DefaultStandingPolicy liquidate when
// collateralValue × POINTS < debtValue × liquidationRatio, dormant
// below the mining floor.
func DefaultStandingPolicy(debtValue, collateralValue number.Amount, params *Params) Standing {
	if debtValue.IsZero() {
		return StandingZero
	}
	if collateralValue.Mul(number.Points).LessThan(debtValue.Mul(params.LiquidationRatio)) {
		return StandingLiquidate
	}
	if debtValue.LessThan(params.MinMiningDebt) {
		return StandingNotMining
	}
	return StandingMining
}

// DeadPolicy decides whether a borrowable asset's economic viability
// has collapsed. netSupply is total supply net of the liquidation
// pool's value in the asset's own units. Monotonic: once dead an asset
// is never revived.
type DeadPolicy func(badDebt, netSupply number.Amount) bool

// DefaultDeadPolicy dead once bad debt dominates half the remaining
// supply.
func DefaultDeadPolicy(badDebt, netSupply number.Amount) bool {
	return badDebt.GreaterThan(netSupply.Div(number.New(2)))
}
