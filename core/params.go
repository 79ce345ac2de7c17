package core

import (
	"context"

	"loans/pkg/number"
)

// DayLength length of one epoch day in seconds
const DayLength int64 = 86400

// parameter keys, also the admin setter names
const (
	ParamLockingRatio        = "locking_ratio"
	ParamLiquidationRatio    = "liquidation_ratio"
	ParamMiningRatio         = "mining_ratio"
	ParamOriginationFee      = "origination_fee"
	ParamRedemptionFee       = "redemption_fee"
	ParamRetirementBonus     = "retirement_bonus"
	ParamLiquidationReward   = "liquidation_reward"
	ParamNewLoanMinimum      = "new_loan_minimum"
	ParamMinMiningDebt       = "min_mining_debt"
	ParamRedeemBatchSize     = "redeem_batch_size"
	ParamMaxRetirePercent    = "max_retire_percent"
	ParamContinuousRewardDay = "continuous_reward_day"
	ParamTimeOffset          = "time_offset"
)

// Params global governance parameters. Ratios and fees are in points
// (1e4), monetary minimums in exa (1e18), day and offset plain integers.
type Params struct {
	LockingRatio        number.Amount `json:"locking_ratio"`
	LiquidationRatio    number.Amount `json:"liquidation_ratio"`
	MiningRatio         number.Amount `json:"mining_ratio"`
	OriginationFee      number.Amount `json:"origination_fee"`
	RedemptionFee       number.Amount `json:"redemption_fee"`
	RetirementBonus     number.Amount `json:"retirement_bonus"`
	LiquidationReward   number.Amount `json:"liquidation_reward"`
	NewLoanMinimum      number.Amount `json:"new_loan_minimum"`
	MinMiningDebt       number.Amount `json:"min_mining_debt"`
	RedeemBatchSize     int64         `json:"redeem_batch_size"`
	MaxRetirePercent    number.Amount `json:"max_retire_percent"`
	ContinuousRewardDay int64         `json:"continuous_reward_day"`
	TimeOffset          int64         `json:"time_offset"`
}

// DefaultParams launch parameters
func DefaultParams() *Params {
	return &Params{
		LockingRatio:        number.New(40000),
		LiquidationRatio:    number.New(15000),
		MiningRatio:         number.New(500),
		OriginationFee:      number.New(100),
		RedemptionFee:       number.New(50),
		RetirementBonus:     number.New(1000),
		LiquidationReward:   number.New(67),
		NewLoanMinimum:      number.Exa.Mul(number.New(10)),
		MinMiningDebt:       number.Exa.Mul(number.New(50)),
		RedeemBatchSize:     50,
		MaxRetirePercent:    number.New(100),
		ContinuousRewardDay: 1 << 40,
		TimeOffset:          0,
	}
}

// ParamStore global parameter store interface
type ParamStore interface {
	Load(ctx context.Context) (*Params, error)
	Save(ctx context.Context, params *Params) error
	// Set assigns one parameter by key from its string form.
	Set(ctx context.Context, key, value string) error
}
