package core

import (
	"context"

	"loans/pkg/number"
)

// External collaborators, bound at construction time. Each is a narrow
// interface at the call boundary; the engine never assumes success of a
// call without checking its return value.

// TokenService mint/burn/transfer on the underlying token contracts.
// Transfers move tokens out of the engine's own holdings.
type TokenService interface {
	Mint(ctx context.Context, symbol, to string, amount number.Amount) error
	BurnFrom(ctx context.Context, symbol, from string, amount number.Amount) error
	Transfer(ctx context.Context, symbol, to string, amount number.Amount) error
}

// StakingService stakes native currency for the base collateral token
// and credits it to the engine; returns the collateral actually
// received, which the engine validates against its own bookkeeping.
type StakingService interface {
	Stake(ctx context.Context, value number.Amount) (number.Amount, error)
}

// DexService executes swaps on the external market maker. Swap sells
// amount of fromSymbol and returns the amount of toSymbol received.
type DexService interface {
	Swap(ctx context.Context, fromSymbol, toSymbol string, amount number.Amount) (number.Amount, error)
}

// RewardsService continuous-regime reward accounting and the daily
// distribution drive.
type RewardsService interface {
	Distribute(ctx context.Context) (bool, error)
	UpdateRewardsData(ctx context.Context, name string, totalSupply number.Amount, positionID uint64, balance number.Amount) error
	UpdateBatchRewardsData(ctx context.Context, name string, totalSupply number.Amount, balances map[uint64]number.Amount) error
}

// DividendsService daily dividends distribution drive.
type DividendsService interface {
	Distribute(ctx context.Context) (bool, error)
}

// ReserveService the reserve fund backstop. Redeem requests amount of
// collateral sent to `to`; the returned amount must equal the request.
type ReserveService interface {
	Redeem(ctx context.Context, to string, amount number.Amount) (number.Amount, error)
}

// Governance late-bound addresses owned by the governance contract.
type Governance interface {
	FeeHandler(ctx context.Context) (string, error)
	ReserveFund(ctx context.Context) (string, error)
}

// PriceService per-symbol price in loop units (exa scaled).
type PriceService interface {
	Price(ctx context.Context, symbol string) (number.Amount, error)
}
