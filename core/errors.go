package core

import "strconv"

// ErrorCode int
type ErrorCode int

const (
	// ErrUnknown unknown
	ErrUnknown ErrorCode = 100000
	// ErrOperationForbidden operation forbidden
	ErrOperationForbidden ErrorCode = 100001

	// validation errors: surfaced to the caller, no state change

	// ErrAssetNotFound unknown symbol
	ErrAssetNotFound ErrorCode = 100100
	// ErrAssetExists symbol already registered
	ErrAssetExists ErrorCode = 100101
	// ErrAssetInactive asset not active
	ErrAssetInactive ErrorCode = 100102
	// ErrAssetDead asset is dead, no further borrowing
	ErrAssetDead ErrorCode = 100103
	// ErrAssetNotBorrowable asset is collateral only
	ErrAssetNotBorrowable ErrorCode = 100104
	// ErrInvalidAmount non-positive or malformed amount
	ErrInvalidAmount ErrorCode = 100105
	// ErrInvalidArgument malformed operation argument
	ErrInvalidArgument ErrorCode = 100106
	// ErrPositionNotFound no position for address or id
	ErrPositionNotFound ErrorCode = 100107

	// solvency errors: computed before any mutation

	// ErrUnderCollateralized debt would exceed the locking ratio
	ErrUnderCollateralized ErrorCode = 100200
	// ErrInsufficientDebt repay or retire exceeds outstanding debt
	ErrInsufficientDebt ErrorCode = 100201
	// ErrInsufficientCollateral withdraw would break the locking ratio
	ErrInsufficientCollateral ErrorCode = 100202
	// ErrLoanBelowMinimum first loan below the configured minimum
	ErrLoanBelowMinimum ErrorCode = 100203

	// collaborator errors: abort the whole operation

	// ErrStakingMismatch staking returned an unexpected amount
	ErrStakingMismatch ErrorCode = 100300
	// ErrSwapFailed dex swap failed or returned zero
	ErrSwapFailed ErrorCode = 100301
	// ErrReserveShortfall reserve redeem returned less than requested
	ErrReserveShortfall ErrorCode = 100302

	// invariant violations: no-op or hard failure, never silently fixed

	// ErrNotLiquidatable position standing is not LIQUIDATE
	ErrNotLiquidatable ErrorCode = 100400
	// ErrEmptyBatch rebalancing batch has zero total debt
	ErrEmptyBatch ErrorCode = 100401
	// ErrSnapshotUnavailable snapshot requested at or after the continuous reward day
	ErrSnapshotUnavailable ErrorCode = 100402
)

func (e ErrorCode) String() string {
	return strconv.Itoa(int(e))
}

func (e ErrorCode) Error() string {
	return e.String()
}
