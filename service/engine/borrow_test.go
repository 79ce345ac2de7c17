package engine

import (
	"context"
	"errors"
	"testing"

	"loans/core"
	"loans/pkg/number"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBorrowUpToSolvencyLimit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.params.params.LockingRatio = number.New(15000)
	env.params.params.OriginationFee = number.Zero

	// 1000 collateral at price 1.0 and a 150% locking ratio covers a
	// debt of 666 but not 667
	err := env.engine.DepositAndBorrow(ctx, "alice", exa(1000), number.Zero, testSynth, exa(666))
	require.NoError(t, err)

	position := env.position(t, "alice")
	assert.Equal(t, 0, position.Balance(testSynth).Cmp(exa(666)))
	assert.Equal(t, 0, position.Balance(testCollateral).Cmp(exa(1000)))
	assert.Equal(t, 0, env.tokens.total("mint", testSynth, "alice").Cmp(exa(666)))
	assert.Equal(t, 0, env.asset(t, testSynth).TotalSupply.Cmp(exa(666)))

	size, err := env.queue.Size(ctx, testSynth)
	require.NoError(t, err)
	assert.Equal(t, int64(1), size)

	env.checkConservation(t)
}

func TestBorrowBeyondSolvencyLimit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.params.params.LockingRatio = number.New(15000)
	env.params.params.OriginationFee = number.Zero

	err := env.engine.DepositAndBorrow(ctx, "alice", exa(1000), number.Zero, testSynth, exa(667))
	assert.True(t, errors.Is(err, core.ErrUnderCollateralized))

	// nothing was minted and nothing was credited
	assert.Empty(t, env.tokens.calls)
	position := env.position(t, "alice")
	assert.True(t, position.Balance(testSynth).IsZero())
	assert.True(t, position.Balance(testCollateral).IsZero())
}

func TestBorrowMintsFeeToHandler(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.params.params.LockingRatio = number.New(15000)
	env.params.params.OriginationFee = number.New(100) // 1%

	err := env.engine.DepositAndBorrow(ctx, "alice", exa(1000), number.Zero, testSynth, exa(100))
	require.NoError(t, err)

	// the borrower owes amount plus fee; the fee is minted separately
	position := env.position(t, "alice")
	assert.Equal(t, 0, position.Balance(testSynth).Cmp(exa(101)))
	assert.Equal(t, 0, env.tokens.total("mint", testSynth, "alice").Cmp(exa(100)))
	assert.Equal(t, 0, env.tokens.total("mint", testSynth, feeAddr).Cmp(exa(1)))
	assert.Equal(t, 0, env.asset(t, testSynth).TotalSupply.Cmp(exa(101)))

	env.checkConservation(t)
}

func TestBorrowBelowNewLoanMinimum(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.params.params.OriginationFee = number.Zero

	// default minimum initial loan is 10
	err := env.engine.DepositAndBorrow(ctx, "alice", exa(1000), number.Zero, testSynth, exa(5))
	assert.True(t, errors.Is(err, core.ErrLoanBelowMinimum))

	// growing an existing loan has no minimum
	require.NoError(t, env.engine.DepositAndBorrow(ctx, "alice", exa(1000), number.Zero, testSynth, exa(10)))
	assert.NoError(t, env.engine.DepositAndBorrow(ctx, "alice", number.Zero, number.Zero, testSynth, exa(5)))
}

func TestDepositOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	err := env.engine.DepositAndBorrow(ctx, "alice", exa(500), number.Zero, "", number.Zero)
	require.NoError(t, err)

	position := env.position(t, "alice")
	assert.Equal(t, 0, position.Balance(testCollateral).Cmp(exa(500)))

	events := env.events.byType(core.EventCollateral)
	require.Len(t, events, 1)
	assert.Equal(t, 0, events[0].Amount.Cmp(exa(500)))

	// the position became open on the current day
	snapshot, err := env.snapshots.Find(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, []int64{int64(position.ID)}, []int64(snapshot.AddNonzero))
}

func TestDepositNothing(t *testing.T) {
	env := newTestEnv(t)

	err := env.engine.DepositAndBorrow(context.Background(), "alice", number.Zero, number.Zero, "", number.Zero)
	assert.True(t, errors.Is(err, core.ErrInvalidAmount))
}

func TestStakeAndDeposit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// the staking collaborator credits slightly less than the stake
	env.staking.stake = func(value number.Amount) (number.Amount, error) {
		return value.Sub(exa(1)), nil
	}

	err := env.engine.DepositAndBorrow(ctx, "alice", exa(100), exa(50), "", number.Zero)
	require.NoError(t, err)

	// credited collateral follows the amount actually received
	position := env.position(t, "alice")
	assert.Equal(t, 0, position.Balance(testCollateral).Cmp(exa(149)))
}

func TestStakeReturningNothing(t *testing.T) {
	env := newTestEnv(t)

	env.staking.stake = func(value number.Amount) (number.Amount, error) {
		return number.Zero, nil
	}

	err := env.engine.DepositAndBorrow(context.Background(), "alice", number.Zero, exa(50), "", number.Zero)
	assert.True(t, errors.Is(err, core.ErrStakingMismatch))
}

func TestBorrowUnknownAsset(t *testing.T) {
	env := newTestEnv(t)

	err := env.engine.DepositAndBorrow(context.Background(), "alice", exa(100), number.Zero, "NOPE", exa(10))
	assert.True(t, errors.Is(err, core.ErrAssetNotFound))
}

func TestBorrowInactiveAsset(t *testing.T) {
	env := newTestEnv(t)

	env.asset(t, testSynth).Active = false

	err := env.engine.DepositAndBorrow(context.Background(), "alice", exa(100), number.Zero, testSynth, exa(10))
	assert.True(t, errors.Is(err, core.ErrAssetInactive))
}

func TestBorrowDeadAsset(t *testing.T) {
	env := newTestEnv(t)

	env.asset(t, testSynth).Dead = true

	err := env.engine.DepositAndBorrow(context.Background(), "alice", exa(100), number.Zero, testSynth, exa(10))
	assert.True(t, errors.Is(err, core.ErrAssetDead))
}

func TestBorrowCollateralOnlyAsset(t *testing.T) {
	env := newTestEnv(t)

	err := env.engine.DepositAndBorrow(context.Background(), "alice", exa(100), number.Zero, testCollateral, exa(10))
	assert.True(t, errors.Is(err, core.ErrAssetNotBorrowable))
}
