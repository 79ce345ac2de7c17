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

// badDebtFixture seeds the synth asset with retired-debt bookkeeping as
// a past liquidation would have left it.
func badDebtFixture(t *testing.T, env *testEnv, badDebt, pool int64) {
	t.Helper()

	asset := env.asset(t, testSynth)
	asset.BadDebt = exa(badDebt)
	asset.TotalSupply = exa(badDebt)
	asset.LiquidationPool = exa(pool)
}

func TestRetireBadDebtFromPool(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.params.params.RetirementBonus = number.New(1000) // 10%
	badDebtFixture(t, env, 666, 950)

	err := env.engine.RetireBadDebt(ctx, "carol", testSynth, exa(100))
	require.NoError(t, err)

	// 100 retired pays out 110 collateral at equal prices
	assert.Equal(t, 0, env.tokens.total("burn", testSynth, "carol").Cmp(exa(100)))
	assert.Equal(t, 0, env.tokens.total("transfer", testCollateral, "carol").Cmp(exa(110)))
	assert.Empty(t, env.reserve.calls)

	asset := env.asset(t, testSynth)
	assert.Equal(t, 0, asset.BadDebt.Cmp(exa(566)))
	assert.Equal(t, 0, asset.LiquidationPool.Cmp(exa(840)))
	assert.Equal(t, 0, asset.TotalSupply.Cmp(exa(566)))

	env.checkConservation(t)
}

func TestRetireBadDebtCappedAtOutstanding(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.params.params.RetirementBonus = number.Zero
	badDebtFixture(t, env, 50, 950)

	// offering more than the outstanding bad debt retires only what exists
	err := env.engine.RetireBadDebt(ctx, "carol", testSynth, exa(100))
	require.NoError(t, err)

	assert.Equal(t, 0, env.tokens.total("burn", testSynth, "carol").Cmp(exa(50)))

	asset := env.asset(t, testSynth)
	assert.True(t, asset.BadDebt.IsZero())
	assert.True(t, asset.TotalSupply.IsZero())
}

func TestRetireBadDebtDrawsOnReserve(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.params.params.RetirementBonus = number.Zero
	badDebtFixture(t, env, 200, 30)

	err := env.engine.RetireBadDebt(ctx, "carol", testSynth, exa(100))
	require.NoError(t, err)

	// 100 owed, 30 from the pool, 70 redeemed from the reserve
	require.Len(t, env.reserve.calls, 1)
	assert.Equal(t, 0, env.reserve.calls[0].Cmp(exa(70)))
	assert.Equal(t, 0, env.tokens.total("transfer", testCollateral, "carol").Cmp(exa(100)))

	asset := env.asset(t, testSynth)
	assert.True(t, asset.LiquidationPool.IsZero())
	assert.Equal(t, 0, asset.BadDebt.Cmp(exa(100)))
}

func TestRetireBadDebtReserveShortfall(t *testing.T) {
	env := newTestEnv(t)

	env.params.params.RetirementBonus = number.Zero
	badDebtFixture(t, env, 200, 30)

	env.reserve.redeem = func(amount number.Amount) (number.Amount, error) {
		return amount.Sub(exa(1)), nil
	}

	err := env.engine.RetireBadDebt(context.Background(), "carol", testSynth, exa(100))
	assert.True(t, errors.Is(err, core.ErrReserveShortfall))

	// the asset record is untouched
	asset := env.asset(t, testSynth)
	assert.Equal(t, 0, asset.BadDebt.Cmp(exa(200)))
	assert.Equal(t, 0, asset.LiquidationPool.Cmp(exa(30)))
}

func TestRetireLastBadDebtSweepsPool(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.params.params.RetirementBonus = number.Zero
	badDebtFixture(t, env, 100, 950)

	err := env.engine.RetireBadDebt(ctx, "carol", testSynth, exa(100))
	require.NoError(t, err)

	// the book is clean, the pool remainder goes to the reserve fund
	assert.Equal(t, 0, env.tokens.total("transfer", testCollateral, "carol").Cmp(exa(100)))
	assert.Equal(t, 0, env.tokens.total("transfer", testCollateral, reserveAddr).Cmp(exa(850)))

	asset := env.asset(t, testSynth)
	assert.True(t, asset.BadDebt.IsZero())
	assert.True(t, asset.LiquidationPool.IsZero())
}

func TestRetireBadDebtValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	err := env.engine.RetireBadDebt(ctx, "carol", testSynth, number.Zero)
	assert.True(t, errors.Is(err, core.ErrInvalidAmount))

	err = env.engine.RetireBadDebt(ctx, "carol", "NOPE", exa(10))
	assert.True(t, errors.Is(err, core.ErrAssetNotFound))

	// no bad debt on the book
	err = env.engine.RetireBadDebt(ctx, "carol", testSynth, exa(10))
	assert.True(t, errors.Is(err, core.ErrInvalidArgument))
}
