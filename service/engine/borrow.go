package engine

import (
	"context"
	"fmt"

	"loans/core"
	"loans/pkg/number"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	"github.com/sirupsen/logrus"
)

// DepositAndBorrow credits collateral to the caller's position and
// optionally originates a loan against it. Collateral arrives either as
// a direct token transfer (deposit) or as native value routed through
// the staking collaborator (nativeValue); the staked amount actually
// received is validated before anything is credited.
func (e *Engine) DepositAndBorrow(
	ctx context.Context,
	caller string,
	deposit number.Amount,
	nativeValue number.Amount,
	borrowSymbol string,
	borrowAmount number.Amount,
) error {
	e.mux.Lock()
	defer e.mux.Unlock()

	log := logger.FromContext(ctx).WithFields(logrus.Fields{
		"op":     "depositAndBorrow",
		"caller": caller,
	})
	ctx = logger.WithContext(ctx, log)

	day, _, err := e.checkForNewDay(ctx)
	if err != nil {
		return err
	}

	params, err := e.paramStore.Load(ctx)
	if err != nil {
		return err
	}

	collateral := deposit
	if !nativeValue.IsZero() {
		received, err := e.stakingz.Stake(ctx, nativeValue)
		if err != nil {
			return err
		}
		if received.IsZero() {
			return fmt.Errorf("staking returned nothing for %s: %w", nativeValue, core.ErrStakingMismatch)
		}
		collateral = collateral.Add(received)
	}

	position, err := e.positionStore.GetOrCreate(ctx, caller)
	if err != nil {
		return err
	}
	wasOpen := position.Open()

	if borrowAmount.IsZero() {
		if collateral.IsZero() {
			return fmt.Errorf("nothing to deposit: %w", core.ErrInvalidAmount)
		}

		return e.tx(func(tx *db.DB) error {
			if err := e.creditCollateral(ctx, tx, position, collateral); err != nil {
				return err
			}
			return e.registerTransition(ctx, tx, params, day, position, wasOpen)
		})
	}

	asset, err := e.assetStore.Find(ctx, borrowSymbol)
	if err != nil {
		return fmt.Errorf("asset %s: %w", borrowSymbol, core.ErrAssetNotFound)
	}
	if !asset.Active {
		return fmt.Errorf("asset %s: %w", borrowSymbol, core.ErrAssetInactive)
	}
	if asset.Dead {
		return fmt.Errorf("asset %s: %w", borrowSymbol, core.ErrAssetDead)
	}
	if !asset.IsBorrowable {
		return fmt.Errorf("asset %s: %w", borrowSymbol, core.ErrAssetNotBorrowable)
	}

	price, err := e.pricez.Price(ctx, borrowSymbol)
	if err != nil {
		return err
	}

	// solvency, before any mutation: value the position as if the
	// collateral were already credited
	collateralValue, err := e.positionz.CollateralValue(ctx, position)
	if err != nil {
		return err
	}
	if !collateral.IsZero() {
		collateralPrice, err := e.pricez.Price(ctx, e.system.CollateralSymbol)
		if err != nil {
			return err
		}
		collateralValue = collateralValue.Add(collateral.MulDiv(collateralPrice, number.Exa))
	}

	debtValue, err := e.positionz.DebtValue(ctx, position, false)
	if err != nil {
		return err
	}

	fee := params.OriginationFee.MulDiv(borrowAmount, number.Points)
	newDebt := borrowAmount.Add(fee)
	newDebtValue := price.MulDiv(newDebt, number.Exa)

	if position.Balance(borrowSymbol).IsZero() {
		if newDebtValue.MulDiv(number.Exa, price).LessThan(params.NewLoanMinimum) {
			return fmt.Errorf("loan of %s below minimum %s: %w",
				newDebt, params.NewLoanMinimum, core.ErrLoanBelowMinimum)
		}
	}

	total := debtValue.Add(newDebtValue)
	required := params.LockingRatio.MulDiv(total, number.Points)
	if required.GreaterThan(collateralValue) {
		return fmt.Errorf("debt value %s requires %s collateral value, short %s: %w",
			total, required, required.Sub(collateralValue), core.ErrUnderCollateralized)
	}

	// external mints before commit; a failed mint aborts untouched
	if err := e.tokenz.Mint(ctx, borrowSymbol, caller, borrowAmount); err != nil {
		return err
	}
	if !fee.IsZero() {
		feeHandler, err := e.governance.FeeHandler(ctx)
		if err != nil {
			return err
		}
		if err := e.tokenz.Mint(ctx, borrowSymbol, feeHandler, fee); err != nil {
			return err
		}
	}

	return e.tx(func(tx *db.DB) error {
		if !collateral.IsZero() {
			if err := e.creditCollateral(ctx, tx, position, collateral); err != nil {
				return err
			}
		}

		// supply first so the reward push carries the new aggregate
		asset.TotalSupply = asset.TotalSupply.Add(newDebt)
		if err := e.assetStore.Update(ctx, tx, asset); err != nil {
			return err
		}

		debt := position.Balance(borrowSymbol).Add(newDebt)
		if err := e.setDebt(ctx, tx, params, day, asset, position, debt, price); err != nil {
			return err
		}

		if err := e.registerTransition(ctx, tx, params, day, position, wasOpen); err != nil {
			return err
		}

		extra := core.NewEventExtra()
		extra.Put("position_id", position.ID)
		extra.Put("fee", fee)
		extra.Put("collateral", collateral)

		event := &core.Event{
			Type:   core.EventOriginateLoan,
			Actor:  caller,
			Symbol: borrowSymbol,
			Amount: borrowAmount,
			Note:   fmt.Sprintf("loan of %s %s originated, fee %s", borrowAmount, borrowSymbol, fee),
		}
		event.SetExtra(extra)
		return e.emit(ctx, tx, event)
	})
}

func (e *Engine) creditCollateral(ctx context.Context, tx *db.DB, position *core.Position, amount number.Amount) error {
	symbol := e.system.CollateralSymbol
	balance := position.Balance(symbol).Add(amount)
	if err := e.setCollateral(ctx, tx, position, symbol, balance); err != nil {
		return err
	}

	event := &core.Event{
		Type:   core.EventCollateral,
		Actor:  position.Address,
		Symbol: symbol,
		Amount: amount,
		Note:   fmt.Sprintf("%s %s collateral received", amount, symbol),
	}
	return e.emit(ctx, tx, event)
}
