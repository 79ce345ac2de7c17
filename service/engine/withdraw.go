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

// WithdrawCollateral debits collateral and transfers the tokens out,
// provided the remaining collateral still covers the locking ratio.
func (e *Engine) WithdrawCollateral(ctx context.Context, caller string, amount number.Amount) error {
	e.mux.Lock()
	defer e.mux.Unlock()

	log := logger.FromContext(ctx).WithFields(logrus.Fields{
		"op":     "withdrawCollateral",
		"caller": caller,
	})
	ctx = logger.WithContext(ctx, log)

	if amount.IsZero() {
		return fmt.Errorf("non-positive amount: %w", core.ErrInvalidAmount)
	}

	day, _, err := e.checkForNewDay(ctx)
	if err != nil {
		return err
	}

	params, err := e.paramStore.Load(ctx)
	if err != nil {
		return err
	}

	position, err := e.positionStore.FindByAddress(ctx, caller)
	if err != nil {
		return err
	}
	wasOpen := position.Open()

	symbol := e.system.CollateralSymbol
	balance := position.Balance(symbol)
	if balance.LessThan(amount) {
		return fmt.Errorf("withdraw %s exceeds collateral %s: %w", amount, balance, core.ErrInsufficientCollateral)
	}

	collateralPrice, err := e.pricez.Price(ctx, symbol)
	if err != nil {
		return err
	}

	debtValue, err := e.positionz.DebtValue(ctx, position, false)
	if err != nil {
		return err
	}

	remaining := balance.Sub(amount)
	remainingValue := remaining.MulDiv(collateralPrice, number.Exa)
	required := params.LockingRatio.MulDiv(debtValue, number.Points)

	if remainingValue.LessThan(required) {
		return fmt.Errorf("remaining collateral %s below requirement %s: %w",
			remainingValue, required, core.ErrInsufficientCollateral)
	}

	// ledger writes commit only after the transfer succeeded
	if err := e.tokenz.Transfer(ctx, symbol, caller, amount); err != nil {
		return err
	}

	return e.tx(func(tx *db.DB) error {
		if err := e.setCollateral(ctx, tx, position, symbol, remaining); err != nil {
			return err
		}

		if err := e.registerTransition(ctx, tx, params, day, position, wasOpen); err != nil {
			return err
		}

		event := &core.Event{
			Type:   core.EventWithdraw,
			Actor:  caller,
			Symbol: symbol,
			Amount: amount,
			Note:   fmt.Sprintf("%s %s collateral withdrawn", amount, symbol),
		}
		return e.emit(ctx, tx, event)
	})
}
