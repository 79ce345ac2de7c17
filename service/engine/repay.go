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

// ReturnAsset repays outstanding debt. The repaid tokens are burned
// from the caller's balance; repay must be set (asset redemption is
// reserved).
func (e *Engine) ReturnAsset(ctx context.Context, caller, symbol string, amount number.Amount, repay bool) error {
	e.mux.Lock()
	defer e.mux.Unlock()

	log := logger.FromContext(ctx).WithFields(logrus.Fields{
		"op":     "returnAsset",
		"caller": caller,
		"symbol": symbol,
	})
	ctx = logger.WithContext(ctx, log)

	if !repay {
		return fmt.Errorf("only repayment is supported: %w", core.ErrInvalidArgument)
	}
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

	asset, err := e.assetStore.Find(ctx, symbol)
	if err != nil {
		return fmt.Errorf("asset %s: %w", symbol, core.ErrAssetNotFound)
	}

	position, err := e.positionStore.FindByAddress(ctx, caller)
	if err != nil {
		return err
	}
	wasOpen := position.Open()

	debt := position.Balance(symbol)
	if debt.LessThan(amount) {
		return fmt.Errorf("repay %s exceeds debt %s: %w", amount, debt, core.ErrInsufficientDebt)
	}

	price, err := e.pricez.Price(ctx, symbol)
	if err != nil {
		return err
	}

	// burn first; a failed burn leaves the ledger untouched
	if err := e.tokenz.BurnFrom(ctx, symbol, caller, amount); err != nil {
		return err
	}

	return e.tx(func(tx *db.DB) error {
		// supply first so the reward push carries the new aggregate
		asset.TotalSupply = asset.TotalSupply.Sub(number.Min(asset.TotalSupply, amount))
		if err := e.assetStore.Update(ctx, tx, asset); err != nil {
			return err
		}

		if err := e.setDebt(ctx, tx, params, day, asset, position, debt.Sub(amount), price); err != nil {
			return err
		}

		if err := e.evaluateDead(ctx, tx, asset); err != nil {
			return err
		}

		if err := e.registerTransition(ctx, tx, params, day, position, wasOpen); err != nil {
			return err
		}

		extra := core.NewEventExtra()
		extra.Put("position_id", position.ID)
		extra.Put("remaining", debt.Sub(amount))

		event := &core.Event{
			Type:   core.EventLoanRepaid,
			Actor:  caller,
			Symbol: symbol,
			Amount: amount,
			Note:   fmt.Sprintf("loan of %s %s repaid", amount, symbol),
		}
		event.SetExtra(extra)
		return e.emit(ctx, tx, event)
	})
}
