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

// RetireBadDebt burns the caller's tokens against an asset's bad debt
// and pays out the equivalent collateral plus the retirement bonus,
// from the liquidation pool first and the reserve fund for any
// shortfall.
func (e *Engine) RetireBadDebt(ctx context.Context, caller, symbol string, value number.Amount) error {
	e.mux.Lock()
	defer e.mux.Unlock()

	log := logger.FromContext(ctx).WithFields(logrus.Fields{
		"op":     "retireBadDebt",
		"caller": caller,
		"symbol": symbol,
	})
	ctx = logger.WithContext(ctx, log)

	if value.IsZero() {
		return fmt.Errorf("non-positive amount: %w", core.ErrInvalidAmount)
	}

	if _, _, err := e.checkForNewDay(ctx); err != nil {
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
	if !asset.IsBorrowable {
		return fmt.Errorf("asset %s: %w", symbol, core.ErrAssetNotBorrowable)
	}
	if asset.BadDebt.IsZero() {
		return fmt.Errorf("asset %s has no bad debt: %w", symbol, core.ErrInvalidArgument)
	}

	retired := number.Min(asset.BadDebt, value)

	assetPrice, err := e.pricez.Price(ctx, symbol)
	if err != nil {
		return err
	}
	collateralSymbol := e.system.CollateralSymbol
	collateralPrice, err := e.pricez.Price(ctx, collateralSymbol)
	if err != nil {
		return err
	}

	// retired × (POINTS + bonus) × assetPrice / (collateralPrice × POINTS)
	out := retired.Mul(number.Points.Add(params.RetirementBonus)).
		MulDiv(assetPrice, collateralPrice.Mul(number.Points))

	pool := asset.LiquidationPool
	fromPool := number.Min(pool, out)
	shortfall := out.Sub(fromPool)

	// external legs first, each return checked, then a single commit
	if err := e.tokenz.BurnFrom(ctx, symbol, caller, retired); err != nil {
		return err
	}

	if !shortfall.IsZero() {
		redeemed, err := e.reservez.Redeem(ctx, e.system.Address, shortfall)
		if err != nil {
			return err
		}
		if redeemed.Cmp(shortfall) != 0 {
			return fmt.Errorf("reserve returned %s of %s requested: %w",
				redeemed, shortfall, core.ErrReserveShortfall)
		}
	}

	if err := e.tokenz.Transfer(ctx, collateralSymbol, caller, out); err != nil {
		return err
	}

	badDebt := asset.BadDebt.Sub(retired)
	poolLeft := pool.Sub(fromPool)

	// sweep the pool remainder to the reserve once the book is clean
	if badDebt.IsZero() && !poolLeft.IsZero() {
		reserve, err := e.governance.ReserveFund(ctx)
		if err != nil {
			return err
		}
		if err := e.tokenz.Transfer(ctx, collateralSymbol, reserve, poolLeft); err != nil {
			return err
		}
		poolLeft = number.Zero
	}

	return e.tx(func(tx *db.DB) error {
		asset.BadDebt = badDebt
		asset.LiquidationPool = poolLeft
		asset.TotalSupply = asset.TotalSupply.Sub(number.Min(asset.TotalSupply, retired))
		if err := e.assetStore.Update(ctx, tx, asset); err != nil {
			return err
		}

		if err := e.evaluateDead(ctx, tx, asset); err != nil {
			return err
		}

		extra := core.NewEventExtra()
		extra.Put("collateral_out", out)
		extra.Put("from_pool", fromPool)
		extra.Put("from_reserve", shortfall)

		event := &core.Event{
			Type:   core.EventBadDebtRetired,
			Actor:  caller,
			Symbol: symbol,
			Amount: retired,
			Note:   fmt.Sprintf("%s %s bad debt retired for %s %s", retired, symbol, out, collateralSymbol),
		}
		event.SetExtra(extra)
		return e.emit(ctx, tx, event)
	})
}
