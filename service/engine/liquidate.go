package engine

import (
	"context"
	"fmt"
	"sort"

	"loans/core"
	"loans/pkg/number"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	"github.com/sirupsen/logrus"
)

// Liquidate seizes an under-collateralized position. The caller earns
// the liquidation reward; the remaining collateral is split across the
// owed assets proportionally to their share of the position's debt
// value, each asset's debt is reclassified as bad debt and the
// collateral share credited to its liquidation pool.
func (e *Engine) Liquidate(ctx context.Context, caller, owner string) error {
	e.mux.Lock()
	defer e.mux.Unlock()

	log := logger.FromContext(ctx).WithFields(logrus.Fields{
		"op":     "liquidate",
		"caller": caller,
		"owner":  owner,
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

	position, err := e.positionStore.FindByAddress(ctx, owner)
	if err != nil {
		return err
	}
	wasOpen := position.Open()

	standing, err := e.positionz.Standing(ctx, position)
	if err != nil {
		return err
	}
	if standing != core.StandingLiquidate {
		return fmt.Errorf("position %d standing is %s: %w", position.ID, standing, core.ErrNotLiquidatable)
	}

	collateralSymbol := e.system.CollateralSymbol
	collateral := position.Balance(collateralSymbol)

	assets, err := e.assetStore.AllAsMap(ctx)
	if err != nil {
		return err
	}

	// owed assets in deterministic order
	var symbols []string
	for symbol, balance := range position.Balances {
		if asset, ok := assets[symbol]; ok && asset.IsBorrowable && !balance.IsZero() {
			symbols = append(symbols, symbol)
		}
	}
	sort.Strings(symbols)

	prices := make(map[string]number.Amount, len(symbols))
	totalDebtValue := number.Zero
	for _, symbol := range symbols {
		price, err := e.pricez.Price(ctx, symbol)
		if err != nil {
			return err
		}
		prices[symbol] = price
		totalDebtValue = totalDebtValue.Add(position.Balance(symbol).MulDiv(price, number.Exa))
	}
	if totalDebtValue.IsZero() {
		return fmt.Errorf("position %d owes nothing: %w", position.ID, core.ErrNotLiquidatable)
	}

	reward := collateral.MulDiv(params.LiquidationReward, number.Points)
	forPool := collateral.Sub(reward)

	// reward the liquidator before committing; a failed transfer aborts
	if !reward.IsZero() {
		if err := e.tokenz.Transfer(ctx, collateralSymbol, caller, reward); err != nil {
			return err
		}
	}

	return e.tx(func(tx *db.DB) error {
		remainingPool := forPool
		remainingValue := totalDebtValue

		extra := core.NewEventExtra()
		extra.Put("position_id", position.ID)
		extra.Put("reward", reward)

		for _, symbol := range symbols {
			asset := assets[symbol]
			debt := position.Balance(symbol)
			debtValue := debt.MulDiv(prices[symbol], number.Exa)

			// running remainder, no rounding leakage
			share := remainingPool.MulDiv(debtValue, remainingValue)
			remainingPool = remainingPool.Sub(share)
			remainingValue = remainingValue.Sub(number.Min(remainingValue, debtValue))

			asset.BadDebt = asset.BadDebt.Add(debt)
			asset.LiquidationPool = asset.LiquidationPool.Add(share)
			if err := e.assetStore.Update(ctx, tx, asset); err != nil {
				return err
			}

			if err := e.setDebt(ctx, tx, params, day, asset, position, number.Zero, prices[symbol]); err != nil {
				return err
			}

			if err := e.evaluateDead(ctx, tx, asset); err != nil {
				return err
			}

			extra.Put(symbol, core.EventExtra{"bad_debt": debt, "pool_share": share})
		}

		if err := e.setCollateral(ctx, tx, position, collateralSymbol, number.Zero); err != nil {
			return err
		}

		if err := e.registerTransition(ctx, tx, params, day, position, wasOpen); err != nil {
			return err
		}

		event := &core.Event{
			Type:   core.EventLiquidate,
			Actor:  caller,
			Symbol: collateralSymbol,
			Amount: collateral,
			Note:   fmt.Sprintf("position %d of %s liquidated, reward %s", position.ID, owner, reward),
		}
		event.SetExtra(extra)
		return e.emit(ctx, tx, event)
	})
}
