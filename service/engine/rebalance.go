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

// rebalanceChange per-position audit entry of one rebalancing batch
type rebalanceChange struct {
	PositionID uint64        `json:"position_id"`
	Debt       number.Amount `json:"debt"`
	Collateral number.Amount `json:"collateral"`
}

// RaisePrice defends a peg trading below target: sell a bounded amount
// of collateral for the pegged asset on the dex, burn the proceeds, and
// reduce each batch borrower's debt and collateral by its proportional
// share. Rebalancer only.
func (e *Engine) RaisePrice(ctx context.Context, caller string, required number.Amount) error {
	return e.rebalance(ctx, caller, required, true)
}

// LowerPrice defends a peg trading above target: mint the pegged asset,
// sell it for collateral, and increase each batch borrower's debt and
// collateral proportionally. Rebalancer only.
func (e *Engine) LowerPrice(ctx context.Context, caller string, required number.Amount) error {
	return e.rebalance(ctx, caller, required, false)
}

func (e *Engine) rebalance(ctx context.Context, caller string, required number.Amount, raise bool) error {
	e.mux.Lock()
	defer e.mux.Unlock()

	direction := "lower"
	if raise {
		direction = "raise"
	}

	log := logger.FromContext(ctx).WithFields(logrus.Fields{
		"op":        "rebalance",
		"direction": direction,
	})
	ctx = logger.WithContext(ctx, log)

	if !e.system.IsRebalancer(caller) {
		return core.ErrOperationForbidden
	}
	if required.IsZero() {
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

	synthSymbol := e.system.SynthSymbol
	collateralSymbol := e.system.CollateralSymbol

	asset, err := e.assetStore.Find(ctx, synthSymbol)
	if err != nil {
		return fmt.Errorf("asset %s: %w", synthSymbol, core.ErrAssetNotFound)
	}

	entries, err := e.queueStore.PeekBatch(ctx, synthSymbol, int(params.RedeemBatchSize))
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		log.Infoln("skip: empty borrower queue")
		return nil
	}

	// refresh debts from the ledger; queue rows only cache them
	positions := make([]*core.Position, 0, len(entries))
	batchDebt := number.Zero
	for _, entry := range entries {
		position, err := e.positionStore.Find(ctx, entry.PositionID)
		if err != nil {
			return err
		}
		positions = append(positions, position)
		batchDebt = batchDebt.Add(position.Balance(synthSymbol))
	}
	if batchDebt.IsZero() {
		return fmt.Errorf("batch of %d owes nothing: %w", len(entries), core.ErrEmptyBatch)
	}

	amount := number.Min(params.MaxRetirePercent.MulDiv(batchDebt, number.Points), required)
	if amount.IsZero() {
		return nil
	}

	synthPrice, err := e.pricez.Price(ctx, synthSymbol)
	if err != nil {
		return err
	}
	collateralPrice, err := e.pricez.Price(ctx, collateralSymbol)
	if err != nil {
		return err
	}

	// external market legs first; the ledger commits only against a
	// validated swap result
	var debtTotal, collateralTotal number.Amount
	if raise {
		toSell := amount.MulDiv(synthPrice, collateralPrice)
		received, err := e.dexz.Swap(ctx, collateralSymbol, synthSymbol, toSell)
		if err != nil {
			return err
		}
		if received.IsZero() {
			return fmt.Errorf("dex returned nothing for %s %s: %w", toSell, collateralSymbol, core.ErrSwapFailed)
		}
		// more proceeds than the batch owes cannot be applied to it
		if received.GreaterThan(batchDebt) {
			return fmt.Errorf("dex returned %s against batch debt %s: %w", received, batchDebt, core.ErrSwapFailed)
		}
		if err := e.tokenz.BurnFrom(ctx, synthSymbol, e.system.Address, received); err != nil {
			return err
		}
		debtTotal, collateralTotal = received, toSell
	} else {
		if err := e.tokenz.Mint(ctx, synthSymbol, e.system.Address, amount); err != nil {
			return err
		}
		received, err := e.dexz.Swap(ctx, synthSymbol, collateralSymbol, amount)
		if err != nil {
			return err
		}
		if received.IsZero() {
			return fmt.Errorf("dex returned nothing for %s %s: %w", amount, synthSymbol, core.ErrSwapFailed)
		}
		debtTotal, collateralTotal = amount, received
	}

	return e.tx(func(tx *db.DB) error {
		remainingDebt := debtTotal
		remainingCollateral := collateralTotal
		remainingBatchDebt := batchDebt

		changes := make([]rebalanceChange, 0, len(positions))
		weights := make(map[uint64]number.Amount, len(positions))

		for _, position := range positions {
			wasOpen := position.Open()
			debt := position.Balance(synthSymbol)

			// running remainder, no value created or destroyed beyond
			// truncation
			debtShare := remainingDebt.MulDiv(debt, remainingBatchDebt)
			collateralShare := remainingCollateral.MulDiv(debt, remainingBatchDebt)
			remainingDebt = remainingDebt.Sub(debtShare)
			remainingCollateral = remainingCollateral.Sub(collateralShare)
			remainingBatchDebt = remainingBatchDebt.Sub(debt)

			collateral := position.Balance(collateralSymbol)
			var newDebt, newCollateral number.Amount
			if raise {
				newDebt = debt.Sub(number.Min(debt, debtShare))
				newCollateral = collateral.Sub(number.Min(collateral, collateralShare))
			} else {
				newDebt = debt.Add(debtShare)
				newCollateral = collateral.Add(collateralShare)
			}

			if err := e.setDebt(ctx, tx, params, day, asset, position, newDebt, synthPrice); err != nil {
				return err
			}
			if err := e.setCollateral(ctx, tx, position, collateralSymbol, newCollateral); err != nil {
				return err
			}
			if err := e.registerTransition(ctx, tx, params, day, position, wasOpen); err != nil {
				return err
			}

			changes = append(changes, rebalanceChange{
				PositionID: position.ID,
				Debt:       debtShare,
				Collateral: collateralShare,
			})
			weights[position.ID] = newDebt
		}

		if raise {
			asset.TotalSupply = asset.TotalSupply.Sub(number.Min(asset.TotalSupply, debtTotal))
		} else {
			asset.TotalSupply = asset.TotalSupply.Add(debtTotal)
		}
		if err := e.assetStore.Update(ctx, tx, asset); err != nil {
			return err
		}

		if err := e.queueStore.Rotate(ctx, tx, synthSymbol, entries); err != nil {
			return err
		}

		if day >= params.ContinuousRewardDay {
			if err := e.rewardz.UpdateBatchRewardsData(ctx, rewardsName, asset.TotalSupply, weights); err != nil {
				return err
			}
		}

		extra := core.NewEventExtra()
		extra.Put("direction", direction)
		extra.Put("batch_debt", batchDebt)
		extra.Put("collateral_total", collateralTotal)
		extra.Put("changes", changes)

		event := &core.Event{
			Type:   core.EventRebalance,
			Actor:  caller,
			Symbol: synthSymbol,
			Amount: debtTotal,
			Note:   fmt.Sprintf("%s price, %d borrowers adjusted by %s %s", direction, len(changes), debtTotal, synthSymbol),
		}
		event.SetExtra(extra)
		return e.emit(ctx, tx, event)
	})
}
