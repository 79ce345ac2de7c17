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

// AddAsset registers a new token with the engine. Admin only; symbols
// are unique and registration is permanent.
func (e *Engine) AddAsset(ctx context.Context, caller string, asset *core.Asset) error {
	e.mux.Lock()
	defer e.mux.Unlock()

	log := logger.FromContext(ctx).WithFields(logrus.Fields{
		"op":     "addAsset",
		"symbol": asset.Symbol,
	})
	ctx = logger.WithContext(ctx, log)

	if !e.system.IsAdmin(caller) {
		return core.ErrOperationForbidden
	}
	if asset.Symbol == "" {
		return fmt.Errorf("empty symbol: %w", core.ErrInvalidArgument)
	}

	if _, err := e.assetStore.Find(ctx, asset.Symbol); err == nil {
		return fmt.Errorf("asset %s: %w", asset.Symbol, core.ErrAssetExists)
	}

	asset.Active = true
	asset.Dead = false
	asset.TotalSupply = number.Zero
	asset.BadDebt = number.Zero
	asset.LiquidationPool = number.Zero

	return e.tx(func(tx *db.DB) error {
		if err := e.assetStore.Create(ctx, tx, asset); err != nil {
			return err
		}

		extra := core.NewEventExtra()
		extra.Put("is_collateral", asset.IsCollateral)
		extra.Put("is_borrowable", asset.IsBorrowable)

		event := &core.Event{
			Type:   core.EventAssetAdded,
			Actor:  caller,
			Symbol: asset.Symbol,
			Note:   fmt.Sprintf("asset %s registered", asset.Symbol),
		}
		event.SetExtra(extra)
		return e.emit(ctx, tx, event)
	})
}

// ToggleActive flips an asset's active flag. Admin only. Deactivation
// stops new borrowing; repayment and liquidation keep working.
func (e *Engine) ToggleActive(ctx context.Context, caller, symbol string) error {
	e.mux.Lock()
	defer e.mux.Unlock()

	log := logger.FromContext(ctx).WithFields(logrus.Fields{
		"op":     "toggleActive",
		"symbol": symbol,
	})
	ctx = logger.WithContext(ctx, log)

	if !e.system.IsAdmin(caller) {
		return core.ErrOperationForbidden
	}

	asset, err := e.assetStore.Find(ctx, symbol)
	if err != nil {
		return fmt.Errorf("asset %s: %w", symbol, core.ErrAssetNotFound)
	}

	asset.Active = !asset.Active

	return e.tx(func(tx *db.DB) error {
		if err := e.assetStore.Update(ctx, tx, asset); err != nil {
			return err
		}

		extra := core.NewEventExtra()
		extra.Put("active", asset.Active)

		event := &core.Event{
			Type:   core.EventAssetToggled,
			Actor:  caller,
			Symbol: symbol,
			Note:   fmt.Sprintf("asset %s active=%v", symbol, asset.Active),
		}
		event.SetExtra(extra)
		return e.emit(ctx, tx, event)
	})
}

// SetParam assigns one global parameter from its string form. Admin
// only; takes effect for all subsequent operations.
func (e *Engine) SetParam(ctx context.Context, caller, key, value string) error {
	e.mux.Lock()
	defer e.mux.Unlock()

	log := logger.FromContext(ctx).WithFields(logrus.Fields{
		"op":  "setParam",
		"key": key,
	})
	ctx = logger.WithContext(ctx, log)

	if !e.system.IsAdmin(caller) {
		return core.ErrOperationForbidden
	}

	if err := e.paramStore.Set(ctx, key, value); err != nil {
		return err
	}

	return e.tx(func(tx *db.DB) error {
		extra := core.NewEventExtra()
		extra.Put("key", key)
		extra.Put("value", value)

		event := &core.Event{
			Type:  core.EventParameter,
			Actor: caller,
			Note:  fmt.Sprintf("parameter %s set to %s", key, value),
		}
		event.SetExtra(extra)
		return e.emit(ctx, tx, event)
	})
}
