package position

import (
	"context"
	"fmt"

	"loans/core"
	"loans/pkg/number"

	"github.com/fox-one/pkg/logger"
)

type positionService struct {
	assetStore    core.AssetStore
	snapshotStore core.SnapshotStore
	paramStore    core.ParamStore
	priceService  core.PriceService
	standing      core.StandingPolicy
}

// New new position service
func New(
	assetStore core.AssetStore,
	snapshotStore core.SnapshotStore,
	paramStore core.ParamStore,
	priceService core.PriceService,
	standing core.StandingPolicy,
) core.PositionService {
	if standing == nil {
		standing = core.DefaultStandingPolicy
	}

	return &positionService{
		assetStore:    assetStore,
		snapshotStore: snapshotStore,
		paramStore:    paramStore,
		priceService:  priceService,
		standing:      standing,
	}
}

func (s *positionService) CollateralValue(ctx context.Context, position *core.Position) (number.Amount, error) {
	assets, err := s.assetStore.AllAsMap(ctx)
	if err != nil {
		return number.Zero, err
	}

	value := number.Zero
	for symbol, balance := range position.Balances {
		asset, ok := assets[symbol]
		if !ok || !asset.IsCollateral || balance.IsZero() {
			continue
		}

		price, err := s.priceService.Price(ctx, symbol)
		if err != nil {
			return number.Zero, err
		}

		value = value.Add(balance.MulDiv(price, number.Exa))
	}

	return value, nil
}

func (s *positionService) DebtValue(ctx context.Context, position *core.Position, includeDead bool) (number.Amount, error) {
	assets, err := s.assetStore.AllAsMap(ctx)
	if err != nil {
		return number.Zero, err
	}

	value := number.Zero
	for symbol, balance := range position.Balances {
		asset, ok := assets[symbol]
		if !ok || !asset.IsBorrowable || balance.IsZero() {
			continue
		}
		if asset.Dead && !includeDead {
			continue
		}

		price, err := s.priceService.Price(ctx, symbol)
		if err != nil {
			return number.Zero, err
		}

		value = value.Add(balance.MulDiv(price, number.Exa))
	}

	return value, nil
}

func (s *positionService) DebtValueAt(ctx context.Context, position *core.Position, day int64) (number.Amount, error) {
	params, err := s.paramStore.Load(ctx)
	if err != nil {
		return number.Zero, err
	}

	if day >= params.ContinuousRewardDay {
		return number.Zero, fmt.Errorf("no snapshot recorded for day %d: %w", day, core.ErrSnapshotUnavailable)
	}

	assets, err := s.assetStore.All(ctx)
	if err != nil {
		return number.Zero, err
	}

	value := number.Zero
	for _, asset := range assets {
		if !asset.IsBorrowable {
			continue
		}

		debt, err := s.snapshotStore.BalanceAt(ctx, day, position.ID, asset.Symbol)
		if err != nil {
			return number.Zero, err
		}
		if debt.IsZero() {
			continue
		}

		price, err := s.priceService.Price(ctx, asset.Symbol)
		if err != nil {
			return number.Zero, err
		}

		value = value.Add(debt.MulDiv(price, number.Exa))
	}

	return value, nil
}

func (s *positionService) HasDebt(ctx context.Context, position *core.Position) (bool, error) {
	assets, err := s.assetStore.AllAsMap(ctx)
	if err != nil {
		return false, err
	}

	for symbol, balance := range position.Balances {
		if asset, ok := assets[symbol]; ok && asset.IsBorrowable && !balance.IsZero() {
			return true, nil
		}
	}

	return false, nil
}

func (s *positionService) Standing(ctx context.Context, position *core.Position) (core.Standing, error) {
	log := logger.FromContext(ctx)

	params, err := s.paramStore.Load(ctx)
	if err != nil {
		return core.StandingZero, err
	}

	debtValue, err := s.DebtValue(ctx, position, false)
	if err != nil {
		return core.StandingZero, err
	}

	collateralValue, err := s.CollateralValue(ctx, position)
	if err != nil {
		return core.StandingZero, err
	}

	standing := s.standing(debtValue, collateralValue, params)
	log.WithField("position", position.ID).Debugln("standing:", standing)
	return standing, nil
}
