package asset

import (
	"context"

	"loans/core"

	"github.com/fox-one/pkg/store/db"
)

type assetStore struct {
	db *db.DB
}

// New new asset store
func New(db *db.DB) core.AssetStore {
	return &assetStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Asset{})
		if err := tx.AutoMigrate(core.Asset{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *assetStore) Create(ctx context.Context, tx *db.DB, asset *core.Asset) error {
	return tx.Update().Where("symbol = ?", asset.Symbol).FirstOrCreate(asset).Error
}

func (s *assetStore) Find(ctx context.Context, symbol string) (*core.Asset, error) {
	var asset core.Asset
	if err := s.db.View().Where("symbol = ?", symbol).First(&asset).Error; err != nil {
		return nil, err
	}

	return &asset, nil
}

func (s *assetStore) All(ctx context.Context) ([]*core.Asset, error) {
	var assets []*core.Asset
	if err := s.db.View().Order("id").Find(&assets).Error; err != nil {
		return nil, err
	}
	return assets, nil
}

func (s *assetStore) AllAsMap(ctx context.Context) (map[string]*core.Asset, error) {
	assets, err := s.All(ctx)
	if err != nil {
		return nil, err
	}

	maps := make(map[string]*core.Asset)
	for _, a := range assets {
		maps[a.Symbol] = a
	}

	return maps, nil
}

// toUpdateParams zero values must persist, so mutable columns go
// through a map rather than a struct update.
func toUpdateParams(asset *core.Asset) map[string]interface{} {
	return map[string]interface{}{
		"active":           asset.Active,
		"dead":             asset.Dead,
		"total_supply":     asset.TotalSupply,
		"bad_debt":         asset.BadDebt,
		"liquidation_pool": asset.LiquidationPool,
	}
}

func (s *assetStore) Update(ctx context.Context, tx *db.DB, asset *core.Asset) error {
	version := asset.Version
	asset.Version++

	updates := toUpdateParams(asset)
	updates["version"] = asset.Version

	query := tx.Update().Model(core.Asset{}).
		Where("id = ? and version = ?", asset.ID, version).
		Updates(updates)
	if query.Error != nil {
		return query.Error
	}

	if query.RowsAffected == 0 {
		return db.ErrOptimisticLock
	}

	return nil
}
