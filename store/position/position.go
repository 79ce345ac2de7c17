package position

import (
	"context"

	"loans/core"
	"loans/pkg/number"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type positionStore struct {
	db *db.DB
}

// New new position store
func New(db *db.DB) core.PositionStore {
	return &positionStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Position{})
		if err := tx.AutoMigrate(core.Position{}).Error; err != nil {
			return err
		}

		if err := db.Update().Model(core.PositionBalance{}).AutoMigrate(core.PositionBalance{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *positionStore) GetOrCreate(ctx context.Context, address string) (*core.Position, error) {
	position := &core.Position{Address: address}
	if err := s.db.Update().Where("address = ?", address).FirstOrCreate(position).Error; err != nil {
		return nil, err
	}

	if err := s.loadBalances(ctx, position); err != nil {
		return nil, err
	}

	return position, nil
}

func (s *positionStore) Find(ctx context.Context, id uint64) (*core.Position, error) {
	var position core.Position
	if err := s.db.View().Where("id = ?", id).First(&position).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, core.ErrPositionNotFound
		}
		return nil, err
	}

	if err := s.loadBalances(ctx, &position); err != nil {
		return nil, err
	}

	return &position, nil
}

func (s *positionStore) FindByAddress(ctx context.Context, address string) (*core.Position, error) {
	var position core.Position
	if err := s.db.View().Where("address = ?", address).First(&position).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, core.ErrPositionNotFound
		}
		return nil, err
	}

	if err := s.loadBalances(ctx, &position); err != nil {
		return nil, err
	}

	return &position, nil
}

func (s *positionStore) SetBalance(ctx context.Context, tx *db.DB, positionID uint64, symbol string, amount number.Amount) error {
	balance := &core.PositionBalance{
		PositionID: positionID,
		Symbol:     symbol,
	}

	if err := tx.Update().
		Where("position_id = ? and symbol = ?", positionID, symbol).
		FirstOrCreate(balance).Error; err != nil {
		return err
	}

	return tx.Update().Model(core.PositionBalance{}).
		Where("position_id = ? and symbol = ?", positionID, symbol).
		Update("amount", amount).Error
}

func (s *positionStore) List(ctx context.Context, fromID uint64, limit int) ([]*core.Position, error) {
	var positions []*core.Position
	if err := s.db.View().Where("id > ?", fromID).Order("id").Limit(limit).Find(&positions).Error; err != nil {
		return nil, err
	}

	for _, p := range positions {
		if err := s.loadBalances(ctx, p); err != nil {
			return nil, err
		}
	}

	return positions, nil
}

func (s *positionStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.View().Model(core.Position{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (s *positionStore) loadBalances(ctx context.Context, position *core.Position) error {
	var rows []*core.PositionBalance
	if err := s.db.View().Where("position_id = ?", position.ID).Find(&rows).Error; err != nil {
		return err
	}

	position.Balances = make(map[string]number.Amount, len(rows))
	for _, row := range rows {
		position.Balances[row.Symbol] = row.Amount
	}

	return nil
}
