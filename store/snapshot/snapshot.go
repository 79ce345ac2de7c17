package snapshot

import (
	"context"

	"loans/core"
	"loans/pkg/number"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type snapshotStore struct {
	db *db.DB
}

// New new snapshot store
func New(db *db.DB) core.SnapshotStore {
	return &snapshotStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		if err := db.Update().Model(core.Snapshot{}).AutoMigrate(core.Snapshot{}).Error; err != nil {
			return err
		}

		if err := db.Update().Model(core.SnapshotBalance{}).AutoMigrate(core.SnapshotBalance{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *snapshotStore) Create(ctx context.Context, tx *db.DB, snapshot *core.Snapshot) error {
	return tx.Update().Where("day = ?", snapshot.Day).FirstOrCreate(snapshot).Error
}

func (s *snapshotStore) Find(ctx context.Context, day int64) (*core.Snapshot, error) {
	var snapshot core.Snapshot

	query := s.db.View()
	if day < 0 {
		query = query.Order("day desc")
	} else {
		query = query.Where("day = ?", day)
	}

	if err := query.First(&snapshot).Error; err != nil {
		return nil, err
	}

	return &snapshot, nil
}

// toUpdateParams zero values must persist, so mutable columns go
// through a map rather than a struct update.
func toUpdateParams(snapshot *core.Snapshot) map[string]interface{} {
	return map[string]interface{}{
		"total_mining_debt": snapshot.TotalMiningDebt,
		"nonzero_count":     snapshot.NonzeroCount,
		"add_nonzero":       snapshot.AddNonzero,
		"remove_nonzero":    snapshot.RemoveNonzero,
	}
}

func (s *snapshotStore) Update(ctx context.Context, tx *db.DB, snapshot *core.Snapshot) error {
	return tx.Update().Model(core.Snapshot{}).
		Where("day = ?", snapshot.Day).
		Updates(toUpdateParams(snapshot)).Error
}

func (s *snapshotStore) All(ctx context.Context) ([]*core.Snapshot, error) {
	var snapshots []*core.Snapshot
	if err := s.db.View().Order("day").Find(&snapshots).Error; err != nil {
		return nil, err
	}
	return snapshots, nil
}

func (s *snapshotStore) SaveBalance(ctx context.Context, tx *db.DB, balance *core.SnapshotBalance) error {
	existing := &core.SnapshotBalance{}
	query := tx.Update().
		Where("day = ? and position_id = ? and symbol = ?", balance.Day, balance.PositionID, balance.Symbol).
		First(existing)
	if query.Error != nil {
		if query.RecordNotFound() {
			return tx.Update().Create(balance).Error
		}
		return query.Error
	}

	return tx.Update().Model(core.SnapshotBalance{}).
		Where("id = ?", existing.ID).
		Update("debt", balance.Debt).Error
}

func (s *snapshotStore) BalanceAt(ctx context.Context, day int64, positionID uint64, symbol string) (number.Amount, error) {
	var balance core.SnapshotBalance
	err := s.db.View().
		Where("day <= ? and position_id = ? and symbol = ?", day, positionID, symbol).
		Order("day desc").
		First(&balance).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return number.Zero, nil
		}
		return number.Zero, err
	}

	return balance.Debt, nil
}
