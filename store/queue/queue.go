package queue

import (
	"context"

	"loans/core"
	"loans/pkg/number"

	"github.com/fox-one/pkg/store/db"
)

type queueStore struct {
	db *db.DB
}

// New new borrower queue store
func New(db *db.DB) core.QueueStore {
	return &queueStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.QueueEntry{})
		if err := tx.AutoMigrate(core.QueueEntry{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *queueStore) Add(ctx context.Context, tx *db.DB, symbol string, positionID uint64, debt number.Amount) error {
	rank, err := s.nextRank(tx, symbol)
	if err != nil {
		return err
	}

	entry := &core.QueueEntry{
		Symbol:     symbol,
		PositionID: positionID,
		Debt:       debt,
		Rank:       rank,
	}

	return tx.Update().
		Where("symbol = ? and position_id = ?", symbol, positionID).
		FirstOrCreate(entry).Error
}

func (s *queueStore) Remove(ctx context.Context, tx *db.DB, symbol string, positionID uint64) error {
	return tx.Update().
		Where("symbol = ? and position_id = ?", symbol, positionID).
		Delete(core.QueueEntry{}).Error
}

func (s *queueStore) UpdateDebt(ctx context.Context, tx *db.DB, symbol string, positionID uint64, debt number.Amount) error {
	return tx.Update().Model(core.QueueEntry{}).
		Where("symbol = ? and position_id = ?", symbol, positionID).
		Update("debt", debt).Error
}

func (s *queueStore) Size(ctx context.Context, symbol string) (int64, error) {
	var count int64
	if err := s.db.View().Model(core.QueueEntry{}).Where("symbol = ?", symbol).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (s *queueStore) PeekBatch(ctx context.Context, symbol string, n int) ([]*core.QueueEntry, error) {
	var entries []*core.QueueEntry
	if err := s.db.View().
		Where("symbol = ?", symbol).
		Order("rank").Limit(n).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Rotate reassigns the entries' ranks past the current tail, preserving
// their relative order; this is the persisted rotation point the next
// batch resumes from.
func (s *queueStore) Rotate(ctx context.Context, tx *db.DB, symbol string, entries []*core.QueueEntry) error {
	rank, err := s.nextRank(tx, symbol)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if err := tx.Update().Model(core.QueueEntry{}).
			Where("symbol = ? and position_id = ?", symbol, entry.PositionID).
			Update("rank", rank).Error; err != nil {
			return err
		}
		rank++
	}

	return nil
}

func (s *queueStore) nextRank(tx *db.DB, symbol string) (int64, error) {
	var entry core.QueueEntry
	query := tx.Update().
		Where("symbol = ?", symbol).
		Order("rank desc").
		First(&entry)
	if query.Error != nil {
		if query.RecordNotFound() {
			return 0, nil
		}
		return 0, query.Error
	}

	return entry.Rank + 1, nil
}
