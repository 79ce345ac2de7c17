package event

import (
	"context"

	"loans/core"

	"github.com/fox-one/pkg/store/db"
)

type eventStore struct {
	db *db.DB
}

// New new event store
func New(db *db.DB) core.EventStore {
	return &eventStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Event{})
		if err := tx.AutoMigrate(core.Event{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *eventStore) Create(ctx context.Context, tx *db.DB, event *core.Event) error {
	return tx.Update().Create(event).Error
}

func (s *eventStore) List(ctx context.Context, fromID int64, limit int) ([]*core.Event, error) {
	var events []*core.Event
	if err := s.db.View().Where("id > ?", fromID).Order("id").Limit(limit).Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (s *eventStore) ListByType(ctx context.Context, eventType string, fromID int64, limit int) ([]*core.Event, error) {
	var events []*core.Event
	if err := s.db.View().
		Where("type = ? and id > ?", eventType, fromID).
		Order("id").Limit(limit).
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
