package output

import (
	"context"

	"loans/core"
	"loans/pkg/id"

	"github.com/fox-one/pkg/store/db"
)

type outputStore struct {
	db *db.DB
}

// New new output store
func New(db *db.DB) core.OutputStore {
	return &outputStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Output{})
		if err := tx.AutoMigrate(core.Output{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *outputStore) Create(ctx context.Context, tx *db.DB, output *core.Output) error {
	if output.TraceID == "" {
		output.TraceID = id.TraceIDFrom(output.Sender + output.Symbol + output.Memo + output.CreatedAt.String())
	}

	return tx.Update().Where("trace_id = ?", output.TraceID).FirstOrCreate(output).Error
}

func (s *outputStore) List(ctx context.Context, fromID uint64, limit int) ([]*core.Output, error) {
	var outputs []*core.Output
	if err := s.db.View().Where("id > ?", fromID).Order("id").Limit(limit).Find(&outputs).Error; err != nil {
		return nil, err
	}
	return outputs, nil
}
