package core

import (
	"context"
	"time"

	"loans/pkg/number"

	"github.com/fox-one/pkg/store/db"
)

// QueueEntry one borrower in a per-asset rotating queue. Rank is
// monotonic per symbol; batch selection reads in rank order and a
// committed rotation reassigns ranks past the tail, so the rotation
// point survives across transactions and every borrower is eventually
// selected.
type QueueEntry struct {
	ID         uint64        `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	Symbol     string        `sql:"size:20;unique_index:symbol_position_idx;index:symbol_rank_idx" json:"symbol"`
	PositionID uint64        `sql:"unique_index:symbol_position_idx" json:"position_id"`
	Debt       number.Amount `sql:"type:varchar(80);default:'0'" json:"debt"`
	Rank       int64         `sql:"index:symbol_rank_idx" json:"rank"`
	CreatedAt  time.Time     `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// QueueStore borrower queue store interface
type QueueStore interface {
	Add(ctx context.Context, tx *db.DB, symbol string, positionID uint64, debt number.Amount) error
	Remove(ctx context.Context, tx *db.DB, symbol string, positionID uint64) error
	UpdateDebt(ctx context.Context, tx *db.DB, symbol string, positionID uint64, debt number.Amount) error
	Size(ctx context.Context, symbol string) (int64, error)
	// PeekBatch returns up to n entries in rank order without mutating
	// the order; the caller commits the rotation separately.
	PeekBatch(ctx context.Context, symbol string, n int) ([]*QueueEntry, error)
	// Rotate moves the given entries behind the current tail, keeping
	// their relative order.
	Rotate(ctx context.Context, tx *db.DB, symbol string, entries []*QueueEntry) error
}
