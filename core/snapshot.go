package core

import (
	"context"
	"time"

	"loans/pkg/number"

	"github.com/fox-one/pkg/store/db"
	"github.com/lib/pq"
)

// Snapshot one per-day epoch record, recorded only while
// day < continuousRewardDay. Immutable once the next day's snapshot
// begins.
type Snapshot struct {
	ID  uint64 `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	Day int64  `sql:"unique_index:day_idx" json:"day"`

	TotalMiningDebt number.Amount `sql:"type:varchar(80);default:'0'" json:"total_mining_debt"`
	// NonzeroCount running count of open positions as of the start of
	// this day, after folding the previous day's transitions.
	NonzeroCount int64 `sql:"default:0" json:"nonzero_count"`

	AddNonzero    pq.Int64Array `sql:"type:text" json:"add_nonzero"`
	RemoveNonzero pq.Int64Array `sql:"type:text" json:"remove_nonzero"`

	CreatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// SnapshotBalance per-position historical debt, written whenever a debt
// balance changes during a pre-continuous day. Point-in-time queries
// resolve to the latest row at or before the requested day.
type SnapshotBalance struct {
	ID         uint64        `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	Day        int64         `sql:"index:day_position_idx" json:"day"`
	PositionID uint64        `sql:"index:day_position_idx" json:"position_id"`
	Symbol     string        `sql:"size:20" json:"symbol"`
	Debt       number.Amount `sql:"type:varchar(80);default:'0'" json:"debt"`
}

// SnapshotStore snapshot store interface. Day -1 means latest.
type SnapshotStore interface {
	Create(ctx context.Context, tx *db.DB, snapshot *Snapshot) error
	Find(ctx context.Context, day int64) (*Snapshot, error)
	Update(ctx context.Context, tx *db.DB, snapshot *Snapshot) error
	All(ctx context.Context) ([]*Snapshot, error)

	SaveBalance(ctx context.Context, tx *db.DB, balance *SnapshotBalance) error
	// BalanceAt historical debt for (position, symbol) as of day.
	BalanceAt(ctx context.Context, day int64, positionID uint64, symbol string) (number.Amount, error)
}
