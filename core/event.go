package core

import (
	"context"
	"encoding/json"
	"time"

	"loans/pkg/number"

	"github.com/fox-one/pkg/store/db"
	"github.com/jmoiron/sqlx/types"
)

// event kinds, reproduced field for field in the audit log
const (
	EventAssetAdded     = "AssetAdded"
	EventAssetToggled   = "AssetToggled"
	EventOriginateLoan  = "OriginateLoan"
	EventCollateral     = "CollateralReceived"
	EventLoanRepaid     = "LoanRepaid"
	EventWithdraw       = "CollateralWithdrawn"
	EventLiquidate      = "Liquidate"
	EventBadDebtRetired = "BadDebtRetired"
	EventRebalance      = "Rebalance"
	EventSnapshot       = "Snapshot"
	EventParameter      = "ParameterSet"
)

// EventExtra extra data attached to an audit event
type EventExtra map[string]interface{}

// NewEventExtra new event extra instance
func NewEventExtra() EventExtra {
	return make(EventExtra)
}

// Put put data
func (e EventExtra) Put(key string, value interface{}) {
	e[key] = value
}

// Format format as []byte
func (e EventExtra) Format() []byte {
	bs, err := json.Marshal(e)
	if err != nil {
		return []byte("{}")
	}
	return bs
}

// Event append-only audit record emitted by every state-changing
// operation; the system's durable external record.
type Event struct {
	ID      int64         `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	TraceID string        `sql:"size:36;index:trace_idx" json:"trace_id"`
	Type    string        `sql:"size:32;index:type_idx" json:"type"`
	Actor   string        `sql:"size:64;index:actor_idx" json:"actor"`
	Symbol  string        `sql:"size:20" json:"symbol"`
	Amount  number.Amount `sql:"type:varchar(80);default:'0'" json:"amount"`
	Note    string        `sql:"size:255" json:"note"`

	Data      types.JSONText `sql:"type:TEXT" json:"data,omitempty"`
	CreatedAt time.Time      `sql:"default:CURRENT_TIMESTAMP;index:created_idx" json:"created_at"`
}

// SetExtra attach extra data
func (e *Event) SetExtra(extra EventExtra) {
	data := []byte("{}")
	if extra != nil {
		data = extra.Format()
	}
	e.Data = data
}

// EventStore audit event store interface
type EventStore interface {
	Create(ctx context.Context, tx *db.DB, event *Event) error
	List(ctx context.Context, fromID int64, limit int) ([]*Event, error)
	ListByType(ctx context.Context, eventType string, fromID int64, limit int) ([]*Event, error)
}
