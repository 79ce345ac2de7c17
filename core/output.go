package core

import (
	"context"
	"time"

	"loans/pkg/number"

	"github.com/fox-one/pkg/store/db"
)

// Output an incoming token transfer observed on the wire, carrying an
// optional {method, params} payload in its memo. Outputs are written by
// the chain sync boundary and consumed in order by the payee worker.
type Output struct {
	ID        uint64        `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	TraceID   string        `sql:"size:36;unique_index:output_trace_idx" json:"trace_id"`
	Sender    string        `sql:"size:64" json:"sender"`
	Symbol    string        `sql:"size:20" json:"symbol"`
	Amount    number.Amount `sql:"type:varchar(80);default:'0'" json:"amount"`
	Memo      string        `sql:"size:512" json:"memo"`
	CreatedAt time.Time     `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// OutputStore transfer output store interface
type OutputStore interface {
	Create(ctx context.Context, tx *db.DB, output *Output) error
	List(ctx context.Context, fromID uint64, limit int) ([]*Output, error)
}
