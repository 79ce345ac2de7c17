package core

import (
	"context"
	"time"

	"loans/pkg/number"

	"github.com/fox-one/pkg/store/db"
)

// Position a user's per-asset balance sheet. The id is assigned
// monotonically, never reused, and bound 1:1 to the owner address; a
// position is never deleted, only zeroed, so historical snapshot
// lookups by id always resolve.
type Position struct {
	ID        uint64    `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	Address   string    `sql:"size:64;unique_index:address_idx" json:"address"`
	Version   int64     `sql:"default:0" json:"version"`
	CreatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Balances symbol -> amount; collateral symbols hold collateral
	// quantity, borrowable symbols hold outstanding debt quantity.
	Balances map[string]number.Amount `sql:"-" json:"balances"`
}

// Balance balance for symbol, zero if absent
func (p *Position) Balance(symbol string) number.Amount {
	if p.Balances == nil {
		return number.Zero
	}
	return p.Balances[symbol]
}

// Open reports whether the position holds any collateral or debt.
func (p *Position) Open() bool {
	for _, v := range p.Balances {
		if !v.IsZero() {
			return true
		}
	}
	return false
}

// PositionBalance one (position, symbol) row of the ledger
type PositionBalance struct {
	ID         uint64        `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	PositionID uint64        `sql:"unique_index:position_symbol_idx" json:"position_id"`
	Symbol     string        `sql:"size:20;unique_index:position_symbol_idx" json:"symbol"`
	Amount     number.Amount `sql:"type:varchar(80);default:'0'" json:"amount"`
	UpdatedAt  time.Time     `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// PositionService valuation and health of positions
type PositionService interface {
	// CollateralValue Σ over collateral symbols of balance×price/EXA.
	CollateralValue(ctx context.Context, position *Position) (number.Amount, error)
	// DebtValue Σ over borrowable symbols of balance×price/EXA; debt of
	// dead assets is included only when includeDead is set.
	DebtValue(ctx context.Context, position *Position, includeDead bool) (number.Amount, error)
	// DebtValueAt historical debt value as of a snapshot day; fails for
	// days at or after the continuous reward day.
	DebtValueAt(ctx context.Context, position *Position, day int64) (number.Amount, error)
	HasDebt(ctx context.Context, position *Position) (bool, error)
	Standing(ctx context.Context, position *Position) (Standing, error)
}

// PositionStore position ledger store interface
type PositionStore interface {
	// GetOrCreate lazily creates the position on first touch.
	GetOrCreate(ctx context.Context, address string) (*Position, error)
	Find(ctx context.Context, id uint64) (*Position, error)
	FindByAddress(ctx context.Context, address string) (*Position, error)
	// SetBalance fails if amount would be stored negative; zero is kept
	// as an explicit row so the id's history stays queryable.
	SetBalance(ctx context.Context, tx *db.DB, positionID uint64, symbol string, amount number.Amount) error
	List(ctx context.Context, fromID uint64, limit int) ([]*Position, error)
	Count(ctx context.Context) (int64, error)
}
