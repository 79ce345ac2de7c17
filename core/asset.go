package core

import (
	"context"
	"time"

	"loans/pkg/number"

	"github.com/fox-one/pkg/store/db"
)

// Asset a registered collateral and/or borrowable token with
// registry-level accounting. badDebt and liquidationPool are mutated
// only by the engine's liquidation and bad-debt-retirement paths.
type Asset struct {
	ID      uint64 `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	Symbol  string `sql:"size:20;unique_index:symbol_idx" json:"symbol"`
	AssetID string `sql:"size:36" json:"asset_id"`

	IsCollateral bool `json:"is_collateral"`
	IsBorrowable bool `json:"is_borrowable"`
	Active       bool `json:"active"`
	// Dead is one way; once set the asset never becomes borrowable again.
	Dead bool `json:"dead"`

	TotalSupply     number.Amount `sql:"type:varchar(80);default:'0'" json:"total_supply"`
	BadDebt         number.Amount `sql:"type:varchar(80);default:'0'" json:"bad_debt"`
	LiquidationPool number.Amount `sql:"type:varchar(80);default:'0'" json:"liquidation_pool"`

	Version   int64     `sql:"default:0" json:"version"`
	CreatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// Borrowable reports whether new debt may be issued against the asset.
func (a *Asset) Borrowable() bool {
	return a.IsBorrowable && a.Active && !a.Dead
}

// AssetStore asset registry store interface
type AssetStore interface {
	Create(ctx context.Context, tx *db.DB, asset *Asset) error
	Find(ctx context.Context, symbol string) (*Asset, error)
	All(ctx context.Context) ([]*Asset, error)
	AllAsMap(ctx context.Context) (map[string]*Asset, error)
	Update(ctx context.Context, tx *db.DB, asset *Asset) error
}
