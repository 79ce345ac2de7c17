package views

import (
	"loans/core"

	"github.com/shopspring/decimal"
)

// Asset asset view
type Asset struct {
	core.Asset
	Price     decimal.Decimal `json:"price"`
	Borrowers int64           `json:"borrowers"`
}

// Position position view
type Position struct {
	core.Position
	CollateralValue decimal.Decimal `json:"collateral_value"`
	DebtValue       decimal.Decimal `json:"debt_value"`
	Standing        string          `json:"standing"`
}
