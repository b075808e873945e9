package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockEntry is the per-(location, product) ledger row. Created lazily on
// first stock-in; zero-quantity rows persist.
type StockEntry struct {
	ID         int             `json:"id"`
	LocationID int             `json:"location_id"`
	ProductID  int             `json:"product_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"` // weighted average cost
	UpdatedAt  time.Time       `json:"updated_at"`
}

// StockLevel is a read view of a stock_entry joined with product and
// location info.
type StockLevel struct {
	LocationID    int             `json:"location_id"`
	LocationCode  string          `json:"location_code"`
	LocationName  string          `json:"location_name"`
	ProductID     int             `json:"product_id"`
	ProductCode   string          `json:"product_code"`
	ProductName   string          `json:"product_name"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	ReorderPoint  decimal.Decimal `json:"reorder_point"`
	MinStockLevel decimal.Decimal `json:"min_stock_level"`
	MaxStockLevel decimal.Decimal `json:"max_stock_level"`
}

type MovementType string

const (
	MovementReceipt     MovementType = "RECEIPT"
	MovementAdjustment  MovementType = "ADJUSTMENT"
	MovementTransferOut MovementType = "TRANSFER_OUT"
	MovementTransferIn  MovementType = "TRANSFER_IN"
)

// StockMovement is one audit row per stock mutation. Outbound movements
// carry negative quantities.
type StockMovement struct {
	ID           int             `json:"id"`
	StockEntryID int             `json:"stock_entry_id"`
	Type         MovementType    `json:"movement_type"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	TransferID   *int            `json:"transfer_id,omitempty"`
	MovementDate string          `json:"movement_date"`
	Notes        string          `json:"notes"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ReceiveStockInput records an external goods receipt into a location.
type ReceiveStockInput struct {
	LocationID int
	ProductID  int
	Quantity   decimal.Decimal
	UnitCost   decimal.Decimal
	Notes      string
}

// AdjustStockInput applies a signed correction to a stock entry.
type AdjustStockInput struct {
	LocationID int
	ProductID  int
	Delta      decimal.Decimal
	Notes      string
}
