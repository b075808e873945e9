package core

import (
	"time"

	"github.com/shopspring/decimal"
)

type LocationType string

const (
	LocationWarehouse LocationType = "warehouse"
	LocationStore     LocationType = "store"
)

// Location is a stock-holding site: the main warehouse, a sub-warehouse,
// or a retail store.
type Location struct {
	ID        int          `json:"id"`
	Code      string       `json:"code"`
	Name      string       `json:"name"`
	Type      LocationType `json:"location_type"`
	IsMain    bool         `json:"is_main"`
	IsActive  bool         `json:"is_active"`
	ManagerID *int         `json:"manager_id,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// Product carries the per-product threshold policy read by the
// replenishment engine.
type Product struct {
	ID            int             `json:"id"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	ReorderPoint  decimal.Decimal `json:"reorder_point"`
	MinStockLevel decimal.Decimal `json:"min_stock_level"`
	MaxStockLevel decimal.Decimal `json:"max_stock_level"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
}

type User struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
