package app

import "github.com/shopspring/decimal"

// CheckReplenishmentRequest triggers one engine sweep.
type CheckReplenishmentRequest struct {
	LocationID  *int   `json:"location_id,omitempty"`
	TriggerType string `json:"trigger_type,omitempty"`
	ForceCheck  bool   `json:"force_check,omitempty"`
}

// TransferItemRequest is one requested line on a new transfer.
type TransferItemRequest struct {
	ProductID int             `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// CreateTransferRequest creates a manual transfer request.
type CreateTransferRequest struct {
	FromLocationID int                   `json:"from_location"`
	ToLocationID   int                   `json:"to_location"`
	CreatedBy      int                   `json:"created_by"`
	RequestType    string                `json:"request_type,omitempty"`
	Notes          string                `json:"notes,omitempty"`
	Items          []TransferItemRequest `json:"items"`
}

// ReceivedItemRequest overrides the received quantity for one line.
type ReceivedItemRequest struct {
	ProductID        int             `json:"product_id"`
	ReceivedQuantity decimal.Decimal `json:"received_quantity"`
}

// ReceiveTransferRequest completes an in-transit transfer. Items without an
// override receive their full requested quantity.
type ReceiveTransferRequest struct {
	TransferID    string                `json:"transfer_id"`
	ReceivedItems []ReceivedItemRequest `json:"received_items,omitempty"`
}

// ReceiveStockRequest records an external goods receipt.
type ReceiveStockRequest struct {
	LocationID int             `json:"location_id"`
	ProductID  int             `json:"product_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	Notes      string          `json:"notes,omitempty"`
}

// AdjustStockRequest applies a signed correction to a stock entry.
type AdjustStockRequest struct {
	LocationID int             `json:"location_id"`
	ProductID  int             `json:"product_id"`
	Delta      decimal.Decimal `json:"delta"`
	Notes      string          `json:"notes,omitempty"`
}

// CreateLocationRequest registers a warehouse or store.
type CreateLocationRequest struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	Type      string `json:"location_type"`
	IsMain    bool   `json:"is_main,omitempty"`
	ManagerID *int   `json:"manager_id,omitempty"`
}

// CreateProductRequest registers a product with its threshold policy.
type CreateProductRequest struct {
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	ReorderPoint  decimal.Decimal `json:"reorder_point"`
	MinStockLevel decimal.Decimal `json:"min_stock_level"`
	MaxStockLevel decimal.Decimal `json:"max_stock_level"`
}
