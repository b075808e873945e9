package core

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransferStatus string

const (
	TransferPending   TransferStatus = "pending"
	TransferApproved  TransferStatus = "approved"
	TransferInTransit TransferStatus = "in_transit"
	TransferCompleted TransferStatus = "completed"
	TransferCancelled TransferStatus = "cancelled"
)

// IsTerminal reports whether no further transition is legal from s.
func (s TransferStatus) IsTerminal() bool {
	return s == TransferCompleted || s == TransferCancelled
}

type RequestType string

const (
	RequestManual  RequestType = "manual"
	RequestAutoROP RequestType = "auto_rop"
)

// Transfer is one batch stock movement between exactly two locations.
// Terminal rows are retained for audit, never deleted.
type Transfer struct {
	ID               int            `json:"id"`
	TransferID       string         `json:"transfer_id"`
	FromLocationID   int            `json:"from_location_id"`
	FromLocationCode string         `json:"from_location_code"`
	ToLocationID     int            `json:"to_location_id"`
	ToLocationCode   string         `json:"to_location_code"`
	Status           TransferStatus `json:"status"`
	RequestType      RequestType    `json:"request_type"`
	TriggerType      string         `json:"trigger_type,omitempty"`
	CreatedBy        int            `json:"created_by"`
	CreatedByName    string         `json:"created_by_name"`
	Notes            string         `json:"notes,omitempty"`
	RequestedDate    time.Time      `json:"requested_date"`
	ApprovedDate     *time.Time     `json:"approved_date,omitempty"`
	DispatchedDate   *time.Time     `json:"dispatched_date,omitempty"`
	ReceivedDate     *time.Time     `json:"received_date,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	Items            []TransferItem `json:"items"`
}

// TransferItem is one product line on a transfer. Line identity is fixed at
// creation; only QuantityReceived mutates (at receipt).
type TransferItem struct {
	ID                int              `json:"id"`
	TransferID        int              `json:"-"`
	LineNumber        int              `json:"line_number"`
	ProductID         int              `json:"product_id"`
	ProductCode       string           `json:"product_code"`
	ProductName       string           `json:"product_name"`
	QuantityRequested decimal.Decimal  `json:"quantity_requested"`
	QuantityReceived  *decimal.Decimal `json:"quantity_received,omitempty"`
	UnitPrice         decimal.Decimal  `json:"unit_price"`
}

// TransferItemInput is one requested line on a new transfer.
type TransferItemInput struct {
	ProductID int             `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// CreateTransferInput carries everything needed to create a transfer request.
type CreateTransferInput struct {
	FromLocationID int
	ToLocationID   int
	CreatedBy      int
	RequestType    RequestType
	TriggerType    string
	Notes          string
	Items          []TransferItemInput
}

// ReceivedItem overrides the received quantity for one line at receipt.
// Lines without an override receive the full requested quantity.
type ReceivedItem struct {
	ProductID        int             `json:"product_id"`
	QuantityReceived decimal.Decimal `json:"received_quantity"`
}

// TransferFilters narrows GetTransfers.
type TransferFilters struct {
	Status         string
	FromLocationID int
	ToLocationID   int
	RequestType    string
}
