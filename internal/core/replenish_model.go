package core

import (
	"github.com/shopspring/decimal"
)

// DestinationClass selects the replenishment constants for a destination.
// Sub-warehouses are topped up higher and moved in larger batches than
// stores; both run the same algorithm.
type DestinationClass string

const (
	ClassSubWarehouse DestinationClass = "sub_warehouse"
	ClassStore        DestinationClass = "store"
)

// ClassParams are the class-specific replenishment constants.
type ClassParams struct {
	// TargetCeiling is the default top-up level for a product.
	TargetCeiling decimal.Decimal
	// TargetMaxFraction scales the target down when the product's
	// max_stock_level is below the ceiling.
	TargetMaxFraction decimal.Decimal
	// ReorderBuffer lifts the target to reorder_point + buffer when the
	// scaled target would not clear the reorder point.
	ReorderBuffer decimal.Decimal
	// MinTransferQty is the minimum efficient transfer size.
	MinTransferQty decimal.Decimal
	// SourceReserveFloor and SourceReserveFraction size the safety buffer
	// held back at the main location: max(floor, min_stock_level * fraction).
	SourceReserveFloor    decimal.Decimal
	SourceReserveFraction decimal.Decimal
}

var classParams = map[DestinationClass]ClassParams{
	ClassSubWarehouse: {
		TargetCeiling:         decimal.NewFromInt(150),
		TargetMaxFraction:     decimal.NewFromFloat(0.80),
		ReorderBuffer:         decimal.NewFromInt(25),
		MinTransferQty:        decimal.NewFromInt(15),
		SourceReserveFloor:    decimal.NewFromInt(50),
		SourceReserveFraction: decimal.NewFromFloat(0.50),
	},
	ClassStore: {
		TargetCeiling:         decimal.NewFromInt(100),
		TargetMaxFraction:     decimal.NewFromFloat(0.75),
		ReorderBuffer:         decimal.NewFromInt(15),
		MinTransferQty:        decimal.NewFromInt(10),
		SourceReserveFloor:    decimal.NewFromInt(50),
		SourceReserveFraction: decimal.NewFromFloat(0.50),
	},
}

// ParamsForClass returns the replenishment constants for a destination class.
func ParamsForClass(class DestinationClass) ClassParams {
	return classParams[class]
}

// ClassForLocation maps a destination location to its class.
func ClassForLocation(t LocationType) DestinationClass {
	if t == LocationStore {
		return ClassStore
	}
	return ClassSubWarehouse
}

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityLow      Severity = "low"
)

type ItemAction string

const (
	ActionTransfer        ItemAction = "transfer"
	ActionPartialTransfer ItemAction = "partial_transfer"
	ActionSkipped         ItemAction = "skipped"
	ActionInsufficient    ItemAction = "insufficient"
)

// ThresholdSnapshot is the per-product view the engine decides on, computed
// fresh each run and never cached.
type ThresholdSnapshot struct {
	ProductID       int
	ProductCode     string
	ProductName     string
	Quantity        decimal.Decimal
	ReorderPoint    decimal.Decimal
	MinStockLevel   decimal.Decimal
	MaxStockLevel   decimal.Decimal
	MainQuantity    decimal.Decimal
	PendingQuantity decimal.Decimal // summed requested qty of non-terminal transfers
	OpenTransfers   int             // count of non-terminal transfers
}

// ItemDecision is one per-(destination, product) engine decision.
type ItemDecision struct {
	ProductID   int             `json:"product_id"`
	ProductCode string          `json:"product_code"`
	Severity    Severity        `json:"severity"`
	Action      ItemAction      `json:"action"`
	Quantity    decimal.Decimal `json:"quantity"`
	Reason      string          `json:"reason,omitempty"`
}

// DestinationResult aggregates one destination's decisions.
type DestinationResult struct {
	LocationID   int              `json:"location_id"`
	LocationCode string           `json:"location_code"`
	Class        DestinationClass `json:"class"`
	TransferID   string           `json:"transfer_id,omitempty"`
	Decisions    []ItemDecision   `json:"decisions"`
}

// RunSummary is the result of one engine sweep.
type RunSummary struct {
	TriggerType      string              `json:"trigger_type"`
	ForceCheck       bool                `json:"force_check"`
	ProductsChecked  int                 `json:"products_checked"`
	CriticalCount    int                 `json:"critical_stock_items"`
	LowCount         int                 `json:"low_stock_items"`
	TransfersCreated int                 `json:"transfers_created"`
	TransfersSkipped int                 `json:"transfers_skipped"`
	Destinations     []DestinationResult `json:"destinations"`
	Warnings         []string            `json:"warnings,omitempty"`
	Errors           []string            `json:"errors,omitempty"`
	Message          string              `json:"message"`
}

// ReplenishScope optionally restricts a run to one destination.
type ReplenishScope struct {
	LocationID  *int
	TriggerType string
	ForceCheck  bool
}
