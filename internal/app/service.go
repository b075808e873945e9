package app

import (
	"context"

	"inventory-api/internal/core"
)

// ApplicationService is the single interface all adapters (HTTP, CLI) call.
// It decouples presentation from business logic; implementations contain no
// serialization or display logic of any kind.
type ApplicationService interface {
	// CheckReplenishment runs one replenishment engine sweep, optionally
	// scoped to a single destination location.
	CheckReplenishment(ctx context.Context, req CheckReplenishmentRequest) (*RunSummaryResult, error)

	// CreateTransfer creates a manual transfer request (status pending).
	CreateTransfer(ctx context.Context, req CreateTransferRequest) (*TransferResult, error)

	// ApproveTransfer transitions pending → approved.
	ApproveTransfer(ctx context.Context, transferID string) (*TransferResult, error)

	// DispatchTransfer transitions approved → in_transit, deducting source stock.
	DispatchTransfer(ctx context.Context, transferID string) (*TransferResult, error)

	// ReceiveTransfer transitions in_transit → completed, adding destination
	// stock with weighted-average cost blending.
	ReceiveTransfer(ctx context.Context, req ReceiveTransferRequest) (*TransferResult, error)

	// CancelTransfer transitions pending or approved → cancelled.
	CancelTransfer(ctx context.Context, transferID string) (*TransferResult, error)

	// GetTransfer returns a single transfer with its line items.
	GetTransfer(ctx context.Context, transferID string) (*TransferResult, error)

	// ListTransfers returns transfers matching the given filters.
	ListTransfers(ctx context.Context, filters core.TransferFilters) (*TransferListResult, error)

	// GetStockLevels returns current stock, optionally for one location.
	GetStockLevels(ctx context.Context, locationID *int) (*StockResult, error)

	// ReceiveStock records an external goods receipt.
	ReceiveStock(ctx context.Context, req ReceiveStockRequest) (*StockEntryResult, error)

	// AdjustStock applies a signed manual correction to a stock entry.
	AdjustStock(ctx context.Context, req AdjustStockRequest) (*StockEntryResult, error)

	// ListLocations returns all locations.
	ListLocations(ctx context.Context) (*LocationListResult, error)

	// CreateLocation registers a new warehouse or store.
	CreateLocation(ctx context.Context, req CreateLocationRequest) (*LocationResult, error)

	// ListProducts returns all active products.
	ListProducts(ctx context.Context) (*ProductListResult, error)

	// CreateProduct registers a new product with its threshold policy.
	CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductResult, error)
}
