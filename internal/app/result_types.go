package app

import "inventory-api/internal/core"

// RunSummaryResult is returned by CheckReplenishment.
type RunSummaryResult struct {
	Summary *core.RunSummary
}

// TransferResult is returned by transfer lifecycle operations.
type TransferResult struct {
	Transfer *core.Transfer
}

// TransferListResult is returned by ListTransfers.
type TransferListResult struct {
	Transfers []core.Transfer
}

// StockResult is returned by GetStockLevels.
type StockResult struct {
	Levels []core.StockLevel
}

// StockEntryResult is returned by stock mutations.
type StockEntryResult struct {
	Entry *core.StockEntry
}

// LocationResult is returned by CreateLocation.
type LocationResult struct {
	Location *core.Location
}

// LocationListResult is returned by ListLocations.
type LocationListResult struct {
	Locations []core.Location
}

// ProductResult is returned by CreateProduct.
type ProductResult struct {
	Product *core.Product
}

// ProductListResult is returned by ListProducts.
type ProductListResult struct {
	Products []core.Product
}
