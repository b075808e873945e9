package app

import (
	"context"

	"inventory-api/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
)

type appService struct {
	pool          *pgxpool.Pool
	locations     core.LocationService
	stock         core.StockService
	transfers     core.TransferService
	replenishment core.ReplenishmentService
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(
	pool *pgxpool.Pool,
	locations core.LocationService,
	stock core.StockService,
	transfers core.TransferService,
	replenishment core.ReplenishmentService,
) ApplicationService {
	return &appService{
		pool:          pool,
		locations:     locations,
		stock:         stock,
		transfers:     transfers,
		replenishment: replenishment,
	}
}

func (s *appService) CheckReplenishment(ctx context.Context, req CheckReplenishmentRequest) (*RunSummaryResult, error) {
	summary, err := s.replenishment.CheckAndCreateTransfers(ctx, core.ReplenishScope{
		LocationID:  req.LocationID,
		TriggerType: req.TriggerType,
		ForceCheck:  req.ForceCheck,
	})
	if err != nil {
		return nil, err
	}
	return &RunSummaryResult{Summary: summary}, nil
}

func (s *appService) CreateTransfer(ctx context.Context, req CreateTransferRequest) (*TransferResult, error) {
	items := make([]core.TransferItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, core.TransferItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	transfer, err := s.transfers.CreateTransfer(ctx, core.CreateTransferInput{
		FromLocationID: req.FromLocationID,
		ToLocationID:   req.ToLocationID,
		CreatedBy:      req.CreatedBy,
		RequestType:    core.RequestType(req.RequestType),
		Notes:          req.Notes,
		Items:          items,
	})
	if err != nil {
		return nil, err
	}
	return &TransferResult{Transfer: transfer}, nil
}

func (s *appService) ApproveTransfer(ctx context.Context, transferID string) (*TransferResult, error) {
	transfer, err := s.transfers.ApproveTransfer(ctx, transferID)
	if err != nil {
		return nil, err
	}
	return &TransferResult{Transfer: transfer}, nil
}

func (s *appService) DispatchTransfer(ctx context.Context, transferID string) (*TransferResult, error) {
	transfer, err := s.transfers.DispatchTransfer(ctx, transferID)
	if err != nil {
		return nil, err
	}
	return &TransferResult{Transfer: transfer}, nil
}

func (s *appService) ReceiveTransfer(ctx context.Context, req ReceiveTransferRequest) (*TransferResult, error) {
	received := make([]core.ReceivedItem, 0, len(req.ReceivedItems))
	for _, item := range req.ReceivedItems {
		received = append(received, core.ReceivedItem{
			ProductID:        item.ProductID,
			QuantityReceived: item.ReceivedQuantity,
		})
	}

	transfer, err := s.transfers.ReceiveTransfer(ctx, req.TransferID, received)
	if err != nil {
		return nil, err
	}
	return &TransferResult{Transfer: transfer}, nil
}

func (s *appService) CancelTransfer(ctx context.Context, transferID string) (*TransferResult, error) {
	transfer, err := s.transfers.CancelTransfer(ctx, transferID)
	if err != nil {
		return nil, err
	}
	return &TransferResult{Transfer: transfer}, nil
}

func (s *appService) GetTransfer(ctx context.Context, transferID string) (*TransferResult, error) {
	transfer, err := s.transfers.GetTransfer(ctx, transferID)
	if err != nil {
		return nil, err
	}
	return &TransferResult{Transfer: transfer}, nil
}

func (s *appService) ListTransfers(ctx context.Context, filters core.TransferFilters) (*TransferListResult, error) {
	transfers, err := s.transfers.GetTransfers(ctx, filters)
	if err != nil {
		return nil, err
	}
	return &TransferListResult{Transfers: transfers}, nil
}

func (s *appService) GetStockLevels(ctx context.Context, locationID *int) (*StockResult, error) {
	levels, err := s.stock.GetStockLevels(ctx, locationID)
	if err != nil {
		return nil, err
	}
	return &StockResult{Levels: levels}, nil
}

func (s *appService) ReceiveStock(ctx context.Context, req ReceiveStockRequest) (*StockEntryResult, error) {
	entry, err := s.stock.ReceiveStock(ctx, core.ReceiveStockInput{
		LocationID: req.LocationID,
		ProductID:  req.ProductID,
		Quantity:   req.Quantity,
		UnitCost:   req.UnitCost,
		Notes:      req.Notes,
	})
	if err != nil {
		return nil, err
	}
	return &StockEntryResult{Entry: entry}, nil
}

func (s *appService) AdjustStock(ctx context.Context, req AdjustStockRequest) (*StockEntryResult, error) {
	entry, err := s.stock.AdjustStock(ctx, core.AdjustStockInput{
		LocationID: req.LocationID,
		ProductID:  req.ProductID,
		Delta:      req.Delta,
		Notes:      req.Notes,
	})
	if err != nil {
		return nil, err
	}
	return &StockEntryResult{Entry: entry}, nil
}

func (s *appService) ListLocations(ctx context.Context) (*LocationListResult, error) {
	locations, err := s.locations.GetLocations(ctx)
	if err != nil {
		return nil, err
	}
	return &LocationListResult{Locations: locations}, nil
}

func (s *appService) CreateLocation(ctx context.Context, req CreateLocationRequest) (*LocationResult, error) {
	location, err := s.locations.CreateLocation(ctx, req.Code, req.Name,
		core.LocationType(req.Type), req.IsMain, req.ManagerID)
	if err != nil {
		return nil, err
	}
	return &LocationResult{Location: location}, nil
}

func (s *appService) ListProducts(ctx context.Context) (*ProductListResult, error) {
	products, err := s.locations.GetProducts(ctx)
	if err != nil {
		return nil, err
	}
	return &ProductListResult{Products: products}, nil
}

func (s *appService) CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductResult, error) {
	product, err := s.locations.CreateProduct(ctx, req.Code, req.Name, req.Description,
		req.UnitPrice, req.ReorderPoint, req.MinStockLevel, req.MaxStockLevel)
	if err != nil {
		return nil, err
	}
	return &ProductResult{Product: product}, nil
}
