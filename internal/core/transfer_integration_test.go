package core_test

import (
	"context"
	"errors"
	"testing"

	"inventory-api/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

func newTransferService(pool *pgxpool.Pool) core.TransferService {
	return core.NewTransferService(pool, core.NewStockService(pool))
}

func TestTransferLifecycle(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	transfers := newTransferService(pool)
	stock := core.NewStockService(pool)
	ctx := context.Background()

	seedStock(t, pool, mainLocationID, beansProductID, 100, 5)

	// 1. Create: starts pending, captures the source unit cost on the line.
	transfer, err := transfers.CreateTransfer(ctx, core.CreateTransferInput{
		FromLocationID: mainLocationID,
		ToLocationID:   subLocationID,
		CreatedBy:      adminUserID,
		Items: []core.TransferItemInput{
			{ProductID: beansProductID, Quantity: decimal.NewFromInt(40)},
		},
	})
	if err != nil {
		t.Fatalf("CreateTransfer failed: %v", err)
	}
	if transfer.Status != core.TransferPending {
		t.Fatalf("New transfer status = %s, want pending", transfer.Status)
	}
	if transfer.TransferID == "" {
		t.Fatal("New transfer has no transfer_id")
	}
	if transfer.RequestType != core.RequestManual {
		t.Errorf("Default request type = %s, want manual", transfer.RequestType)
	}
	if len(transfer.Items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(transfer.Items))
	}
	if !transfer.Items[0].UnitPrice.Equal(decimal.NewFromInt(5)) {
		t.Errorf("Line unit price = %s, want 5 (source unit cost)", transfer.Items[0].UnitPrice)
	}

	// 2. Approve.
	transfer, err = transfers.ApproveTransfer(ctx, transfer.TransferID)
	if err != nil {
		t.Fatalf("ApproveTransfer failed: %v", err)
	}
	if transfer.Status != core.TransferApproved {
		t.Fatalf("Status after approval = %s, want approved", transfer.Status)
	}
	if transfer.ApprovedDate == nil {
		t.Error("ApprovedDate not stamped on approval")
	}

	// 3. Dispatch: source decremented, destination untouched.
	transfer, err = transfers.DispatchTransfer(ctx, transfer.TransferID)
	if err != nil {
		t.Fatalf("DispatchTransfer failed: %v", err)
	}
	if transfer.Status != core.TransferInTransit {
		t.Fatalf("Status after dispatch = %s, want in_transit", transfer.Status)
	}

	source, err := stock.GetStockEntry(ctx, mainLocationID, beansProductID)
	if err != nil {
		t.Fatalf("Failed to read source entry: %v", err)
	}
	if !source.Quantity.Equal(decimal.NewFromInt(60)) {
		t.Errorf("Source quantity after dispatch = %s, want 60", source.Quantity)
	}
	if _, err := stock.GetStockEntry(ctx, subLocationID, beansProductID); err == nil {
		t.Error("Destination entry exists before receipt")
	}

	// 4. Receive in full: destination credited at the line price.
	transfer, err = transfers.ReceiveTransfer(ctx, transfer.TransferID, nil)
	if err != nil {
		t.Fatalf("ReceiveTransfer failed: %v", err)
	}
	if transfer.Status != core.TransferCompleted {
		t.Fatalf("Status after receipt = %s, want completed", transfer.Status)
	}
	if transfer.ReceivedDate == nil {
		t.Error("ReceivedDate not stamped on receipt")
	}
	if transfer.Items[0].QuantityReceived == nil || !transfer.Items[0].QuantityReceived.Equal(decimal.NewFromInt(40)) {
		t.Errorf("QuantityReceived = %v, want 40", transfer.Items[0].QuantityReceived)
	}

	dest, err := stock.GetStockEntry(ctx, subLocationID, beansProductID)
	if err != nil {
		t.Fatalf("Failed to read destination entry: %v", err)
	}
	if !dest.Quantity.Equal(decimal.NewFromInt(40)) {
		t.Errorf("Destination quantity = %s, want 40", dest.Quantity)
	}
	if !dest.UnitCost.Equal(decimal.NewFromInt(5)) {
		t.Errorf("Destination unit cost = %s, want 5", dest.UnitCost)
	}

	// Audit trail: one outbound and one inbound movement tied to the transfer.
	var out, in int
	err = pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE movement_type = 'TRANSFER_OUT'),
			COUNT(*) FILTER (WHERE movement_type = 'TRANSFER_IN')
		FROM stock_movements WHERE transfer_id = $1`,
		transfer.ID,
	).Scan(&out, &in)
	if err != nil {
		t.Fatalf("Failed to count movements: %v", err)
	}
	if out != 1 || in != 1 {
		t.Errorf("Movements for transfer: out=%d in=%d, want 1 and 1", out, in)
	}
}

func TestTransferStateMachineClosure(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	transfers := newTransferService(pool)
	ctx := context.Background()

	seedStock(t, pool, mainLocationID, beansProductID, 100, 5)

	create := func() string {
		t.Helper()
		transfer, err := transfers.CreateTransfer(ctx, core.CreateTransferInput{
			FromLocationID: mainLocationID,
			ToLocationID:   subLocationID,
			CreatedBy:      adminUserID,
			Items: []core.TransferItemInput{
				{ProductID: beansProductID, Quantity: decimal.NewFromInt(10)},
			},
		})
		if err != nil {
			t.Fatalf("CreateTransfer failed: %v", err)
		}
		return transfer.TransferID
	}

	expectStateError := func(op string, err error) {
		t.Helper()
		var state *core.StateError
		if !errors.As(err, &state) {
			t.Errorf("%s: expected StateError, got %v", op, err)
		}
	}

	// pending: dispatch and receive are illegal.
	id := create()
	_, err := transfers.DispatchTransfer(ctx, id)
	expectStateError("dispatch pending", err)
	_, err = transfers.ReceiveTransfer(ctx, id, nil)
	expectStateError("receive pending", err)

	// approved: approve again and receive are illegal.
	if _, err := transfers.ApproveTransfer(ctx, id); err != nil {
		t.Fatalf("ApproveTransfer failed: %v", err)
	}
	_, err = transfers.ApproveTransfer(ctx, id)
	expectStateError("approve approved", err)
	_, err = transfers.ReceiveTransfer(ctx, id, nil)
	expectStateError("receive approved", err)

	// in_transit: cancel and approve are illegal.
	if _, err := transfers.DispatchTransfer(ctx, id); err != nil {
		t.Fatalf("DispatchTransfer failed: %v", err)
	}
	_, err = transfers.CancelTransfer(ctx, id)
	expectStateError("cancel in_transit", err)
	_, err = transfers.ApproveTransfer(ctx, id)
	expectStateError("approve in_transit", err)

	// completed is terminal.
	if _, err := transfers.ReceiveTransfer(ctx, id, nil); err != nil {
		t.Fatalf("ReceiveTransfer failed: %v", err)
	}
	_, err = transfers.CancelTransfer(ctx, id)
	expectStateError("cancel completed", err)
	_, err = transfers.DispatchTransfer(ctx, id)
	expectStateError("dispatch completed", err)

	// cancelled is terminal.
	id = create()
	if _, err := transfers.CancelTransfer(ctx, id); err != nil {
		t.Fatalf("CancelTransfer failed: %v", err)
	}
	_, err = transfers.ApproveTransfer(ctx, id)
	expectStateError("approve cancelled", err)
}

func TestTransferCancelLeavesStockUntouched(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	transfers := newTransferService(pool)
	stock := core.NewStockService(pool)
	ctx := context.Background()

	seedStock(t, pool, mainLocationID, beansProductID, 100, 5)

	transfer, err := transfers.CreateTransfer(ctx, core.CreateTransferInput{
		FromLocationID: mainLocationID,
		ToLocationID:   subLocationID,
		CreatedBy:      adminUserID,
		Items: []core.TransferItemInput{
			{ProductID: beansProductID, Quantity: decimal.NewFromInt(40)},
		},
	})
	if err != nil {
		t.Fatalf("CreateTransfer failed: %v", err)
	}

	cancelled, err := transfers.CancelTransfer(ctx, transfer.TransferID)
	if err != nil {
		t.Fatalf("CancelTransfer failed: %v", err)
	}
	if cancelled.Status != core.TransferCancelled {
		t.Fatalf("Status = %s, want cancelled", cancelled.Status)
	}

	source, err := stock.GetStockEntry(ctx, mainLocationID, beansProductID)
	if err != nil {
		t.Fatalf("Failed to read source entry: %v", err)
	}
	if !source.Quantity.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Source quantity after cancel = %s, want 100", source.Quantity)
	}
	if _, err := stock.GetStockEntry(ctx, subLocationID, beansProductID); err == nil {
		t.Error("Destination entry created by a cancelled transfer")
	}

	var movements int
	if err := pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM stock_movements WHERE transfer_id = $1", cancelled.ID,
	).Scan(&movements); err != nil {
		t.Fatalf("Failed to count movements: %v", err)
	}
	if movements != 0 {
		t.Errorf("Cancelled transfer wrote %d movements, want 0", movements)
	}
}

func TestTransferDispatchRevalidatesStock(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	transfers := newTransferService(pool)
	stock := core.NewStockService(pool)
	ctx := context.Background()

	seedStock(t, pool, mainLocationID, beansProductID, 50, 5)

	transfer, err := transfers.CreateTransfer(ctx, core.CreateTransferInput{
		FromLocationID: mainLocationID,
		ToLocationID:   subLocationID,
		CreatedBy:      adminUserID,
		Items: []core.TransferItemInput{
			{ProductID: beansProductID, Quantity: decimal.NewFromInt(40)},
		},
	})
	if err != nil {
		t.Fatalf("CreateTransfer failed: %v", err)
	}
	if _, err := transfers.ApproveTransfer(ctx, transfer.TransferID); err != nil {
		t.Fatalf("ApproveTransfer failed: %v", err)
	}

	// Stock moves out from under the approved transfer.
	if _, err := stock.AdjustStock(ctx, core.AdjustStockInput{
		LocationID: mainLocationID,
		ProductID:  beansProductID,
		Delta:      decimal.NewFromInt(-30),
	}); err != nil {
		t.Fatalf("AdjustStock failed: %v", err)
	}

	_, err = transfers.DispatchTransfer(ctx, transfer.TransferID)
	var insufficient *core.InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("Expected InsufficientStockError at dispatch, got %v", err)
	}

	// The failed dispatch must roll back cleanly: still approved, stock intact.
	after, err := transfers.GetTransfer(ctx, transfer.TransferID)
	if err != nil {
		t.Fatalf("GetTransfer failed: %v", err)
	}
	if after.Status != core.TransferApproved {
		t.Errorf("Status after failed dispatch = %s, want approved", after.Status)
	}
	source, err := stock.GetStockEntry(ctx, mainLocationID, beansProductID)
	if err != nil {
		t.Fatalf("Failed to read source entry: %v", err)
	}
	if !source.Quantity.Equal(decimal.NewFromInt(20)) {
		t.Errorf("Source quantity = %s, want 20", source.Quantity)
	}
}

func TestTransferAutoROPIsAutoApproved(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	transfers := newTransferService(pool)
	ctx := context.Background()

	seedStock(t, pool, mainLocationID, beansProductID, 100, 5)

	transfer, err := transfers.CreateTransfer(ctx, core.CreateTransferInput{
		FromLocationID: mainLocationID,
		ToLocationID:   subLocationID,
		CreatedBy:      adminUserID,
		RequestType:    core.RequestAutoROP,
		TriggerType:    "scheduled",
		Items: []core.TransferItemInput{
			{ProductID: beansProductID, Quantity: decimal.NewFromInt(40)},
		},
	})
	if err != nil {
		t.Fatalf("CreateTransfer failed: %v", err)
	}
	if transfer.Status != core.TransferApproved {
		t.Errorf("Auto transfer status = %s, want approved", transfer.Status)
	}
	if transfer.ApprovedDate == nil {
		t.Error("Auto transfer missing approved date")
	}
}

func TestTransferReceivePartialOverride(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	transfers := newTransferService(pool)
	stock := core.NewStockService(pool)
	ctx := context.Background()

	seedStock(t, pool, mainLocationID, beansProductID, 100, 5)

	transfer, err := transfers.CreateTransfer(ctx, core.CreateTransferInput{
		FromLocationID: mainLocationID,
		ToLocationID:   subLocationID,
		CreatedBy:      adminUserID,
		Items: []core.TransferItemInput{
			{ProductID: beansProductID, Quantity: decimal.NewFromInt(40)},
		},
	})
	if err != nil {
		t.Fatalf("CreateTransfer failed: %v", err)
	}
	if _, err := transfers.ApproveTransfer(ctx, transfer.TransferID); err != nil {
		t.Fatalf("ApproveTransfer failed: %v", err)
	}
	if _, err := transfers.DispatchTransfer(ctx, transfer.TransferID); err != nil {
		t.Fatalf("DispatchTransfer failed: %v", err)
	}

	// Overrides above the requested quantity are rejected before any effect.
	_, err = transfers.ReceiveTransfer(ctx, transfer.TransferID, []core.ReceivedItem{
		{ProductID: beansProductID, QuantityReceived: decimal.NewFromInt(45)},
	})
	var validation *core.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("Expected ValidationError for over-receipt, got %v", err)
	}

	received, err := transfers.ReceiveTransfer(ctx, transfer.TransferID, []core.ReceivedItem{
		{ProductID: beansProductID, QuantityReceived: decimal.NewFromInt(30)},
	})
	if err != nil {
		t.Fatalf("ReceiveTransfer failed: %v", err)
	}
	if received.Items[0].QuantityReceived == nil || !received.Items[0].QuantityReceived.Equal(decimal.NewFromInt(30)) {
		t.Errorf("QuantityReceived = %v, want 30", received.Items[0].QuantityReceived)
	}

	dest, err := stock.GetStockEntry(ctx, subLocationID, beansProductID)
	if err != nil {
		t.Fatalf("Failed to read destination entry: %v", err)
	}
	if !dest.Quantity.Equal(decimal.NewFromInt(30)) {
		t.Errorf("Destination quantity = %s, want 30", dest.Quantity)
	}
}

func TestTransferCreateValidations(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	transfers := newTransferService(pool)
	ctx := context.Background()

	seedStock(t, pool, mainLocationID, beansProductID, 10, 5)

	item := func(qty int64) []core.TransferItemInput {
		return []core.TransferItemInput{{ProductID: beansProductID, Quantity: decimal.NewFromInt(qty)}}
	}

	tests := []struct {
		name    string
		input   core.CreateTransferInput
		wantErr any
	}{
		{
			name: "same source and destination",
			input: core.CreateTransferInput{
				FromLocationID: mainLocationID, ToLocationID: mainLocationID,
				CreatedBy: adminUserID, Items: item(5),
			},
			wantErr: &core.ValidationError{},
		},
		{
			name: "no items",
			input: core.CreateTransferInput{
				FromLocationID: mainLocationID, ToLocationID: subLocationID,
				CreatedBy: adminUserID,
			},
			wantErr: &core.ValidationError{},
		},
		{
			name: "zero quantity line",
			input: core.CreateTransferInput{
				FromLocationID: mainLocationID, ToLocationID: subLocationID,
				CreatedBy: adminUserID, Items: item(0),
			},
			wantErr: &core.ValidationError{},
		},
		{
			name: "duplicate product lines",
			input: core.CreateTransferInput{
				FromLocationID: mainLocationID, ToLocationID: subLocationID,
				CreatedBy: adminUserID,
				Items:     append(item(2), item(3)...),
			},
			wantErr: &core.ValidationError{},
		},
		{
			name: "unknown destination",
			input: core.CreateTransferInput{
				FromLocationID: mainLocationID, ToLocationID: 99,
				CreatedBy: adminUserID, Items: item(5),
			},
			wantErr: &core.NotFoundError{},
		},
		{
			name: "more than the source holds",
			input: core.CreateTransferInput{
				FromLocationID: mainLocationID, ToLocationID: subLocationID,
				CreatedBy: adminUserID, Items: item(50),
			},
			wantErr: &core.InsufficientStockError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := transfers.CreateTransfer(ctx, tt.input)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			switch want := tt.wantErr.(type) {
			case *core.ValidationError:
				if !errors.As(err, &want) {
					t.Errorf("Expected ValidationError, got %v", err)
				}
			case *core.NotFoundError:
				if !errors.As(err, &want) {
					t.Errorf("Expected NotFoundError, got %v", err)
				}
			case *core.InsufficientStockError:
				if !errors.As(err, &want) {
					t.Errorf("Expected InsufficientStockError, got %v", err)
				}
			}
		})
	}
}

func TestTransferFilters(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	transfers := newTransferService(pool)
	ctx := context.Background()

	seedStock(t, pool, mainLocationID, beansProductID, 100, 5)

	for _, dest := range []int{subLocationID, storeLocationID} {
		if _, err := transfers.CreateTransfer(ctx, core.CreateTransferInput{
			FromLocationID: mainLocationID,
			ToLocationID:   dest,
			CreatedBy:      adminUserID,
			Items: []core.TransferItemInput{
				{ProductID: beansProductID, Quantity: decimal.NewFromInt(10)},
			},
		}); err != nil {
			t.Fatalf("CreateTransfer failed: %v", err)
		}
	}

	all, err := transfers.GetTransfers(ctx, core.TransferFilters{})
	if err != nil {
		t.Fatalf("GetTransfers failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 transfers, got %d", len(all))
	}

	toStore, err := transfers.GetTransfers(ctx, core.TransferFilters{ToLocationID: storeLocationID})
	if err != nil {
		t.Fatalf("GetTransfers with destination filter failed: %v", err)
	}
	if len(toStore) != 1 || toStore[0].ToLocationID != storeLocationID {
		t.Errorf("Destination filter returned %d transfers", len(toStore))
	}

	pending, err := transfers.GetTransfers(ctx, core.TransferFilters{Status: "pending"})
	if err != nil {
		t.Fatalf("GetTransfers with status filter failed: %v", err)
	}
	if len(pending) != 2 {
		t.Errorf("Status filter returned %d transfers, want 2", len(pending))
	}
	none, err := transfers.GetTransfers(ctx, core.TransferFilters{Status: "completed"})
	if err != nil {
		t.Fatalf("GetTransfers with status filter failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("Completed filter returned %d transfers, want 0", len(none))
	}
}
