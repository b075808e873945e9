package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// TransferService manages the transfer lifecycle state machine:
//
//	pending → approved → in_transit → completed
//	pending | approved → cancelled
//
// Stock is decremented at the source on Dispatch and incremented at the
// destination on Receive; Cancel never touches the ledger. Every call is one
// atomic transaction.
type TransferService interface {
	CreateTransfer(ctx context.Context, input CreateTransferInput) (*Transfer, error)
	ApproveTransfer(ctx context.Context, transferID string) (*Transfer, error)
	DispatchTransfer(ctx context.Context, transferID string) (*Transfer, error)
	ReceiveTransfer(ctx context.Context, transferID string, received []ReceivedItem) (*Transfer, error)
	CancelTransfer(ctx context.Context, transferID string) (*Transfer, error)

	GetTransfer(ctx context.Context, transferID string) (*Transfer, error)
	GetTransfers(ctx context.Context, filters TransferFilters) ([]Transfer, error)
}

type transferService struct {
	pool  *pgxpool.Pool
	stock StockService
}

// NewTransferService constructs a TransferService backed by PostgreSQL.
func NewTransferService(pool *pgxpool.Pool, stock StockService) TransferService {
	return &transferService{pool: pool, stock: stock}
}

func (s *transferService) CreateTransfer(ctx context.Context, input CreateTransferInput) (*Transfer, error) {
	if input.FromLocationID == 0 || input.ToLocationID == 0 {
		return nil, Validationf("from_location and to_location are required")
	}
	if input.FromLocationID == input.ToLocationID {
		return nil, Validationf("from_location and to_location must differ")
	}
	if input.CreatedBy == 0 {
		return nil, Validationf("created_by is required")
	}
	if len(input.Items) == 0 {
		return nil, Validationf("transfer must have at least one item")
	}
	if input.RequestType == "" {
		input.RequestType = RequestManual
	}
	if input.RequestType != RequestManual && input.RequestType != RequestAutoROP {
		return nil, Validationf("request_type must be manual or auto_rop, got %q", input.RequestType)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := assertLocationActive(ctx, tx, input.FromLocationID); err != nil {
		return nil, err
	}
	if err := assertLocationActive(ctx, tx, input.ToLocationID); err != nil {
		return nil, err
	}

	// Resolve items against the source ledger. The sufficiency check here is
	// advisory (nothing is reserved); Dispatch re-validates under a row lock.
	type resolvedItem struct {
		productID int
		quantity  decimal.Decimal
		unitPrice decimal.Decimal
	}
	var resolved []resolvedItem
	seen := make(map[int]bool, len(input.Items))

	for i, item := range input.Items {
		if item.Quantity.IsZero() || item.Quantity.IsNegative() {
			return nil, Validationf("item %d: quantity must be positive, got %s", i+1, item.Quantity)
		}
		if seen[item.ProductID] {
			return nil, Validationf("item %d: product %d appears more than once", i+1, item.ProductID)
		}
		seen[item.ProductID] = true

		if err := assertProductActive(ctx, tx, item.ProductID); err != nil {
			return nil, err
		}

		var available, unitCost decimal.Decimal
		err := tx.QueryRow(ctx, `
			SELECT quantity, unit_cost FROM stock_entries
			WHERE location_id = $1 AND product_id = $2`,
			input.FromLocationID, item.ProductID,
		).Scan(&available, &unitCost)
		if errors.Is(err, pgx.ErrNoRows) {
			available, unitCost = decimal.Zero, decimal.Zero
		} else if err != nil {
			return nil, fmt.Errorf("item %d: read source stock: %w", i+1, err)
		}

		if available.LessThan(item.Quantity) {
			return nil, InsufficientStockf("item %d: source has %s of product %d, requested %s",
				i+1, available, item.ProductID, item.Quantity)
		}

		resolved = append(resolved, resolvedItem{
			productID: item.ProductID,
			quantity:  item.Quantity,
			unitPrice: unitCost,
		})
	}

	// Engine-created transfers skip the manual approval gate.
	status := TransferPending
	approvedExpr := "NULL"
	if input.RequestType == RequestAutoROP {
		status = TransferApproved
		approvedExpr = "NOW()"
	}

	transferUUID := uuid.NewString()
	var rowID int
	err = tx.QueryRow(ctx, `
		INSERT INTO transfers (transfer_id, from_location_id, to_location_id, status, request_type, trigger_type, created_by, notes, approved_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, `+approvedExpr+`)
		RETURNING id`,
		transferUUID, input.FromLocationID, input.ToLocationID, status,
		input.RequestType, input.TriggerType, input.CreatedBy, input.Notes,
	).Scan(&rowID)
	if err != nil {
		return nil, fmt.Errorf("insert transfer: %w", err)
	}

	for i, ri := range resolved {
		if _, err := tx.Exec(ctx, `
			INSERT INTO transfer_items (transfer_id, line_number, product_id, quantity_requested, unit_price)
			VALUES ($1, $2, $3, $4, $5)`,
			rowID, i+1, ri.productID, ri.quantity, ri.unitPrice,
		); err != nil {
			return nil, fmt.Errorf("insert transfer item %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transfer creation: %w", err)
	}
	return s.GetTransfer(ctx, transferUUID)
}

func (s *transferService) ApproveTransfer(ctx context.Context, transferID string) (*Transfer, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rowID, status, err := lockTransfer(ctx, tx, transferID)
	if err != nil {
		return nil, err
	}
	if status != TransferPending {
		return nil, Statef("transfer %s cannot be approved: status is %s (must be pending)", transferID, status)
	}

	if _, err := tx.Exec(ctx,
		"UPDATE transfers SET status = 'approved', approved_date = NOW() WHERE id = $1",
		rowID,
	); err != nil {
		return nil, fmt.Errorf("approve transfer %s: %w", transferID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit approval: %w", err)
	}
	return s.GetTransfer(ctx, transferID)
}

func (s *transferService) DispatchTransfer(ctx context.Context, transferID string) (*Transfer, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rowID, status, err := lockTransfer(ctx, tx, transferID)
	if err != nil {
		return nil, err
	}
	if status != TransferApproved {
		return nil, Statef("transfer %s cannot be dispatched: status is %s (must be approved)", transferID, status)
	}

	var fromLocationID int
	if err := tx.QueryRow(ctx,
		"SELECT from_location_id FROM transfers WHERE id = $1", rowID,
	).Scan(&fromLocationID); err != nil {
		return nil, fmt.Errorf("fetch transfer %s: %w", transferID, err)
	}

	items, err := fetchItemsQ(ctx, tx, rowID)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		if err := s.stock.DeductStockTx(ctx, tx, fromLocationID, item.ProductID, item.QuantityRequested, rowID); err != nil {
			return nil, fmt.Errorf("dispatch line %d: %w", item.LineNumber, err)
		}
	}

	if _, err := tx.Exec(ctx,
		"UPDATE transfers SET status = 'in_transit', dispatched_date = NOW() WHERE id = $1",
		rowID,
	); err != nil {
		return nil, fmt.Errorf("dispatch transfer %s: %w", transferID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit dispatch: %w", err)
	}
	return s.GetTransfer(ctx, transferID)
}

func (s *transferService) ReceiveTransfer(ctx context.Context, transferID string, received []ReceivedItem) (*Transfer, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rowID, status, err := lockTransfer(ctx, tx, transferID)
	if err != nil {
		return nil, err
	}
	if status != TransferInTransit {
		return nil, Statef("transfer %s cannot be received: status is %s (must be in_transit)", transferID, status)
	}

	var toLocationID int
	if err := tx.QueryRow(ctx,
		"SELECT to_location_id FROM transfers WHERE id = $1", rowID,
	).Scan(&toLocationID); err != nil {
		return nil, fmt.Errorf("fetch transfer %s: %w", transferID, err)
	}

	items, err := fetchItemsQ(ctx, tx, rowID)
	if err != nil {
		return nil, err
	}

	overrides := make(map[int]decimal.Decimal, len(received))
	for _, r := range received {
		overrides[r.ProductID] = r.QuantityReceived
	}
	for pid := range overrides {
		found := false
		for _, item := range items {
			if item.ProductID == pid {
				found = true
				break
			}
		}
		if !found {
			return nil, Validationf("received item product %d is not on transfer %s", pid, transferID)
		}
	}

	for _, item := range items {
		qty := item.QuantityRequested
		if override, ok := overrides[item.ProductID]; ok {
			if override.IsNegative() {
				return nil, Validationf("line %d: received quantity cannot be negative", item.LineNumber)
			}
			if override.GreaterThan(item.QuantityRequested) {
				return nil, Validationf("line %d: received %s exceeds requested %s",
					item.LineNumber, override, item.QuantityRequested)
			}
			qty = override
		}

		if qty.GreaterThan(decimal.Zero) {
			if err := s.stock.AddStockTx(ctx, tx, toLocationID, item.ProductID, qty, item.UnitPrice, rowID); err != nil {
				return nil, fmt.Errorf("receive line %d: %w", item.LineNumber, err)
			}
		}

		if _, err := tx.Exec(ctx,
			"UPDATE transfer_items SET quantity_received = $1 WHERE id = $2",
			qty, item.ID,
		); err != nil {
			return nil, fmt.Errorf("record received quantity for line %d: %w", item.LineNumber, err)
		}
	}

	if _, err := tx.Exec(ctx,
		"UPDATE transfers SET status = 'completed', received_date = NOW() WHERE id = $1",
		rowID,
	); err != nil {
		return nil, fmt.Errorf("complete transfer %s: %w", transferID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit receipt: %w", err)
	}
	return s.GetTransfer(ctx, transferID)
}

func (s *transferService) CancelTransfer(ctx context.Context, transferID string) (*Transfer, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rowID, status, err := lockTransfer(ctx, tx, transferID)
	if err != nil {
		return nil, err
	}
	// No ledger effect: stock is only decremented at dispatch, so anything
	// past approved cannot be cancelled.
	if status != TransferPending && status != TransferApproved {
		return nil, Statef("transfer %s cannot be cancelled: status is %s (must be pending or approved)", transferID, status)
	}

	if _, err := tx.Exec(ctx,
		"UPDATE transfers SET status = 'cancelled' WHERE id = $1",
		rowID,
	); err != nil {
		return nil, fmt.Errorf("cancel transfer %s: %w", transferID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit cancellation: %w", err)
	}
	return s.GetTransfer(ctx, transferID)
}

// ── Queries ──────────────────────────────────────────────────────────────────

const transferSelect = `
	SELECT t.id, t.transfer_id, t.from_location_id, fl.code, t.to_location_id, tl.code,
	       t.status, t.request_type, t.trigger_type, t.created_by, u.username, t.notes,
	       t.requested_date, t.approved_date, t.dispatched_date, t.received_date, t.created_at
	FROM transfers t
	JOIN locations fl ON fl.id = t.from_location_id
	JOIN locations tl ON tl.id = t.to_location_id
	JOIN users u ON u.id = t.created_by`

func scanTransfer(row pgx.Row) (*Transfer, error) {
	var t Transfer
	err := row.Scan(
		&t.ID, &t.TransferID, &t.FromLocationID, &t.FromLocationCode, &t.ToLocationID, &t.ToLocationCode,
		&t.Status, &t.RequestType, &t.TriggerType, &t.CreatedBy, &t.CreatedByName, &t.Notes,
		&t.RequestedDate, &t.ApprovedDate, &t.DispatchedDate, &t.ReceivedDate, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *transferService) GetTransfer(ctx context.Context, transferID string) (*Transfer, error) {
	t, err := scanTransfer(s.pool.QueryRow(ctx, transferSelect+" WHERE t.transfer_id = $1", transferID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NotFoundf("transfer %s not found", transferID)
		}
		return nil, fmt.Errorf("fetch transfer %s: %w", transferID, err)
	}

	items, err := fetchItemsQ(ctx, s.pool, t.ID)
	if err != nil {
		return nil, err
	}
	t.Items = items
	return t, nil
}

func (s *transferService) GetTransfers(ctx context.Context, filters TransferFilters) ([]Transfer, error) {
	query := transferSelect + " WHERE 1=1"
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filters.Status != "" {
		query += " AND t.status = " + arg(filters.Status)
	}
	if filters.FromLocationID != 0 {
		query += " AND t.from_location_id = " + arg(filters.FromLocationID)
	}
	if filters.ToLocationID != 0 {
		query += " AND t.to_location_id = " + arg(filters.ToLocationID)
	}
	if filters.RequestType != "" {
		query += " AND t.request_type = " + arg(filters.RequestType)
	}
	query += " ORDER BY t.created_at DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()

	var transfers []Transfer
	for rows.Next() {
		var t Transfer
		if err := rows.Scan(
			&t.ID, &t.TransferID, &t.FromLocationID, &t.FromLocationCode, &t.ToLocationID, &t.ToLocationCode,
			&t.Status, &t.RequestType, &t.TriggerType, &t.CreatedBy, &t.CreatedByName, &t.Notes,
			&t.RequestedDate, &t.ApprovedDate, &t.DispatchedDate, &t.ReceivedDate, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		transfers = append(transfers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transfer rows: %w", err)
	}
	return transfers, nil
}

// lockTransfer resolves a transfer UUID to its row id and locks the row.
func lockTransfer(ctx context.Context, tx pgx.Tx, transferID string) (int, TransferStatus, error) {
	var rowID int
	var status TransferStatus
	err := tx.QueryRow(ctx,
		"SELECT id, status FROM transfers WHERE transfer_id = $1 FOR UPDATE",
		transferID,
	).Scan(&rowID, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, "", NotFoundf("transfer %s not found", transferID)
		}
		return 0, "", fmt.Errorf("fetch transfer %s: %w", transferID, err)
	}
	return rowID, status, nil
}

// pgxRowQuerier is satisfied by both *pgxpool.Pool and pgx.Tx.
type pgxRowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func fetchItemsQ(ctx context.Context, q pgxRowQuerier, transferRowID int) ([]TransferItem, error) {
	rows, err := q.Query(ctx, `
		SELECT ti.id, ti.transfer_id, ti.line_number,
		       ti.product_id, p.code, p.name,
		       ti.quantity_requested, ti.quantity_received, ti.unit_price
		FROM transfer_items ti
		JOIN products p ON p.id = ti.product_id
		WHERE ti.transfer_id = $1
		ORDER BY ti.line_number`,
		transferRowID,
	)
	if err != nil {
		return nil, fmt.Errorf("query transfer items: %w", err)
	}
	defer rows.Close()

	var items []TransferItem
	for rows.Next() {
		var item TransferItem
		if err := rows.Scan(
			&item.ID, &item.TransferID, &item.LineNumber,
			&item.ProductID, &item.ProductCode, &item.ProductName,
			&item.QuantityRequested, &item.QuantityReceived, &item.UnitPrice,
		); err != nil {
			return nil, fmt.Errorf("scan transfer item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transfer item rows: %w", err)
	}
	return items, nil
}
