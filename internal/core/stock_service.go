package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// StockService is the stock ledger: per-(location, product) quantity and
// weighted-average cost. Committed quantities never go negative.
type StockService interface {
	// Standalone operations (manage their own transactions).
	GetStockLevels(ctx context.Context, locationID *int) ([]StockLevel, error)
	GetStockEntry(ctx context.Context, locationID, productID int) (*StockEntry, error)
	// ReceiveStock records an external goods receipt: lazily creates the
	// entry, increases quantity, and re-blends the weighted average cost.
	ReceiveStock(ctx context.Context, input ReceiveStockInput) (*StockEntry, error)
	// AdjustStock applies a signed correction; the result may not go below zero.
	AdjustStock(ctx context.Context, input AdjustStockInput) (*StockEntry, error)

	// TX-scoped operations used by TransferService to keep ledger deltas
	// atomic with transfer state transitions.

	// DeductStockTx locks the source entry, re-validates sufficiency, and
	// decrements it, writing a TRANSFER_OUT movement.
	DeductStockTx(ctx context.Context, tx pgx.Tx, locationID, productID int, qty decimal.Decimal, transferRowID int) error
	// AddStockTx lazily creates and locks the destination entry, increments
	// it with weighted-average cost blending, and writes a TRANSFER_IN movement.
	AddStockTx(ctx context.Context, tx pgx.Tx, locationID, productID int, qty, unitCost decimal.Decimal, transferRowID int) error
}

type stockService struct {
	pool *pgxpool.Pool
}

// NewStockService constructs a StockService backed by PostgreSQL.
func NewStockService(pool *pgxpool.Pool) StockService {
	return &stockService{pool: pool}
}

// ── Standalone operations ─────────────────────────────────────────────────────

func (s *stockService) GetStockLevels(ctx context.Context, locationID *int) ([]StockLevel, error) {
	query := `
		SELECT l.id, l.code, l.name, p.id, p.code, p.name,
		       se.quantity, se.unit_cost,
		       p.reorder_point, p.min_stock_level, p.max_stock_level
		FROM stock_entries se
		JOIN locations l ON l.id = se.location_id
		JOIN products p  ON p.id = se.product_id`
	args := []any{}
	if locationID != nil {
		query += " WHERE se.location_id = $1"
		args = append(args, *locationID)
	}
	query += " ORDER BY l.code, p.code"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query stock levels: %w", err)
	}
	defer rows.Close()

	var levels []StockLevel
	for rows.Next() {
		var sl StockLevel
		if err := rows.Scan(
			&sl.LocationID, &sl.LocationCode, &sl.LocationName,
			&sl.ProductID, &sl.ProductCode, &sl.ProductName,
			&sl.Quantity, &sl.UnitCost,
			&sl.ReorderPoint, &sl.MinStockLevel, &sl.MaxStockLevel,
		); err != nil {
			return nil, fmt.Errorf("scan stock level: %w", err)
		}
		levels = append(levels, sl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stock level rows: %w", err)
	}
	return levels, nil
}

func (s *stockService) GetStockEntry(ctx context.Context, locationID, productID int) (*StockEntry, error) {
	var e StockEntry
	err := s.pool.QueryRow(ctx, `
		SELECT id, location_id, product_id, quantity, unit_cost, updated_at
		FROM stock_entries
		WHERE location_id = $1 AND product_id = $2`,
		locationID, productID,
	).Scan(&e.ID, &e.LocationID, &e.ProductID, &e.Quantity, &e.UnitCost, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NotFoundf("no stock entry for location %d, product %d", locationID, productID)
		}
		return nil, fmt.Errorf("fetch stock entry: %w", err)
	}
	return &e, nil
}

func (s *stockService) ReceiveStock(ctx context.Context, input ReceiveStockInput) (*StockEntry, error) {
	if input.Quantity.IsZero() || input.Quantity.IsNegative() {
		return nil, Validationf("receive quantity must be positive, got %s", input.Quantity)
	}
	if input.UnitCost.IsNegative() {
		return nil, Validationf("unit cost cannot be negative, got %s", input.UnitCost)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := assertLocationActive(ctx, tx, input.LocationID); err != nil {
		return nil, err
	}
	if err := assertProductActive(ctx, tx, input.ProductID); err != nil {
		return nil, err
	}

	entryID, oldQty, oldCost, err := upsertAndLockEntry(ctx, tx, input.LocationID, input.ProductID)
	if err != nil {
		return nil, err
	}

	newQty := oldQty.Add(input.Quantity)
	newCost := blendCost(oldQty, oldCost, input.Quantity, input.UnitCost)

	if _, err := tx.Exec(ctx, `
		UPDATE stock_entries SET quantity = $1, unit_cost = $2, updated_at = NOW()
		WHERE id = $3`,
		newQty, newCost, entryID,
	); err != nil {
		return nil, fmt.Errorf("update stock entry: %w", err)
	}

	notes := input.Notes
	if notes == "" {
		notes = fmt.Sprintf("Goods receipt: %s units @ %s", input.Quantity, input.UnitCost)
	}
	if err := insertMovementTx(ctx, tx, entryID, MovementReceipt, input.Quantity, input.UnitCost, nil, notes); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit goods receipt: %w", err)
	}
	return s.GetStockEntry(ctx, input.LocationID, input.ProductID)
}

func (s *stockService) AdjustStock(ctx context.Context, input AdjustStockInput) (*StockEntry, error) {
	if input.Delta.IsZero() {
		return nil, Validationf("adjustment delta cannot be zero")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	entryID, oldQty, oldCost, err := upsertAndLockEntry(ctx, tx, input.LocationID, input.ProductID)
	if err != nil {
		return nil, err
	}

	newQty := oldQty.Add(input.Delta)
	if newQty.IsNegative() {
		return nil, InsufficientStockf("adjustment would drive stock negative: have %s, delta %s", oldQty, input.Delta)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE stock_entries SET quantity = $1, updated_at = NOW()
		WHERE id = $2`,
		newQty, entryID,
	); err != nil {
		return nil, fmt.Errorf("update stock entry: %w", err)
	}

	notes := input.Notes
	if notes == "" {
		notes = fmt.Sprintf("Stock adjustment: %s", input.Delta)
	}
	if err := insertMovementTx(ctx, tx, entryID, MovementAdjustment, input.Delta, oldCost, nil, notes); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit adjustment: %w", err)
	}
	return s.GetStockEntry(ctx, input.LocationID, input.ProductID)
}

// ── TX-scoped operations ──────────────────────────────────────────────────────

func (s *stockService) DeductStockTx(ctx context.Context, tx pgx.Tx, locationID, productID int, qty decimal.Decimal, transferRowID int) error {
	var entryID int
	var onHand, unitCost decimal.Decimal
	err := tx.QueryRow(ctx, `
		SELECT id, quantity, unit_cost FROM stock_entries
		WHERE location_id = $1 AND product_id = $2
		FOR UPDATE`,
		locationID, productID,
	).Scan(&entryID, &onHand, &unitCost)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return InsufficientStockf("no stock at location %d for product %d", locationID, productID)
		}
		return fmt.Errorf("lock stock entry: %w", err)
	}

	// Re-validate here: the check at transfer creation is advisory only and
	// stock may have moved since.
	if onHand.LessThan(qty) {
		return InsufficientStockf("insufficient stock at location %d for product %d: have %s, need %s",
			locationID, productID, onHand, qty)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE stock_entries SET quantity = quantity - $1, updated_at = NOW()
		WHERE id = $2`,
		qty, entryID,
	); err != nil {
		return fmt.Errorf("deduct stock entry %d: %w", entryID, err)
	}

	return insertMovementTx(ctx, tx, entryID, MovementTransferOut, qty.Neg(), unitCost, &transferRowID,
		fmt.Sprintf("Transfer dispatch: %s units", qty))
}

func (s *stockService) AddStockTx(ctx context.Context, tx pgx.Tx, locationID, productID int, qty, unitCost decimal.Decimal, transferRowID int) error {
	entryID, oldQty, oldCost, err := upsertAndLockEntry(ctx, tx, locationID, productID)
	if err != nil {
		return err
	}

	newQty := oldQty.Add(qty)
	newCost := blendCost(oldQty, oldCost, qty, unitCost)

	if _, err := tx.Exec(ctx, `
		UPDATE stock_entries SET quantity = $1, unit_cost = $2, updated_at = NOW()
		WHERE id = $3`,
		newQty, newCost, entryID,
	); err != nil {
		return fmt.Errorf("increment stock entry %d: %w", entryID, err)
	}

	return insertMovementTx(ctx, tx, entryID, MovementTransferIn, qty, unitCost, &transferRowID,
		fmt.Sprintf("Transfer receipt: %s units @ %s", qty, unitCost))
}

// ── Shared helpers ────────────────────────────────────────────────────────────

// blendCost recomputes the weighted average cost on receipt:
// (oldQty*oldCost + qty*cost) / (oldQty + qty), or the incoming cost when
// there is no prior stock.
func blendCost(oldQty, oldCost, qty, cost decimal.Decimal) decimal.Decimal {
	total := oldQty.Add(qty)
	if total.IsZero() || oldQty.IsZero() {
		return cost
	}
	return oldQty.Mul(oldCost).Add(qty.Mul(cost)).Div(total)
}

// upsertAndLockEntry creates the (location, product) entry if missing, then
// locks it and returns its id, quantity, and unit cost.
func upsertAndLockEntry(ctx context.Context, tx pgx.Tx, locationID, productID int) (int, decimal.Decimal, decimal.Decimal, error) {
	var entryID int
	var qty, cost decimal.Decimal
	err := tx.QueryRow(ctx, `
		INSERT INTO stock_entries (location_id, product_id, quantity, unit_cost)
		VALUES ($1, $2, 0, 0)
		ON CONFLICT (location_id, product_id) DO UPDATE SET updated_at = NOW()
		RETURNING id`,
		locationID, productID,
	).Scan(&entryID)
	if err != nil {
		return 0, decimal.Zero, decimal.Zero, fmt.Errorf("upsert stock entry: %w", err)
	}

	err = tx.QueryRow(ctx,
		"SELECT id, quantity, unit_cost FROM stock_entries WHERE id = $1 FOR UPDATE",
		entryID,
	).Scan(&entryID, &qty, &cost)
	if err != nil {
		return 0, decimal.Zero, decimal.Zero, fmt.Errorf("lock stock entry: %w", err)
	}
	return entryID, qty, cost, nil
}

func insertMovementTx(ctx context.Context, tx pgx.Tx, entryID int, mt MovementType, qty, unitCost decimal.Decimal, transferRowID *int, notes string) error {
	if _, err := tx.Exec(ctx, `
		INSERT INTO stock_movements (stock_entry_id, movement_type, quantity, unit_cost, total_cost, transfer_id, movement_date, notes)
		VALUES ($1, $2, $3, $4, $5, $6, CURRENT_DATE, $7)`,
		entryID, mt, qty, unitCost, qty.Mul(unitCost), transferRowID, notes,
	); err != nil {
		return fmt.Errorf("insert %s movement: %w", mt, err)
	}
	return nil
}

func assertLocationActive(ctx context.Context, tx pgx.Tx, locationID int) error {
	var active bool
	err := tx.QueryRow(ctx, "SELECT is_active FROM locations WHERE id = $1", locationID).Scan(&active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return NotFoundf("location %d not found", locationID)
		}
		return fmt.Errorf("resolve location %d: %w", locationID, err)
	}
	if !active {
		return Validationf("location %d is inactive", locationID)
	}
	return nil
}

func assertProductActive(ctx context.Context, tx pgx.Tx, productID int) error {
	var active bool
	err := tx.QueryRow(ctx, "SELECT is_active FROM products WHERE id = $1", productID).Scan(&active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return NotFoundf("product %d not found", productID)
		}
		return fmt.Errorf("resolve product %d: %w", productID, err)
	}
	if !active {
		return Validationf("product %d is inactive", productID)
	}
	return nil
}
