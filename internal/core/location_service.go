package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// LocationService manages the location registry and product master data the
// transfer core depends on.
type LocationService interface {
	CreateLocation(ctx context.Context, code, name string, locType LocationType, isMain bool, managerID *int) (*Location, error)
	GetLocations(ctx context.Context) ([]Location, error)
	GetLocation(ctx context.Context, locationID int) (*Location, error)
	// GetMainLocation returns the active main location stock is pushed from.
	GetMainLocation(ctx context.Context) (*Location, error)
	// ResolveAuthorizer returns the user auto-created transfers for a
	// destination are attributed to: the assigned manager, else any active
	// admin.
	ResolveAuthorizer(ctx context.Context, locationID int) (*User, error)

	CreateProduct(ctx context.Context, code, name, description string, unitPrice, reorderPoint, minLevel, maxLevel decimal.Decimal) (*Product, error)
	GetProducts(ctx context.Context) ([]Product, error)
}

type locationService struct {
	pool *pgxpool.Pool
}

// NewLocationService constructs a LocationService backed by PostgreSQL.
func NewLocationService(pool *pgxpool.Pool) LocationService {
	return &locationService{pool: pool}
}

const locationColumns = "id, code, name, location_type, is_main, is_active, manager_id, created_at"

func scanLocation(row pgx.Row) (*Location, error) {
	var l Location
	if err := row.Scan(&l.ID, &l.Code, &l.Name, &l.Type, &l.IsMain, &l.IsActive, &l.ManagerID, &l.CreatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *locationService) CreateLocation(ctx context.Context, code, name string, locType LocationType, isMain bool, managerID *int) (*Location, error) {
	if code == "" || name == "" {
		return nil, Validationf("location code and name are required")
	}
	if locType != LocationWarehouse && locType != LocationStore {
		return nil, Validationf("location_type must be warehouse or store, got %q", locType)
	}
	if isMain && locType != LocationWarehouse {
		return nil, Validationf("only a warehouse can be the main location")
	}

	loc, err := scanLocation(s.pool.QueryRow(ctx, `
		INSERT INTO locations (code, name, location_type, is_main, manager_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+locationColumns,
		code, name, locType, isMain, managerID,
	))
	if err != nil {
		return nil, fmt.Errorf("create location %s: %w", code, err)
	}
	return loc, nil
}

func (s *locationService) GetLocations(ctx context.Context) ([]Location, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+locationColumns+" FROM locations ORDER BY code",
	)
	if err != nil {
		return nil, fmt.Errorf("query locations: %w", err)
	}
	defer rows.Close()

	var locations []Location
	for rows.Next() {
		var l Location
		if err := rows.Scan(&l.ID, &l.Code, &l.Name, &l.Type, &l.IsMain, &l.IsActive, &l.ManagerID, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		locations = append(locations, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating location rows: %w", err)
	}
	return locations, nil
}

func (s *locationService) GetLocation(ctx context.Context, locationID int) (*Location, error) {
	loc, err := scanLocation(s.pool.QueryRow(ctx,
		"SELECT "+locationColumns+" FROM locations WHERE id = $1",
		locationID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NotFoundf("location %d not found", locationID)
		}
		return nil, fmt.Errorf("fetch location %d: %w", locationID, err)
	}
	return loc, nil
}

func (s *locationService) GetMainLocation(ctx context.Context) (*Location, error) {
	loc, err := scanLocation(s.pool.QueryRow(ctx,
		"SELECT "+locationColumns+" FROM locations WHERE is_main = true AND is_active = true ORDER BY id LIMIT 1",
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NotFoundf("no active main location configured")
		}
		return nil, fmt.Errorf("fetch main location: %w", err)
	}
	return loc, nil
}

func (s *locationService) ResolveAuthorizer(ctx context.Context, locationID int) (*User, error) {
	var u User
	err := s.pool.QueryRow(ctx, `
		SELECT u.id, u.username, COALESCE(u.email, ''), u.role, u.is_active, u.created_at
		FROM locations l
		JOIN users u ON u.id = l.manager_id AND u.is_active = true
		WHERE l.id = $1`,
		locationID,
	).Scan(&u.ID, &u.Username, &u.Email, &u.Role, &u.IsActive, &u.CreatedAt)
	if err == nil {
		return &u, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("resolve manager for location %d: %w", locationID, err)
	}

	// No assigned manager; fall back to any active admin.
	err = s.pool.QueryRow(ctx, `
		SELECT id, username, COALESCE(email, ''), role, is_active, created_at
		FROM users
		WHERE role = 'admin' AND is_active = true
		ORDER BY id
		LIMIT 1`,
	).Scan(&u.ID, &u.Username, &u.Email, &u.Role, &u.IsActive, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NotFoundf("no manager or admin available to authorize transfers for location %d", locationID)
		}
		return nil, fmt.Errorf("resolve fallback admin: %w", err)
	}
	return &u, nil
}

func (s *locationService) CreateProduct(ctx context.Context, code, name, description string, unitPrice, reorderPoint, minLevel, maxLevel decimal.Decimal) (*Product, error) {
	if code == "" || name == "" {
		return nil, Validationf("product code and name are required")
	}
	if reorderPoint.IsNegative() || minLevel.IsNegative() || maxLevel.IsNegative() {
		return nil, Validationf("threshold levels cannot be negative")
	}

	var p Product
	err := s.pool.QueryRow(ctx, `
		INSERT INTO products (code, name, description, unit_price, reorder_point, min_stock_level, max_stock_level)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, code, name, description, unit_price, reorder_point, min_stock_level, max_stock_level, is_active, created_at`,
		code, name, description, unitPrice, reorderPoint, minLevel, maxLevel,
	).Scan(&p.ID, &p.Code, &p.Name, &p.Description, &p.UnitPrice,
		&p.ReorderPoint, &p.MinStockLevel, &p.MaxStockLevel, &p.IsActive, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create product %s: %w", code, err)
	}
	return &p, nil
}

func (s *locationService) GetProducts(ctx context.Context) ([]Product, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, code, name, description, unit_price, reorder_point, min_stock_level, max_stock_level, is_active, created_at
		FROM products
		WHERE is_active = true
		ORDER BY code`,
	)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.Description, &p.UnitPrice,
			&p.ReorderPoint, &p.MinStockLevel, &p.MaxStockLevel, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product rows: %w", err)
	}
	return products, nil
}
