package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ReplenishmentService scans destination stock against reorder points and
// creates auto-approved transfers from the main location. One run is a
// best-effort sweep: a failure at one destination is recorded and the run
// continues, in contrast to the per-call atomicity of TransferService.
type ReplenishmentService interface {
	CheckAndCreateTransfers(ctx context.Context, scope ReplenishScope) (*RunSummary, error)
}

type replenishmentService struct {
	pool      *pgxpool.Pool
	locations LocationService
	transfers TransferService
}

// NewReplenishmentService constructs a ReplenishmentService.
func NewReplenishmentService(pool *pgxpool.Pool, locations LocationService, transfers TransferService) ReplenishmentService {
	return &replenishmentService{pool: pool, locations: locations, transfers: transfers}
}

func (s *replenishmentService) CheckAndCreateTransfers(ctx context.Context, scope ReplenishScope) (*RunSummary, error) {
	if scope.TriggerType == "" {
		scope.TriggerType = "manual"
	}
	summary := &RunSummary{
		TriggerType: scope.TriggerType,
		ForceCheck:  scope.ForceCheck,
	}

	// A missing main location is fatal for the whole run; everything else
	// degrades to a per-destination warning.
	main, err := s.locations.GetMainLocation(ctx)
	if err != nil {
		return nil, fmt.Errorf("replenishment run aborted: %w", err)
	}

	destinations, err := s.eligibleDestinations(ctx, main.ID, scope.LocationID)
	if err != nil {
		return nil, err
	}

	for _, dest := range destinations {
		s.processDestination(ctx, main, dest, scope, summary)
	}

	if summary.ProductsChecked == 0 {
		summary.Message = "all stock levels are above their reorder points; no transfers required"
	} else {
		summary.Message = fmt.Sprintf("checked %d products: %d transfers created, %d skipped",
			summary.ProductsChecked, summary.TransfersCreated, summary.TransfersSkipped)
	}
	return summary, nil
}

// eligibleDestinations lists active non-main locations, optionally narrowed
// to one requested destination.
func (s *replenishmentService) eligibleDestinations(ctx context.Context, mainID int, scopeID *int) ([]Location, error) {
	query := `
		SELECT id, code, name, location_type, is_main, is_active, manager_id, created_at
		FROM locations
		WHERE is_active = true AND is_main = false AND id <> $1`
	args := []any{mainID}
	if scopeID != nil {
		query += " AND id = $2"
		args = append(args, *scopeID)
	}
	query += " ORDER BY code"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query destinations: %w", err)
	}
	defer rows.Close()

	var destinations []Location
	for rows.Next() {
		var l Location
		if err := rows.Scan(&l.ID, &l.Code, &l.Name, &l.Type, &l.IsMain, &l.IsActive, &l.ManagerID, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan destination: %w", err)
		}
		destinations = append(destinations, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating destination rows: %w", err)
	}
	if scopeID != nil && len(destinations) == 0 {
		return nil, Validationf("location %d is not an eligible destination (must exist, be active, and not be the main location)", *scopeID)
	}
	return destinations, nil
}

// processDestination runs the algorithm for one destination and folds the
// outcome into the run summary. It never returns an error: failures become
// summary warnings/errors so one destination cannot abort the sweep.
func (s *replenishmentService) processDestination(ctx context.Context, main *Location, dest Location, scope ReplenishScope, summary *RunSummary) {
	class := ClassForLocation(dest.Type)
	params := ParamsForClass(class)

	result := DestinationResult{
		LocationID:   dest.ID,
		LocationCode: dest.Code,
		Class:        class,
	}

	snapshots, err := s.thresholdSnapshots(ctx, dest.ID, main.ID)
	if err != nil {
		summary.Errors = append(summary.Errors,
			fmt.Sprintf("destination %s: snapshot query failed: %v", dest.Code, err))
		return
	}
	if len(snapshots) == 0 {
		return
	}

	authorizer, err := s.locations.ResolveAuthorizer(ctx, dest.ID)
	if err != nil {
		// No one to attribute a transfer to; every below-threshold product
		// still gets a recorded decision rather than a silent omission.
		for _, snap := range snapshots {
			summary.ProductsChecked++
			severity := ClassifySeverity(snap.Quantity, snap.MinStockLevel)
			if severity == SeverityCritical {
				summary.CriticalCount++
			} else {
				summary.LowCount++
			}
			result.Decisions = append(result.Decisions, ItemDecision{
				ProductID:   snap.ProductID,
				ProductCode: snap.ProductCode,
				Severity:    severity,
				Action:      ActionSkipped,
				Reason:      "no manager or admin available to authorize a transfer",
			})
			summary.TransfersSkipped++
		}
		summary.Warnings = append(summary.Warnings,
			fmt.Sprintf("destination %s skipped: %v", dest.Code, err))
		summary.Destinations = append(summary.Destinations, result)
		return
	}

	var items []TransferItemInput
	for _, snap := range snapshots {
		summary.ProductsChecked++

		severity := ClassifySeverity(snap.Quantity, snap.MinStockLevel)
		if severity == SeverityCritical {
			summary.CriticalCount++
		} else {
			summary.LowCount++
		}

		decision := ItemDecision{
			ProductID:   snap.ProductID,
			ProductCode: snap.ProductCode,
			Severity:    severity,
		}

		switch {
		case !scope.ForceCheck && snap.OpenTransfers > 0:
			decision.Action = ActionSkipped
			decision.Reason = fmt.Sprintf("%d open transfer(s) already cover this product", snap.OpenTransfers)
			summary.TransfersSkipped++
		case !scope.ForceCheck && CoveredByPending(snap.Quantity, snap.PendingQuantity, snap.ReorderPoint):
			decision.Action = ActionSkipped
			decision.Reason = fmt.Sprintf("pending quantity %s already lifts stock above reorder point", snap.PendingQuantity)
			summary.TransfersSkipped++
		default:
			target := TargetLevel(params, snap.ReorderPoint, snap.MaxStockLevel)
			needed, ok := NeededQuantity(params, target, snap.Quantity, snap.PendingQuantity, snap.MaxStockLevel)
			if !ok {
				decision.Action = ActionSkipped
				decision.Reason = "no headroom below max stock level"
				summary.TransfersSkipped++
				break
			}

			available := AvailableSupply(params, snap.MainQuantity, snap.MinStockLevel)
			qty, action := Apportion(needed, available)
			decision.Action = action
			decision.Quantity = qty

			switch action {
			case ActionTransfer:
				items = append(items, TransferItemInput{ProductID: snap.ProductID, Quantity: qty})
			case ActionPartialTransfer:
				items = append(items, TransferItemInput{ProductID: snap.ProductID, Quantity: qty})
				summary.Warnings = append(summary.Warnings,
					fmt.Sprintf("destination %s, product %s: main location can only cover %s of %s needed",
						dest.Code, snap.ProductCode, qty, needed))
			case ActionInsufficient:
				summary.Warnings = append(summary.Warnings,
					fmt.Sprintf("destination %s, product %s: main location has no supply beyond its safety buffer",
						dest.Code, snap.ProductCode))
			}
		}

		result.Decisions = append(result.Decisions, decision)
	}

	if len(items) > 0 {
		transfer, err := s.transfers.CreateTransfer(ctx, CreateTransferInput{
			FromLocationID: main.ID,
			ToLocationID:   dest.ID,
			CreatedBy:      authorizer.ID,
			RequestType:    RequestAutoROP,
			TriggerType:    scope.TriggerType,
			Notes:          fmt.Sprintf("Auto replenishment for %s (%s trigger)", dest.Code, scope.TriggerType),
			Items:          items,
		})
		if err != nil {
			summary.Errors = append(summary.Errors,
				fmt.Sprintf("destination %s: transfer creation failed: %v", dest.Code, err))
		} else {
			result.TransferID = transfer.TransferID
			summary.TransfersCreated++
		}
	}

	summary.Destinations = append(summary.Destinations, result)
}

// thresholdSnapshots selects every active product at or below its reorder
// point at the destination, joined with main-location stock and open
// transfer coverage. A missing stock row counts as zero on hand.
func (s *replenishmentService) thresholdSnapshots(ctx context.Context, destID, mainID int) ([]ThresholdSnapshot, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT p.id, p.code, p.name,
		       COALESCE(se.quantity, 0),
		       p.reorder_point, p.min_stock_level, p.max_stock_level,
		       COALESCE(ms.quantity, 0),
		       COALESCE(pt.pending_qty, 0),
		       COALESCE(pt.open_count, 0)
		FROM products p
		LEFT JOIN stock_entries se ON se.product_id = p.id AND se.location_id = $1
		LEFT JOIN stock_entries ms ON ms.product_id = p.id AND ms.location_id = $2
		LEFT JOIN (
			SELECT ti.product_id,
			       SUM(ti.quantity_requested) AS pending_qty,
			       COUNT(DISTINCT t.id)       AS open_count
			FROM transfer_items ti
			JOIN transfers t ON t.id = ti.transfer_id
			WHERE t.to_location_id = $1
			  AND t.from_location_id = $2
			  AND t.status IN ('pending', 'approved', 'in_transit')
			GROUP BY ti.product_id
		) pt ON pt.product_id = p.id
		WHERE p.is_active = true
		  AND p.reorder_point > 0
		  AND COALESCE(se.quantity, 0) <= p.reorder_point
		ORDER BY p.code`,
		destID, mainID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []ThresholdSnapshot
	for rows.Next() {
		var snap ThresholdSnapshot
		if err := rows.Scan(
			&snap.ProductID, &snap.ProductCode, &snap.ProductName,
			&snap.Quantity, &snap.ReorderPoint, &snap.MinStockLevel, &snap.MaxStockLevel,
			&snap.MainQuantity, &snap.PendingQuantity, &snap.OpenTransfers,
		); err != nil {
			return nil, fmt.Errorf("scan threshold snapshot: %w", err)
		}
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating threshold snapshot rows: %w", err)
	}
	return snapshots, nil
}
