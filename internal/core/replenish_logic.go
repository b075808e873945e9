package core

import "github.com/shopspring/decimal"

// Pure replenishment math. Everything here is deterministic on its inputs so
// the apportionment rules can be tested without a database.

// ClassifySeverity grades a below-reorder-point product.
func ClassifySeverity(quantity, minStockLevel decimal.Decimal) Severity {
	if quantity.LessThanOrEqual(minStockLevel) {
		return SeverityCritical
	}
	return SeverityLow
}

// TargetLevel computes the post-transfer stock level to aim for. The class
// ceiling is scaled down when the product's max_stock_level sits below it,
// and lifted to reorder_point + buffer when the scaled value would not clear
// the reorder point.
func TargetLevel(p ClassParams, reorderPoint, maxStockLevel decimal.Decimal) decimal.Decimal {
	target := p.TargetCeiling
	if maxStockLevel.GreaterThan(decimal.Zero) && maxStockLevel.LessThan(p.TargetCeiling) {
		target = maxStockLevel.Mul(p.TargetMaxFraction)
	}
	if target.LessThanOrEqual(reorderPoint) {
		target = reorderPoint.Add(p.ReorderBuffer)
	}
	return target
}

// NeededQuantity computes how much to request: target minus what is already
// there or inbound, floored at the minimum efficient transfer size and capped
// so the destination never exceeds its max_stock_level. The second return is
// false when nothing should be requested (already covered, or no legal
// headroom left).
func NeededQuantity(p ClassParams, target, current, pending, maxStockLevel decimal.Decimal) (decimal.Decimal, bool) {
	needed := target.Sub(current).Sub(pending)
	if needed.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, false
	}
	if needed.LessThan(p.MinTransferQty) {
		needed = p.MinTransferQty
	}
	if maxStockLevel.GreaterThan(decimal.Zero) {
		cap := maxStockLevel.Sub(current).Sub(pending)
		if cap.LessThanOrEqual(decimal.Zero) {
			return decimal.Zero, false
		}
		if needed.GreaterThan(cap) {
			needed = cap
		}
	}
	return needed, true
}

// AvailableSupply is the main-location quantity less the safety buffer
// max(reserve floor, min_stock_level * reserve fraction), floored at zero.
func AvailableSupply(p ClassParams, mainQuantity, minStockLevel decimal.Decimal) decimal.Decimal {
	reserve := minStockLevel.Mul(p.SourceReserveFraction)
	if reserve.LessThan(p.SourceReserveFloor) {
		reserve = p.SourceReserveFloor
	}
	available := mainQuantity.Sub(reserve)
	if available.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	return available
}

// Apportion splits a needed quantity against constrained supply: full
// transfer, partial transfer of exactly the available amount, or nothing.
func Apportion(needed, available decimal.Decimal) (decimal.Decimal, ItemAction) {
	switch {
	case available.GreaterThanOrEqual(needed):
		return needed, ActionTransfer
	case available.GreaterThan(decimal.Zero):
		return available, ActionPartialTransfer
	default:
		return decimal.Zero, ActionInsufficient
	}
}

// CoveredByPending reports whether existing non-terminal transfers already
// lift the destination above its reorder point.
func CoveredByPending(quantity, pending, reorderPoint decimal.Decimal) bool {
	return quantity.Add(pending).GreaterThan(reorderPoint)
}
