package core_test

import (
	"testing"

	"inventory-api/internal/core"

	"github.com/shopspring/decimal"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestClassifySeverity(t *testing.T) {
	tests := []struct {
		name     string
		quantity int64
		minLevel int64
		want     core.Severity
	}{
		{"at min level is critical", 10, 10, core.SeverityCritical},
		{"below min level is critical", 3, 10, core.SeverityCritical},
		{"zero stock is critical", 0, 10, core.SeverityCritical},
		{"above min level is low", 11, 10, core.SeverityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := core.ClassifySeverity(d(tt.quantity), d(tt.minLevel))
			if got != tt.want {
				t.Errorf("ClassifySeverity(%d, %d) = %s, want %s", tt.quantity, tt.minLevel, got, tt.want)
			}
		})
	}
}

func TestTargetLevel(t *testing.T) {
	warehouse := core.ParamsForClass(core.ClassSubWarehouse)
	store := core.ParamsForClass(core.ClassStore)

	tests := []struct {
		name         string
		params       core.ClassParams
		reorderPoint int64
		maxLevel     int64
		want         string
	}{
		{"warehouse ceiling when max above it", warehouse, 20, 200, "150"},
		{"warehouse ceiling when max unset", warehouse, 20, 0, "150"},
		{"warehouse scaled down by low max", warehouse, 20, 100, "80"},
		{"warehouse lifted above reorder point", warehouse, 90, 100, "115"},
		{"store ceiling when max above it", store, 20, 200, "100"},
		{"store scaled down by low max", store, 20, 80, "60"},
		{"store lifted above reorder point", store, 70, 80, "85"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want, _ := decimal.NewFromString(tt.want)
			got := core.TargetLevel(tt.params, d(tt.reorderPoint), d(tt.maxLevel))
			if !got.Equal(want) {
				t.Errorf("TargetLevel(rop=%d, max=%d) = %s, want %s", tt.reorderPoint, tt.maxLevel, got, want)
			}
		})
	}
}

func TestNeededQuantity(t *testing.T) {
	warehouse := core.ParamsForClass(core.ClassSubWarehouse)

	tests := []struct {
		name     string
		target   int64
		current  int64
		pending  int64
		maxLevel int64
		want     int64
		wantOK   bool
	}{
		{"plain gap", 150, 5, 0, 200, 145, true},
		{"already at target", 150, 150, 0, 200, 0, false},
		{"pending closes the gap", 150, 100, 110, 200, 0, false},
		{"small gap floored to min transfer size", 150, 140, 0, 200, 15, true},
		{"gap capped by max level headroom", 150, 5, 0, 100, 95, true},
		{"floored gap still capped by headroom", 115, 90, 0, 100, 10, true},
		{"no headroom at all", 115, 100, 0, 100, 0, false},
		{"unset max never caps", 150, 5, 0, 0, 145, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := core.NeededQuantity(warehouse, d(tt.target), d(tt.current), d(tt.pending), d(tt.maxLevel))
			if ok != tt.wantOK {
				t.Fatalf("NeededQuantity ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && !got.Equal(d(tt.want)) {
				t.Errorf("NeededQuantity = %s, want %d", got, tt.want)
			}
		})
	}
}

func TestAvailableSupply(t *testing.T) {
	warehouse := core.ParamsForClass(core.ClassSubWarehouse)

	tests := []struct {
		name     string
		mainQty  int64
		minLevel int64
		want     int64
	}{
		{"reserve floor dominates small min level", 500, 10, 450},
		{"fractional reserve dominates large min level", 500, 200, 400},
		{"main below reserve yields zero", 30, 10, 0},
		{"exactly at reserve yields zero", 50, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := core.AvailableSupply(warehouse, d(tt.mainQty), d(tt.minLevel))
			if !got.Equal(d(tt.want)) {
				t.Errorf("AvailableSupply(main=%d, min=%d) = %s, want %d", tt.mainQty, tt.minLevel, got, tt.want)
			}
		})
	}
}

func TestApportion(t *testing.T) {
	tests := []struct {
		name       string
		needed     int64
		available  int64
		wantQty    int64
		wantAction core.ItemAction
	}{
		{"full cover", 145, 450, 145, core.ActionTransfer},
		{"exact cover", 145, 145, 145, core.ActionTransfer},
		{"partial is exactly the available amount", 145, 100, 100, core.ActionPartialTransfer},
		{"nothing available", 145, 0, 0, core.ActionInsufficient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qty, action := core.Apportion(d(tt.needed), d(tt.available))
			if action != tt.wantAction {
				t.Fatalf("Apportion(%d, %d) action = %s, want %s", tt.needed, tt.available, action, tt.wantAction)
			}
			if !qty.Equal(d(tt.wantQty)) {
				t.Errorf("Apportion(%d, %d) qty = %s, want %d", tt.needed, tt.available, qty, tt.wantQty)
			}
		})
	}
}

func TestCoveredByPending(t *testing.T) {
	tests := []struct {
		name         string
		quantity     int64
		pending      int64
		reorderPoint int64
		want         bool
	}{
		{"pending lifts above reorder point", 5, 20, 20, true},
		{"pending reaches exactly the reorder point", 5, 15, 20, false},
		{"no pending", 5, 0, 20, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := core.CoveredByPending(d(tt.quantity), d(tt.pending), d(tt.reorderPoint))
			if got != tt.want {
				t.Errorf("CoveredByPending(%d, %d, %d) = %v, want %v", tt.quantity, tt.pending, tt.reorderPoint, got, tt.want)
			}
		})
	}
}
