package models

import (
	"errors"
	"math"
	"testing"
)

func TestInventoryRecordValidate(t *testing.T) {
	inf := math.Inf(1)
	nan := math.NaN()
	price := 20.0

	cases := []struct {
		name    string
		record  InventoryRecord
		wantErr bool
	}{
		{"valid", InventoryRecord{Product: "A", AnnualDemand: 1200, OrderCost: 100, HoldingCost: 5, UnitPrice: &price}, false},
		{"zero holding cost", InventoryRecord{Product: "A", AnnualDemand: 1200, OrderCost: 100}, false},
		{"empty product", InventoryRecord{Product: "  ", HoldingCost: 1}, true},
		{"negative demand", InventoryRecord{Product: "A", AnnualDemand: -1, HoldingCost: 1}, true},
		{"negative order cost", InventoryRecord{Product: "A", OrderCost: -1, HoldingCost: 1}, true},
		{"nan demand", InventoryRecord{Product: "A", AnnualDemand: nan, HoldingCost: 1}, true},
		{"inf order cost", InventoryRecord{Product: "A", OrderCost: inf, HoldingCost: 1}, true},
		{"nan holding cost", InventoryRecord{Product: "A", HoldingCost: nan}, true},
		{"inf unit price", InventoryRecord{Product: "A", HoldingCost: 1, UnitPrice: &inf}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.record.Validate()
			if tc.wantErr && !errors.Is(err, ErrInvalidRecord) {
				t.Fatalf("expected ErrInvalidRecord, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
