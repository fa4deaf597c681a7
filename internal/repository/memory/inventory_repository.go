package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/mamadbah2/logistics/internal/domain/models"
)

// InventoryRepository is the locally editable inventory table. Rows keep
// their insertion order.
type InventoryRepository struct {
	mu      sync.RWMutex
	records []models.InventoryRecord
}

// NewInventoryRepository creates an empty table.
func NewInventoryRepository() *InventoryRepository {
	return &InventoryRepository{}
}

// DemoRecords returns the starter table shown on a fresh dashboard.
func DemoRecords() []models.InventoryRecord {
	price := func(v float64) *float64 { return &v }
	return []models.InventoryRecord{
		{Product: "A", AnnualDemand: 1200, OrderCost: 100, HoldingCost: 5, UnitPrice: price(20)},
		{Product: "B", AnnualDemand: 800, OrderCost: 120, HoldingCost: 6, UnitPrice: price(35)},
		{Product: "C", AnnualDemand: 1500, OrderCost: 90, HoldingCost: 4, UnitPrice: price(15)},
	}
}

// ListRecords returns a copy of every row.
func (r *InventoryRepository) ListRecords(_ context.Context) ([]models.InventoryRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.InventoryRecord, len(r.records))
	for i, rec := range r.records {
		out[i] = cloneRecord(rec)
	}
	return out, nil
}

// InsertRecord appends a row with a product that is not in the table yet.
func (r *InventoryRepository) InsertRecord(_ context.Context, record models.InventoryRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(record.Product) >= 0 {
		return fmt.Errorf("insert %s: %w", record.Product, models.ErrDuplicateProduct)
	}
	r.records = append(r.records, cloneRecord(record))
	return nil
}

// UpdateRecord replaces the row with the same product in place.
func (r *InventoryRepository) UpdateRecord(_ context.Context, record models.InventoryRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(record.Product)
	if idx < 0 {
		return fmt.Errorf("update %s: %w", record.Product, models.ErrProductNotFound)
	}
	r.records[idx] = cloneRecord(record)
	return nil
}

// DeleteRecord removes a row by product.
func (r *InventoryRepository) DeleteRecord(_ context.Context, product string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(product)
	if idx < 0 {
		return fmt.Errorf("delete %s: %w", product, models.ErrProductNotFound)
	}
	r.records = append(r.records[:idx], r.records[idx+1:]...)
	return nil
}

// ReplaceRecords swaps the whole table. The table is left untouched when the
// new rows contain a duplicate product.
func (r *InventoryRepository) ReplaceRecords(_ context.Context, records []models.InventoryRecord) error {
	seen := make(map[string]struct{}, len(records))
	next := make([]models.InventoryRecord, 0, len(records))
	for _, rec := range records {
		if _, dup := seen[rec.Product]; dup {
			return fmt.Errorf("replace table: %s: %w", rec.Product, models.ErrDuplicateProduct)
		}
		seen[rec.Product] = struct{}{}
		next = append(next, cloneRecord(rec))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = next
	return nil
}

func (r *InventoryRepository) indexOf(product string) int {
	for i, rec := range r.records {
		if rec.Product == product {
			return i
		}
	}
	return -1
}

func cloneRecord(rec models.InventoryRecord) models.InventoryRecord {
	if rec.UnitPrice != nil {
		price := *rec.UnitPrice
		rec.UnitPrice = &price
	}
	return rec
}
