package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/mamadbah2/logistics/internal/domain/models"
)

func seeded(t *testing.T) *InventoryRepository {
	t.Helper()
	repo := NewInventoryRepository()
	if err := repo.ReplaceRecords(context.Background(), DemoRecords()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return repo
}

func products(t *testing.T, repo *InventoryRepository) []string {
	t.Helper()
	rows, err := repo.ListRecords(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Product
	}
	return out
}

func TestInventoryRepository_InsertKeepsOrder(t *testing.T) {
	repo := seeded(t)
	ctx := context.Background()

	if err := repo.InsertRecord(ctx, models.InventoryRecord{Product: "D", AnnualDemand: 10, OrderCost: 1, HoldingCost: 1}); err != nil {
		t.Fatal(err)
	}

	got := products(t, repo)
	want := []string{"A", "B", "C", "D"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestInventoryRepository_InsertDuplicate(t *testing.T) {
	repo := seeded(t)

	err := repo.InsertRecord(context.Background(), models.InventoryRecord{Product: "A"})
	if !errors.Is(err, models.ErrDuplicateProduct) {
		t.Fatalf("expected ErrDuplicateProduct, got %v", err)
	}
}

func TestInventoryRepository_UpdateAndDelete(t *testing.T) {
	repo := seeded(t)
	ctx := context.Background()

	if err := repo.UpdateRecord(ctx, models.InventoryRecord{Product: "B", AnnualDemand: 900, OrderCost: 120, HoldingCost: 6}); err != nil {
		t.Fatal(err)
	}
	rows, _ := repo.ListRecords(ctx)
	if rows[1].AnnualDemand != 900 {
		t.Errorf("B demand = %v, want 900", rows[1].AnnualDemand)
	}

	if err := repo.DeleteRecord(ctx, "A"); err != nil {
		t.Fatal(err)
	}
	if got := products(t, repo); len(got) != 2 || got[0] != "B" || got[1] != "C" {
		t.Errorf("after delete got %v", got)
	}

	if err := repo.UpdateRecord(ctx, models.InventoryRecord{Product: "Z"}); !errors.Is(err, models.ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound on update, got %v", err)
	}
	if err := repo.DeleteRecord(ctx, "Z"); !errors.Is(err, models.ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound on delete, got %v", err)
	}
}

func TestInventoryRepository_ReplaceRejectsDuplicates(t *testing.T) {
	repo := seeded(t)

	err := repo.ReplaceRecords(context.Background(), []models.InventoryRecord{{Product: "X"}, {Product: "X"}})
	if !errors.Is(err, models.ErrDuplicateProduct) {
		t.Fatalf("expected ErrDuplicateProduct, got %v", err)
	}
	if got := products(t, repo); len(got) != 3 {
		t.Errorf("table changed after failed replace: %v", got)
	}
}

func TestInventoryRepository_ListReturnsCopies(t *testing.T) {
	repo := seeded(t)
	ctx := context.Background()

	rows, _ := repo.ListRecords(ctx)
	rows[0].AnnualDemand = -1
	*rows[0].UnitPrice = 999

	again, _ := repo.ListRecords(ctx)
	if again[0].AnnualDemand != 1200 || *again[0].UnitPrice != 20 {
		t.Fatalf("repository state leaked through ListRecords: %+v", again[0])
	}
}

func TestInventoryRepository_ConcurrentAccess(t *testing.T) {
	repo := NewInventoryRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = repo.InsertRecord(ctx, models.InventoryRecord{Product: string(rune('a' + i%26)), HoldingCost: 1})
		}(i)
		go func() {
			defer wg.Done()
			_, _ = repo.ListRecords(ctx)
		}()
	}
	wg.Wait()

	if got := products(t, repo); len(got) != 26 {
		t.Errorf("expected 26 unique products, got %d", len(got))
	}
}
