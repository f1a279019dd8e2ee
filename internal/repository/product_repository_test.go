package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"product-catalog/internal/domain"

	"github.com/google/uuid"
)

func createTestProduct(t *testing.T, repo ProductRepository, price float64, stock int) *domain.Product {
	t.Helper()

	product := &domain.Product{
		ID:          uuid.New(),
		Name:        "Test Product " + uuid.New().String()[:8],
		Description: "Test description",
		Price:       price,
		ImageURL:    "images/test.jpg",
		Stock:       stock,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := repo.Create(context.Background(), product); err != nil {
		t.Fatalf("Failed to create product: %v", err)
	}
	return product
}

func TestFetchByIDs_ReturnsOnlyExistingProducts(t *testing.T) {
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	p1 := createTestProduct(t, repo, 10.00, 5)
	p2 := createTestProduct(t, repo, 3.3333, 2)
	missing := uuid.New()

	snapshots, err := repo.FetchByIDs(ctx, []uuid.UUID{p1.ID, p2.ID, missing})
	if err != nil {
		t.Fatalf("FetchByIDs failed: %v", err)
	}

	if len(snapshots) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(snapshots))
	}
	if _, ok := snapshots[missing]; ok {
		t.Error("missing id should be absent from the result, not an error")
	}

	snap := snapshots[p1.ID]
	if snap.Name != p1.Name || snap.Price != 10.00 || snap.Stock != 5 {
		t.Errorf("snapshot mismatch: %+v", snap)
	}
}

func TestFetchByIDs_EmptyInput(t *testing.T) {
	repo := NewProductRepository(testDB)

	snapshots, err := repo.FetchByIDs(context.Background(), nil)
	if err != nil {
		t.Fatalf("FetchByIDs failed: %v", err)
	}
	if len(snapshots) != 0 {
		t.Errorf("expected empty result, got %d entries", len(snapshots))
	}
}

func TestReserveAll_DecrementsWhenStockSuffices(t *testing.T) {
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	p1 := createTestProduct(t, repo, 10.00, 5)
	p2 := createTestProduct(t, repo, 3.3333, 2)

	matched, err := repo.ReserveAll(ctx, []domain.OrderLine{
		{ProductID: p1.ID, Quantity: 2},
		{ProductID: p2.ID, Quantity: 1},
	})
	if err != nil {
		t.Fatalf("ReserveAll failed: %v", err)
	}
	if matched != 2 {
		t.Fatalf("matched = %d, want 2", matched)
	}

	after1, _ := repo.FindByID(ctx, p1.ID)
	after2, _ := repo.FindByID(ctx, p2.ID)
	if after1.Stock != 3 || after2.Stock != 1 {
		t.Errorf("stock after reservation = %d/%d, want 3/1", after1.Stock, after2.Stock)
	}
}

func TestReserveAll_ShortfallRollsBackEveryLine(t *testing.T) {
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	plenty := createTestProduct(t, repo, 5.00, 10)
	scarce := createTestProduct(t, repo, 5.00, 1)

	matched, err := repo.ReserveAll(ctx, []domain.OrderLine{
		{ProductID: plenty.ID, Quantity: 2},
		{ProductID: scarce.ID, Quantity: 5},
	})
	if err != nil {
		t.Fatalf("ReserveAll failed: %v", err)
	}
	if matched == 2 {
		t.Fatal("reservation should not have fully matched")
	}

	// The line that matched must be rolled back along with the shortfall.
	afterPlenty, _ := repo.FindByID(ctx, plenty.ID)
	afterScarce, _ := repo.FindByID(ctx, scarce.ID)
	if afterPlenty.Stock != 10 {
		t.Errorf("plenty stock = %d, want 10 (rollback)", afterPlenty.Stock)
	}
	if afterScarce.Stock != 1 {
		t.Errorf("scarce stock = %d, want 1 (rollback)", afterScarce.Stock)
	}
}

func TestReserveAll_ConcurrentRequestsForLastUnit(t *testing.T) {
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	product := createTestProduct(t, repo, 9.99, 1)

	const attempts = 10
	results := make([]int, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			matched, err := repo.ReserveAll(ctx, []domain.OrderLine{
				{ProductID: product.ID, Quantity: 1},
			})
			if err != nil {
				t.Errorf("ReserveAll failed: %v", err)
				return
			}
			results[i] = matched
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, matched := range results {
		if matched == 1 {
			succeeded++
		}
	}
	if succeeded != 1 {
		t.Errorf("%d reservations succeeded for a single unit, want exactly 1", succeeded)
	}

	final, _ := repo.FindByID(ctx, product.ID)
	if final.Stock != 0 {
		t.Errorf("final stock = %d, want 0", final.Stock)
	}
}

func TestReserveAll_OpposingLineOrdersDoNotDeadlock(t *testing.T) {
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	p1 := createTestProduct(t, repo, 5.00, 1)
	p2 := createTestProduct(t, repo, 7.00, 1)

	// Two reservations touch the same rows in opposite request order. Row
	// locks are taken in product id order, so neither transaction can wait
	// on the other while holding a lock it needs; the loser reports a
	// shortfall instead of erroring.
	const rounds = 20
	for round := 0; round < rounds; round++ {
		if _, err := testDB.Exec(
			`UPDATE products SET stock = 1 WHERE id IN ($1, $2)`, p1.ID, p2.ID,
		); err != nil {
			t.Fatalf("failed to reset stock: %v", err)
		}

		forward := []domain.OrderLine{
			{ProductID: p1.ID, Quantity: 1},
			{ProductID: p2.ID, Quantity: 1},
		}
		reverse := []domain.OrderLine{
			{ProductID: p2.ID, Quantity: 1},
			{ProductID: p1.ID, Quantity: 1},
		}

		var wg sync.WaitGroup
		results := make([]int, 2)
		errs := make([]error, 2)
		for i, lines := range [][]domain.OrderLine{forward, reverse} {
			wg.Add(1)
			go func(i int, lines []domain.OrderLine) {
				defer wg.Done()
				results[i], errs[i] = repo.ReserveAll(ctx, lines)
			}(i, lines)
		}
		wg.Wait()

		for i, err := range errs {
			if err != nil {
				t.Fatalf("round %d: reservation %d errored: %v", round, i, err)
			}
		}

		full := 0
		for _, matched := range results {
			if matched == 2 {
				full++
			}
		}
		if full != 1 {
			t.Errorf("round %d: %d reservations took both units, want exactly 1", round, full)
		}

		for _, p := range []*domain.Product{p1, p2} {
			final, err := repo.FindByID(ctx, p.ID)
			if err != nil {
				t.Fatalf("FindByID failed: %v", err)
			}
			if final.Stock != 0 {
				t.Errorf("round %d: stock = %d, want 0", round, final.Stock)
			}
		}
	}
}

func TestReserveAll_DoesNotReorderCallerLines(t *testing.T) {
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	p1 := createTestProduct(t, repo, 2.00, 5)
	p2 := createTestProduct(t, repo, 3.00, 5)

	lines := []domain.OrderLine{
		{ProductID: p2.ID, Quantity: 1},
		{ProductID: p1.ID, Quantity: 2},
	}

	if _, err := repo.ReserveAll(ctx, lines); err != nil {
		t.Fatalf("ReserveAll failed: %v", err)
	}

	// Callers snapshot order items from this slice afterwards; the internal
	// lock ordering must not leak back into it.
	if lines[0].ProductID != p2.ID || lines[1].ProductID != p1.ID {
		t.Error("ReserveAll mutated the caller's line order")
	}
}

func TestReserveAll_StockNeverGoesNegative(t *testing.T) {
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	product := createTestProduct(t, repo, 1.00, 3)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			repo.ReserveAll(ctx, []domain.OrderLine{
				{ProductID: product.ID, Quantity: 2},
			})
		}()
	}
	wg.Wait()

	final, err := repo.FindByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if final.Stock < 0 {
		t.Errorf("stock went negative: %d", final.Stock)
	}
}

func TestProductCRUDRoundtrip(t *testing.T) {
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	product := createTestProduct(t, repo, 19.99, 4)

	retrieved, err := repo.FindByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if retrieved.Name != product.Name || retrieved.Price != 19.99 || retrieved.Stock != 4 {
		t.Errorf("retrieved mismatch: %+v", retrieved)
	}
	if retrieved.CategoryID != nil {
		t.Errorf("categoryId should be nil, got %v", retrieved.CategoryID)
	}

	retrieved.Name = "Renamed"
	retrieved.Stock = 7
	if err := repo.Update(ctx, retrieved); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	updated, _ := repo.FindByID(ctx, product.ID)
	if updated.Name != "Renamed" || updated.Stock != 7 {
		t.Errorf("update not persisted: %+v", updated)
	}

	if err := repo.Delete(ctx, product.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.FindByID(ctx, product.ID); err != ErrProductNotFound {
		t.Errorf("expected ErrProductNotFound after delete, got %v", err)
	}
}

func TestUpdateMissingProductReturnsNotFound(t *testing.T) {
	repo := NewProductRepository(testDB)

	err := repo.Update(context.Background(), &domain.Product{
		ID:          uuid.New(),
		Name:        "Ghost",
		Description: "missing",
		ImageURL:    "images/ghost.jpg",
	})
	if err != ErrProductNotFound {
		t.Errorf("expected ErrProductNotFound, got %v", err)
	}
}
