package repository

import (
	"context"
	"testing"
	"time"

	"product-catalog/internal/domain"

	"github.com/google/uuid"
)

func TestOrderCreateAndFindRoundtrip(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	order := &domain.Order{
		ID: uuid.New(),
		Items: []domain.OrderItem{
			{ProductID: uuid.New(), Name: "Order Prod 1", Price: 10.00, Quantity: 2},
			{ProductID: uuid.New(), Name: "Order Prod 2", Price: 3.3333, Quantity: 1},
		},
		Total:     23.33,
		Status:    domain.OrderStatusSubmitted,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	retrieved, err := repo.FindByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}

	if retrieved.Status != domain.OrderStatusSubmitted {
		t.Errorf("status = %q, want submitted", retrieved.Status)
	}
	if retrieved.Total != 23.33 {
		t.Errorf("total = %v, want 23.33", retrieved.Total)
	}
	if len(retrieved.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(retrieved.Items))
	}

	// Line order is preserved.
	if retrieved.Items[0].Name != "Order Prod 1" || retrieved.Items[1].Name != "Order Prod 2" {
		t.Errorf("items out of order: %+v", retrieved.Items)
	}
	if retrieved.Items[0].Quantity != 2 || retrieved.Items[1].Quantity != 1 {
		t.Errorf("quantities mismatch: %+v", retrieved.Items)
	}
}

func TestOrderFindByID_NotFound(t *testing.T) {
	repo := NewOrderRepository(testDB)

	if _, err := repo.FindByID(context.Background(), uuid.New()); err != ErrOrderNotFound {
		t.Errorf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderSnapshotSurvivesProductChanges(t *testing.T) {
	orderRepo := NewOrderRepository(testDB)
	productRepo := NewProductRepository(testDB)
	ctx := context.Background()

	product := createTestProduct(t, productRepo, 3.3333, 10)

	order := &domain.Order{
		ID: uuid.New(),
		Items: []domain.OrderItem{
			{ProductID: product.ID, Name: product.Name, Price: product.Price, Quantity: 1},
		},
		Total:     3.33,
		Status:    domain.OrderStatusSubmitted,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := orderRepo.Create(ctx, order); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Mutate the product after placement.
	product.Price = 99
	product.Name = "Repriced"
	if err := productRepo.Update(ctx, product); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	retrieved, err := orderRepo.FindByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if retrieved.Items[0].Price != 3.3333 {
		t.Errorf("snapshot price = %v, want 3.3333", retrieved.Items[0].Price)
	}
	if retrieved.Items[0].Name == "Repriced" {
		t.Error("snapshot name followed the product rename")
	}
}
