package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/Lixing-Zhang/storefront-checkout/internal/models"
)

func TestInMemoryCartRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryCartRepository()

	cart := &models.Cart{UserID: "user-1"}
	if err := repo.CreateCart(ctx, cart); err != nil {
		t.Fatalf("create cart: %v", err)
	}
	if cart.ID == "" {
		t.Fatal("expected generated cart ID")
	}

	got, err := repo.GetCart(ctx, cart.ID)
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if got.UserID != "user-1" {
		t.Errorf("expected user-1, got %q", got.UserID)
	}
	if got.Items == nil || len(got.Items) != 0 {
		t.Errorf("expected empty non-nil items, got %v", got.Items)
	}

	if err := repo.CreateCart(ctx, &models.Cart{ID: cart.ID}); !errors.Is(err, ErrCartExists) {
		t.Errorf("expected ErrCartExists, got %v", err)
	}
}

func TestInMemoryCartRepository_GetMissing(t *testing.T) {
	repo := NewInMemoryCartRepository()

	_, err := repo.GetCart(context.Background(), "missing")
	if !errors.Is(err, ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound, got %v", err)
	}
}

func TestInMemoryCartRepository_ItemLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryCartRepository()

	cart := &models.Cart{ID: "cart-1"}
	if err := repo.CreateCart(ctx, cart); err != nil {
		t.Fatalf("create cart: %v", err)
	}

	first := &models.LineItem{ProductID: "p1", Title: "Tee", Price: 20000, Quantity: 1}
	second := &models.LineItem{ProductID: "p2", Title: "Mug", Price: 15000, Quantity: 2}
	for _, item := range []*models.LineItem{first, second} {
		if err := repo.AddItem(ctx, "cart-1", item); err != nil {
			t.Fatalf("add item: %v", err)
		}
	}

	first.Quantity = 3
	if err := repo.UpdateItem(ctx, "cart-1", *first); err != nil {
		t.Fatalf("update item: %v", err)
	}

	got, _ := repo.GetCart(ctx, "cart-1")
	if len(got.Items) != 2 || got.Items[0].Quantity != 3 || got.Items[1].ProductID != "p2" {
		t.Fatalf("unexpected items after update: %+v", got.Items)
	}

	if err := repo.RemoveItem(ctx, "cart-1", first.ID); err != nil {
		t.Fatalf("remove item: %v", err)
	}
	if err := repo.RemoveItem(ctx, "cart-1", first.ID); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}

	got, _ = repo.GetCart(ctx, "cart-1")
	if len(got.Items) != 1 || got.Items[0].ID != second.ID {
		t.Fatalf("unexpected items after remove: %+v", got.Items)
	}

	if err := repo.DeleteCart(ctx, "cart-1"); err != nil {
		t.Fatalf("delete cart: %v", err)
	}
	if _, err := repo.GetCart(ctx, "cart-1"); !errors.Is(err, ErrCartNotFound) {
		t.Errorf("expected ErrCartNotFound after delete, got %v", err)
	}
}

func TestInMemoryCartRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryCartRepository()

	_ = repo.CreateCart(ctx, &models.Cart{ID: "cart-1"})
	_ = repo.AddItem(ctx, "cart-1", &models.LineItem{ProductID: "p1", Price: 20000, Quantity: 1})

	got, _ := repo.GetCart(ctx, "cart-1")
	got.Items[0].Quantity = 99

	again, _ := repo.GetCart(ctx, "cart-1")
	if again.Items[0].Quantity != 1 {
		t.Errorf("stored cart was mutated through a returned copy")
	}
}

func TestInMemoryCartRepository_UnknownCart(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryCartRepository()

	if err := repo.AddItem(ctx, "nope", &models.LineItem{}); !errors.Is(err, ErrCartNotFound) {
		t.Errorf("AddItem: expected ErrCartNotFound, got %v", err)
	}
	if err := repo.UpdateItem(ctx, "nope", models.LineItem{}); !errors.Is(err, ErrCartNotFound) {
		t.Errorf("UpdateItem: expected ErrCartNotFound, got %v", err)
	}
	if err := repo.RemoveItem(ctx, "nope", "x"); !errors.Is(err, ErrCartNotFound) {
		t.Errorf("RemoveItem: expected ErrCartNotFound, got %v", err)
	}
	if err := repo.DeleteCart(ctx, "nope"); !errors.Is(err, ErrCartNotFound) {
		t.Errorf("DeleteCart: expected ErrCartNotFound, got %v", err)
	}
}

func TestInMemoryProductRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryProductRepository()

	products, err := repo.GetAll(ctx)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(products) != 8 {
		t.Errorf("expected 8 products, got %d", len(products))
	}
	for i := 1; i < len(products); i++ {
		if products[i-1].ID > products[i].ID {
			t.Fatalf("products not sorted by ID")
		}
	}

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound, got %v", err)
	}

	if err := repo.SetPrice("prd-mug", 25000); err != nil {
		t.Fatalf("set price: %v", err)
	}
	mug, _ := repo.GetByID(ctx, "prd-mug")
	if mug.Price != 25000 {
		t.Errorf("expected updated price 25000, got %v", mug.Price)
	}
}
