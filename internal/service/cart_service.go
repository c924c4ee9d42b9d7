package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/Lixing-Zhang/storefront-checkout/internal/models"
	"github.com/Lixing-Zhang/storefront-checkout/internal/pricing"
	"github.com/Lixing-Zhang/storefront-checkout/internal/repository"
)

var (
	ErrInvalidQuantity = fmt.Errorf("quantity must be between 1 and %d", models.MaxItemQuantity)
	ErrInvalidProduct  = errors.New("product id is required")
)

// priceDriftTolerance is how far a snapshot may drift from the catalog before
// Reconcile rewrites it, in major units
const priceDriftTolerance = 1.0

// ReconcileResult summarizes a price re-sync against the catalog
type ReconcileResult struct {
	Updated   int          `json:"updated"`
	Unchanged int          `json:"unchanged"`
	Missing   int          `json:"missing"`
	Cart      *models.Cart `json:"cart"`
}

// CartService handles cart mutations. Checkout only ever reads what this writes.
type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	policy   pricing.Policy
	logger   *slog.Logger
}

// NewCartService creates a new cart service
func NewCartService(carts repository.CartRepository, products repository.ProductRepository, policy pricing.Policy, logger *slog.Logger) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		policy:   policy,
		logger:   logger,
	}
}

// GetOrCreate returns the cart with cartID, creating an empty one when it does
// not exist. An empty cartID always creates a new cart.
func (s *CartService) GetOrCreate(ctx context.Context, cartID string, user *models.User) (*models.Cart, error) {
	if cartID != "" {
		cart, err := s.carts.GetCart(ctx, cartID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, repository.ErrCartNotFound) {
			return nil, err
		}
	}

	cart := &models.Cart{ID: cartID}
	if user != nil {
		cart.UserID = user.ID
	}

	err := s.carts.CreateCart(ctx, cart)
	if errors.Is(err, repository.ErrCartExists) {
		// Lost a race with a concurrent create
		return s.carts.GetCart(ctx, cartID)
	}
	if err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}

	s.logger.Info("cart created", "cart_id", cart.ID, "anonymous", cart.UserID == "")
	return cart, nil
}

// GetCart returns an existing cart
func (s *CartService) GetCart(ctx context.Context, cartID string) (*models.Cart, error) {
	return s.carts.GetCart(ctx, cartID)
}

// AddItem snapshots the product's catalog title, price and image into the cart.
// Adding a product already in the cart merges quantities up to the cap.
func (s *CartService) AddItem(ctx context.Context, cartID, productID string, quantity int) (*models.Cart, error) {
	if productID == "" {
		return nil, ErrInvalidProduct
	}
	if quantity < 1 || quantity > models.MaxItemQuantity {
		return nil, ErrInvalidQuantity
	}

	cart, err := s.carts.GetCart(ctx, cartID)
	if err != nil {
		return nil, err
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	for _, existing := range cart.Items {
		if existing.ProductID != productID {
			continue
		}
		existing.Quantity = min(existing.Quantity+quantity, models.MaxItemQuantity)
		if err := s.carts.UpdateItem(ctx, cartID, existing); err != nil {
			return nil, err
		}
		return s.carts.GetCart(ctx, cartID)
	}

	item := product.Snapshot(quantity)
	if err := s.carts.AddItem(ctx, cartID, &item); err != nil {
		return nil, err
	}

	return s.carts.GetCart(ctx, cartID)
}

// UpdateQuantity sets a line item's quantity; zero removes the item
func (s *CartService) UpdateQuantity(ctx context.Context, cartID, itemID string, quantity int) (*models.Cart, error) {
	if quantity == 0 {
		return s.RemoveItem(ctx, cartID, itemID)
	}
	if quantity < 0 || quantity > models.MaxItemQuantity {
		return nil, ErrInvalidQuantity
	}

	cart, err := s.carts.GetCart(ctx, cartID)
	if err != nil {
		return nil, err
	}

	item, ok := findItem(cart, itemID)
	if !ok {
		return nil, repository.ErrItemNotFound
	}

	item.Quantity = quantity
	if err := s.carts.UpdateItem(ctx, cartID, item); err != nil {
		return nil, err
	}

	return s.carts.GetCart(ctx, cartID)
}

// RemoveItem deletes one line item
func (s *CartService) RemoveItem(ctx context.Context, cartID, itemID string) (*models.Cart, error) {
	if err := s.carts.RemoveItem(ctx, cartID, itemID); err != nil {
		return nil, err
	}
	return s.carts.GetCart(ctx, cartID)
}

// Clear deletes the cart and all of its items
func (s *CartService) Clear(ctx context.Context, cartID string) error {
	return s.carts.DeleteCart(ctx, cartID)
}

// Reconcile re-syncs snapshotted prices with the catalog. Items whose product
// has left the catalog are counted as missing and left alone.
func (s *CartService) Reconcile(ctx context.Context, cartID string) (*ReconcileResult, error) {
	cart, err := s.carts.GetCart(ctx, cartID)
	if err != nil {
		return nil, err
	}

	result := &ReconcileResult{}
	for _, item := range cart.Items {
		product, err := s.products.GetByID(ctx, item.ProductID)
		if errors.Is(err, repository.ErrProductNotFound) {
			result.Missing++
			continue
		}
		if err != nil {
			return nil, err
		}

		if math.Abs(item.Price-product.Price) <= priceDriftTolerance {
			result.Unchanged++
			continue
		}

		s.logger.Info("cart price reconciled",
			"cart_id", cartID,
			"item_id", item.ID,
			"product_id", item.ProductID,
			"old_price", item.Price,
			"new_price", product.Price,
		)
		item.Price = product.Price
		if err := s.carts.UpdateItem(ctx, cartID, item); err != nil {
			return nil, err
		}
		result.Updated++
	}

	result.Cart, err = s.carts.GetCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Validate checks the cart's snapshot prices against the price policy before
// checkout. A policy failure is returned alongside the computed validation.
func (s *CartService) Validate(ctx context.Context, cartID string) (pricing.Validation, error) {
	cart, err := s.carts.GetCart(ctx, cartID)
	if err != nil {
		return pricing.Validation{}, err
	}

	items := make([]pricing.Item, len(cart.Items))
	for i, li := range cart.Items {
		items[i] = pricing.Item{Price: li.Price, Quantity: li.Quantity}
	}
	return s.policy.ValidateCart(items)
}

func findItem(cart *models.Cart, itemID string) (models.LineItem, bool) {
	for _, item := range cart.Items {
		if item.ID == itemID {
			return item, true
		}
	}
	return models.LineItem{}, false
}
