package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Lixing-Zhang/storefront-checkout/internal/models"
)

var (
	ErrCartNotFound = errors.New("cart not found")
	ErrItemNotFound = errors.New("cart item not found")
	ErrCartExists   = errors.New("cart already exists")
)

// CartRepository owns cart and line-item persistence
type CartRepository interface {
	GetCart(ctx context.Context, cartID string) (*models.Cart, error)
	CreateCart(ctx context.Context, cart *models.Cart) error
	AddItem(ctx context.Context, cartID string, item *models.LineItem) error
	UpdateItem(ctx context.Context, cartID string, item models.LineItem) error
	RemoveItem(ctx context.Context, cartID, itemID string) error
	DeleteCart(ctx context.Context, cartID string) error
}

// InMemoryCartRepository implements CartRepository with in-memory storage
type InMemoryCartRepository struct {
	mu    sync.RWMutex
	carts map[string]*models.Cart
	now   func() time.Time
}

// NewInMemoryCartRepository creates an empty in-memory cart store
func NewInMemoryCartRepository() *InMemoryCartRepository {
	return &InMemoryCartRepository{
		carts: make(map[string]*models.Cart),
		now:   time.Now,
	}
}

// GetCart returns a copy of the cart so callers never share item slices
func (r *InMemoryCartRepository) GetCart(ctx context.Context, cartID string) (*models.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, exists := r.carts[cartID]
	if !exists {
		return nil, ErrCartNotFound
	}
	return cloneCart(cart), nil
}

// CreateCart stores a new cart, assigning an ID when none is set
func (r *InMemoryCartRepository) CreateCart(ctx context.Context, cart *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cart.ID == "" {
		cart.ID = uuid.NewString()
	}
	if _, exists := r.carts[cart.ID]; exists {
		return ErrCartExists
	}

	now := r.now().UTC()
	cart.CreatedAt = now
	cart.UpdatedAt = now
	if cart.Items == nil {
		cart.Items = []models.LineItem{}
	}
	r.carts[cart.ID] = cloneCart(cart)
	return nil
}

// AddItem appends a line item, assigning an ID when none is set
func (r *InMemoryCartRepository) AddItem(ctx context.Context, cartID string, item *models.LineItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, exists := r.carts[cartID]
	if !exists {
		return ErrCartNotFound
	}

	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	cart.Items = append(cart.Items, *item)
	cart.UpdatedAt = r.now().UTC()
	return nil
}

// UpdateItem replaces quantity and price of an existing line item
func (r *InMemoryCartRepository) UpdateItem(ctx context.Context, cartID string, item models.LineItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, exists := r.carts[cartID]
	if !exists {
		return ErrCartNotFound
	}

	for i := range cart.Items {
		if cart.Items[i].ID == item.ID {
			cart.Items[i].Quantity = item.Quantity
			cart.Items[i].Price = item.Price
			cart.UpdatedAt = r.now().UTC()
			return nil
		}
	}
	return ErrItemNotFound
}

// RemoveItem deletes a line item, preserving the order of the others
func (r *InMemoryCartRepository) RemoveItem(ctx context.Context, cartID, itemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, exists := r.carts[cartID]
	if !exists {
		return ErrCartNotFound
	}

	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			cart.UpdatedAt = r.now().UTC()
			return nil
		}
	}
	return ErrItemNotFound
}

// DeleteCart removes the cart and its items
func (r *InMemoryCartRepository) DeleteCart(ctx context.Context, cartID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.carts[cartID]; !exists {
		return ErrCartNotFound
	}
	delete(r.carts, cartID)
	return nil
}

func cloneCart(c *models.Cart) *models.Cart {
	out := *c
	out.Items = make([]models.LineItem, len(c.Items))
	copy(out.Items, c.Items)
	return &out
}
