package repository

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/Lixing-Zhang/storefront-checkout/internal/models"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository defines the interface for read-only catalog access
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
}

// InMemoryProductRepository implements ProductRepository with in-memory storage
type InMemoryProductRepository struct {
	mu       sync.RWMutex
	products map[string]models.Product
}

// NewInMemoryProductRepository creates a new in-memory catalog with seed data.
// Prices are whole rupiah as published by the content API.
func NewInMemoryProductRepository() *InMemoryProductRepository {
	products := map[string]models.Product{
		"prd-tee-basic":    {ID: "prd-tee-basic", Title: "Basic Cotton Tee", Price: 89000, Category: "Apparel", Image: "https://cdn.example.com/tee-basic.jpg"},
		"prd-hoodie":       {ID: "prd-hoodie", Title: "Fleece Hoodie", Price: 249000, Category: "Apparel", Image: "https://cdn.example.com/hoodie.jpg"},
		"prd-cap":          {ID: "prd-cap", Title: "Logo Cap", Price: 65000, Category: "Accessories", Image: "https://cdn.example.com/cap.jpg"},
		"prd-tote":         {ID: "prd-tote", Title: "Canvas Tote Bag", Price: 45000, Category: "Accessories", Image: "https://cdn.example.com/tote.jpg"},
		"prd-mug":          {ID: "prd-mug", Title: "Ceramic Mug", Price: 20000, Category: "Home", Image: "https://cdn.example.com/mug.jpg"},
		"prd-sticker-pack": {ID: "prd-sticker-pack", Title: "Sticker Pack", Price: 5000, Category: "Accessories", Image: "https://cdn.example.com/stickers.jpg"},
		"prd-keychain":     {ID: "prd-keychain", Title: "Enamel Keychain", Price: 10000, Category: "Accessories"},
		"prd-gift-card":    {ID: "prd-gift-card", Title: "Lucky Draw Prize", Price: 0, Category: "Promo"},
	}

	return &InMemoryProductRepository{
		products: products,
	}
}

// GetAll returns all products ordered by ID
func (r *InMemoryProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]models.Product, 0, len(r.products))
	for _, product := range r.products {
		products = append(products, product)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

// GetByID returns a product by its ID
func (r *InMemoryProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, exists := r.products[id]
	if !exists {
		return nil, ErrProductNotFound
	}
	return &product, nil
}

// SetPrice changes a catalog price, used to simulate a content update
func (r *InMemoryProductRepository) SetPrice(id string, price float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, exists := r.products[id]
	if !exists {
		return ErrProductNotFound
	}
	product.Price = price
	r.products[id] = product
	return nil
}

// Remove delists a product from the catalog
func (r *InMemoryProductRepository) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.products, id)
}
