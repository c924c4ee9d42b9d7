package models

import "time"

// MaxItemQuantity caps the quantity of a single line item
const MaxItemQuantity = 10

// Cart is a persisted shopping cart. UserID is empty for anonymous carts.
type Cart struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId,omitempty"`
	Items     []LineItem `json:"items"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// LineItem is one product-plus-quantity entry within a cart.
// Price is the catalog price in display units, snapshotted when the item was added.
type LineItem struct {
	ID        string  `json:"id"`
	ProductID string  `json:"productId"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Image     string  `json:"image,omitempty"`
}

// Subtotal returns the displayed total of the cart before any checkout normalization
func (c *Cart) Subtotal() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// CreateCartRequest represents an incoming request to start a cart
type CreateCartRequest struct {
	CartID string `json:"cartId,omitempty"`
}

// AddItemRequest represents an incoming add-to-cart request
type AddItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// UpdateItemRequest represents an incoming quantity change
type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}
