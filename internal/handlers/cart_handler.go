package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Lixing-Zhang/storefront-checkout/internal/apperr"
	"github.com/Lixing-Zhang/storefront-checkout/internal/identity"
	"github.com/Lixing-Zhang/storefront-checkout/internal/models"
	"github.com/Lixing-Zhang/storefront-checkout/internal/money"
	"github.com/Lixing-Zhang/storefront-checkout/internal/pricing"
	"github.com/Lixing-Zhang/storefront-checkout/internal/repository"
	"github.com/Lixing-Zhang/storefront-checkout/internal/service"
)

// CartHandler handles cart HTTP requests
type CartHandler struct {
	service *service.CartService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(service *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger,
	}
}

// CartResponse is a cart with its displayed subtotal.
// The subtotal is what the shopper sees, not necessarily what checkout charges.
type CartResponse struct {
	*models.Cart
	Subtotal        int64  `json:"subtotal"`
	DisplaySubtotal string `json:"displaySubtotal"`
}

// ValidationResponse reports whether a cart would pass the price policy
type ValidationResponse struct {
	Valid          bool   `json:"valid"`
	Total          int64  `json:"total"`
	DisplayTotal   string `json:"displayTotal"`
	Minimum        int64  `json:"minimum"`
	DisplayMinimum string `json:"displayMinimum"`
	InvalidItems   []int  `json:"invalidItems"`
	Message        string `json:"message,omitempty"`
}

func toCartResponse(c *models.Cart) CartResponse {
	subtotal := pricing.RoundMajor(c.Subtotal())
	return CartResponse{
		Cart:            c,
		Subtotal:        subtotal,
		DisplaySubtotal: money.FormatIDR(subtotal),
	}
}

// CreateCart handles POST /api/cart
func (h *CartHandler) CreateCart(w http.ResponseWriter, r *http.Request) {
	// The body is optional
	var req models.CreateCartRequest
	if err := readJSON(w, r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	cart, err := h.service.GetOrCreate(r.Context(), req.CartID, identity.FromContext(r.Context()))
	if err != nil {
		h.writeCartError(w, err, "")
		return
	}

	WriteJSON(w, http.StatusCreated, toCartResponse(cart), h.logger)
}

// GetCart handles GET /api/cart/{cartId}
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cartId")

	cart, err := h.service.GetCart(r.Context(), cartID)
	if err != nil {
		h.writeCartError(w, err, cartID)
		return
	}

	WriteJSON(w, http.StatusOK, toCartResponse(cart), h.logger)
}

// AddItem handles POST /api/cart/{cartId}/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cartId")

	var req models.AddItemRequest
	if err := readJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	cart, err := h.service.AddItem(r.Context(), cartID, req.ProductID, req.Quantity)
	if err != nil {
		h.writeCartError(w, err, cartID)
		return
	}

	WriteJSON(w, http.StatusOK, toCartResponse(cart), h.logger)
}

// UpdateItem handles PUT /api/cart/{cartId}/items/{itemId}
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cartId")
	itemID := chi.URLParam(r, "itemId")

	var req models.UpdateItemRequest
	if err := readJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	cart, err := h.service.UpdateQuantity(r.Context(), cartID, itemID, req.Quantity)
	if err != nil {
		h.writeCartError(w, err, cartID)
		return
	}

	WriteJSON(w, http.StatusOK, toCartResponse(cart), h.logger)
}

// RemoveItem handles DELETE /api/cart/{cartId}/items/{itemId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cartId")

	cart, err := h.service.RemoveItem(r.Context(), cartID, chi.URLParam(r, "itemId"))
	if err != nil {
		h.writeCartError(w, err, cartID)
		return
	}

	WriteJSON(w, http.StatusOK, toCartResponse(cart), h.logger)
}

// DeleteCart handles DELETE /api/cart/{cartId}
func (h *CartHandler) DeleteCart(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cartId")

	if err := h.service.Clear(r.Context(), cartID); err != nil {
		h.writeCartError(w, err, cartID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ValidateCart handles GET /api/cart/{cartId}/validation.
// A cart that fails the price policy is still a 200 with valid=false.
func (h *CartHandler) ValidateCart(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cartId")

	v, err := h.service.Validate(r.Context(), cartID)

	var appErr *apperr.Error
	if err != nil && !errors.As(err, &appErr) {
		h.writeCartError(w, err, cartID)
		return
	}

	resp := ValidationResponse{
		Valid:          err == nil,
		Total:          v.Total,
		DisplayTotal:   money.FormatIDR(v.Total),
		Minimum:        v.MinimumMajor,
		DisplayMinimum: money.FormatIDR(v.MinimumMajor),
		InvalidItems:   v.InvalidItems,
	}
	if appErr != nil {
		resp.Message = appErr.Message()
	}

	WriteJSON(w, http.StatusOK, resp, h.logger)
}

// ReconcileCart handles POST /api/cart/{cartId}/reconcile
func (h *CartHandler) ReconcileCart(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cartId")

	result, err := h.service.Reconcile(r.Context(), cartID)
	if err != nil {
		h.writeCartError(w, err, cartID)
		return
	}

	WriteJSON(w, http.StatusOK, result, h.logger)
}

func (h *CartHandler) writeCartError(w http.ResponseWriter, err error, cartID string) {
	switch {
	case errors.Is(err, repository.ErrCartNotFound):
		WriteError(w, http.StatusNotFound, "Cart not found", h.logger)
	case errors.Is(err, repository.ErrItemNotFound):
		WriteError(w, http.StatusNotFound, "Cart item not found", h.logger)
	case errors.Is(err, repository.ErrProductNotFound):
		WriteError(w, http.StatusUnprocessableEntity, "Product not found", h.logger)
	case errors.Is(err, service.ErrInvalidQuantity), errors.Is(err, service.ErrInvalidProduct):
		WriteError(w, http.StatusBadRequest, err.Error(), h.logger)
	default:
		h.logger.Error("cart operation failed", "cart_id", cartID, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
	}
}
