package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Lixing-Zhang/storefront-checkout/internal/models"
)

// SessionBuilder creates hosted checkout sessions for carts
type SessionBuilder interface {
	BuildSession(ctx context.Context, cartID string) (string, error)
}

// CheckoutHandler handles checkout HTTP requests
type CheckoutHandler struct {
	builder SessionBuilder
	logger  *slog.Logger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(builder SessionBuilder, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		builder: builder,
		logger:  logger,
	}
}

// CreateSession handles POST /api/checkout/{cartId}
// - 200: {"url": ...} redirect target on the payment page
// - 404: cart not found
// - 409: a checkout for this cart is already running
// - 422: the cart cannot be charged as priced
// - 502: the payment provider refused or is unavailable
func (h *CheckoutHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cartId")

	url, err := h.builder.BuildSession(r.Context(), cartID)
	if err != nil {
		WriteAppError(w, err, h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, models.CheckoutResponse{URL: url}, h.logger)
}
