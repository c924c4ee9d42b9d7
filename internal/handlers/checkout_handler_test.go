package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lixing-Zhang/storefront-checkout/internal/apperr"
	"github.com/Lixing-Zhang/storefront-checkout/internal/checkout"
	"github.com/Lixing-Zhang/storefront-checkout/internal/lease"
	"github.com/Lixing-Zhang/storefront-checkout/internal/middleware"
	"github.com/Lixing-Zhang/storefront-checkout/internal/models"
	"github.com/Lixing-Zhang/storefront-checkout/internal/pricing"
	"github.com/Lixing-Zhang/storefront-checkout/internal/repository"
	"github.com/Lixing-Zhang/storefront-checkout/pkg/logger"
)

type stubBuilder struct {
	url string
	err error
}

func (s stubBuilder) BuildSession(ctx context.Context, cartID string) (string, error) {
	return s.url, s.err
}

func serveCheckout(builder SessionBuilder, cartID string) *httptest.ResponseRecorder {
	h := NewCheckoutHandler(builder, logger.NewWithWriter(io.Discard, "error"))
	r := chi.NewRouter()
	r.Post("/api/checkout/{cartId}", h.CreateSession)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/checkout/"+cartID, nil))
	return w
}

func TestCheckoutHandler_Success(t *testing.T) {
	w := serveCheckout(stubBuilder{url: "https://checkout.stripe.com/c/pay/cs_1"}, "cart-1")

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.CheckoutResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_1", resp.URL)
}

func TestCheckoutHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"not found", &apperr.Error{Kind: apperr.KindCartNotFound, CartID: "cart-1"}, http.StatusNotFound, "cart_not_found"},
		{"empty", &apperr.Error{Kind: apperr.KindEmptyCart}, http.StatusUnprocessableEntity, "empty_cart"},
		{"all free", &apperr.Error{Kind: apperr.KindAllItemsFree}, http.StatusUnprocessableEntity, "all_items_free"},
		{"below minimum", &apperr.Error{Kind: apperr.KindBelowTransactionMinimum, AmountMajor: 10000, MinimumMajor: 15000}, http.StatusUnprocessableEntity, "below_transaction_minimum"},
		{"suspicious", &apperr.Error{Kind: apperr.KindSuspiciousAmount, ItemIndexes: []int{0}}, http.StatusUnprocessableEntity, "suspicious_amount"},
		{"in progress", &apperr.Error{Kind: apperr.KindCheckoutInProgress}, http.StatusConflict, "checkout_in_progress"},
		{"processor", &apperr.Error{Kind: apperr.KindProcessorRejected, Cause: errors.New("boom")}, http.StatusBadGateway, "processor_rejected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serveCheckout(stubBuilder{err: tt.err}, "cart-1")
			assert.Equal(t, tt.status, w.Code)

			var resp ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, tt.kind, resp.Kind)
			assert.NotEmpty(t, resp.Error)
			assert.NotContains(t, resp.Error, "boom", "causes stay out of user-facing messages")
		})
	}
}

func TestCheckoutHandler_BelowMinimumStatesShortfall(t *testing.T) {
	err := &apperr.Error{Kind: apperr.KindBelowTransactionMinimum, Currency: "idr", AmountMajor: 10000, MinimumMajor: 15000}
	w := serveCheckout(stubBuilder{err: err}, "cart-1")

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "Rp 15.000", resp.Minimum)
	assert.Equal(t, "Rp 5.000", resp.Shortfall)
}

func TestCheckoutHandler_UnexpectedError(t *testing.T) {
	w := serveCheckout(stubBuilder{err: errors.New("redis: connection refused")}, "cart-1")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "redis")
}

type recordingProcessor struct {
	req *models.SessionRequest
}

func (p *recordingProcessor) CreateCheckoutSession(ctx context.Context, req *models.SessionRequest) (*models.Session, error) {
	p.req = req
	return &models.Session{ID: "cs_1", URL: "https://checkout.stripe.com/c/pay/cs_1"}, nil
}

func TestCheckoutHandler_EndToEnd(t *testing.T) {
	log := logger.NewWithWriter(io.Discard, "error")
	carts := repository.NewInMemoryCartRepository()
	processor := &recordingProcessor{}
	builder := checkout.NewBuilder(carts, processor, lease.NewMemoryLocker(), pricing.DefaultPolicy(), checkout.Settings{
		BaseURL:          "https://shop.example.com",
		ShippingName:     "Standard Shipping",
		ShippingMajor:    50000,
		DeliveryMinDays:  3,
		DeliveryMaxDays:  7,
		AllowedCountries: []string{"ID"},
		LeaseTTL:         time.Minute,
	}, log)

	ctx := context.Background()
	require.NoError(t, carts.CreateCart(ctx, &models.Cart{ID: "cart-1"}))
	require.NoError(t, carts.AddItem(ctx, "cart-1", &models.LineItem{Title: "Sticker Pack", Price: 5000, Quantity: 1}))

	h := NewCheckoutHandler(builder, log)
	r := chi.NewRouter()
	r.Use(middleware.Identity)
	r.Post("/api/checkout/{cartId}", h.CreateSession)

	req := httptest.NewRequest(http.MethodPost, "/api/checkout/cart-1", nil)
	req.Header.Set(middleware.HeaderUserID, "user-9")
	req.Header.Set(middleware.HeaderUserEmail, "nine@example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, processor.req)
	assert.Equal(t, int64(1500000), processor.req.LineItems[0].UnitAmountMinor)
	assert.Equal(t, "user-9", processor.req.Metadata["userId"])
	assert.Equal(t, "nine@example.com", processor.req.CustomerEmail)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/checkout/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
