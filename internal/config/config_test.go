package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "idr", cfg.Checkout.Currency)
	assert.Equal(t, int64(15000), cfg.Checkout.MinimumMajor)
	assert.Equal(t, int64(100), cfg.Checkout.MinorFactor)
	assert.Equal(t, int64(1000), cfg.Checkout.SanityFloorMinor)
	assert.Equal(t, "per_item", cfg.Checkout.FloorMode)
	assert.Equal(t, int64(50000), cfg.Checkout.ShippingMajor)
	assert.Equal(t, []string{"ID"}, cfg.Checkout.AllowedCountries)
	assert.Equal(t, 30*time.Second, cfg.Checkout.LeaseTTL)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("BASE_URL", "https://shop.example.com/")
	t.Setenv("CHECKOUT_MINIMUM_MAJOR", "20000")
	t.Setenv("CHECKOUT_FLOOR_MODE", "CART_TOTAL")
	t.Setenv("CHECKOUT_LEASE_TTL", "5s")
	t.Setenv("API_KEYS", "a,b")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://shop.example.com", cfg.Checkout.BaseURL)
	assert.Equal(t, int64(20000), cfg.Checkout.MinimumMajor)
	assert.Equal(t, "cart_total", cfg.Checkout.FloorMode)
	assert.Equal(t, 5*time.Second, cfg.Checkout.LeaseTTL)
	assert.Equal(t, []string{"a", "b"}, cfg.Auth.APIKeys)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad log level", "LOG_LEVEL", "verbose"},
		{"relative base url", "BASE_URL", "shop.example.com"},
		{"zero minimum", "CHECKOUT_MINIMUM_MAJOR", "0"},
		{"unknown floor mode", "CHECKOUT_FLOOR_MODE", "per_order"},
		{"inverted delivery window", "SHIPPING_DELIVERY_MIN_DAYS", "9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
