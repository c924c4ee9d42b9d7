package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
// Following 12-factor app principles, all config is loaded from environment variables
type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Checkout CheckoutConfig
	Stripe   StripeConfig
	Breaker  BreakerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	LogLevel string
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
}

type AuthConfig struct {
	APIKeys []string // Valid API keys for authentication
}

// CheckoutConfig carries the price policy and session defaults
type CheckoutConfig struct {
	BaseURL          string
	Currency         string
	MinimumMajor     int64
	MinorFactor      int64
	SanityFloorMinor int64
	FloorMode        string
	ShippingName     string
	ShippingMajor    int64
	DeliveryMinDays  int64
	DeliveryMaxDays  int64
	AllowedCountries []string
	LeaseTTL         time.Duration
}

type StripeConfig struct {
	SecretKey string
	Timeout   time.Duration
}

type BreakerConfig struct {
	MaxFailures uint32
	OpenTimeout time.Duration
}

// DatabaseConfig selects the Postgres cart store when DSN is set
type DatabaseConfig struct {
	DSN string
}

// RedisConfig selects the Redis checkout lease when Addr is set
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			ReadTimeout:     getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout:    getEnvAsInt("WRITE_TIMEOUT", 15),
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 30),
		},
		Auth: AuthConfig{
			APIKeys: getEnvAsSlice("API_KEYS", []string{"apitest"}),
		},
		Checkout: CheckoutConfig{
			BaseURL:          strings.TrimRight(getEnv("BASE_URL", "http://localhost:3000"), "/"),
			Currency:         strings.ToLower(getEnv("CHECKOUT_CURRENCY", "idr")),
			MinimumMajor:     getEnvAsInt64("CHECKOUT_MINIMUM_MAJOR", 15000),
			MinorFactor:      getEnvAsInt64("CHECKOUT_MINOR_FACTOR", 100),
			SanityFloorMinor: getEnvAsInt64("CHECKOUT_SANITY_FLOOR_MINOR", 1000),
			FloorMode:        strings.ToLower(getEnv("CHECKOUT_FLOOR_MODE", "per_item")),
			ShippingName:     getEnv("SHIPPING_DISPLAY_NAME", "Standard Shipping"),
			ShippingMajor:    getEnvAsInt64("SHIPPING_AMOUNT_MAJOR", 50000),
			DeliveryMinDays:  getEnvAsInt64("SHIPPING_DELIVERY_MIN_DAYS", 3),
			DeliveryMaxDays:  getEnvAsInt64("SHIPPING_DELIVERY_MAX_DAYS", 7),
			AllowedCountries: getEnvAsSlice("SHIPPING_ALLOWED_COUNTRIES", []string{"ID"}),
			LeaseTTL:         getEnvAsDuration("CHECKOUT_LEASE_TTL", 30*time.Second),
		},
		Stripe: StripeConfig{
			SecretKey: os.Getenv("STRIPE_SECRET_KEY"),
			Timeout:   getEnvAsDuration("STRIPE_TIMEOUT", 20*time.Second),
		},
		Breaker: BreakerConfig{
			MaxFailures: uint32(getEnvAsInt("BREAKER_MAX_FAILURES", 5)),
			OpenTimeout: getEnvAsDuration("BREAKER_OPEN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			DSN: os.Getenv("DATABASE_URL"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if len(c.Auth.APIKeys) == 0 {
		return fmt.Errorf("at least one API key must be configured")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	if u, err := url.Parse(c.Checkout.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("BASE_URL must be an absolute URL, got %q", c.Checkout.BaseURL)
	}

	if c.Checkout.MinimumMajor <= 0 {
		return fmt.Errorf("CHECKOUT_MINIMUM_MAJOR must be positive")
	}

	if c.Checkout.MinorFactor <= 0 {
		return fmt.Errorf("CHECKOUT_MINOR_FACTOR must be positive")
	}

	if c.Checkout.FloorMode != "per_item" && c.Checkout.FloorMode != "cart_total" {
		return fmt.Errorf("invalid floor mode: %s (must be per_item or cart_total)", c.Checkout.FloorMode)
	}

	if c.Checkout.DeliveryMinDays <= 0 || c.Checkout.DeliveryMaxDays < c.Checkout.DeliveryMinDays {
		return fmt.Errorf("invalid delivery window: %d-%d days", c.Checkout.DeliveryMinDays, c.Checkout.DeliveryMaxDays)
	}

	if c.Checkout.LeaseTTL <= 0 {
		return fmt.Errorf("CHECKOUT_LEASE_TTL must be positive")
	}

	return nil
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
