package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"github.com/stripe/stripe-go/v76"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Lixing-Zhang/storefront-checkout/internal/checkout"
	"github.com/Lixing-Zhang/storefront-checkout/internal/config"
	"github.com/Lixing-Zhang/storefront-checkout/internal/db"
	"github.com/Lixing-Zhang/storefront-checkout/internal/handlers"
	"github.com/Lixing-Zhang/storefront-checkout/internal/lease"
	"github.com/Lixing-Zhang/storefront-checkout/internal/middleware"
	"github.com/Lixing-Zhang/storefront-checkout/internal/pricing"
	"github.com/Lixing-Zhang/storefront-checkout/internal/processor"
	"github.com/Lixing-Zhang/storefront-checkout/internal/repository"
	"github.com/Lixing-Zhang/storefront-checkout/internal/service"
	"github.com/Lixing-Zhang/storefront-checkout/pkg/logger"
)

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	log.Info("starting storefront checkout server",
		"port", cfg.Server.Port,
		"host", cfg.Server.Host,
		"log_level", cfg.LogLevel,
		"currency", cfg.Checkout.Currency,
		"floor_mode", cfg.Checkout.FloorMode,
	)

	ctx := context.Background()

	mode, err := pricing.ParseFloorMode(cfg.Checkout.FloorMode)
	if err != nil {
		return err
	}
	policy := pricing.Policy{
		Currency:         cfg.Checkout.Currency,
		MinimumMajor:     cfg.Checkout.MinimumMajor,
		MinorFactor:      cfg.Checkout.MinorFactor,
		SanityFloorMinor: cfg.Checkout.SanityFloorMinor,
		Mode:             mode,
	}

	checks := make(map[string]handlers.HealthCheck)

	// Initialize repositories
	productRepo := repository.NewInMemoryProductRepository()

	var cartRepo repository.CartRepository
	if cfg.Database.DSN != "" {
		if err := db.RunMigrations(cfg.Database.DSN, log); err != nil {
			return fmt.Errorf("migrate cart schema: %w", err)
		}
		pool, err := db.NewPool(ctx, cfg.Database.DSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()

		cartRepo = repository.NewPostgresCartRepository(pool)
		checks["postgres"] = pool.Ping
		log.Info("cart store: postgres")
	} else {
		cartRepo = repository.NewInMemoryCartRepository()
		log.Warn("DATABASE_URL not set, carts are kept in memory")
	}

	var locker lease.Locker
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		locker = lease.NewRedisLocker(rdb)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		log.Info("checkout lease: redis", "addr", cfg.Redis.Addr)
	} else {
		locker = lease.NewMemoryLocker()
		log.Warn("REDIS_ADDR not set, checkout leases are local to this process")
	}

	// Payment processor: Stripe behind a circuit breaker, never retried automatically
	if cfg.Stripe.SecretKey == "" {
		log.Warn("STRIPE_SECRET_KEY not set, checkout sessions will be rejected")
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		HTTPClient: &http.Client{
			Timeout:   cfg.Stripe.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		MaxNetworkRetries: stripe.Int64(0),
	})
	payments := processor.NewBreakerClient(
		processor.NewStripeClient(cfg.Stripe.SecretKey, backend, log),
		processor.BreakerSettings{
			MaxFailures: cfg.Breaker.MaxFailures,
			OpenTimeout: cfg.Breaker.OpenTimeout,
		},
		log,
	)

	// Initialize services
	productService := service.NewProductService(productRepo, policy)
	cartService := service.NewCartService(cartRepo, productRepo, policy, log)
	builder := checkout.NewBuilder(cartRepo, payments, locker, policy, checkout.Settings{
		BaseURL:          cfg.Checkout.BaseURL,
		ShippingName:     cfg.Checkout.ShippingName,
		ShippingMajor:    cfg.Checkout.ShippingMajor,
		DeliveryMinDays:  cfg.Checkout.DeliveryMinDays,
		DeliveryMaxDays:  cfg.Checkout.DeliveryMaxDays,
		AllowedCountries: cfg.Checkout.AllowedCountries,
		LeaseTTL:         cfg.Checkout.LeaseTTL,
	}, log)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(log, checks)
	productHandler := handlers.NewProductHandler(productService, log)
	cartHandler := handlers.NewCartHandler(cartService, log)
	checkoutHandler := handlers.NewCheckoutHandler(builder, log)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.Checkout.BaseURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token", "api_key", middleware.HeaderUserID, middleware.HeaderUserEmail},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", healthHandler.ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(cfg.Auth))
		r.Use(middleware.Identity)

		r.Get("/product", productHandler.ListProducts)
		r.Get("/product/{productId}", productHandler.GetProduct)

		r.Post("/cart", cartHandler.CreateCart)
		r.Route("/cart/{cartId}", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.DeleteCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{itemId}", cartHandler.UpdateItem)
			r.Delete("/items/{itemId}", cartHandler.RemoveItem)
			r.Get("/validation", cartHandler.ValidateCart)
			r.Post("/reconcile", cartHandler.ReconcileCart)
		})

		r.Post("/checkout/{cartId}", checkoutHandler.CreateSession)
	})

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      otelhttp.NewHandler(r, "storefront-checkout"),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed to start: %w", err)
	case <-quit:
	}

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server stopped gracefully")
	return nil
}
