package processor

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stripe/stripe-go/v76"

	"github.com/Lixing-Zhang/storefront-checkout/internal/models"
)

// BreakerSettings tunes the circuit breaker around the processor
type BreakerSettings struct {
	MaxFailures uint32
	OpenTimeout time.Duration
}

// BreakerClient stops calling the processor after consecutive outages and
// fails fast with gobreaker.ErrOpenState until OpenTimeout elapses.
type BreakerClient struct {
	next Client
	cb   *gobreaker.CircuitBreaker[*models.Session]
}

func NewBreakerClient(next Client, settings BreakerSettings, logger *slog.Logger) *BreakerClient {
	maxFailures := settings.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}

	cb := gobreaker.NewCircuitBreaker[*models.Session](gobreaker.Settings{
		Name:        "checkout-processor",
		MaxRequests: 1,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: isHealthyOutcome,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return &BreakerClient{next: next, cb: cb}
}

func (b *BreakerClient) CreateCheckoutSession(ctx context.Context, req *models.SessionRequest) (*models.Session, error) {
	return b.cb.Execute(func() (*models.Session, error) {
		return b.next.CreateCheckoutSession(ctx, req)
	})
}

// State exposes the breaker state for health reporting
func (b *BreakerClient) State() gobreaker.State {
	return b.cb.State()
}

// isHealthyOutcome treats request-level rejections as a working processor.
// Only transport failures, rate limiting and 5xx responses count against it.
func isHealthyOutcome(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}

	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		code := stripeErr.HTTPStatusCode
		return code >= 400 && code < 500 && code != http.StatusTooManyRequests
	}
	return false
}
