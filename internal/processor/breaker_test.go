package processor

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"

	"github.com/Lixing-Zhang/storefront-checkout/internal/models"
	"github.com/Lixing-Zhang/storefront-checkout/pkg/logger"
)

type fakeClient struct {
	calls int
	err   error
}

func (f *fakeClient) CreateCheckoutSession(ctx context.Context, req *models.SessionRequest) (*models.Session, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &models.Session{ID: "cs_1", URL: "https://pay.example.com/cs_1"}, nil
}

func TestBreakerClient_PassesThrough(t *testing.T) {
	next := &fakeClient{}
	b := NewBreakerClient(next, BreakerSettings{MaxFailures: 2, OpenTimeout: time.Minute}, logger.New("error"))

	s, err := b.CreateCheckoutSession(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, "cs_1", s.ID)
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreakerClient_OpensAfterConsecutiveFailures(t *testing.T) {
	next := &fakeClient{err: errors.New("dial tcp: connection refused")}
	b := NewBreakerClient(next, BreakerSettings{MaxFailures: 2, OpenTimeout: time.Minute}, logger.New("error"))

	for range 2 {
		_, err := b.CreateCheckoutSession(context.Background(), sampleRequest())
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())

	_, err := b.CreateCheckoutSession(context.Background(), sampleRequest())
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 2, next.calls, "open breaker must not call the processor")
}

func TestBreakerClient_ClientErrorsDoNotTrip(t *testing.T) {
	next := &fakeClient{err: &stripe.Error{HTTPStatusCode: http.StatusBadRequest, Code: "amount_too_small"}}
	b := NewBreakerClient(next, BreakerSettings{MaxFailures: 2, OpenTimeout: time.Minute}, logger.New("error"))

	for range 5 {
		_, err := b.CreateCheckoutSession(context.Background(), sampleRequest())
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateClosed, b.State())
	assert.Equal(t, 5, next.calls)
}

func TestIsHealthyOutcome(t *testing.T) {
	assert.True(t, isHealthyOutcome(nil))
	assert.True(t, isHealthyOutcome(context.Canceled))
	assert.True(t, isHealthyOutcome(&stripe.Error{HTTPStatusCode: http.StatusBadRequest}))
	assert.False(t, isHealthyOutcome(&stripe.Error{HTTPStatusCode: http.StatusTooManyRequests}))
	assert.False(t, isHealthyOutcome(&stripe.Error{HTTPStatusCode: http.StatusBadGateway}))
	assert.False(t, isHealthyOutcome(errors.New("timeout")))
}
