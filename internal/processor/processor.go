// Package processor talks to the hosted payment page provider.
package processor

import (
	"context"

	"github.com/Lixing-Zhang/storefront-checkout/internal/models"
)

// Client creates hosted checkout sessions
type Client interface {
	CreateCheckoutSession(ctx context.Context, req *models.SessionRequest) (*models.Session, error)
}
