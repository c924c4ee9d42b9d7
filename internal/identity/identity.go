// Package identity carries the optional signed-in user through a request context.
package identity

import (
	"context"

	"github.com/Lixing-Zhang/storefront-checkout/internal/models"
)

type ctxKey struct{}

// WithUser returns a copy of ctx carrying user. A nil user leaves ctx anonymous.
func WithUser(ctx context.Context, user *models.User) context.Context {
	if user == nil {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, user)
}

// FromContext returns the current user, or nil for anonymous callers
func FromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(ctxKey{}).(*models.User)
	return user
}
