package middleware

import (
	"net/http"
	"strings"

	"github.com/Lixing-Zhang/storefront-checkout/internal/identity"
	"github.com/Lixing-Zhang/storefront-checkout/internal/models"
)

const (
	HeaderUserID    = "X-User-Id"
	HeaderUserEmail = "X-User-Email"
)

// Identity attaches the signed-in user forwarded by the gateway to the request
// context. Requests without a user id stay anonymous.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(HeaderUserID))
		if userID == "" {
			next.ServeHTTP(w, r)
			return
		}

		user := &models.User{
			ID:    userID,
			Email: strings.TrimSpace(r.Header.Get(HeaderUserEmail)),
		}
		next.ServeHTTP(w, r.WithContext(identity.WithUser(r.Context(), user)))
	})
}
