package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/Lixing-Zhang/storefront-checkout/internal/config"
)

// APIKeyAuth middleware validates the storefront API key from the "api_key" header
func APIKeyAuth(cfg config.AuthConfig) func(next http.Handler) http.Handler {
	keys := make([][]byte, len(cfg.APIKeys))
	for i, k := range cfg.APIKeys {
		keys[i] = []byte(k)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get("api_key")

			if apiKey == "" {
				http.Error(w, "Unauthorized: API key required", http.StatusUnauthorized)
				return
			}

			if !validKey(keys, []byte(apiKey)) {
				http.Error(w, "Forbidden: Invalid API key", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func validKey(keys [][]byte, candidate []byte) bool {
	valid := false
	for _, k := range keys {
		if subtle.ConstantTimeCompare(k, candidate) == 1 {
			valid = true
		}
	}
	return valid
}
