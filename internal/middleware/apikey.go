package middleware

import (
	"crypto/subtle"
	"net/http"
)

// APIKeyAuth gates handlers behind a shared X-API-Key header. An empty
// configured key disables the gate entirely.
func APIKeyAuth(apiKey string, next http.HandlerFunc) http.HandlerFunc {
	if apiKey == "" {
		return next
	}

	return func(w http.ResponseWriter, r *http.Request) {
		provided := r.Header.Get("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
			http.Error(w, "Invalid or missing API key", http.StatusUnauthorized)
			return
		}

		next(w, r)
	}
}
