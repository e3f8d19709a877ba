package middleware

import (
	"net/http"

	"github.com/nunoplanning/advisor/internal/audit"
)

// Correlation attaches a correlation ID to every request context. An
// incoming X-Correlation-ID header is honored; otherwise a fresh one is
// generated. The ID is echoed back on the response.
func Correlation(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Correlation-ID")
		if id == "" {
			id = audit.GenerateCorrelationID()
		}

		w.Header().Set("X-Correlation-ID", id)
		next(w, r.WithContext(audit.WithCorrelationID(r.Context(), id)))
	}
}
