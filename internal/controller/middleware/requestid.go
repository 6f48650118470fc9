// Package middleware contains HTTP middleware for the fleetops API.
package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"fleetops/internal/logger"
)

// RequestID attaches a correlation ID to every request. An incoming
// X-Request-ID header is honored; otherwise a fresh UUID is generated.
// The ID is echoed back in the response and placed in the request context
// for the logger.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set("X-Request-ID", requestID)
		ctx := logger.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
