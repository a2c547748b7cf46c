package middlewares

import (
	"encoding/json"
	"net/http"

	"github.com/emdili/docrag/internal/core/ratelimit"
)

// RateLimit rejects requests over the owner's sliding-window budget
// with 429. It must run after JWT so the owner id is in the context.
func RateLimit(limiter *ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserID(r.Context())
			if !ok {
				http.Error(w, "user_id not found in context", http.StatusUnauthorized)
				return
			}
			if !limiter.Allow(userID) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{"error": "rate limit exceeded"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
