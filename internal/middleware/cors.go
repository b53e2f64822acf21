package middleware

import (
	"net/http"
	"slices"

	"github.com/rs/cors"
)

// CORS allows browser clients from allowedOrigins. An empty list or "*"
// allows any origin without credentials.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	wildcard := len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*")
	opts := cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Locale", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
		AllowCredentials: !wildcard,
		MaxAge:           600,
	}
	if wildcard {
		opts.AllowedOrigins = []string{"*"}
	}
	return cors.New(opts).Handler
}
