package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

var defaultCORSOrigins = []string{
	"http://localhost:3000", // local dev
	"http://localhost:5173", // vite dev server
}

// CORS returns middleware that applies the API's allowed origin policy. The
// storefront origin from configuration is appended to the dev defaults.
func CORS(frontendURL string) func(http.Handler) http.Handler {
	origins := append([]string{}, defaultCORSOrigins...)
	if trimmed := strings.TrimRight(strings.TrimSpace(frontendURL), "/"); trimmed != "" {
		origins = append(origins, trimmed)
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Mart-Token", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Mart-Token"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
