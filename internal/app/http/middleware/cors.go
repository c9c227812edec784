package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

// CORS lets the office frontend call the API and read the document
// headers. allowOrigins is "*" or a comma separated list of origins.
func CORS(allowOrigins string) func(http.Handler) http.Handler {
	var origins []string
	for _, o := range strings.Split(allowOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Internal-Token"},
		ExposedHeaders: []string{"Content-Disposition", "X-Document-Degraded", "X-Signature-State"},
		MaxAge:         300,
	})
}
