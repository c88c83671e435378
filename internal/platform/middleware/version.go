package middleware

import (
	"net/http"

	"zipstate/pkg/domain"
	"zipstate/pkg/requestcontext"
)

// ExtractVersion stamps the API version of a chi route group into the request
// context. With r.Route("/v1", ...) the route match already fixes the
// version; this middleware makes it visible to services and audit events.
//
// Usage:
//
//	r.Route("/v1", func(v1 chi.Router) {
//	    v1.Use(middleware.ExtractVersion(domain.APIVersionV1))
//	    // ... routes
//	})
func ExtractVersion(version domain.APIVersion) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithAPIVersion(r.Context(), version)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
