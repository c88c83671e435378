package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	dErrors "zipstate/pkg/domain-errors"
	"zipstate/pkg/platform/httputil"
)

// RequireAdminToken guards admin endpoints with a shared X-Admin-Token header.
// An empty expectedToken locks the endpoints entirely rather than leaving
// them open.
func RequireAdminToken(expectedToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("X-Admin-Token")
			// Constant-time comparison; the token is a shared secret.
			if expectedToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
				ctx := r.Context()
				logger.WarnContext(ctx, "admin token mismatch",
					"request_id", GetRequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "admin token required"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
