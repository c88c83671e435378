package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	dErrors "zipstate/pkg/domain-errors"
	"zipstate/pkg/platform/httputil"
	"zipstate/pkg/requestcontext"
)

// JWTValidator checks bearer tokens minted by the key service.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims carries the token claims the middleware forwards into the
// request context.
type JWTClaims struct {
	KeyID  string
	Caller string
}

// RequireAuth rejects requests without a valid bearer token. On success the
// key ID and caller name from the claims land in the request context, where
// requestcontext.APIKeyID and requestcontext.CallerName read them back.
func RequireAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", GetRequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing or malformed Authorization header"))
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token"))
				return
			}

			ctx = requestcontext.WithAPIKeyID(ctx, claims.KeyID)
			ctx = requestcontext.WithCallerName(ctx, claims.Caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
