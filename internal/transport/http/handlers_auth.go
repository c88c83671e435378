package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"zipstate/internal/platform/middleware"
	dErrors "zipstate/pkg/domain-errors"
	"zipstate/pkg/platform/httputil"
	"zipstate/pkg/requestcontext"
)

// KeyExchanger trades a plaintext API key for a signed access token.
type KeyExchanger interface {
	ExchangeToken(ctx context.Context, plaintext string) (string, time.Time, error)
}

// AuthHandler serves POST /auth/token.
type AuthHandler struct {
	keys   KeyExchanger
	logger *slog.Logger
}

func NewAuthHandler(keys KeyExchanger, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{keys: keys, logger: logger}
}

func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/auth/token", h.handleTokenExchange)
}

// TokenRequest carries the API key to exchange.
type TokenRequest struct {
	APIKey string `json:"api_key"`
}

func (r *TokenRequest) Validate() error {
	if strings.TrimSpace(r.APIKey) == "" {
		return dErrors.New(dErrors.CodeValidation, "api_key is required")
	}
	return nil
}

// TokenResponse returns the issued bearer token and its lifetime.
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int64     `json:"expires_in"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (h *AuthHandler) handleTokenExchange(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[TokenRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	token, expiresAt, err := h.keys.ExchangeToken(ctx, req.APIKey)
	if err != nil {
		switch dErrors.CodeOf(err) {
		case dErrors.CodeUnauthorized, dErrors.CodeValidation:
			h.logger.WarnContext(ctx, "token exchange rejected",
				"request_id", requestID,
				"error", err.Error(),
			)
			httputil.WriteError(w, err)
		default:
			h.logger.ErrorContext(ctx, "token exchange failed",
				"request_id", requestID,
				"error", err.Error(),
			)
			httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "token exchange failed"))
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(expiresAt.Sub(requestcontext.Now(ctx)).Seconds()),
		ExpiresAt:   expiresAt,
	})
}
