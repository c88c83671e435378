package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"zipstate/internal/apikey"
	"zipstate/internal/audit"
	"zipstate/internal/lookup/models"
	"zipstate/internal/lookup/store/misses"
	"zipstate/internal/platform/middleware"
	dErrors "zipstate/pkg/domain-errors"
	"zipstate/pkg/platform/httputil"
	platformstrings "zipstate/pkg/platform/strings"
)

const defaultListLimit = 100

// KeyAdmin is the slice of the API key service the admin plane needs.
type KeyAdmin interface {
	Issue(ctx context.Context, name string, ttl time.Duration) (*apikey.APIKey, string, error)
	List(ctx context.Context) ([]*apikey.APIKey, error)
	Revoke(ctx context.Context, keyID apikey.KeyID) (*apikey.APIKey, error)
	RevokeMany(ctx context.Context, keyIDs []apikey.KeyID) (int64, error)
}

// AdminHandler serves the operator surface: key management plus audit and
// lookup miss inspection. The router mounts it behind RequireAdminToken.
type AdminHandler struct {
	keys   KeyAdmin
	audit  audit.Store
	misses misses.Store
	logger *slog.Logger
}

func NewAdminHandler(keys KeyAdmin, auditLog audit.Store, missLog misses.Store, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		keys:   keys,
		audit:  auditLog,
		misses: missLog,
		logger: logger,
	}
}

func (h *AdminHandler) Register(r chi.Router) {
	r.Post("/api-keys", h.handleIssueKey)
	r.Get("/api-keys", h.handleListKeys)
	r.Delete("/api-keys/{id}", h.handleRevokeKey)
	r.Post("/api-keys/revoke", h.handleRevokeKeys)
	r.Get("/misses", h.handleListMisses)
	r.Get("/misses/summary", h.handleMissSummary)
	r.Get("/audit", h.handleListAudit)
}

// IssueKeyRequest names the caller a key is issued to. TTL is a Go duration
// string such as "720h"; empty means the key never expires.
type IssueKeyRequest struct {
	Name string `json:"name"`
	TTL  string `json:"ttl,omitempty"`

	ttl time.Duration
}

func (r *IssueKeyRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if r.TTL != "" {
		d, err := time.ParseDuration(r.TTL)
		if err != nil || d <= 0 {
			return dErrors.New(dErrors.CodeValidation, "ttl must be a positive duration such as 720h")
		}
		r.ttl = d
	}
	return nil
}

// IssueKeyResponse carries the stored key and the plaintext credential. The
// plaintext appears here exactly once and is never retrievable again.
type IssueKeyResponse struct {
	Key    *apikey.APIKey `json:"key"`
	APIKey string         `json:"api_key"`
}

func (h *AdminHandler) handleIssueKey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[IssueKeyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	key, plaintext, err := h.keys.Issue(ctx, req.Name, req.ttl)
	if err != nil {
		h.writeAdminError(w, ctx, "failed to issue API key", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, IssueKeyResponse{Key: key, APIKey: plaintext})
}

// ListKeysResponse wraps the full key inventory, revoked and expired
// included.
type ListKeysResponse struct {
	Keys []*apikey.APIKey `json:"keys"`
}

func (h *AdminHandler) handleListKeys(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	keys, err := h.keys.List(ctx)
	if err != nil {
		h.writeAdminError(w, ctx, "failed to list API keys", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ListKeysResponse{Keys: keys})
}

func (h *AdminHandler) handleRevokeKey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	keyID, err := apikey.ParseKeyID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeAdminError(w, ctx, "invalid key ID", err)
		return
	}

	key, err := h.keys.Revoke(ctx, keyID)
	if err != nil {
		h.writeAdminError(w, ctx, "failed to revoke API key", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, key)
}

// RevokeKeysRequest lists the key IDs to revoke in one call.
type RevokeKeysRequest struct {
	KeyIDs []string `json:"key_ids"`

	parsed []apikey.KeyID
}

func (r *RevokeKeysRequest) Validate() error {
	// UUIDs compare case-insensitively, so fold before deduplicating to keep
	// the revoked count honest when the same ID appears twice.
	ids := platformstrings.DedupeAndTrimLower(r.KeyIDs)
	if len(ids) == 0 {
		return dErrors.New(dErrors.CodeValidation, "key_ids cannot be empty")
	}
	r.parsed = make([]apikey.KeyID, 0, len(ids))
	for _, raw := range ids {
		keyID, err := apikey.ParseKeyID(raw)
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "invalid key ID "+strconv.Quote(raw))
		}
		r.parsed = append(r.parsed, keyID)
	}
	return nil
}

// RevokeKeysResponse reports how many keys the batch actually revoked.
type RevokeKeysResponse struct {
	Revoked int64 `json:"revoked"`
}

func (h *AdminHandler) handleRevokeKeys(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RevokeKeysRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	revoked, err := h.keys.RevokeMany(ctx, req.parsed)
	if err != nil {
		h.writeAdminError(w, ctx, "failed to revoke API keys", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, RevokeKeysResponse{Revoked: revoked})
}

// ListMissesResponse returns recent unresolvable codes, newest first.
type ListMissesResponse struct {
	Misses []models.Miss `json:"misses"`
}

func (h *AdminHandler) handleListMisses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	recent, err := h.misses.Recent(ctx, limitParam(r, defaultListLimit))
	if err != nil {
		h.writeAdminError(w, ctx, "failed to list lookup misses", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ListMissesResponse{Misses: recent})
}

// MissSummaryResponse counts recorded misses per code domain.
type MissSummaryResponse struct {
	Counts map[string]int `json:"counts"`
}

func (h *AdminHandler) handleMissSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	counts, err := h.misses.CountByDomain(ctx)
	if err != nil {
		h.writeAdminError(w, ctx, "failed to summarize lookup misses", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, MissSummaryResponse{Counts: counts})
}

// ListAuditResponse returns recent audit events, newest first.
type ListAuditResponse struct {
	Events []audit.Event `json:"events"`
}

func (h *AdminHandler) handleListAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	events, err := h.audit.ListRecent(ctx, limitParam(r, defaultListLimit))
	if err != nil {
		h.writeAdminError(w, ctx, "failed to list audit events", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ListAuditResponse{Events: events})
}

func (h *AdminHandler) writeAdminError(w http.ResponseWriter, ctx context.Context, msg string, err error) {
	requestID := middleware.GetRequestID(ctx)

	switch dErrors.CodeOf(err) {
	case dErrors.CodeValidation, dErrors.CodeInvalidInput, dErrors.CodeBadRequest,
		dErrors.CodeNotFound, dErrors.CodeConflict:
		h.logger.WarnContext(ctx, msg,
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
	default:
		h.logger.ErrorContext(ctx, msg,
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, msg))
	}
}

// limitParam reads ?limit= with a fallback for missing or malformed values.
func limitParam(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
