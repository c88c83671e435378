// Package handler exposes the resolution service over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"zipstate/internal/lookup/models"
	"zipstate/internal/platform/middleware"
	"zipstate/pkg/domain"
	dErrors "zipstate/pkg/domain-errors"
	"zipstate/pkg/platform/httputil"
)

// Service defines the resolution operations the handler exposes.
type Service interface {
	ResolvePostalCode(ctx context.Context, raw string) (*models.Resolution, error)
	ResolveAreaCode(ctx context.Context, raw string) (*models.Resolution, error)
	ResolvePhoneNumber(ctx context.Context, raw string) (*models.Resolution, error)
	PostalCodesForState(ctx context.Context, state string) ([]models.CodeRuleDescriptor, error)
	AreaCodesForState(ctx context.Context, state string) ([]models.CodeRuleDescriptor, error)
	ResolveBatch(ctx context.Context, items []models.BatchItem) ([]models.BatchResult, error)
	ValidateAddress(ctx context.Context, addr domain.Address) (*models.AddressValidation, error)
}

// Handler handles the resolution endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterLookups registers the single-code resolution and listing routes.
// Kept separate from RegisterBatch so the router can put each group behind
// its own rate limit class.
func (h *Handler) RegisterLookups(r chi.Router) {
	r.Get("/postal-codes/{code}/state", h.handlePostalCode)
	r.Get("/area-codes/{code}/state", h.handleAreaCode)
	r.Get("/phone-numbers/{number}/state", h.handlePhoneNumber)
	r.Get("/states/{state}/postal-codes", h.handleStatePostalCodes)
	r.Get("/states/{state}/area-codes", h.handleStateAreaCodes)
}

// RegisterBatch registers the request-body operations.
func (h *Handler) RegisterBatch(r chi.Router) {
	r.Post("/resolve/batch", h.handleBatch)
	r.Post("/addresses/validate", h.handleValidateAddress)
}

func (h *Handler) handlePostalCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	res, err := h.service.ResolvePostalCode(ctx, chi.URLParam(r, "code"))
	if err != nil {
		h.writeServiceError(w, ctx, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleAreaCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	res, err := h.service.ResolveAreaCode(ctx, chi.URLParam(r, "code"))
	if err != nil {
		h.writeServiceError(w, ctx, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handlePhoneNumber(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Phone numbers arrive URL-escaped ("+1 503..." as "%2B1%20503...").
	// Chi matches the encoded segment, so unescape before parsing.
	raw := chi.URLParam(r, "number")
	if decoded, err := url.PathUnescape(raw); err == nil {
		raw = decoded
	}

	res, err := h.service.ResolvePhoneNumber(ctx, raw)
	if err != nil {
		h.writeServiceError(w, ctx, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

// stateRulesResponse lists the rules issued to one state in one code domain.
type stateRulesResponse struct {
	State     domain.State                `json:"state"`
	StateName string                      `json:"state_name"`
	Domain    models.CodeDomain           `json:"domain"`
	Rules     []models.CodeRuleDescriptor `json:"rules"`
}

func (h *Handler) handleStatePostalCodes(w http.ResponseWriter, r *http.Request) {
	h.handleStateRules(w, r, models.DomainPostal, h.service.PostalCodesForState)
}

func (h *Handler) handleStateAreaCodes(w http.ResponseWriter, r *http.Request) {
	h.handleStateRules(w, r, models.DomainAreaCode, h.service.AreaCodesForState)
}

func (h *Handler) handleStateRules(
	w http.ResponseWriter,
	r *http.Request,
	codeDomain models.CodeDomain,
	list func(context.Context, string) ([]models.CodeRuleDescriptor, error),
) {
	ctx := r.Context()
	raw := chi.URLParam(r, "state")

	// Parse here as well so the response echoes the canonical code even
	// when the caller sent a full name.
	state, err := domain.ParseState(raw)
	if err != nil {
		h.writeServiceError(w, ctx, err)
		return
	}

	rules, err := list(ctx, raw)
	if err != nil {
		h.writeServiceError(w, ctx, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, stateRulesResponse{
		State:     state,
		StateName: state.Name(),
		Domain:    codeDomain,
		Rules:     rules,
	})
}

// batchResponse wraps the per-item outcomes of one batch request.
type batchResponse struct {
	Results []models.BatchResult `json:"results"`
}

func (h *Handler) handleBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[BatchRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	results, err := h.service.ResolveBatch(ctx, req.Items)
	if err != nil {
		h.writeServiceError(w, ctx, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, batchResponse{Results: results})
}

func (h *Handler) handleValidateAddress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[AddressValidateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	validation, err := h.service.ValidateAddress(ctx, req.Address())
	if err != nil {
		h.writeServiceError(w, ctx, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, validation)
}

// writeServiceError translates service failures into responses. Caller
// mistakes pass through with their message; anything else is logged and
// masked as internal.
func (h *Handler) writeServiceError(w http.ResponseWriter, ctx context.Context, err error) {
	requestID := middleware.GetRequestID(ctx)

	switch dErrors.CodeOf(err) {
	case dErrors.CodeInvalidInput, dErrors.CodeValidation, dErrors.CodeBadRequest, dErrors.CodeNotFound:
		h.logger.WarnContext(ctx, "lookup rejected",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
	default:
		h.logger.ErrorContext(ctx, "lookup failed",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "lookup failed"))
	}
}
