package httputil

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dErrors "zipstate/pkg/domain-errors"
)

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantDesc   string
		omitDesc   bool
	}{
		{
			name:       "internal error omits description",
			err:        dErrors.New(dErrors.CodeInternal, "db failed"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_error",
			omitDesc:   true,
		},
		{
			name:       "bad request includes description",
			err:        dErrors.New(dErrors.CodeBadRequest, "invalid input"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "bad_request",
			wantDesc:   "invalid input",
		},
		{
			name:       "not found maps to 404",
			err:        dErrors.New(dErrors.CodeNotFound, "no state for postal code [00010] could be found"),
			wantStatus: http.StatusNotFound,
			wantCode:   "not_found",
			wantDesc:   "no state for postal code [00010] could be found",
		},
		{
			name:       "conflict maps to 409",
			err:        dErrors.New(dErrors.CodeConflict, "key already revoked"),
			wantStatus: http.StatusConflict,
			wantCode:   "conflict",
			wantDesc:   "key already revoked",
		},
		{
			name:       "plain error treated as internal",
			err:        http.ErrBodyNotAllowed,
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_error",
			omitDesc:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.err)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			body := decodeEnvelope(t, w)
			if body["error"] != tt.wantCode {
				t.Fatalf("error = %q, want %q", body["error"], tt.wantCode)
			}
			if desc, ok := body["error_description"]; tt.omitDesc && ok {
				t.Fatalf("error_description = %q, want omitted", desc)
			} else if !tt.omitDesc && desc != tt.wantDesc {
				t.Fatalf("error_description = %q, want %q", desc, tt.wantDesc)
			}
		})
	}
}

type namedRequest struct {
	Name string `json:"name"`
}

func (r *namedRequest) Validate() error {
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	return nil
}

func TestDecodeAndPrepare(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("valid body passes through", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"billing"}`))
		w := httptest.NewRecorder()

		req, ok := DecodeAndPrepare[namedRequest](w, r, logger, ctx, "req-1")
		if !ok {
			t.Fatalf("expected decode to succeed, got %d: %s", w.Code, w.Body.String())
		}
		if req.Name != "billing" {
			t.Fatalf("Name = %q, want billing", req.Name)
		}
	})

	t.Run("malformed JSON is a bad request", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
		w := httptest.NewRecorder()

		if _, ok := DecodeAndPrepare[namedRequest](w, r, logger, ctx, "req-2"); ok {
			t.Fatal("expected decode to fail")
		}
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("validation failure writes the domain error", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
		w := httptest.NewRecorder()

		if _, ok := DecodeAndPrepare[namedRequest](w, r, logger, ctx, "req-3"); ok {
			t.Fatal("expected validation to fail")
		}
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
		}
		if body := decodeEnvelope(t, w); body["error"] != "validation" {
			t.Fatalf("error = %q, want validation", body["error"])
		}
	})
}
