package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "amlgen/pkg/domain-errors"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		status      int
		code        string
		description string
	}{
		{"not found", dErrors.New(dErrors.CodeNotFound, "user U-00000001 not found"), http.StatusNotFound, "not_found", "user U-00000001 not found"},
		{"bad request", dErrors.New(dErrors.CodeBadRequest, "unknown severity"), http.StatusBadRequest, "bad_request", "unknown severity"},
		{"validation", dErrors.New(dErrors.CodeValidation, "status is invalid"), http.StatusBadRequest, "validation_error", "status is invalid"},
		{"no eligible user", dErrors.New(dErrors.CodeNoEligibleUser, "no importer"), http.StatusUnprocessableEntity, "no_eligible_user", "no importer"},
		{"internal hides message", dErrors.New(dErrors.CodeInternal, "pq: connection refused"), http.StatusInternalServerError, "internal_error", ""},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "internal_error", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.err)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			body := decode(t, w)
			assert.Equal(t, tt.code, body["error"])
			assert.Equal(t, tt.description, body["error_description"])
		})
	}
}

type validatingRequest struct {
	Name string
}

func (r *validatingRequest) Validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

type fullRequest struct {
	Name       string
	sanitized  bool
	normalized bool
}

func (r *fullRequest) Sanitize()  { r.sanitized = true }
func (r *fullRequest) Normalize() { r.normalized = true }
func (r *fullRequest) Validate() error {
	return nil
}

type domainErrorRequest struct{}

func (r *domainErrorRequest) Validate() error {
	return dErrors.New(dErrors.CodeBadRequest, "id is required")
}

func TestPrepareRequest(t *testing.T) {
	t.Run("calls all preparation methods", func(t *testing.T) {
		req := &fullRequest{}
		require.NoError(t, PrepareRequest(req))
		assert.True(t, req.sanitized)
		assert.True(t, req.normalized)
	})

	t.Run("returns validation error", func(t *testing.T) {
		err := PrepareRequest(&validatingRequest{})
		assert.ErrorContains(t, err, "name is required")
	})

	t.Run("handles types without hooks", func(t *testing.T) {
		assert.NoError(t, PrepareRequest(&struct{}{}))
	})
}

func TestPrepare(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("valid request", func(t *testing.T) {
		w := httptest.NewRecorder()
		assert.True(t, Prepare(w, &validatingRequest{Name: "x"}, logger, ctx, "req-1"))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("wraps plain error with validation code", func(t *testing.T) {
		w := httptest.NewRecorder()
		assert.False(t, Prepare(w, &validatingRequest{}, logger, ctx, "req-1"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "validation_error", decode(t, w)["error"])
	})

	t.Run("preserves domain error code", func(t *testing.T) {
		w := httptest.NewRecorder()
		assert.False(t, Prepare(w, &domainErrorRequest{}, logger, ctx, "req-1"))
		body := decode(t, w)
		assert.Equal(t, "bad_request", body["error"])
		assert.Equal(t, "id is required", body["error_description"])
	})
}
