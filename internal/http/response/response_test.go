package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/fastlogapp/fastlog-server/internal/errors"
	"github.com/fastlogapp/fastlog-server/internal/store"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestJSON_Success(t *testing.T) {
	w := httptest.NewRecorder()
	Success(w, map[string]int{"total": 750}, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	env := decode(t, w)
	assert.Equal(t, Version, env.Version)
	assert.True(t, env.Success)
	assert.Equal(t, map[string]any{"total": float64(750)}, env.Data)
	assert.Empty(t, env.Error)
}

func TestJSON_ErrorStatusIsNotSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	JSON(w, http.StatusNotFound, map[string]string{"id": "x"}, nil)

	assert.False(t, decode(t, w).Success)
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name       string
		write      func(http.ResponseWriter)
		wantStatus int
		wantCode   string
	}{
		{"bad request", func(w http.ResponseWriter) { BadRequest(w, "bad", nil) }, 400, "VALIDATION_ERROR"},
		{"unauthorized", func(w http.ResponseWriter) { Unauthorized(w, "no token", nil) }, 401, "UNAUTHORIZED"},
		{"not found", func(w http.ResponseWriter) { NotFound(w, "gone", nil) }, 404, "NOT_FOUND"},
		{"rate limited", func(w http.ResponseWriter) { TooManyRequests(w, "slow down", nil) }, 429, "RATE_LIMITED"},
		{"internal", func(w http.ResponseWriter) { InternalError(w, "oops", nil) }, 500, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)

			assert.Equal(t, tt.wantStatus, w.Code)
			env := decode(t, w)
			assert.False(t, env.Success)
			assert.Equal(t, tt.wantCode, env.Code)
			assert.NotEmpty(t, env.Error)
			assert.Nil(t, env.Data)
		})
	}
}

func TestHandleError(t *testing.T) {
	t.Run("domain error", func(t *testing.T) {
		w := httptest.NewRecorder()
		HandleError(w, fmt.Errorf("stop: %w", domainerrors.Conflict("No active session found")), nil)

		assert.Equal(t, http.StatusConflict, w.Code)
		env := decode(t, w)
		assert.Equal(t, "No active session found", env.Error)
		assert.Equal(t, "CONFLICT", env.Code)
	})

	t.Run("domain error with details", func(t *testing.T) {
		w := httptest.NewRecorder()
		HandleError(w, domainerrors.ValidationWithDetails("amount is required", map[string]string{"amount": "is required"}), nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, map[string]any{"amount": "is required"}, decode(t, w).Details)
	})

	t.Run("store error", func(t *testing.T) {
		w := httptest.NewRecorder()
		HandleError(w, store.ErrNotFound, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unknown error", func(t *testing.T) {
		w := httptest.NewRecorder()
		HandleError(w, errors.New("disk on fire"), nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "internal server error", decode(t, w).Error)
	})
}
