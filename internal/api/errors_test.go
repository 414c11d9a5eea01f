package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/fastlogapp/fastlog-server/internal/errors"
	"github.com/fastlogapp/fastlog-server/internal/http/response"
	"github.com/fastlogapp/fastlog-server/internal/store"
)

func marshalEnvelope(t *testing.T, v any) map[string]any {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestEnvelopeTransformer_Success(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "200", map[string]string{"id": "fast_1"})
	require.NoError(t, err)

	out := marshalEnvelope(t, result)
	assert.Equal(t, float64(response.Version), out["v"])
	assert.Equal(t, true, out["success"])
	assert.Equal(t, map[string]any{"id": "fast_1"}, out["data"])
	assert.NotContains(t, out, "error")
	assert.NotContains(t, out, "code")
}

func TestEnvelopeTransformer_NilData(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "204", nil)
	require.NoError(t, err)

	out := marshalEnvelope(t, result)
	assert.Equal(t, true, out["success"])
	assert.NotContains(t, out, "data")
}

func TestEnvelopeTransformer_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		value    any
		wantCode string
		wantMsg  string
	}{
		{
			name:     "api error",
			status:   "409",
			value:    &APIError{status: http.StatusConflict, Code: "CONFLICT", Message: "An active session already exists"},
			wantCode: "CONFLICT",
			wantMsg:  "An active session already exists",
		},
		{
			name:     "domain error",
			status:   "404",
			value:    domainerrors.NotFound("Fasting session not found"),
			wantCode: "NOT_FOUND",
			wantMsg:  "Fasting session not found",
		},
		{
			name:     "api error without code",
			status:   "401",
			value:    &APIError{status: http.StatusUnauthorized, Message: "nope"},
			wantCode: "UNAUTHORIZED",
			wantMsg:  "nope",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := EnvelopeTransformer(nil, tt.status, tt.value)
			require.NoError(t, err)

			out := marshalEnvelope(t, result)
			assert.Equal(t, false, out["success"])
			assert.Equal(t, tt.wantCode, out["code"])
			assert.Equal(t, tt.wantMsg, out["error"])
			assert.NotContains(t, out, "data")
		})
	}
}

func TestEnvelopeTransformer_PassesEnvelopesThrough(t *testing.T) {
	env := response.Envelope{Version: response.Version, Success: false, Error: "slow down", Code: "RATE_LIMITED"}
	result, err := EnvelopeTransformer(nil, "429", env)
	require.NoError(t, err)
	assert.Equal(t, env, result)
}

func TestRegisterErrorHandler(t *testing.T) {
	RegisterErrorHandler()

	t.Run("domain error keeps its status", func(t *testing.T) {
		err := huma.NewError(http.StatusInternalServerError, "unexpected error occurred",
			fmt.Errorf("stop fast: %w", domainerrors.Conflict("No active session found")))
		assert.Equal(t, http.StatusConflict, err.GetStatus())

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, "CONFLICT", apiErr.Code)
		assert.Equal(t, "No active session found", apiErr.Message)
	})

	t.Run("client store error keeps its status", func(t *testing.T) {
		err := huma.NewError(http.StatusInternalServerError, "unexpected error occurred",
			store.ErrNotFound.WithMessage("fast not found"))
		assert.Equal(t, http.StatusNotFound, err.GetStatus())
	})

	t.Run("unknown error uses the given status", func(t *testing.T) {
		err := huma.NewError(http.StatusInternalServerError, "unexpected error occurred", errors.New("disk on fire"))
		assert.Equal(t, http.StatusInternalServerError, err.GetStatus())

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, "INTERNAL_ERROR", apiErr.Code)
		assert.Nil(t, apiErr.Details)
	})

	t.Run("validation details are collected", func(t *testing.T) {
		err := huma.NewError(http.StatusUnprocessableEntity, "validation failed",
			&huma.ErrorDetail{Location: "body.email", Message: "expected required property email to be present"})

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
		assert.Len(t, apiErr.Details, 1)
	})
}

func TestDomainErrorStatus(t *testing.T) {
	var se huma.StatusError
	require.True(t, errors.As(domainerrors.Conflict("x"), &se))
	assert.Equal(t, http.StatusConflict, se.GetStatus())
}
