package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCode_HTTPStatus(t *testing.T) {
	tests := map[Code]int{
		CodeNotFound:           http.StatusNotFound,
		CodeAlreadyExists:      http.StatusConflict,
		CodeConflict:           http.StatusConflict,
		CodeUnauthorized:       http.StatusUnauthorized,
		CodeInvalidCredentials: http.StatusUnauthorized,
		CodeTokenExpired:       http.StatusUnauthorized,
		CodeForbidden:          http.StatusForbidden,
		CodeValidation:         http.StatusBadRequest,
		CodeRateLimited:        http.StatusTooManyRequests,
		CodeInternal:           http.StatusInternalServerError,
		Code("SOMETHING_ELSE"): http.StatusInternalServerError,
	}
	for code, want := range tests {
		assert.Equal(t, want, code.HTTPStatus(), string(code))
	}
}

func TestConstructors_MatchSentinels(t *testing.T) {
	assert.ErrorIs(t, Conflict("An active session already exists"), ErrConflict)
	assert.ErrorIs(t, NotFound("fast %s not found", "fst-1"), ErrNotFound)
	assert.ErrorIs(t, Validation("Amount is required"), ErrValidation)
	assert.ErrorIs(t, InvalidCredentials("bad password"), ErrInvalidCredentials)
	assert.NotErrorIs(t, Conflict("x"), ErrNotFound)
}

func TestConstructors_Format(t *testing.T) {
	assert.Equal(t, "fast fst-1 not found", NotFound("fast %s not found", "fst-1").Error())
	// Without args the message is used verbatim, even with a percent sign.
	assert.Equal(t, "100% done", Validation("100% done").Error())
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(cause, CodeInternal, "save fast")

	assert.Equal(t, "save fast: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrInternal)
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus())
}

func TestWithDetailsAndCause_Copy(t *testing.T) {
	base := Validation("validation failed")
	withDetails := base.WithDetails(map[string]string{"amount": "is required"})

	assert.Nil(t, base.Details)
	assert.Equal(t, map[string]string{"amount": "is required"}, withDetails.Details)

	cause := stderrors.New("boom")
	wrapped := base.WithCause(cause)
	assert.NoError(t, base.Unwrap())
	assert.ErrorIs(t, wrapped, cause)
}

func TestAs_ThroughFmtWrap(t *testing.T) {
	err := fmt.Errorf("start fast: %w", Conflict("An active session already exists"))

	var domainErr *Error
	require.True(t, As(err, &domainErr))
	assert.Equal(t, CodeConflict, domainErr.Code)
	assert.Equal(t, "An active session already exists", domainErr.Message)
}
