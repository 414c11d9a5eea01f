package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_Success(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":        "Faster@Example.com",
		"password":     "correct-horse-battery",
		"display_name": "Faster",
		"timezone":     "Europe/Berlin",
		"device_info": map[string]any{
			"device_type": "mobile",
			"platform":    "iOS",
		},
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	envelope := decode[AuthResponse](t, resp.Body.Bytes())
	assert.True(t, envelope.Success)
	assert.Equal(t, 1, envelope.Version)
	assert.NotEmpty(t, envelope.Data.AccessToken)
	assert.NotEmpty(t, envelope.Data.RefreshToken)
	assert.NotEmpty(t, envelope.Data.SessionID)
	assert.Equal(t, "Bearer", envelope.Data.TokenType)
	assert.Positive(t, envelope.Data.ExpiresIn)
	assert.Equal(t, "faster@example.com", envelope.Data.User.Email)
	assert.Equal(t, "Faster", envelope.Data.User.DisplayName)
	assert.Equal(t, "Europe/Berlin", envelope.Data.User.Timezone)

	claims, err := ts.tokens.VerifyAccessToken(envelope.Data.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, envelope.Data.User.ID, claims.UserID)
	assert.Equal(t, envelope.Data.SessionID, claims.SessionID)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ts := setupTestServer(t)
	ts.register(t, "dup@example.com")

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":    "dup@example.com",
		"password": "another-password",
	})
	assert.Equal(t, http.StatusConflict, resp.Code)

	envelope := decode[any](t, resp.Body.Bytes())
	assert.False(t, envelope.Success)
	assert.Equal(t, "ALREADY_EXISTS", envelope.Code)
}

func TestRegister_ValidationErrors(t *testing.T) {
	ts := setupTestServer(t)

	tests := []struct {
		name       string
		body       map[string]any
		wantStatus int
	}{
		{
			name:       "missing email",
			body:       map[string]any{"password": "correct-horse-battery"},
			wantStatus: http.StatusUnprocessableEntity, // Huma returns 422 for missing required fields
		},
		{
			name:       "invalid email format",
			body:       map[string]any{"email": "not-an-email", "password": "correct-horse-battery"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "password too short",
			body:       map[string]any{"email": "short@example.com", "password": "short"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "unknown timezone",
			body: map[string]any{
				"email":    "tz@example.com",
				"password": "correct-horse-battery",
				"timezone": "Mars/Olympus_Mons",
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Post("/api/v1/auth/register", tt.body)
			assert.Equal(t, tt.wantStatus, resp.Code)

			envelope := decode[any](t, resp.Body.Bytes())
			assert.False(t, envelope.Success)
			assert.Equal(t, "VALIDATION_ERROR", envelope.Code)
		})
	}
}

func TestLogin_Success(t *testing.T) {
	ts := setupTestServer(t)
	registered := ts.register(t, "login@example.com")

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "login@example.com",
		"password": "correct-horse-battery",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	envelope := decode[AuthResponse](t, resp.Body.Bytes())
	assert.True(t, envelope.Success)
	assert.Equal(t, registered.User.ID, envelope.Data.User.ID)
	assert.NotEqual(t, registered.SessionID, envelope.Data.SessionID, "each login opens its own session")
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ts := setupTestServer(t)
	ts.register(t, "login@example.com")

	tests := []struct {
		name  string
		email string
	}{
		{"wrong password", "login@example.com"},
		{"unknown email", "nobody@example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Post("/api/v1/auth/login", map[string]any{
				"email":    tt.email,
				"password": "wrong-password",
			})
			assert.Equal(t, http.StatusUnauthorized, resp.Code)

			envelope := decode[any](t, resp.Body.Bytes())
			assert.Equal(t, "INVALID_CREDENTIALS", envelope.Code)
			assert.Equal(t, "invalid email or password", envelope.Error)
		})
	}
}

func TestRefresh_RotatesRefreshToken(t *testing.T) {
	ts := setupTestServer(t)
	registered := ts.register(t, "refresh@example.com")

	resp := ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refresh_token": registered.RefreshToken,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	envelope := decode[AuthResponse](t, resp.Body.Bytes())
	assert.Equal(t, registered.SessionID, envelope.Data.SessionID)
	assert.NotEqual(t, registered.RefreshToken, envelope.Data.RefreshToken)

	// The old refresh token is spent.
	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refresh_token": registered.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "TOKEN_EXPIRED", decode[any](t, resp.Body.Bytes()).Code)
}

func TestRefresh_InvalidToken(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refresh_token": "does-not-exist",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestLogout_RevokesAccessToken(t *testing.T) {
	ts := setupTestServer(t)
	registered := ts.register(t, "logout@example.com")

	resp := ts.api.Get("/api/v1/users/me", bearer(registered.AccessToken))
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/auth/logout", bearer(registered.AccessToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "Logged out successfully", decode[MessageResponse](t, resp.Body.Bytes()).Data.Message)

	resp = ts.api.Get("/api/v1/users/me", bearer(registered.AccessToken))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	// The session's refresh token is gone with it.
	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refresh_token": registered.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestCurrentUser_GetAndUpdate(t *testing.T) {
	ts := setupTestServer(t)
	registered := ts.register(t, "me@example.com")
	auth := bearer(registered.AccessToken)

	resp := ts.api.Get("/api/v1/users/me", auth)
	require.Equal(t, http.StatusOK, resp.Code)
	me := decode[UserResponse](t, resp.Body.Bytes()).Data
	assert.Equal(t, "me@example.com", me.Email)
	assert.Equal(t, "Tester", me.DisplayName)
	assert.Empty(t, me.Timezone)

	resp = ts.api.Patch("/api/v1/users/me", auth, map[string]any{
		"timezone": "America/New_York",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	updated := decode[UserResponse](t, resp.Body.Bytes()).Data
	assert.Equal(t, "America/New_York", updated.Timezone)
	assert.Equal(t, "Tester", updated.DisplayName, "omitted fields are unchanged")

	resp = ts.api.Patch("/api/v1/users/me", auth, map[string]any{
		"timezone": "Not/AZone",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestExtractIP(t *testing.T) {
	assert.Equal(t, "203.0.113.9", extractIP("203.0.113.9, 10.0.0.1", "10.0.0.2"))
	assert.Equal(t, "203.0.113.9", extractIP("203.0.113.9", ""))
	assert.Equal(t, "10.0.0.2", extractIP("", "10.0.0.2"))
	assert.Empty(t, extractIP("", ""))
}
