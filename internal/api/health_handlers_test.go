package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	envelope := decode[HealthResponse](t, resp.Body.Bytes())
	assert.True(t, envelope.Success)
	assert.Equal(t, "healthy", envelope.Data.Status)
	require.Contains(t, envelope.Data.Components, "database")
	require.Contains(t, envelope.Data.Components, "sse")
	assert.Equal(t, "healthy", envelope.Data.Components["database"].Status)
	assert.NotEmpty(t, envelope.Data.Components["database"].Latency)
	assert.Equal(t, "no connected clients", envelope.Data.Components["sse"].Message)
}

func TestHealthCheck_DatabaseDown(t *testing.T) {
	ts := setupTestServer(t)
	require.NoError(t, ts.store.Close())

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	envelope := decode[HealthResponse](t, resp.Body.Bytes())
	assert.Equal(t, "unhealthy", envelope.Data.Status)
	assert.Equal(t, "unhealthy", envelope.Data.Components["database"].Status)
	assert.Equal(t, "database ping failed", envelope.Data.Components["database"].Message)
}

func TestFormatSSEStatus(t *testing.T) {
	assert.Equal(t, "no connected clients", formatSSEStatus(0))
	assert.Equal(t, "1 connected client", formatSSEStatus(1))
	assert.Equal(t, "12 connected clients", formatSSEStatus(12))
}
