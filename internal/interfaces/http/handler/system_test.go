package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	h := NewSystemHandler()

	c, w := newTestContext(t, uuid.Nil, http.MethodGet, "/api/v1/system/info", nil)
	h.GetSystemInfo(c)

	require.Equal(t, http.StatusOK, w.Code)
	var info SystemInfoResponse
	dataField(t, decodeResponse(t, w), &info)
	assert.Equal(t, "Clinicore Backend API", info.Name)
	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.GoVersion)
	assert.NotEmpty(t, info.Uptime)
}

func TestSystemHandler_Health(t *testing.T) {
	h := NewSystemHandler()

	c, w := newTestContext(t, uuid.Nil, http.MethodGet, "/api/v1/health", nil)
	h.Health(c)

	require.Equal(t, http.StatusOK, w.Code)
	var health HealthResponse
	dataField(t, decodeResponse(t, w), &health)
	assert.Equal(t, "ok", health.Status)
	assert.NotEmpty(t, health.Timestamp)
}
