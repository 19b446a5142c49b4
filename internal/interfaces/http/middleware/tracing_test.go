package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTracingWithConfig_Disabled(t *testing.T) {
	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{Enabled: false}))
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTraceTenantID(t *testing.T) {
	t.Run("accepts UUID from context", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/", nil)
		tenantID := uuid.New().String()
		c.Set(TenantIDKey, tenantID)

		assert.Equal(t, tenantID, traceTenantID(c))
	})

	t.Run("accepts UUID from header", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/", nil)
		tenantID := uuid.New().String()
		c.Request.Header.Set("X-Tenant-ID", tenantID)

		assert.Equal(t, tenantID, traceTenantID(c))
	})

	t.Run("rejects non-UUID values", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/", nil)
		c.Request.Header.Set("X-Tenant-ID", "'; DROP TABLE spans; --")

		assert.Empty(t, traceTenantID(c))
	})

	t.Run("rejects oversized values", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/", nil)
		c.Request.Header.Set("X-Tenant-ID", strings.Repeat("a", MaxTenantIDLength+1))

		assert.Empty(t, traceTenantID(c))
	})
}

func TestTraceRequestID_Truncates(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/", nil)
	c.Request.Header.Set("X-Request-ID", strings.Repeat("r", MaxRequestIDLength+50))

	got := traceRequestID(c)
	assert.Len(t, got, MaxRequestIDLength)
}
