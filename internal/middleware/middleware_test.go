package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func serve(r *gin.Engine, remote string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = remote
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	var visto string
	r.GET("/ping", func(c *gin.Context) {
		visto = c.GetString(RequestIDKey)
		c.Status(http.StatusNoContent)
	})

	w := serve(r, "10.0.0.1:1", map[string]string{RequestIDHeader: "abc-123"})
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", visto)

	w = serve(r, "10.0.0.1:1", nil)
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)

	w = serve(r, "10.0.0.1:1", map[string]string{RequestIDHeader: strings.Repeat("x", 65)})
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.Use(RateLimiter(2, time.Minute))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	assert.Equal(t, http.StatusNoContent, serve(r, "10.0.1.1:1", nil).Code)
	assert.Equal(t, http.StatusNoContent, serve(r, "10.0.1.1:1", nil).Code)
	w := serve(r, "10.0.1.1:1", nil)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "rate_limited")
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// Other clients have their own window.
	assert.Equal(t, http.StatusNoContent, serve(r, "10.0.1.2:1", nil).Code)
}

func TestRateLimiter_Deshabilitado(t *testing.T) {
	r := gin.New()
	r.Use(RateLimiter(0, time.Minute))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusNoContent, serve(r, "10.0.2.1:1", nil).Code)
	}
}

func TestRecovery_NoExponePanico(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/ping", func(*gin.Context) { panic("secreto interno") })

	w := serve(r, "10.0.3.1:1", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "secreto")
	assert.Contains(t, w.Body.String(), "internal_error")
}
