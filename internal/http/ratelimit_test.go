package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/example/vacation-approval/internal/testfixtures"
)

func TestRateLimitByIP(t *testing.T) {
	t.Parallel()

	call := func(router *gin.Engine, remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}
	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }

	t.Run("throttles per client", func(t *testing.T) {
		t.Parallel()

		router := gin.New()
		router.POST("/login", rateLimitByIP(rate.Every(time.Hour), 2, newResponder(testfixtures.DiscardLogger())), ok)

		assert.Equal(t, http.StatusNoContent, call(router, "192.0.2.1:1000").Code)
		assert.Equal(t, http.StatusNoContent, call(router, "192.0.2.1:1001").Code)

		rec := call(router, "192.0.2.1:1002")
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		var body envelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.False(t, body.OK)
		assert.Equal(t, kindRateLimited, body.Kind)

		assert.Equal(t, http.StatusNoContent, call(router, "198.51.100.7:1000").Code)
	})

	t.Run("non-positive limit disables throttling", func(t *testing.T) {
		t.Parallel()

		router := gin.New()
		router.POST("/login", rateLimitByIP(0, 0, newResponder(nil)), ok)
		for i := 0; i < 10; i++ {
			assert.Equal(t, http.StatusNoContent, call(router, "192.0.2.1:1000").Code)
		}
	})
}

func TestRouterCORS(t *testing.T) {
	t.Parallel()

	preflight := func(router *gin.Engine, origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/login", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	router := NewRouter(RouterConfig{
		Logger:      testfixtures.DiscardLogger(),
		CORSOrigins: []string{"http://localhost:5173"},
	})
	rec := preflight(router, "http://localhost:5173")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	rec = preflight(router, "http://evil.example")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	plain := NewRouter(RouterConfig{Logger: testfixtures.DiscardLogger()})
	rec = preflight(plain, "http://localhost:5173")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
