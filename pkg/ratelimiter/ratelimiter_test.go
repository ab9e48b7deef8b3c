package ratelimiter

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestIsAllowed(t *testing.T) {
	t.Run("AllowsUpToLimit", func(t *testing.T) {
		rl := New(3, time.Minute)

		for i := 0; i < 3; i++ {
			assert.True(t, rl.IsAllowed("1.2.3.4"), "request %d", i+1)
		}
		assert.False(t, rl.IsAllowed("1.2.3.4"))
	})

	t.Run("IPsAreIndependent", func(t *testing.T) {
		rl := New(1, time.Minute)

		assert.True(t, rl.IsAllowed("1.2.3.4"))
		assert.False(t, rl.IsAllowed("1.2.3.4"))
		assert.True(t, rl.IsAllowed("5.6.7.8"))
	})

	t.Run("WindowResets", func(t *testing.T) {
		rl := New(1, 10*time.Millisecond)

		assert.True(t, rl.IsAllowed("1.2.3.4"))
		assert.False(t, rl.IsAllowed("1.2.3.4"))

		time.Sleep(15 * time.Millisecond)
		assert.True(t, rl.IsAllowed("1.2.3.4"))
	})
}

func TestGetRequestInfo(t *testing.T) {
	rl := New(5, time.Minute)

	count, _ := rl.GetRequestInfo("1.2.3.4")
	assert.Equal(t, 0, count)

	rl.IsAllowed("1.2.3.4")
	rl.IsAllowed("1.2.3.4")

	count, resetTime := rl.GetRequestInfo("1.2.3.4")
	assert.Equal(t, 2, count)
	assert.True(t, resetTime.After(time.Now()))
}

func TestCleanup(t *testing.T) {
	rl := New(5, 5*time.Millisecond)

	rl.IsAllowed("1.2.3.4")
	rl.IsAllowed("5.6.7.8")
	assert.Len(t, rl.windows, 2)

	time.Sleep(10 * time.Millisecond)
	rl.Cleanup()
	assert.Empty(t, rl.windows)
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rl := New(2, time.Minute)
	router := gin.New()
	router.GET("/api/score/:tokenAddress", rl.Middleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	request := func() *httptest.ResponseRecorder {
		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/score/mint", nil)
		router.ServeHTTP(recorder, req)
		return recorder
	}

	first := request()
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	second := request()
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "0", second.Header().Get("X-RateLimit-Remaining"))

	third := request()
	assert.Equal(t, http.StatusTooManyRequests, third.Code)
	assert.Equal(t, "0", third.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, third.Header().Get("Retry-After"))
	assert.Contains(t, third.Body.String(), "RATE_LIMIT_EXCEEDED")
}
