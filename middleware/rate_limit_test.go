//go:build unit
// +build unit

// file: middleware/rate_limit_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go-drop-registry/models"
)

func frozenLimiter(perMinute, burst int) (*RateLimiter, *time.Time) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	r := NewRateLimiter(perMinute, burst)
	r.now = func() time.Time { return now }
	return r, &now
}

func TestRateLimiter_BurstThenRefill(t *testing.T) {
	r, now := frozenLimiter(6, 2)

	assert.True(t, r.Allow("uid:a"))
	assert.True(t, r.Allow("uid:a"))
	assert.False(t, r.Allow("uid:a"), "burst exhausted")
	assert.True(t, r.Allow("uid:b"), "callers have separate buckets")

	*now = now.Add(10 * time.Second)
	assert.True(t, r.Allow("uid:a"), "one token every ten seconds")
	assert.False(t, r.Allow("uid:a"))
}

func TestRateLimiter_ForgetsIdleCallers(t *testing.T) {
	r, now := frozenLimiter(1, 1)
	r.Allow("uid:a")

	*now = now.Add(time.Hour)
	r.Allow("uid:b")

	r.mu.Lock()
	defer r.mu.Unlock()
	_, kept := r.buckets["uid:a"]
	assert.False(t, kept)
}

func TestRateLimiter_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r, _ := frozenLimiter(60, 1)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(principalKey, models.Principal{UID: c.GetHeader("X-Test-User")})
		c.Next()
	})
	router.POST("/submit", r.Middleware(), func(c *gin.Context) { c.Status(http.StatusCreated) })

	send := func(user string) int {
		req := httptest.NewRequest("POST", "/submit", nil)
		req.Header.Set("X-Test-User", user)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusCreated, send("alice"))
	assert.Equal(t, http.StatusTooManyRequests, send("alice"))
	assert.Equal(t, http.StatusCreated, send("bob"))
}
