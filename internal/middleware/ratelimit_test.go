package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestIPRateLimiter(t *testing.T) {
	l := NewIPRateLimiter(60, 2) // one per second, burst 2
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	if !l.Allow("1.1.1.1") || !l.Allow("1.1.1.1") {
		t.Fatal("burst should be allowed")
	}
	if l.Allow("1.1.1.1") {
		t.Error("third request within the same instant should be rejected")
	}
	if !l.Allow("2.2.2.2") {
		t.Error("other clients have their own bucket")
	}

	now = now.Add(time.Second)
	if !l.Allow("1.1.1.1") {
		t.Error("bucket should refill after a second")
	}
}

func TestIPRateLimiter_SweepsIdleClients(t *testing.T) {
	l := NewIPRateLimiter(60, 1)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.Allow("1.1.1.1")
	now = now.Add(idleLimiterTTL + time.Minute)
	l.Allow("2.2.2.2")

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.clients["1.1.1.1"]; ok {
		t.Error("idle client should have been swept")
	}
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RateLimit(NewIPRateLimiter(1, 1)))
	router.POST("/login", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	if codes[0] != http.StatusOK {
		t.Errorf("first request: expected 200, got %d", codes[0])
	}
	if codes[1] != http.StatusTooManyRequests {
		t.Errorf("second request: expected 429, got %d", codes[1])
	}
}
