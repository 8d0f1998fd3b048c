package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// idleLimiterTTL is how long an unused per-client limiter is kept.
const idleLimiterTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter hands out one token bucket per client IP.
type IPRateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientLimiter
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

// NewIPRateLimiter allows perMinute requests per client with the given burst.
func NewIPRateLimiter(perMinute float64, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		clients: make(map[string]*clientLimiter),
		limit:   rate.Limit(perMinute / 60),
		burst:   burst,
		now:     time.Now,
	}
}

// Allow reports whether the client may make another request now.
func (l *IPRateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > idleLimiterTTL {
		for k, cl := range l.clients {
			if now.Sub(cl.lastSeen) > idleLimiterTTL {
				delete(l.clients, k)
			}
		}
		l.lastSweep = now
	}

	cl, ok := l.clients[ip]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[ip] = cl
	}
	cl.lastSeen = now
	return cl.limiter.AllowN(now, 1)
}

// RateLimit rejects clients that exceed their budget with 429.
func RateLimit(l *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests, try again later",
				"code":  "RATE_LIMITED",
			})
			return
		}
		c.Next()
	}
}
