package middleware

import (
	"net/http" // HTTP status codes
	"sync"     // Guards the client table
	"time"     // Refill and idle periods

	"github.com/gin-gonic/gin" // Gin web framework
	"golang.org/x/time/rate"   // Token bucket limiter
)

// RateLimiter hands out one token bucket per client IP. Buckets idle for a
// whole refill period are full again, so they are dropped and recreated on
// the client's next request.
type RateLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	idleAfter time.Duration // Time for an empty bucket to refill completely
	lastSweep time.Time
	clients   map[string]*clientLimiter
	now       func() time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows perMinute requests per client IP, all of which may
// arrive in a single burst.
func NewRateLimiter(perMinute int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	return &RateLimiter{
		limit:     rate.Every(time.Minute / time.Duration(perMinute)),
		burst:     perMinute,
		idleAfter: time.Minute,
		clients:   make(map[string]*clientLimiter),
		now:       time.Now,
	}
}

// Allow consumes one token for key
func (r *RateLimiter) Allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if now.Sub(r.lastSweep) >= r.idleAfter {
		r.sweep(now)
	}
	cl, ok := r.clients[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.clients[key] = cl
	}
	cl.lastSeen = now
	return cl.limiter.AllowN(now, 1)
}

// sweep drops every client not seen for idleAfter; callers hold mu
func (r *RateLimiter) sweep(now time.Time) {
	for key, cl := range r.clients {
		if now.Sub(cl.lastSeen) >= r.idleAfter {
			delete(r.clients, key)
		}
	}
	r.lastSweep = now
}

// Middleware rejects requests over the limit with 429
func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !r.Allow(c.ClientIP()) { // One bucket per client address
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			return
		}
		c.Next()
	}
}
