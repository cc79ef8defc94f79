package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/farellandr/admitpay/internal/helpers"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type RateLimiter struct {
	ips   map[string]*visitor
	mu    sync.Mutex
	rate  rate.Limit
	burst int
	idle  time.Duration
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(r rate.Limit, b int) *RateLimiter {
	return &RateLimiter{
		ips:   make(map[string]*visitor),
		rate:  r,
		burst: b,
		idle:  10 * time.Minute,
	}
}

func (rl *RateLimiter) GetLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if v, exists := rl.ips[ip]; exists {
		v.lastSeen = now
		return v.limiter
	}

	// sweep on insert so the map tracks only recent clients
	for key, v := range rl.ips {
		if now.Sub(v.lastSeen) > rl.idle {
			delete(rl.ips, key)
		}
	}

	limiter := rate.NewLimiter(rl.rate, rl.burst)
	rl.ips[ip] = &visitor{limiter: limiter, lastSeen: now}
	return limiter
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.GetLimiter(c.ClientIP()).Allow() {
			helpers.AbortWithError(c, http.StatusTooManyRequests, "Rate limit exceeded.")
			return
		}
		c.Next()
	}
}

// RateLimit allows perMinute requests per client IP with the given burst.
func RateLimit(perMinute, burst int) gin.HandlerFunc {
	return NewRateLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst).Middleware()
}
