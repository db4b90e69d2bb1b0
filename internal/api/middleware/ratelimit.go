package middleware

import (
	"net/http"
	"strconv"
	"time"

	"bin-finder/internal/cache"
	"bin-finder/internal/metrics"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// maxClients bounds the limiter table; the oldest client is dropped first.
const maxClients = 10000

// RateLimit applies a per-client token bucket of perMinute requests with the
// given burst. A non-positive perMinute disables limiting.
func RateLimit(perMinute, burst int) gin.HandlerFunc {
	if perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if burst <= 0 {
		burst = perMinute
	}

	interval := time.Minute / time.Duration(perMinute)
	limiters := cache.NewFIFO[string, *rate.Limiter](maxClients)
	retryAfter := strconv.Itoa(max(int(interval/time.Second), 1))

	return func(c *gin.Context) {
		key := c.ClientIP()
		limiter, ok := limiters.Get(key)
		if !ok {
			limiter = rate.NewLimiter(rate.Every(interval), burst)
			limiters.Put(key, limiter)
		}

		if !limiter.Allow() {
			metrics.RateLimited.WithLabelValues(metrics.Area(c.FullPath())).Inc()
			c.Header("Retry-After", retryAfter)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"ok": false, "error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
