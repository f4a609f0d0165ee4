package mw

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// bucketIdleTTL is how long an unused bucket survives before the sweep
// reclaims it.
const bucketIdleTTL = 3 * time.Minute

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedLimiter hands out one token bucket per caller key and evicts buckets
// that have gone idle, so the map does not grow with every IP that ever
// touched the API. Also reused for the per-email login throttle.
type KeyedLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	r       rate.Limit
	b       int
}

// NewKeyedLimiter creates a keyed limiter and starts its eviction sweep.
func NewKeyedLimiter(r rate.Limit, b int) *KeyedLimiter {
	kl := &KeyedLimiter{
		buckets: make(map[string]*bucket),
		r:       r,
		b:       b,
	}
	go kl.sweep()
	return kl
}

// Allow reports whether the caller behind key may proceed.
func (kl *KeyedLimiter) Allow(key string) bool {
	kl.mu.Lock()
	entry, ok := kl.buckets[key]
	if !ok {
		entry = &bucket{limiter: rate.NewLimiter(kl.r, kl.b)}
		kl.buckets[key] = entry
	}
	entry.lastSeen = time.Now()
	kl.mu.Unlock()

	return entry.limiter.Allow()
}

func (kl *KeyedLimiter) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		kl.mu.Lock()
		for key, entry := range kl.buckets {
			if time.Since(entry.lastSeen) > bucketIdleTTL {
				delete(kl.buckets, key)
			}
		}
		kl.mu.Unlock()
	}
}

// RateLimiter throttles requests per caller. Authenticated callers are keyed
// by their bearer token, so accounts behind a shared NAT do not starve each
// other; anonymous callers fall back to the client IP.
func RateLimiter(r rate.Limit, b int, logger *zap.SugaredLogger) gin.HandlerFunc {
	limiter := NewKeyedLimiter(r, b)
	return func(c *gin.Context) {
		key := c.GetHeader("Authorization")
		if key == "" {
			key = c.ClientIP()
		}
		if !limiter.Allow(key) {
			logger.Warnf("rate limit exceeded for %s %s", c.Request.Method, c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
