package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IPRateLimiter caps how many requests a single IP may issue inside a
// sliding window. It guards the public click endpoint against counter
// inflation.
type IPRateLimiter struct {
	ips         map[string]*ipWindow
	mu          sync.RWMutex
	maxRequests int
	window      time.Duration
	logger      *zap.Logger
}

type ipWindow struct {
	count      int
	resetAt    time.Time
	lastAccess time.Time
}

// NewIPRateLimiter builds a limiter allowing maxRequests per IP every
// windowMinutes, and starts a background sweep so the IP map does not
// grow without bound.
func NewIPRateLimiter(maxRequests, windowMinutes int, logger *zap.Logger) *IPRateLimiter {
	limiter := &IPRateLimiter{
		ips:         make(map[string]*ipWindow),
		maxRequests: maxRequests,
		window:      time.Duration(windowMinutes) * time.Minute,
		logger:      logger,
	}
	go limiter.sweep()
	return limiter
}

func (rl *IPRateLimiter) sweep() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for ip, info := range rl.ips {
			if now.Sub(info.lastAccess) > rl.window*2 {
				delete(rl.ips, ip)
			}
		}
		tracked := len(rl.ips)
		rl.mu.Unlock()
		rl.logger.Debug("rate limiter sweep", zap.Int("tracked_ips", tracked))
	}
}

func (rl *IPRateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	info, ok := rl.ips[ip]
	if !ok {
		rl.ips[ip] = &ipWindow{count: 1, resetAt: now.Add(rl.window), lastAccess: now}
		return true
	}

	info.lastAccess = now
	if now.After(info.resetAt) {
		info.count = 1
		info.resetAt = now.Add(rl.window)
		return true
	}
	if info.count >= rl.maxRequests {
		rl.logger.Warn("rate limit exceeded",
			zap.String("ip", ip),
			zap.Int("max_requests", rl.maxRequests),
			zap.Duration("window", rl.window),
		)
		return false
	}
	info.count++
	return true
}

func (rl *IPRateLimiter) remaining(ip string) int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	info, ok := rl.ips[ip]
	if !ok || time.Now().After(info.resetAt) {
		return rl.maxRequests
	}
	if left := rl.maxRequests - info.count; left > 0 {
		return left
	}
	return 0
}

func (rl *IPRateLimiter) resetTime(ip string) time.Time {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	now := time.Now()
	info, ok := rl.ips[ip]
	if !ok || now.After(info.resetAt) {
		return now.Add(rl.window)
	}
	return info.resetAt
}

// RateLimit rejects requests over the per-IP budget with 429 and the
// usual X-RateLimit-* headers.
func RateLimit(limiter *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		if !limiter.allow(ip) {
			resetAt := limiter.resetTime(ip)
			retryAfter := int(time.Until(resetAt).Seconds())

			c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", limiter.maxRequests))
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("X-RateLimit-Reset", resetAt.Format(time.RFC3339))
			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":        http.StatusTooManyRequests,
				"message":     "too many requests, retry later",
				"retry_after": retryAfter,
			})
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", limiter.maxRequests))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", limiter.remaining(ip)))
		c.Header("X-RateLimit-Reset", limiter.resetTime(ip).Format(time.RFC3339))
		c.Next()
	}
}
