// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// maxLimiterEntries bounds the number of tracked clients before the cache is reset.
const maxLimiterEntries = 10000

// limiterCache is a generic rate limiter cache with double-check locking.
type limiterCache[K comparable] struct {
	limiters map[K]*rate.Limiter
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
}

// newLimiterCache creates a new limiter cache.
func newLimiterCache[K comparable](rps float64, burst int) *limiterCache[K] {
	return &limiterCache[K]{
		limiters: make(map[K]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
	}
}

// get returns the rate limiter for a specific key, creating one if needed.
func (lc *limiterCache[K]) get(key K) *rate.Limiter {
	lc.mu.RLock()
	limiter, exists := lc.limiters[key]
	lc.mu.RUnlock()

	if exists {
		return limiter
	}

	lc.mu.Lock()
	defer lc.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists = lc.limiters[key]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(lc.rate, lc.burst)
	lc.limiters[key] = limiter
	return limiter
}

// clearIfExceeds clears all entries if the cache exceeds maxSize.
// Returns true if the cache was cleared.
func (lc *limiterCache[K]) clearIfExceeds(maxSize int) bool {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	if len(lc.limiters) > maxSize {
		lc.limiters = make(map[K]*rate.Limiter)
		return true
	}
	return false
}

// IPRateLimiter limits requests per client IP.
type IPRateLimiter struct {
	cache  *limiterCache[string]
	logger *slog.Logger
}

// NewIPRateLimiter creates a limiter allowing rps requests per second with burst per IP.
func NewIPRateLimiter(rps float64, burst int, logger *slog.Logger) *IPRateLimiter {
	return &IPRateLimiter{
		cache:  newLimiterCache[string](rps, burst),
		logger: logger,
	}
}

// Middleware returns the rate limiting middleware (JSON errors).
func (rl *IPRateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := getClientIP(r)
			if rl.cache.clearIfExceeds(maxLimiterEntries) {
				rl.logger.Info("cleared IP rate limiters due to size")
			}
			if !rl.cache.get(ip).Allow() {
				rl.logger.Warn("upload rate limit exceeded", "ip", ip, "path", r.URL.Path)
				WriteJSONError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please slow down.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
