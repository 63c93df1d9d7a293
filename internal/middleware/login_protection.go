// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/olegiv/blogdesk/internal/model"
)

// LoginProtection provides combined IP rate limiting and account lockout protection
// for local-mode sign in.
type LoginProtection struct {
	ipLimiters *limiterCache[string]

	failedAttempts map[string]*loginAttempt
	attemptsMu     sync.RWMutex

	maxFailedAttempts int
	lockoutDuration   time.Duration // Base lockout duration (doubles with each lockout)
	attemptWindow     time.Duration

	logger *slog.Logger
	stopCh chan struct{}
	once   sync.Once
}

// loginAttempt tracks failed login attempts for an account.
type loginAttempt struct {
	count       int
	firstFailed time.Time
	lockedUntil time.Time
	lockouts    int // Number of times account has been locked (for exponential backoff)
}

// LoginProtectionConfig holds configuration for login protection.
type LoginProtectionConfig struct {
	// IPRateLimit is requests per second per IP (default: 0.5 = 1 request per 2 seconds)
	IPRateLimit float64
	// IPBurst is the maximum burst size for IP rate limiting (default: 5)
	IPBurst int
	// MaxFailedAttempts before account lockout (default: 5)
	MaxFailedAttempts int
	// LockoutDuration is base lockout time, doubles with each lockout (default: 15 minutes)
	LockoutDuration time.Duration
	// AttemptWindow is the time window for counting failed attempts (default: 15 minutes)
	AttemptWindow time.Duration
}

// DefaultLoginProtectionConfig returns sensible defaults.
func DefaultLoginProtectionConfig() LoginProtectionConfig {
	return LoginProtectionConfig{
		IPRateLimit:       0.5,
		IPBurst:           5,
		MaxFailedAttempts: 5,
		LockoutDuration:   15 * time.Minute,
		AttemptWindow:     15 * time.Minute,
	}
}

// NewLoginProtection creates a new login protection instance and starts its
// cleanup goroutine. Call Stop to end it.
func NewLoginProtection(cfg LoginProtectionConfig, logger *slog.Logger) *LoginProtection {
	def := DefaultLoginProtectionConfig()
	if cfg.IPRateLimit <= 0 {
		cfg.IPRateLimit = def.IPRateLimit
	}
	if cfg.IPBurst <= 0 {
		cfg.IPBurst = def.IPBurst
	}
	if cfg.MaxFailedAttempts <= 0 {
		cfg.MaxFailedAttempts = def.MaxFailedAttempts
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = def.LockoutDuration
	}
	if cfg.AttemptWindow <= 0 {
		cfg.AttemptWindow = def.AttemptWindow
	}

	lp := &LoginProtection{
		ipLimiters:        newLimiterCache[string](cfg.IPRateLimit, cfg.IPBurst),
		failedAttempts:    make(map[string]*loginAttempt),
		maxFailedAttempts: cfg.MaxFailedAttempts,
		lockoutDuration:   cfg.LockoutDuration,
		attemptWindow:     cfg.AttemptWindow,
		logger:            logger,
		stopCh:            make(chan struct{}),
	}

	go lp.cleanup()

	return lp
}

// Stop ends the cleanup goroutine.
func (lp *LoginProtection) Stop() {
	lp.once.Do(func() { close(lp.stopCh) })
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsAccountLocked checks if an account is currently locked.
// Returns (locked, remainingTime).
func (lp *LoginProtection) IsAccountLocked(email string) (bool, time.Duration) {
	lp.attemptsMu.RLock()
	attempt, exists := lp.failedAttempts[normalizeEmail(email)]
	lp.attemptsMu.RUnlock()

	if !exists {
		return false, 0
	}

	if time.Now().Before(attempt.lockedUntil) {
		return true, time.Until(attempt.lockedUntil)
	}

	return false, 0
}

// RecordFailedAttempt records a failed login attempt.
// Returns (locked, lockDuration) if the account is now locked.
func (lp *LoginProtection) RecordFailedAttempt(email string) (bool, time.Duration) {
	email = normalizeEmail(email)

	lp.attemptsMu.Lock()
	defer lp.attemptsMu.Unlock()

	now := time.Now()
	attempt, exists := lp.failedAttempts[email]

	if !exists {
		lp.failedAttempts[email] = &loginAttempt{count: 1, firstFailed: now}
		return false, 0
	}

	// If the attempt window has passed, reset the counter
	if now.Sub(attempt.firstFailed) > lp.attemptWindow {
		attempt.count = 1
		attempt.firstFailed = now
		return false, 0
	}

	attempt.count++
	if attempt.count < lp.maxFailedAttempts {
		return false, 0
	}

	lockDuration := lp.lockoutDuration
	for i := 0; i < attempt.lockouts; i++ {
		lockDuration *= 2
		if lockDuration > 24*time.Hour {
			lockDuration = 24 * time.Hour
			break
		}
	}

	attempt.lockedUntil = now.Add(lockDuration)
	attempt.lockouts++
	attempt.count = 0

	lp.logger.Warn("account locked due to failed login attempts",
		"category", model.EventCategoryAuth,
		"email", email,
		"lockouts", attempt.lockouts,
		"duration", lockDuration,
	)

	return true, lockDuration
}

// RecordSuccessfulLogin clears failed attempt tracking for an account.
func (lp *LoginProtection) RecordSuccessfulLogin(email string) {
	lp.attemptsMu.Lock()
	defer lp.attemptsMu.Unlock()

	delete(lp.failedAttempts, normalizeEmail(email))
}

// GetRemainingAttempts returns the number of remaining attempts before lockout.
func (lp *LoginProtection) GetRemainingAttempts(email string) int {
	lp.attemptsMu.RLock()
	attempt, exists := lp.failedAttempts[normalizeEmail(email)]
	lp.attemptsMu.RUnlock()

	if !exists || time.Since(attempt.firstFailed) > lp.attemptWindow {
		return lp.maxFailedAttempts
	}

	return max(lp.maxFailedAttempts-attempt.count, 0)
}

func (lp *LoginProtection) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			lp.cleanupStaleEntries()
		case <-lp.stopCh:
			return
		}
	}
}

func (lp *LoginProtection) cleanupStaleEntries() {
	now := time.Now()

	if lp.ipLimiters.clearIfExceeds(maxLimiterEntries) {
		lp.logger.Info("cleared login rate limiters due to size")
	}

	lp.attemptsMu.Lock()
	for email, attempt := range lp.failedAttempts {
		if now.After(attempt.lockedUntil) && now.Sub(attempt.firstFailed) > lp.attemptWindow {
			delete(lp.failedAttempts, email)
		}
	}
	lp.attemptsMu.Unlock()
}

// Middleware rate limits POST requests per client IP.
func (lp *LoginProtection) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			ip := getClientIP(r)
			if !lp.ipLimiters.get(ip).Allow() {
				lp.logger.Warn("login rate limit exceeded", "category", model.EventCategoryAuth, "ip", ip)
				WriteJSONError(w, http.StatusTooManyRequests, "Too many login attempts. Please wait a moment and try again.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
