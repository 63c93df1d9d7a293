// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"

	"filippo.io/csrf/gorilla"

	"github.com/olegiv/blogdesk/internal/auth"
)

// CSRFConfig holds configuration for CSRF protection.
// filippo.io/csrf/gorilla checks Fetch metadata headers instead of tokens in cookies.
type CSRFConfig struct {
	// AuthKey is a 32-byte key; the session secret is used.
	AuthKey []byte

	// TrustedOrigins are host-only values allowed to make cross-origin requests.
	TrustedOrigins []string

	Logger *slog.Logger
}

// DefaultCSRFConfig returns a CSRFConfig trusting localhost in development.
func DefaultCSRFConfig(authKey []byte, isDev bool, logger *slog.Logger) CSRFConfig {
	cfg := CSRFConfig{
		AuthKey: authKey,
		Logger:  logger,
	}

	if isDev {
		cfg.TrustedOrigins = []string{
			"localhost:8080",
			"127.0.0.1:8080",
		}
	}

	return cfg
}

// CSRF protects cookie-authenticated requests. Requests carrying a bearer
// token are not exposed to CSRF and skip the check.
func CSRF(cfg CSRFConfig) func(http.Handler) http.Handler {
	opts := []csrf.Option{
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reasonStr := "unknown"
			if reason := csrf.FailureReason(r); reason != nil {
				reasonStr = reason.Error()
			}
			cfg.Logger.Warn("CSRF validation failed",
				"category", "auth",
				"reason", reasonStr,
				"method", r.Method,
				"path", r.URL.Path,
				"origin", r.Header.Get("Origin"),
				"sec_fetch_site", r.Header.Get("Sec-Fetch-Site"),
			)
			WriteJSONError(w, http.StatusForbidden, "Forbidden - CSRF validation failed")
		})),
	}
	if len(cfg.TrustedOrigins) > 0 {
		opts = append(opts, csrf.TrustedOrigins(cfg.TrustedOrigins))
	}

	protect := csrf.Protect(cfg.AuthKey, opts...)

	return func(next http.Handler) http.Handler {
		protected := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if bearerToken(r) != "" || auth.AccessTokenFromContext(r.Context()) != "" {
				r = csrf.UnsafeSkipCheck(r)
			}
			protected.ServeHTTP(w, r)
		})
	}
}
