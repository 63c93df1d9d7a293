// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"strconv"
)

// SecurityHeadersConfig holds configuration for security headers.
type SecurityHeadersConfig struct {
	// IsDevelopment disables HSTS.
	IsDevelopment bool

	// ContentSecurityPolicy is the CSP header value.
	ContentSecurityPolicy string

	// HSTSMaxAge is the max-age for Strict-Transport-Security in seconds. 0 disables HSTS.
	HSTSMaxAge int

	// ReferrerPolicy controls the Referrer-Policy header.
	ReferrerPolicy string
}

// DefaultSecurityHeadersConfig returns headers suited to a JSON API that also
// serves stored images.
func DefaultSecurityHeadersConfig(isDev bool) SecurityHeadersConfig {
	return SecurityHeadersConfig{
		IsDevelopment:         isDev,
		ContentSecurityPolicy: "default-src 'none'; img-src 'self'; frame-ancestors 'none'",
		HSTSMaxAge:            31536000, // 1 year
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}
}

// SecurityHeaders sets security headers on every response.
func SecurityHeaders(cfg SecurityHeadersConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if cfg.ContentSecurityPolicy != "" {
				h.Set("Content-Security-Policy", cfg.ContentSecurityPolicy)
			}
			if !cfg.IsDevelopment && cfg.HSTSMaxAge > 0 {
				h.Set("Strict-Transport-Security", "max-age="+strconv.Itoa(cfg.HSTSMaxAge)+"; includeSubDomains")
			}
			h.Set("X-Frame-Options", "DENY")
			h.Set("X-Content-Type-Options", "nosniff")
			if cfg.ReferrerPolicy != "" {
				h.Set("Referrer-Policy", cfg.ReferrerPolicy)
			}

			next.ServeHTTP(w, r)
		})
	}
}
