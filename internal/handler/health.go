// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/olegiv/blogdesk/internal/cache"
	"github.com/olegiv/blogdesk/internal/version"
)

// Pinger is a dependency whose availability is reported by the health check.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// PingContext implements Pinger.
func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

// HealthHandler handles health check requests.
type HealthHandler struct {
	mode       string
	checks     map[string]Pinger
	cacheStats cache.StatsProvider
	startTime  time.Time
}

// NewHealthHandler creates a health handler running the named checks.
func NewHealthHandler(mode string, checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{
		mode:      mode,
		checks:    checks,
		startTime: time.Now(),
	}
}

// WithCacheStats reports the hit/miss counters of p in the response.
func (h *HealthHandler) WithCacheStats(p cache.StatsProvider) *HealthHandler {
	h.cacheStats = p
	return h
}

// HealthStatus represents the overall health status.
type HealthStatus struct {
	Status  string           `json:"status"`
	Mode    string           `json:"mode"`
	Uptime  string           `json:"uptime"`
	Version version.Info     `json:"version"`
	Checks  map[string]Check `json:"checks,omitempty"`
	Cache   *cache.Stats     `json:"cache,omitempty"`
}

// Check represents a single health check result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// Health handles GET /health. It responds 503 when any check fails.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	status := HealthStatus{
		Status:  "healthy",
		Mode:    h.mode,
		Uptime:  time.Since(h.startTime).Round(time.Second).String(),
		Version: version.Get(),
		Checks:  make(map[string]Check, len(h.checks)),
	}

	for name, p := range h.checks {
		start := time.Now()
		err := p.PingContext(ctx)
		check := Check{Status: "healthy", Latency: time.Since(start).String()}
		if err != nil {
			check.Status = "unhealthy"
			check.Message = err.Error()
			status.Status = "degraded"
		}
		status.Checks[name] = check
	}

	if h.cacheStats != nil {
		stats := h.cacheStats.Stats()
		status.Cache = &stats
	}

	w.Header().Set("Content-Type", "application/json")
	if status.Status != "healthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(status)
}
