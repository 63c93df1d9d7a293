// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"log/slog"
	"time"
)

// Config holds configuration for cache creation.
type Config struct {
	// RedisURL selects Redis when non-empty, e.g. redis://localhost:6379/0
	RedisURL string
	// Prefix is the key prefix for Redis
	Prefix string
	// DefaultTTL is the default TTL for cache entries
	DefaultTTL time.Duration
	// MaxSize is the maximum number of entries for memory cache (0 = unlimited)
	MaxSize int
}

// New creates a Redis cache when RedisURL is set, otherwise an in-memory cache.
// If Redis is unreachable it logs a warning and falls back to memory.
func New(cfg Config, logger *slog.Logger) Cacher {
	if cfg.RedisURL != "" {
		rc, err := NewRedisCache(RedisCacheOptions{
			URL:        cfg.RedisURL,
			Prefix:     cfg.Prefix,
			DefaultTTL: cfg.DefaultTTL,
		})
		if err == nil {
			logger.Info("using redis cache", "prefix", cfg.Prefix)
			return rc
		}
		logger.Warn("redis unavailable, falling back to memory cache", "category", "cache", "error", err)
	}

	return NewMemoryCache(MemoryCacheOptions{
		DefaultTTL:      cfg.DefaultTTL,
		MaxSize:         cfg.MaxSize,
		CleanupInterval: time.Minute,
	})
}
