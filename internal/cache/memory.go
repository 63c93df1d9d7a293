// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// MemoryCache is a thread-safe in-memory cache implementation.
type MemoryCache struct {
	data       sync.Map
	defaultTTL time.Duration
	maxSize    int // Maximum number of entries (0 = unlimited)
	stopCh     chan struct{}
	closed     atomic.Bool

	hits   atomic.Int64
	misses atomic.Int64
	sets   atomic.Int64
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCacheOptions configures the memory cache.
type MemoryCacheOptions struct {
	DefaultTTL      time.Duration
	MaxSize         int           // Maximum number of entries (0 = unlimited)
	CleanupInterval time.Duration // Interval for expired entry cleanup (0 = no cleanup)
}

// NewMemoryCache creates a new memory cache with the given options.
func NewMemoryCache(opts MemoryCacheOptions) *MemoryCache {
	c := &MemoryCache{
		defaultTTL: opts.DefaultTTL,
		maxSize:    opts.MaxSize,
		stopCh:     make(chan struct{}),
	}

	if opts.CleanupInterval > 0 {
		go c.cleanupLoop(opts.CleanupInterval)
	}

	return c
}

// Get retrieves a value from the cache.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	if c.closed.Load() {
		return nil, ErrCacheClosed
	}

	val, ok := c.data.Load(key)
	if !ok {
		c.misses.Add(1)
		return nil, ErrCacheMiss
	}

	entry := val.(*memoryEntry)
	if time.Now().After(entry.expiresAt) {
		c.data.CompareAndDelete(key, entry)
		c.misses.Add(1)
		return nil, ErrCacheMiss
	}

	c.hits.Add(1)
	result := make([]byte, len(entry.value))
	copy(result, entry.value)
	return result, nil
}

// Set stores a value in the cache with the specified TTL.
// When MaxSize is reached, expired entries are purged first; if the cache is
// still full the new key is not stored.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}

	if ttl == 0 {
		ttl = c.defaultTTL
	}

	if c.maxSize > 0 {
		if _, exists := c.data.Load(key); !exists && c.count() >= c.maxSize {
			c.removeExpired()
			if c.count() >= c.maxSize {
				return nil
			}
		}
	}

	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	c.data.Store(key, &memoryEntry{value: valueCopy, expiresAt: time.Now().Add(ttl)})
	c.sets.Add(1)
	return nil
}

// Delete removes a key from the cache.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	c.data.Delete(key)
	return nil
}

// Clear removes all entries from the cache.
func (c *MemoryCache) Clear(_ context.Context) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	c.data.Clear()
	return nil
}

// Has checks if a key exists in the cache (and is not expired).
func (c *MemoryCache) Has(_ context.Context, key string) (bool, error) {
	if c.closed.Load() {
		return false, ErrCacheClosed
	}

	val, ok := c.data.Load(key)
	if !ok {
		return false, nil
	}
	return !time.Now().After(val.(*memoryEntry).expiresAt), nil
}

// Close stops the cleanup goroutine.
func (c *MemoryCache) Close() error {
	if c.closed.CompareAndSwap(false, true) {
		close(c.stopCh)
	}
	return nil
}

// Stats returns current cache statistics.
func (c *MemoryCache) Stats() Stats {
	hits, misses := c.hits.Load(), c.misses.Load()
	return Stats{
		Hits:    hits,
		Misses:  misses,
		Sets:    c.sets.Load(),
		Items:   c.count(),
		HitRate: hitRate(hits, misses),
	}
}

func (c *MemoryCache) count() int {
	n := 0
	c.data.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (c *MemoryCache) removeExpired() {
	now := time.Now()
	c.data.Range(func(key, value any) bool {
		if now.After(value.(*memoryEntry).expiresAt) {
			c.data.CompareAndDelete(key, value)
		}
		return true
	})
}

func (c *MemoryCache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stopCh:
			return
		}
	}
}

var (
	_ Cacher        = (*MemoryCache)(nil)
	_ StatsProvider = (*MemoryCache)(nil)
)
