// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"time"
)

// TypedCache provides type-safe caching on top of a Cacher using JSON encoding.
type TypedCache[T any] struct {
	cache      Cacher
	prefix     string
	defaultTTL time.Duration
}

// NewTypedCache creates a TypedCache storing values under prefix+key.
func NewTypedCache[T any](cache Cacher, prefix string, defaultTTL time.Duration) *TypedCache[T] {
	return &TypedCache[T]{
		cache:      cache,
		prefix:     prefix,
		defaultTTL: defaultTTL,
	}
}

// Get returns the cached value and true, or nil and false on a miss or decode failure.
func (c *TypedCache[T]) Get(ctx context.Context, key string) (*T, bool) {
	data, err := c.cache.Get(ctx, c.prefix+key)
	if err != nil {
		return nil, false
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, false
	}
	return &value, true
}

// Set stores a value with the default TTL.
func (c *TypedCache[T]) Set(ctx context.Context, key string, value *T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.cache.Set(ctx, c.prefix+key, data, c.defaultTTL)
}

// Delete removes a key from the cache.
func (c *TypedCache[T]) Delete(ctx context.Context, key string) error {
	return c.cache.Delete(ctx, c.prefix+key)
}

// GetOrSet returns the cached value, or computes it with fn and stores it.
// Errors from fn are returned and nothing is cached.
func (c *TypedCache[T]) GetOrSet(ctx context.Context, key string, fn func() (*T, error)) (*T, error) {
	if value, ok := c.Get(ctx, key); ok {
		return value, nil
	}

	value, err := fn()
	if err != nil {
		return nil, err
	}

	// A failed write still leaves a valid value to return.
	_ = c.Set(ctx, key, value)
	return value, nil
}
