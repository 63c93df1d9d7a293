// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	ok, err := c.Has(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryCache_Miss(t *testing.T) {
	c := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
	defer func() { _ = c.Close() }()

	_, err := c.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCache_ReturnsCopy(t *testing.T) {
	c := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	value := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", value, 0))
	value[0] = 'x'

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestMemoryCache_DeleteAndClear(t *testing.T) {
	c := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))

	require.NoError(t, c.Delete(ctx, "a"))
	_, err := c.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Clear(ctx))
	_, err = c.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCache_MaxSize(t *testing.T) {
	c := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute, MaxSize: 1})
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))

	ok, _ := c.Has(ctx, "b")
	assert.False(t, ok)

	// Overwriting an existing key is always allowed.
	require.NoError(t, c.Set(ctx, "a", []byte("3"), 0))
	got, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "3", string(got))
}

func TestMemoryCache_Stats(t *testing.T) {
	c := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte("v"), 0)
	_, _ = c.Get(ctx, "k")
	_, _ = c.Get(ctx, "nope")

	s := c.Stats()
	assert.Equal(t, int64(1), s.Hits)
	assert.Equal(t, int64(1), s.Misses)
	assert.Equal(t, int64(1), s.Sets)
	assert.Equal(t, 1, s.Items)
	assert.InDelta(t, 50.0, s.HitRate, 0.001)
}

func TestMemoryCache_Closed(t *testing.T) {
	c := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute, CleanupInterval: time.Millisecond})
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	_, err := c.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrCacheClosed)
	assert.ErrorIs(t, c.Set(context.Background(), "k", nil, 0), ErrCacheClosed)
}
