// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testProfile struct {
	Name string `json:"name"`
}

func TestTypedCache_GetOrSet(t *testing.T) {
	mem := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
	defer func() { _ = mem.Close() }()
	tc := NewTypedCache[testProfile](mem, "profile:", time.Minute)
	ctx := context.Background()

	calls := 0
	load := func() (*testProfile, error) {
		calls++
		return &testProfile{Name: "Ada"}, nil
	}

	got, err := tc.GetOrSet(ctx, "u1", load)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)

	got, err = tc.GetOrSet(ctx, "u1", load)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)
	assert.Equal(t, 1, calls)

	ok, err := mem.Has(ctx, "profile:u1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTypedCache_GetOrSetError(t *testing.T) {
	mem := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
	defer func() { _ = mem.Close() }()
	tc := NewTypedCache[testProfile](mem, "profile:", time.Minute)

	boom := errors.New("boom")
	_, err := tc.GetOrSet(context.Background(), "u1", func() (*testProfile, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	_, ok := tc.Get(context.Background(), "u1")
	assert.False(t, ok)
}

func TestTypedCache_Delete(t *testing.T) {
	mem := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
	defer func() { _ = mem.Close() }()
	tc := NewTypedCache[testProfile](mem, "p:", time.Minute)
	ctx := context.Background()

	require.NoError(t, tc.Set(ctx, "u1", &testProfile{Name: "x"}))
	require.NoError(t, tc.Delete(ctx, "u1"))

	_, ok := tc.Get(ctx, "u1")
	assert.False(t, ok)
}
