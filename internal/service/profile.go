// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/olegiv/blogdesk/internal/cache"
	"github.com/olegiv/blogdesk/internal/model"
)

// ProfileSource loads author profiles. Both backend.Client and
// store.Queries implement it.
type ProfileSource interface {
	GetProfile(ctx context.Context, userID string) (*model.Profile, error)
}

// ProfileService reads author profiles through a cache.
type ProfileService struct {
	source ProfileSource
	cache  *cache.TypedCache[model.Profile]
	logger *slog.Logger
}

// NewProfileService creates a ProfileService caching profiles in c for ttl.
func NewProfileService(source ProfileSource, c cache.Cacher, ttl time.Duration, logger *slog.Logger) *ProfileService {
	return &ProfileService{
		source: source,
		cache:  cache.NewTypedCache[model.Profile](c, "profile:", ttl),
		logger: logger,
	}
}

// Get returns the profile of userID, or nil if the user has none.
// Missing profiles are not cached.
func (s *ProfileService) Get(ctx context.Context, userID string) (*model.Profile, error) {
	p, err := s.cache.GetOrSet(ctx, userID, func() (*model.Profile, error) {
		return s.source.GetProfile(ctx, userID)
	})
	if errors.Is(err, model.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Invalidate drops the cached profile of userID.
func (s *ProfileService) Invalidate(ctx context.Context, userID string) {
	if err := s.cache.Delete(ctx, userID); err != nil {
		s.logger.Warn("failed to invalidate profile cache", "category", model.EventCategoryCache, "user_id", userID, "error", err)
	}
}
