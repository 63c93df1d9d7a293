// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service composes validation, naming, storage, sanitization and
// persistence into the operations exposed over HTTP.
package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/olegiv/blogdesk/internal/asset"
	"github.com/olegiv/blogdesk/internal/auth"
	"github.com/olegiv/blogdesk/internal/model"
	"github.com/olegiv/blogdesk/internal/storage"
)

// AssetService uploads and deletes images in the configured buckets.
// It holds no per-operation state and is safe for concurrent use.
type AssetService struct {
	store   storage.Store
	users   auth.Provider
	buckets map[string]string // alias -> bucket name
	logger  *slog.Logger
	now     func() time.Time
}

// NewAssetService creates an AssetService. buckets maps API aliases
// (model.BucketAliasPromotional, model.BucketAliasContent) to bucket names.
func NewAssetService(store storage.Store, users auth.Provider, buckets map[string]string, logger *slog.Logger) *AssetService {
	return &AssetService{
		store:   store,
		users:   users,
		buckets: buckets,
		logger:  logger,
		now:     time.Now,
	}
}

// Bucket resolves an alias or a configured bucket name.
func (s *AssetService) Bucket(name string) (string, error) {
	if bucket, ok := s.buckets[name]; ok {
		return bucket, nil
	}
	for _, bucket := range s.buckets {
		if bucket == name {
			return bucket, nil
		}
	}
	return "", ErrUnknownBucket
}

// Upload validates a, stores body under a fresh key and returns its public URL.
// Validation failures and a missing user abort before the store is contacted.
// If the URL cannot be resolved the stored object is left in place.
func (s *AssetService) Upload(ctx context.Context, bucketName string, a model.Asset, body io.Reader) (model.StoredAsset, error) {
	if err := asset.Validate(a); err != nil {
		return model.StoredAsset{}, err
	}

	bucket, err := s.Bucket(bucketName)
	if err != nil {
		return model.StoredAsset{}, err
	}

	user, err := s.users.CurrentUser(ctx)
	if err != nil {
		return model.StoredAsset{}, err
	}

	key, err := asset.GenerateKey(a.OriginalName, s.now())
	if err != nil {
		return model.StoredAsset{}, err
	}

	if err := s.store.Upload(ctx, bucket, key, body, storage.DefaultUploadOptions(a.MimeType)); err != nil {
		return model.StoredAsset{}, err
	}

	url := s.store.PublicURL(bucket, key)
	if url == "" {
		s.logger.Warn("uploaded object has no public URL",
			"category", model.EventCategoryAsset, "bucket", bucket, "key", key)
		return model.StoredAsset{}, ErrURLUnavailable
	}

	s.logger.Info("asset uploaded",
		"bucket", bucket, "key", key, "size", a.SizeBytes, "user_id", user.ID)

	return model.StoredAsset{Bucket: bucket, Key: key, URL: url}, nil
}

// Delete removes the object whose public URL is rawURL.
func (s *AssetService) Delete(ctx context.Context, bucketName, rawURL string) error {
	return s.DeleteKey(ctx, bucketName, asset.KeyFromURL(rawURL))
}

// DeleteKey removes the object stored under key.
func (s *AssetService) DeleteKey(ctx context.Context, bucketName, key string) error {
	if key == "" {
		return ErrMissingKey
	}

	bucket, err := s.Bucket(bucketName)
	if err != nil {
		return err
	}

	user, err := s.users.CurrentUser(ctx)
	if err != nil {
		return err
	}

	if err := s.store.Remove(ctx, bucket, key); err != nil {
		return err
	}

	s.logger.Info("asset removed", "bucket", bucket, "key", key, "user_id", user.ID)
	return nil
}
