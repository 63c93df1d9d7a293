// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/olegiv/blogdesk/internal/auth"
	"github.com/olegiv/blogdesk/internal/cache"
	"github.com/olegiv/blogdesk/internal/model"
	"github.com/olegiv/blogdesk/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testBuckets = map[string]string{
	model.BucketAliasPromotional: "promotional-images",
	model.BucketAliasContent:     "blog-images",
}

type fakeStore struct {
	mu        sync.Mutex
	uploads   []string
	removed   []string
	uploadErr error
	removeErr error
	noURL     bool
}

func (f *fakeStore) Upload(_ context.Context, bucket, key string, body io.Reader, _ storage.UploadOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return f.uploadErr
	}
	_, _ = io.Copy(io.Discard, body)
	f.uploads = append(f.uploads, bucket+"/"+key)
	return nil
}

func (f *fakeStore) PublicURL(bucket, key string) string {
	if f.noURL {
		return ""
	}
	return storage.PublicObjectURL("https://project.example.co", bucket, key)
}

func (f *fakeStore) Remove(_ context.Context, bucket string, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.removeErr != nil {
		return f.removeErr
	}
	for _, k := range keys {
		f.removed = append(f.removed, bucket+"/"+k)
	}
	return nil
}

func (f *fakeStore) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.uploads) + len(f.removed)
}

// fixedUser is an auth.Provider returning the same user, or ErrUnauthenticated when nil.
type fixedUser struct {
	user *model.User
}

func (f fixedUser) CurrentUser(context.Context) (*model.User, error) {
	if f.user == nil {
		return nil, auth.ErrUnauthenticated
	}
	u := *f.user
	return &u, nil
}

type fakeRepo struct {
	created   []model.Post
	createErr error
	posts     []model.Post
	limit     int
	offset    int
}

func (f *fakeRepo) CreatePost(_ context.Context, p model.Post) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = append(f.created, p)
	return "post-1", nil
}

func (f *fakeRepo) ListPublishedPosts(_ context.Context, limit, offset int) ([]model.Post, error) {
	f.limit, f.offset = limit, offset
	return f.posts, nil
}

func (f *fakeRepo) GetPublishedPostBySlug(_ context.Context, slug string) (*model.Post, error) {
	for i := range f.posts {
		if f.posts[i].Slug == slug {
			return &f.posts[i], nil
		}
	}
	return nil, model.ErrNotFound
}

type fakeProfiles struct {
	profiles map[string]*model.Profile
	err      error
	calls    int
}

func (f *fakeProfiles) GetProfile(_ context.Context, userID string) (*model.Profile, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if p, ok := f.profiles[userID]; ok {
		return p, nil
	}
	return nil, model.ErrNotFound
}

func newProfileService(src ProfileSource) *ProfileService {
	return NewProfileService(src, cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute}), time.Minute, testLogger())
}
