// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/olegiv/blogdesk/internal/auth"
	"github.com/olegiv/blogdesk/internal/model"
	"github.com/olegiv/blogdesk/internal/sanitize"
	"github.com/olegiv/blogdesk/internal/util"
)

// Post listing limits
const (
	DefaultPageSize = 12
	MaxPageSize     = 100
)

// PostRepository persists and reads posts. Both backend.Client and
// store.Queries implement it.
type PostRepository interface {
	CreatePost(ctx context.Context, record model.Post) (string, error)
	ListPublishedPosts(ctx context.Context, limit, offset int) ([]model.Post, error)
	GetPublishedPostBySlug(ctx context.Context, slug string) (*model.Post, error)
}

// BuildPostRecord assembles the post to persist from editor input.
// It performs no I/O.
func BuildPostRecord(form model.PostForm, media []model.MediaItem, profile *model.Profile, user model.User, now time.Time, s *sanitize.Sanitizer) model.Post {
	post := model.Post{
		Title:         form.Title,
		Slug:          util.Slugify(form.Title),
		Content:       s.Sanitize(form.Content),
		Excerpt:       form.Excerpt,
		AuthorName:    authorName(profile),
		AuthorID:      user.ID,
		Category:      category(form, profile),
		Tags:          util.SplitTags(form.Tags),
		ImageURL:      form.ImageURL,
		ImageKey:      form.ImageKey,
		IsPublished:   form.IsPublished,
		Featured:      form.Featured,
		SocialHandles: util.NonEmptyValues(form.SocialHandles),
		MediaItems:    s.SanitizeMediaItems(media),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if strings.TrimSpace(post.Excerpt) == "" {
		post.Excerpt = excerpt(form.Content, s)
	}
	if post.IsPublished {
		published := now
		post.PublishedAt = &published
	}

	return post
}

// excerpt takes the first model.ExcerptLength characters of the raw content,
// drops a tag or character reference cut in half at the end, sanitizes the
// result and appends the ellipsis.
func excerpt(raw string, s *sanitize.Sanitizer) string {
	cut := util.TrimPartialMarkup(util.TruncateRunes(raw, model.ExcerptLength))
	return s.Sanitize(cut) + model.ExcerptEllipsis
}

func authorName(p *model.Profile) string {
	switch {
	case p == nil:
		return model.DefaultAuthorName
	case strings.TrimSpace(p.DisplayName) != "":
		return p.DisplayName
	case strings.TrimSpace(p.Email) != "":
		return p.Email
	default:
		return model.DefaultAuthorName
	}
}

func category(form model.PostForm, p *model.Profile) string {
	if c := strings.TrimSpace(form.Category); c != "" {
		return c
	}
	if p != nil && strings.TrimSpace(p.SpecializedCategory) != "" {
		return p.SpecializedCategory
	}
	return model.DefaultCategory
}

// PostService submits and reads posts.
type PostService struct {
	posts     PostRepository
	profiles  *ProfileService
	users     auth.Provider
	sanitizer *sanitize.Sanitizer
	logger    *slog.Logger
	now       func() time.Time
}

// NewPostService creates a PostService.
func NewPostService(posts PostRepository, profiles *ProfileService, users auth.Provider, sanitizer *sanitize.Sanitizer, logger *slog.Logger) *PostService {
	return &PostService{
		posts:     posts,
		profiles:  profiles,
		users:     users,
		sanitizer: sanitizer,
		logger:    logger,
		now:       time.Now,
	}
}

// Submit builds a post for the current user and persists it.
// Repository errors are returned unchanged.
func (s *PostService) Submit(ctx context.Context, form model.PostForm, media []model.MediaItem) (model.Post, error) {
	if strings.TrimSpace(form.Title) == "" {
		return model.Post{}, ErrMissingTitle
	}

	user, err := s.users.CurrentUser(ctx)
	if err != nil {
		return model.Post{}, err
	}

	profile, err := s.profiles.Get(ctx, user.ID)
	if err != nil {
		// A missing profile only affects defaults; the post is still accepted.
		s.logger.Warn("profile lookup failed, using defaults",
			"category", model.EventCategoryPost, "user_id", user.ID, "error", err)
		profile = nil
	}

	post := BuildPostRecord(form, media, profile, *user, s.now(), s.sanitizer)

	id, err := s.posts.CreatePost(ctx, post)
	if err != nil {
		return model.Post{}, err
	}
	post.ID = id

	s.logger.Info("post created", "id", id, "slug", post.Slug, "published", post.IsPublished)
	return post, nil
}

// ListCards returns published posts as cards, newest first.
// limit is clamped to [1, MaxPageSize]; a non-positive limit uses DefaultPageSize.
func (s *PostService) ListCards(ctx context.Context, limit, offset int) ([]model.PostCard, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	limit = min(limit, MaxPageSize)
	offset = max(offset, 0)

	posts, err := s.posts.ListPublishedPosts(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	cards := make([]model.PostCard, 0, len(posts))
	for i := range posts {
		cards = append(cards, posts[i].Card())
	}
	return cards, nil
}

// GetBySlug returns the published post with slug or ErrPostNotFound.
func (s *PostService) GetBySlug(ctx context.Context, slug string) (*model.Post, error) {
	if !util.IsValidSlug(slug) {
		return nil, ErrPostNotFound
	}

	post, err := s.posts.GetPublishedPostBySlug(ctx, slug)
	if errors.Is(err, model.ErrNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	if !post.IsPublished {
		return nil, ErrPostNotFound
	}
	return post, nil
}
