// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/olegiv/blogdesk/internal/model"
)

const createPost = `INSERT INTO posts (
    id, title, slug, content, excerpt, author_name, author_id, category, tags,
    image_url, image_key, is_published, featured, published_at,
    social_handles, media_items, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// CreatePost inserts p and returns the generated UUID.
// Tags, social handles and media items are stored as JSON text.
func (q *Queries) CreatePost(ctx context.Context, p model.Post) (string, error) {
	tags, err := marshalJSON(p.Tags, "[]")
	if err != nil {
		return "", fmt.Errorf("encoding tags: %w", err)
	}
	handles, err := marshalJSON(p.SocialHandles, "{}")
	if err != nil {
		return "", fmt.Errorf("encoding social handles: %w", err)
	}
	media, err := marshalJSON(p.MediaItems, "[]")
	if err != nil {
		return "", fmt.Errorf("encoding media items: %w", err)
	}

	var publishedAt sql.NullTime
	if p.PublishedAt != nil {
		publishedAt = sql.NullTime{Time: *p.PublishedAt, Valid: true}
	}

	id := uuid.NewString()
	_, err = q.db.ExecContext(ctx, createPost,
		id, p.Title, p.Slug, p.Content, p.Excerpt, p.AuthorName, p.AuthorID, p.Category, tags,
		p.ImageURL, p.ImageKey, p.IsPublished, p.Featured, publishedAt,
		handles, media, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

const postColumns = `id, title, slug, content, excerpt, author_name, author_id, category, tags,
    image_url, image_key, is_published, featured, published_at,
    social_handles, media_items, created_at, updated_at`

const listPublishedPosts = `SELECT ` + postColumns + ` FROM posts
WHERE is_published = 1
ORDER BY published_at DESC, created_at DESC
LIMIT ? OFFSET ?`

// ListPublishedPosts returns published posts, newest first.
func (q *Queries) ListPublishedPosts(ctx context.Context, limit, offset int) ([]model.Post, error) {
	rows, err := q.db.QueryContext(ctx, listPublishedPosts, limit, offset)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	posts := []model.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

const getPublishedPostBySlug = `SELECT ` + postColumns + ` FROM posts
WHERE slug = ? AND is_published = 1
ORDER BY created_at DESC
LIMIT 1`

// GetPublishedPostBySlug returns the newest published post with slug, or
// model.ErrNotFound. Drafts are never returned.
func (q *Queries) GetPublishedPostBySlug(ctx context.Context, slug string) (*model.Post, error) {
	p, err := scanPost(q.db.QueryRowContext(ctx, getPublishedPostBySlug, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (model.Post, error) {
	var (
		p                    model.Post
		tags, handles, media string
		publishedAt          sql.NullTime
	)
	err := row.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Content, &p.Excerpt, &p.AuthorName, &p.AuthorID, &p.Category, &tags,
		&p.ImageURL, &p.ImageKey, &p.IsPublished, &p.Featured, &publishedAt,
		&handles, &media, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return model.Post{}, err
	}

	if publishedAt.Valid {
		t := publishedAt.Time
		p.PublishedAt = &t
	}
	if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
		return model.Post{}, fmt.Errorf("decoding tags: %w", err)
	}
	if err := json.Unmarshal([]byte(handles), &p.SocialHandles); err != nil {
		return model.Post{}, fmt.Errorf("decoding social handles: %w", err)
	}
	if err := json.Unmarshal([]byte(media), &p.MediaItems); err != nil {
		return model.Post{}, fmt.Errorf("decoding media items: %w", err)
	}
	return p, nil
}

func marshalJSON(v any, empty string) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	if string(data) == "null" {
		return empty, nil
	}
	return string(data), nil
}
