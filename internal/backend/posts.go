// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package backend

import (
	"context"
	"fmt"

	"github.com/supabase-community/postgrest-go"

	"github.com/olegiv/blogdesk/internal/model"
)

const postsTable = "posts"

// flexID accepts both string and numeric primary keys.
type flexID string

func (id *flexID) UnmarshalJSON(data []byte) error {
	*id = flexID(rawString(data))
	return nil
}

// postRow is a posts table row as returned by the REST API.
type postRow struct {
	model.Post
	ID flexID `json:"id"`
}

func (r postRow) toModel() model.Post {
	p := r.Post
	p.ID = string(r.ID)
	return p
}

// CreatePost inserts record into the posts table and returns the new row ID.
// Errors are returned as reported by the backend.
func (c *Client) CreatePost(ctx context.Context, record model.Post) (string, error) {
	rc, err := c.rest(ctx)
	if err != nil {
		return "", err
	}

	var rows []postRow
	if _, err := rc.From(postsTable).Insert(record, false, "", "representation", "").ExecuteTo(&rows); err != nil {
		return "", fmt.Errorf("inserting post: %w", err)
	}
	if len(rows) == 0 {
		return "", fmt.Errorf("backend returned no row for created post")
	}
	return string(rows[0].ID), nil
}

// ListPublishedPosts returns published posts, newest first.
func (c *Client) ListPublishedPosts(ctx context.Context, limit, offset int) ([]model.Post, error) {
	rc, err := c.rest(ctx)
	if err != nil {
		return nil, err
	}

	q := rc.From(postsTable).
		Select("*", "", false).
		Eq("is_published", "true").
		Order("published_at", &postgrest.OrderOpts{Ascending: false}).
		Range(offset, offset+limit-1, "")
	return queryPosts(q)
}

// GetPublishedPostBySlug returns the published post with slug, or
// model.ErrNotFound. Slugs are not unique; the most recently created match wins.
func (c *Client) GetPublishedPostBySlug(ctx context.Context, slug string) (*model.Post, error) {
	rc, err := c.rest(ctx)
	if err != nil {
		return nil, err
	}

	q := rc.From(postsTable).
		Select("*", "", false).
		Eq("slug", slug).
		Eq("is_published", "true").
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Limit(1, "")
	posts, err := queryPosts(q)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, model.ErrNotFound
	}
	return &posts[0], nil
}

func queryPosts(q *postgrest.FilterBuilder) ([]model.Post, error) {
	var rows []postRow
	if _, err := q.ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("querying posts: %w", err)
	}

	posts := make([]model.Post, 0, len(rows))
	for _, r := range rows {
		posts = append(posts, r.toModel())
	}
	return posts, nil
}
