// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Defaults applied while assembling a post record.
const (
	DefaultAuthorName = "Anonymous"
	DefaultCategory   = "General"
	ExcerptLength     = 200
	ExcerptEllipsis   = "..."
)

// Media item types
const (
	MediaTypeImage     = "image"
	MediaTypeVideo     = "video"
	MediaTypeParagraph = "paragraph"
)

// MediaItem is one block of a post's media section.
type MediaItem struct {
	Type          string  `json:"type"`
	URL           string  `json:"url,omitempty"`
	Key           string  `json:"key,omitempty"`
	Caption       string  `json:"caption,omitempty"`
	ParagraphText *string `json:"paragraph_text"`
}

// PostForm is the raw editor input, before sanitization and derivation.
type PostForm struct {
	Title         string            `json:"title"`
	Content       string            `json:"content"`
	Excerpt       string            `json:"excerpt"`
	Category      string            `json:"category"`
	Tags          string            `json:"tags"` // comma separated
	ImageURL      string            `json:"image_url"`
	ImageKey      string            `json:"image_key"`
	IsPublished   bool              `json:"is_published"`
	Featured      bool              `json:"featured"`
	SocialHandles map[string]string `json:"social_handles"`
}

// Post is the persisted post record.
type Post struct {
	ID            string            `json:"id,omitempty"`
	Title         string            `json:"title"`
	Slug          string            `json:"slug"`
	Content       string            `json:"content"`
	Excerpt       string            `json:"excerpt"`
	AuthorName    string            `json:"author_name"`
	AuthorID      string            `json:"author_id"`
	Category      string            `json:"category"`
	Tags          []string          `json:"tags"`
	ImageURL      string            `json:"image_url"`
	ImageKey      string            `json:"image_key"`
	IsPublished   bool              `json:"is_published"`
	Featured      bool              `json:"featured"`
	PublishedAt   *time.Time        `json:"published_at"`
	SocialHandles map[string]string `json:"social_handles"`
	MediaItems    []MediaItem       `json:"media_items"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// PostCard is the projection used to render post lists.
type PostCard struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Excerpt     string     `json:"excerpt"`
	AuthorName  string     `json:"author_name"`
	Category    string     `json:"category"`
	Tags        []string   `json:"tags"`
	ImageURL    string     `json:"image_url"`
	Featured    bool       `json:"featured"`
	PublishedAt *time.Time `json:"published_at"`
}

// Card returns the list projection of the post.
func (p *Post) Card() PostCard {
	return PostCard{
		ID:          p.ID,
		Title:       p.Title,
		Slug:        p.Slug,
		Excerpt:     p.Excerpt,
		AuthorName:  p.AuthorName,
		Category:    p.Category,
		Tags:        p.Tags,
		ImageURL:    p.ImageURL,
		Featured:    p.Featured,
		PublishedAt: p.PublishedAt,
	}
}
