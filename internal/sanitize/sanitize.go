// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package sanitize strips unsafe markup from user-supplied rich text before
// it is persisted.
package sanitize

import (
	"github.com/microcosm-cc/bluemonday"

	"github.com/olegiv/blogdesk/internal/model"
)

// Sanitizer applies an allow-list HTML policy.
// A Sanitizer is safe for concurrent use once constructed.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// New creates a Sanitizer using bluemonday's UGCPolicy, which keeps benign
// formatting (b, i, p, lists, links, images) and drops scripts, event
// handler attributes and javascript: URLs.
func New() *Sanitizer {
	return NewWithPolicy(bluemonday.UGCPolicy())
}

// NewWithPolicy creates a Sanitizer with a caller-provided policy.
func NewWithPolicy(p *bluemonday.Policy) *Sanitizer {
	return &Sanitizer{policy: p}
}

// Sanitize returns html with unsafe markup removed.
// Sanitize(Sanitize(x)) == Sanitize(x).
func (s *Sanitizer) Sanitize(html string) string {
	return s.policy.Sanitize(html)
}

// SanitizeMediaItems returns a copy of items where every non-nil
// ParagraphText has been sanitized. The input slice is not modified.
func (s *Sanitizer) SanitizeMediaItems(items []model.MediaItem) []model.MediaItem {
	result := make([]model.MediaItem, len(items))
	for i, item := range items {
		if item.ParagraphText != nil {
			clean := s.Sanitize(*item.ParagraphText)
			item.ParagraphText = &clean
		}
		result[i] = item
	}
	return result
}
