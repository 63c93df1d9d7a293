// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package backend

import (
	"context"
	"fmt"

	"github.com/olegiv/blogdesk/internal/model"
)

// GetProfile returns the author profile for userID, or model.ErrNotFound.
func (c *Client) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	rc, err := c.rest(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.Profile
	_, err = rc.From("profiles").
		Select("id,display_name,email,specialized_category", "", false).
		Eq("id", userID).
		Limit(1, "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("fetching profile: %w", err)
	}
	if len(rows) == 0 {
		return nil, model.ErrNotFound
	}
	return &rows[0], nil
}
