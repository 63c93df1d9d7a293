// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/olegiv/blogdesk/internal/model"
)

const upsertProfile = `INSERT INTO profiles (id, display_name, email, specialized_category)
VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    display_name = excluded.display_name,
    email = excluded.email,
    specialized_category = excluded.specialized_category`

// UpsertProfile creates or replaces the profile of a user.
func (q *Queries) UpsertProfile(ctx context.Context, p model.Profile) error {
	_, err := q.db.ExecContext(ctx, upsertProfile, p.ID, p.DisplayName, p.Email, p.SpecializedCategory)
	return err
}

const getProfile = `SELECT id, display_name, email, specialized_category FROM profiles WHERE id = ?`

// GetProfile returns model.ErrNotFound when the user has no profile.
func (q *Queries) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	var p model.Profile
	err := q.db.QueryRowContext(ctx, getProfile, userID).
		Scan(&p.ID, &p.DisplayName, &p.Email, &p.SpecializedCategory)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
