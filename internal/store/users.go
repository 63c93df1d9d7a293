// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/blogdesk/internal/auth"
	"github.com/olegiv/blogdesk/internal/model"
)

// CreateUserParams holds the fields for a new local user.
type CreateUserParams struct {
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

const createUser = `INSERT INTO users (id, email, password_hash, created_at)
VALUES (?, ?, ?, ?)`

// CreateUser inserts a user with a fresh UUID.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (model.LocalUser, error) {
	u := model.LocalUser{
		User: model.User{
			ID:    uuid.NewString(),
			Email: strings.ToLower(strings.TrimSpace(arg.Email)),
		},
		PasswordHash: arg.PasswordHash,
		CreatedAt:    arg.CreatedAt,
	}
	_, err := q.db.ExecContext(ctx, createUser, u.ID, u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		return model.LocalUser{}, err
	}
	return u, nil
}

const getUserByEmail = `SELECT id, email, password_hash, created_at FROM users WHERE email = ?`

// GetUserByEmail returns sql.ErrNoRows when no user matches.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (model.LocalUser, error) {
	row := q.db.QueryRowContext(ctx, getUserByEmail, strings.ToLower(strings.TrimSpace(email)))
	return scanUser(row)
}

const getUserByID = `SELECT id, email, password_hash, created_at FROM users WHERE id = ?`

// GetUserByID returns sql.ErrNoRows when no user matches.
func (q *Queries) GetUserByID(ctx context.Context, id string) (model.LocalUser, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByID, id))
}

func scanUser(row *sql.Row) (model.LocalUser, error) {
	var u model.LocalUser
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	return u, err
}

// Authenticate checks email and password and returns the matching user.
// Unknown emails and wrong passwords both return auth.ErrUnauthenticated.
func (q *Queries) Authenticate(ctx context.Context, email, password string) (model.User, error) {
	u, err := q.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, auth.ErrUnauthenticated
		}
		return model.User{}, fmt.Errorf("looking up user: %w", err)
	}

	ok, err := auth.CheckPassword(password, u.PasswordHash)
	if err != nil {
		return model.User{}, fmt.Errorf("checking password: %w", err)
	}
	if !ok {
		return model.User{}, auth.ErrUnauthenticated
	}
	return u.User, nil
}
