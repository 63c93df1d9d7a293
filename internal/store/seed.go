// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/blogdesk/internal/auth"
	"github.com/olegiv/blogdesk/internal/model"
)

// SeedAdmin creates the initial local author if no user with email exists.
// An empty email or password disables seeding.
func SeedAdmin(ctx context.Context, db *sql.DB, email, password string, logger *slog.Logger) error {
	if email == "" || password == "" {
		return nil
	}

	queries := New(db)

	_, err := queries.GetUserByEmail(ctx, email)
	if err == nil {
		logger.Info("admin user already exists, skipping seed")
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	user, err := queries.CreateUser(ctx, CreateUserParams{
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	if err := queries.UpsertProfile(ctx, model.Profile{ID: user.ID, Email: user.Email}); err != nil {
		return fmt.Errorf("creating admin profile: %w", err)
	}

	logger.Info("created admin user", "category", model.EventCategoryAuth, "id", user.ID, "email", user.Email)
	return nil
}
