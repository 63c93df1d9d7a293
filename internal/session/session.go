// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session manages local-mode author sessions backed by SQLite.
package session

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

// KeyUserID is the session key holding the signed-in user's ID.
const KeyUserID = "user_id"

// New creates a new session manager configured with SQLite store.
func New(db *sql.DB, isDev bool) *scs.SessionManager {
	sm := scs.New()

	sm.Store = sqlite3store.New(db)

	sm.Lifetime = 24 * time.Hour
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"
	sm.Cookie.Secure = !isDev
	if !isDev {
		// __Host- requires Secure, Path=/ and no Domain
		sm.Cookie.Name = "__Host-session"
	}

	return sm
}

// Login renews the session token and records userID.
func Login(ctx context.Context, sm *scs.SessionManager, userID string) error {
	if err := sm.RenewToken(ctx); err != nil {
		return err
	}
	sm.Put(ctx, KeyUserID, userID)
	return nil
}

// Logout destroys the session.
func Logout(ctx context.Context, sm *scs.SessionManager) error {
	return sm.Destroy(ctx)
}

// UserID returns the signed-in user's ID, or "" when there is none.
func UserID(ctx context.Context, sm *scs.SessionManager) string {
	return sm.GetString(ctx, KeyUserID)
}
