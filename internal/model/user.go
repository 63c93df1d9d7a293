// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models shared by the services, the remote
// backend client and the local store: posts, media items, assets, users and
// author profiles.
package model

import "time"

// User is an authenticated author as reported by the auth backend.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Profile holds the author details used when a post is submitted.
type Profile struct {
	ID                  string `json:"id"`
	DisplayName         string `json:"display_name"`
	Email               string `json:"email"`
	SpecializedCategory string `json:"specialized_category"`
}

// LocalUser is a user row of the local store, including its password hash.
type LocalUser struct {
	User
	PasswordHash string    `json:"-"` // Never expose in JSON
	CreatedAt    time.Time `json:"created_at"`
}
