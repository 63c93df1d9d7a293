// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package auth is the authentication boundary: it resolves the current
// author for an operation and hashes local-mode passwords.
package auth

import (
	"context"
	"errors"

	"github.com/olegiv/blogdesk/internal/model"
)

// ErrUnauthenticated indicates no authenticated user is present.
var ErrUnauthenticated = errors.New("you must be signed in to do this")

// Provider resolves the user an operation runs on behalf of.
type Provider interface {
	// CurrentUser returns the authenticated user or ErrUnauthenticated.
	CurrentUser(ctx context.Context) (*model.User, error)
}

type contextKey string

const (
	contextKeyUser        contextKey = "user"
	contextKeyAccessToken contextKey = "access_token"
)

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user model.User) context.Context {
	return context.WithValue(ctx, contextKeyUser, user)
}

// UserFromContext returns the user stored by WithUser, if any.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(contextKeyUser).(model.User)
	if !ok || user.ID == "" {
		return nil, false
	}
	return &user, true
}

// WithAccessToken returns a copy of ctx carrying the caller's backend access token.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, contextKeyAccessToken, token)
}

// AccessTokenFromContext returns the access token stored by WithAccessToken.
func AccessTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(contextKeyAccessToken).(string)
	return token
}

// ContextProvider resolves the user placed in the context by HTTP middleware.
type ContextProvider struct{}

// CurrentUser implements Provider.
func (ContextProvider) CurrentUser(ctx context.Context) (*model.User, error) {
	if user, ok := UserFromContext(ctx); ok {
		return user, nil
	}
	return nil, ErrUnauthenticated
}

var _ Provider = ContextProvider{}
