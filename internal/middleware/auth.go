// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/blogdesk/internal/auth"
	"github.com/olegiv/blogdesk/internal/model"
	"github.com/olegiv/blogdesk/internal/session"
)

// TokenVerifier resolves a backend access token to its user.
// backend.Client implements it.
type TokenVerifier interface {
	GetUser(ctx context.Context, accessToken string) (*model.User, error)
}

// UserLookup loads local users by ID. store.Queries implements it.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (model.LocalUser, error)
}

// bearerToken returns the token of an "Authorization: Bearer <token>" header.
func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// BearerAuth resolves the bearer token against the backend and stores the user
// and token in the request context. Requests without a token pass through
// anonymously; an invalid token is rejected with 401.
func BearerAuth(verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := verifier.GetUser(r.Context(), token)
			if err != nil {
				if errors.Is(err, auth.ErrUnauthenticated) {
					WriteJSONError(w, http.StatusUnauthorized, "Invalid or expired access token")
					return
				}
				logger.Error("failed to verify access token", "category", model.EventCategoryAuth, "error", err)
				WriteJSONError(w, http.StatusBadGateway, "Could not verify access token")
				return
			}

			ctx := auth.WithAccessToken(r.Context(), token)
			ctx = auth.WithUser(ctx, *user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionAuth loads the signed-in local user into the request context.
// It must run inside sm.LoadAndSave. A session pointing at a deleted user is destroyed.
func SessionAuth(sm *scs.SessionManager, users UserLookup, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := session.UserID(r.Context(), sm)
			if userID == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.GetUserByID(r.Context(), userID)
			if err != nil {
				logger.Warn("session user not found, destroying session",
					"category", model.EventCategoryAuth, "user_id", userID, "error", err)
				_ = session.Logout(r.Context(), sm)
				next.ServeHTTP(w, r)
				return
			}

			ctx := auth.WithUser(r.Context(), user.User)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects requests without an authenticated user with 401.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.UserFromContext(r.Context()); !ok {
			WriteJSONError(w, http.StatusUnauthorized, auth.ErrUnauthenticated.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}
