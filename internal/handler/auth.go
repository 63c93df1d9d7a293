// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/blogdesk/internal/auth"
	"github.com/olegiv/blogdesk/internal/middleware"
	"github.com/olegiv/blogdesk/internal/model"
	"github.com/olegiv/blogdesk/internal/session"
)

// Authenticator checks local credentials. store.Queries implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (model.User, error)
}

// AuthHandler handles local-mode sign in and sign out.
type AuthHandler struct {
	users  Authenticator
	sm     *scs.SessionManager
	lp     *middleware.LoginProtection
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users Authenticator, sm *scs.SessionManager, lp *middleware.LoginProtection, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{users: users, sm: sm, lp: lp, logger: logger}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		writeJSONError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	if locked, remaining := h.lp.IsAccountLocked(email); locked {
		writeJSONError(w, http.StatusTooManyRequests,
			fmt.Sprintf("Account temporarily locked. Try again in %d minutes.", int(remaining.Minutes())+1))
		return
	}

	user, err := h.users.Authenticate(r.Context(), email, req.Password)
	if err != nil {
		if !errors.Is(err, auth.ErrUnauthenticated) {
			writeServiceError(w, h.logger, "login failed", err)
			return
		}
		h.logger.Warn("failed login attempt", "category", model.EventCategoryAuth, "email", email)
		if locked, _ := h.lp.RecordFailedAttempt(email); locked {
			writeJSONError(w, http.StatusTooManyRequests, "Too many failed attempts. Account temporarily locked.")
			return
		}
		writeJSONError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	h.lp.RecordSuccessfulLogin(email)
	if err := session.Login(r.Context(), h.sm, user.ID); err != nil {
		writeServiceError(w, h.logger, "creating session failed", err)
		return
	}

	h.logger.Info("user logged in", "user_id", user.ID)
	writeJSONSuccess(w, map[string]any{
		"user": user,
	})
}

// Logout handles POST /api/v1/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := session.Logout(r.Context(), h.sm); err != nil {
		writeServiceError(w, h.logger, "destroying session failed", err)
		return
	}
	writeJSONSuccess(w, nil)
}

// Me handles GET /api/v1/auth/me in both modes.
func Me(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, auth.ErrUnauthenticated.Error())
		return
	}
	writeJSONSuccess(w, map[string]any{
		"user": user,
	})
}
