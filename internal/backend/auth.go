// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/olegiv/blogdesk/internal/auth"
	"github.com/olegiv/blogdesk/internal/model"
)

// GetUser resolves an access token to its user via GET /auth/v1/user.
// An invalid or expired token yields auth.ErrUnauthenticated.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*model.User, error) {
	if accessToken == "" {
		return nil, auth.ErrUnauthenticated
	}

	req, err := c.newRequest(auth.WithAccessToken(ctx, accessToken), http.MethodGet, "/auth/v1/user", nil)
	if err != nil {
		return nil, err
	}

	var user model.User
	if err := c.doJSON(req, &user); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden) {
			return nil, fmt.Errorf("%w: %s", auth.ErrUnauthenticated, apiErr.Message)
		}
		return nil, fmt.Errorf("fetching current user: %w", err)
	}

	if user.ID == "" {
		return nil, auth.ErrUnauthenticated
	}
	return &user, nil
}

// PingContext checks that the auth service answers GET /auth/v1/health.
func (c *Client) PingContext(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/auth/v1/health", nil)
	if err != nil {
		return err
	}
	if err := c.doJSON(req, nil); err != nil {
		return fmt.Errorf("backend health: %w", err)
	}
	return nil
}
