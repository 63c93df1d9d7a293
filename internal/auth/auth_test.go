// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/olegiv/blogdesk/internal/model"
)

func TestContextProvider_NoUser(t *testing.T) {
	_, err := ContextProvider{}.CurrentUser(context.Background())
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("CurrentUser() error = %v, want ErrUnauthenticated", err)
	}
}

func TestContextProvider_EmptyUserID(t *testing.T) {
	ctx := WithUser(context.Background(), model.User{Email: "ghost@example.com"})

	_, err := ContextProvider{}.CurrentUser(ctx)
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("CurrentUser() error = %v, want ErrUnauthenticated", err)
	}
}

func TestContextProvider_WithUser(t *testing.T) {
	ctx := WithUser(context.Background(), model.User{ID: "u1", Email: "jane@example.com"})

	user, err := ContextProvider{}.CurrentUser(ctx)
	if err != nil {
		t.Fatalf("CurrentUser() error = %v", err)
	}
	if user.ID != "u1" || user.Email != "jane@example.com" {
		t.Errorf("CurrentUser() = %+v", user)
	}
}

func TestAccessToken(t *testing.T) {
	if got := AccessTokenFromContext(context.Background()); got != "" {
		t.Errorf("AccessTokenFromContext() = %q, want empty", got)
	}

	ctx := WithAccessToken(context.Background(), "jwt-token")
	if got := AccessTokenFromContext(ctx); got != "jwt-token" {
		t.Errorf("AccessTokenFromContext() = %q, want %q", got, "jwt-token")
	}
}
