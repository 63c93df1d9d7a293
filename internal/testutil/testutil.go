// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers for blogdesk.
package testutil

import (
	"database/sql"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/olegiv/blogdesk/internal/store"
)

// TestLogger creates a test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestLoggerSilent creates a logger that discards everything.
func TestLoggerSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestDB creates a temporary database with migrations applied.
// The database is closed when the test finishes.
func TestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := store.NewDB(filepath.Join(t.TempDir(), "blogdesk-test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := store.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}
