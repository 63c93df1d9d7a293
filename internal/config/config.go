// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads blogdesk configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/olegiv/blogdesk/internal/model"
)

// Backend modes
const (
	// ModeRemote delegates auth, storage and persistence to the hosted backend.
	ModeRemote = "remote"
	// ModeLocal backs the same boundaries with SQLite and the local filesystem.
	ModeLocal = "local"
)

// MinSessionSecretLength is the minimum session secret length in local mode.
const MinSessionSecretLength = 32

// knownWeakSecrets contains example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	Mode       string `env:"BLOGDESK_MODE" envDefault:"remote"`
	ServerHost string `env:"BLOGDESK_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"BLOGDESK_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"BLOGDESK_ENV" envDefault:"development"`
	LogLevel   string `env:"BLOGDESK_LOG_LEVEL" envDefault:"info"`
	PublicURL  string `env:"BLOGDESK_PUBLIC_URL"` // Base URL for local public object URLs

	// Hosted backend (remote mode)
	BackendURL    string `env:"BLOGDESK_BACKEND_URL"`
	BackendAPIKey string `env:"BLOGDESK_BACKEND_API_KEY"`

	// Object store buckets
	PromotionalBucket string `env:"BLOGDESK_PROMOTIONAL_BUCKET" envDefault:"promotional-images"`
	ContentBucket     string `env:"BLOGDESK_CONTENT_BUCKET" envDefault:"blog-images"`

	// Local mode
	DBPath        string `env:"BLOGDESK_DB_PATH" envDefault:"./data/blogdesk.db"`
	UploadsDir    string `env:"BLOGDESK_UPLOADS_DIR" envDefault:"./uploads"`
	SessionSecret string `env:"BLOGDESK_SESSION_SECRET"`
	AdminEmail    string `env:"BLOGDESK_ADMIN_EMAIL"`
	AdminPassword string `env:"BLOGDESK_ADMIN_PASSWORD"`

	// Days of event log kept in local mode (0 = keep forever)
	EventRetentionDays int `env:"BLOGDESK_EVENT_RETENTION_DAYS" envDefault:"30"`

	// Profile cache
	RedisURL    string `env:"BLOGDESK_REDIS_URL"`                          // Optional Redis URL
	CachePrefix string `env:"BLOGDESK_CACHE_PREFIX" envDefault:"blogdesk:"` // Redis key prefix
	CacheTTL    int    `env:"BLOGDESK_CACHE_TTL" envDefault:"300"`         // Profile cache TTL in seconds

	// Upload endpoints rate limit, per client IP
	UploadRPS   float64 `env:"BLOGDESK_UPLOAD_RPS" envDefault:"2"`
	UploadBurst int     `env:"BLOGDESK_UPLOAD_BURST" envDefault:"5"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsLocal returns true when the local SQLite/filesystem backend is used.
func (c Config) IsLocal() bool {
	return c.Mode == ModeLocal
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// PublicBaseURL returns the base URL local public object URLs are built from.
func (c Config) PublicBaseURL() string {
	if c.PublicURL != "" {
		return strings.TrimRight(c.PublicURL, "/")
	}
	return "http://" + c.ServerAddr()
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// CacheDuration returns the profile cache TTL.
func (c Config) CacheDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// EventRetention returns how long local event log entries are kept.
func (c Config) EventRetention() time.Duration {
	return time.Duration(c.EventRetentionDays) * 24 * time.Hour
}

// Buckets maps the API bucket aliases to configured bucket names.
func (c Config) Buckets() map[string]string {
	return map[string]string{
		model.BucketAliasPromotional: c.PromotionalBucket,
		model.BucketAliasContent:     c.ContentBucket,
	}
}

// SlogLevel converts LogLevel to a slog.Level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load parses environment variables and returns a validated Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks mode-specific requirements.
func (c *Config) Validate() error {
	if c.PromotionalBucket == "" || c.ContentBucket == "" {
		return errors.New("bucket names must not be empty")
	}

	switch c.Mode {
	case ModeRemote:
		if c.BackendURL == "" {
			return errors.New("BLOGDESK_BACKEND_URL is required in remote mode")
		}
		if c.BackendAPIKey == "" {
			return errors.New("BLOGDESK_BACKEND_API_KEY is required in remote mode")
		}
	case ModeLocal:
		if len(c.SessionSecret) < MinSessionSecretLength {
			return fmt.Errorf("BLOGDESK_SESSION_SECRET must be at least %d bytes long in local mode, got %d bytes; "+
				"generate a secure secret with: openssl rand -base64 32",
				MinSessionSecretLength, len(c.SessionSecret))
		}
		for _, weak := range knownWeakSecrets {
			if c.SessionSecret == weak {
				return errors.New("BLOGDESK_SESSION_SECRET is a known default value and must not be used")
			}
		}
		if !hasMinimumEntropy(c.SessionSecret) {
			slog.Warn("BLOGDESK_SESSION_SECRET has low character diversity; " +
				"consider generating a random secret with: openssl rand -base64 32")
		}
	default:
		return fmt.Errorf("BLOGDESK_MODE must be %q or %q, got %q", ModeRemote, ModeLocal, c.Mode)
	}

	return nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	for _, class := range []string{
		"abcdefghijklmnopqrstuvwxyz",
		"ABCDEFGHIJKLMNOPQRSTUVWXYZ",
		"0123456789",
		"!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\",
	} {
		if strings.ContainsAny(s, class) {
			charTypes++
		}
	}
	return charTypes >= 3
}
