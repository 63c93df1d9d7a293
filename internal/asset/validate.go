// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package asset holds the pure parts of the image upload pipeline:
// file validation, storage key generation and key recovery from public URLs.
package asset

import (
	"strings"

	"github.com/olegiv/blogdesk/internal/model"
)

// MaxAssetSize is the largest accepted upload in bytes (5MB).
const MaxAssetSize = 5 * 1024 * 1024

// Validate checks a candidate file before any network call.
// Rules are checked in order and the first failure wins.
func Validate(a model.Asset) error {
	if !strings.HasPrefix(a.MimeType, "image/") {
		return ErrInvalidType
	}
	if a.SizeBytes > MaxAssetSize {
		return ErrTooLarge
	}
	return nil
}
