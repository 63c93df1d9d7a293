// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"errors"
	"fmt"

	"github.com/olegiv/blogdesk/internal/asset"
)

var (
	// ErrURLUnavailable indicates the store accepted an upload but returned no public URL.
	ErrURLUnavailable = errors.New("stored file has no public URL")

	// ErrUnknownBucket indicates a bucket that is not configured.
	ErrUnknownBucket = errors.New("unknown bucket")

	// ErrPostNotFound indicates no post matches the requested slug.
	ErrPostNotFound = errors.New("post not found")

	// ErrMissingKey indicates a delete request that resolves to no object key.
	ErrMissingKey = fmt.Errorf("%w: missing object key", asset.ErrValidation)

	// ErrMissingTitle indicates a post submission without a title.
	ErrMissingTitle = fmt.Errorf("%w: title is required", asset.ErrValidation)
)
