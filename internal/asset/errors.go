// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package asset

import (
	"errors"
	"fmt"
)

// ErrValidation is matched by every error Validate returns.
// Validation errors are detected locally and never reach the network.
var ErrValidation = errors.New("invalid file")

var (
	// ErrInvalidType indicates the file is not an image.
	ErrInvalidType = fmt.Errorf("%w: only image files are allowed", ErrValidation)

	// ErrTooLarge indicates the file exceeds MaxAssetSize.
	ErrTooLarge = fmt.Errorf("%w: file must be 5MB or smaller", ErrValidation)
)
