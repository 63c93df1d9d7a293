// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "errors"

// ErrNotFound is returned by repositories when a requested record does not exist.
var ErrNotFound = errors.New("not found")
