// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package asset

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"
)

// NewKey generates a storage key for originalName using the current time.
func NewKey(originalName string) (string, error) {
	return GenerateKey(originalName, time.Now())
}

// GenerateKey derives a storage key of the form
// <epoch-millis>-<base36 token>.<ext> from the original filename.
// The token carries 64 random bits. No collision check against the store is made.
// The key never contains a slash.
func GenerateKey(originalName string, now time.Time) (string, error) {
	token, err := randomToken()
	if err != nil {
		return "", fmt.Errorf("generating key token: %w", err)
	}

	key := strconv.FormatInt(now.UnixMilli(), 10) + "-" + token
	if ext := Extension(originalName); ext != "" {
		key += "." + ext
	}
	return key, nil
}

// Extension returns the text after the last dot of the file's base name,
// or "" when there is none.
func Extension(originalName string) string {
	base := path.Base(strings.ReplaceAll(originalName, "\\", "/"))
	idx := strings.LastIndex(base, ".")
	if idx < 0 || base == "." || base == "/" {
		return ""
	}
	return base[idx+1:]
}

// KeyFromURL recovers the storage key from a public object URL: the last
// path segment, unescaped. Query strings and fragments are ignored.
// It assumes the store places the key, unmodified, as the final path segment;
// prefer deleting by a stored key where one is available.
func KeyFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return lastSegment(rawURL)
	}

	segment := lastSegment(u.EscapedPath())
	key, err := url.PathUnescape(segment)
	if err != nil {
		return segment
	}
	return key
}

func lastSegment(s string) string {
	return s[strings.LastIndex(s, "/")+1:]
}

func randomToken() (string, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return strconv.FormatUint(binary.BigEndian.Uint64(b[:]), 36), nil
}
