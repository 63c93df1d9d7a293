// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides general-purpose text helpers: URL slug generation
// with transliteration, excerpt truncation and tag list parsing.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// nonAlphanumeric matches runs of characters that are not lowercase ASCII letters or digits.
var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converts a string to a URL-friendly slug.
// Accents are stripped and remaining non-ASCII letters transliterated, the result is lowercased,
// every run of non-alphanumeric characters becomes a single hyphen and
// leading/trailing hyphens are trimmed.
// The slug is deterministic but not unique; uniqueness is the persistence layer's concern.
func Slugify(s string) string {
	// Decompose accents and drop the combining marks
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)

	result = strings.ToLower(unidecode.Unidecode(result))
	result = nonAlphanumeric.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// IsValidSlug checks if a string is a valid slug format.
func IsValidSlug(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
			return false
		}
	}

	if s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}

	return !strings.Contains(s, "--")
}
