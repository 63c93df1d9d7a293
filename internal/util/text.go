// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import "strings"

// TruncateRunes returns the first n characters (runes) of s.
// The cut is by character count only and may split an HTML tag.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// TrimPartialMarkup drops a trailing HTML tag or character reference that
// was cut before its closing '>' or ';'. A '<' or '&' that cannot start
// markup is kept.
func TrimPartialMarkup(s string) string {
	if i := strings.LastIndexByte(s, '<'); i > strings.LastIndexByte(s, '>') && startsTag(s[i+1:]) {
		s = s[:i]
	}
	if i := strings.LastIndexByte(s, '&'); i >= 0 && isPartialEntity(s[i+1:]) {
		s = s[:i]
	}
	return s
}

func startsTag(rest string) bool {
	if rest == "" {
		return true
	}
	c := rest[0]
	return c == '/' || c == '!' || c == '?' || isASCIILetter(c)
}

// isPartialEntity reports whether rest, the text after '&', is the unterminated
// start of a named or numeric character reference.
func isPartialEntity(rest string) bool {
	if rest == "" || len(rest) > maxEntityLength {
		return false
	}
	if rest[0] == '#' {
		rest = rest[1:]
	}
	for i := 0; i < len(rest); i++ {
		if c := rest[i]; !isASCIILetter(c) && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

// maxEntityLength bounds the longest named reference (&CounterClockwiseContourIntegral;).
const maxEntityLength = 32

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// SplitTags splits a comma separated tag string.
// Entries are trimmed, empty entries dropped; order and duplicates are kept.
func SplitTags(raw string) []string {
	tags := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// NonEmptyValues returns a copy of m without entries whose trimmed value is empty.
// Kept values are trimmed.
func NonEmptyValues(m map[string]string) map[string]string {
	result := make(map[string]string, len(m))
	for k, v := range m {
		if v = strings.TrimSpace(v); v != "" {
			result[k] = v
		}
	}
	return result
}
