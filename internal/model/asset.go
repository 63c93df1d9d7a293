// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Bucket aliases accepted by the HTTP API.
const (
	BucketAliasPromotional = "promotional"
	BucketAliasContent     = "content"
)

// Common image MIME types.
const (
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
	MimeTypeGIF  = "image/gif"
	MimeTypeWebP = "image/webp"
)

// Asset describes a candidate upload. It lives for the duration of one upload call.
type Asset struct {
	OriginalName string `json:"original_name"`
	MimeType     string `json:"mime_type"`
	SizeBytes    int64  `json:"size_bytes"`
}

// StoredAsset is the result of a successful upload.
// Key is kept next to URL so the object can be removed without parsing the URL.
type StoredAsset struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	URL    string `json:"url"`
}
