// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package storage defines the object store boundary used for image assets
// and a filesystem implementation of it for local mode.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// DefaultCacheControl is the cache lifetime, in seconds, set on uploaded objects.
const DefaultCacheControl = "3600"

// PublicPathPrefix is the path under which public objects are served.
const PublicPathPrefix = "/storage/v1/object/public"

var (
	// ErrStore is matched by every *StoreError.
	ErrStore = errors.New("storage request failed")

	// ErrKeyExists indicates an upload collided with an existing key while upsert was off.
	ErrKeyExists = errors.New("object already exists")

	// ErrObjectNotFound indicates the requested object does not exist.
	ErrObjectNotFound = errors.New("object not found")
)

// UploadOptions control how an object is written.
type UploadOptions struct {
	ContentType  string
	CacheControl string
	// Upsert=false makes a colliding key a failure instead of an overwrite.
	Upsert bool
}

// DefaultUploadOptions returns the options used for image assets.
func DefaultUploadOptions(contentType string) UploadOptions {
	return UploadOptions{
		ContentType:  contentType,
		CacheControl: DefaultCacheControl,
		Upsert:       false,
	}
}

// Store is an object store partitioned into buckets.
// Implementations perform a single attempt per call; there is no retry layer.
type Store interface {
	// Upload writes body under bucket/key.
	Upload(ctx context.Context, bucket, key string, body io.Reader, opts UploadOptions) error

	// PublicURL resolves a key to its publicly reachable URL without I/O.
	// An empty string means no URL is available.
	PublicURL(bucket, key string) string

	// Remove deletes the given keys from bucket.
	Remove(ctx context.Context, bucket string, keys ...string) error
}

// StoreError describes a failed object store operation.
type StoreError struct {
	Op         string // "upload" or "remove"
	Bucket     string
	Key        string
	StatusCode int    // HTTP status when the store reports one, 0 otherwise
	Message    string // message reported by the store, if any
	Err        error
}

func (e *StoreError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Op)
	sb.WriteString(" ")
	sb.WriteString(e.Bucket)
	if e.Key != "" {
		sb.WriteString("/")
		sb.WriteString(e.Key)
	}
	if e.StatusCode != 0 {
		_, _ = fmt.Fprintf(&sb, ": status %d", e.StatusCode)
	}
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is reports ErrStore for every StoreError.
func (e *StoreError) Is(target error) bool {
	return target == ErrStore
}

// PublicObjectURL builds {base}/storage/v1/object/public/{bucket}/{key}.
// The key is path-escaped and is always the final path segment.
func PublicObjectURL(base, bucket, key string) string {
	return strings.TrimRight(base, "/") + PublicPathPrefix + "/" + url.PathEscape(bucket) + "/" + url.PathEscape(key)
}
