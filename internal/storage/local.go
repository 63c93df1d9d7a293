// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps objects on the local filesystem under {root}/{bucket}/{key}.
// Objects are served by the HTTP server under PublicPathPrefix.
type LocalStore struct {
	root    string
	baseURL string
}

// NewLocalStore creates a LocalStore rooted at root whose public URLs start with baseURL.
func NewLocalStore(root, baseURL string) *LocalStore {
	return &LocalStore{root: root, baseURL: baseURL}
}

// Root returns the directory objects are stored in.
func (s *LocalStore) Root() string {
	return s.root
}

// Upload writes body to {root}/{bucket}/{key}.
func (s *LocalStore) Upload(_ context.Context, bucket, key string, body io.Reader, opts UploadOptions) error {
	filePath, err := s.objectPath(bucket, key)
	if err != nil {
		return &StoreError{Op: "upload", Bucket: bucket, Key: key, Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return &StoreError{Op: "upload", Bucket: bucket, Key: key, Err: fmt.Errorf("creating bucket directory: %w", err)}
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !opts.Upsert {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}

	out, err := os.OpenFile(filePath, flags, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return &StoreError{Op: "upload", Bucket: bucket, Key: key, Err: ErrKeyExists}
		}
		return &StoreError{Op: "upload", Bucket: bucket, Key: key, Err: fmt.Errorf("creating file: %w", err)}
	}

	if _, err := io.Copy(out, body); err != nil {
		_ = out.Close()
		_ = os.Remove(filePath)
		return &StoreError{Op: "upload", Bucket: bucket, Key: key, Err: fmt.Errorf("writing file: %w", err)}
	}

	if err := out.Close(); err != nil {
		_ = os.Remove(filePath)
		return &StoreError{Op: "upload", Bucket: bucket, Key: key, Err: fmt.Errorf("closing file: %w", err)}
	}

	return nil
}

// PublicURL returns the URL the local HTTP server serves the object at.
func (s *LocalStore) PublicURL(bucket, key string) string {
	if bucket == "" || key == "" {
		return ""
	}
	return PublicObjectURL(s.baseURL, bucket, key)
}

// Remove deletes the given keys. Missing objects are ignored, matching the
// behaviour of the hosted store.
func (s *LocalStore) Remove(_ context.Context, bucket string, keys ...string) error {
	for _, key := range keys {
		filePath, err := s.objectPath(bucket, key)
		if err != nil {
			return &StoreError{Op: "remove", Bucket: bucket, Key: key, Err: err}
		}
		if err := os.Remove(filePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return &StoreError{Op: "remove", Bucket: bucket, Key: key, Err: err}
		}
	}
	return nil
}

// Open opens an object for reading.
func (s *LocalStore) Open(bucket, key string) (*os.File, error) {
	filePath, err := s.objectPath(bucket, key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrObjectNotFound
	}
	return f, err
}

// objectPath joins bucket and key under the root, rejecting names that
// would escape it.
func (s *LocalStore) objectPath(bucket, key string) (string, error) {
	for _, name := range []string{bucket, key} {
		if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
			return "", fmt.Errorf("invalid object name %q", name)
		}
	}
	return filepath.Join(s.root, bucket, key), nil
}

var _ Store = (*LocalStore)(nil)
