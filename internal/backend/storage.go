// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package backend

import (
	"context"
	"errors"
	"io"
	"strings"

	storagego "github.com/supabase-community/storage-go"

	"github.com/olegiv/blogdesk/internal/storage"
)

// Upload stores body under bucket/key.
func (c *Client) Upload(ctx context.Context, bucket, key string, body io.Reader, opts storage.UploadOptions) error {
	if err := ctx.Err(); err != nil {
		return &storage.StoreError{Op: "upload", Bucket: bucket, Key: key, Err: err}
	}

	fileOpts := storagego.FileOptions{Upsert: &opts.Upsert}
	if opts.ContentType != "" {
		fileOpts.ContentType = &opts.ContentType
	}
	if opts.CacheControl != "" {
		cacheControl := "max-age=" + opts.CacheControl
		fileOpts.CacheControl = &cacheControl
	}

	res, err := c.objects(ctx).UploadFile(bucket, key, body, fileOpts)
	if err == nil && res.Key == "" {
		err = errors.New("backend returned no object key")
	}
	if err != nil {
		return storeError("upload", bucket, key, err)
	}
	return nil
}

// PublicURL returns {base}/storage/v1/object/public/{bucket}/{key}. No request is made.
func (c *Client) PublicURL(bucket, key string) string {
	if c.baseURL == "" || bucket == "" || key == "" {
		return ""
	}
	return c.objects(context.Background()).GetPublicUrl(bucket, key).SignedURL
}

// Remove deletes keys from bucket.
func (c *Client) Remove(ctx context.Context, bucket string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return &storage.StoreError{Op: "remove", Bucket: bucket, Err: err}
	}

	if _, err := c.objects(ctx).RemoveFile(bucket, keys); err != nil {
		return storeError("remove", bucket, strings.Join(keys, ","), err)
	}
	return nil
}

// storeError wraps a storage failure into a *storage.StoreError.
// The storage API reports duplicates and missing objects only in its
// message, which maps to storage.ErrKeyExists and storage.ErrObjectNotFound.
func storeError(op, bucket, key string, err error) error {
	storeErr := &storage.StoreError{Op: op, Bucket: bucket, Key: key, Err: err}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "already exists"), strings.Contains(msg, "duplicate"):
		storeErr.Message = err.Error()
		storeErr.Err = storage.ErrKeyExists
	case strings.Contains(msg, "not found"):
		storeErr.Message = err.Error()
		storeErr.Err = storage.ErrObjectNotFound
	}
	return storeErr
}

var _ storage.Store = (*Client)(nil)
