// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/blogdesk/internal/storage"
)

// ObjectsHandler serves public objects from the local store.
type ObjectsHandler struct {
	store   *storage.LocalStore
	buckets map[string]bool
	logger  *slog.Logger
}

// NewObjectsHandler serves only the named buckets.
func NewObjectsHandler(store *storage.LocalStore, buckets []string, logger *slog.Logger) *ObjectsHandler {
	allowed := make(map[string]bool, len(buckets))
	for _, b := range buckets {
		allowed[b] = true
	}
	return &ObjectsHandler{store: store, buckets: allowed, logger: logger}
}

// Serve handles GET /storage/v1/object/public/{bucket}/{key}.
func (h *ObjectsHandler) Serve(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	key := chi.URLParam(r, "key")
	if !h.buckets[bucket] {
		http.NotFound(w, r)
		return
	}

	f, err := h.store.Open(bucket, key)
	if err != nil {
		if !errors.Is(err, storage.ErrObjectNotFound) {
			h.logger.Error("failed to open object", "bucket", bucket, "key", key, "error", err)
		}
		http.NotFound(w, r)
		return
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		h.logger.Error("failed to stat object", "bucket", bucket, "key", key, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Cache-Control", "max-age="+storage.DefaultCacheControl)
	http.ServeContent(w, r, key, info.ModTime(), f)
}
