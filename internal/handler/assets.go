// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/blogdesk/internal/asset"
	"github.com/olegiv/blogdesk/internal/model"
	"github.com/olegiv/blogdesk/internal/service"
)

// multipartMemory is how much of a multipart upload is buffered in memory.
const multipartMemory = 8 << 20

// AssetsHandler handles image uploads and deletions.
type AssetsHandler struct {
	assets *service.AssetService
	logger *slog.Logger
}

// NewAssetsHandler creates a new AssetsHandler.
func NewAssetsHandler(assets *service.AssetService, logger *slog.Logger) *AssetsHandler {
	return &AssetsHandler{assets: assets, logger: logger}
}

// Upload handles POST /api/v1/buckets/{bucket}/assets (multipart field "file").
func (h *AssetsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if statusFor(err) == http.StatusRequestEntityTooLarge {
			writeJSONError(w, http.StatusRequestEntityTooLarge, asset.ErrTooLarge.Error())
			return
		}
		writeJSONError(w, http.StatusBadRequest, "Failed to parse multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer func() { _ = file.Close() }()

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = mime.TypeByExtension(filepath.Ext(header.Filename))
	}

	stored, err := h.assets.Upload(r.Context(), bucket, model.Asset{
		OriginalName: header.Filename,
		MimeType:     mimeType,
		SizeBytes:    header.Size,
	}, file)
	if err != nil {
		writeServiceError(w, h.logger, "asset upload failed", err)
		return
	}

	writeJSONStatus(w, http.StatusCreated, map[string]any{
		"asset": stored,
	})
}

// deleteAssetRequest identifies an object by key or by public URL. Key wins.
type deleteAssetRequest struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// Delete handles DELETE /api/v1/buckets/{bucket}/assets.
func (h *AssetsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")

	var req deleteAssetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	var err error
	if req.Key != "" {
		err = h.assets.DeleteKey(r.Context(), bucket, req.Key)
	} else {
		err = h.assets.Delete(r.Context(), bucket, req.URL)
	}
	if err != nil {
		writeServiceError(w, h.logger, "asset delete failed", err)
		return
	}

	writeJSONSuccess(w, nil)
}
