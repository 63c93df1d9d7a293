// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/blogdesk/internal/model"
	"github.com/olegiv/blogdesk/internal/service"
)

// PostsHandler handles post submission and reads.
type PostsHandler struct {
	posts  *service.PostService
	logger *slog.Logger
}

// NewPostsHandler creates a new PostsHandler.
func NewPostsHandler(posts *service.PostService, logger *slog.Logger) *PostsHandler {
	return &PostsHandler{posts: posts, logger: logger}
}

// createPostRequest is the editor payload: the form fields plus ordered media items.
type createPostRequest struct {
	model.PostForm
	MediaItems []model.MediaItem `json:"media_items"`
}

// Create handles POST /api/v1/posts.
func (h *PostsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	post, err := h.posts.Submit(r.Context(), req.PostForm, req.MediaItems)
	if err != nil {
		writeServiceError(w, h.logger, "post submission failed", err)
		return
	}

	writeJSONStatus(w, http.StatusCreated, map[string]any{
		"id":   post.ID,
		"slug": post.Slug,
	})
}

// List handles GET /api/v1/posts?limit=&offset=.
func (h *PostsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	cards, err := h.posts.ListCards(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, h.logger, "listing posts failed", err)
		return
	}

	writeJSONSuccess(w, map[string]any{
		"posts": cards,
	})
}

// Get handles GET /api/v1/posts/{slug}.
func (h *PostsHandler) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeServiceError(w, h.logger, "loading post failed", err)
		return
	}

	writeJSONSuccess(w, map[string]any{
		"post": post,
	})
}
