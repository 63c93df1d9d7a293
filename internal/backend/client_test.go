// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/blogdesk/internal/auth"
	"github.com/olegiv/blogdesk/internal/model"
	"github.com/olegiv/blogdesk/internal/storage"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL, "anon-key", WithHTTPClient(srv.Client()))
}

func TestClient_UploadSendsHeaders(t *testing.T) {
	var gotMethod, gotPath, gotUpsert, gotCache, gotType, gotAuth, gotAPIKey, gotBody string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.EscapedPath()
		gotUpsert = r.Header.Get("x-upsert")
		gotCache = r.Header.Get("Cache-Control")
		gotType = r.Header.Get("Content-Type")
		gotAuth = r.Header.Get("Authorization")
		gotAPIKey = r.Header.Get("apikey")
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		_, _ = w.Write([]byte(`{"Key":"promotional-images/1-a.png"}`))
	})

	ctx := auth.WithAccessToken(context.Background(), "user-jwt")
	err := c.Upload(ctx, "promotional-images", "1-a.png", strings.NewReader("bytes"), storage.DefaultUploadOptions("image/png"))
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/storage/v1/object/promotional-images/1-a.png", gotPath)
	assert.Equal(t, "false", gotUpsert)
	assert.Contains(t, gotCache, "3600")
	assert.Equal(t, "image/png", gotType)
	assert.Equal(t, "Bearer user-jwt", gotAuth)
	assert.Equal(t, "anon-key", gotAPIKey)
	assert.Equal(t, "bytes", gotBody)
}

func TestClient_UploadWithoutTokenUsesAPIKey(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"Key":"b/k.png"}`))
	})

	require.NoError(t, c.Upload(context.Background(), "b", "k.png", strings.NewReader("x"), storage.DefaultUploadOptions("image/png")))
	assert.Equal(t, "Bearer anon-key", gotAuth)
}

func TestClient_UploadDuplicate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"statusCode":"409","error":"Duplicate","message":"The resource already exists"}`))
	})

	err := c.Upload(context.Background(), "b", "k.png", strings.NewReader("x"), storage.DefaultUploadOptions("image/png"))
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrKeyExists)
	assert.ErrorIs(t, err, storage.ErrStore)

	var storeErr *storage.StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, "upload", storeErr.Op)
	assert.Equal(t, "k.png", storeErr.Key)
	assert.Contains(t, storeErr.Message, "already exists")
}

func TestClient_UploadServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"statusCode":"500","error":"Internal","message":"gateway exploded"}`))
	})

	err := c.Upload(context.Background(), "b", "k.png", strings.NewReader("x"), storage.DefaultUploadOptions("image/png"))
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrStore)
	assert.NotErrorIs(t, err, storage.ErrKeyExists)
}

func TestClient_UploadCanceledContext(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.Upload(ctx, "b", "k.png", strings.NewReader("x"), storage.DefaultUploadOptions("image/png"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, storage.ErrStore)
	assert.False(t, called)
}

func TestStoreError_Classification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"duplicate", errors.New("The resource already exists"), storage.ErrKeyExists},
		{"duplicate code", errors.New("Duplicate"), storage.ErrKeyExists},
		{"missing object", errors.New("Object not found"), storage.ErrObjectNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := storeError("upload", "b", "k", tt.err)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, storage.ErrStore)
		})
	}

	other := storeError("remove", "b", "k", errors.New("permission denied"))
	assert.ErrorIs(t, other, storage.ErrStore)
	assert.NotErrorIs(t, other, storage.ErrKeyExists)
	assert.NotErrorIs(t, other, storage.ErrObjectNotFound)
	assert.Contains(t, other.Error(), "permission denied")
}

func TestClient_PublicURL(t *testing.T) {
	c := New("https://proj.supabase.co/", "k")

	assert.Equal(t, "https://proj.supabase.co/storage/v1/object/public/promotional-images/1-a.png",
		c.PublicURL("promotional-images", "1-a.png"))
	assert.Empty(t, c.PublicURL("promotional-images", ""))
	assert.Empty(t, New("", "k").PublicURL("b", "k"))
}

func TestClient_Remove(t *testing.T) {
	var gotMethod, gotPath, gotAuth string
	var gotBody map[string][]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`[]`))
	})

	ctx := auth.WithAccessToken(context.Background(), "user-jwt")
	require.NoError(t, c.Remove(ctx, "blog-images", "1-a.png"))

	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "Bearer user-jwt", gotAuth)
	assert.Equal(t, "/storage/v1/object/blog-images", gotPath)
	assert.Equal(t, []string{"1-a.png"}, gotBody["prefixes"])
}

func TestClient_RemoveFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"new row violates row-level security policy"}`))
	})

	err := c.Remove(context.Background(), "b", "k.png")
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrStore)
	assert.NotErrorIs(t, err, storage.ErrObjectNotFound)
}

func TestClient_GetUser(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"code":401,"msg":"invalid JWT"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"u-1","email":"jane@example.com","aud":"authenticated"}`))
	})

	user, err := c.GetUser(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)
	assert.Equal(t, "jane@example.com", user.Email)

	_, err = c.GetUser(context.Background(), "bad")
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)

	_, err = c.GetUser(context.Background(), "")
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
}

func TestClient_CreatePost(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/v1/posts", r.URL.Path)
		assert.Contains(t, r.Header.Get("Prefer"), "return=representation")
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer user-jwt", r.Header.Get("Authorization"))
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`[{"id":42,"title":"My Trip"}]`))
	})

	ctx := auth.WithAccessToken(context.Background(), "user-jwt")
	id, err := c.CreatePost(ctx, model.Post{Title: "My Trip", Slug: "my-trip", Tags: []string{"a"}})
	require.NoError(t, err)
	assert.Equal(t, "42", id)
	assert.Equal(t, "my-trip", got["slug"])
	assert.Nil(t, got["published_at"])
	_, hasID := got["id"]
	assert.False(t, hasID)
}

func TestClient_CreatePostErrorPropagates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"code":"23505","message":"duplicate key value violates unique constraint \"posts_slug_key\""}`))
	})

	_, err := c.CreatePost(context.Background(), model.Post{Title: "t"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "23505")
	assert.Contains(t, err.Error(), "posts_slug_key")
}

func TestClient_ListPublishedPosts(t *testing.T) {
	published := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/rest/v1/posts", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "eq.true", q.Get("is_published"))
		assert.True(t, strings.HasPrefix(q.Get("order"), "published_at.desc"), q.Get("order"))
		assert.Equal(t, "10", q.Get("limit"))
		assert.Equal(t, "20", q.Get("offset"))
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"id": "p-1", "title": "One", "slug": "one", "is_published": true, "published_at": published},
			{"id": 7, "title": "Two", "slug": "two", "is_published": true, "published_at": published},
		})
	})

	posts, err := c.ListPublishedPosts(context.Background(), 10, 20)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "p-1", posts[0].ID)
	assert.Equal(t, "7", posts[1].ID)
	require.NotNil(t, posts[0].PublishedAt)
	assert.True(t, posts[0].PublishedAt.Equal(published))
}

func TestClient_GetPublishedPostBySlug(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "eq.true", q.Get("is_published"))
		assert.True(t, strings.HasPrefix(q.Get("order"), "created_at.desc"), q.Get("order"))
		assert.Equal(t, "1", q.Get("limit"))
		if q.Get("slug") == "eq.found" {
			_, _ = w.Write([]byte(`[{"id":"p-1","slug":"found","title":"Found"}]`))
			return
		}
		_, _ = w.Write([]byte(`[]`))
	})

	post, err := c.GetPublishedPostBySlug(context.Background(), "found")
	require.NoError(t, err)
	assert.Equal(t, "Found", post.Title)

	_, err = c.GetPublishedPostBySlug(context.Background(), "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestClient_QueryFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"42703","message":"column posts.nope does not exist"}`))
	})

	_, err := c.ListPublishedPosts(context.Background(), 10, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "42703")

	_, err = c.GetPublishedPostBySlug(context.Background(), "x")
	require.Error(t, err)
	assert.NotErrorIs(t, err, model.ErrNotFound)
}

func TestClient_GetProfile(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/profiles", r.URL.Path)
		if r.URL.Query().Get("id") == "eq.u-1" {
			_, _ = w.Write([]byte(`[{"id":"u-1","display_name":"Jane","email":"jane@example.com","specialized_category":"Travel"}]`))
			return
		}
		_, _ = w.Write([]byte(`[]`))
	})

	profile, err := c.GetProfile(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "Jane", profile.DisplayName)
	assert.Equal(t, "Travel", profile.SpecializedCategory)

	_, err = c.GetProfile(context.Background(), "u-2")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestClient_PingContext(t *testing.T) {
	healthy := true
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/health", r.URL.Path)
		if !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"name":"GoTrue"}`))
	})

	require.NoError(t, c.PingContext(context.Background()))

	healthy = false
	err := c.PingContext(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
}
