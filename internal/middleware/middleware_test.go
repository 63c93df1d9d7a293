// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/blogdesk/internal/auth"
	"github.com/olegiv/blogdesk/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// simpleOKHandler returns an http.Handler that writes 200 OK.
var simpleOKHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

// userEcho writes the context user ID and access token.
var userEcho = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		_, _ = io.WriteString(w, "anonymous")
		return
	}
	_, _ = io.WriteString(w, user.ID+"|"+auth.AccessTokenFromContext(r.Context()))
})

type fakeVerifier struct {
	err error
}

func (f fakeVerifier) GetUser(_ context.Context, token string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if token != "good" {
		return nil, auth.ErrUnauthenticated
	}
	return &model.User{ID: "u1", Email: "u1@example.com"}, nil
}

func TestBearerAuth(t *testing.T) {
	h := BearerAuth(fakeVerifier{}, testLogger())(userEcho)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"no header", "", http.StatusOK, "anonymous"},
		{"other scheme", "Basic abc", http.StatusOK, "anonymous"},
		{"valid token", "Bearer good", http.StatusOK, "u1|good"},
		{"lowercase scheme", "bearer good", http.StatusOK, "u1|good"},
		{"invalid token", "Bearer bad", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestBearerAuth_BackendFailure(t *testing.T) {
	h := BearerAuth(fakeVerifier{err: errors.New("connection refused")}, testLogger())(userEcho)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestRequireUser(t *testing.T) {
	h := RequireUser(simpleOKHandler)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(auth.WithUser(req.Context(), model.User{ID: "u1"}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// countingReader records how many bytes were read from it.
type countingReader struct {
	r *strings.Reader
	n int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += n
	return n, err
}

func TestRequireUser_RejectsBeforeReadingBody(t *testing.T) {
	parsed := false
	h := RequireUser(MaxBodySize(1024)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parsed = true
		_ = r.ParseMultipartForm(1024)
		w.WriteHeader(http.StatusOK)
	})))

	body := &countingReader{r: strings.NewReader(strings.Repeat("x", 4096))}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/buckets/promotional/assets", body)
	req.Header.Set("Content-Type", "multipart/form-data; boundary=xyz")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, parsed)
	assert.Zero(t, body.n)
}

func TestIPRateLimiter(t *testing.T) {
	rl := NewIPRateLimiter(0.001, 2, testLogger())
	h := rl.Middleware()(simpleOKHandler)

	do := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1"))
	assert.Equal(t, http.StatusOK, do("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1"))
	// Other clients have their own budget.
	assert.Equal(t, http.StatusOK, do("10.0.0.2"))
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	assert.Equal(t, "192.0.2.1", getClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	assert.Equal(t, "203.0.113.5", getClientIP(req))

	req.Header.Set("X-Real-IP", "198.51.100.7")
	assert.Equal(t, "198.51.100.7", getClientIP(req))
}

func TestLoginProtection_Lockout(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{MaxFailedAttempts: 3, LockoutDuration: time.Minute}, testLogger())
	defer lp.Stop()

	assert.Equal(t, 3, lp.GetRemainingAttempts("a@example.com"))

	locked, _ := lp.RecordFailedAttempt("a@example.com")
	assert.False(t, locked)
	locked, _ = lp.RecordFailedAttempt("A@example.com ")
	assert.False(t, locked)
	assert.Equal(t, 1, lp.GetRemainingAttempts("a@example.com"))

	locked, d := lp.RecordFailedAttempt("a@example.com")
	assert.True(t, locked)
	assert.Equal(t, time.Minute, d)

	isLocked, remaining := lp.IsAccountLocked("a@example.com")
	assert.True(t, isLocked)
	assert.Positive(t, remaining)

	lp.RecordSuccessfulLogin("a@example.com")
	isLocked, _ = lp.IsAccountLocked("a@example.com")
	assert.False(t, isLocked)
}

func TestLoginProtection_Middleware(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{IPRateLimit: 0.001, IPBurst: 1}, testLogger())
	defer lp.Stop()
	h := lp.Middleware()(simpleOKHandler)

	do := func(method string) int {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(method, "/api/v1/auth/login", nil))
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do(http.MethodPost))
	assert.Equal(t, http.StatusTooManyRequests, do(http.MethodPost))
	assert.Equal(t, http.StatusOK, do(http.MethodGet))
}

func TestCSRF(t *testing.T) {
	h := CSRF(DefaultCSRFConfig([]byte(strings.Repeat("k", 32)), false, testLogger()))(simpleOKHandler)

	crossSite := func(bearer bool) int {
		req := httptest.NewRequest(http.MethodPost, "https://blog.example.com/api/v1/posts", nil)
		req.Header.Set("Sec-Fetch-Site", "cross-site")
		req.Header.Set("Origin", "https://evil.example.com")
		if bearer {
			req.Header.Set("Authorization", "Bearer token")
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusForbidden, crossSite(false))
	assert.Equal(t, http.StatusOK, crossSite(true))

	sameOrigin := httptest.NewRequest(http.MethodPost, "https://blog.example.com/api/v1/posts", nil)
	sameOrigin.Header.Set("Sec-Fetch-Site", "same-origin")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, sameOrigin)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSecurityHeaders(t *testing.T) {
	h := SecurityHeaders(DefaultSecurityHeadersConfig(false))(simpleOKHandler)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Contains(t, rec.Header().Get("Strict-Transport-Security"), "max-age=31536000")

	dev := SecurityHeaders(DefaultSecurityHeadersConfig(true))(simpleOKHandler)
	rec = httptest.NewRecorder()
	dev.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestMaxBodySize(t *testing.T) {
	h := MaxBodySize(4)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("too long")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRequestLogger(t *testing.T) {
	var sb strings.Builder
	logger := slog.New(slog.NewTextHandler(&sb, &slog.HandlerOptions{Level: slog.LevelDebug}))
	h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	out := sb.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "status=404")
	assert.Contains(t, out, "path=/missing")
}
