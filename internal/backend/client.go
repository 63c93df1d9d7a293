// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package backend is a client for the hosted backend-as-a-service
// (Supabase-compatible REST API): auth, object storage and the posts and
// profiles tables. One Client is created at startup and injected into the
// services that need it.
//
// Object storage goes through storage-go and the tables through
// postgrest-go. Both bind credentials to a client value, so a short-lived
// library client is built per call with the caller's access token.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/supabase-community/postgrest-go"
	storagego "github.com/supabase-community/storage-go"

	"github.com/olegiv/blogdesk/internal/auth"
)

// maxErrorBody caps how much of an error response body is read.
const maxErrorBody = 64 * 1024

// Client talks to the hosted backend.
// It is safe for concurrent use. No timeout or retry is added on top of the
// underlying HTTP clients.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for auth requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a Client for the backend at baseURL authenticated with apiKey.
func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Message)
}

// errorBody covers the error shapes of the auth, storage and REST services.
type errorBody struct {
	StatusCode       json.RawMessage `json:"statusCode"`
	Code             json.RawMessage `json:"code"`
	Error            string          `json:"error"`
	ErrorDescription string          `json:"error_description"`
	Message          string          `json:"message"`
	Msg              string          `json:"msg"`
}

// bearerToken returns the caller's access token from ctx, falling back to
// the API key, so row-level security applies to the user.
func (c *Client) bearerToken(ctx context.Context) string {
	if token := auth.AccessTokenFromContext(ctx); token != "" {
		return token
	}
	return c.apiKey
}

// newRequest builds a request carrying the API key and bearer token.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.bearerToken(ctx))
	return req, nil
}

// objects returns a storage client acting as the caller in ctx.
// Upload options are kept on the client, so it must not be shared.
func (c *Client) objects(ctx context.Context) *storagego.Client {
	return storagego.NewClient(c.baseURL+"/storage/v1", c.bearerToken(ctx), map[string]string{
		"apikey": c.apiKey,
	})
}

// rest returns a PostgREST client for the public schema acting as the caller in ctx.
func (c *Client) rest(ctx context.Context) (*postgrest.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rc := postgrest.NewClient(c.baseURL+"/rest/v1", "public", map[string]string{
		"apikey":        c.apiKey,
		"Authorization": "Bearer " + c.bearerToken(ctx),
	})
	if rc.ClientError != nil {
		return nil, fmt.Errorf("creating rest client: %w", rc.ClientError)
	}
	return rc, nil
}

// do sends req and converts non-2xx responses to *APIError.
// The caller must close the body of a successful response.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer func() { _ = resp.Body.Close() }()
	return nil, parseAPIError(resp)
}

// doJSON sends req and decodes a successful JSON response into out (if non-nil).
func (c *Client) doJSON(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding backend response: %w", err)
	}
	return nil
}

func parseAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		apiErr.Message = strings.TrimSpace(string(data))
		return apiErr
	}

	apiErr.Code = firstNonEmpty(rawString(body.Code), body.Error, rawString(body.StatusCode))
	apiErr.Message = firstNonEmpty(body.Message, body.Msg, body.ErrorDescription, body.Error)
	return apiErr
}

// rawString returns a JSON string or number as text.
func rawString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
