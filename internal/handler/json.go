// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler implements the JSON HTTP API.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/olegiv/blogdesk/internal/asset"
	"github.com/olegiv/blogdesk/internal/auth"
	"github.com/olegiv/blogdesk/internal/service"
	"github.com/olegiv/blogdesk/internal/storage"
)

// writeJSONError writes a JSON error response.
func writeJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   message,
	})
}

// writeJSONSuccess writes a JSON success response.
func writeJSONSuccess(w http.ResponseWriter, data map[string]any) {
	writeJSONStatus(w, http.StatusOK, data)
}

// writeJSONStatus writes a JSON success response with a custom status code.
func writeJSONStatus(w http.ResponseWriter, statusCode int, data map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	if data == nil {
		data = make(map[string]any)
	}
	data["success"] = true
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// statusFor maps a service error to an HTTP status code.
func statusFor(err error) int {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.Is(err, asset.ErrTooLarge), errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, asset.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrUnknownBucket), errors.Is(err, service.ErrPostNotFound),
		errors.Is(err, storage.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrKeyExists):
		return http.StatusConflict
	case errors.Is(err, storage.ErrStore), errors.Is(err, service.ErrURLUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError surfaces err to the caller. Unclassified errors are
// logged and reported generically.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error(msg, "error", err, "status", status)
	}
	if status == http.StatusInternalServerError {
		writeJSONError(w, status, "Internal server error")
		return
	}
	writeJSONError(w, status, err.Error())
}

// decodeJSON decodes the request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
