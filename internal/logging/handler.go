// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a slog handler that also records WARN and ERROR
// logs in the local event log.
package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/olegiv/blogdesk/internal/model"
	"github.com/olegiv/blogdesk/internal/store"
)

// EventWriter persists event log entries. *store.Queries implements it.
type EventWriter interface {
	CreateEvent(ctx context.Context, arg store.CreateEventParams) (int64, error)
}

// EventLogHandler is a slog.Handler that wraps another handler and also writes
// records at or above its level to the event log.
type EventLogHandler struct {
	inner  slog.Handler
	events EventWriter
	level  slog.Level // Minimum level to forward to the event log (default: WARN)
	attrs  []slog.Attr
}

// NewEventLogHandler creates an EventLogHandler forwarding WARN and above.
func NewEventLogHandler(inner slog.Handler, events EventWriter) *EventLogHandler {
	return NewEventLogHandlerWithLevel(inner, events, slog.LevelWarn)
}

// NewEventLogHandlerWithLevel creates a new EventLogHandler with a custom minimum level.
func NewEventLogHandlerWithLevel(inner slog.Handler, events EventWriter, level slog.Level) *EventLogHandler {
	return &EventLogHandler{
		inner:  inner,
		events: events,
		level:  level,
	}
}

// Enabled implements slog.Handler.
func (h *EventLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level) || level >= h.level
}

// Handle implements slog.Handler.
func (h *EventLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.inner.Enabled(ctx, r.Level) {
		if err := h.inner.Handle(ctx, r); err != nil {
			return err
		}
	}

	if r.Level >= h.level {
		h.writeToEventLog(r)
	}

	return nil
}

// WithAttrs implements slog.Handler.
func (h *EventLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &EventLogHandler{
		inner:  h.inner.WithAttrs(attrs),
		events: h.events,
		level:  h.level,
		attrs:  merged,
	}
}

// WithGroup implements slog.Handler.
func (h *EventLogHandler) WithGroup(name string) slog.Handler {
	return &EventLogHandler{
		inner:  h.inner.WithGroup(name),
		events: h.events,
		level:  h.level,
		attrs:  h.attrs,
	}
}

func (h *EventLogHandler) writeToEventLog(r slog.Record) {
	attrs := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	attrs = append(attrs, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})

	// Background context: the event is recorded even if the request was cancelled.
	_, _ = h.events.CreateEvent(context.Background(), store.CreateEventParams{
		Level:     eventLevel(r.Level),
		Category:  category(r.Message, attrs),
		Message:   r.Message,
		Metadata:  metadata(attrs),
		CreatedAt: r.Time,
	})
}

func eventLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return model.EventLevelError
	case level >= slog.LevelWarn:
		return model.EventLevelWarning
	default:
		return model.EventLevelInfo
	}
}

// category returns the "category" attribute, or infers one from the message.
func category(msg string, attrs []slog.Attr) string {
	for _, a := range attrs {
		if a.Key == "category" {
			return a.Value.String()
		}
	}

	msg = strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "auth") || strings.Contains(msg, "login") || strings.Contains(msg, "logout"):
		return model.EventCategoryAuth
	case strings.Contains(msg, "upload") || strings.Contains(msg, "asset") || strings.Contains(msg, "object"):
		return model.EventCategoryAsset
	case strings.Contains(msg, "post"):
		return model.EventCategoryPost
	case strings.Contains(msg, "config"):
		return model.EventCategoryConfig
	case strings.Contains(msg, "cache"):
		return model.EventCategoryCache
	default:
		return model.EventCategorySystem
	}
}

// metadata encodes attributes, except category, as a flat JSON object of strings.
func metadata(attrs []slog.Attr) string {
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		if a.Key == "category" {
			continue
		}
		m[a.Key] = a.Value.String()
	}
	if len(m) == 0 {
		return "{}"
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(data)
}
