// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/olegiv/blogdesk/internal/model"
)

// CreateEventParams holds the fields for a new event log entry.
type CreateEventParams struct {
	Level     string
	Category  string
	Message   string
	Metadata  string
	CreatedAt time.Time
}

const createEvent = `INSERT INTO events (level, category, message, metadata, created_at)
VALUES (?, ?, ?, ?, ?)`

// CreateEvent appends an entry to the event log.
func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, createEvent, arg.Level, arg.Category, arg.Message, arg.Metadata, arg.CreatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const listEvents = `SELECT id, level, category, message, metadata, created_at
FROM events ORDER BY created_at DESC, id DESC LIMIT ?`

// ListEvents returns the most recent events.
func (q *Queries) ListEvents(ctx context.Context, limit int) ([]model.Event, error) {
	rows, err := q.db.QueryContext(ctx, listEvents, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Level, &e.Category, &e.Message, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

const deleteEventsBefore = `DELETE FROM events WHERE created_at < ?`

// DeleteEventsBefore removes events created before cutoff and returns how many were removed.
func (q *Queries) DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteEventsBefore, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
