// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic maintenance jobs for local mode.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultEventRetentionSchedule prunes the event log once a day at 03:00.
const DefaultEventRetentionSchedule = "0 3 * * *"

// EventPruner deletes event log entries older than a cutoff.
type EventPruner interface {
	DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Scheduler handles scheduled maintenance such as event log retention.
type Scheduler struct {
	events    EventPruner
	retention time.Duration
	schedule  string
	cron      *cron.Cron
	logger    *slog.Logger
	now       func() time.Time
}

// New creates a scheduler that keeps events for retention.
// A non-positive retention disables pruning.
func New(events EventPruner, retention time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		events:    events,
		retention: retention,
		schedule:  DefaultEventRetentionSchedule,
		cron:      cron.New(),
		logger:    logger,
		now:       time.Now,
	}
}

// Start registers the jobs and starts the cron runner.
func (s *Scheduler) Start() error {
	if s.retention > 0 {
		_, err := s.cron.AddFunc(s.schedule, func() {
			if _, err := s.PruneEvents(context.Background()); err != nil {
				s.logger.Error("failed to prune event log", "error", err)
			}
		})
		if err != nil {
			return err
		}
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// PruneEvents removes events older than the retention period.
func (s *Scheduler) PruneEvents(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.retention)
	n, err := s.events.DeleteEventsBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("pruned event log", "removed", n, "cutoff", cutoff.Format(time.RFC3339))
	}
	return n, nil
}
