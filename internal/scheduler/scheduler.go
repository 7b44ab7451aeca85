// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic library maintenance jobs.
package scheduler

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/library-go/internal/store"
)

// DefaultSweepSchedule runs the overdue sweep once an hour.
const DefaultSweepSchedule = "@hourly"

// pruneSchedule runs the event log pruning once a day.
const pruneSchedule = "@daily"

// sweepTimeout bounds a single overdue sweep or prune run.
const sweepTimeout = time.Minute

// Scheduler handles scheduled tasks like expiring overdue lending requests.
type Scheduler struct {
	db       *sql.DB
	cron     *cron.Cron
	logger   *slog.Logger
	schedule string
	// retention is how long audit events are kept; zero keeps them forever.
	retention time.Duration
	now       func() time.Time
}

// New creates a new scheduler instance. An empty schedule falls back to
// DefaultSweepSchedule.
func New(db *sql.DB, logger *slog.Logger, schedule string) *Scheduler {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	return &Scheduler{
		db:       db,
		cron:     cron.New(),
		logger:   logger,
		schedule: schedule,
		now:      time.Now,
	}
}

// SetEventRetention enables daily pruning of audit events older than
// retention. Must be called before Start.
func (s *Scheduler) SetEventRetention(retention time.Duration) {
	s.retention = retention
}

// Start registers the overdue sweep (and event pruning when enabled) and
// starts the cron loop.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()
		if _, err := s.SweepOverdue(ctx); err != nil {
			s.logger.Error("overdue sweep failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling overdue sweep: %w", err)
	}

	if s.retention > 0 {
		_, err = s.cron.AddFunc(pruneSchedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
			defer cancel()
			if _, err := s.PruneEvents(ctx); err != nil {
				s.logger.Error("event pruning failed", "error", err)
			}
		})
		if err != nil {
			return fmt.Errorf("scheduling event pruning: %w", err)
		}
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()), "schedule", s.schedule)
	return nil
}

// Stop gracefully stops the scheduler, waiting for a running sweep.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// SweepOverdue deactivates every active request whose return date has passed
// and revokes the matching user_books grant. It returns the number of
// requests closed.
func (s *Scheduler) SweepOverdue(ctx context.Context) (int, error) {
	now := s.now().UTC()

	overdue, err := store.New(s.db).ListOverdueRequests(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("listing overdue requests: %w", err)
	}
	if len(overdue) == 0 {
		return 0, nil
	}

	closed := 0
	for _, req := range overdue {
		if err := s.expire(ctx, req); err != nil {
			s.logger.Error("failed to expire overdue request",
				"request_id", req.ID,
				"username", req.Username,
				"book_id", req.BookID,
				"error", err,
			)
			continue
		}
		closed++
		s.logger.Info("overdue request expired",
			"request_id", req.ID,
			"username", req.Username,
			"book_id", req.BookID,
			"return_date", req.ReturnDate.Format(time.RFC3339),
		)
	}

	return closed, nil
}

// expire closes one request and its grant in a single transaction.
func (s *Scheduler) expire(ctx context.Context, req store.UserRequest) error {
	return store.ExecTx(ctx, s.db, func(q *store.Queries) error {
		if err := q.DeactivateUserRequest(ctx, req.ID); err != nil {
			return fmt.Errorf("deactivating request: %w", err)
		}
		if err := q.RevokeUserBook(ctx, store.RevokeUserBookParams{
			Username: req.Username,
			BookID:   req.BookID,
		}); err != nil {
			return fmt.Errorf("revoking book: %w", err)
		}
		return nil
	})
}

// PruneEvents deletes audit events older than the configured retention and
// returns how many were removed.
func (s *Scheduler) PruneEvents(ctx context.Context) (int64, error) {
	if s.retention <= 0 {
		return 0, nil
	}
	cutoff := s.now().UTC().Add(-s.retention)

	n, err := store.New(s.db).DeleteEventsBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting events: %w", err)
	}
	if n > 0 {
		s.logger.Info("old events pruned", "deleted", n, "before", cutoff.Format(time.RFC3339))
	}
	return n, nil
}
