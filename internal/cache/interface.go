// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cache keeps read-mostly library data, such as the section list,
// in memory or in Redis.
package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// Backend errors.
var (
	ErrMiss   = errors.New("cache: miss")
	ErrClosed = errors.New("cache: closed")
)

// Backend stores opaque values under string keys.
// Implementations are safe for concurrent use.
type Backend interface {
	// Name identifies the backend in logs and admin responses.
	Name() string

	// Get returns ErrMiss when the key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value for ttl; a non-positive ttl means the backend default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Delete(ctx context.Context, keys ...string) error

	// Clear drops every key owned by the backend.
	Clear(ctx context.Context) error

	Ping(ctx context.Context) error
	Stats(ctx context.Context) Stats
	Close() error
}

// Stats is a snapshot of backend counters.
type Stats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	Writes  int64   `json:"writes"`
	Entries int     `json:"entries"`
	HitRate float64 `json:"hit_rate"`
}

// counters tracks lookups and writes for a backend.
type counters struct {
	hits   atomic.Int64
	misses atomic.Int64
	writes atomic.Int64
}

func (c *counters) snapshot(entries int) Stats {
	s := Stats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Writes:  c.writes.Load(),
		Entries: entries,
	}
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total) * 100
	}
	return s
}
