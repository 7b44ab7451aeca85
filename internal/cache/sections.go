// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/library-go/internal/store"
)

const sectionListKey = "sections:all"

// SectionCache serves the section listing through a Backend.
// Every section write must call Invalidate.
type SectionCache struct {
	backend Backend
	queries *store.Queries
	ttl     time.Duration
}

// NewSectionCache caches listings loaded through queries for ttl.
func NewSectionCache(backend Backend, queries *store.Queries, ttl time.Duration) *SectionCache {
	return &SectionCache{backend: backend, queries: queries, ttl: ttl}
}

// All returns every section ordered by id. A backend failure is logged and
// the listing is read from the store.
func (c *SectionCache) All(ctx context.Context) ([]store.Section, error) {
	data, err := c.backend.Get(ctx, sectionListKey)
	switch {
	case err == nil:
		var sections []store.Section
		if jsonErr := json.Unmarshal(data, &sections); jsonErr == nil {
			return sections, nil
		}
		slog.Warn("discarding undecodable section cache entry", "key", sectionListKey)
	case !errors.Is(err, ErrMiss):
		slog.Warn("section cache read failed", "backend", c.backend.Name(), "error", err)
	}

	sections, err := c.queries.ListSections(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sections: %w", err)
	}

	if data, err := json.Marshal(sections); err == nil {
		if err := c.backend.Set(ctx, sectionListKey, data, c.ttl); err != nil {
			slog.Warn("section cache write failed", "backend", c.backend.Name(), "error", err)
		}
	}
	return sections, nil
}

// Invalidate drops the cached listing.
func (c *SectionCache) Invalidate(ctx context.Context) {
	if err := c.backend.Delete(ctx, sectionListKey); err != nil {
		slog.Warn("section cache invalidation failed", "backend", c.backend.Name(), "error", err)
	}
}

// Backend returns the name of the underlying backend.
func (c *SectionCache) Backend() string {
	return c.backend.Name()
}

// Stats reports backend counters.
func (c *SectionCache) Stats(ctx context.Context) Stats {
	return c.backend.Stats(ctx)
}

// Ping reports whether the backend answers.
func (c *SectionCache) Ping(ctx context.Context) error {
	return c.backend.Ping(ctx)
}
