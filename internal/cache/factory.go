// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"
)

// DefaultTTL applies when a backend is created without a TTL.
const DefaultTTL = 5 * time.Minute

// Config selects and sizes the cache backend.
type Config struct {
	// RedisURL enables the Redis backend, e.g. redis://localhost:6379/0.
	RedisURL string
	// Prefix namespaces Redis keys.
	Prefix string
	TTL    time.Duration
	// MaxEntries bounds the memory backend.
	MaxEntries int
	// RequireRedis fails Open instead of falling back to memory.
	RequireRedis bool
}

// Opened is the backend chosen by Open.
type Opened struct {
	Backend Backend
	// Fallback is set when Redis was configured but unreachable.
	Fallback bool
}

// Open returns a Redis backend when cfg.RedisURL is set and reachable,
// otherwise a memory backend.
func Open(ctx context.Context, cfg Config) (Opened, error) {
	if cfg.RedisURL == "" {
		return Opened{Backend: NewMemory(cfg.TTL, cfg.MaxEntries)}, nil
	}

	r, err := NewRedis(ctx, cfg.RedisURL, cfg.Prefix, cfg.TTL)
	if err == nil {
		return Opened{Backend: r}, nil
	}
	if cfg.RequireRedis {
		return Opened{}, fmt.Errorf("opening redis cache: %w", err)
	}

	slog.Warn("redis cache unavailable, using memory cache",
		"url", RedactURL(cfg.RedisURL),
		"error", err,
	)
	return Opened{Backend: NewMemory(cfg.TTL, cfg.MaxEntries), Fallback: true}, nil
}

// RedactURL masks the password of a Redis URL for logging.
func RedactURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "[invalid URL]"
	}
	return u.Redacted()
}
