// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for bearer-token authentication,
// role authorization, rate limiting and request context handling.
package middleware

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// MsgRateLimited is returned when a client exceeds its request rate.
const MsgRateLimited = "Rate limit exceeded. Please slow down."

// Limiter bookkeeping.
const (
	maxLimiterKeys = 10000
	limiterIdleTTL = 30 * time.Minute
)

// messageBody is the JSON envelope used for every error response.
type messageBody struct {
	Message string `json:"message"`
}

// WriteMessage writes a {"message": ...} JSON response with the given status.
func WriteMessage(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(messageBody{Message: message})
}

// ClientIP returns the host part of r.RemoteAddr. chi's RealIP middleware
// runs first in the server chain and has already applied proxy headers.
func ClientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// keyedLimiter holds one token bucket per key (client IP or username).
// Keys idle longer than limiterIdleTTL are dropped once maxLimiterKeys is
// reached.
type keyedLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	limit   rate.Limit
	burst   int
	now     func() time.Time
}

func newKeyedLimiter(rps float64, burst int) *keyedLimiter {
	return &keyedLimiter{
		entries: make(map[string]*limiterEntry),
		limit:   rate.Limit(rps),
		burst:   burst,
		now:     time.Now,
	}
}

// allow consumes a token from key's bucket.
func (kl *keyedLimiter) allow(key string) bool {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	now := kl.now()
	e, ok := kl.entries[key]
	if !ok {
		if len(kl.entries) >= maxLimiterKeys {
			kl.pruneIdle(now)
		}
		e = &limiterEntry{limiter: rate.NewLimiter(kl.limit, kl.burst)}
		kl.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

// pruneIdle drops idle keys. Caller holds mu.
func (kl *keyedLimiter) pruneIdle(now time.Time) {
	for k, e := range kl.entries {
		if now.Sub(e.lastSeen) > limiterIdleTTL {
			delete(kl.entries, k)
		}
	}
}

func (kl *keyedLimiter) len() int {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	return len(kl.entries)
}

// UserRateLimit creates middleware that rate limits requests per authenticated
// user. Requests without an identity pass through.
func UserRateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	users := newKeyedLimiter(rps, burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id := GetIdentity(r); id != nil && !users.allow(id.Username) {
				slog.Warn("user rate limit exceeded", "username", id.Username, "path", r.URL.Path)
				WriteMessage(w, http.StatusTooManyRequests, MsgRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GlobalRateLimiter limits every request per client IP.
type GlobalRateLimiter struct {
	ips *keyedLimiter
}

// NewGlobalRateLimiter creates a new global rate limiter.
func NewGlobalRateLimiter(rps float64, burst int) *GlobalRateLimiter {
	return &GlobalRateLimiter{ips: newKeyedLimiter(rps, burst)}
}

// Middleware returns the rate limiting middleware.
func (rl *GlobalRateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r)
			if !rl.ips.allow(ip) {
				slog.Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path)
				WriteMessage(w, http.StatusTooManyRequests, MsgRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
