// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session configures the server-side session manager used at login.
package session

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

// KeyUniquifier is the session key holding the logged-in user's fs_uniquifier.
const KeyUniquifier = "fs_uniquifier"

// DefaultLifetime is the session lifetime used when none is given.
const DefaultLifetime = 24 * time.Hour

// New creates a new session manager configured with SQLite store.
func New(db *sql.DB, isDev bool, lifetime time.Duration) *scs.SessionManager {
	sm := scs.New()

	sm.Store = sqlite3store.New(db)

	if lifetime <= 0 {
		lifetime = DefaultLifetime
	}
	sm.Lifetime = lifetime
	sm.Cookie.Name = "library_session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"
	sm.Cookie.Secure = !isDev
	if !isDev {
		sm.Cookie.Name = "__Host-session"
	}

	return sm
}

// Start renews the session token and binds it to the given user uniquifier.
func Start(ctx context.Context, sm *scs.SessionManager, uniquifier string) error {
	if err := sm.RenewToken(ctx); err != nil {
		return err
	}
	sm.Put(ctx, KeyUniquifier, uniquifier)
	return nil
}

// Uniquifier returns the user uniquifier bound to the session, if any.
func Uniquifier(ctx context.Context, sm *scs.SessionManager) string {
	return sm.GetString(ctx, KeyUniquifier)
}

// End destroys the current session.
func End(ctx context.Context, sm *scs.SessionManager) error {
	return sm.Destroy(ctx)
}
