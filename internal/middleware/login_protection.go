// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// MsgTooManyAttempts is returned when login or registration is throttled.
const MsgTooManyAttempts = "Too many attempts. Please wait a moment and try again."

// maxTrackedAccounts bounds the failure map; stale entries are swept when
// it is reached.
const maxTrackedAccounts = 10000

// LoginProtectionConfig tunes login throttling.
type LoginProtectionConfig struct {
	// IPRateLimit and IPBurst bound POSTs to /login and /register per client IP.
	IPRateLimit float64
	IPBurst     int
	// MaxFailedAttempts wrong passwords within AttemptWindow lock the account.
	MaxFailedAttempts int
	AttemptWindow     time.Duration
	// LockoutDuration doubles with each lockout up to MaxLockout.
	LockoutDuration time.Duration
	MaxLockout      time.Duration
}

// DefaultLoginProtectionConfig returns the production settings.
func DefaultLoginProtectionConfig() LoginProtectionConfig {
	return LoginProtectionConfig{
		IPRateLimit:       0.5,
		IPBurst:           5,
		MaxFailedAttempts: 5,
		AttemptWindow:     15 * time.Minute,
		LockoutDuration:   15 * time.Minute,
		MaxLockout:        24 * time.Hour,
	}
}

// accountFailures is the failure history of one email address.
type accountFailures struct {
	failures    int
	windowStart time.Time
	lockedUntil time.Time
	lockouts    int
}

// LoginProtection throttles login and registration per client IP and locks
// accounts, keyed by email, after repeated wrong passwords.
type LoginProtection struct {
	cfg LoginProtectionConfig
	ips *keyedLimiter

	mu       sync.Mutex
	accounts map[string]*accountFailures
	now      func() time.Time
}

// NewLoginProtection creates a LoginProtection. Zero fields in cfg take
// their default values.
func NewLoginProtection(cfg LoginProtectionConfig) *LoginProtection {
	def := DefaultLoginProtectionConfig()
	if cfg.IPRateLimit <= 0 {
		cfg.IPRateLimit = def.IPRateLimit
	}
	if cfg.IPBurst <= 0 {
		cfg.IPBurst = def.IPBurst
	}
	if cfg.MaxFailedAttempts <= 0 {
		cfg.MaxFailedAttempts = def.MaxFailedAttempts
	}
	if cfg.AttemptWindow <= 0 {
		cfg.AttemptWindow = def.AttemptWindow
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = def.LockoutDuration
	}
	if cfg.MaxLockout < cfg.LockoutDuration {
		cfg.MaxLockout = max(def.MaxLockout, cfg.LockoutDuration)
	}

	return &LoginProtection{
		cfg:      cfg,
		ips:      newKeyedLimiter(cfg.IPRateLimit, cfg.IPBurst),
		accounts: make(map[string]*accountFailures),
		now:      time.Now,
	}
}

func accountKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Locked reports how long email stays locked, if it is.
func (lp *LoginProtection) Locked(email string) (time.Duration, bool) {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	a, ok := lp.accounts[accountKey(email)]
	if !ok {
		return 0, false
	}
	if left := a.lockedUntil.Sub(lp.now()); left > 0 {
		return left, true
	}
	return 0, false
}

// Fail records a wrong password for email. When the failure locks the
// account it returns the lockout length; otherwise lockedFor is zero and
// remaining is the number of attempts left.
func (lp *LoginProtection) Fail(email string) (lockedFor time.Duration, remaining int) {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	now := lp.now()
	key := accountKey(email)
	a, ok := lp.accounts[key]
	if !ok {
		if len(lp.accounts) >= maxTrackedAccounts {
			lp.sweep(now)
		}
		a = &accountFailures{}
		lp.accounts[key] = a
	}
	if a.failures == 0 || now.Sub(a.windowStart) > lp.cfg.AttemptWindow {
		a.failures, a.windowStart = 0, now
	}
	a.failures++

	if a.failures < lp.cfg.MaxFailedAttempts {
		return 0, lp.cfg.MaxFailedAttempts - a.failures
	}

	lockedFor = lp.lockoutLength(a.lockouts)
	a.lockedUntil = now.Add(lockedFor)
	a.lockouts++
	a.failures = 0
	slog.Warn("account locked after failed logins", "email", key, "lockouts", a.lockouts, "duration", lockedFor.String())
	return lockedFor, 0
}

// lockoutLength doubles the base lockout for each earlier lockout.
func (lp *LoginProtection) lockoutLength(previous int) time.Duration {
	d := lp.cfg.LockoutDuration
	for range previous {
		if d >= lp.cfg.MaxLockout/2 {
			return lp.cfg.MaxLockout
		}
		d *= 2
	}
	return d
}

// Succeed forgets the failure history of email.
func (lp *LoginProtection) Succeed(email string) {
	lp.mu.Lock()
	delete(lp.accounts, accountKey(email))
	lp.mu.Unlock()
}

// sweep drops accounts that are neither locked nor inside an attempt
// window. Caller holds mu.
func (lp *LoginProtection) sweep(now time.Time) {
	for k, a := range lp.accounts {
		if !now.Before(a.lockedUntil) && now.Sub(a.windowStart) > lp.cfg.AttemptWindow {
			delete(lp.accounts, k)
		}
	}
}

// Middleware limits POST requests per client IP; other methods pass through.
func (lp *LoginProtection) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				if ip := ClientIP(r); !lp.ips.allow(ip) {
					slog.Warn("login rate limit exceeded", "ip", ip, "path", r.URL.Path)
					WriteMessage(w, http.StatusTooManyRequests, MsgTooManyAttempts)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
