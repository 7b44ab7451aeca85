// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"net/http"
	"runtime"
	"time"

	"github.com/olegiv/library-go/internal/cache"
	"github.com/olegiv/library-go/internal/middleware"
	"github.com/olegiv/library-go/internal/version"
)

// Health check statuses.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthHandler serves /health, /health/live and /health/ready.
type HealthHandler struct {
	db       *sql.DB
	sections *cache.SectionCache
	version  version.Info
	started  time.Time
}

// NewHealthHandler creates a HealthHandler. sections may be nil when the
// section cache is disabled.
func NewHealthHandler(db *sql.DB, sections *cache.SectionCache, ver version.Info) *HealthHandler {
	return &HealthHandler{db: db, sections: sections, version: ver, started: time.Now()}
}

// HealthStatus is the /health body. Anonymous callers only get Status.
type HealthStatus struct {
	Status    string           `json:"status"`
	Timestamp *time.Time       `json:"timestamp,omitempty"`
	Uptime    string           `json:"uptime,omitempty"`
	Version   string           `json:"version,omitempty"`
	Checks    map[string]Check `json:"checks,omitempty"`
	System    *SystemInfo      `json:"system,omitempty"`
}

// Check is the result of one dependency check.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// SystemInfo is runtime information shown to admins with ?verbose=true.
type SystemInfo struct {
	GoVersion  string `json:"go_version"`
	Goroutines int    `json:"goroutines"`
	CPUs       int    `json:"cpus"`
	HeapBytes  uint64 `json:"heap_bytes"`
	SysBytes   uint64 `json:"sys_bytes"`
}

// Health handles GET /health. Signed-in callers also get uptime and version;
// admins get the individual checks.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	checks := map[string]Check{
		"database": h.checkDatabase(r.Context()),
		"cache":    h.checkCache(r.Context()),
	}

	resp := HealthStatus{Status: StatusHealthy}
	code := http.StatusOK
	if checks["database"].Status != StatusHealthy {
		resp.Status, code = StatusUnhealthy, http.StatusServiceUnavailable
	} else if checks["cache"].Status != StatusHealthy {
		resp.Status = StatusDegraded
	}

	if id := middleware.GetIdentity(r); id != nil {
		now := time.Now().UTC()
		resp.Timestamp = &now
		resp.Uptime = time.Since(h.started).Round(time.Second).String()
		resp.Version = h.version.Version
		if id.IsAdmin() {
			resp.Checks = checks
			if r.URL.Query().Get("verbose") == "true" {
				resp.System = systemInfo()
			}
		}
	}

	writeJSON(w, code, resp)
}

// Liveness handles GET /health/live.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// Readiness handles GET /health/ready: ready once the database answers.
// Signed-in callers are told why when it does not.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	db := h.checkDatabase(r.Context())
	if db.Status == StatusHealthy {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
		return
	}

	resp := map[string]string{"status": "not_ready"}
	if middleware.GetIdentity(r) != nil {
		resp["message"] = db.Message
	}
	writeJSON(w, http.StatusServiceUnavailable, resp)
}

func (h *HealthHandler) checkDatabase(ctx context.Context) Check {
	return timedCheck(StatusUnhealthy, "Connected", func() error {
		return h.db.PingContext(ctx)
	})
}

// checkCache reports a failing cache as degraded: the store still answers.
func (h *HealthHandler) checkCache(ctx context.Context) Check {
	if h.sections == nil {
		return Check{Status: StatusHealthy, Message: "Disabled"}
	}
	return timedCheck(StatusDegraded, "Reachable", func() error {
		return h.sections.Ping(ctx)
	})
}

// timedCheck runs ping and reports failStatus with the error text if it fails.
func timedCheck(failStatus, okMessage string, ping func() error) Check {
	start := time.Now()
	err := ping()
	c := Check{Status: StatusHealthy, Message: okMessage, Latency: time.Since(start).String()}
	if err != nil {
		c.Status, c.Message = failStatus, err.Error()
	}
	return c
}

func systemInfo() *SystemInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return &SystemInfo{
		GoVersion:  runtime.Version(),
		Goroutines: runtime.NumGoroutine(),
		CPUs:       runtime.NumCPU(),
		HeapBytes:  m.HeapAlloc,
		SysBytes:   m.Sys,
	}
}
