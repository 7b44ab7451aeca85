// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/olegiv/library-go/internal/cache"
	"github.com/olegiv/library-go/internal/middleware"
	"github.com/olegiv/library-go/internal/model"
	"github.com/olegiv/library-go/internal/store"
	"github.com/olegiv/library-go/internal/testutil"
	"github.com/olegiv/library-go/internal/version"
)

var (
	adminIdentity  = model.Identity{Username: "admin", Roles: []string{model.RoleAdmin}}
	readerIdentity = model.Identity{Username: "reader", Roles: []string{model.RoleUser}}
)

func newTestHealthHandler(t *testing.T) (*HealthHandler, *cache.Memory) {
	t.Helper()
	db := testutil.TestMemoryDB(t)
	mem := cache.NewMemory(time.Minute, 100)
	t.Cleanup(func() { _ = mem.Close() })
	sections := cache.NewSectionCache(mem, store.New(db), time.Minute)
	return NewHealthHandler(db, sections, version.New("v1.2.3", "abc1234", "")), mem
}

func healthRequest(path string, id *model.Identity) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if id != nil {
		req = req.WithContext(middleware.WithIdentity(req.Context(), *id))
	}
	return req
}

func assertStatus(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status = %d; want %d", got, want)
	}
}

func TestHealthHandler_Health_Public(t *testing.T) {
	h, _ := newTestHealthHandler(t)

	w := httptest.NewRecorder()
	h.Health(w, healthRequest("/health", nil))

	assertStatus(t, w.Code, http.StatusOK)
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q; want application/json", ct)
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp["status"] != StatusHealthy {
		t.Errorf("status = %v; want healthy", resp["status"])
	}
	for _, field := range []string{"timestamp", "uptime", "version", "checks", "system"} {
		if _, ok := resp[field]; ok {
			t.Errorf("public response should not contain %q", field)
		}
	}
}

func TestHealthHandler_Health_User(t *testing.T) {
	h, _ := newTestHealthHandler(t)

	w := httptest.NewRecorder()
	h.Health(w, healthRequest("/health?verbose=true", &readerIdentity))
	assertStatus(t, w.Code, http.StatusOK)

	var resp HealthStatus
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Version != "v1.2.3" {
		t.Errorf("version = %q; want v1.2.3", resp.Version)
	}
	if resp.Uptime == "" || resp.Timestamp == nil {
		t.Error("uptime and timestamp should be set for signed-in callers")
	}
	if resp.Checks != nil || resp.System != nil {
		t.Error("non-admin response should not include checks or system info")
	}
}

func TestHealthHandler_Health_Admin(t *testing.T) {
	h, _ := newTestHealthHandler(t)

	w := httptest.NewRecorder()
	h.Health(w, healthRequest("/health?verbose=true", &adminIdentity))
	assertStatus(t, w.Code, http.StatusOK)

	var resp HealthStatus
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Checks["database"].Status != StatusHealthy {
		t.Errorf("database check = %+v; want healthy", resp.Checks["database"])
	}
	if resp.Checks["cache"].Status != StatusHealthy {
		t.Errorf("cache check = %+v; want healthy", resp.Checks["cache"])
	}
	if resp.System == nil || resp.System.GoVersion == "" {
		t.Error("verbose admin response should include system info")
	}
}

func TestHealthHandler_Health_CacheDown(t *testing.T) {
	h, mem := newTestHealthHandler(t)
	_ = mem.Close()

	w := httptest.NewRecorder()
	h.Health(w, healthRequest("/health", &adminIdentity))
	assertStatus(t, w.Code, http.StatusOK)

	var resp HealthStatus
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Status != StatusDegraded {
		t.Errorf("status = %q; want degraded", resp.Status)
	}
	if resp.Checks["cache"].Status != StatusDegraded {
		t.Errorf("cache check = %+v; want degraded", resp.Checks["cache"])
	}
}

func TestHealthHandler_Health_NoCache(t *testing.T) {
	db := testutil.TestMemoryDB(t)
	h := NewHealthHandler(db, nil, version.New("", "", ""))

	w := httptest.NewRecorder()
	h.Health(w, healthRequest("/health", &adminIdentity))
	assertStatus(t, w.Code, http.StatusOK)

	var resp HealthStatus
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Checks["cache"].Message != "Disabled" {
		t.Errorf("cache check = %+v; want Disabled", resp.Checks["cache"])
	}
}

func TestHealthHandler_DatabaseDown(t *testing.T) {
	db := testutil.TestMemoryDB(t)
	h := NewHealthHandler(db, nil, version.New("", "", ""))
	_ = db.Close()

	w := httptest.NewRecorder()
	h.Health(w, healthRequest("/health", nil))
	assertStatus(t, w.Code, http.StatusServiceUnavailable)

	w = httptest.NewRecorder()
	h.Readiness(w, healthRequest("/health/ready", nil))
	assertStatus(t, w.Code, http.StatusServiceUnavailable)
	var anon map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &anon); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if anon["status"] != "not_ready" {
		t.Errorf("status = %q; want not_ready", anon["status"])
	}
	if _, ok := anon["message"]; ok {
		t.Error("anonymous readiness response should not carry error details")
	}

	w = httptest.NewRecorder()
	h.Readiness(w, healthRequest("/health/ready", &readerIdentity))
	var authed map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &authed); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if authed["message"] == "" {
		t.Error("signed-in readiness response should explain the failure")
	}
}

func TestHealthHandler_LivenessAndReadiness(t *testing.T) {
	h, _ := newTestHealthHandler(t)

	w := httptest.NewRecorder()
	h.Liveness(w, healthRequest("/health/live", nil))
	assertStatus(t, w.Code, http.StatusOK)

	w = httptest.NewRecorder()
	h.Readiness(w, healthRequest("/health/ready", nil))
	assertStatus(t, w.Code, http.StatusOK)
}

func TestTimedCheck(t *testing.T) {
	ok := timedCheck(StatusDegraded, "Reachable", func() error { return nil })
	if ok.Status != StatusHealthy || ok.Message != "Reachable" || ok.Latency == "" {
		t.Errorf("passing check = %+v", ok)
	}

	failed := timedCheck(StatusDegraded, "Reachable", func() error { return cache.ErrClosed })
	if failed.Status != StatusDegraded || failed.Message != cache.ErrClosed.Error() {
		t.Errorf("failing check = %+v", failed)
	}
}
