// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/library-go/internal/auth"
	"github.com/olegiv/library-go/internal/cache"
	"github.com/olegiv/library-go/internal/middleware"
	"github.com/olegiv/library-go/internal/model"
	"github.com/olegiv/library-go/internal/session"
	"github.com/olegiv/library-go/internal/store"
	"github.com/olegiv/library-go/internal/testutil"
	"github.com/olegiv/library-go/internal/version"
)

const testPassword = "password123"

var testTokenSecret = []byte("api-test-secret-at-least-32-bytes")

// apiFixture is a migrated database with one admin and one regular user,
// served through the full API router.
type apiFixture struct {
	db      *sql.DB
	queries *store.Queries
	handler *Handler
	router  http.Handler
	tokens  *auth.TokenIssuer
	admin   store.User
	reader  store.User
}

func newAPIFixture(t *testing.T) apiFixture {
	t.Helper()
	return newAPIFixtureWithProtection(t, middleware.LoginProtectionConfig{
		IPRateLimit: 1000,
		IPBurst:     1000,
	})
}

func newAPIFixtureWithProtection(t *testing.T, lpCfg middleware.LoginProtectionConfig) apiFixture {
	t.Helper()

	db := testutil.TestMemoryDB(t)
	testutil.SeedRoles(t, db)
	admin := testutil.CreateUser(t, db, "admin", "admin@example.com", testPassword, model.RoleAdmin)
	reader := testutil.CreateUser(t, db, "reader", "reader@example.com", testPassword, model.RoleUser)

	mem := cache.NewMemory(time.Minute, 100)
	t.Cleanup(func() { _ = mem.Close() })

	tokens := auth.NewTokenIssuer(testTokenSecret, time.Hour)
	h := NewHandler(db, Deps{
		Sessions:        session.New(db, true, time.Hour),
		Tokens:          tokens,
		Sections:        cache.NewSectionCache(mem, store.New(db), time.Minute),
		LoginProtection: middleware.NewLoginProtection(lpCfg),
		LendingDays:     14,
		Version:         version.New("v0.0.0-test", "", ""),
	})

	r := chi.NewRouter()
	r.Mount("/api/v1", h.Routes(middleware.NewTokenValidator(db, tokens)))

	return apiFixture{
		db:      db,
		queries: store.New(db),
		handler: h,
		router:  r,
		tokens:  tokens,
		admin:   admin,
		reader:  reader,
	}
}

// tokenFor issues a bearer token for user without going through /login.
func (f apiFixture) tokenFor(t *testing.T, user store.User) string {
	t.Helper()
	token, err := f.tokens.Issue(user.FsTokenUniquifier.String)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return token
}

// do sends a request through the router. An empty token sends no
// Authorization header.
func (f apiFixture) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, "/api/v1"+path, nil)
	} else {
		req = httptest.NewRequest(method, "/api/v1"+path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

// assertStatusCode checks that the response has the expected status code.
func assertStatusCode(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("expected status %d, got %d (body: %s)", expected, w.Code, w.Body.String())
	}
}

// assertMessage checks the {"message": ...} body of a response.
func assertMessage(t *testing.T, w *httptest.ResponseRecorder, expected string) {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response %q: %v", w.Body.String(), err)
	}
	if body.Message != expected {
		t.Errorf("message = %q, want %q", body.Message, expected)
	}
}

// decodeBody unmarshals the response body into T.
func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to unmarshal response %q: %v", w.Body.String(), err)
	}
	return v
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
