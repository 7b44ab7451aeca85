// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides REST API handlers for the library.
package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"html"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/microcosm-cc/bluemonday"

	"github.com/olegiv/library-go/internal/auth"
	"github.com/olegiv/library-go/internal/cache"
	"github.com/olegiv/library-go/internal/middleware"
	"github.com/olegiv/library-go/internal/model"
	"github.com/olegiv/library-go/internal/store"
	"github.com/olegiv/library-go/internal/version"
)

// MsgInvalidJSON is returned when a request body cannot be decoded.
const MsgInvalidJSON = "Invalid JSON body"

// Deps are the collaborators a Handler needs besides the database.
type Deps struct {
	Sessions        *scs.SessionManager
	Tokens          *auth.TokenIssuer
	Sections        *cache.SectionCache
	LoginProtection *middleware.LoginProtection
	LendingDays     int
	Version         version.Info
}

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	db          *sql.DB
	queries     *store.Queries
	sessions    *scs.SessionManager
	tokens      *auth.TokenIssuer
	sections    *cache.SectionCache
	protection  *middleware.LoginProtection
	sanitizer   *bluemonday.Policy
	lendingDays int
	version     version.Info
	now         func() time.Time
}

// NewHandler creates a new API handler.
func NewHandler(db *sql.DB, deps Deps) *Handler {
	lendingDays := deps.LendingDays
	if lendingDays < 1 {
		lendingDays = model.DefaultLendingDays
	}
	return &Handler{
		db:          db,
		queries:     store.New(db),
		sessions:    deps.Sessions,
		tokens:      deps.Tokens,
		sections:    deps.Sections,
		protection:  deps.LoginProtection,
		sanitizer:   bluemonday.StrictPolicy(),
		lendingDays: lendingDays,
		version:     deps.Version,
		now:         time.Now,
	}
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteMessage writes a {"message": ...} response.
func WriteMessage(w http.ResponseWriter, statusCode int, message string) {
	middleware.WriteMessage(w, statusCode, message)
}

// StatusResponse contains API status information.
type StatusResponse struct {
	Status  string       `json:"status"`
	Version version.Info `json:"version"`
}

// Status returns the API status.
func (h *Handler) Status(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, StatusResponse{
		Status:  "ok",
		Version: h.version,
	})
}

// decodeJSON decodes the request body into v. On failure it writes a 400
// response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, errNotNumeric) {
			WriteMessage(w, http.StatusBadRequest, MsgNotNumeric)
			return false
		}
		WriteMessage(w, http.StatusBadRequest, MsgInvalidJSON)
		return false
	}
	return true
}

// parseIDParam parses a positive integer URL parameter.
func parseIDParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// EntityFetcher is a function that fetches an entity by ID.
type EntityFetcher[T any] func(id int64) (T, error)

// requireEntityByID parses the named URL parameter and fetches the entity.
// Unparseable IDs and missing rows both answer 404 with notFound.
// Returns the entity and true if successful, or zero value and false if error (response written).
func requireEntityByID[T any](w http.ResponseWriter, r *http.Request, param, notFound string, fetch EntityFetcher[T]) (T, bool) {
	var zero T

	id, ok := parseIDParam(r, param)
	if !ok {
		WriteMessage(w, http.StatusNotFound, notFound)
		return zero, false
	}

	entity, err := fetch(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteMessage(w, http.StatusNotFound, notFound)
		} else {
			slog.Error("failed to load entity", "param", param, "id", id, "error", err)
			WriteMessage(w, http.StatusInternalServerError, err.Error())
		}
		return zero, false
	}

	return entity, true
}

// sanitize strips markup from user-supplied free text. The policy escapes
// the text it keeps; it is unescaped again so plain text is stored as sent.
func (h *Handler) sanitize(s string) string {
	if s == "" {
		return s
	}
	return html.UnescapeString(h.sanitizer.Sanitize(s))
}
