// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/olegiv/library-go/internal/middleware"
	"github.com/olegiv/library-go/internal/model"
	"github.com/olegiv/library-go/internal/store"
)

// Event listing limits.
const (
	EventsPerPage    = 25
	MaxEventsPerPage = 100
)

// Event listing messages.
const (
	MsgUnknownEventLevel    = "Unknown event level"
	MsgUnknownEventCategory = "Unknown event category"
)

// EventsHandler serves the audit event log to admins.
type EventsHandler struct {
	queries *store.Queries
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(db *sql.DB) *EventsHandler {
	return &EventsHandler{queries: store.New(db)}
}

// EventResponse is a single audit event.
type EventResponse struct {
	ID        int64  `json:"id"`
	Level     string `json:"level"`
	Category  string `json:"category"`
	Message   string `json:"message"`
	Metadata  string `json:"metadata"`
	Details   string `json:"details,omitempty"`
	CreatedAt string `json:"created_at"`
}

// EventsListResponse is one page of the event log.
type EventsListResponse struct {
	Events     []EventResponse `json:"events"`
	Pagination Pagination      `json:"pagination"`
	Levels     []string        `json:"levels"`
	Categories []string        `json:"categories"`
}

// formatMetadata converts JSON metadata to readable text format.
// Example: {"path":"/api/v1/book","error":"not found"} -> "error: not found, path: /api/v1/book"
func formatMetadata(metadata string) string {
	if metadata == "" || metadata == "{}" {
		return ""
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(metadata), &data); err != nil {
		return metadata
	}
	if len(data) == 0 {
		return ""
	}

	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		var strValue string
		switch v := data[key].(type) {
		case string:
			strValue = v
		case float64:
			strValue = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			strValue = strconv.FormatBool(v)
		default:
			if b, err := json.Marshal(v); err == nil {
				strValue = string(b)
			}
		}
		parts = append(parts, key+": "+strValue)
	}

	return strings.Join(parts, ", ")
}

// List handles GET /events. Supports level, category, page and per_page
// query parameters.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	level := r.URL.Query().Get("level")
	category := r.URL.Query().Get("category")

	if level != "" && !slices.Contains(model.EventLevels(), level) {
		middleware.WriteMessage(w, http.StatusBadRequest, MsgUnknownEventLevel)
		return
	}
	if category != "" && !slices.Contains(model.EventCategories(), category) {
		middleware.WriteMessage(w, http.StatusBadRequest, MsgUnknownEventCategory)
		return
	}

	page := ParsePageParam(r)
	perPage := ParsePerPageParam(r, EventsPerPage, MaxEventsPerPage)

	totalEvents, err := h.queries.CountEventsFiltered(r.Context(), store.CountEventsFilteredParams{
		Level:    level,
		Category: category,
	})
	if err != nil {
		logAndInternalError(w, "failed to count events", "error", err)
		return
	}

	page, totalPages := NormalizePagination(page, int(totalEvents), perPage)

	rows, err := h.queries.ListEventsFiltered(r.Context(), store.ListEventsFilteredParams{
		Level:    level,
		Category: category,
		Limit:    int64(perPage),
		Offset:   int64((page - 1) * perPage),
	})
	if err != nil {
		logAndInternalError(w, "failed to list events", "error", err)
		return
	}

	events := make([]EventResponse, len(rows))
	for i, row := range rows {
		events[i] = EventResponse{
			ID:        row.ID,
			Level:     row.Level,
			Category:  row.Category,
			Message:   row.Message,
			Metadata:  row.Metadata,
			Details:   formatMetadata(row.Metadata),
			CreatedAt: row.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		}
	}

	writeJSON(w, http.StatusOK, EventsListResponse{
		Events: events,
		Pagination: Pagination{
			Page:       page,
			PerPage:    perPage,
			TotalItems: totalEvents,
			TotalPages: totalPages,
		},
		Levels:     model.EventLevels(),
		Categories: model.EventCategories(),
	})
}
