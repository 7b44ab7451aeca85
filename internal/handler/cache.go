// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"

	"github.com/olegiv/library-go/internal/cache"
	"github.com/olegiv/library-go/internal/middleware"
)

// MsgCacheCleared is returned after an admin clears the section cache.
const MsgCacheCleared = "Section cache cleared"

// CacheHandler exposes section cache statistics and invalidation to admins.
type CacheHandler struct {
	sections *cache.SectionCache
	fallback bool
}

// NewCacheHandler creates a new CacheHandler. fallback reports that Redis was
// configured but the memory backend is in use.
func NewCacheHandler(sections *cache.SectionCache, fallback bool) *CacheHandler {
	return &CacheHandler{sections: sections, fallback: fallback}
}

// CacheStatsResponse describes the section cache.
type CacheStatsResponse struct {
	Backend     string       `json:"backend"`
	IsFallback  bool         `json:"is_fallback"`
	Stats       cache.Stats  `json:"stats"`
	HealthError string       `json:"health_error,omitempty"`
}

// Stats handles GET /cache.
func (h *CacheHandler) Stats(w http.ResponseWriter, r *http.Request) {
	resp := CacheStatsResponse{
		Backend:    h.sections.Backend(),
		IsFallback: h.fallback,
		Stats:      h.sections.Stats(r.Context()),
	}
	if err := h.sections.Ping(r.Context()); err != nil {
		resp.HealthError = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// Clear handles POST /cache/clear.
func (h *CacheHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.sections.Invalidate(r.Context())
	slog.Info("cache cleared", "cleared_by", middleware.GetUsername(r))
	middleware.WriteMessage(w, http.StatusOK, MsgCacheCleared)
}
