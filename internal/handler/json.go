// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler serves the operational endpoints that sit beside the
// library API: health checks, the audit event log and cache administration.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/olegiv/library-go/internal/middleware"
)

// writeJSON writes data as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// logAndInternalError logs an error and writes a 500 response.
func logAndInternalError(w http.ResponseWriter, logMsg string, args ...any) {
	slog.Error(logMsg, args...)
	middleware.WriteMessage(w, http.StatusInternalServerError, "Internal Server Error")
}
