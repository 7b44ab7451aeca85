// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Event levels
const (
	EventLevelDebug = "debug"
	EventLevelInfo  = "info"
	EventLevelWarn  = "warn"
	EventLevelError = "error"
)

// Event categories
const (
	EventCategoryAuth    = "auth"
	EventCategorySection = "section"
	EventCategoryBook    = "book"
	EventCategoryRequest = "request"
	EventCategoryCache   = "cache"
	EventCategorySystem  = "system"
)

// EventLevels lists every event level.
func EventLevels() []string {
	return []string{EventLevelDebug, EventLevelInfo, EventLevelWarn, EventLevelError}
}

// EventCategories lists every event category.
func EventCategories() []string {
	return []string{
		EventCategoryAuth,
		EventCategorySection,
		EventCategoryBook,
		EventCategoryRequest,
		EventCategoryCache,
		EventCategorySystem,
	}
}
