// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides general-purpose utility functions.
package util

import "database/sql"

// NullStringFromValue creates a sql.NullString from a string value.
// Returns a valid NullString if the string is non-empty, otherwise returns an invalid one.
func NullStringFromValue(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// NullStringOrDefault returns s as a valid NullString, or def when s is empty.
func NullStringOrDefault(s, def string) sql.NullString {
	if s == "" {
		return NullStringFromValue(def)
	}
	return sql.NullString{String: s, Valid: true}
}

// StringPtrFromNull converts sql.NullString into a pointer, nil when invalid.
// Used to render nullable columns as JSON null.
func StringPtrFromNull(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// Float64PtrFromNull converts sql.NullFloat64 into a pointer, nil when invalid.
func Float64PtrFromNull(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	f := nf.Float64
	return &f
}
