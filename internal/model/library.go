// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Cover images used when a section or book is created without one.
const (
	DefaultSectionImage = "https://images.unsplash.com/photo-1603058817990-2b9a9abbce86?crop=entropy&cs=tinysrgb&fit=crop&fm=jpg&h=900&ixid=MnwxfDB8MXxyYW5kb218MHx8Ym9va3N8fHx8fHwxNzEyMzc5MTU0&ixlib=rb-4.0.3&q=80&utm_campaign=api-credit&utm_medium=referral&utm_source=unsplash_source&w=1600"
	DefaultBookImage    = "https://images.unsplash.com/photo-1622006816342-36fe7754b0c9?q=80&w=1887&auto=format&fit=crop&ixlib=rb-4.0.3&ixid=M3wxMjA3fDB8MHxwaG90by1wYWdlfHx8fGVufDB8fHx8fA%3D%3D"
)

// Date layouts used in API responses. Section listings use the day-first
// layout, everything else the ISO one.
const (
	DateLayoutISO      = "2006-01-02"
	DateLayoutDayFirst = "02-01-2006"
)

// Rating bounds.
const (
	MinRating = 0.0
	MaxRating = 5.0
)

// IsValidRating reports whether r lies in (MinRating, MaxRating].
func IsValidRating(r float64) bool {
	return r > MinRating && r <= MaxRating
}

// DefaultLendingDays is the loan period when none is configured.
const DefaultLendingDays = 14

// ReturnDate computes the due date of a lending request made at requested.
func ReturnDate(requested time.Time, lendingDays int) time.Time {
	return requested.AddDate(0, 0, lendingDays)
}
