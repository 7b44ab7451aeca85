// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"time"
)

type User struct {
	Username          string
	Email             string
	PasswordHash      string
	FsUniquifier      string
	FsTokenUniquifier sql.NullString
	Active            bool
	CreatedAt         time.Time
	LastLoginAt       sql.NullTime
}

type Role struct {
	ID          int64
	Name        string
	Description sql.NullString
}

type Section struct {
	ID          int64
	Name        string
	Description string
	Image       sql.NullString
	DateCreated time.Time
}

type Book struct {
	ID            int64
	Title         string
	ContentType   string
	Content       string
	Author        string
	Image         sql.NullString
	DateCreated   time.Time
	DownloadPrice float64
	SectionID     int64
}

type Rating struct {
	ID       int64
	BookID   int64
	Username string
	Rating   float64
	Feedback sql.NullString
}

type UserRequest struct {
	ID          int64
	Username    string
	BookID      int64
	RequestDate time.Time
	ReturnDate  time.Time
	IsActive    bool
}

type Event struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	Metadata  string
	CreatedAt time.Time
}
