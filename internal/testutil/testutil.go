// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers for the library service.
package testutil

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/library-go/internal/auth"
	"github.com/olegiv/library-go/internal/model"
	"github.com/olegiv/library-go/internal/store"

	_ "github.com/mattn/go-sqlite3"
)

// TestLogger creates a silent test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestLoggerSilent creates a completely silent test logger (error level only).
func TestLoggerSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// TestDB creates a temporary file database through store.NewDB with all
// migrations applied. Returns the database and a cleanup function that should
// be deferred.
func TestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "library-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	_ = f.Close()

	db, err := store.NewDB(dbPath)
	if err != nil {
		_ = os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}

	if err := store.Migrate(context.Background(), db); err != nil {
		_ = db.Close()
		_ = os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	return db, func() {
		_ = db.Close()
		_ = os.Remove(dbPath)
	}
}

// TestMemoryDB creates a migrated in-memory SQLite database with foreign keys
// enabled. The pool is limited to one connection so every query sees the same
// database. The database is closed when the test finishes.
func TestMemoryDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if err := store.Migrate(context.Background(), db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

// SeedRoles creates the admin and user roles.
func SeedRoles(t *testing.T, db *sql.DB) {
	t.Helper()

	q := store.New(db)
	for _, role := range model.Roles() {
		err := q.CreateRoleIfMissing(context.Background(), store.CreateRoleIfMissingParams{
			Name:        role.Name,
			Description: sql.NullString{String: role.Description, Valid: true},
		})
		if err != nil {
			t.Fatalf("CreateRoleIfMissing(%s): %v", role.Name, err)
		}
	}
}

// CreateUser inserts an active user with the given password and roles.
// Roles must already exist (see SeedRoles).
func CreateUser(t *testing.T, db *sql.DB, username, email, password string, roles ...string) store.User {
	t.Helper()
	ctx := context.Background()

	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	var user store.User
	err = store.ExecTx(ctx, db, func(q *store.Queries) error {
		var err error
		user, err = q.CreateUser(ctx, store.CreateUserParams{
			Username:          username,
			Email:             email,
			PasswordHash:      hash,
			FsUniquifier:      uuid.NewString(),
			FsTokenUniquifier: uuid.NewString(),
			Active:            true,
			CreatedAt:         time.Now().UTC(),
		})
		if err != nil {
			return err
		}
		for _, name := range roles {
			role, err := q.GetRoleByName(ctx, name)
			if err != nil {
				return err
			}
			if err := q.AssignRole(ctx, store.AssignRoleParams{Username: username, RoleID: role.ID}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", username, err)
	}
	return user
}

// CreateSection inserts a section and returns it.
func CreateSection(t *testing.T, db *sql.DB, name, description string) store.Section {
	t.Helper()

	section, err := store.New(db).CreateSection(context.Background(), store.CreateSectionParams{
		Name:        name,
		Description: description,
		Image:       sql.NullString{String: model.DefaultSectionImage, Valid: true},
		DateCreated: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateSection(%s): %v", name, err)
	}
	return section
}

// CreateBook inserts a book in the given section and returns it.
func CreateBook(t *testing.T, db *sql.DB, sectionID int64, title string) store.Book {
	t.Helper()

	book, err := store.New(db).CreateBook(context.Background(), store.CreateBookParams{
		Title:         title,
		ContentType:   "pdf",
		Content:       "content of " + title,
		Author:        "Author",
		Image:         sql.NullString{String: model.DefaultBookImage, Valid: true},
		DateCreated:   time.Now().UTC(),
		DownloadPrice: 9.99,
		SectionID:     sectionID,
	})
	if err != nil {
		t.Fatalf("CreateBook(%s): %v", title, err)
	}
	return book
}
