// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/library-go/internal/auth"
	"github.com/olegiv/library-go/internal/model"
)

// Default admin credentials
const (
	DefaultAdminEmail    = "admin@gmail.com"
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "password"
)

// SeedConfig describes the bootstrap admin account.
type SeedConfig struct {
	AdminEmail    string
	AdminUsername string
	AdminPassword string
}

// DefaultSeedConfig returns the built-in admin account.
func DefaultSeedConfig() SeedConfig {
	return SeedConfig{
		AdminEmail:    DefaultAdminEmail,
		AdminUsername: DefaultAdminUsername,
		AdminPassword: DefaultAdminPassword,
	}
}

// Seed ensures the admin and user roles exist and creates the admin account
// when no user has the configured admin email.
func Seed(ctx context.Context, db *sql.DB, cfg SeedConfig) error {
	created := false
	err := ExecTx(ctx, db, func(q *Queries) error {
		for _, role := range model.Roles() {
			if err := q.CreateRoleIfMissing(ctx, CreateRoleIfMissingParams{
				Name:        role.Name,
				Description: sql.NullString{String: role.Description, Valid: role.Description != ""},
			}); err != nil {
				return fmt.Errorf("creating role %q: %w", role.Name, err)
			}
		}

		_, err := q.GetUserByEmail(ctx, cfg.AdminEmail)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("checking for admin user: %w", err)
		}

		passwordHash, err := auth.HashPassword(cfg.AdminPassword)
		if err != nil {
			return fmt.Errorf("hashing password: %w", err)
		}

		user, err := q.CreateUser(ctx, CreateUserParams{
			Username:          cfg.AdminUsername,
			Email:             cfg.AdminEmail,
			PasswordHash:      passwordHash,
			FsUniquifier:      uuid.NewString(),
			FsTokenUniquifier: uuid.NewString(),
			Active:            true,
			CreatedAt:         time.Now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("creating admin user: %w", err)
		}

		adminRole, err := q.GetRoleByName(ctx, model.RoleAdmin)
		if err != nil {
			return fmt.Errorf("loading admin role: %w", err)
		}
		if err := q.AssignRole(ctx, AssignRoleParams{Username: user.Username, RoleID: adminRole.ID}); err != nil {
			return fmt.Errorf("assigning admin role: %w", err)
		}

		created = true
		return nil
	})
	if err != nil {
		return err
	}

	if created {
		slog.Info("created default admin user", "username", cfg.AdminUsername, "email", cfg.AdminEmail)
	} else {
		slog.Info("admin user already exists, skipping seed")
	}
	return nil
}
