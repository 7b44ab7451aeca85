// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const userColumns = `username, email, password_hash, fs_uniquifier, fs_token_uniquifier, active, created_at, last_login_at`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var u User
	err := row.Scan(
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.FsUniquifier,
		&u.FsTokenUniquifier,
		&u.Active,
		&u.CreatedAt,
		&u.LastLoginAt,
	)
	return u, err
}

const createUser = `INSERT INTO users (
    username, email, password_hash, fs_uniquifier, fs_token_uniquifier, active, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING ` + userColumns

type CreateUserParams struct {
	Username          string
	Email             string
	PasswordHash      string
	FsUniquifier      string
	FsTokenUniquifier string
	Active            bool
	CreatedAt         time.Time
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, createUser,
		arg.Username,
		arg.Email,
		arg.PasswordHash,
		arg.FsUniquifier,
		arg.FsTokenUniquifier,
		arg.Active,
		arg.CreatedAt,
	)
	return scanUser(row)
}

const getUserByEmail = `SELECT ` + userColumns + ` FROM users WHERE email = ?`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByEmail, email))
}

const getUserByUsername = `SELECT ` + userColumns + ` FROM users WHERE username = ?`

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByUsername, username))
}

const getUserByTokenUniquifier = `SELECT ` + userColumns + ` FROM users WHERE fs_token_uniquifier = ?`

func (q *Queries) GetUserByTokenUniquifier(ctx context.Context, uniquifier string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByTokenUniquifier, uniquifier))
}

const getUserByUniquifier = `SELECT ` + userColumns + ` FROM users WHERE fs_uniquifier = ?`

func (q *Queries) GetUserByUniquifier(ctx context.Context, uniquifier string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByUniquifier, uniquifier))
}

const emailExists = `SELECT COUNT(*) FROM users WHERE email = ?`

func (q *Queries) EmailExists(ctx context.Context, email string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, emailExists, email).Scan(&count)
	return count, err
}

const usernameExists = `SELECT COUNT(*) FROM users WHERE username = ?`

func (q *Queries) UsernameExists(ctx context.Context, username string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, usernameExists, username).Scan(&count)
	return count, err
}

const updateUserLastLogin = `UPDATE users SET last_login_at = ? WHERE username = ?`

type UpdateUserLastLoginParams struct {
	LastLoginAt sql.NullTime
	Username    string
}

func (q *Queries) UpdateUserLastLogin(ctx context.Context, arg UpdateUserLastLoginParams) error {
	_, err := q.db.ExecContext(ctx, updateUserLastLogin, arg.LastLoginAt, arg.Username)
	return err
}

const updateUserPassword = `UPDATE users SET password_hash = ? WHERE username = ?`

type UpdateUserPasswordParams struct {
	PasswordHash string
	Username     string
}

func (q *Queries) UpdateUserPassword(ctx context.Context, arg UpdateUserPasswordParams) error {
	_, err := q.db.ExecContext(ctx, updateUserPassword, arg.PasswordHash, arg.Username)
	return err
}

const updateUserTokenUniquifier = `UPDATE users SET fs_token_uniquifier = ? WHERE username = ?`

type UpdateUserTokenUniquifierParams struct {
	FsTokenUniquifier string
	Username          string
}

func (q *Queries) UpdateUserTokenUniquifier(ctx context.Context, arg UpdateUserTokenUniquifierParams) error {
	_, err := q.db.ExecContext(ctx, updateUserTokenUniquifier, arg.FsTokenUniquifier, arg.Username)
	return err
}

const countUsers = `SELECT COUNT(*) FROM users`

func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countUsers).Scan(&count)
	return count, err
}
