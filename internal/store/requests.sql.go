// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const userRequestColumns = `id, username, book_id, request_date, return_date, is_active`

func scanUserRequest(row interface{ Scan(...any) error }) (UserRequest, error) {
	var r UserRequest
	err := row.Scan(&r.ID, &r.Username, &r.BookID, &r.RequestDate, &r.ReturnDate, &r.IsActive)
	return r, err
}

func collectUserRequests(ctx context.Context, db DBTX, query string, args ...any) ([]UserRequest, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []UserRequest{}
	for rows.Next() {
		r, err := scanUserRequest(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createUserRequest = `INSERT INTO user_requests (username, book_id, request_date, return_date, is_active)
VALUES (?, ?, ?, ?, 1)
RETURNING ` + userRequestColumns

type CreateUserRequestParams struct {
	Username    string
	BookID      int64
	RequestDate time.Time
	ReturnDate  time.Time
}

func (q *Queries) CreateUserRequest(ctx context.Context, arg CreateUserRequestParams) (UserRequest, error) {
	row := q.db.QueryRowContext(ctx, createUserRequest, arg.Username, arg.BookID, arg.RequestDate, arg.ReturnDate)
	return scanUserRequest(row)
}

const getUserRequest = `SELECT ` + userRequestColumns + ` FROM user_requests WHERE id = ?`

func (q *Queries) GetUserRequest(ctx context.Context, id int64) (UserRequest, error) {
	return scanUserRequest(q.db.QueryRowContext(ctx, getUserRequest, id))
}

const listUserRequestsByUsername = `SELECT ` + userRequestColumns + `
FROM user_requests WHERE username = ? ORDER BY id DESC`

func (q *Queries) ListUserRequestsByUsername(ctx context.Context, username string) ([]UserRequest, error) {
	return collectUserRequests(ctx, q.db, listUserRequestsByUsername, username)
}

const countActiveRequests = `SELECT COUNT(*) FROM user_requests
WHERE username = ? AND book_id = ? AND is_active = 1`

type CountActiveRequestsParams struct {
	Username string
	BookID   int64
}

func (q *Queries) CountActiveRequests(ctx context.Context, arg CountActiveRequestsParams) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countActiveRequests, arg.Username, arg.BookID).Scan(&count)
	return count, err
}

const deactivateUserRequest = `UPDATE user_requests SET is_active = 0 WHERE id = ?`

func (q *Queries) DeactivateUserRequest(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deactivateUserRequest, id)
	return err
}

const listOverdueRequests = `SELECT ` + userRequestColumns + `
FROM user_requests WHERE is_active = 1 AND return_date < ? ORDER BY id`

func (q *Queries) ListOverdueRequests(ctx context.Context, now time.Time) ([]UserRequest, error) {
	return collectUserRequests(ctx, q.db, listOverdueRequests, now)
}

const grantUserBook = `INSERT INTO user_books (username, book_id) VALUES (?, ?)
ON CONFLICT(username, book_id) DO NOTHING`

type GrantUserBookParams struct {
	Username string
	BookID   int64
}

func (q *Queries) GrantUserBook(ctx context.Context, arg GrantUserBookParams) error {
	_, err := q.db.ExecContext(ctx, grantUserBook, arg.Username, arg.BookID)
	return err
}

const revokeUserBook = `DELETE FROM user_books WHERE username = ? AND book_id = ?`

type RevokeUserBookParams struct {
	Username string
	BookID   int64
}

func (q *Queries) RevokeUserBook(ctx context.Context, arg RevokeUserBookParams) error {
	_, err := q.db.ExecContext(ctx, revokeUserBook, arg.Username, arg.BookID)
	return err
}

const userHasBook = `SELECT COUNT(*) FROM user_books WHERE username = ? AND book_id = ?`

type UserHasBookParams struct {
	Username string
	BookID   int64
}

func (q *Queries) UserHasBook(ctx context.Context, arg UserHasBookParams) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, userHasBook, arg.Username, arg.BookID).Scan(&count)
	return count, err
}
