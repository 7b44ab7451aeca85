// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
)

const createRating = `INSERT INTO ratings (book_id, username, rating, feedback)
VALUES (?, ?, ?, ?)
RETURNING id, book_id, username, rating, feedback`

type CreateRatingParams struct {
	BookID   int64
	Username string
	Rating   float64
	Feedback sql.NullString
}

func (q *Queries) CreateRating(ctx context.Context, arg CreateRatingParams) (Rating, error) {
	var r Rating
	err := q.db.QueryRowContext(ctx, createRating, arg.BookID, arg.Username, arg.Rating, arg.Feedback).
		Scan(&r.ID, &r.BookID, &r.Username, &r.Rating, &r.Feedback)
	return r, err
}

const listRatingsForBook = `SELECT id, book_id, username, rating, feedback
FROM ratings WHERE book_id = ? ORDER BY id`

func (q *Queries) ListRatingsForBook(ctx context.Context, bookID int64) ([]Rating, error) {
	rows, err := q.db.QueryContext(ctx, listRatingsForBook, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Rating{}
	for rows.Next() {
		var r Rating
		if err := rows.Scan(&r.ID, &r.BookID, &r.Username, &r.Rating, &r.Feedback); err != nil {
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

const averageRatingForBook = `SELECT AVG(rating) FROM ratings WHERE book_id = ?`

// AverageRatingForBook returns an invalid NullFloat64 when the book has no ratings.
func (q *Queries) AverageRatingForBook(ctx context.Context, bookID int64) (sql.NullFloat64, error) {
	var avg sql.NullFloat64
	err := q.db.QueryRowContext(ctx, averageRatingForBook, bookID).Scan(&avg)
	return avg, err
}
