// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const bookColumns = `id, title, content_type, content, author, image, date_created, download_price, section_id`

func scanBook(row interface{ Scan(...any) error }) (Book, error) {
	var b Book
	err := row.Scan(
		&b.ID,
		&b.Title,
		&b.ContentType,
		&b.Content,
		&b.Author,
		&b.Image,
		&b.DateCreated,
		&b.DownloadPrice,
		&b.SectionID,
	)
	return b, err
}

const listBooksBySection = `SELECT ` + bookColumns + ` FROM books WHERE section_id = ? ORDER BY id`

func (q *Queries) ListBooksBySection(ctx context.Context, sectionID int64) ([]Book, error) {
	rows, err := q.db.QueryContext(ctx, listBooksBySection, sectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getBook = `SELECT ` + bookColumns + ` FROM books WHERE id = ?`

func (q *Queries) GetBook(ctx context.Context, id int64) (Book, error) {
	return scanBook(q.db.QueryRowContext(ctx, getBook, id))
}

const createBook = `INSERT INTO books (
    title, content_type, content, author, image, date_created, download_price, section_id
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + bookColumns

type CreateBookParams struct {
	Title         string
	ContentType   string
	Content       string
	Author        string
	Image         sql.NullString
	DateCreated   time.Time
	DownloadPrice float64
	SectionID     int64
}

func (q *Queries) CreateBook(ctx context.Context, arg CreateBookParams) (Book, error) {
	row := q.db.QueryRowContext(ctx, createBook,
		arg.Title,
		arg.ContentType,
		arg.Content,
		arg.Author,
		arg.Image,
		arg.DateCreated,
		arg.DownloadPrice,
		arg.SectionID,
	)
	return scanBook(row)
}

const updateBook = `UPDATE books SET
    title = ?, content_type = ?, content = ?, author = ?, image = ?, download_price = ?, section_id = ?
WHERE id = ?
RETURNING ` + bookColumns

type UpdateBookParams struct {
	Title         string
	ContentType   string
	Content       string
	Author        string
	Image         sql.NullString
	DownloadPrice float64
	SectionID     int64
	ID            int64
}

func (q *Queries) UpdateBook(ctx context.Context, arg UpdateBookParams) (Book, error) {
	row := q.db.QueryRowContext(ctx, updateBook,
		arg.Title,
		arg.ContentType,
		arg.Content,
		arg.Author,
		arg.Image,
		arg.DownloadPrice,
		arg.SectionID,
		arg.ID,
	)
	return scanBook(row)
}

const deleteBook = `DELETE FROM books WHERE id = ?`

func (q *Queries) DeleteBook(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteBook, id)
	return err
}

const countBooksBySection = `SELECT COUNT(*) FROM books WHERE section_id = ?`

func (q *Queries) CountBooksBySection(ctx context.Context, sectionID int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countBooksBySection, sectionID).Scan(&count)
	return count, err
}
