// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const sectionColumns = `id, name, description, image, date_created`

func scanSection(row interface{ Scan(...any) error }) (Section, error) {
	var s Section
	err := row.Scan(&s.ID, &s.Name, &s.Description, &s.Image, &s.DateCreated)
	return s, err
}

const listSections = `SELECT ` + sectionColumns + ` FROM sections ORDER BY id`

func (q *Queries) ListSections(ctx context.Context) ([]Section, error) {
	rows, err := q.db.QueryContext(ctx, listSections)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Section{}
	for rows.Next() {
		s, err := scanSection(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getSection = `SELECT ` + sectionColumns + ` FROM sections WHERE id = ?`

func (q *Queries) GetSection(ctx context.Context, id int64) (Section, error) {
	return scanSection(q.db.QueryRowContext(ctx, getSection, id))
}

const createSection = `INSERT INTO sections (name, description, image, date_created)
VALUES (?, ?, ?, ?)
RETURNING ` + sectionColumns

type CreateSectionParams struct {
	Name        string
	Description string
	Image       sql.NullString
	DateCreated time.Time
}

func (q *Queries) CreateSection(ctx context.Context, arg CreateSectionParams) (Section, error) {
	row := q.db.QueryRowContext(ctx, createSection, arg.Name, arg.Description, arg.Image, arg.DateCreated)
	return scanSection(row)
}

const updateSection = `UPDATE sections SET name = ?, description = ?, image = ?
WHERE id = ?
RETURNING ` + sectionColumns

type UpdateSectionParams struct {
	Name        string
	Description string
	Image       sql.NullString
	ID          int64
}

func (q *Queries) UpdateSection(ctx context.Context, arg UpdateSectionParams) (Section, error) {
	row := q.db.QueryRowContext(ctx, updateSection, arg.Name, arg.Description, arg.Image, arg.ID)
	return scanSection(row)
}

const deleteSection = `DELETE FROM sections WHERE id = ?`

func (q *Queries) DeleteSection(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteSection, id)
	return err
}

const sectionNameExists = `SELECT COUNT(*) FROM sections WHERE name = ?`

func (q *Queries) SectionNameExists(ctx context.Context, name string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, sectionNameExists, name).Scan(&count)
	return count, err
}
