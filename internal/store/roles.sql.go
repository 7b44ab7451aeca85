// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
)

const createRoleIfMissing = `INSERT INTO roles (name, description) VALUES (?, ?)
ON CONFLICT(name) DO NOTHING`

type CreateRoleIfMissingParams struct {
	Name        string
	Description sql.NullString
}

func (q *Queries) CreateRoleIfMissing(ctx context.Context, arg CreateRoleIfMissingParams) error {
	_, err := q.db.ExecContext(ctx, createRoleIfMissing, arg.Name, arg.Description)
	return err
}

const getRoleByName = `SELECT id, name, description FROM roles WHERE name = ?`

func (q *Queries) GetRoleByName(ctx context.Context, name string) (Role, error) {
	var r Role
	err := q.db.QueryRowContext(ctx, getRoleByName, name).Scan(&r.ID, &r.Name, &r.Description)
	return r, err
}

const assignRole = `INSERT INTO role_users (username, role_id) VALUES (?, ?)
ON CONFLICT(username, role_id) DO NOTHING`

type AssignRoleParams struct {
	Username string
	RoleID   int64
}

func (q *Queries) AssignRole(ctx context.Context, arg AssignRoleParams) error {
	_, err := q.db.ExecContext(ctx, assignRole, arg.Username, arg.RoleID)
	return err
}

const listRoleNamesForUser = `SELECT r.name FROM roles r
JOIN role_users ru ON ru.role_id = r.id
WHERE ru.username = ?
ORDER BY r.id`

func (q *Queries) ListRoleNamesForUser(ctx context.Context, username string) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listRoleNamesForUser, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		items = append(items, name)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
