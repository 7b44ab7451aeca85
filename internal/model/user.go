// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain types and rules shared across the application:
// roles, the resolved request identity, registration validation, and
// presentation defaults for sections and books.
package model

import "slices"

// User roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// RoleDef describes a role seeded at startup.
type RoleDef struct {
	Name        string
	Description string
}

// Roles returns the roles every installation has.
func Roles() []RoleDef {
	return []RoleDef{
		{Name: RoleAdmin, Description: "Administrator"},
		{Name: RoleUser, Description: "Customers"},
	}
}

// IsValidRole reports whether name is a role a user may register with.
func IsValidRole(name string) bool {
	return name == RoleAdmin || name == RoleUser
}

// Identity is the authenticated caller resolved from a bearer token.
type Identity struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// HasRole reports whether the identity carries the given role.
func (i *Identity) HasRole(role string) bool {
	if i == nil {
		return false
	}
	return slices.Contains(i.Roles, role)
}

// IsAdmin returns true if the identity has the admin role.
func (i *Identity) IsAdmin() bool {
	return i.HasRole(RoleAdmin)
}
