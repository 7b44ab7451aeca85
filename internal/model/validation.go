// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Registration limits.
const (
	MinPasswordLength = 8
	MinUsernameLength = 3
)

// Registration validation messages, returned verbatim to API clients.
const (
	MsgRegistrationFieldsRequired = "Email, Username and Password are required"
	MsgEmailTaken                 = "User with provided email id already exists"
	MsgUsernameTaken              = "User with provided username already exists"
	MsgInvalidEmail               = "Invalid Email"
	MsgPasswordTooShort           = "Password must be atleast 8 characters long"
	MsgInvalidUsername            = "Username must be atleast 3 characters long and alphanumeric characters"
	MsgInvalidRole                = "Invalid Role"
)

// IsValidEmail applies the deliberately loose check the API has always used:
// the address must contain an '@' and a '.'.
func IsValidEmail(email string) bool {
	return strings.Contains(email, "@") && strings.Contains(email, ".")
}

// IsValidPassword reports whether the password is long enough.
func IsValidPassword(password string) bool {
	return utf8.RuneCountInString(password) >= MinPasswordLength
}

// IsValidUsername reports whether the username has at least three characters,
// all of them letters or digits.
func IsValidUsername(username string) bool {
	if utf8.RuneCountInString(username) < MinUsernameLength {
		return false
	}
	for _, r := range username {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// ValidateRegistrationFormat checks the format rules that apply after the
// uniqueness checks. It returns the first failing message, or "" when the
// input is acceptable.
func ValidateRegistrationFormat(email, password, username, role string) string {
	switch {
	case !IsValidEmail(email):
		return MsgInvalidEmail
	case !IsValidPassword(password):
		return MsgPasswordTooShort
	case !IsValidUsername(username):
		return MsgInvalidUsername
	case !IsValidRole(role):
		return MsgInvalidRole
	}
	return ""
}
