// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/olegiv/library-go/internal/auth"
	"github.com/olegiv/library-go/internal/middleware"
	"github.com/olegiv/library-go/internal/model"
	"github.com/olegiv/library-go/internal/session"
	"github.com/olegiv/library-go/internal/store"
)

// Login and logout messages.
const (
	MsgLoginFieldsRequired = "Email and Password are required"
	MsgUnknownUser         = "Invalid Credentials - User doesn't exist"
	MsgWrongPassword       = "Invalid Credentials - Invalid Password"
	MsgLoginSuccessful     = "Login Successful"
	MsgLogoutSuccessful    = "Logout Successful"
	MsgRegistered          = "User Registered Successfully"
)

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse describes a user in auth responses.
type UserResponse struct {
	Username  string   `json:"username"`
	Email     string   `json:"email,omitempty"`
	Roles     []string `json:"roles"`
	AuthToken string   `json:"auth_token,omitempty"`
}

// UserEnvelope wraps a user with a message.
type UserEnvelope struct {
	Message string       `json:"message,omitempty"`
	User    UserResponse `json:"user"`
}

// Register handles POST /register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx := r.Context()

	if req.Email == "" || req.Password == "" || req.Username == "" {
		WriteMessage(w, http.StatusBadRequest, model.MsgRegistrationFieldsRequired)
		return
	}

	n, err := h.queries.EmailExists(ctx, req.Email)
	if err != nil {
		h.internalError(w, "failed to check email", err)
		return
	}
	if n > 0 {
		WriteMessage(w, http.StatusBadRequest, model.MsgEmailTaken)
		return
	}

	n, err = h.queries.UsernameExists(ctx, req.Username)
	if err != nil {
		h.internalError(w, "failed to check username", err)
		return
	}
	if n > 0 {
		WriteMessage(w, http.StatusBadRequest, model.MsgUsernameTaken)
		return
	}

	if msg := model.ValidateRegistrationFormat(req.Email, req.Password, req.Username, req.Role); msg != "" {
		WriteMessage(w, http.StatusBadRequest, msg)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.internalError(w, "failed to hash password", err)
		return
	}

	var roles []string
	err = store.ExecTx(ctx, h.db, func(q *store.Queries) error {
		user, err := q.CreateUser(ctx, store.CreateUserParams{
			Username:          req.Username,
			Email:             req.Email,
			PasswordHash:      hash,
			FsUniquifier:      uuid.NewString(),
			FsTokenUniquifier: uuid.NewString(),
			Active:            true,
			CreatedAt:         h.now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("creating user: %w", err)
		}
		role, err := q.GetRoleByName(ctx, req.Role)
		if err != nil {
			return fmt.Errorf("loading role %q: %w", req.Role, err)
		}
		if err := q.AssignRole(ctx, store.AssignRoleParams{Username: user.Username, RoleID: role.ID}); err != nil {
			return fmt.Errorf("assigning role: %w", err)
		}
		roles, err = q.ListRoleNamesForUser(ctx, user.Username)
		return err
	})
	if err != nil {
		h.internalError(w, "failed to register user", err)
		return
	}

	slog.Info("user registered", "username", req.Username, "role", req.Role)
	WriteJSON(w, http.StatusOK, UserEnvelope{
		Message: MsgRegistered,
		User:    UserResponse{Username: req.Username, Roles: roles},
	})
}

// Login handles POST /login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx := r.Context()

	if req.Email == "" || req.Password == "" {
		WriteMessage(w, http.StatusBadRequest, MsgLoginFieldsRequired)
		return
	}

	if h.protection != nil {
		if left, locked := h.protection.Locked(req.Email); locked {
			slog.Warn("login attempt on locked account", "email", req.Email, "locked_for", left.String())
			WriteMessage(w, http.StatusTooManyRequests, middleware.MsgTooManyAttempts)
			return
		}
	}

	user, err := h.queries.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.recordFailedLogin(r, req.Email, "unknown email")
			WriteMessage(w, http.StatusUnauthorized, MsgUnknownUser)
			return
		}
		h.internalError(w, "failed to load user", err)
		return
	}

	valid, err := auth.CheckPassword(req.Password, user.PasswordHash)
	if err != nil {
		h.internalError(w, "failed to verify password", err)
		return
	}
	if !valid {
		h.recordFailedLogin(r, req.Email, "wrong password")
		WriteMessage(w, http.StatusUnauthorized, MsgWrongPassword)
		return
	}

	if !user.Active {
		slog.Warn("login denied for inactive account", "username", user.Username)
		WriteMessage(w, http.StatusUnauthorized, middleware.MsgInactiveAccount)
		return
	}

	if h.protection != nil {
		h.protection.Succeed(req.Email)
	}

	if auth.NeedsRehash(user.PasswordHash) {
		if newHash, err := auth.HashPassword(req.Password); err == nil {
			if err := h.queries.UpdateUserPassword(ctx, store.UpdateUserPasswordParams{
				PasswordHash: newHash,
				Username:     user.Username,
			}); err != nil {
				slog.Warn("failed to upgrade password hash", "username", user.Username, "error", err)
			}
		}
	}

	tokenUniquifier := user.FsTokenUniquifier.String
	if !user.FsTokenUniquifier.Valid || tokenUniquifier == "" {
		tokenUniquifier = uuid.NewString()
		if err := h.queries.UpdateUserTokenUniquifier(ctx, store.UpdateUserTokenUniquifierParams{
			FsTokenUniquifier: tokenUniquifier,
			Username:          user.Username,
		}); err != nil {
			h.internalError(w, "failed to set token uniquifier", err)
			return
		}
	}

	if err := h.queries.UpdateUserLastLogin(ctx, store.UpdateUserLastLoginParams{
		LastLoginAt: sql.NullTime{Time: h.now().UTC(), Valid: true},
		Username:    user.Username,
	}); err != nil {
		slog.Warn("failed to record last login", "username", user.Username, "error", err)
	}

	if h.sessions != nil {
		if err := session.Start(ctx, h.sessions, user.FsUniquifier); err != nil {
			h.internalError(w, "failed to start session", err)
			return
		}
	}

	token, err := h.tokens.Issue(tokenUniquifier)
	if err != nil {
		h.internalError(w, "failed to issue auth token", err)
		return
	}

	roles, err := h.queries.ListRoleNamesForUser(ctx, user.Username)
	if err != nil {
		h.internalError(w, "failed to load roles", err)
		return
	}

	slog.Info("user logged in", "username", user.Username)
	WriteJSON(w, http.StatusOK, UserEnvelope{
		Message: MsgLoginSuccessful,
		User: UserResponse{
			Username:  user.Username,
			Email:     user.Email,
			Roles:     roles,
			AuthToken: token,
		},
	})
}

// Logout handles POST /logout. Rotating the token uniquifier invalidates
// every bearer token issued to the user.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	id := middleware.GetIdentity(r)
	if id == nil {
		WriteMessage(w, http.StatusUnauthorized, middleware.MsgMissingAuth)
		return
	}
	ctx := r.Context()

	if err := h.queries.UpdateUserTokenUniquifier(ctx, store.UpdateUserTokenUniquifierParams{
		FsTokenUniquifier: uuid.NewString(),
		Username:          id.Username,
	}); err != nil {
		h.internalError(w, "failed to rotate token uniquifier", err)
		return
	}

	if h.sessions != nil {
		if err := session.End(ctx, h.sessions); err != nil {
			slog.Warn("failed to destroy session on logout", "username", id.Username, "error", err)
		}
	}

	slog.Info("user logged out", "username", id.Username)
	WriteMessage(w, http.StatusOK, MsgLogoutSuccessful)
}

// Me handles GET /me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id := middleware.GetIdentity(r)
	if id == nil {
		WriteMessage(w, http.StatusUnauthorized, middleware.MsgMissingAuth)
		return
	}
	roles := id.Roles
	if roles == nil {
		roles = []string{}
	}
	WriteJSON(w, http.StatusOK, UserEnvelope{
		User: UserResponse{Username: id.Username, Email: id.Email, Roles: roles},
	})
}

// recordFailedLogin feeds login protection and logs the failure.
func (h *Handler) recordFailedLogin(r *http.Request, email, reason string) {
	attrs := []any{"email", email, "reason", reason, "ip", middleware.ClientIP(r)}
	if h.protection != nil {
		lockedFor, remaining := h.protection.Fail(email)
		if lockedFor > 0 {
			return
		}
		attrs = append(attrs, "remaining_attempts", remaining)
	}
	slog.Warn("failed login attempt", attrs...)
}

// internalError logs err and answers 500 with its text.
func (h *Handler) internalError(w http.ResponseWriter, logMsg string, err error) {
	slog.Error(logMsg, "error", err)
	WriteMessage(w, http.StatusInternalServerError, err.Error())
}
