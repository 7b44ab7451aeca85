// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/olegiv/library-go/internal/auth"
	"github.com/olegiv/library-go/internal/model"
	"github.com/olegiv/library-go/internal/store"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys for request data.
const (
	ContextKeyIdentity    ContextKey = "identity"
	ContextKeyRequestPath ContextKey = "request_path"
)

// Authentication failure messages.
const (
	MsgMissingAuth       = "Authentication token is missing"
	MsgInvalidAuthFormat = "Invalid Authorization header format. Use: Bearer <token>"
	MsgInvalidToken      = "Invalid or expired authentication token"
	MsgInactiveAccount   = "Account is inactive"
	MsgForbidden         = "You do not have permission to access this resource"
)

// TokenValidator resolves bearer tokens to identities.
type TokenValidator struct {
	queries *store.Queries
	tokens  *auth.TokenIssuer
}

// NewTokenValidator creates a TokenValidator over the given store and issuer.
func NewTokenValidator(db store.DBTX, tokens *auth.TokenIssuer) *TokenValidator {
	return &TokenValidator{queries: store.New(db), tokens: tokens}
}

// errAuth carries the status and message to report for a failed validation.
type errAuth struct {
	status  int
	message string
}

func (e *errAuth) Error() string { return e.message }

// Validate parses the Authorization header of r and loads the identity it
// refers to. A nil identity and nil error means no header was sent.
func (tv *TokenValidator) Validate(r *http.Request) (*model.Identity, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, nil
	}

	scheme, raw, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return nil, &errAuth{http.StatusUnauthorized, MsgInvalidAuthFormat}
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, &errAuth{http.StatusUnauthorized, MsgMissingAuth}
	}

	uniquifier, err := tv.tokens.Parse(raw)
	if err != nil {
		slog.Debug("bearer token rejected", "error", err)
		return nil, &errAuth{http.StatusUnauthorized, MsgInvalidToken}
	}

	user, err := tv.queries.GetUserByTokenUniquifier(r.Context(), uniquifier)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &errAuth{http.StatusUnauthorized, MsgInvalidToken}
		}
		return nil, err
	}
	if !user.Active {
		return nil, &errAuth{http.StatusUnauthorized, MsgInactiveAccount}
	}

	roles, err := tv.queries.ListRoleNamesForUser(r.Context(), user.Username)
	if err != nil {
		return nil, err
	}

	return &model.Identity{
		Username: user.Username,
		Email:    user.Email,
		Roles:    roles,
	}, nil
}

// validate runs Validate and writes an error response when required is set.
// The second return value reports whether a response was written.
func (tv *TokenValidator) validate(w http.ResponseWriter, r *http.Request, required bool) (*model.Identity, bool) {
	id, err := tv.Validate(r)
	if err != nil {
		if !required {
			return nil, false
		}
		var ae *errAuth
		if errors.As(err, &ae) {
			WriteMessage(w, ae.status, ae.message)
		} else {
			slog.Error("failed to validate auth token", "error", err)
			WriteMessage(w, http.StatusInternalServerError, "Failed to validate authentication token")
		}
		return nil, true
	}
	if id == nil && required {
		WriteMessage(w, http.StatusUnauthorized, MsgMissingAuth)
		return nil, true
	}
	return id, false
}

// TokenAuth creates middleware that requires a valid bearer token and stores
// the resolved identity in the request context.
func TokenAuth(tv *TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, written := tv.validate(w, r, true)
			if written {
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), *id)))
		})
	}
}

// OptionalTokenAuth creates middleware that adds the identity to context when a
// valid bearer token is sent. Invalid or missing tokens are ignored.
func OptionalTokenAuth(tv *TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, _ := tv.validate(w, r, false)
			if id == nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), *id)))
		})
	}
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id model.Identity) context.Context {
	return context.WithValue(ctx, ContextKeyIdentity, id)
}

// GetIdentity retrieves the authenticated identity from the request context.
// Returns nil if the request is unauthenticated.
func GetIdentity(r *http.Request) *model.Identity {
	id, ok := r.Context().Value(ContextKeyIdentity).(model.Identity)
	if !ok {
		return nil
	}
	return &id
}

// GetUsername returns the authenticated username, or "" if none.
func GetUsername(r *http.Request) string {
	if id := GetIdentity(r); id != nil {
		return id.Username
	}
	return ""
}

// RequireAuth rejects requests without an identity in context with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetIdentity(r) == nil {
			WriteMessage(w, http.StatusUnauthorized, MsgMissingAuth)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole creates middleware that requires the identity to hold role.
// Unauthenticated requests get 401, authenticated ones without the role 403.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := GetIdentity(r)
			if id == nil {
				WriteMessage(w, http.StatusUnauthorized, MsgMissingAuth)
				return
			}

			if !id.HasRole(role) {
				slog.Warn("access denied",
					"status", http.StatusForbidden,
					"method", r.Method,
					"path", r.URL.Path,
					"username", id.Username,
					"roles", id.Roles,
					"required_role", role,
					"remote_addr", r.RemoteAddr,
				)
				WriteMessage(w, http.StatusForbidden, MsgForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin is shorthand for RequireRole(model.RoleAdmin).
func RequireAdmin() func(http.Handler) http.Handler {
	return RequireRole(model.RoleAdmin)
}

// RequestPath creates middleware that stores the request path in the context.
// This is used by the logging handler to include the URL in error logs.
func RequestPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ContextKeyRequestPath, r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestPath retrieves the request path from the context.
func GetRequestPath(ctx context.Context) string {
	path, ok := ctx.Value(ContextKeyRequestPath).(string)
	if !ok {
		return ""
	}
	return path
}
