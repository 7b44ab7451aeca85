// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token validation errors.
var (
	ErrTokenMalformed = errors.New("malformed auth token")
	ErrTokenSignature = errors.New("invalid auth token signature")
	ErrTokenExpired   = errors.New("auth token has expired")
)

// DefaultTokenTTL is used when a TokenIssuer is created with a zero TTL.
const DefaultTokenTTL = 24 * time.Hour

const tokenIssuer = "library"

// tokenClaims is the signed payload of a bearer token.
type tokenClaims struct {
	UID string `json:"uid"`
	jwt.RegisteredClaims
}

// TokenIssuer issues and validates HS256 JWT bearer tokens.
// The claims carry the user's token uniquifier, so rotating the uniquifier
// invalidates every token issued before.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates a TokenIssuer signing with secret.
func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL returns the lifetime of issued tokens.
func (ti *TokenIssuer) TTL() time.Duration {
	return ti.ttl
}

// Issue returns a new token for the given token uniquifier.
func (ti *TokenIssuer) Issue(uniquifier string) (string, error) {
	if uniquifier == "" {
		return "", errors.New("empty token uniquifier")
	}

	now := ti.now()
	claims := tokenClaims{
		UID: uniquifier,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ti.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Parse validates token and returns the token uniquifier it was issued for.
func (ti *TokenIssuer) Parse(token string) (string, error) {
	if token == "" {
		return "", ErrTokenMalformed
	}

	var claims tokenClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return ti.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ti.now),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "", ErrTokenSignature
	default:
		return "", ErrTokenMalformed
	}

	if claims.UID == "" {
		return "", ErrTokenMalformed
	}
	return claims.UID, nil
}
