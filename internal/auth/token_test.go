// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("0123456789abcdefghijABCDEFGHIJ!@")

func TestTokenIssuer_RoundTrip(t *testing.T) {
	ti := NewTokenIssuer(testSecret, time.Hour)

	token, err := ti.Issue("uniq-123")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Fatalf("token %q should have three segments", token)
	}

	uid, err := ti.Parse(token)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if uid != "uniq-123" {
		t.Errorf("uid = %q, want %q", uid, "uniq-123")
	}
}

func TestTokenIssuer_Expired(t *testing.T) {
	ti := NewTokenIssuer(testSecret, time.Minute)
	issuedAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	ti.now = func() time.Time { return issuedAt }

	token, err := ti.Issue("uniq")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	ti.now = func() time.Time { return issuedAt.Add(2 * time.Minute) }
	if _, err := ti.Parse(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Parse error = %v, want ErrTokenExpired", err)
	}
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	token, err := NewTokenIssuer(testSecret, time.Hour).Issue("uniq")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	other := NewTokenIssuer([]byte("another-secret-another-secret-xx"), time.Hour)
	if _, err := other.Parse(token); !errors.Is(err, ErrTokenSignature) {
		t.Errorf("Parse error = %v, want ErrTokenSignature", err)
	}
}

func TestTokenIssuer_Tampered(t *testing.T) {
	ti := NewTokenIssuer(testSecret, time.Hour)
	token, err := ti.Issue("uniq")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	parts := strings.Split(token, ".")
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"uid":"someone-else","iss":"library","exp":4102444800}`))
	forged := parts[0] + "." + payload + "." + parts[2]
	if _, err := ti.Parse(forged); !errors.Is(err, ErrTokenSignature) {
		t.Errorf("Parse error = %v, want ErrTokenSignature", err)
	}
}

func TestTokenIssuer_RejectsUnsignedToken(t *testing.T) {
	ti := NewTokenIssuer(testSecret, time.Hour)
	claims := tokenClaims{
		UID: "uniq",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("SignedString error: %v", err)
	}

	if _, err := ti.Parse(token); err == nil {
		t.Error("Parse should reject a token signed with alg none")
	}
}

func TestTokenIssuer_MissingUID(t *testing.T) {
	ti := NewTokenIssuer(testSecret, time.Hour)
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("SignedString error: %v", err)
	}

	if _, err := ti.Parse(token); !errors.Is(err, ErrTokenMalformed) {
		t.Errorf("Parse error = %v, want ErrTokenMalformed", err)
	}
}

func TestTokenIssuer_Malformed(t *testing.T) {
	ti := NewTokenIssuer(testSecret, time.Hour)
	for _, token := range []string{"", "abc", ".", "abc.", ".abc", "a.b.c"} {
		if _, err := ti.Parse(token); !errors.Is(err, ErrTokenMalformed) {
			t.Errorf("Parse(%q) error = %v, want ErrTokenMalformed", token, err)
		}
	}
}

func TestTokenIssuer_EmptyUniquifier(t *testing.T) {
	if _, err := NewTokenIssuer(testSecret, time.Hour).Issue(""); err == nil {
		t.Error("Issue(\"\") should fail")
	}
}

func TestNewTokenIssuer_DefaultTTL(t *testing.T) {
	if ttl := NewTokenIssuer(testSecret, 0).TTL(); ttl != DefaultTokenTTL {
		t.Errorf("TTL() = %v, want %v", ttl, DefaultTokenTTL)
	}
}
