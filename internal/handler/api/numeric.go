// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// MsgNotNumeric is returned when a numeric field holds something else.
const MsgNotNumeric = "download_price, section_id and rating must be numeric"

var errNotNumeric = errors.New("value is not numeric")

// flexFloat decodes a JSON number or a numeric string. Null and the empty
// string leave it unset.
type flexFloat struct {
	Value float64
	Set   bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *flexFloat) UnmarshalJSON(b []byte) error {
	*f = flexFloat{}
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}

	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		f.Value, f.Set = n, true
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return errNotNumeric
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return errNotNumeric
	}
	f.Value, f.Set = n, true
	return nil
}

// truthy reports whether the value was supplied and is non-zero.
func (f flexFloat) truthy() bool {
	return f.Set && f.Value != 0
}

// flexID is a flexFloat that must hold a whole number.
type flexID struct {
	Value int64
	Set   bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (id *flexID) UnmarshalJSON(b []byte) error {
	*id = flexID{}
	var f flexFloat
	if err := f.UnmarshalJSON(b); err != nil {
		return err
	}
	if !f.Set {
		return nil
	}
	if f.Value != math.Trunc(f.Value) || math.Abs(f.Value) > math.MaxInt64/2 {
		return errNotNumeric
	}
	id.Value, id.Set = int64(f.Value), true
	return nil
}

func (id flexID) truthy() bool {
	return id.Set && id.Value != 0
}
