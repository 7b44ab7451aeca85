// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/olegiv/library-go/internal/store"
	"github.com/olegiv/library-go/internal/testutil"
)

// redisURL returns LIBRARY_TEST_REDIS_URL or skips the test.
func redisURL(t *testing.T) string {
	t.Helper()
	url := os.Getenv("LIBRARY_TEST_REDIS_URL")
	if url == "" {
		t.Skip("LIBRARY_TEST_REDIS_URL not set")
	}
	return url
}

func newTestRedis(t *testing.T, prefix string) *Redis {
	t.Helper()
	r, err := NewRedis(context.Background(), redisURL(t), prefix, time.Minute)
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	t.Cleanup(func() {
		_ = r.Clear(context.Background())
		_ = r.Close()
	})
	_ = r.Clear(context.Background())
	return r
}

func TestNewRedis_Errors(t *testing.T) {
	ctx := context.Background()

	if _, err := NewRedis(ctx, "", "library:", 0); err == nil {
		t.Error("empty URL should fail")
	}
	if _, err := NewRedis(ctx, "http://localhost:6379", "library:", 0); err == nil {
		t.Error("non-redis scheme should fail")
	}
	if _, err := NewRedis(ctx, "redis://127.0.0.1:1/0", "library:", 0); err == nil {
		t.Error("unreachable server should fail")
	}
}

func TestRedis_GetSetDelete(t *testing.T) {
	r := newTestRedis(t, "library-test:")
	ctx := context.Background()

	if _, err := r.Get(ctx, sectionListKey); !errors.Is(err, ErrMiss) {
		t.Fatalf("Get on empty prefix = %v, want ErrMiss", err)
	}
	if err := r.Set(ctx, sectionListKey, []byte("[]"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := r.Get(ctx, sectionListKey)
	if err != nil || string(got) != "[]" {
		t.Fatalf("Get = %q, %v", got, err)
	}
	if err := r.Delete(ctx, sectionListKey); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := r.Get(ctx, sectionListKey); !errors.Is(err, ErrMiss) {
		t.Errorf("Get after delete = %v, want ErrMiss", err)
	}

	s := r.Stats(ctx)
	if s.Hits != 1 || s.Misses != 2 || s.Writes != 1 {
		t.Errorf("stats = %+v, want 1 hit, 2 misses, 1 write", s)
	}
}

func TestRedis_ClearKeepsOtherPrefixes(t *testing.T) {
	mine := newTestRedis(t, "library-a:")
	other := newTestRedis(t, "library-b:")
	ctx := context.Background()

	for i := range 250 {
		if err := mine.Set(ctx, fmt.Sprintf("book:%d", i), []byte("x"), 0); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}
	if err := other.Set(ctx, sectionListKey, []byte("[]"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if s := mine.Stats(ctx); s.Entries != 250 {
		t.Fatalf("entries = %d, want 250", s.Entries)
	}
	if err := mine.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if s := mine.Stats(ctx); s.Entries != 0 {
		t.Errorf("entries after clear = %d, want 0", s.Entries)
	}
	if _, err := other.Get(ctx, sectionListKey); err != nil {
		t.Errorf("Clear removed another prefix's key: %v", err)
	}
}

func TestRedis_Closed(t *testing.T) {
	r, err := NewRedis(context.Background(), redisURL(t), "library-test:", time.Minute)
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if err := r.Ping(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Ping = %v, want ErrClosed", err)
	}
}

func TestRedis_SectionCache(t *testing.T) {
	r := newTestRedis(t, "library-sections:")
	db := testutil.TestMemoryDB(t)
	testutil.CreateSection(t, db, "Fiction", "Novels")
	ctx := context.Background()

	sections := NewSectionCache(r, store.New(db), time.Minute)
	if _, err := sections.All(ctx); err != nil {
		t.Fatalf("All: %v", err)
	}
	testutil.CreateSection(t, db, "History", "Past events")

	got, err := sections.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Fiction" {
		t.Errorf("cached listing = %+v, want only Fiction", got)
	}

	sections.Invalidate(ctx)
	if got, _ := sections.All(ctx); len(got) != 2 {
		t.Errorf("listing after invalidate has %d sections, want 2", len(got))
	}
}
