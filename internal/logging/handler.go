// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a slog handler that mirrors warnings and errors
// into the events audit table.
package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/olegiv/library-go/internal/middleware"
	"github.com/olegiv/library-go/internal/model"
	"github.com/olegiv/library-go/internal/store"
)

// EventLogHandler is a slog.Handler that wraps another handler and also writes
// WARN and ERROR level logs to the events table.
type EventLogHandler struct {
	inner   slog.Handler
	queries *store.Queries
	level   slog.Level // Minimum level to forward to the events table (default: WARN)
	attrs   []slog.Attr
}

// NewEventLogHandler creates a new EventLogHandler that wraps the given handler.
func NewEventLogHandler(inner slog.Handler, db *sql.DB) *EventLogHandler {
	return NewEventLogHandlerWithLevel(inner, db, slog.LevelWarn)
}

// NewEventLogHandlerWithLevel creates a new EventLogHandler with a custom minimum level.
func NewEventLogHandlerWithLevel(inner slog.Handler, db *sql.DB, level slog.Level) *EventLogHandler {
	return &EventLogHandler{
		inner:   inner,
		queries: store.New(db),
		level:   level,
	}
}

// Enabled implements slog.Handler.
func (h *EventLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *EventLogHandler) Handle(ctx context.Context, r slog.Record) error {
	// Always forward to the inner handler first
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}

	if r.Level >= h.level {
		h.writeToEventLog(ctx, r)
	}

	return nil
}

// WithAttrs implements slog.Handler.
func (h *EventLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.inner = h.inner.WithAttrs(attrs)
	c.attrs = append(slices.Clip(h.attrs), attrs...)
	return &c
}

// WithGroup implements slog.Handler. Groups only affect the wrapped handler;
// event metadata stays flat.
func (h *EventLogHandler) WithGroup(name string) slog.Handler {
	c := *h
	c.inner = h.inner.WithGroup(name)
	return &c
}

// writeToEventLog stores r as an event. It uses a background context so the
// row is written even when the request has been cancelled.
func (h *EventLogHandler) writeToEventLog(ctx context.Context, r slog.Record) {
	attrs := slices.Clip(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})
	if path := middleware.GetRequestPath(ctx); path != "" {
		attrs = append(attrs, slog.String("url", path))
	}

	at := r.Time
	if at.IsZero() {
		at = time.Now()
	}
	_, _ = h.queries.CreateEvent(context.Background(), store.CreateEventParams{
		Level:     slogLevelToEventLevel(r.Level),
		Category:  eventCategory(r.Message, attrs),
		Message:   r.Message,
		Metadata:  eventMetadata(attrs),
		CreatedAt: at.UTC(),
	})
}

// slogLevelToEventLevel converts a slog.Level to an event level.
func slogLevelToEventLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return model.EventLevelError
	case level >= slog.LevelWarn:
		return model.EventLevelWarn
	case level >= slog.LevelInfo:
		return model.EventLevelInfo
	default:
		return model.EventLevelDebug
	}
}

// categoryKeywords maps message keywords to event categories, first match wins.
var categoryKeywords = []struct {
	category string
	words    []string
}{
	{model.EventCategoryAuth, []string{"auth", "login", "logout", "register", "access denied"}},
	{model.EventCategorySection, []string{"section"}},
	{model.EventCategoryBook, []string{"book", "rating"}},
	{model.EventCategoryRequest, []string{"request", "overdue", "lending"}},
	{model.EventCategoryCache, []string{"cache"}},
}

// eventCategory returns the "category" attribute or infers one from the message.
func eventCategory(message string, attrs []slog.Attr) string {
	for _, a := range attrs {
		if a.Key == "category" {
			return a.Value.String()
		}
	}

	msg := strings.ToLower(message)
	for _, c := range categoryKeywords {
		for _, w := range c.words {
			if strings.Contains(msg, w) {
				return c.category
			}
		}
	}
	return model.EventCategorySystem
}

// eventMetadata encodes attributes other than "category" as a flat JSON object.
func eventMetadata(attrs []slog.Attr) string {
	fields := make(map[string]string, len(attrs))
	for _, a := range attrs {
		if a.Key == "category" {
			continue
		}
		v := a.Value.Resolve()
		if err, ok := v.Any().(error); ok && v.Kind() == slog.KindAny {
			fields[a.Key] = err.Error()
			continue
		}
		fields[a.Key] = v.String()
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return "{}"
	}
	return string(data)
}
