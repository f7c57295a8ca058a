// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"bytes"
	"context"
	"database/sql"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/folio-go/internal/store"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := store.NewDB(filepath.Join(t.TempDir(), "logging.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := store.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

// discardHandler is a slog.Handler that discards all logs.
type discardHandler struct{}

func (h discardHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (h discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h discardHandler) WithGroup(string) slog.Handler             { return h }

func listEvents(t *testing.T, db *sql.DB) []store.Event {
	t.Helper()
	events, err := store.New(db).ListEvents(context.Background(), store.ListEventsParams{Limit: 50})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	return events
}

func TestEventLogHandler_WritesWarnAndAbove(t *testing.T) {
	db := testDB(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, db))

	logger.Info("server started")
	logger.Warn("login failed", "email", "ana@example.com", "user_id", 4)
	logger.Error("backend unreachable", "category", store.EventCategorySystem)

	events := listEvents(t, db)
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}

	byMsg := map[string]store.Event{}
	for _, e := range events {
		byMsg[e.Message] = e
	}

	warn := byMsg["login failed"]
	if warn.Level != store.EventLevelWarning {
		t.Errorf("Level = %q, want %q", warn.Level, store.EventLevelWarning)
	}
	if warn.Category != store.EventCategoryAuth {
		t.Errorf("Category = %q, want %q", warn.Category, store.EventCategoryAuth)
	}
	if !warn.UserID.Valid || warn.UserID.Int64 != 4 {
		t.Errorf("UserID = %v, want 4", warn.UserID)
	}
	if !strings.Contains(warn.Metadata, "ana@example.com") {
		t.Errorf("Metadata = %q, want email", warn.Metadata)
	}

	if byMsg["backend unreachable"].Level != store.EventLevelError {
		t.Errorf("error level not recorded")
	}
}

func TestEventLogHandler_WithAttrsKeepsAttrs(t *testing.T) {
	db := testDB(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, db)).With("category", store.EventCategoryCache)

	logger.Warn("redis unavailable")

	events := listEvents(t, db)
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	if events[0].Category != store.EventCategoryCache {
		t.Errorf("Category = %q, want %q", events[0].Category, store.EventCategoryCache)
	}
}

func TestInferCategory(t *testing.T) {
	tests := []struct {
		msg  string
		want string
	}{
		{"login failed", store.EventCategoryAuth},
		{"session validation failed", store.EventCategoryAuth},
		{"failed to update section", store.EventCategoryCMS},
		{"project fetch failed", store.EventCategoryProject},
		{"settings update failed", store.EventCategorySettings},
		{"user delete failed", store.EventCategoryUser},
		{"cache flush failed", store.EventCategoryCache},
		{"something else", store.EventCategorySystem},
	}
	for _, tt := range tests {
		if got := inferCategory(tt.msg); got != tt.want {
			t.Errorf("inferCategory(%q) = %q, want %q", tt.msg, got, tt.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestContextHandler_AddsRequestAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewContextHandler(NewHandler(&buf, "json", slog.LevelInfo)))

	ctx := context.WithValue(context.Background(), chimw.RequestIDKey, "req-42")
	ctx = WithPath(ctx, "/projects")
	logger.InfoContext(ctx, "rendered page")

	out := buf.String()
	if !strings.Contains(out, `"request_id":"req-42"`) {
		t.Errorf("output missing request_id: %s", out)
	}
	if !strings.Contains(out, `"path":"/projects"`) {
		t.Errorf("output missing path: %s", out)
	}
}

func TestSetup_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(&buf, "text", "debug", nil)
	logger.Debug("hello", "k", "v")

	if !strings.Contains(buf.String(), "msg=hello") {
		t.Errorf("text output = %q", buf.String())
	}
}
