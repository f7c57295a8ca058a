// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"database/sql"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/folio-go/internal/auth"
	"github.com/olegiv/folio-go/internal/backend"
	"github.com/olegiv/folio-go/internal/store"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := store.NewDB(filepath.Join(t.TempDir(), "session.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := store.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

func loadedContext(t *testing.T, sm *scs.SessionManager) context.Context {
	t.Helper()
	ctx, err := sm.Load(context.Background(), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return ctx
}

func TestNew_DevMode(t *testing.T) {
	sm := New(setupTestDB(t), true)

	if sm.Cookie.Secure {
		t.Error("expected Cookie.Secure = false in dev mode")
	}
	if sm.Cookie.Name != CookieName {
		t.Errorf("Cookie.Name = %q, want %q", sm.Cookie.Name, CookieName)
	}
	if sm.Store == nil {
		t.Error("expected Store to be initialized")
	}
}

func TestNew_ProductionMode(t *testing.T) {
	sm := New(setupTestDB(t), false)

	if !sm.Cookie.Secure {
		t.Error("expected Cookie.Secure = true in production mode")
	}
	if sm.Cookie.Name != HostCookieName {
		t.Errorf("Cookie.Name = %q, want %q", sm.Cookie.Name, HostCookieName)
	}
	if sm.Cookie.Path != "/" {
		t.Errorf("Cookie.Path = %q, want /", sm.Cookie.Path)
	}
	if !sm.Cookie.HttpOnly {
		t.Error("expected Cookie.HttpOnly = true")
	}
	if sm.Cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("SameSite = %v, want Lax", sm.Cookie.SameSite)
	}
}

func TestAuthPersister_RoundTrip(t *testing.T) {
	sm := New(setupTestDB(t), true)
	ctx := loadedContext(t, sm)
	p := NewAuthPersister(sm)

	empty, err := p.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if empty != (auth.Snapshot{}) {
		t.Errorf("Load() on fresh session = %+v, want zero", empty)
	}

	snap := auth.Snapshot{
		Token:           "tok",
		User:            &backend.User{ID: 5, Email: "e@example.com", Role: "admin"},
		IsAuthenticated: true,
	}
	if err := p.Save(ctx, snap); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := p.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Token != "tok" || !got.IsAuthenticated || got.User == nil || got.User.ID != 5 {
		t.Errorf("Load() = %+v", got)
	}
	if !sm.Exists(ctx, auth.StorageKey) {
		t.Errorf("expected %q key in session", auth.StorageKey)
	}
}

func TestAuthPersister_SaveEmptyRemovesKey(t *testing.T) {
	sm := New(setupTestDB(t), true)
	ctx := loadedContext(t, sm)
	p := NewAuthPersister(sm)

	if err := p.Save(ctx, auth.Snapshot{Token: "tok", IsAuthenticated: true}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := p.Save(ctx, auth.Snapshot{}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if sm.Exists(ctx, auth.StorageKey) {
		t.Error("expected snapshot key to be removed")
	}
}

func TestAuthPersister_CorruptSnapshot(t *testing.T) {
	sm := New(setupTestDB(t), true)
	ctx := loadedContext(t, sm)
	sm.Put(ctx, auth.StorageKey, []byte("{not json"))

	if _, err := NewAuthPersister(sm).Load(ctx); err == nil {
		t.Fatal("expected error for corrupt snapshot")
	}
	if sm.Exists(ctx, auth.StorageKey) {
		t.Error("expected corrupt snapshot to be removed")
	}
}

func TestFlash(t *testing.T) {
	sm := New(setupTestDB(t), true)
	ctx := loadedContext(t, sm)

	if msg, _ := PopFlash(ctx, sm); msg != "" {
		t.Errorf("PopFlash() on empty session = %q", msg)
	}

	SetFlash(ctx, sm, "Saved", "success")
	msg, typ := PopFlash(ctx, sm)
	if msg != "Saved" || typ != "success" {
		t.Errorf("PopFlash() = %q, %q", msg, typ)
	}
	if msg, _ := PopFlash(ctx, sm); msg != "" {
		t.Errorf("flash not cleared, got %q", msg)
	}

	sm.Put(ctx, flashKey, "Plain")
	if _, typ := PopFlash(ctx, sm); typ != "info" {
		t.Errorf("default flash type = %q, want info", typ)
	}
}

func TestValidatedAt(t *testing.T) {
	sm := New(setupTestDB(t), true)
	ctx := loadedContext(t, sm)

	if !ValidatedAt(ctx, sm).IsZero() {
		t.Error("expected zero time on fresh session")
	}
	now := time.Now().Truncate(time.Second)
	MarkValidated(ctx, sm, now)
	if got := ValidatedAt(ctx, sm); !got.Equal(now) {
		t.Errorf("ValidatedAt() = %v, want %v", got, now)
	}
}

func TestValidatedAt_SurvivesCommit(t *testing.T) {
	sm := New(setupTestDB(t), true)
	ctx := loadedContext(t, sm)

	now := time.Now().Truncate(time.Second)
	MarkValidated(ctx, sm, now)
	SetFlash(ctx, sm, "Welcome", "success")

	token, _, err := sm.Commit(ctx)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	next, err := sm.Load(context.Background(), token)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := ValidatedAt(next, sm); !got.Equal(now) {
		t.Errorf("ValidatedAt() after reload = %v, want %v", got, now)
	}
}
