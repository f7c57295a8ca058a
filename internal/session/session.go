// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session configures browser sessions and persists the login
// state in them.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/folio-go/internal/auth"
)

// CookieName is the session cookie name. Production uses the __Host-
// prefix, which pins the cookie to the exact host over HTTPS.
const (
	CookieName     = "folio_session"
	HostCookieName = "__Host-folio_session"
)

// New creates a session manager backed by the SQLite sessions table.
func New(db *sql.DB, isDev bool) *scs.SessionManager {
	sm := scs.New()
	sm.Store = sqlite3store.New(db)

	sm.Lifetime = 7 * 24 * time.Hour
	sm.IdleTimeout = 24 * time.Hour
	sm.Cookie.Name = CookieName
	sm.Cookie.Path = "/"
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev
	if !isDev {
		sm.Cookie.Name = HostCookieName
	}

	return sm
}

// AuthPersister stores auth snapshots as JSON in the session under
// auth.StorageKey. The context must carry a loaded session.
type AuthPersister struct {
	sm *scs.SessionManager
}

// NewAuthPersister returns a persister over sm.
func NewAuthPersister(sm *scs.SessionManager) *AuthPersister {
	return &AuthPersister{sm: sm}
}

// Load implements auth.Persister. A session without a snapshot yields the
// zero snapshot.
func (p *AuthPersister) Load(ctx context.Context) (auth.Snapshot, error) {
	var snap auth.Snapshot
	data := p.sm.GetBytes(ctx, auth.StorageKey)
	if len(data) == 0 {
		return snap, nil
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		p.sm.Remove(ctx, auth.StorageKey)
		return auth.Snapshot{}, fmt.Errorf("decoding auth snapshot: %w", err)
	}
	return snap, nil
}

// Save implements auth.Persister. The session token is renewed whenever the
// signed-in identity changes.
func (p *AuthPersister) Save(ctx context.Context, snap auth.Snapshot) error {
	prev, _ := p.Load(ctx)
	if prev.Token != snap.Token {
		if err := p.sm.RenewToken(ctx); err != nil {
			return fmt.Errorf("renewing session token: %w", err)
		}
	}

	if snap.Token == "" && snap.User == nil && !snap.IsAuthenticated {
		p.sm.Remove(ctx, auth.StorageKey)
		return nil
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding auth snapshot: %w", err)
	}
	p.sm.Put(ctx, auth.StorageKey, data)
	return nil
}

// validatedAtKey holds Unix seconds. The session codec is gob, which only
// encodes registered interface types, and int64 is one of them.
const validatedAtKey = "auth-validated-at"

// ValidatedAt returns when the session's login was last checked against
// the backend, or the zero time.
func ValidatedAt(ctx context.Context, sm *scs.SessionManager) time.Time {
	sec := sm.GetInt64(ctx, validatedAtKey)
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0)
}

// MarkValidated records a successful validation.
func MarkValidated(ctx context.Context, sm *scs.SessionManager, at time.Time) {
	sm.Put(ctx, validatedAtKey, at.Unix())
}

// Flash keys.
const (
	flashKey     = "flash"
	flashTypeKey = "flash_type"
)

// SetFlash queues a one-shot notification for the next rendered page.
func SetFlash(ctx context.Context, sm *scs.SessionManager, message, flashType string) {
	sm.Put(ctx, flashKey, message)
	sm.Put(ctx, flashTypeKey, flashType)
}

// PopFlash returns and clears the queued notification. flashType defaults
// to "info".
func PopFlash(ctx context.Context, sm *scs.SessionManager) (message, flashType string) {
	message = sm.PopString(ctx, flashKey)
	if message == "" {
		return "", ""
	}
	flashType = sm.PopString(ctx, flashTypeKey)
	if flashType == "" {
		flashType = "info"
	}
	return message, flashType
}
