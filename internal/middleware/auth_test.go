// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/folio-go/internal/auth"
	"github.com/olegiv/folio-go/internal/backend"
	"github.com/olegiv/folio-go/internal/i18n"
	"github.com/olegiv/folio-go/internal/permission"
	"github.com/olegiv/folio-go/internal/session"
	"github.com/olegiv/folio-go/internal/store"
)

// authHarness serves a session-backed app whose /seed route signs the
// session in with a token and whose /inspect route reports what LoadAuth
// restored.
type authHarness struct {
	sm      *scs.SessionManager
	app     http.Handler
	meCalls int

	user    *backend.User
	flash   string
	client  string
	checker permission.Checker
}

func newAuthHarness(t *testing.T, revalidate time.Duration) *authHarness {
	t.Helper()

	db, err := store.NewDB(filepath.Join(t.TempDir(), "mw.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(db))

	h := &authHarness{sm: session.New(db, true)}

	api := http.NewServeMux()
	api.HandleFunc("GET /api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		h.meCalls++
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Could not validate credentials"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(editor())
	})
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	client := backend.New(srv.URL, time.Second)

	mux := http.NewServeMux()
	mux.HandleFunc("/seed", func(w http.ResponseWriter, r *http.Request) {
		snap := auth.Snapshot{Token: r.URL.Query().Get("token"), User: editor(), IsAuthenticated: true}
		require.NoError(t, session.NewAuthPersister(h.sm).Save(r.Context(), snap))
		if r.URL.Query().Get("fresh") == "1" {
			session.MarkValidated(r.Context(), h.sm, time.Now())
		}
	})
	mux.HandleFunc("/inspect", func(w http.ResponseWriter, r *http.Request) {
		h.user = GetUser(r)
		h.checker = GetChecker(r)
		h.client = GetClient(r, nil).Token()
		h.flash, _ = session.PopFlash(r.Context(), h.sm)
	})

	h.app = h.sm.LoadAndSave(LoadAuth(AuthConfig{
		Sessions:   h.sm,
		Client:     client,
		Revalidate: revalidate,
	})(mux))
	return h
}

// do sends a GET to target with cookies and returns the response cookies.
func (h *authHarness) do(target string, cookies []*http.Cookie) []*http.Cookie {
	return h.doCtx(context.Background(), target, cookies)
}

func (h *authHarness) doCtx(ctx context.Context, target string, cookies []*http.Cookie) []*http.Cookie {
	req := httptest.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	h.app.ServeHTTP(rr, req)
	if got := rr.Result().Cookies(); len(got) > 0 {
		return got
	}
	return cookies
}

func TestLoadAuth_Anonymous(t *testing.T) {
	h := newAuthHarness(t, time.Minute)

	h.do("/inspect", nil)

	assert.Nil(t, h.user)
	assert.Empty(t, h.client)
	assert.False(t, h.checker.HasPermission(permission.ReadContent))
	assert.Zero(t, h.meCalls)
}

func TestLoadAuth_FreshSessionSkipsBackend(t *testing.T) {
	h := newAuthHarness(t, time.Hour)

	cookies := h.do("/seed?token=good&fresh=1", nil)
	h.do("/inspect", cookies)

	require.NotNil(t, h.user)
	assert.Equal(t, "editor@example.com", h.user.Email)
	assert.Equal(t, "good", h.client)
	assert.True(t, h.checker.HasPermission(permission.UpdateContent))
	assert.Zero(t, h.meCalls)
}

func TestLoadAuth_RevalidatesStaleSession(t *testing.T) {
	h := newAuthHarness(t, time.Hour)

	cookies := h.do("/seed?token=good", nil)
	cookies = h.do("/inspect", cookies)
	require.NotNil(t, h.user)
	assert.Equal(t, 1, h.meCalls)

	// Validation was recorded, so the next request trusts the session.
	h.do("/inspect", cookies)
	require.NotNil(t, h.user)
	assert.Equal(t, 1, h.meCalls)
}

func TestLoadAuth_CancelledValidationIsNotRecorded(t *testing.T) {
	h := newAuthHarness(t, time.Hour)
	cookies := h.do("/seed?token=good", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h.doCtx(ctx, "/inspect", cookies)

	// The backend never answered: the session stays signed in but unchecked.
	require.NotNil(t, h.user)
	assert.Zero(t, h.meCalls)

	h.do("/inspect", cookies)
	require.NotNil(t, h.user)
	assert.Equal(t, 1, h.meCalls)
}

func TestLoadAuth_RejectedTokenSignsOut(t *testing.T) {
	h := newAuthHarness(t, time.Hour)

	cookies := h.do("/seed?token=revoked", nil)
	cookies = h.do("/inspect", cookies)

	assert.Nil(t, h.user)
	assert.Empty(t, h.client)
	assert.Equal(t, i18n.T("es", "auth.session_expired"), h.flash)
	assert.Equal(t, 1, h.meCalls)

	h.do("/inspect", cookies)
	assert.Nil(t, h.user)
	assert.Empty(t, h.flash)
	assert.Equal(t, 1, h.meCalls)
}
