// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/folio-go/internal/backend"
	"github.com/olegiv/folio-go/internal/middleware"
)

func TestLogin_SessionCarriesUserToNextRequest(t *testing.T) {
	var meCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.FormValue("username") != "ana@example.com" {
			writeBackendJSON(w, http.StatusUnauthorized, map[string]string{"detail": "bad credentials"})
			return
		}
		writeBackendJSON(w, http.StatusOK, backend.Token{AccessToken: "tok", TokenType: "bearer"})
	})
	mux.HandleFunc("/api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		meCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer tok" {
			writeBackendJSON(w, http.StatusUnauthorized, map[string]string{"detail": "no token"})
			return
		}
		writeBackendJSON(w, http.StatusOK, backend.User{ID: 7, Email: "ana@example.com", Name: "Ana", Role: "admin", IsActive: true})
	})
	env := newTestEnv(t, mux)
	h := NewAuthHandler(env.deps, nil)

	r := chi.NewRouter()
	r.Use(env.deps.Sessions.LoadAndSave)
	r.Use(middleware.LoadAuth(middleware.AuthConfig{
		Sessions:   env.deps.Sessions,
		Client:     env.deps.Client,
		Revalidate: time.Hour,
	}))
	r.Post(RouteLogin, h.Login)
	r.Get("/whoami", func(w http.ResponseWriter, r *http.Request) {
		if u := middleware.GetUser(r); u != nil {
			_, _ = fmt.Fprint(w, u.Email)
		}
	})

	req := formRequest(http.MethodPost, RouteLogin, url.Values{
		"email":    {"ana@example.com"},
		"password": {"secret"},
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, RouteAdmin, w.Header().Get("Location"))
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies, "login must commit the session")
	assert.Equal(t, int32(1), meCalls.Load())

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ana@example.com", w.Body.String())
	assert.Equal(t, int32(1), meCalls.Load(), "a freshly validated session is trusted")
}
