// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/folio-go/internal/auth"
	"github.com/olegiv/folio-go/internal/backend"
	"github.com/olegiv/folio-go/internal/cache"
	"github.com/olegiv/folio-go/internal/middleware"
	"github.com/olegiv/folio-go/internal/permission"
	"github.com/olegiv/folio-go/internal/render"
	"github.com/olegiv/folio-go/internal/service"
	"github.com/olegiv/folio-go/internal/session"
	"github.com/olegiv/folio-go/internal/store"
)

// testTemplates are minimal page templates that print what the handlers
// put in TemplateData.
var testTemplates = fstest.MapFS{
	"layouts/base.html": {Data: []byte(
		`{{define "base"}}[{{.Title}}]{{if .Flash}} flash={{.Flash}}{{end}} {{template "content" .}}{{end}}`)},
	"layouts/admin.html": {Data: []byte(
		`{{define "content"}}{{template "admin-content" .}}{{end}}`)},
	"public/error.html": {Data: []byte(
		`{{define "content"}}error {{.Data.Status}}: {{.Data.Message}}{{end}}`)},
	"public/contact.html": {Data: []byte(
		`{{define "content"}}contact{{range $k, $v := .Data.Errors}} {{$k}}={{$v}}{{end}}{{end}}`)},
	"public/projects.html": {Data: []byte(
		`{{define "content"}}{{range .Data.Projects}}<{{.Slug}}>{{end}}{{if .Data.Error}} err={{.Data.Error}}{{end}}{{end}}`)},
	"public/project.html": {Data: []byte(
		`{{define "content"}}{{.Data.Project.Title}} og={{.Meta.OGType}} image={{.Meta.OGImage}}{{end}}`)},
	"auth/login.html": {Data: []byte(
		`{{define "content"}}login next={{.Data.Next}}{{end}}`)},
	"admin/events.html": {Data: []byte(
		`{{define "admin-content"}}events={{len .Data.Events}} level={{.Data.Level}} total={{.Data.Pagination.TotalItems}}{{end}}`)},
	"admin/cms_section.html": {Data: []byte(
		`{{define "admin-content"}}section {{.Data.Section.SectionKey}}{{range $k, $v := .Data.Errors}} {{$k}}={{$v}}{{end}}{{end}}`)},
	"admin/projects_form.html": {Data: []byte(
		`{{define "admin-content"}}form{{range $k, $v := .Data.Errors}} {{$k}}={{$v}}{{end}}{{end}}`)},
	"admin/roles.html": {Data: []byte(
		`{{define "admin-content"}}{{range .Data.Roles}}{{.Role}}:{{len .Permissions}};{{end}}{{end}}`)},
	"admin/users_form.html": {Data: []byte(
		`{{define "admin-content"}}user-form role={{.Data.CanChangeRole}}{{range $k, $v := .Data.Errors}} {{$k}}={{$v}}{{end}}{{end}}`)},
}

type testEnv struct {
	deps    Deps
	db      *sql.DB
	backend *httptest.Server
}

// newTestEnv wires handlers against a fake backend served by mux.
func newTestEnv(t *testing.T, mux *http.ServeMux) *testEnv {
	t.Helper()

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	db, err := store.NewDB(filepath.Join(t.TempDir(), "folio.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(db))

	sm := session.New(db, true)
	renderer, err := render.New(render.Config{TemplatesFS: testTemplates, SessionManager: sm})
	require.NoError(t, err)

	mc := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = mc.Close() })

	client := backend.New(srv.URL, 5*time.Second)
	content := cache.NewContent(mc, time.Minute)

	return &testEnv{
		deps: Deps{
			Client:   client,
			Content:  content,
			Renderer: renderer,
			Sources:  service.NewSources(client, content),
			Events:   service.NewEventService(db),
			Sessions: sm,
			SiteURL:  "https://folio.test",
		},
		db:      db,
		backend: srv,
	}
}

// testUser returns a signed-in user holding perms.
func testUser(id int64, role permission.Role, perms ...permission.Permission) *backend.User {
	raw := make([]string, len(perms))
	for i, p := range perms {
		raw[i] = string(p)
	}
	return &backend.User{ID: id, Email: "user@example.com", Name: "Test User", Role: role, IsActive: true, Permissions: raw}
}

// serve routes req through a chi router holding one handler, with the
// session loaded and, when u is set, the user signed in.
func (e *testEnv) serve(method, pattern string, h http.HandlerFunc, req *http.Request, u *backend.User) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Use(e.deps.Sessions.LoadAndSave)
	if u != nil {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				s := auth.NewStore(nil)
				s.Restore(auth.Snapshot{Token: "test-token", User: u, IsAuthenticated: true})
				next.ServeHTTP(w, req.WithContext(middleware.WithAuth(req.Context(), s, e.deps.Client, "en")))
			})
		})
	}
	r.MethodFunc(method, pattern, h)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func formRequest(method, target string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func writeBackendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
