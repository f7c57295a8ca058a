// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/folio-go/internal/backend"
	"github.com/olegiv/folio-go/internal/cache"
	"github.com/olegiv/folio-go/internal/i18n"
	"github.com/olegiv/folio-go/internal/store"
)

func newBackend(t *testing.T, mux *http.ServeMux) *backend.Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return backend.New(srv.URL, 0)
}

func newContent(t *testing.T) *cache.Content {
	t.Helper()
	mc := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = mc.Close() })
	return cache.NewContent(mc, time.Minute)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestProjectStore_FetchFeaturedIsCachedForAnonymous(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/projects/featured", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "3", r.URL.Query().Get("limit"))
		writeJSON(w, []backend.Project{{ID: 1, Title: "One", IsFeatured: true}})
	})
	client := newBackend(t, mux)
	content := newContent(t)

	for range 2 {
		s := NewProjectStore(client, content, "en")
		got, err := s.FetchFeatured(context.Background(), 3)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "One", s.Featured()[0].Title)
		assert.False(t, s.IsLoading())
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestProjectStore_AuthenticatedReadsBypassCache(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/projects/", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "true", r.URL.Query().Get("include_unpublished"))
		writeJSON(w, []backend.Project{{ID: 1}, {ID: 2}})
	})
	client := newBackend(t, mux).WithToken("tok")
	content := newContent(t)

	for range 2 {
		s := NewProjectStore(client, content, "en")
		_, err := s.FetchProjects(context.Background(), backend.ProjectQuery{IncludeUnpublished: true})
		require.NoError(t, err)
		assert.Len(t, s.Projects(), 2)
	}
	assert.Equal(t, int32(2), calls.Load())
}

func TestProjectStore_FetchProjectNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/projects/missing", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"detail":"Project not found"}`)
	})
	s := NewProjectStore(newBackend(t, mux), nil, "en")

	p, err := s.FetchProject(context.Background(), "missing")

	require.Error(t, err)
	assert.True(t, backend.IsNotFound(err))
	assert.Nil(t, p)
	assert.Nil(t, s.Current())
	assert.Equal(t, "Project not found", s.Error())
}

func TestProjectStore_TransportErrorUsesLocalizedFallback(t *testing.T) {
	client := backend.New("http://127.0.0.1:1", time.Second)
	s := NewProjectStore(client, nil, "en")

	_, err := s.FetchStats(context.Background())

	require.Error(t, err)
	assert.Equal(t, i18n.T("en", "projects.stats_failed"), s.Error())

	s.ClearError()
	assert.Empty(t, s.Error())
}

func TestProjectStore_WritesInvalidateCache(t *testing.T) {
	var featuredCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/projects/featured", func(w http.ResponseWriter, _ *http.Request) {
		featuredCalls.Add(1)
		writeJSON(w, []backend.Project{{ID: 1}})
	})
	mux.HandleFunc("/api/v1/projects/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var in backend.ProjectInput
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		writeJSON(w, backend.Project{ID: 9, Title: in.Title, Slug: in.Slug})
	})
	mux.HandleFunc("/api/v1/projects/9", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			writeJSON(w, backend.Project{ID: 9, Title: "Renamed"})
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	})
	base := newBackend(t, mux)
	content := newContent(t)
	ctx := context.Background()

	_, err := NewProjectStore(base, content, "en").FetchFeatured(ctx, 6)
	require.NoError(t, err)

	admin := NewProjectStore(base.WithToken("tok"), content, "en")
	p, err := admin.Create(ctx, backend.ProjectInput{Title: "New", Slug: "new"})
	require.NoError(t, err)
	assert.Equal(t, int64(9), p.ID)
	assert.Equal(t, int64(9), admin.Projects()[0].ID)

	_, err = NewProjectStore(base, content, "en").FetchFeatured(ctx, 6)
	require.NoError(t, err)
	assert.Equal(t, int32(2), featuredCalls.Load())

	updated, err := admin.Update(ctx, 9, backend.ProjectInput{Title: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, "Renamed", admin.Projects()[0].Title)

	require.NoError(t, admin.Delete(ctx, 9))
	assert.Empty(t, admin.Projects())
}

func TestSettingsStore(t *testing.T) {
	var publicCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/settings/public", func(w http.ResponseWriter, _ *http.Request) {
		publicCalls.Add(1)
		writeJSON(w, backend.Settings{SiteName: "Folio"})
	})
	mux.HandleFunc("/api/v1/settings/", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			var in map[string]any
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			assert.Equal(t, map[string]any{"site_name": "Renamed"}, in)
			writeJSON(w, backend.Settings{SiteName: "Renamed"})
		default:
			writeJSON(w, backend.Settings{SiteName: "Folio", GoogleAnalyticsID: "G-1"})
		}
	})
	mux.HandleFunc("/api/v1/settings/reset", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"detail":"Not enough permissions"}`)
	})
	client := newBackend(t, mux)
	content := newContent(t)
	ctx := context.Background()

	s := NewSettingsStore(client, content, "es")
	_, err := s.FetchPublic(ctx)
	require.NoError(t, err)
	_, err = s.FetchPublic(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), publicCalls.Load())

	admin := NewSettingsStore(client.WithToken("tok"), content, "es")
	full, err := admin.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "G-1", full.GoogleAnalyticsID)

	name := "Renamed"
	_, err = admin.Update(ctx, backend.SettingsUpdate{SiteName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", admin.Settings().SiteName)

	_, err = s.FetchPublic(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), publicCalls.Load())

	_, err = admin.Reset(ctx)
	require.Error(t, err)
	assert.True(t, backend.IsForbidden(err))
	assert.Equal(t, "Not enough permissions", admin.Error())
	assert.Equal(t, "Renamed", admin.Settings().SiteName)
}

func TestUserStore(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/users/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			writeJSON(w, backend.User{ID: 3, Email: "new@example.com"})
			return
		}
		writeJSON(w, []backend.User{{ID: 1, Email: "a@example.com"}, {ID: 2, Email: "b@example.com"}})
	})
	mux.HandleFunc("/api/v1/users/2", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			writeJSON(w, backend.User{ID: 2, Email: "b@example.com", Name: "Bea"})
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			writeJSON(w, backend.User{ID: 2, Email: "b@example.com"})
		}
	})
	mux.HandleFunc("/api/v1/users/roles/available", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, []backend.RoleInfo{{Name: "Admin", Value: "admin", Permissions: []string{"manage_users"}}})
	})
	s := NewUserStore(newBackend(t, mux).WithToken("tok"), "en")
	ctx := context.Background()

	_, err := s.FetchUsers(ctx, 0, 50)
	require.NoError(t, err)
	assert.Len(t, s.Users(), 2)

	_, err = s.FetchUser(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), s.Current().ID)

	name := "Bea"
	_, err = s.Update(ctx, 2, backend.UserUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Bea", s.Current().Name)
	assert.Equal(t, "Bea", s.Users()[1].Name)

	_, err = s.Create(ctx, backend.UserCreate{Email: "new@example.com", Password: "pw", Role: "viewer"})
	require.NoError(t, err)
	assert.Len(t, s.Users(), 3)

	require.NoError(t, s.Delete(ctx, 2))
	assert.Len(t, s.Users(), 2)
	assert.Nil(t, s.Current())

	roles, err := s.FetchRoles(ctx)
	require.NoError(t, err)
	assert.Equal(t, "admin", roles[0].Value)
	assert.Len(t, s.Roles(), 1)
}

func TestCVService_DownloadURL(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		status  int
		want    string
		wantErr bool
	}{
		{"relative", `{"download_url":"/static/cv/cv.pdf"}`, http.StatusOK, "/static/cv/cv.pdf", false},
		{"absolute", `{"download_url":"https://cdn.example.com/cv.pdf"}`, http.StatusOK, "https://cdn.example.com/cv.pdf", false},
		{"empty", `{"download_url":""}`, http.StatusOK, "", true},
		{"backend error", `{"detail":"CV not found"}`, http.StatusNotFound, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/api/v1/cv/download", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			client := newBackend(t, mux)

			got, err := NewCVService(client).DownloadURL(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, client.ResolveURL(tt.want), got)
		})
	}
}

func TestSources(t *testing.T) {
	var pageCalls, sectionCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/cms/pages/home/public", func(w http.ResponseWriter, _ *http.Request) {
		pageCalls.Add(1)
		writeJSON(w, backend.PublicPage{PageKey: "home", Sections: []backend.PublicSection{
			{SectionKey: "hero", Content: map[string]any{"title": "Hola"}},
		}})
	})
	mux.HandleFunc("/api/v1/cms/pages/home/sections", func(w http.ResponseWriter, r *http.Request) {
		sectionCalls.Add(1)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		writeJSON(w, []backend.Section{{SectionKey: "hero", IsActive: false}})
	})
	mux.HandleFunc("/api/v1/settings/public", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, backend.Settings{SiteName: "Folio"})
	})
	client := newBackend(t, mux)
	src := NewSources(client, newContent(t))
	ctx := context.Background()

	sec, err := src.PublicSection(ctx, "home", "hero")
	require.NoError(t, err)
	assert.Equal(t, "Hola", sec.Content["title"])

	_, err = src.PublicSection(ctx, "home", "missing")
	assert.True(t, backend.IsNotFound(err))
	assert.Equal(t, int32(1), pageCalls.Load())

	authed := backend.NewContext(ctx, client.WithToken("tok"))
	sections, err := src.PageSections(authed, "home", false)
	require.NoError(t, err)
	assert.Len(t, sections, 1)
	assert.Equal(t, int32(1), sectionCalls.Load())

	require.NoError(t, src.Warm(ctx, []string{"home"}))
	assert.Equal(t, int32(2), pageCalls.Load())
}

func TestEventService(t *testing.T) {
	db, err := store.NewDB(filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(db))

	svc := NewEventService(db)
	ctx := context.Background()
	uid := int64(4)

	require.NoError(t, svc.LogInfo(ctx, store.EventCategoryAuth, "login succeeded", &uid, "10.0.0.1", map[string]any{"email": "a@example.com"}))
	require.NoError(t, svc.LogWarning(ctx, store.EventCategoryAuth, "login failed", nil, "10.0.0.2", nil))
	require.NoError(t, svc.LogError(ctx, store.EventCategoryCMS, "section update failed", &uid, "", nil))
	require.NoError(t, svc.Log(ctx, Event{Message: "defaults"}))

	all, err := svc.List(ctx, "", "", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(4), all.Total)
	assert.Len(t, all.Events, 2)
	assert.Equal(t, 2, all.TotalPages())

	authEvents, err := svc.List(ctx, "", store.EventCategoryAuth, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), authEvents.Total)
	assert.Equal(t, 1, authEvents.Page)

	defaults, err := svc.List(ctx, store.EventLevelInfo, store.EventCategorySystem, 1, 10)
	require.NoError(t, err)
	require.Len(t, defaults.Events, 1)
	assert.Equal(t, "defaults", defaults.Events[0].Message)

	n, err := svc.DeleteOldEvents(ctx, -time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestCMSStore_WritesInvalidatePage(t *testing.T) {
	var pageCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/cms/pages/about/public", func(w http.ResponseWriter, _ *http.Request) {
		pageCalls.Add(1)
		writeJSON(w, backend.PublicPage{PageKey: "about"})
	})
	mux.HandleFunc("/api/v1/cms/sections/about/bio", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			writeJSON(w, backend.Section{PageKey: "about", SectionKey: "bio", Title: "Bio"})
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	})
	mux.HandleFunc("/api/v1/cms/sections/about/bio/reorder", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"direction":"up"}`, string(body))
		writeJSON(w, backend.Section{PageKey: "about", SectionKey: "bio"})
	})
	client := newBackend(t, mux)
	content := newContent(t)
	src := NewSources(client, content)
	ctx := context.Background()

	load := func() {
		_, err := src.PublicPage(ctx, "about")
		require.NoError(t, err)
	}
	load()
	load()
	assert.Equal(t, int32(1), pageCalls.Load())

	s := NewCMSStore(client, content, "en")
	title := "Bio"
	sec, err := s.Update(ctx, "about", "bio", backend.SectionUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Bio", sec.Title)
	load()
	assert.Equal(t, int32(2), pageCalls.Load())

	require.NoError(t, s.Reorder(ctx, "about", "bio", backend.DirectionUp))
	load()
	assert.Equal(t, int32(3), pageCalls.Load())

	require.NoError(t, s.Delete(ctx, "about", "bio"))
	load()
	assert.Equal(t, int32(4), pageCalls.Load())
}

func TestCMSStore_FailureKeepsMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/cms/pages", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"detail":"Not enough permissions"}`))
	})
	s := NewCMSStore(newBackend(t, mux), nil, "en")

	_, err := s.FetchPages(context.Background())
	require.Error(t, err)
	assert.True(t, backend.IsForbidden(err))
	assert.Equal(t, "Not enough permissions", s.Error())
	assert.Nil(t, s.Pages())
}
