// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/folio-go/internal/backend"
	"github.com/olegiv/folio-go/internal/cache"
	"github.com/olegiv/folio-go/internal/i18n"
	"github.com/olegiv/folio-go/internal/middleware"
	"github.com/olegiv/folio-go/internal/permission"
	"github.com/olegiv/folio-go/internal/scheduler"
	"github.com/olegiv/folio-go/internal/store"
	"github.com/olegiv/folio-go/internal/uikit"
)

// recentEventsLimit is the number of events shown on the dashboard.
const recentEventsLimit = 10

// AdminHandler handles the admin dashboard.
type AdminHandler struct {
	Deps
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(d Deps) *AdminHandler {
	return &AdminHandler{Deps: d}
}

// DashboardData is the Data of the dashboard.
type DashboardData struct {
	ProjectStats *backend.ProjectStats
	CMSStats     *backend.CMSStats
	RecentEvents []store.Event
	CacheStats   *cache.Stats
	Jobs         []scheduler.JobInfo
	Errors       []string
}

// Dashboard handles GET /admin. Each panel is loaded only when the user
// may see it; a failing panel is reported without failing the page.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lang := middleware.GetLang(r)
	checker := middleware.GetChecker(r)

	var data DashboardData

	if checker.HasPermission(permission.ReadProject) {
		ps := h.projects(r)
		if st, err := ps.FetchStats(ctx); err != nil {
			slog.WarnContext(ctx, "dashboard project stats failed", "category", store.EventCategoryProject, "error", err)
			data.Errors = append(data.Errors, ps.Error())
		} else {
			data.ProjectStats = st
		}
	}

	if checker.HasPermission(permission.ReadContent) {
		cs := h.cms(r)
		if st, err := cs.FetchStats(ctx); err != nil {
			slog.WarnContext(ctx, "dashboard cms stats failed", "category", store.EventCategoryCMS, "error", err)
			data.Errors = append(data.Errors, cs.Error())
		} else {
			data.CMSStats = st
		}
	}

	if checker.HasPermission(permission.ViewAnalytics) && h.Events != nil {
		page, err := h.Events.List(ctx, "", "", 1, recentEventsLimit)
		if err != nil {
			slog.ErrorContext(ctx, "dashboard events failed", "error", err)
			data.Errors = append(data.Errors, i18n.T(lang, "events.fetch_failed"))
		} else {
			data.RecentEvents = page.Events
		}
	}

	if checker.HasPermission(permission.ManageSettings) && h.Content != nil {
		if st, ok := h.Content.Stats(); ok {
			data.CacheStats = &st
		}
	}
	if checker.HasPermission(permission.ManageSettings) && h.Jobs != nil {
		data.Jobs = h.Jobs.Jobs()
	}

	td := pageData(i18n.T(lang, "nav.dashboard"), data)
	td.Breadcrumbs = uikit.Crumbs(i18n.T(lang, "nav.dashboard"), RouteAdmin)
	renderPage(w, r, h.Renderer, "admin/dashboard", td)
}

// ClearCache handles POST /admin/cache/clear.
func (h *AdminHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)
	if h.Content != nil {
		if err := h.Content.InvalidateAll(r.Context()); err != nil {
			slog.ErrorContext(r.Context(), "clearing cache failed", "category", store.EventCategoryCache, "error", err)
			flashError(w, r, h.Renderer, RouteAdmin, i18n.T(lang, "cache.clear_failed"))
			return
		}
	}
	h.logEvent(r, store.EventLevelInfo, store.EventCategoryCache, "cache cleared", nil)
	flashSuccess(w, r, h.Renderer, RouteAdmin, i18n.T(lang, "cache.cleared"))
}

// RunJob handles POST /admin/jobs/{name}/run.
func (h *AdminHandler) RunJob(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)
	name := chi.URLParam(r, ParamName)
	if h.Jobs == nil {
		flashError(w, r, h.Renderer, RouteAdmin, i18n.T(lang, "jobs.not_found"))
		return
	}

	err := h.Jobs.Trigger(name)
	switch {
	case err == nil:
		h.logEvent(r, store.EventLevelInfo, store.EventCategorySystem, "job triggered", map[string]any{"job": name})
		flashSuccess(w, r, h.Renderer, RouteAdmin, i18n.T(lang, "jobs.triggered", name))
	case errors.Is(err, scheduler.ErrJobNotFound):
		flashError(w, r, h.Renderer, RouteAdmin, i18n.T(lang, "jobs.not_found"))
	case errors.Is(err, scheduler.ErrJobThrottled), errors.Is(err, scheduler.ErrJobInProgress):
		flashAndRedirect(w, r, h.Renderer, RouteAdmin, i18n.T(lang, "jobs.busy"), flashTypeWarning)
	default:
		flashError(w, r, h.Renderer, RouteAdmin, i18n.T(lang, "jobs.failed", err.Error()))
	}
}
