// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/olegiv/folio-go/internal/i18n"
	"github.com/olegiv/folio-go/internal/middleware"
	"github.com/olegiv/folio-go/internal/store"
	"github.com/olegiv/folio-go/internal/uikit"
)

// Filter values of the event log page.
var (
	EventLevels     = []string{store.EventLevelInfo, store.EventLevelWarning, store.EventLevelError}
	EventCategories = []string{
		store.EventCategoryAuth,
		store.EventCategoryCMS,
		store.EventCategoryProject,
		store.EventCategorySettings,
		store.EventCategoryUser,
		store.EventCategoryCache,
		store.EventCategorySystem,
	}
)

// EventsHandler handles the event log page.
type EventsHandler struct {
	Deps
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(d Deps) *EventsHandler {
	return &EventsHandler{Deps: d}
}

// EventsListData is the Data of the event log page.
type EventsListData struct {
	Events     []store.Event
	Level      string
	Category   string
	Levels     []string
	Categories []string
	Pagination uikit.Pagination
}

// List handles GET /admin/events.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)

	level := r.URL.Query().Get("level")
	if !slices.Contains(EventLevels, level) {
		level = ""
	}
	category := r.URL.Query().Get("category")
	if !slices.Contains(EventCategories, category) {
		category = ""
	}
	page := uikit.ParsePageParam(r)

	result, err := h.Events.List(r.Context(), level, category, page, EventsPerPage)
	if err != nil {
		slog.ErrorContext(r.Context(), "listing events failed", "error", err)
		h.Renderer.RenderError(w, r, http.StatusInternalServerError, i18n.T(lang, "events.fetch_failed"))
		return
	}

	td := pageData(i18n.T(lang, "nav.events"), EventsListData{
		Events:     result.Events,
		Level:      level,
		Category:   category,
		Levels:     EventLevels,
		Categories: EventCategories,
		Pagination: uikit.BuildPagination(page, int(result.Total), EventsPerPage, RouteAdminEvents, r.URL.Query()),
	})
	td.Breadcrumbs = uikit.Crumbs(
		i18n.T(lang, "nav.dashboard"), RouteAdmin,
		i18n.T(lang, "nav.events"), RouteAdminEvents,
	)
	renderPage(w, r, h.Renderer, "admin/events", td)
}
