// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/olegiv/folio-go/internal/backend"
	"github.com/olegiv/folio-go/internal/seo"
	"github.com/olegiv/folio-go/internal/store"
	"github.com/olegiv/folio-go/internal/uikit"
)

// sitemapProjectLimit caps the projects listed in the sitemap.
const sitemapProjectLimit = 500

// SEOHandler serves the sitemap and robots.txt.
type SEOHandler struct {
	Deps
}

// NewSEOHandler creates a new SEOHandler.
func NewSEOHandler(d Deps) *SEOHandler {
	return &SEOHandler{Deps: d}
}

// Sitemap handles GET /sitemap.xml. Projects are best effort: a backend
// failure still yields the static pages.
func (h *SEOHandler) Sitemap(w http.ResponseWriter, r *http.Request) {
	b := seo.NewSitemapBuilder(h.baseURL(r))
	b.AddHomepage()
	b.AddPath(RouteAbout, seo.ChangeFreqMonthly, "0.8")
	b.AddPath(RouteProjects, seo.ChangeFreqWeekly, "0.9")
	b.AddPath(RouteContact, seo.ChangeFreqYearly, "0.5")
	b.AddPath(RoutePrivacy, seo.ChangeFreqYearly, "0.2")
	b.AddPath(RouteTerms, seo.ChangeFreqYearly, "0.2")

	projects, err := h.projects(r).FetchProjects(r.Context(), backend.ProjectQuery{Limit: sitemapProjectLimit})
	if err != nil {
		slog.WarnContext(r.Context(), "sitemap projects unavailable", "category", store.EventCategoryProject, "error", err)
	}
	for _, p := range projects {
		if !p.IsPublished || p.Slug == "" {
			continue
		}
		sp := seo.SitemapProject{Slug: p.Slug}
		if t, ok := uikit.ParseTime(p.CreatedAt); ok {
			sp.UpdatedAt = t
		}
		b.AddProject(sp)
	}

	out, err := b.Build()
	if err != nil {
		slog.ErrorContext(r.Context(), "building sitemap failed", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(out)
}

// Robots handles GET /robots.txt. Crawlers are turned away while the site
// is in maintenance.
func (h *SEOHandler) Robots(w http.ResponseWriter, r *http.Request) {
	cfg := seo.RobotsConfig{SiteURL: h.baseURL(r)}
	if st, err := h.settings(r).FetchPublic(r.Context()); err == nil && st.MaintenanceMode {
		cfg.DisallowAll = true
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(seo.BuildRobots(cfg)))
}

func (h *SEOHandler) baseURL(r *http.Request) string {
	if h.SiteURL != "" {
		return strings.TrimSuffix(h.SiteURL, "/")
	}
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
