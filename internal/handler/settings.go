// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/olegiv/folio-go/internal/backend"
	"github.com/olegiv/folio-go/internal/i18n"
	"github.com/olegiv/folio-go/internal/middleware"
	"github.com/olegiv/folio-go/internal/store"
	"github.com/olegiv/folio-go/internal/uikit"
)

// Theme modes and banner types offered by the settings form.
var (
	ThemeModes  = []string{"light", "dark", "system"}
	BannerTypes = []string{"info", "warning", "success", "error"}
)

// emptySocialRows is the number of blank social link rows in the form.
const emptySocialRows = 2

// SettingsHandler handles the site settings page.
type SettingsHandler struct {
	Deps
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(d Deps) *SettingsHandler {
	return &SettingsHandler{Deps: d}
}

// SettingsFormData is the Data of the settings page.
type SettingsFormData struct {
	Settings    backend.Settings
	SocialRows  []backend.SocialLink
	Errors      FormErrors
	ThemeModes  []string
	BannerTypes []string
}

// Edit handles GET /admin/settings.
func (h *SettingsHandler) Edit(w http.ResponseWriter, r *http.Request) {
	ss := h.settings(r)
	st, err := ss.Fetch(r.Context())
	if err != nil {
		renderBackendError(w, r, h.Renderer, err, ss.Error())
		return
	}
	h.renderForm(w, r, http.StatusOK, *st, nil)
}

// Update handles POST /admin/settings.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.Renderer, RouteAdminSettings) {
		return
	}
	lang := middleware.GetLang(r)

	in, errs := parseSettingsForm(r, lang)
	if len(errs) > 0 {
		h.renderForm(w, r, http.StatusUnprocessableEntity, settingsFromUpdate(in), errs)
		return
	}

	ss := h.settings(r)
	if _, err := ss.Update(r.Context(), in); err != nil {
		h.renderForm(w, r, backendFormStatus(err), settingsFromUpdate(in), FormErrors{"_": ss.Error()})
		return
	}

	h.logEvent(r, store.EventLevelInfo, store.EventCategorySettings, "settings updated", map[string]any{
		"maintenance_mode": in.MaintenanceMode != nil && *in.MaintenanceMode,
	})
	flashSuccess(w, r, h.Renderer, RouteAdminSettings, i18n.T(lang, "settings.updated"))
}

// Reset handles POST /admin/settings/reset.
func (h *SettingsHandler) Reset(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)

	ss := h.settings(r)
	if _, err := ss.Reset(r.Context()); err != nil {
		flashError(w, r, h.Renderer, RouteAdminSettings, ss.Error())
		return
	}

	h.logEvent(r, store.EventLevelWarning, store.EventCategorySettings, "settings reset to defaults", nil)
	flashSuccess(w, r, h.Renderer, RouteAdminSettings, i18n.T(lang, "settings.reset"))
}

func (h *SettingsHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, st backend.Settings, errs FormErrors) {
	lang := middleware.GetLang(r)

	rows := slices.Clone(st.SocialLinks)
	for range emptySocialRows {
		rows = append(rows, backend.SocialLink{Enabled: true})
	}

	td := pageData(i18n.T(lang, "nav.settings"), SettingsFormData{
		Settings:    st,
		SocialRows:  rows,
		Errors:      errs,
		ThemeModes:  ThemeModes,
		BannerTypes: BannerTypes,
	})
	td.Breadcrumbs = uikit.Crumbs(
		i18n.T(lang, "nav.dashboard"), RouteAdmin,
		i18n.T(lang, "nav.settings"), RouteAdminSettings,
	)
	renderPageStatus(w, r, h.Renderer, status, "admin/settings", td)
}

// parseSettingsForm builds a full update from the settings form. Every
// field of the form is sent; checkboxes absent from the post are false.
func parseSettingsForm(r *http.Request, lang string) (backend.SettingsUpdate, FormErrors) {
	field := func(name string) *string {
		v := strings.TrimSpace(r.FormValue(name))
		return &v
	}
	check := func(name string) *bool {
		v := r.FormValue(name) != ""
		return &v
	}

	in := backend.SettingsUpdate{
		SiteName:            field("site_name"),
		SiteDescription:     field("site_description"),
		SiteLogoURL:         field("site_logo_url"),
		ContactEmail:        field("contact_email"),
		ContactPhone:        field("contact_phone"),
		ContactLocation:     field("contact_location"),
		ContactAvailability: field("contact_availability"),
		SEOTitle:            field("seo_title"),
		SEODescription:      field("seo_description"),
		ThemeMode:           field("theme_mode"),
		PrimaryColor:        field("primary_color"),
		MaintenanceMode:     check("maintenance_mode"),
		MaintenanceMessage:  field("maintenance_message"),
		GlobalBanner:        field("global_banner"),
		BannerEnabled:       check("banner_enabled"),
		BannerType:          field("banner_type"),
		SocialLinks:         parseSocialLinks(r.Form["social_name"], r.Form["social_url"], r.Form["social_icon"], r.Form["social_enabled"]),
	}

	v := newValidator(lang)
	v.required("site_name", *in.SiteName)
	v.maxLength("site_name", *in.SiteName, 100)
	v.email("contact_email", *in.ContactEmail)
	v.url("site_logo_url", *in.SiteLogoURL)
	v.maxLength("seo_description", *in.SEODescription, 300)
	if *in.ThemeMode != "" && !slices.Contains(ThemeModes, *in.ThemeMode) {
		v.fail("theme_mode", "validation.choice")
	}
	if *in.BannerType != "" && !slices.Contains(BannerTypes, *in.BannerType) {
		v.fail("banner_type", "validation.choice")
	}
	if *in.BannerEnabled && *in.GlobalBanner == "" {
		v.fail("global_banner", "validation.field_required")
	}
	for _, l := range in.SocialLinks {
		v.url("social_links", l.URL)
	}

	return in, v.errors
}

func parseSocialLinks(names, urls, icons, enabled []string) []backend.SocialLink {
	on := make(map[string]bool, len(enabled))
	for _, idx := range enabled {
		on[idx] = true
	}
	links := []backend.SocialLink{}
	for i, name := range names {
		name = strings.TrimSpace(name)
		var u, icon string
		if i < len(urls) {
			u = strings.TrimSpace(urls[i])
		}
		if i < len(icons) {
			icon = strings.TrimSpace(icons[i])
		}
		if name == "" && u == "" {
			continue
		}
		links = append(links, backend.SocialLink{Name: name, URL: u, Icon: icon, Enabled: on[strconv.Itoa(i)]})
	}
	return links
}

// settingsFromUpdate mirrors a submitted update back into a document so
// the form can be re-rendered with the user's input.
func settingsFromUpdate(in backend.SettingsUpdate) backend.Settings {
	s := func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	}
	b := func(p *bool) bool { return p != nil && *p }

	return backend.Settings{
		SiteName:            s(in.SiteName),
		SiteDescription:     s(in.SiteDescription),
		SiteLogoURL:         s(in.SiteLogoURL),
		ContactEmail:        s(in.ContactEmail),
		ContactPhone:        s(in.ContactPhone),
		ContactLocation:     s(in.ContactLocation),
		ContactAvailability: s(in.ContactAvailability),
		SocialLinks:         in.SocialLinks,
		SEOTitle:            s(in.SEOTitle),
		SEODescription:      s(in.SEODescription),
		ThemeMode:           s(in.ThemeMode),
		PrimaryColor:        s(in.PrimaryColor),
		MaintenanceMode:     b(in.MaintenanceMode),
		MaintenanceMessage:  s(in.MaintenanceMessage),
		GlobalBanner:        s(in.GlobalBanner),
		BannerEnabled:       b(in.BannerEnabled),
		BannerType:          s(in.BannerType),
	}
}
