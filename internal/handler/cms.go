// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/folio-go/internal/backend"
	"github.com/olegiv/folio-go/internal/cms"
	"github.com/olegiv/folio-go/internal/i18n"
	"github.com/olegiv/folio-go/internal/middleware"
	"github.com/olegiv/folio-go/internal/permission"
	"github.com/olegiv/folio-go/internal/store"
	"github.com/olegiv/folio-go/internal/uikit"
)

// templateCategories is the display order of the "new section" picker.
var templateCategories = []cms.Category{
	cms.CategoryHero,
	cms.CategoryContent,
	cms.CategoryList,
	cms.CategoryMedia,
	cms.CategoryCTA,
	cms.CategoryCustom,
}

// CMSHandler handles the content editor.
type CMSHandler struct {
	Deps
}

// NewCMSHandler creates a new CMSHandler.
func NewCMSHandler(d Deps) *CMSHandler {
	return &CMSHandler{Deps: d}
}

// CMSIndexData is the Data of the page list.
type CMSIndexData struct {
	Pages []backend.PageInfo
	Stats *backend.CMSStats
	Error string
}

// TemplateGroup is one category of the template picker.
type TemplateGroup struct {
	Category  cms.Category
	Templates []cms.Template
}

// CMSPageSectionsData is the Data of one page's section list.
type CMSPageSectionsData struct {
	PageKey   string
	Sections  []backend.Section
	Templates []TemplateGroup
	CanCreate bool
	CanDelete bool
}

// SectionFormData is the Data of the section editor.
type SectionFormData struct {
	Section  backend.Section
	Template *cms.Template
	Fields   []cms.FormField
	Errors   FormErrors
	Return   string
}

// Index handles GET /admin/cms.
func (h *CMSHandler) Index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lang := middleware.GetLang(r)

	cs := h.cms(r)
	var data CMSIndexData
	if _, err := cs.FetchPages(ctx); err != nil {
		slog.WarnContext(ctx, "fetching cms pages failed", "category", store.EventCategoryCMS, "error", err)
		data.Error = cs.Error()
	}
	if _, err := cs.FetchStats(ctx); err != nil && data.Error == "" {
		data.Error = cs.Error()
	}
	data.Pages = cs.Pages()
	data.Stats = cs.Stats()

	td := pageData(i18n.T(lang, "nav.cms"), data)
	td.Breadcrumbs = uikit.Crumbs(
		i18n.T(lang, "nav.dashboard"), RouteAdmin,
		i18n.T(lang, "nav.cms"), RouteAdminCMS,
	)
	renderPage(w, r, h.Renderer, "admin/cms_index", td)
}

// Page handles GET /admin/cms/{page}.
func (h *CMSHandler) Page(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)
	pageKey := chi.URLParam(r, ParamPage)

	cs := h.cms(r)
	sections, err := cs.FetchSections(r.Context(), pageKey)
	if err != nil {
		renderBackendError(w, r, h.Renderer, err, cs.Error())
		return
	}

	checker := middleware.GetChecker(r)
	groups := make([]TemplateGroup, 0, len(templateCategories))
	for _, cat := range templateCategories {
		if ts := cms.TemplatesByCategory(cat); len(ts) > 0 {
			groups = append(groups, TemplateGroup{Category: cat, Templates: ts})
		}
	}

	td := pageData(i18n.T(lang, "cms.page_title", pageKey), CMSPageSectionsData{
		PageKey:   pageKey,
		Sections:  sections,
		Templates: groups,
		CanCreate: checker.HasPermission(permission.CreateContent),
		CanDelete: checker.HasPermission(permission.DeleteContent),
	})
	td.Breadcrumbs = uikit.Crumbs(
		i18n.T(lang, "nav.dashboard"), RouteAdmin,
		i18n.T(lang, "nav.cms"), RouteAdminCMS,
		pageKey, pageURL(pageKey),
	)
	renderPage(w, r, h.Renderer, "admin/cms_page", td)
}

// CreateSection handles POST /admin/cms/{page}. The section is built from
// the chosen template and appended after the existing ones.
func (h *CMSHandler) CreateSection(w http.ResponseWriter, r *http.Request) {
	pageKey := chi.URLParam(r, ParamPage)
	back := pageURL(pageKey)
	if !parseFormOrRedirect(w, r, h.Renderer, back) {
		return
	}
	lang := middleware.GetLang(r)

	t, err := cms.LookupTemplate(r.FormValue("template_id"))
	if err != nil {
		flashError(w, r, h.Renderer, back, i18n.T(lang, "cms.unknown_template"))
		return
	}

	sectionKey := cms.NormalizeSectionKey(r.FormValue("section_key"))
	if strings.Trim(sectionKey, "_") == "" {
		sectionKey = cms.NewSectionKey(t.ID)
	}
	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		title = t.Name
	}

	cs := h.cms(r)
	existing, err := cs.FetchSections(r.Context(), pageKey)
	if err != nil {
		flashError(w, r, h.Renderer, back, cs.Error())
		return
	}

	sec, err := cs.Create(r.Context(), backend.SectionCreate{
		PageKey:    pageKey,
		SectionKey: sectionKey,
		Title:      title,
		Content:    cms.NewSectionContent(t),
		IsActive:   true,
		IsEditable: true,
		OrderIndex: len(existing),
	})
	if err != nil {
		flashError(w, r, h.Renderer, back, cs.Error())
		return
	}

	h.logEvent(r, store.EventLevelInfo, store.EventCategoryCMS, "section created", map[string]any{
		"page": pageKey, "section": sec.SectionKey, "template": t.ID,
	})
	flashSuccess(w, r, h.Renderer, sectionURL(pageKey, sec.SectionKey)+RouteSuffixEdit, i18n.T(lang, "cms.section_created"))
}

// EditSection handles GET /admin/cms/{page}/{section}/edit.
func (h *CMSHandler) EditSection(w http.ResponseWriter, r *http.Request) {
	pageKey, sectionKey := chi.URLParam(r, ParamPage), chi.URLParam(r, ParamSection)
	back := safeRedirect(r.URL.Query().Get("return"), pageURL(pageKey))

	cs := h.cms(r)
	sec, ok := requireWithRedirect(w, r, h.Renderer, back, cs.Error, func() (*backend.Section, error) {
		return cs.FetchSection(r.Context(), pageKey, sectionKey)
	})
	if !ok {
		return
	}
	if !sec.IsEditable {
		flashError(w, r, h.Renderer, back, i18n.T(middleware.GetLang(r), "cms.not_editable"))
		return
	}

	h.renderForm(w, r, http.StatusOK, SectionFormData{
		Section: *sec,
		Fields:  cms.FormFields(*sec),
		Return:  back,
	})
}

// UpdateSection handles POST /admin/cms/{page}/{section}/edit.
func (h *CMSHandler) UpdateSection(w http.ResponseWriter, r *http.Request) {
	pageKey, sectionKey := chi.URLParam(r, ParamPage), chi.URLParam(r, ParamSection)
	editURL := sectionURL(pageKey, sectionKey) + RouteSuffixEdit
	if !parseFormOrRedirect(w, r, h.Renderer, editURL) {
		return
	}
	lang := middleware.GetLang(r)
	back := safeRedirect(r.FormValue("return"), pageURL(pageKey))

	cs := h.cms(r)
	sec, ok := requireWithRedirect(w, r, h.Renderer, back, cs.Error, func() (*backend.Section, error) {
		return cs.FetchSection(r.Context(), pageKey, sectionKey)
	})
	if !ok {
		return
	}
	if !sec.IsEditable {
		flashError(w, r, h.Renderer, back, i18n.T(lang, "cms.not_editable"))
		return
	}

	fields := cms.FormFields(*sec)
	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	active := r.FormValue("is_active") != ""

	v := newValidator(lang)
	v.required("title", title)
	v.maxLength("title", title, 200)
	content, err := cms.ApplyForm(sec.Content, fields, r.FormValue)
	if err != nil {
		v.fail("content", "cms.invalid_content", err.Error())
	}

	if !v.valid() {
		edited := *sec
		edited.Title, edited.Description, edited.IsActive = title, description, active
		h.renderForm(w, r, http.StatusUnprocessableEntity, SectionFormData{
			Section: edited,
			Fields:  submittedFields(fields, r),
			Errors:  v.errors,
			Return:  back,
		})
		return
	}

	if _, err := cs.Update(r.Context(), pageKey, sectionKey, backend.SectionUpdate{
		Title:       &title,
		Description: &description,
		Content:     content,
		IsActive:    &active,
	}); err != nil {
		edited := *sec
		edited.Title, edited.Description, edited.IsActive = title, description, active
		h.renderForm(w, r, backendFormStatus(err), SectionFormData{
			Section: edited,
			Fields:  submittedFields(fields, r),
			Errors:  FormErrors{"_": cs.Error()},
			Return:  back,
		})
		return
	}

	h.logEvent(r, store.EventLevelInfo, store.EventCategoryCMS, "section updated", map[string]any{
		"page": pageKey, "section": sectionKey,
	})
	flashSuccess(w, r, h.Renderer, back, i18n.T(lang, "cms.section_saved"))
}

// DeleteSection handles POST /admin/cms/{page}/{section}/delete.
func (h *CMSHandler) DeleteSection(w http.ResponseWriter, r *http.Request) {
	pageKey, sectionKey := chi.URLParam(r, ParamPage), chi.URLParam(r, ParamSection)
	lang := middleware.GetLang(r)
	back := safeRedirect(r.FormValue("return"), pageURL(pageKey))

	cs := h.cms(r)
	if err := cs.Delete(r.Context(), pageKey, sectionKey); err != nil {
		if wantsJSON(r) {
			writeJSONError(w, backendErrorStatus(err), cs.Error())
			return
		}
		flashError(w, r, h.Renderer, back, cs.Error())
		return
	}

	h.logEvent(r, store.EventLevelWarning, store.EventCategoryCMS, "section deleted", map[string]any{
		"page": pageKey, "section": sectionKey,
	})
	if wantsJSON(r) {
		writeJSONSuccess(w, nil)
		return
	}
	flashSuccess(w, r, h.Renderer, back, i18n.T(lang, "cms.section_deleted"))
}

// MoveSection handles POST /admin/cms/{page}/{section}/move with a
// direction of "up" or "down".
func (h *CMSHandler) MoveSection(w http.ResponseWriter, r *http.Request) {
	pageKey, sectionKey := chi.URLParam(r, ParamPage), chi.URLParam(r, ParamSection)
	lang := middleware.GetLang(r)
	back := safeRedirect(r.FormValue("return"), pageURL(pageKey))

	dir := backend.Direction(r.FormValue("direction"))
	if dir != backend.DirectionUp && dir != backend.DirectionDown {
		if wantsJSON(r) {
			writeJSONError(w, http.StatusBadRequest, i18n.T(lang, "cms.invalid_direction"))
			return
		}
		flashError(w, r, h.Renderer, back, i18n.T(lang, "cms.invalid_direction"))
		return
	}

	cs := h.cms(r)
	if err := cs.Reorder(r.Context(), pageKey, sectionKey, dir); err != nil {
		if wantsJSON(r) {
			writeJSONError(w, backendErrorStatus(err), cs.Error())
			return
		}
		flashError(w, r, h.Renderer, back, cs.Error())
		return
	}

	if wantsJSON(r) {
		writeJSONSuccess(w, map[string]any{"direction": dir})
		return
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// ReloadPage handles POST /admin/cms/{page}/reload, the manual retry for
// a page whose content failed to load. The cached public page is dropped
// and every active section is fetched again through a content hook.
func (h *CMSHandler) ReloadPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lang := middleware.GetLang(r)
	pageKey := chi.URLParam(r, ParamPage)
	back := pageURL(pageKey)

	if h.Content != nil {
		if err := h.Content.InvalidatePage(ctx, pageKey); err != nil {
			slog.WarnContext(ctx, "dropping cached page failed", "page", pageKey, "error", err)
		}
	}

	cs := h.cms(r)
	sections, err := cs.FetchSections(ctx, pageKey)
	if err != nil {
		flashError(w, r, h.Renderer, back, cs.Error())
		return
	}

	var (
		hook   *cms.ContentHook
		loaded int
		failed []string
	)
	for _, sec := range sections {
		if !sec.IsActive {
			continue
		}
		var st cms.State
		if hook == nil {
			hook = cms.NewContentHook(h.Sources, pageKey, sec.SectionKey, i18n.T(lang, "cms.load_failed"))
			st = hook.Refresh(ctx)
		} else {
			st = hook.SetKey(ctx, pageKey, sec.SectionKey)
		}
		if st.Content == nil {
			failed = append(failed, sec.SectionKey)
			continue
		}
		loaded++
	}

	if len(failed) > 0 {
		h.logEvent(r, store.EventLevelWarning, store.EventCategoryCMS, "page reload incomplete", map[string]any{"page": pageKey, "failed": failed})
		flashError(w, r, h.Renderer, back, i18n.T(lang, "cms.reload_failed", strings.Join(failed, ", ")))
		return
	}
	flashSuccess(w, r, h.Renderer, back, i18n.T(lang, "cms.reloaded", loaded))
}

// Seed handles POST /admin/cms/seed.
func (h *CMSHandler) Seed(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)

	cs := h.cms(r)
	sections, err := cs.Seed(r.Context())
	if err != nil {
		flashError(w, r, h.Renderer, RouteAdminCMS, cs.Error())
		return
	}

	h.logEvent(r, store.EventLevelInfo, store.EventCategoryCMS, "default content seeded", map[string]any{"sections": len(sections)})
	flashSuccess(w, r, h.Renderer, RouteAdminCMS, i18n.T(lang, "cms.seeded", len(sections)))
}

// Templates handles GET /admin/cms/templates, the catalog as JSON.
func (h *CMSHandler) Templates(w http.ResponseWriter, r *http.Request) {
	ts := cms.Templates()
	out := make([]map[string]any, 0, len(ts))
	for _, t := range ts {
		out = append(out, map[string]any{
			"id":          t.ID,
			"name":        t.Name,
			"description": t.Description,
			"icon":        t.Icon,
			"category":    t.Category,
			"content":     cms.NewSectionContent(t),
		})
	}
	writeJSONSuccess(w, map[string]any{"templates": out})
}

func (h *CMSHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, data SectionFormData) {
	lang := middleware.GetLang(r)
	if t, ok := cms.TemplateByID(cms.TemplateID(data.Section)); ok {
		data.Template = &t
	}

	td := pageData(i18n.T(lang, "cms.edit_section"), data)
	td.Breadcrumbs = uikit.Crumbs(
		i18n.T(lang, "nav.dashboard"), RouteAdmin,
		i18n.T(lang, "nav.cms"), RouteAdminCMS,
		data.Section.PageKey, pageURL(data.Section.PageKey),
		data.Section.Title, "",
	)
	renderPageStatus(w, r, h.Renderer, status, "admin/cms_section", td)
}

// submittedFields returns fields carrying the values of the failed post.
func submittedFields(fields []cms.FormField, r *http.Request) []cms.FormField {
	out := make([]cms.FormField, len(fields))
	for i, f := range fields {
		f.Value = r.FormValue(f.Name)
		out[i] = f
	}
	return out
}

func pageURL(pageKey string) string {
	return RouteAdminCMS + "/" + pageKey
}

func sectionURL(pageKey, sectionKey string) string {
	return pageURL(pageKey) + "/" + sectionKey
}
