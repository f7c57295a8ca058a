// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/folio-go/internal/backend"
	"github.com/olegiv/folio-go/internal/i18n"
	"github.com/olegiv/folio-go/internal/middleware"
	"github.com/olegiv/folio-go/internal/seo"
	"github.com/olegiv/folio-go/internal/service"
	"github.com/olegiv/folio-go/internal/store"
	"github.com/olegiv/folio-go/internal/uikit"
)

// PublicHandler serves the public site.
type PublicHandler struct {
	Deps
	cv *service.CVService
}

// NewPublicHandler creates a new PublicHandler.
func NewPublicHandler(d Deps) *PublicHandler {
	return &PublicHandler{Deps: d, cv: service.NewCVService(d.Client)}
}

// CMSPageData is the Data of pages assembled from CMS sections.
type CMSPageData struct {
	PageKey  string
	Sections template.HTML
}

// ContactData is the Data of the contact page.
type ContactData struct {
	CMSPageData
	Form   ContactForm
	Errors FormErrors
}

// ContactForm holds the submitted contact form values.
type ContactForm struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// ProjectsListData is the Data of the projects page.
type ProjectsListData struct {
	Projects   []backend.Project
	Search     string
	Error      string
	Pagination uikit.Pagination
}

// ProjectDetailData is the Data of the project page.
type ProjectDetailData struct {
	Project      *backend.Project
	Technologies []backend.Technology
}

// Home handles GET /.
func (h *PublicHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.cmsPage(w, r, PageHome, "nav.home")
}

// About handles GET /about.
func (h *PublicHandler) About(w http.ResponseWriter, r *http.Request) {
	h.cmsPage(w, r, PageAbout, "nav.about")
}

// Privacy handles GET /privacy.
func (h *PublicHandler) Privacy(w http.ResponseWriter, r *http.Request) {
	h.cmsPage(w, r, PagePrivacy, "nav.privacy")
}

// Terms handles GET /terms.
func (h *PublicHandler) Terms(w http.ResponseWriter, r *http.Request) {
	h.cmsPage(w, r, PageTerms, "nav.terms")
}

func (h *PublicHandler) cmsPage(w http.ResponseWriter, r *http.Request, pageKey, titleKey string) {
	sections, ok := h.sections(w, r, pageKey)
	if !ok {
		return
	}
	lang := middleware.GetLang(r)
	renderPage(w, r, h.Renderer, "public/"+pageKey, pageData(i18n.T(lang, titleKey), CMSPageData{PageKey: pageKey, Sections: sections}))
}

// sections renders the CMS sections of pageKey. On failure the error page
// has been written and ok is false.
func (h *PublicHandler) sections(w http.ResponseWriter, r *http.Request, pageKey string) (template.HTML, bool) {
	if h.Sections == nil {
		return "", true
	}
	html, err := h.Sections.HTML(r.Context(), pageKey)
	if err != nil {
		slog.ErrorContext(r.Context(), "rendering sections failed", "page", pageKey, "error", err)
		h.Renderer.RenderError(w, r, http.StatusInternalServerError, i18n.T(middleware.GetLang(r), "error.generic"))
		return "", false
	}
	return html, true
}

// Contact handles GET /contact.
func (h *PublicHandler) Contact(w http.ResponseWriter, r *http.Request) {
	h.renderContact(w, r, http.StatusOK, ContactForm{}, nil)
}

// ContactSubmit handles POST /contact. Messages land in the event log.
func (h *PublicHandler) ContactSubmit(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.Renderer, RouteContact) {
		return
	}
	lang := middleware.GetLang(r)

	form := ContactForm{
		Name:    strings.TrimSpace(r.FormValue("name")),
		Email:   strings.TrimSpace(r.FormValue("email")),
		Subject: strings.TrimSpace(r.FormValue("subject")),
		Message: strings.TrimSpace(r.FormValue("message")),
	}

	v := newValidator(lang)
	v.required("name", form.Name)
	v.minLength("name", form.Name, 2)
	v.required("email", form.Email)
	v.email("email", form.Email)
	v.required("subject", form.Subject)
	v.minLength("subject", form.Subject, 5)
	v.required("message", form.Message)
	v.minLength("message", form.Message, 10)
	v.maxLength("message", form.Message, 5000)

	if !v.valid() {
		h.renderContact(w, r, http.StatusUnprocessableEntity, form, v.errors)
		return
	}

	h.logEvent(r, store.EventLevelInfo, store.EventCategorySystem, "contact message received", map[string]any{
		"name":    form.Name,
		"email":   form.Email,
		"subject": form.Subject,
		"message": form.Message,
	})
	flashSuccess(w, r, h.Renderer, RouteContact, i18n.T(lang, "contact.sent"))
}

func (h *PublicHandler) renderContact(w http.ResponseWriter, r *http.Request, status int, form ContactForm, errs FormErrors) {
	sections, ok := h.sections(w, r, PageContact)
	if !ok {
		return
	}
	data := pageData(i18n.T(middleware.GetLang(r), "nav.contact"), ContactData{
		CMSPageData: CMSPageData{PageKey: PageContact, Sections: sections},
		Form:        form,
		Errors:      errs,
	})
	renderPageStatus(w, r, h.Renderer, status, "public/contact", data)
}

// Projects handles GET /projects.
func (h *PublicHandler) Projects(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)
	page := uikit.ParsePageParam(r)
	search := strings.TrimSpace(r.URL.Query().Get("q"))

	ps := h.projects(r)
	projects, err := ps.FetchProjects(r.Context(), backend.ProjectQuery{
		Skip:   uikit.Offset(page, ProjectsPerPage),
		Limit:  ProjectsPerPage,
		Search: search,
	})

	data := ProjectsListData{
		Projects:   projects,
		Search:     search,
		Pagination: uikit.BuildOpenPagination(page, ProjectsPerPage, len(projects) == ProjectsPerPage, RouteProjects, r.URL.Query()),
	}
	if err != nil {
		slog.WarnContext(r.Context(), "listing projects failed", "category", store.EventCategoryProject, "error", err)
		data.Error = ps.Error()
	}

	renderPage(w, r, h.Renderer, "public/projects", pageData(i18n.T(lang, "nav.projects"), data))
}

// Project handles GET /projects/{slug}. The identifier may be a slug or a
// numeric id.
func (h *PublicHandler) Project(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, ParamSlug)

	ps := h.projects(r)
	project, err := ps.FetchProject(r.Context(), identifier)
	if err != nil {
		renderBackendError(w, r, h.Renderer, err, ps.Error())
		return
	}

	data := pageData(project.Title, ProjectDetailData{
		Project:      project,
		Technologies: project.VisibleTechnologies(),
	})
	data.Description = project.ShortDescription
	if data.Description == "" {
		data.Description = project.Description
	}
	data.Image = h.client(r).ResolveURL(project.ThumbnailURL)
	data.OGType = "article"
	st, _ := h.settings(r).FetchPublic(r.Context())
	data.Settings = st
	data.JSONLD = seo.BuildProjectSchema(*project, seo.SiteConfigFrom(st, h.SiteURL))
	renderPage(w, r, h.Renderer, "public/project", data)
}

// CV handles GET /cv/download by redirecting to the generated document.
func (h *PublicHandler) CV(w http.ResponseWriter, r *http.Request) {
	target, err := h.cv.DownloadURL(r.Context())
	if err != nil {
		status := http.StatusNotFound
		if !errors.Is(err, service.ErrNoCV) && !backend.IsNotFound(err) {
			slog.ErrorContext(r.Context(), "cv download url failed", "error", err)
			status = http.StatusBadGateway
		}
		h.Renderer.RenderError(w, r, status, i18n.T(middleware.GetLang(r), "cv.unavailable"))
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// MaintenanceData is the Data of the maintenance page.
type MaintenanceData struct {
	Message string
}

// Maintenance writes the maintenance page. It matches
// middleware.MaintenancePage.
func (h *PublicHandler) Maintenance(w http.ResponseWriter, r *http.Request, message string) {
	lang := middleware.GetLang(r)
	if message == "" {
		message = i18n.T(lang, "maintenance.default_message")
	}
	data := pageData(i18n.T(lang, "maintenance.title"), MaintenanceData{Message: message})
	if err := h.Renderer.RenderStatus(w, r, http.StatusServiceUnavailable, "public/maintenance", data); err != nil {
		slog.ErrorContext(r.Context(), "render error", "template", "public/maintenance", "error", err)
		http.Error(w, message, http.StatusServiceUnavailable)
	}
}

// NotFound renders the 404 page.
func (h *PublicHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.Renderer.RenderError(w, r, http.StatusNotFound, i18n.T(middleware.GetLang(r), "error.not_found"))
}
