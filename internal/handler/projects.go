// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/olegiv/folio-go/internal/backend"
	"github.com/olegiv/folio-go/internal/i18n"
	"github.com/olegiv/folio-go/internal/middleware"
	"github.com/olegiv/folio-go/internal/permission"
	"github.com/olegiv/folio-go/internal/store"
	"github.com/olegiv/folio-go/internal/uikit"
)

// emptyTechRows is the number of blank technology rows offered by the form.
const emptyTechRows = 3

// ProjectsHandler handles project management routes.
type ProjectsHandler struct {
	Deps
}

// NewProjectsHandler creates a new ProjectsHandler.
func NewProjectsHandler(d Deps) *ProjectsHandler {
	return &ProjectsHandler{Deps: d}
}

// ProjectsAdminListData is the Data of the admin project list.
type ProjectsAdminListData struct {
	Projects   []backend.Project
	Search     string
	Error      string
	Pagination uikit.Pagination
}

// ProjectFormData is the Data of the project form.
type ProjectFormData struct {
	Project backend.ProjectInput
	// ID is zero for a new project.
	ID         int64
	Errors     FormErrors
	CanPublish bool
	// TechRows are the technology rows to render, existing ones first.
	TechRows []backend.Technology
	// DemoImagesText is the gallery as "url | title" lines.
	DemoImagesText string
	TagsText       string
}

// IsEdit reports whether the form edits an existing project.
func (d ProjectFormData) IsEdit() bool {
	return d.ID != 0
}

// List handles GET /admin/projects.
func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)
	page := uikit.ParsePageParam(r)
	search := strings.TrimSpace(r.URL.Query().Get("q"))

	ps := h.projects(r)
	projects, err := ps.FetchProjects(r.Context(), backend.ProjectQuery{
		Skip:               uikit.Offset(page, AdminPerPage),
		Limit:              AdminPerPage,
		Search:             search,
		IncludeUnpublished: true,
	})

	data := ProjectsAdminListData{
		Projects:   projects,
		Search:     search,
		Pagination: uikit.BuildOpenPagination(page, AdminPerPage, len(projects) == AdminPerPage, RouteAdminProjects, r.URL.Query()),
	}
	if err != nil {
		data.Error = ps.Error()
	}

	td := pageData(i18n.T(lang, "nav.projects"), data)
	td.Breadcrumbs = uikit.Crumbs(
		i18n.T(lang, "nav.dashboard"), RouteAdmin,
		i18n.T(lang, "nav.projects"), RouteAdminProjects,
	)
	renderPage(w, r, h.Renderer, "admin/projects_list", td)
}

// NewForm handles GET /admin/projects/new.
func (h *ProjectsHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, newProjectFormData(backend.ProjectInput{}, 0, middleware.GetChecker(r)))
}

// Create handles POST /admin/projects.
func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.Renderer, RouteAdminProjects+RouteSuffixNew) {
		return
	}
	lang := middleware.GetLang(r)
	checker := middleware.GetChecker(r)

	in, errs := parseProjectForm(r, lang)
	if !checker.HasPermission(permission.PublishProject) {
		in.IsPublished = false
	}
	if len(errs) > 0 {
		data := newProjectFormData(in, 0, checker)
		data.Errors = errs
		h.renderForm(w, r, http.StatusUnprocessableEntity, data)
		return
	}

	ps := h.projects(r)
	p, err := ps.Create(r.Context(), in)
	if err != nil {
		data := newProjectFormData(in, 0, checker)
		data.Errors = FormErrors{"_": ps.Error()}
		h.renderForm(w, r, backendFormStatus(err), data)
		return
	}

	h.logEvent(r, store.EventLevelInfo, store.EventCategoryProject, "project created", map[string]any{"project_id": p.ID, "slug": p.Slug})
	flashSuccess(w, r, h.Renderer, RouteAdminProjects, i18n.T(lang, "projects.created"))
}

// EditForm handles GET /admin/projects/{id}/edit.
func (h *ProjectsHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	ps := h.projects(r)
	p, ok := requireWithRedirect(w, r, h.Renderer, RouteAdminProjects, ps.Error, func() (*backend.Project, error) {
		return ps.FetchProject(r.Context(), strconv.FormatInt(id, 10))
	})
	if !ok {
		return
	}
	h.renderForm(w, r, http.StatusOK, newProjectFormData(projectInput(*p), p.ID, middleware.GetChecker(r)))
}

// Update handles POST /admin/projects/{id}/edit.
func (h *ProjectsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	editURL := fmt.Sprintf("%s/%d%s", RouteAdminProjects, id, RouteSuffixEdit)
	if !parseFormOrRedirect(w, r, h.Renderer, editURL) {
		return
	}
	lang := middleware.GetLang(r)
	checker := middleware.GetChecker(r)
	ps := h.projects(r)

	in, errs := parseProjectForm(r, lang)
	if !checker.HasPermission(permission.PublishProject) {
		// Keep the stored publication state.
		current, ok := requireWithRedirect(w, r, h.Renderer, RouteAdminProjects, ps.Error, func() (*backend.Project, error) {
			return ps.FetchProject(r.Context(), strconv.FormatInt(id, 10))
		})
		if !ok {
			return
		}
		in.IsPublished = current.IsPublished
	}
	if len(errs) > 0 {
		data := newProjectFormData(in, id, checker)
		data.Errors = errs
		h.renderForm(w, r, http.StatusUnprocessableEntity, data)
		return
	}

	p, err := ps.Update(r.Context(), id, in)
	if err != nil {
		data := newProjectFormData(in, id, checker)
		data.Errors = FormErrors{"_": ps.Error()}
		h.renderForm(w, r, backendFormStatus(err), data)
		return
	}

	h.logEvent(r, store.EventLevelInfo, store.EventCategoryProject, "project updated", map[string]any{"project_id": p.ID, "slug": p.Slug})
	flashSuccess(w, r, h.Renderer, RouteAdminProjects, i18n.T(lang, "projects.updated"))
}

// Delete handles POST /admin/projects/{id}/delete.
func (h *ProjectsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	lang := middleware.GetLang(r)

	ps := h.projects(r)
	if err := ps.Delete(r.Context(), id); err != nil {
		flashError(w, r, h.Renderer, RouteAdminProjects, ps.Error())
		return
	}

	h.logEvent(r, store.EventLevelInfo, store.EventCategoryProject, "project deleted", map[string]any{"project_id": id})
	flashSuccess(w, r, h.Renderer, RouteAdminProjects, i18n.T(lang, "projects.deleted"))
}

func (h *ProjectsHandler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	return parseIDParam(w, r, h.Renderer, "projects.not_found")
}

func (h *ProjectsHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, data ProjectFormData) {
	lang := middleware.GetLang(r)
	title := i18n.T(lang, "projects.new")
	if data.IsEdit() {
		title = i18n.T(lang, "projects.edit")
	}
	td := pageData(title, data)
	td.Breadcrumbs = uikit.Crumbs(
		i18n.T(lang, "nav.dashboard"), RouteAdmin,
		i18n.T(lang, "nav.projects"), RouteAdminProjects,
		title, "",
	)
	renderPageStatus(w, r, h.Renderer, status, "admin/projects_form", td)
}

// backendFormStatus is the status of a form page re-rendered after the
// backend rejected the submission.
func backendFormStatus(err error) int {
	switch backend.StatusCode(err) {
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return http.StatusUnprocessableEntity
	}
	return backendErrorStatus(err)
}

func newProjectFormData(in backend.ProjectInput, id int64, checker permission.Checker) ProjectFormData {
	rows := slices.Clone(in.Technologies)
	for range emptyTechRows {
		rows = append(rows, backend.Technology{Enabled: true})
	}

	var images strings.Builder
	for _, img := range in.DemoImages {
		images.WriteString(img.URL)
		if img.Title != "" {
			images.WriteString(" | ")
			images.WriteString(img.Title)
		}
		images.WriteByte('\n')
	}

	return ProjectFormData{
		Project:        in,
		ID:             id,
		CanPublish:     checker.HasPermission(permission.PublishProject),
		TechRows:       rows,
		DemoImagesText: images.String(),
		TagsText:       strings.Join(in.Tags, ", "),
	}
}

// projectInput converts a stored project back into form input.
func projectInput(p backend.Project) backend.ProjectInput {
	return backend.ProjectInput{
		Title:              p.Title,
		Slug:               p.Slug,
		Description:        p.Description,
		ShortDescription:   p.ShortDescription,
		Content:            p.Content,
		GithubURL:          p.GithubURL,
		DemoURL:            p.DemoURL,
		DemoVideoType:      p.DemoVideoType,
		DemoVideoURL:       p.DemoVideoURL,
		DemoVideoThumbnail: p.DemoVideoThumbnail,
		DemoImages:         p.DemoImages,
		ThumbnailURL:       p.ThumbnailURL,
		Technologies:       p.Technologies,
		Tags:               p.Tags,
		IsFeatured:         p.IsFeatured,
		IsPublished:        p.IsPublished,
		OrderIndex:         p.OrderIndex,
	}
}

// parseProjectForm reads and validates the project form. Technologies are
// parallel tech_name/tech_icon inputs; tech_enabled carries the indexes of
// the rows ticked as visible.
func parseProjectForm(r *http.Request, lang string) (backend.ProjectInput, FormErrors) {
	in := backend.ProjectInput{
		Title:              strings.TrimSpace(r.FormValue("title")),
		Description:        strings.TrimSpace(r.FormValue("description")),
		ShortDescription:   strings.TrimSpace(r.FormValue("short_description")),
		Content:            r.FormValue("content"),
		GithubURL:          strings.TrimSpace(r.FormValue("github_url")),
		DemoURL:            strings.TrimSpace(r.FormValue("demo_url")),
		DemoVideoType:      strings.TrimSpace(r.FormValue("demo_video_type")),
		DemoVideoURL:       strings.TrimSpace(r.FormValue("demo_video_url")),
		DemoVideoThumbnail: strings.TrimSpace(r.FormValue("demo_video_thumbnail")),
		ThumbnailURL:       strings.TrimSpace(r.FormValue("thumbnail_url")),
		IsFeatured:         r.FormValue("is_featured") != "",
		IsPublished:        r.FormValue("is_published") != "",
	}
	in.Slug = resolveSlug(r.FormValue("slug"), in.Title)

	v := newValidator(lang)
	v.required("title", in.Title)
	v.maxLength("title", in.Title, 200)
	v.slug("slug", in.Slug)
	v.required("description", in.Description)
	v.maxLength("short_description", in.ShortDescription, 300)
	v.url("github_url", in.GithubURL)
	v.url("demo_url", in.DemoURL)
	v.url("demo_video_url", in.DemoVideoURL)
	v.url("demo_video_thumbnail", in.DemoVideoThumbnail)
	v.url("thumbnail_url", in.ThumbnailURL)

	if raw := strings.TrimSpace(r.FormValue("order_index")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			v.fail("order_index", "validation.number", i18n.T(lang, "projects.order"))
		}
		in.OrderIndex = n
	}

	in.Technologies = parseTechnologies(r.Form["tech_name"], r.Form["tech_icon"], r.Form["tech_enabled"])
	in.Tags = parseTags(r.FormValue("tags"))
	in.DemoImages = parseDemoImages(r.FormValue("demo_images"))
	for _, img := range in.DemoImages {
		v.url("demo_images", img.URL)
	}

	return in, v.errors
}

func parseTechnologies(names, icons, enabled []string) []backend.Technology {
	on := make(map[string]bool, len(enabled))
	for _, idx := range enabled {
		on[idx] = true
	}
	techs := make([]backend.Technology, 0, len(names))
	for i, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		t := backend.Technology{Name: name, Enabled: on[strconv.Itoa(i)]}
		if i < len(icons) {
			t.Icon = strings.TrimSpace(icons[i])
		}
		techs = append(techs, t)
	}
	return techs
}

func parseTags(raw string) []string {
	tags := []string{}
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" && !slices.Contains(tags, t) {
			tags = append(tags, t)
		}
	}
	return tags
}

// parseDemoImages reads "url | title" lines. Order follows the lines.
func parseDemoImages(raw string) []backend.DemoImage {
	images := []backend.DemoImage{}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		u, title, _ := strings.Cut(line, "|")
		images = append(images, backend.DemoImage{
			URL:   strings.TrimSpace(u),
			Title: strings.TrimSpace(title),
			Order: len(images),
		})
	}
	return images
}
