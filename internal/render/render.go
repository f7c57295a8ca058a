// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render parses the embedded HTML templates and renders pages with
// the per-request data every layout needs.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/folio-go/internal/backend"
	"github.com/olegiv/folio-go/internal/cms"
	"github.com/olegiv/folio-go/internal/editmode"
	"github.com/olegiv/folio-go/internal/guard"
	"github.com/olegiv/folio-go/internal/i18n"
	"github.com/olegiv/folio-go/internal/middleware"
	"github.com/olegiv/folio-go/internal/permission"
	"github.com/olegiv/folio-go/internal/seo"
	"github.com/olegiv/folio-go/internal/session"
	"github.com/olegiv/folio-go/internal/uikit"
	"github.com/olegiv/folio-go/internal/util"
)

// blankLinesRegex matches runs of blank lines left behind by template
// actions.
var blankLinesRegex = regexp.MustCompile(`(?:\r?\n[ \t]*)+\r?\n`)

// Template directories. Public and auth pages use the base layout; admin
// pages are wrapped in the admin layout as well.
const (
	baseLayout  = "layouts/base.html"
	adminLayout = "layouts/admin.html"
	partialsDir = "partials"
	sectionsDir = "sections"
)

// Renderer handles template rendering with caching.
type Renderer struct {
	templates      map[string]*template.Template
	sections       *template.Template
	sessionManager *scs.SessionManager
	settings       middleware.SettingsFunc
	siteURL        string
	version        string
	extraFuncs     template.FuncMap
}

// Config holds renderer configuration.
type Config struct {
	TemplatesFS    fs.FS
	SessionManager *scs.SessionManager
	// Settings supplies the public site settings shown in every layout.
	Settings middleware.SettingsFunc
	// SiteURL is the public base URL used for canonical links.
	SiteURL string
	Version string
	// Funcs are merged over the built-in template functions.
	Funcs template.FuncMap
}

// New creates a Renderer with parsed templates.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		templates:      make(map[string]*template.Template),
		sessionManager: cfg.SessionManager,
		settings:       cfg.Settings,
		siteURL:        cfg.SiteURL,
		version:        cfg.Version,
		extraFuncs:     cfg.Funcs,
	}

	if err := r.parseTemplates(cfg.TemplatesFS); err != nil {
		return nil, err
	}
	return r, nil
}

// parseTemplates builds one template set per page plus the shared section
// set used by the CMS renderer.
func (r *Renderer) parseTemplates(templatesFS fs.FS) error {
	partials, err := getTemplateFiles(templatesFS, partialsDir)
	if err != nil {
		return fmt.Errorf("getting partials: %w", err)
	}

	groups := []struct {
		dir     string
		layouts []string
	}{
		{"public", []string{baseLayout}},
		{"auth", []string{baseLayout}},
		{"admin", []string{baseLayout, adminLayout}},
	}

	for _, g := range groups {
		pages, err := getTemplateFiles(templatesFS, g.dir)
		if err != nil {
			return fmt.Errorf("getting %s templates: %w", g.dir, err)
		}
		for _, tmplPath := range pages {
			name := g.dir + "/" + strings.TrimSuffix(path.Base(tmplPath), ".html")

			files := append([]string{}, g.layouts...)
			files = append(files, partials...)
			files = append(files, tmplPath)

			tmpl, err := template.New("").Funcs(r.TemplateFuncs()).ParseFS(templatesFS, files...)
			if err != nil {
				return fmt.Errorf("parsing template %s: %w", name, err)
			}
			r.templates[name] = tmpl
		}
	}

	sections, err := getTemplateFiles(templatesFS, sectionsDir)
	if err != nil {
		return fmt.Errorf("getting section templates: %w", err)
	}
	files := append(append([]string{}, partials...), sections...)
	if len(files) > 0 {
		r.sections, err = template.New("sections").Funcs(r.TemplateFuncs()).ParseFS(templatesFS, files...)
		if err != nil {
			return fmt.Errorf("parsing section templates: %w", err)
		}
	}

	return nil
}

// getTemplateFiles returns the .html files in a directory. A missing
// directory yields no files.
func getTemplateFiles(templatesFS fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(templatesFS, dir)
	if err != nil {
		return nil, nil
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".html") {
			files = append(files, path.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

// Sections returns the template set holding "section-container" and the
// "layout-<kind>" templates.
func (r *Renderer) Sections() *template.Template {
	return r.sections
}

// Has reports whether a page template exists.
func (r *Renderer) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}

// TemplateFuncs returns the function map available to every template.
func (r *Renderer) TemplateFuncs() template.FuncMap {
	funcs := uikit.TemplateFuncs()
	for name, fn := range guard.FuncMap() {
		funcs[name] = fn
	}

	funcs["T"] = i18n.T
	funcs["markdown"] = func(src string) template.HTML {
		out, err := util.RenderMarkdown(src)
		if err != nil {
			slog.Warn("markdown rendering failed", "error", err)
			return template.HTML(template.HTMLEscapeString(src))
		}
		return out
	}
	funcs["sanitize"] = util.SanitizeHTML
	funcs["stripTags"] = util.StripTags
	funcs["categoryProgress"] = cms.CategoryProgress
	funcs["langURL"] = LangURL
	funcs["editURL"] = EditURL
	funcs["isActive"] = IsActivePath
	funcs["isAdmin"] = func(c permission.Checker) bool {
		return c.IsRole(permission.RoleAdmin) || c.IsRole(permission.RoleSuperAdmin)
	}
	funcs["roleLabel"] = func(lang string, role permission.Role) string {
		key := "roles." + string(role)
		if label := i18n.T(lang, key); label != key {
			return label
		}
		return string(role)
	}
	funcs["version"] = func() string { return r.version }
	funcs["otherLang"] = OtherLanguage

	for name, fn := range r.extraFuncs {
		funcs[name] = fn
	}
	return funcs
}

// LangURL returns p with the lang query parameter set.
func LangURL(p, lang string) string {
	u, err := url.Parse(p)
	if err != nil {
		return p
	}
	q := u.Query()
	q.Set("lang", lang)
	u.RawQuery = q.Encode()
	return u.String()
}

// EditURL returns p with edit mode turned on or off.
func EditURL(p string, on bool) string {
	u, err := url.Parse(p)
	if err != nil {
		return p
	}
	q := u.Query()
	if on {
		q.Set(editmode.QueryParam, "on")
	} else {
		q.Del(editmode.QueryParam)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// IsActivePath reports whether a nav item for target should be highlighted
// on current. The root only matches itself.
func IsActivePath(current, target string) bool {
	current, _, _ = strings.Cut(current, "?")
	if target == "/" {
		return current == "/"
	}
	return current == target || strings.HasPrefix(current, target+"/")
}

// OtherLanguage returns the language the switcher offers.
func OtherLanguage(lang string) string {
	for _, l := range i18n.SupportedLanguages {
		if l != lang {
			return l
		}
	}
	return lang
}

// TemplateData holds data passed to page templates.
type TemplateData struct {
	Title       string
	Description string
	Data        any

	Flash     string
	FlashType string

	CurrentYear int
	Lang        string
	// Path is the request URI, used for nav highlighting and the language
	// and edit-mode links.
	Path string

	User     *backend.User
	Checker  permission.Checker
	Settings *backend.Settings

	// EditMode is on for this request; CanEdit means the toggle is offered.
	EditMode bool
	CanEdit  bool

	Breadcrumbs []uikit.Breadcrumb

	// Image and OGType override the social preview of the page. NoIndex
	// keeps it out of search engines.
	Image   string
	OGType  string
	NoIndex bool
	Meta    seo.Meta
	JSONLD  template.JS
}

// Render renders a page template with status 200.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, name string, data TemplateData) error {
	return r.RenderStatus(w, req, http.StatusOK, name, data)
}

// RenderStatus renders a page template with the given status. The page is
// rendered into a buffer first, so a template error leaves w untouched.
func (r *Renderer) RenderStatus(w http.ResponseWriter, req *http.Request, status int, name string, data TemplateData) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	r.fill(req, &data)

	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, "base", data); err != nil {
		return fmt.Errorf("executing template %s: %w", name, err)
	}
	out := blankLinesRegex.ReplaceAll(buf.Bytes(), []byte("\n"))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := w.Write(out)
	return err
}

// fill adds the per-request defaults to data.
func (r *Renderer) fill(req *http.Request, data *TemplateData) {
	ctx := req.Context()

	data.CurrentYear = time.Now().Year()
	if data.Lang == "" {
		data.Lang = middleware.GetLang(req)
	}
	if data.Path == "" {
		data.Path = req.URL.RequestURI()
	}
	if data.User == nil {
		data.User = middleware.GetUser(req)
	}
	data.Checker = middleware.GetChecker(req)
	data.EditMode = editmode.Enabled(ctx)
	data.CanEdit = guard.Permission(permission.UpdateContent).Allows(data.Checker)

	if data.Settings == nil && r.settings != nil {
		st, err := r.settings(ctx)
		if err != nil {
			slog.DebugContext(ctx, "layout settings unavailable", "error", err)
		} else {
			data.Settings = st
		}
	}

	p := req.URL.Path
	data.Meta = seo.BuildMeta(seo.PageData{
		Title:       data.Title,
		Description: data.Description,
		Path:        p,
		Image:       data.Image,
		Type:        data.OGType,
		NoIndex:     data.NoIndex || strings.HasPrefix(p, "/admin") || strings.HasPrefix(p, "/auth"),
	}, seo.SiteConfigFrom(data.Settings, r.siteURL))
	if data.JSONLD == "" && p == "/" {
		data.JSONLD = seo.BuildPersonSchema(data.Settings, r.siteURL)
	}

	if r.sessionManager != nil && data.Flash == "" {
		data.Flash, data.FlashType = session.PopFlash(ctx, r.sessionManager)
	}
}

// SetFlash sets a flash message in the session.
func (r *Renderer) SetFlash(req *http.Request, message, flashType string) {
	if r.sessionManager != nil {
		session.SetFlash(req.Context(), r.sessionManager, message, flashType)
	}
}

// ErrorData is the Data of the error page.
type ErrorData struct {
	Status  int
	Message string
}

// RenderError renders the error page, falling back to plain text when the
// page itself cannot be rendered.
func (r *Renderer) RenderError(w http.ResponseWriter, req *http.Request, status int, message string) {
	lang := middleware.GetLang(req)
	if message == "" {
		message = http.StatusText(status)
	}
	data := TemplateData{
		Title: i18n.T(lang, "error.title"),
		Data:  ErrorData{Status: status, Message: message},
	}
	if err := r.RenderStatus(w, req, status, "public/error", data); err != nil {
		slog.ErrorContext(req.Context(), "rendering error page failed", "error", err)
		http.Error(w, message, status)
	}
}
