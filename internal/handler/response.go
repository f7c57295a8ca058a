// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/folio-go/internal/backend"
	"github.com/olegiv/folio-go/internal/i18n"
	"github.com/olegiv/folio-go/internal/middleware"
	"github.com/olegiv/folio-go/internal/render"
)

// flashAndRedirect sets a flash message and redirects to the given URL.
// Uses http.StatusSeeOther (303) for POST redirects.
func flashAndRedirect(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message, messageType string) {
	renderer.SetFlash(r, message, messageType)
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// flashError sets an error flash message and redirects to the given URL.
func flashError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	flashAndRedirect(w, r, renderer, url, message, flashTypeError)
}

// flashSuccess sets a success flash message and redirects to the given URL.
func flashSuccess(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	flashAndRedirect(w, r, renderer, url, message, flashTypeSuccess)
}

// parseFormOrRedirect parses the request form and redirects with an error
// message on failure.
func parseFormOrRedirect(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, redirectURL string) bool {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, renderer, redirectURL, i18n.T(middleware.GetLang(r), "validation.form"))
		return false
	}
	return true
}

// renderPage renders a page template and falls back to the error page when
// the template fails.
func renderPage(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, name string, data render.TemplateData) {
	renderPageStatus(w, r, renderer, http.StatusOK, name, data)
}

// renderPageStatus is renderPage with an explicit status, used for forms
// re-rendered with validation errors.
func renderPageStatus(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, status int, name string, data render.TemplateData) {
	if err := renderer.RenderStatus(w, r, status, name, data); err != nil {
		slog.ErrorContext(r.Context(), "render error", "template", name, "error", err)
		renderer.RenderError(w, r, http.StatusInternalServerError, i18n.T(middleware.GetLang(r), "error.generic"))
	}
}

// backendErrorStatus maps a backend failure onto the status shown to the
// visitor. Missing entities stay 404, permission errors 403, anything else
// is a gateway failure.
func backendErrorStatus(err error) int {
	switch {
	case backend.IsNotFound(err):
		return http.StatusNotFound
	case backend.IsForbidden(err), backend.IsUnauthorized(err):
		return http.StatusForbidden
	default:
		return http.StatusBadGateway
	}
}

// renderBackendError renders the error page for a failed backend read.
// message is the store's localized error.
func renderBackendError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, err error, message string) {
	status := backendErrorStatus(err)
	if status == http.StatusBadGateway {
		slog.ErrorContext(r.Context(), "backend request failed", "error", err)
	}
	renderer.RenderError(w, r, status, message)
}

// requireWithRedirect runs fn and, on failure, flashes the store message
// and redirects. Returns the value and true on success.
//
// Example usage:
//
//	project, ok := requireWithRedirect(w, r, h.renderer, RouteAdminProjects, store.Error,
//	    func() (*backend.Project, error) { return store.FetchProject(ctx, id) })
func requireWithRedirect[T any](
	w http.ResponseWriter,
	r *http.Request,
	renderer *render.Renderer,
	redirectURL string,
	message func() string,
	fn func() (T, error),
) (T, bool) {
	var zero T
	v, err := fn()
	if err != nil {
		if !backend.IsNotFound(err) {
			slog.ErrorContext(r.Context(), "backend request failed", "error", err, "redirect", redirectURL)
		}
		flashError(w, r, renderer, redirectURL, message())
		return zero, false
	}
	return v, true
}

// parseIDParam reads the numeric {id} route parameter. An invalid id
// renders the 404 page with the message for notFoundKey.
func parseIDParam(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, notFoundKey string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, ParamID), 10, 64)
	if err != nil || id <= 0 {
		renderer.RenderError(w, r, http.StatusNotFound, i18n.T(middleware.GetLang(r), notFoundKey))
		return 0, false
	}
	return id, true
}

// pageData builds the template data of a page.
func pageData(title string, data any) render.TemplateData {
	return render.TemplateData{Title: title, Data: data}
}
