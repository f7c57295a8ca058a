// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler provides the HTTP handlers of the public site and the
// admin area.
package handler

import (
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/folio-go/internal/backend"
	"github.com/olegiv/folio-go/internal/cache"
	"github.com/olegiv/folio-go/internal/cms"
	"github.com/olegiv/folio-go/internal/middleware"
	"github.com/olegiv/folio-go/internal/render"
	"github.com/olegiv/folio-go/internal/scheduler"
	"github.com/olegiv/folio-go/internal/service"
)

// JobRunner lists and triggers the scheduled jobs.
type JobRunner interface {
	Jobs() []scheduler.JobInfo
	Trigger(name string) error
}

// Deps holds the collaborators shared by the handlers.
type Deps struct {
	// Client is the anonymous backend client. Requests of signed-in users
	// use the token-bound copy carried by the request context.
	Client   *backend.Client
	Content  *cache.Content
	Renderer *render.Renderer
	Sections *cms.Renderer
	Sources  *service.Sources
	Events   *service.EventService
	Sessions *scs.SessionManager
	Jobs     JobRunner
	// SiteURL is the public base URL. Empty derives it from the request.
	SiteURL string
}

func (d Deps) client(r *http.Request) *backend.Client {
	return middleware.GetClient(r, d.Client)
}

func (d Deps) projects(r *http.Request) *service.ProjectStore {
	return service.NewProjectStore(d.client(r), d.Content, middleware.GetLang(r))
}

func (d Deps) settings(r *http.Request) *service.SettingsStore {
	return service.NewSettingsStore(d.client(r), d.Content, middleware.GetLang(r))
}

func (d Deps) users(r *http.Request) *service.UserStore {
	return service.NewUserStore(d.client(r), middleware.GetLang(r))
}

func (d Deps) cms(r *http.Request) *service.CMSStore {
	return service.NewCMSStore(d.client(r), d.Content, middleware.GetLang(r))
}

// logEvent records an audit event for the request. Failures are logged by
// the event service and otherwise ignored.
func (d Deps) logEvent(r *http.Request, level, category, message string, metadata map[string]any) {
	if d.Events == nil {
		return
	}
	_ = d.Events.Log(r.Context(), service.Event{
		Level:      level,
		Category:   category,
		Message:    message,
		UserID:     middleware.GetUserIDPtr(r),
		IPAddress:  middleware.ClientIP(r),
		RequestURL: r.URL.RequestURI(),
		Metadata:   metadata,
	})
}

// safeRedirect returns target when it is a local path, otherwise fallback.
func safeRedirect(target, fallback string) string {
	if target == "" || !strings.HasPrefix(target, "/") ||
		strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return fallback
	}
	return target
}
