// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/folio-go/internal/handler"
	"github.com/olegiv/folio-go/internal/middleware"
	"github.com/olegiv/folio-go/internal/permission"
)

// crudRoutes groups the handlers and permissions of an admin resource.
type crudRoutes struct {
	read, create, update, delete permission.Permission

	list   http.HandlerFunc
	form   http.HandlerFunc
	store  http.HandlerFunc
	edit   http.HandlerFunc
	save   http.HandlerFunc
	remove http.HandlerFunc
}

// registerCRUD registers list, create, edit and delete routes relative to r.
// HTML forms can't send PUT or DELETE, so updates and deletes are POSTs.
func registerCRUD(r chi.Router, h crudRoutes) {
	byID := handler.RouteParamID

	r.With(middleware.RequirePermission(h.read)).Get("/", h.list)
	r.With(middleware.RequirePermission(h.create)).Get(handler.RouteSuffixNew, h.form)
	r.With(middleware.RequirePermission(h.create)).Post("/", h.store)
	r.With(middleware.RequirePermission(h.update)).Get(byID+handler.RouteSuffixEdit, h.edit)
	r.With(middleware.RequirePermission(h.update)).Post(byID+handler.RouteSuffixEdit, h.save)
	r.With(middleware.RequirePermission(h.delete)).Post(byID+handler.RouteSuffixDelete, h.remove)
}

// registerCMSRoutes registers the section editor. Static segments are
// registered next to the {page} parameter; chi matches them first.
func registerCMSRoutes(r chi.Router, h *handler.CMSHandler) {
	page := handler.RouteParamPage
	section := page + handler.RouteParamSection

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequirePermission(permission.ReadContent))
		r.Get("/", h.Index)
		r.Get("/templates", h.Templates)
		r.Get(page, h.Page)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequirePermission(permission.CreateContent))
		r.Post(handler.RouteSuffixSeed, h.Seed)
		r.Post(page, h.CreateSection)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequirePermission(permission.UpdateContent))
		r.Post(page+handler.RouteSuffixReload, h.ReloadPage)
		r.Get(section+handler.RouteSuffixEdit, h.EditSection)
		r.Post(section+handler.RouteSuffixEdit, h.UpdateSection)
		r.Post(section+handler.RouteSuffixMove, h.MoveSection)
	})

	r.With(middleware.RequirePermission(permission.DeleteContent)).
		Post(section+handler.RouteSuffixDelete, h.DeleteSection)
}
