// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route path constants for public routes.
const (
	RouteRoot     = "/"
	RouteAbout    = "/about"
	RouteProjects = "/projects"
	RouteContact  = "/contact"
	RoutePrivacy  = "/privacy"
	RouteTerms    = "/terms"
	RouteCV       = "/cv/download"
	RouteSitemap  = "/sitemap.xml"
	RouteRobots   = "/robots.txt"
	RouteLogin    = "/auth/login"
	RouteLogout   = "/auth/logout"
)

// Route path constants for admin routes.
const (
	RouteAdmin         = "/admin"
	RouteAdminProjects = "/admin/projects"
	RouteAdminSettings = "/admin/settings"
	RouteAdminUsers    = "/admin/users"
	RouteAdminRoles    = "/admin/roles"
	RouteAdminEvents   = "/admin/events"
	RouteAdminCMS      = "/admin/cms"
	RouteAdminCache    = "/admin/cache/clear"
	RouteAdminJobs     = "/admin/jobs"
)

// Route parameter names.
const (
	ParamID      = "id"
	ParamSlug    = "slug"
	ParamPage    = "page"
	ParamSection = "section"
	ParamName    = "name"
)

// Route suffixes.
const (
	RouteSuffixNew    = "/new"
	RouteSuffixEdit   = "/edit"
	RouteSuffixDelete = "/delete"
	RouteSuffixMove   = "/move"
	RouteSuffixReload = "/reload"
	RouteSuffixReset  = "/reset"
	RouteSuffixSeed   = "/seed"
	RouteSuffixRun    = "/run"
)

// Route patterns for chi.
const (
	RouteParamID      = "/{" + ParamID + "}"
	RouteParamSlug    = "/{" + ParamSlug + "}"
	RouteParamPage    = "/{" + ParamPage + "}"
	RouteParamSection = "/{" + ParamSection + "}"
	RouteParamName    = "/{" + ParamName + "}"
)

// CMS page keys served by the public site.
const (
	PageHome    = "home"
	PageAbout   = "about"
	PageContact = "contact"
	PagePrivacy = "privacy"
	PageTerms   = "terms"
)

// PublicPageKeys lists the CMS pages of the public site, in menu order.
var PublicPageKeys = []string{PageHome, PageAbout, PageContact, PagePrivacy, PageTerms}

// Pagination defaults.
const (
	ProjectsPerPage = 12
	AdminPerPage    = 20
	EventsPerPage   = 25
	FeaturedLimit   = 6
)

// Flash types understood by the layout.
const (
	flashTypeSuccess = "success"
	flashTypeError   = "error"
	flashTypeWarning = "warning"
	flashTypeInfo    = "info"
)
