// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/olegiv/folio-go/internal/backend"
	"github.com/olegiv/folio-go/internal/i18n"
	"github.com/olegiv/folio-go/internal/middleware"
	"github.com/olegiv/folio-go/internal/permission"
	"github.com/olegiv/folio-go/internal/store"
	"github.com/olegiv/folio-go/internal/uikit"
)

// minPasswordLength is the shortest password accepted by the user form.
const minPasswordLength = 8

// UsersHandler handles user management routes.
type UsersHandler struct {
	Deps
}

// NewUsersHandler creates a new UsersHandler.
func NewUsersHandler(d Deps) *UsersHandler {
	return &UsersHandler{Deps: d}
}

// UsersListData is the Data of the user list.
type UsersListData struct {
	Users      []backend.User
	Error      string
	CurrentID  int64
	Pagination uikit.Pagination
}

// UserForm holds the submitted user form values.
type UserForm struct {
	Email       string
	Name        string
	Role        permission.Role
	IsActive    bool
	Bio         string
	AvatarURL   string
	GithubURL   string
	LinkedinURL string
	TwitterURL  string
	WebsiteURL  string
}

// UserFormData is the Data of the user form.
type UserFormData struct {
	Form UserForm
	// ID is zero for a new user.
	ID     int64
	Roles  []permission.Role
	Errors FormErrors
	// CanChangeRole is false when editing oneself or without manage_roles.
	CanChangeRole bool
}

// IsEdit reports whether the form edits an existing user.
func (d UserFormData) IsEdit() bool {
	return d.ID != 0
}

// RoleInfoRow is one role of the roles page.
type RoleInfoRow struct {
	Role        permission.Role
	Name        string
	Permissions []permission.Permission
}

// RolesData is the Data of the roles page.
type RolesData struct {
	Roles []RoleInfoRow
	Error string
}

// List handles GET /admin/users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)
	page := uikit.ParsePageParam(r)

	us := h.users(r)
	users, err := us.FetchUsers(r.Context(), uikit.Offset(page, AdminPerPage), AdminPerPage)

	data := UsersListData{
		Users:      users,
		Pagination: uikit.BuildOpenPagination(page, AdminPerPage, len(users) == AdminPerPage, RouteAdminUsers, r.URL.Query()),
	}
	if u := middleware.GetUser(r); u != nil {
		data.CurrentID = u.ID
	}
	if err != nil {
		data.Error = us.Error()
	}

	td := pageData(i18n.T(lang, "nav.users"), data)
	td.Breadcrumbs = uikit.Crumbs(
		i18n.T(lang, "nav.dashboard"), RouteAdmin,
		i18n.T(lang, "nav.users"), RouteAdminUsers,
	)
	renderPage(w, r, h.Renderer, "admin/users_list", td)
}

// NewForm handles GET /admin/users/new.
func (h *UsersHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, UserFormData{
		Form:          UserForm{Role: permission.RoleViewer, IsActive: true},
		CanChangeRole: true,
	})
}

// Create handles POST /admin/users.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.Renderer, RouteAdminUsers+RouteSuffixNew) {
		return
	}
	lang := middleware.GetLang(r)

	form := parseUserForm(r)
	password := r.FormValue("password")

	v := newValidator(lang)
	v.required("email", form.Email)
	v.email("email", form.Email)
	v.required("name", form.Name)
	v.required("password", password)
	v.minLength("password", password, minPasswordLength)
	h.validateProfile(v, form)
	if !form.Role.Valid() {
		v.fail("role", "validation.choice")
	}

	data := UserFormData{Form: form, CanChangeRole: true}
	if !v.valid() {
		data.Errors = v.errors
		h.renderForm(w, r, http.StatusUnprocessableEntity, data)
		return
	}

	us := h.users(r)
	u, err := us.Create(r.Context(), backend.UserCreate{
		Email:       form.Email,
		Name:        form.Name,
		Password:    password,
		Role:        form.Role,
		Bio:         form.Bio,
		AvatarURL:   form.AvatarURL,
		GithubURL:   form.GithubURL,
		LinkedinURL: form.LinkedinURL,
		TwitterURL:  form.TwitterURL,
		WebsiteURL:  form.WebsiteURL,
	})
	if err != nil {
		data.Errors = FormErrors{"_": us.Error()}
		h.renderForm(w, r, backendFormStatus(err), data)
		return
	}

	h.logEvent(r, store.EventLevelInfo, store.EventCategoryUser, "user created", map[string]any{"user_id": u.ID, "email": u.Email, "role": u.Role})
	flashSuccess(w, r, h.Renderer, RouteAdminUsers, i18n.T(lang, "users.created"))
}

// EditForm handles GET /admin/users/{id}/edit.
func (h *UsersHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, h.Renderer, "users.not_found")
	if !ok {
		return
	}
	us := h.users(r)
	u, ok := requireWithRedirect(w, r, h.Renderer, RouteAdminUsers, us.Error, func() (*backend.User, error) {
		return us.FetchUser(r.Context(), id)
	})
	if !ok {
		return
	}
	h.renderForm(w, r, http.StatusOK, UserFormData{
		Form:          userFormFrom(u),
		ID:            u.ID,
		CanChangeRole: h.canChangeRole(r, u.ID),
	})
}

// Update handles POST /admin/users/{id}/edit.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, h.Renderer, "users.not_found")
	if !ok {
		return
	}
	if !parseFormOrRedirect(w, r, h.Renderer, fmt.Sprintf("%s/%d%s", RouteAdminUsers, id, RouteSuffixEdit)) {
		return
	}
	lang := middleware.GetLang(r)

	form := parseUserForm(r)
	password := r.FormValue("password")
	canChangeRole := h.canChangeRole(r, id)

	v := newValidator(lang)
	v.required("name", form.Name)
	v.minLength("password", password, minPasswordLength)
	h.validateProfile(v, form)
	if canChangeRole && !form.Role.Valid() {
		v.fail("role", "validation.choice")
	}

	data := UserFormData{Form: form, ID: id, CanChangeRole: canChangeRole}
	if !v.valid() {
		data.Errors = v.errors
		h.renderForm(w, r, http.StatusUnprocessableEntity, data)
		return
	}

	in := backend.UserUpdate{
		Name:        &form.Name,
		Bio:         &form.Bio,
		AvatarURL:   &form.AvatarURL,
		GithubURL:   &form.GithubURL,
		LinkedinURL: &form.LinkedinURL,
		TwitterURL:  &form.TwitterURL,
		WebsiteURL:  &form.WebsiteURL,
	}
	if canChangeRole {
		in.Role = &form.Role
		in.IsActive = &form.IsActive
	}
	if password != "" {
		in.Password = &password
	}

	us := h.users(r)
	if _, err := us.Update(r.Context(), id, in); err != nil {
		data.Errors = FormErrors{"_": us.Error()}
		h.renderForm(w, r, backendFormStatus(err), data)
		return
	}

	meta := map[string]any{"user_id": id, "password_changed": password != ""}
	if in.Role != nil {
		meta["role"] = *in.Role
	}
	h.logEvent(r, store.EventLevelInfo, store.EventCategoryUser, "user updated", meta)

	// The header and permission checks read the session's cached user.
	if s := middleware.GetAuth(r); s != nil && s.IsAuthenticated() && s.User().ID == id {
		if err := s.GetCurrentUser(r.Context()); err != nil {
			slog.WarnContext(r.Context(), "refreshing own profile failed", "user_id", id, "error", err)
			flashAndRedirect(w, r, h.Renderer, RouteLogin, i18n.T(lang, "auth.session_expired"), flashTypeWarning)
			return
		}
	}
	flashSuccess(w, r, h.Renderer, RouteAdminUsers, i18n.T(lang, "users.updated"))
}

// Delete handles POST /admin/users/{id}/delete. Users cannot delete
// themselves.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, h.Renderer, "users.not_found")
	if !ok {
		return
	}
	lang := middleware.GetLang(r)

	if u := middleware.GetUser(r); u != nil && u.ID == id {
		flashError(w, r, h.Renderer, RouteAdminUsers, i18n.T(lang, "users.cannot_delete_self"))
		return
	}

	us := h.users(r)
	if err := us.Delete(r.Context(), id); err != nil {
		flashError(w, r, h.Renderer, RouteAdminUsers, us.Error())
		return
	}

	h.logEvent(r, store.EventLevelWarning, store.EventCategoryUser, "user deleted", map[string]any{"user_id": id})
	flashSuccess(w, r, h.Renderer, RouteAdminUsers, i18n.T(lang, "users.deleted"))
}

// Roles handles GET /admin/roles. The permission bundles come from the
// backend when it answers and from the built-in mapping otherwise.
func (h *UsersHandler) Roles(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)

	var data RolesData
	us := h.users(r)
	remote, err := us.FetchRoles(r.Context())
	if err != nil {
		slog.WarnContext(r.Context(), "fetching roles failed, using built-in mapping", "category", store.EventCategoryUser, "error", err)
		data.Error = us.Error()
	}
	data.Roles = roleRows(remote)

	td := pageData(i18n.T(lang, "nav.roles"), data)
	td.Breadcrumbs = uikit.Crumbs(
		i18n.T(lang, "nav.dashboard"), RouteAdmin,
		i18n.T(lang, "nav.roles"), RouteAdminRoles,
	)
	renderPage(w, r, h.Renderer, "admin/roles", td)
}

// roleRows lists every known role with its permissions. Backend entries
// override the built-in bundle of the same role.
func roleRows(remote []backend.RoleInfo) []RoleInfoRow {
	byValue := make(map[permission.Role]backend.RoleInfo, len(remote))
	for _, ri := range remote {
		byValue[permission.Role(ri.Value)] = ri
	}

	rows := make([]RoleInfoRow, 0, len(permission.Roles))
	for _, role := range permission.Roles {
		row := RoleInfoRow{Role: role, Name: string(role)}
		if ri, ok := byValue[role]; ok {
			if ri.Name != "" {
				row.Name = ri.Name
			}
			row.Permissions = permission.FromStrings(ri.Permissions).List()
		} else {
			row.Permissions = permission.ForRole(role).List()
		}
		rows = append(rows, row)
	}
	return rows
}

// canChangeRole reports whether the current user may change the role and
// active flag of user id.
func (h *UsersHandler) canChangeRole(r *http.Request, id int64) bool {
	u := middleware.GetUser(r)
	if u == nil || u.ID == id {
		return false
	}
	return u.Checker().HasPermission(permission.ManageRoles) || u.Checker().IsRole(permission.RoleSuperAdmin)
}

func (h *UsersHandler) validateProfile(v *validator, form UserForm) {
	v.maxLength("bio", form.Bio, 1000)
	v.url("avatar_url", form.AvatarURL)
	v.url("github_url", form.GithubURL)
	v.url("linkedin_url", form.LinkedinURL)
	v.url("twitter_url", form.TwitterURL)
	v.url("website_url", form.WebsiteURL)
}

func (h *UsersHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, data UserFormData) {
	lang := middleware.GetLang(r)
	data.Roles = permission.Roles

	title := i18n.T(lang, "users.new")
	if data.IsEdit() {
		title = i18n.T(lang, "users.edit")
	}
	td := pageData(title, data)
	td.Breadcrumbs = uikit.Crumbs(
		i18n.T(lang, "nav.dashboard"), RouteAdmin,
		i18n.T(lang, "nav.users"), RouteAdminUsers,
		title, "",
	)
	renderPageStatus(w, r, h.Renderer, status, "admin/users_form", td)
}

func parseUserForm(r *http.Request) UserForm {
	return UserForm{
		Email:       strings.TrimSpace(r.FormValue("email")),
		Name:        strings.TrimSpace(r.FormValue("name")),
		Role:        permission.Role(r.FormValue("role")),
		IsActive:    r.FormValue("is_active") != "",
		Bio:         strings.TrimSpace(r.FormValue("bio")),
		AvatarURL:   strings.TrimSpace(r.FormValue("avatar_url")),
		GithubURL:   strings.TrimSpace(r.FormValue("github_url")),
		LinkedinURL: strings.TrimSpace(r.FormValue("linkedin_url")),
		TwitterURL:  strings.TrimSpace(r.FormValue("twitter_url")),
		WebsiteURL:  strings.TrimSpace(r.FormValue("website_url")),
	}
}

func userFormFrom(u *backend.User) UserForm {
	return UserForm{
		Email:       u.Email,
		Name:        u.Name,
		Role:        u.Role,
		IsActive:    u.IsActive,
		Bio:         u.Bio,
		AvatarURL:   u.AvatarURL,
		GithubURL:   u.GithubURL,
		LinkedinURL: u.LinkedinURL,
		TwitterURL:  u.TwitterURL,
		WebsiteURL:  u.WebsiteURL,
	}
}
