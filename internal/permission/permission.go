// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package permission defines user roles, permission tokens and the
// membership queries used to gate admin features.
package permission

// Role is a named bundle of permissions assigned by the backend.
type Role string

// Roles known to the portfolio backend.
const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleEditor     Role = "editor"
	RoleViewer     Role = "viewer"
)

// Roles lists every role, most privileged first.
var Roles = []Role{RoleSuperAdmin, RoleAdmin, RoleEditor, RoleViewer}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// Permission is an opaque capability token.
type Permission string

// User permissions.
const (
	CreateUser  Permission = "create_user"
	ReadUser    Permission = "read_user"
	UpdateUser  Permission = "update_user"
	DeleteUser  Permission = "delete_user"
	ManageRoles Permission = "manage_roles"
)

// Project permissions.
const (
	CreateProject  Permission = "create_project"
	ReadProject    Permission = "read_project"
	UpdateProject  Permission = "update_project"
	DeleteProject  Permission = "delete_project"
	PublishProject Permission = "publish_project"
)

// CV and file permissions.
const (
	UpdateCV      Permission = "update_cv"
	GenerateCVPDF Permission = "generate_cv_pdf"
	UploadFile    Permission = "upload_file"
	DeleteFile    Permission = "delete_file"
)

// CMS content permissions.
const (
	CreateContent Permission = "create_content"
	ReadContent   Permission = "read_content"
	UpdateContent Permission = "update_content"
	DeleteContent Permission = "delete_content"
)

// System permissions.
const (
	ViewAnalytics  Permission = "view_analytics"
	ManageSettings Permission = "manage_settings"
)

var rolePermissions = map[Role][]Permission{
	RoleSuperAdmin: {
		CreateUser, ReadUser, UpdateUser, DeleteUser, ManageRoles,
		CreateProject, ReadProject, UpdateProject, DeleteProject, PublishProject,
		UpdateCV, GenerateCVPDF,
		UploadFile, DeleteFile,
		CreateContent, ReadContent, UpdateContent, DeleteContent,
		ViewAnalytics, ManageSettings,
	},
	RoleAdmin: {
		CreateUser, ReadUser, UpdateUser,
		CreateProject, ReadProject, UpdateProject, DeleteProject, PublishProject,
		UpdateCV, GenerateCVPDF,
		UploadFile, DeleteFile,
		CreateContent, ReadContent, UpdateContent, DeleteContent,
		ViewAnalytics,
	},
	RoleEditor: {
		ReadUser,
		CreateProject, ReadProject, UpdateProject,
		UpdateCV, GenerateCVPDF,
		UploadFile,
		CreateContent, ReadContent, UpdateContent,
	},
	RoleViewer: {
		ReadUser,
		ReadProject,
		ReadContent,
		ViewAnalytics,
	},
}

// ForRole returns the static permission bundle of a role. It mirrors the
// backend mapping and is used for display only; the permissions carried on
// a user are authoritative.
func ForRole(r Role) Set {
	return NewSet(rolePermissions[r]...)
}
