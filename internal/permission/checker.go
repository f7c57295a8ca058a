// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package permission

// Checker answers permission questions for the current user. The zero
// value represents an anonymous visitor: every check fails except
// HasAllPermissions with no arguments.
type Checker struct {
	role  Role
	perms Set
}

// NewChecker builds a checker from a user's role and server-resolved
// permission strings.
func NewChecker(role Role, perms []string) Checker {
	return Checker{role: role, perms: FromStrings(perms)}
}

// Role returns the user's role, or "" for anonymous visitors.
func (c Checker) Role() Role {
	return c.role
}

// Permissions returns the user's permission set.
func (c Checker) Permissions() Set {
	return c.perms
}

// HasPermission reports whether the user holds p.
func (c Checker) HasPermission(p Permission) bool {
	return c.perms.Has(p)
}

// HasAllPermissions reports whether the user holds every permission given.
func (c Checker) HasAllPermissions(perms ...Permission) bool {
	return c.perms.HasAll(perms...)
}

// HasAnyPermission reports whether the user holds at least one permission.
func (c Checker) HasAnyPermission(perms ...Permission) bool {
	return c.perms.HasAny(perms...)
}

// IsRole reports whether the user's role equals r.
func (c Checker) IsRole(r Role) bool {
	return c.role != "" && c.role == r
}

// CanEdit reports whether the user holds any update permission.
func (c Checker) CanEdit() bool {
	return c.HasAnyPermission(UpdateProject, UpdateCV, UpdateContent, UpdateUser)
}

// CanCreate reports whether the user holds any create permission.
func (c Checker) CanCreate() bool {
	return c.HasAnyPermission(CreateProject, CreateContent, CreateUser)
}

// CanDelete reports whether the user holds any delete permission.
func (c Checker) CanDelete() bool {
	return c.HasAnyPermission(DeleteProject, DeleteContent, DeleteUser, DeleteFile)
}

// IsViewerOnly reports whether the user can only read.
func (c Checker) IsViewerOnly() bool {
	return c.role == RoleViewer || (!c.CanEdit() && !c.CanCreate() && !c.CanDelete())
}
