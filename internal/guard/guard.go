// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package guard decides whether a piece of UI is shown to the current user.
package guard

import (
	"html/template"

	"github.com/olegiv/folio-go/internal/permission"
)

// Guard describes the access criteria for a piece of UI. A zero Guard
// allows everyone.
type Guard struct {
	// Role, when set, must match exactly. A mismatch denies regardless of
	// the permission criteria.
	Role permission.Role

	// Permission is checked when set; Permissions is ignored in that case.
	Permission permission.Permission

	// Permissions is checked with HasAll when RequireAll is set, otherwise
	// with HasAny.
	Permissions []permission.Permission
	RequireAll  bool
}

// Allows reports whether c satisfies the guard.
func (g Guard) Allows(c permission.Checker) bool {
	if g.Role != "" && !c.IsRole(g.Role) {
		return false
	}

	switch {
	case g.Permission != "":
		return c.HasPermission(g.Permission)
	case g.Permissions != nil:
		if g.RequireAll {
			return c.HasAllPermissions(g.Permissions...)
		}
		return c.HasAnyPermission(g.Permissions...)
	}
	return true
}

// Render returns children when the guard allows c, otherwise fallback.
func (g Guard) Render(c permission.Checker, children, fallback template.HTML) template.HTML {
	if g.Allows(c) {
		return children
	}
	return fallback
}

// Denied is Render with children and fallback swapped: children are shown
// only to users the guard rejects.
func (g Guard) Denied(c permission.Checker, children, fallback template.HTML) template.HTML {
	return g.Render(c, fallback, children)
}

// Permission returns a guard for a single permission.
func Permission(p permission.Permission) Guard {
	return Guard{Permission: p}
}

// AnyOf returns a guard that needs at least one of perms.
func AnyOf(perms ...permission.Permission) Guard {
	return Guard{Permissions: perms}
}

// AllOf returns a guard that needs every one of perms.
func AllOf(perms ...permission.Permission) Guard {
	return Guard{Permissions: perms, RequireAll: true}
}

// Role returns a guard for an exact role.
func Role(r permission.Role) Guard {
	return Guard{Role: r}
}

// FuncMap exposes guard checks to templates:
//
//	{{if can .Checker "update_content"}}...{{end}}
//	{{if canAny .Checker "create_project" "update_project"}}...{{end}}
//	{{cannot .Checker "update_content" (T .Lang "cms.read_only")}}
//
// cannot renders its notice, escaped and wrapped in an alert paragraph,
// only for users lacking the permission.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"can": func(c permission.Checker, p string) bool {
			return Permission(permission.Permission(p)).Allows(c)
		},
		"canAll": func(c permission.Checker, perms ...string) bool {
			return AllOf(toPermissions(perms)...).Allows(c)
		},
		"canAny": func(c permission.Checker, perms ...string) bool {
			return AnyOf(toPermissions(perms)...).Allows(c)
		},
		"isRole": func(c permission.Checker, r string) bool {
			return Role(permission.Role(r)).Allows(c)
		},
		"cannot": func(c permission.Checker, p, notice string) template.HTML {
			alert := template.HTML(`<p class="alert alert-info">` + template.HTMLEscapeString(notice) + `</p>`)
			return Permission(permission.Permission(p)).Denied(c, alert, "")
		},
	}
}

func toPermissions(raw []string) []permission.Permission {
	out := make([]permission.Permission, len(raw))
	for i, p := range raw {
		out[i] = permission.Permission(p)
	}
	return out
}
