// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package guard

import (
	"bytes"
	"html/template"
	"testing"

	"github.com/olegiv/folio-go/internal/permission"
)

func adminWithAB() permission.Checker {
	return permission.NewChecker(permission.RoleAdmin, []string{"create_project", "update_project"})
}

func TestAllows(t *testing.T) {
	admin := adminWithAB()
	anon := permission.Checker{}

	tests := []struct {
		name  string
		guard Guard
		c     permission.Checker
		want  bool
	}{
		{"empty guard", Guard{}, anon, true},
		{"single permission held", Permission(permission.CreateProject), admin, true},
		{"single permission missing", Permission(permission.DeleteProject), admin, false},
		{"all held", AllOf(permission.CreateProject, permission.UpdateProject), admin, true},
		{"all partly held", AllOf(permission.CreateProject, permission.DeleteProject), admin, false},
		{"any held", AnyOf(permission.DeleteProject, permission.UpdateProject), admin, true},
		{"any none held", AnyOf(permission.DeleteProject, permission.ManageRoles), admin, false},
		{"role mismatch wins over permissions", Guard{Role: permission.RoleSuperAdmin, Permission: permission.CreateProject}, admin, false},
		{"role match then permission", Guard{Role: permission.RoleAdmin, Permission: permission.CreateProject}, admin, true},
		{"role match permission missing", Guard{Role: permission.RoleAdmin, Permission: permission.ManageRoles}, admin, false},
		{"single permission beats list", Guard{Permission: permission.CreateProject, Permissions: []permission.Permission{permission.ManageRoles}, RequireAll: true}, admin, true},
		{"anonymous denied", Permission(permission.ReadContent), anon, false},
		{"anonymous role denied", Role(permission.RoleViewer), anon, false},
		{"empty all list vacuous", Guard{Permissions: []permission.Permission{}, RequireAll: true}, anon, true},
		{"empty any list vacuous false", Guard{Permissions: []permission.Permission{}}, admin, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.guard.Allows(tt.c); got != tt.want {
				t.Errorf("Allows() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSuperAdminRoleGuardRejectsAdminRegardlessOfPermissions(t *testing.T) {
	all := make([]string, 0)
	for _, p := range permission.ForRole(permission.RoleSuperAdmin).List() {
		all = append(all, string(p))
	}
	admin := permission.NewChecker(permission.RoleAdmin, all)

	g := Role(permission.RoleSuperAdmin)
	if got := g.Render(admin, "secret", "fallback"); got != "fallback" {
		t.Errorf("Render() = %q, want fallback", got)
	}
}

func TestRenderAndDenied(t *testing.T) {
	g := Permission(permission.UpdateContent)
	editor := permission.NewChecker(permission.RoleEditor, []string{"update_content"})
	viewer := permission.NewChecker(permission.RoleViewer, []string{"read_content"})

	if got := g.Render(editor, "edit", ""); got != "edit" {
		t.Errorf("Render(editor) = %q, want edit", got)
	}
	if got := g.Render(viewer, "edit", ""); got != "" {
		t.Errorf("Render(viewer) = %q, want empty", got)
	}
	if got := g.Denied(viewer, "access denied", "edit"); got != "access denied" {
		t.Errorf("Denied(viewer) = %q, want access denied", got)
	}
	if got := g.Denied(editor, "access denied", "edit"); got != "edit" {
		t.Errorf("Denied(editor) = %q, want edit", got)
	}
}

func TestFuncMap(t *testing.T) {
	tmpl := template.Must(template.New("t").Funcs(FuncMap()).Parse(
		`{{if can . "update_project"}}U{{end}}` +
			`{{if canAll . "create_project" "update_project"}}A{{end}}` +
			`{{if canAny . "delete_project" "manage_roles"}}X{{end}}` +
			`{{if isRole . "admin"}}R{{end}}`))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, adminWithAB()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if buf.String() != "UAR" {
		t.Errorf("output = %q, want UAR", buf.String())
	}
}

func TestFuncMap_CannotShowsNoticeToDeniedUsers(t *testing.T) {
	tmpl := template.Must(template.New("t").Funcs(FuncMap()).Parse(
		`{{cannot . "update_content" "Read <only>"}}`))

	tests := []struct {
		name    string
		checker permission.Checker
		want    string
	}{
		{"viewer", permission.NewChecker(permission.RoleViewer, []string{"read_content"}), `<p class="alert alert-info">Read &lt;only&gt;</p>`},
		{"editor", permission.NewChecker(permission.RoleEditor, []string{"update_content"}), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tmpl.Execute(&buf, tt.checker); err != nil {
				t.Fatalf("Execute: %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("output = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}
