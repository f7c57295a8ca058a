// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"

	"github.com/olegiv/folio-go/internal/editmode"
	"github.com/olegiv/folio-go/internal/guard"
	"github.com/olegiv/folio-go/internal/permission"
)

// EditMode gives every request a fresh edit-mode state, off by default.
// ?edit=on turns it on for users who may update content; everyone else
// silently stays in view mode. Must run after LoadAuth.
func EditMode(next http.Handler) http.Handler {
	editors := guard.Permission(permission.UpdateContent)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := &editmode.State{}
		if r.URL.Query().Get(editmode.QueryParam) == "on" && editors.Allows(GetChecker(r)) {
			state.Set(true)
		}
		next.ServeHTTP(w, r.WithContext(editmode.NewContext(r.Context(), state)))
	})
}
