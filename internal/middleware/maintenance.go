// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/olegiv/folio-go/internal/backend"
)

// SettingsFunc returns the public site settings.
type SettingsFunc func(ctx context.Context) (*backend.Settings, error)

// MaintenancePage writes the maintenance response.
type MaintenancePage func(w http.ResponseWriter, r *http.Request, message string)

// Maintenance answers anonymous visitors with the maintenance page while
// the site is in maintenance mode. Signed-in users and requests under the
// exempt path prefixes pass. When the settings cannot be loaded the site
// stays open. Must run after LoadAuth.
func Maintenance(settings SettingsFunc, page MaintenancePage, exempt ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, prefix := range exempt {
				if strings.HasPrefix(r.URL.Path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}
			if GetUser(r) != nil {
				next.ServeHTTP(w, r)
				return
			}

			st, err := settings(r.Context())
			if err != nil {
				slog.DebugContext(r.Context(), "maintenance check skipped", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !st.MaintenanceMode {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Retry-After", "3600")
			page(w, r, st.MaintenanceMessage)
		})
	}
}
