// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/alexedwards/scs/v2"
	"golang.org/x/sync/singleflight"

	"github.com/olegiv/folio-go/internal/auth"
	"github.com/olegiv/folio-go/internal/backend"
	"github.com/olegiv/folio-go/internal/cms"
	"github.com/olegiv/folio-go/internal/guard"
	"github.com/olegiv/folio-go/internal/i18n"
	"github.com/olegiv/folio-go/internal/permission"
	"github.com/olegiv/folio-go/internal/session"
	"github.com/olegiv/folio-go/internal/store"
)

// LoginPath is where unauthenticated visitors of protected pages are sent.
const LoginPath = "/auth/login"

// AuthConfig configures LoadAuth.
type AuthConfig struct {
	Sessions *scs.SessionManager
	Client   *backend.Client
	// Group deduplicates concurrent revalidations of the same token.
	Group *singleflight.Group
	// Revalidate is how long a validated session is trusted before the
	// token is checked against the backend again.
	Revalidate time.Duration
}

// LoadAuth restores the auth store from the session and puts it, the
// per-user backend client and the section renderer's viewer into the
// request context. Stale sessions are revalidated; a rejected token signs
// the session out with a flash message.
func LoadAuth(cfg AuthConfig) func(http.Handler) http.Handler {
	group := cfg.Group
	if group == nil {
		group = &singleflight.Group{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			lang := GetLang(r)

			s := auth.NewStore(auth.ClientAPI{Client: cfg.Client},
				auth.WithGroup(group),
				auth.WithPersister(session.NewAuthPersister(cfg.Sessions)),
				auth.WithLoginFailedMessage(i18n.T(lang, "auth.login_failed")),
			)
			if err := s.Load(ctx); err != nil {
				slog.WarnContext(ctx, "auth session snapshot unreadable", "error", err)
			}

			if s.IsAuthenticated() && time.Since(session.ValidatedAt(ctx, cfg.Sessions)) >= cfg.Revalidate {
				ok, checked := s.CheckSession(ctx)
				switch {
				case ok && checked:
					session.MarkValidated(ctx, cfg.Sessions, time.Now())
				case !s.IsAuthenticated():
					session.SetFlash(ctx, cfg.Sessions, i18n.T(lang, "auth.session_expired"), "warning")
				}
			}

			next.ServeHTTP(w, r.WithContext(WithAuth(ctx, s, cfg.Client, lang)))
		})
	}
}

// WithAuth returns ctx carrying s, a client bound to its token and the
// matching viewer.
func WithAuth(ctx context.Context, s *auth.Store, client *backend.Client, lang string) context.Context {
	if tok := s.Token(); tok != "" {
		client = client.WithToken(tok)
	}
	ctx = context.WithValue(ctx, ContextKeyAuth, s)
	ctx = backend.NewContext(ctx, client)
	return cms.WithViewer(ctx, cms.Viewer{Checker: s.Checker(), Lang: lang})
}

// RequireAuth redirects anonymous visitors to the login page, remembering
// where they were going.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetUser(r) == nil {
			http.Redirect(w, r, loginRedirect(r), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePermission requires the signed-in user to hold p.
func RequirePermission(p permission.Permission) func(http.Handler) http.Handler {
	return RequireGuard(guard.Permission(p))
}

// RequireAnyPermission requires at least one of perms.
func RequireAnyPermission(perms ...permission.Permission) func(http.Handler) http.Handler {
	return RequireGuard(guard.AnyOf(perms...))
}

// RequireRole requires the signed-in user to have exactly role.
func RequireRole(role permission.Role) func(http.Handler) http.Handler {
	return RequireGuard(guard.Role(role))
}

// RequireGuard answers 403 when g denies the signed-in user. Anonymous
// visitors are sent to the login page. Denials are logged at WARN, which
// also lands them in the event log.
func RequireGuard(g guard.Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r)
			if user == nil {
				http.Redirect(w, r, loginRedirect(r), http.StatusSeeOther)
				return
			}

			if !g.Allows(user.Checker()) {
				slog.WarnContext(r.Context(), "access denied",
					"category", store.EventCategoryAuth,
					"status", http.StatusForbidden,
					"method", r.Method,
					"user_id", user.ID,
					"user_role", user.Role,
					"required_role", g.Role,
					"required_permission", g.Permission,
					"ip", getClientIP(r),
				)
				http.Error(w, i18n.T(GetLang(r), "error.forbidden"), http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func loginRedirect(r *http.Request) string {
	return LoginPath + "?next=" + url.QueryEscape(r.URL.RequestURI())
}
