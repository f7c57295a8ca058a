// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/olegiv/folio-go/internal/i18n"
	"github.com/olegiv/folio-go/internal/middleware"
	"github.com/olegiv/folio-go/internal/session"
	"github.com/olegiv/folio-go/internal/store"
)

// AuthHandler handles authentication routes.
type AuthHandler struct {
	Deps
	loginProtection *middleware.LoginProtection
}

// NewAuthHandler creates a new AuthHandler. lp may be nil.
func NewAuthHandler(d Deps, lp *middleware.LoginProtection) *AuthHandler {
	return &AuthHandler{Deps: d, loginProtection: lp}
}

// LoginData is the Data of the login page.
type LoginData struct {
	Email string
	Next  string
}

// LoginForm renders the login page. Signed-in users are sent on.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	next := safeRedirect(r.URL.Query().Get("next"), RouteAdmin)
	if middleware.GetUser(r) != nil {
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}

	lang := middleware.GetLang(r)
	renderPage(w, r, h.Renderer, "auth/login", pageData(i18n.T(lang, "auth.login_title"), LoginData{Next: next}))
}

// Login handles the login form submission.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)
	if !parseFormOrRedirect(w, r, h.Renderer, RouteLogin) {
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	next := safeRedirect(r.FormValue("next"), RouteAdmin)
	retry := RouteLogin + "?next=" + url.QueryEscape(next)

	if email == "" || password == "" {
		flashError(w, r, h.Renderer, retry, i18n.T(lang, "auth.email_password_required"))
		return
	}

	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsLocked(email); locked {
			h.logEvent(r, store.EventLevelWarning, store.EventCategoryAuth, "login attempt on locked account", map[string]any{"email": email})
			flashError(w, r, h.Renderer, retry, i18n.T(lang, "auth.account_locked", formatDuration(remaining)))
			return
		}
	}

	s := middleware.GetAuth(r)
	if s == nil {
		slog.ErrorContext(r.Context(), "login without auth store in context")
		flashError(w, r, h.Renderer, retry, i18n.T(lang, "error.generic"))
		return
	}

	if !s.Login(r.Context(), email, password) {
		h.logEvent(r, store.EventLevelWarning, store.EventCategoryAuth, "login failed", map[string]any{"email": email})
		msg := s.Error()
		if h.loginProtection != nil {
			if locked, lock := h.loginProtection.RecordFailure(email); locked {
				msg = i18n.T(lang, "auth.account_locked", formatDuration(lock))
			} else if remaining := h.loginProtection.RemainingAttempts(email); remaining <= 2 {
				msg = i18n.T(lang, "auth.attempts_remaining", msg, remaining)
			}
		}
		flashError(w, r, h.Renderer, retry, msg)
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccess(email)
	}
	session.MarkValidated(r.Context(), h.Sessions, time.Now())

	user := s.User()
	slog.InfoContext(r.Context(), "user logged in", "user_id", user.ID, "role", user.Role)
	h.logEvent(r, store.EventLevelInfo, store.EventCategoryAuth, "user logged in", map[string]any{"email": user.Email, "user_id": user.ID})

	flashSuccess(w, r, h.Renderer, next, i18n.T(lang, "auth.welcome", user.Name))
}

// Logout signs the session out. The backend call is best effort.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)

	if s := middleware.GetAuth(r); s != nil && s.IsAuthenticated() {
		user := s.User()
		h.logEvent(r, store.EventLevelInfo, store.EventCategoryAuth, "user logged out", map[string]any{"email": user.Email, "user_id": user.ID})
		s.Logout(r.Context())
	}

	flashAndRedirect(w, r, h.Renderer, RouteRoot, i18n.T(lang, "auth.logged_out"), flashTypeInfo)
}

// formatDuration renders a lockout duration for humans.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	switch {
	case d >= time.Hour:
		h := int(d.Hours())
		m := int(d.Minutes()) % 60
		if m == 0 {
			return fmt.Sprintf("%dh", h)
		}
		return fmt.Sprintf("%dh %dm", h, m)
	case d >= time.Minute:
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		if s == 0 {
			return fmt.Sprintf("%dm", m)
		}
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", max(int(d.Seconds()), 1))
	}
}
