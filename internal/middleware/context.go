// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, and request context handling.
package middleware

import (
	"context"
	"net/http"

	"github.com/olegiv/folio-go/internal/auth"
	"github.com/olegiv/folio-go/internal/backend"
	"github.com/olegiv/folio-go/internal/i18n"
	"github.com/olegiv/folio-go/internal/logging"
	"github.com/olegiv/folio-go/internal/permission"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys for request data.
const (
	ContextKeyAuth ContextKey = "auth"
	ContextKeyLang ContextKey = "lang"
)

// RequestPath stores the request path in the context for the logging
// handler.
func RequestPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(logging.WithPath(r.Context(), r.URL.Path)))
	})
}

// GetAuth returns the auth store loaded for this request, or nil.
func GetAuth(r *http.Request) *auth.Store {
	s, _ := r.Context().Value(ContextKeyAuth).(*auth.Store)
	return s
}

// GetUser returns the signed-in user, or nil.
func GetUser(r *http.Request) *backend.User {
	if s := GetAuth(r); s != nil && s.IsAuthenticated() {
		return s.User()
	}
	return nil
}

// GetUserIDPtr returns a pointer to the signed-in user's ID, or nil.
// Useful for optional user ID parameters in event logging.
func GetUserIDPtr(r *http.Request) *int64 {
	if u := GetUser(r); u != nil {
		id := u.ID
		return &id
	}
	return nil
}

// GetChecker returns the permission checker of the signed-in user. An
// anonymous request gets a checker that denies everything.
func GetChecker(r *http.Request) permission.Checker {
	if s := GetAuth(r); s != nil {
		return s.Checker()
	}
	return permission.Checker{}
}

// GetClient returns the backend client for this request, authenticated
// when the user is signed in.
func GetClient(r *http.Request, fallback *backend.Client) *backend.Client {
	return backend.FromContext(r.Context(), fallback)
}

// GetLang returns the request language, defaulting to the site default.
func GetLang(r *http.Request) string {
	return langFrom(r.Context())
}

func langFrom(ctx context.Context) string {
	if lang, ok := ctx.Value(ContextKeyLang).(string); ok && lang != "" {
		return lang
	}
	return i18n.Default()
}

// ClientIP returns the client address without port.
func ClientIP(r *http.Request) string {
	return getClientIP(r)
}
