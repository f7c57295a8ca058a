// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/mail"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/olegiv/folio-go/internal/i18n"
	"github.com/olegiv/folio-go/internal/util"
)

// FormErrors maps form field names to localized messages.
type FormErrors map[string]string

// Has reports whether field has an error.
func (e FormErrors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// validator collects localized field errors.
type validator struct {
	lang   string
	errors FormErrors
}

func newValidator(lang string) *validator {
	return &validator{lang: lang, errors: make(FormErrors)}
}

func (v *validator) fail(field, key string, args ...any) {
	if _, ok := v.errors[field]; !ok {
		v.errors[field] = i18n.T(v.lang, key, args...)
	}
}

func (v *validator) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.fail(field, "validation.field_required")
	}
}

func (v *validator) minLength(field, value string, n int) {
	if value != "" && utf8.RuneCountInString(strings.TrimSpace(value)) < n {
		v.fail(field, "validation.min_length", n)
	}
}

func (v *validator) maxLength(field, value string, n int) {
	if utf8.RuneCountInString(value) > n {
		v.fail(field, "validation.max_length", n)
	}
}

func (v *validator) email(field, value string) {
	if value == "" {
		return
	}
	if _, err := mail.ParseAddress(value); err != nil || strings.ContainsAny(value, "<> ") {
		v.fail(field, "validation.email")
	}
}

// url accepts empty values and absolute http(s) URLs. Relative paths are
// accepted too since the backend serves uploads under its own prefix.
func (v *validator) url(field, value string) {
	if value == "" || strings.HasPrefix(value, "/") {
		return
	}
	u, err := url.Parse(value)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		v.fail(field, "validation.url")
	}
}

func (v *validator) slug(field, value string) {
	if msg := validateSlugFormat(v.lang, value); msg != "" {
		v.errors[field] = msg
	}
}

func (v *validator) valid() bool {
	return len(v.errors) == 0
}

// validateSlugFormat checks that slug is non-empty and well formed.
// Returns an empty string if valid, or a localized message.
func validateSlugFormat(lang, slug string) string {
	if slug == "" {
		return i18n.T(lang, "validation.field_required")
	}
	if !util.IsValidSlug(slug) {
		return i18n.T(lang, "validation.slug")
	}
	return ""
}

// resolveSlug returns the submitted slug, or one derived from title when
// the field was left blank.
func resolveSlug(slug, title string) string {
	if slug = strings.TrimSpace(slug); slug != "" {
		return slug
	}
	return util.Slugify(title)
}
