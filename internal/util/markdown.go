// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"bytes"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

	// htmlSanitizer allows the tags user-authored content needs and strips
	// scripts, event handlers and the like.
	htmlSanitizer = bluemonday.UGCPolicy()

	// stripPolicy removes every tag.
	stripPolicy = bluemonday.StrictPolicy()
)

// RenderMarkdown converts markdown to sanitized HTML. Raw HTML in the
// source is dropped by goldmark before sanitizing.
func RenderMarkdown(src string) (template.HTML, error) {
	if src == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(htmlSanitizer.SanitizeBytes(buf.Bytes())), nil //nolint:gosec // sanitized above
}

// SanitizeHTML returns s with unsafe markup removed.
func SanitizeHTML(s string) template.HTML {
	return template.HTML(htmlSanitizer.Sanitize(s)) //nolint:gosec // sanitized
}

// StripTags returns the text of s without any markup.
func StripTags(s string) string {
	return stripPolicy.Sanitize(s)
}
