// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cms

import (
	"context"
	"log/slog"
	"sort"

	"github.com/olegiv/folio-go/internal/backend"
)

// SectionSource lists the sections of a page. PageSections is the
// privileged view; PublicPage is the anonymous one.
type SectionSource interface {
	PageSections(ctx context.Context, pageKey string, activeOnly bool) ([]backend.Section, error)
	PublicPage(ctx context.Context, pageKey string) (*backend.PublicPage, error)
}

// SectionLoader loads the ordered sections of a page.
type SectionLoader struct {
	src    SectionSource
	logger *slog.Logger
}

// NewSectionLoader creates a loader over src.
func NewSectionLoader(src SectionSource, logger *slog.Logger) *SectionLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &SectionLoader{src: src, logger: logger}
}

// Load returns the sections of pageKey sorted by order_index, keeping the
// source order for ties. In edit mode the privileged endpoint is tried
// first and the public page is the single fallback. A failed public fetch
// yields an empty list.
func (l *SectionLoader) Load(ctx context.Context, pageKey string, editMode bool) []backend.Section {
	if editMode {
		sections, err := l.src.PageSections(ctx, pageKey, true)
		if err == nil {
			return sortSections(sections)
		}
		l.logger.WarnContext(ctx, "failed to load page sections, using public content",
			"page", pageKey, "error", err)
	}

	page, err := l.src.PublicPage(ctx, pageKey)
	if err != nil {
		l.logger.WarnContext(ctx, "failed to load public page content",
			"page", pageKey, "error", err)
		return []backend.Section{}
	}
	return sortSections(page.SectionsOf())
}

func sortSections(sections []backend.Section) []backend.Section {
	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].OrderIndex < sections[j].OrderIndex
	})
	return sections
}
