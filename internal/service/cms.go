// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"log/slog"

	"github.com/olegiv/folio-go/internal/backend"
	"github.com/olegiv/folio-go/internal/cache"
)

// CMSStore runs the privileged CMS operations of the admin area. Every
// write drops the cached public view of the affected page.
type CMSStore struct {
	status

	client  *backend.Client
	content *cache.Content

	pages    []backend.PageInfo
	sections []backend.Section
	stats    *backend.CMSStats
}

// NewCMSStore creates a store bound to client. content may be nil.
func NewCMSStore(client *backend.Client, content *cache.Content, lang string) *CMSStore {
	return &CMSStore{
		status:  status{lang: lang},
		client:  client,
		content: content,
	}
}

// FetchPages lists the editable pages.
func (s *CMSStore) FetchPages(ctx context.Context) ([]backend.PageInfo, error) {
	s.begin()
	pages, err := s.client.AvailablePages(ctx)
	s.end(err, "cms.load_failed")
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.pages = pages
	s.mu.Unlock()
	return pages, nil
}

// FetchSections lists every section of a page, inactive ones included.
func (s *CMSStore) FetchSections(ctx context.Context, pageKey string) ([]backend.Section, error) {
	s.begin()
	sections, err := s.client.PageSections(ctx, pageKey, false)
	s.end(err, "cms.load_failed")
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.sections = sections
	s.mu.Unlock()
	return sections, nil
}

// FetchSection loads one section.
func (s *CMSStore) FetchSection(ctx context.Context, pageKey, sectionKey string) (*backend.Section, error) {
	s.begin()
	sec, err := s.client.GetSection(ctx, pageKey, sectionKey)
	s.end(err, "cms.load_failed")
	return sec, err
}

// FetchStats loads the CMS summary.
func (s *CMSStore) FetchStats(ctx context.Context) (*backend.CMSStats, error) {
	s.begin()
	st, err := s.client.CMSStats(ctx)
	s.end(err, "cms.load_failed")
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.stats = st
	s.mu.Unlock()
	return st, nil
}

// Create adds a section.
func (s *CMSStore) Create(ctx context.Context, in backend.SectionCreate) (*backend.Section, error) {
	s.begin()
	sec, err := s.client.CreateSection(ctx, in)
	s.end(err, "cms.save_failed")
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, in.PageKey)
	return sec, nil
}

// Update applies a partial section update.
func (s *CMSStore) Update(ctx context.Context, pageKey, sectionKey string, in backend.SectionUpdate) (*backend.Section, error) {
	s.begin()
	sec, err := s.client.UpdateSection(ctx, pageKey, sectionKey, in)
	s.end(err, "cms.save_failed")
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, pageKey)
	return sec, nil
}

// Delete removes a section.
func (s *CMSStore) Delete(ctx context.Context, pageKey, sectionKey string) error {
	s.begin()
	err := s.client.DeleteSection(ctx, pageKey, sectionKey)
	s.end(err, "cms.delete_failed")
	if err != nil {
		return err
	}
	s.invalidate(ctx, pageKey)
	return nil
}

// Reorder moves a section one slot up or down.
func (s *CMSStore) Reorder(ctx context.Context, pageKey, sectionKey string, dir backend.Direction) error {
	s.begin()
	_, err := s.client.ReorderSection(ctx, pageKey, sectionKey, dir)
	s.end(err, "cms.reorder_failed")
	if err != nil {
		return err
	}
	s.invalidate(ctx, pageKey)
	return nil
}

// Seed installs the backend's default content and returns the created
// sections.
func (s *CMSStore) Seed(ctx context.Context) ([]backend.Section, error) {
	s.begin()
	sections, err := s.client.SeedDefaultContent(ctx)
	s.end(err, "cms.save_failed")
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, "")
	return sections, nil
}

// invalidate drops one cached page, or all of them for an empty key.
func (s *CMSStore) invalidate(ctx context.Context, pageKey string) {
	if s.content == nil {
		return
	}
	var err error
	if pageKey == "" {
		err = s.content.InvalidatePages(ctx)
	} else {
		err = s.content.InvalidatePage(ctx, pageKey)
	}
	if err != nil {
		slog.Warn("cache invalidation failed", "scope", "pages", "page", pageKey, "error", err)
	}
}

// Pages returns the last loaded page list.
func (s *CMSStore) Pages() []backend.PageInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pages
}

// Sections returns the last loaded section list.
func (s *CMSStore) Sections() []backend.Section {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sections
}

// Stats returns the last loaded summary.
func (s *CMSStore) Stats() *backend.CMSStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}
