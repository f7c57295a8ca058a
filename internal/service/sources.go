// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"net/http"

	"github.com/olegiv/folio-go/internal/backend"
	"github.com/olegiv/folio-go/internal/cache"
)

// Sources serves page content to the section renderer. It lives for the
// whole process: privileged reads use the client carried by the request
// context, anonymous reads go through the content cache.
type Sources struct {
	client  *backend.Client
	content *cache.Content
}

// NewSources creates a Sources. content may be nil.
func NewSources(client *backend.Client, content *cache.Content) *Sources {
	return &Sources{client: client, content: content}
}

// PageSections lists a page's sections with the caller's credentials.
func (s *Sources) PageSections(ctx context.Context, pageKey string, activeOnly bool) ([]backend.Section, error) {
	return backend.FromContext(ctx, s.client).PageSections(ctx, pageKey, activeOnly)
}

// PublicPage returns the active sections of a page.
func (s *Sources) PublicPage(ctx context.Context, pageKey string) (*backend.PublicPage, error) {
	load := func() (*backend.PublicPage, error) { return s.client.PublicPage(ctx, pageKey) }
	if s.content == nil {
		return load()
	}
	return s.content.PublicPage(ctx, pageKey, load)
}

// PublicSection returns one active section, taken from the page it
// belongs to so that a page render costs a single backend read.
func (s *Sources) PublicSection(ctx context.Context, pageKey, sectionKey string) (*backend.PublicSection, error) {
	page, err := s.PublicPage(ctx, pageKey)
	if err != nil {
		return nil, err
	}
	for i := range page.Sections {
		if page.Sections[i].SectionKey == sectionKey {
			sec := page.Sections[i]
			return &sec, nil
		}
	}
	return nil, &backend.APIError{StatusCode: http.StatusNotFound}
}

// FeaturedProjects returns up to limit featured projects.
func (s *Sources) FeaturedProjects(ctx context.Context, limit int) ([]backend.Project, error) {
	load := func() ([]backend.Project, error) { return s.client.FeaturedProjects(ctx, limit) }
	if s.content == nil {
		return load()
	}
	return s.content.FeaturedProjects(ctx, limit, load)
}

// Warm preloads the public pages and settings into the cache.
func (s *Sources) Warm(ctx context.Context, pageKeys []string) error {
	if s.content == nil {
		return nil
	}
	for _, key := range pageKeys {
		if err := s.content.InvalidatePage(ctx, key); err != nil {
			return err
		}
		if _, err := s.PublicPage(ctx, key); err != nil && !backend.IsNotFound(err) {
			return err
		}
	}
	if err := s.content.InvalidateSettings(ctx); err != nil {
		return err
	}
	_, err := s.content.PublicSettings(ctx, func() (*backend.Settings, error) {
		return s.client.PublicSettings(ctx)
	})
	return err
}
