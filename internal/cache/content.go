// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/olegiv/folio-go/internal/backend"
)

// Key prefixes for anonymous backend reads.
const (
	prefixPage     = "page:"
	keySettings    = "settings:public"
	prefixProjects = "projects:"
)

// Content caches the anonymous backend reads that every public page makes.
// Privileged reads are never cached.
type Content struct {
	store    Cacher
	pages    *TypedCache[backend.PublicPage]
	settings *TypedCache[backend.Settings]
	lists    *TypedCache[[]backend.Project]
	projects *TypedCache[backend.Project]
}

// NewContent wraps store with typed caches using ttl.
func NewContent(store Cacher, ttl time.Duration) *Content {
	return &Content{
		store:    store,
		pages:    NewTypedCache[backend.PublicPage](store, ttl),
		settings: NewTypedCache[backend.Settings](store, ttl),
		lists:    NewTypedCache[[]backend.Project](store, ttl),
		projects: NewTypedCache[backend.Project](store, ttl),
	}
}

// PublicPage returns the cached public page or loads it with fn.
func (c *Content) PublicPage(ctx context.Context, pageKey string, fn func() (*backend.PublicPage, error)) (*backend.PublicPage, error) {
	return c.pages.GetOrSet(ctx, prefixPage+pageKey, fn)
}

// PublicSettings returns the cached public settings or loads them with fn.
func (c *Content) PublicSettings(ctx context.Context, fn func() (*backend.Settings, error)) (*backend.Settings, error) {
	return c.settings.GetOrSet(ctx, keySettings, fn)
}

// FeaturedProjects returns the cached featured list for limit.
func (c *Content) FeaturedProjects(ctx context.Context, limit int, fn func() ([]backend.Project, error)) ([]backend.Project, error) {
	return c.projectList(ctx, prefixProjects+"featured:"+strconv.Itoa(limit), fn)
}

// PublishedProjects returns the cached published list identified by key
// (typically the encoded query).
func (c *Content) PublishedProjects(ctx context.Context, key string, fn func() ([]backend.Project, error)) ([]backend.Project, error) {
	return c.projectList(ctx, prefixProjects+"list:"+key, fn)
}

// Project returns the cached project for a slug or id.
func (c *Content) Project(ctx context.Context, identifier string, fn func() (*backend.Project, error)) (*backend.Project, error) {
	return c.projects.GetOrSet(ctx, prefixProjects+"item:"+identifier, fn)
}

func (c *Content) projectList(ctx context.Context, key string, fn func() ([]backend.Project, error)) ([]backend.Project, error) {
	list, err := c.lists.GetOrSet(ctx, key, func() (*[]backend.Project, error) {
		items, err := fn()
		if err != nil {
			return nil, err
		}
		return &items, nil
	})
	if err != nil {
		return nil, err
	}
	return *list, nil
}

// InvalidatePage drops the cached public view of one page.
func (c *Content) InvalidatePage(ctx context.Context, pageKey string) error {
	return c.store.Delete(ctx, prefixPage+pageKey)
}

// InvalidatePages drops every cached page.
func (c *Content) InvalidatePages(ctx context.Context) error {
	return c.store.DeleteByPrefix(ctx, prefixPage)
}

// InvalidateSettings drops the cached public settings.
func (c *Content) InvalidateSettings(ctx context.Context) error {
	return c.store.Delete(ctx, keySettings)
}

// InvalidateProjects drops every cached project list and project.
func (c *Content) InvalidateProjects(ctx context.Context) error {
	return c.store.DeleteByPrefix(ctx, prefixProjects)
}

// InvalidateAll empties the cache.
func (c *Content) InvalidateAll(ctx context.Context) error {
	return c.store.Clear(ctx)
}

// Stats returns the backing cache statistics when it tracks them.
func (c *Content) Stats() (Stats, bool) {
	sp, ok := c.store.(StatsProvider)
	if !ok {
		return Stats{}, false
	}
	return sp.Stats(), true
}
