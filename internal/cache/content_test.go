// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/folio-go/internal/backend"
)

func TestContent_PublicPageCachedUntilInvalidated(t *testing.T) {
	c := NewContent(newTestMemory(t, time.Hour, 0), time.Minute)
	ctx := context.Background()

	calls := 0
	load := func() (*backend.PublicPage, error) {
		calls++
		return &backend.PublicPage{PageKey: "home", Sections: []backend.PublicSection{{SectionKey: "hero"}}}, nil
	}

	for i := 0; i < 2; i++ {
		page, err := c.PublicPage(ctx, "home", load)
		require.NoError(t, err)
		assert.Equal(t, "hero", page.Sections[0].SectionKey)
	}
	assert.Equal(t, 1, calls)

	require.NoError(t, c.InvalidatePage(ctx, "home"))
	_, err := c.PublicPage(ctx, "home", load)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestContent_ProjectsInvalidation(t *testing.T) {
	c := NewContent(newTestMemory(t, time.Hour, 0), time.Minute)
	ctx := context.Background()

	listCalls, itemCalls := 0, 0
	list := func() ([]backend.Project, error) {
		listCalls++
		return []backend.Project{{ID: 1, Slug: "folio"}}, nil
	}
	item := func() (*backend.Project, error) {
		itemCalls++
		return &backend.Project{ID: 1, Slug: "folio"}, nil
	}

	featured, err := c.FeaturedProjects(ctx, 6, list)
	require.NoError(t, err)
	require.Len(t, featured, 1)
	_, _ = c.FeaturedProjects(ctx, 6, list)
	_, _ = c.PublishedProjects(ctx, "limit=100", list)
	_, _ = c.Project(ctx, "folio", item)
	_, _ = c.Project(ctx, "folio", item)
	assert.Equal(t, 2, listCalls)
	assert.Equal(t, 1, itemCalls)

	require.NoError(t, c.InvalidateProjects(ctx))
	_, _ = c.FeaturedProjects(ctx, 6, list)
	_, _ = c.Project(ctx, "folio", item)
	assert.Equal(t, 3, listCalls)
	assert.Equal(t, 2, itemCalls)
}

func TestContent_SettingsErrorsNotCached(t *testing.T) {
	c := NewContent(newTestMemory(t, time.Hour, 0), time.Minute)
	ctx := context.Background()

	_, err := c.PublicSettings(ctx, func() (*backend.Settings, error) {
		return nil, errors.New("backend down")
	})
	require.Error(t, err)

	s, err := c.PublicSettings(ctx, func() (*backend.Settings, error) {
		return &backend.Settings{SiteName: "Folio"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Folio", s.SiteName)

	require.NoError(t, c.InvalidateSettings(ctx))
	s, err = c.PublicSettings(ctx, func() (*backend.Settings, error) {
		return &backend.Settings{SiteName: "Renamed"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", s.SiteName)
}

func TestContent_InvalidateAllAndStats(t *testing.T) {
	c := NewContent(newTestMemory(t, time.Hour, 0), time.Minute)
	ctx := context.Background()

	_, _ = c.PublicPage(ctx, "about", func() (*backend.PublicPage, error) {
		return &backend.PublicPage{PageKey: "about"}, nil
	})

	st, ok := c.Stats()
	require.True(t, ok)
	assert.Equal(t, 1, st.Items)

	require.NoError(t, c.InvalidateAll(ctx))
	st, _ = c.Stats()
	assert.Equal(t, 0, st.Items)
}
