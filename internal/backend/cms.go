// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package backend

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// PublicPage returns the active sections of a page without
// authentication. A page without content answers 404.
func (c *Client) PublicPage(ctx context.Context, pageKey string) (*PublicPage, error) {
	var page PublicPage
	if err := c.get(ctx, fmt.Sprintf("/cms/pages/%s/public", pathEscape(pageKey)), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// PublicSection returns a single active section without authentication.
func (c *Client) PublicSection(ctx context.Context, pageKey, sectionKey string) (*PublicSection, error) {
	var s PublicSection
	p := fmt.Sprintf("/cms/sections/%s/%s/public", pathEscape(pageKey), pathEscape(sectionKey))
	if err := c.get(ctx, p, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// AvailablePages lists the pages that carry CMS sections.
func (c *Client) AvailablePages(ctx context.Context) ([]PageInfo, error) {
	var pages []PageInfo
	if err := c.get(ctx, "/cms/pages", nil, &pages); err != nil {
		return nil, err
	}
	return pages, nil
}

// PageSections lists a page's sections including inactive ones unless
// activeOnly is set.
func (c *Client) PageSections(ctx context.Context, pageKey string, activeOnly bool) ([]Section, error) {
	q := url.Values{}
	if activeOnly {
		q.Set("active_only", strconv.FormatBool(true))
	}
	var sections []Section
	if err := c.get(ctx, fmt.Sprintf("/cms/pages/%s/sections", pathEscape(pageKey)), q, &sections); err != nil {
		return nil, err
	}
	return sections, nil
}

// GetSection returns a section with its privileged fields.
func (c *Client) GetSection(ctx context.Context, pageKey, sectionKey string) (*Section, error) {
	var s Section
	if err := c.get(ctx, sectionPath(pageKey, sectionKey), nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateSection creates a section.
func (c *Client) CreateSection(ctx context.Context, in SectionCreate) (*Section, error) {
	var s Section
	if err := c.post(ctx, "/cms/sections", in, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateSection applies a partial update to a section.
func (c *Client) UpdateSection(ctx context.Context, pageKey, sectionKey string, in SectionUpdate) (*Section, error) {
	var s Section
	if err := c.put(ctx, sectionPath(pageKey, sectionKey), in, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteSection removes a section.
func (c *Client) DeleteSection(ctx context.Context, pageKey, sectionKey string) error {
	return c.delete(ctx, sectionPath(pageKey, sectionKey))
}

// ReorderSection swaps a section with its neighbour in direction dir.
func (c *Client) ReorderSection(ctx context.Context, pageKey, sectionKey string, dir Direction) (*Section, error) {
	var s Section
	body := map[string]string{"direction": string(dir)}
	if err := c.patch(ctx, sectionPath(pageKey, sectionKey)+"/reorder", body, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// CMSStats returns content counters.
func (c *Client) CMSStats(ctx context.Context) (*CMSStats, error) {
	var st CMSStats
	if err := c.get(ctx, "/cms/stats", nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// SeedDefaultContent asks the API to create its default sections. It is
// a no-op on the server once content exists.
func (c *Client) SeedDefaultContent(ctx context.Context) ([]Section, error) {
	var sections []Section
	if err := c.post(ctx, "/cms/seed", nil, &sections); err != nil {
		return nil, err
	}
	return sections, nil
}

func sectionPath(pageKey, sectionKey string) string {
	return fmt.Sprintf("/cms/sections/%s/%s", pathEscape(pageKey), pathEscape(sectionKey))
}
