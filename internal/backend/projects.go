// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package backend

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

func (q ProjectQuery) values() url.Values {
	v := url.Values{}
	if q.Skip > 0 {
		v.Set("skip", strconv.Itoa(q.Skip))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.FeaturedOnly {
		v.Set("featured_only", "true")
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.IncludeUnpublished {
		v.Set("include_unpublished", "true")
	}
	return v
}

// ListProjects returns projects matching q.
func (c *Client) ListProjects(ctx context.Context, q ProjectQuery) ([]Project, error) {
	var projects []Project
	if err := c.get(ctx, "/projects/", q.values(), &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// FeaturedProjects returns up to limit featured projects.
func (c *Client) FeaturedProjects(ctx context.Context, limit int) ([]Project, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	var projects []Project
	if err := c.get(ctx, "/projects/featured", q, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// GetProject returns a project by numeric id or slug.
func (c *Client) GetProject(ctx context.Context, identifier string) (*Project, error) {
	var p Project
	if err := c.get(ctx, "/projects/"+pathEscape(identifier), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ProjectStats returns project counters.
func (c *Client) ProjectStats(ctx context.Context) (*ProjectStats, error) {
	var st ProjectStats
	if err := c.get(ctx, "/projects/stats", nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// CreateProject creates a project.
func (c *Client) CreateProject(ctx context.Context, in ProjectInput) (*Project, error) {
	var p Project
	if err := c.post(ctx, "/projects/", in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProject replaces a project's editable fields.
func (c *Client) UpdateProject(ctx context.Context, id int64, in ProjectInput) (*Project, error) {
	var p Project
	if err := c.put(ctx, fmt.Sprintf("/projects/%d", id), in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteProject removes a project.
func (c *Client) DeleteProject(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/projects/%d", id))
}
