// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/olegiv/folio-go/internal/backend"
	"github.com/olegiv/folio-go/internal/cache"
)

// ProjectStore holds the projects fetched during one request.
// Anonymous reads go through the content cache; writes invalidate it.
type ProjectStore struct {
	status

	client  *backend.Client
	content *cache.Content

	projects []backend.Project
	featured []backend.Project
	current  *backend.Project
	stats    *backend.ProjectStats
}

// NewProjectStore creates a store bound to client. content may be nil.
func NewProjectStore(client *backend.Client, content *cache.Content, lang string) *ProjectStore {
	return &ProjectStore{
		status:  status{lang: lang},
		client:  client,
		content: content,
	}
}

// cached reports whether reads may use the shared cache.
func (s *ProjectStore) cached() bool {
	return s.content != nil && s.client.Token() == ""
}

// FetchProjects loads the project list matching q.
func (s *ProjectStore) FetchProjects(ctx context.Context, q backend.ProjectQuery) ([]backend.Project, error) {
	s.begin()

	load := func() ([]backend.Project, error) { return s.client.ListProjects(ctx, q) }
	var (
		projects []backend.Project
		err      error
	)
	if s.cached() && !q.IncludeUnpublished {
		projects, err = s.content.PublishedProjects(ctx, queryKey(q), load)
	} else {
		projects, err = load()
	}

	s.end(err, "projects.fetch_failed")
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.projects = projects
	s.mu.Unlock()
	return projects, nil
}

// FetchFeatured loads up to limit featured projects.
func (s *ProjectStore) FetchFeatured(ctx context.Context, limit int) ([]backend.Project, error) {
	s.begin()

	load := func() ([]backend.Project, error) { return s.client.FeaturedProjects(ctx, limit) }
	var (
		projects []backend.Project
		err      error
	)
	if s.cached() {
		projects, err = s.content.FeaturedProjects(ctx, limit, load)
	} else {
		projects, err = load()
	}

	s.end(err, "projects.fetch_failed")
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.featured = projects
	s.mu.Unlock()
	return projects, nil
}

// FetchProject loads a project by numeric id or slug and makes it current.
func (s *ProjectStore) FetchProject(ctx context.Context, identifier string) (*backend.Project, error) {
	s.begin()

	load := func() (*backend.Project, error) { return s.client.GetProject(ctx, identifier) }
	var (
		p   *backend.Project
		err error
	)
	if s.cached() {
		p, err = s.content.Project(ctx, identifier, load)
	} else {
		p, err = load()
	}

	s.end(err, "projects.fetch_one_failed")
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.current = p
	s.mu.Unlock()
	return p, nil
}

// FetchStats loads the project counters.
func (s *ProjectStore) FetchStats(ctx context.Context) (*backend.ProjectStats, error) {
	s.begin()
	st, err := s.client.ProjectStats(ctx)
	s.end(err, "projects.stats_failed")
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.stats = st
	s.mu.Unlock()
	return st, nil
}

// Create adds a project and prepends it to the loaded list.
func (s *ProjectStore) Create(ctx context.Context, in backend.ProjectInput) (*backend.Project, error) {
	s.begin()
	p, err := s.client.CreateProject(ctx, in)
	s.end(err, "projects.create_failed")
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.projects = append([]backend.Project{*p}, s.projects...)
	s.mu.Unlock()
	s.invalidate(ctx)
	return p, nil
}

// Update replaces a project and refreshes it in the loaded state.
func (s *ProjectStore) Update(ctx context.Context, id int64, in backend.ProjectInput) (*backend.Project, error) {
	s.begin()
	p, err := s.client.UpdateProject(ctx, id, in)
	s.end(err, "projects.update_failed")
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	for i := range s.projects {
		if s.projects[i].ID == id {
			s.projects[i] = *p
		}
	}
	if s.current != nil && s.current.ID == id {
		s.current = p
	}
	s.mu.Unlock()
	s.invalidate(ctx)
	return p, nil
}

// Delete removes a project from the backend and the loaded state.
func (s *ProjectStore) Delete(ctx context.Context, id int64) error {
	s.begin()
	err := s.client.DeleteProject(ctx, id)
	s.end(err, "projects.delete_failed")
	if err != nil {
		return err
	}
	s.mu.Lock()
	kept := s.projects[:0]
	for _, p := range s.projects {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.projects = kept
	if s.current != nil && s.current.ID == id {
		s.current = nil
	}
	s.mu.Unlock()
	s.invalidate(ctx)
	return nil
}

func (s *ProjectStore) invalidate(ctx context.Context) {
	if s.content == nil {
		return
	}
	if err := s.content.InvalidateProjects(ctx); err != nil {
		slog.Warn("cache invalidation failed", "scope", "projects", "error", err)
	}
}

// Projects returns the last loaded list.
func (s *ProjectStore) Projects() []backend.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projects
}

// Featured returns the last loaded featured list.
func (s *ProjectStore) Featured() []backend.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.featured
}

// Current returns the last loaded single project.
func (s *ProjectStore) Current() *backend.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Stats returns the last loaded counters.
func (s *ProjectStore) Stats() *backend.ProjectStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func queryKey(q backend.ProjectQuery) string {
	return fmt.Sprintf("%d:%d:%s:%s", q.Skip, q.Limit, strconv.FormatBool(q.FeaturedOnly), q.Search)
}
