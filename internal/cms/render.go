// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cms

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"log/slog"

	"github.com/olegiv/folio-go/internal/backend"
	"github.com/olegiv/folio-go/internal/editmode"
	"github.com/olegiv/folio-go/internal/guard"
	"github.com/olegiv/folio-go/internal/i18n"
	"github.com/olegiv/folio-go/internal/permission"
)

// Template names looked up in the section template set.
const (
	containerTemplate = "section-container"
	layoutPrefix      = "layout-"
)

// FeaturedSource loads the featured projects.
type FeaturedSource interface {
	FeaturedProjects(ctx context.Context, limit int) ([]backend.Project, error)
}

// Viewer carries what the renderer needs to know about the request.
type Viewer struct {
	Checker permission.Checker
	Lang    string
}

type viewerKey struct{}

// WithViewer returns ctx carrying v.
func WithViewer(ctx context.Context, v Viewer) context.Context {
	return context.WithValue(ctx, viewerKey{}, v)
}

// ViewerFrom returns the Viewer in ctx; anonymous in the default language
// when unset.
func ViewerFrom(ctx context.Context) Viewer {
	if v, ok := ctx.Value(viewerKey{}).(Viewer); ok {
		return v
	}
	return Viewer{Lang: i18n.Default()}
}

// SectionView is the data passed to section templates.
type SectionView struct {
	PageKey string
	Section backend.Section
	Layout  Layout
	Index   int
	Total   int

	EditMode    bool
	CanEdit     bool
	CanDelete   bool
	CanMoveUp   bool
	CanMoveDown bool

	Lang string

	// Inner is the rendered layout, set for the container template.
	Inner template.HTML
}

// RendererConfig holds the renderer's collaborators.
type RendererConfig struct {
	// Templates must define "section-container" and one "layout-<kind>"
	// per Layout kind.
	Templates *template.Template
	Sections  SectionSource
	Hero      SectionFetcher
	Featured  FeaturedSource
	Logger    *slog.Logger
}

// Renderer renders the CMS sections of a page.
type Renderer struct {
	tmpl     *template.Template
	loader   *SectionLoader
	hero     SectionFetcher
	featured FeaturedSource
	logger   *slog.Logger
}

// NewRenderer creates a Renderer.
func NewRenderer(cfg RendererConfig) *Renderer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		tmpl:     cfg.Templates,
		loader:   NewSectionLoader(cfg.Sections, logger),
		hero:     cfg.Hero,
		featured: cfg.Featured,
		logger:   logger,
	}
}

// Render writes the sections of pageKey in order. Output is buffered, so
// nothing reaches w until every section has been loaded and rendered.
// Edit controls appear only when edit mode is on and the viewer holds
// update_content.
func (r *Renderer) Render(ctx context.Context, w io.Writer, pageKey string) error {
	viewer := ViewerFrom(ctx)
	edit := editmode.Enabled(ctx)
	canEdit := edit && guard.Permission(permission.UpdateContent).Allows(viewer.Checker)
	canDelete := canEdit && viewer.Checker.HasPermission(permission.DeleteContent)

	sections := r.loader.Load(ctx, pageKey, edit)

	var buf bytes.Buffer
	for i, s := range sections {
		layout := r.hydrate(ctx, Resolve(s), viewer.Lang)

		view := SectionView{
			PageKey:     pageKey,
			Section:     s,
			Layout:      layout,
			Index:       i,
			Total:       len(sections),
			EditMode:    edit,
			CanEdit:     canEdit,
			CanDelete:   canDelete,
			CanMoveUp:   canEdit && i > 0,
			CanMoveDown: canEdit && i < len(sections)-1,
			Lang:        viewer.Lang,
		}

		if SelfContained(layout) {
			if err := r.execute(&buf, layoutPrefix+layout.Kind(), view); err != nil {
				return err
			}
			continue
		}

		var inner bytes.Buffer
		if err := r.execute(&inner, layoutPrefix+layout.Kind(), view); err != nil {
			return err
		}
		view.Inner = template.HTML(inner.String())
		if err := r.execute(&buf, containerTemplate, view); err != nil {
			return err
		}
	}

	_, err := buf.WriteTo(w)
	return err
}

// HTML renders pageKey for embedding in a page template.
func (r *Renderer) HTML(ctx context.Context, pageKey string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.Render(ctx, &buf, pageKey); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func (r *Renderer) execute(w io.Writer, name string, data SectionView) error {
	if r.tmpl == nil || r.tmpl.Lookup(name) == nil {
		return fmt.Errorf("section template %q not defined", name)
	}
	if err := r.tmpl.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("rendering %s: %w", name, err)
	}
	return nil
}

// hydrate loads the data of the self-fetching layouts.
func (r *Renderer) hydrate(ctx context.Context, l Layout, lang string) Layout {
	switch v := l.(type) {
	case HeroLayout:
		if r.hero == nil {
			return v
		}
		hook := NewContentHook(r.hero, "home", KeyHero, i18n.T(lang, "cms.load_failed"))
		st := hook.Load(ctx)
		if st.Error != "" {
			r.logger.WarnContext(ctx, "failed to load hero content", "error", st.Error)
		}
		v.Content = HeroFrom(hook.ContentOr(nil))
		return v
	case FeaturedProjectsLayout:
		if r.featured == nil {
			return v
		}
		projects, err := r.featured.FeaturedProjects(ctx, v.Limit)
		if err != nil {
			r.logger.WarnContext(ctx, "failed to load featured projects", "error", err)
			v.Error = backend.Message(err, i18n.T(lang, "projects.fetch_failed"))
			return v
		}
		v.Projects = projects
		return v
	}
	return l
}
