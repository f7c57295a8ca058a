// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cms

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/olegiv/folio-go/internal/backend"
)

type fakeSource struct {
	sections      []backend.Section
	page          *backend.PublicPage
	sectionsErr   error
	pageErr       error
	sectionsCalls int
	pageCalls     int
}

func (f *fakeSource) PageSections(_ context.Context, _ string, activeOnly bool) ([]backend.Section, error) {
	f.sectionsCalls++
	if !activeOnly {
		return nil, errors.New("expected active-only request")
	}
	if f.sectionsErr != nil {
		return nil, f.sectionsErr
	}
	out := make([]backend.Section, len(f.sections))
	copy(out, f.sections)
	return out, nil
}

func (f *fakeSource) PublicPage(_ context.Context, _ string) (*backend.PublicPage, error) {
	f.pageCalls++
	if f.pageErr != nil {
		return nil, f.pageErr
	}
	return f.page, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func keys(sections []backend.Section) []string {
	out := make([]string, len(sections))
	for i, s := range sections {
		out[i] = s.SectionKey
	}
	return out
}

func TestSectionLoader_PublicSortedByOrderIndex(t *testing.T) {
	src := &fakeSource{page: &backend.PublicPage{PageKey: "home", Sections: []backend.PublicSection{
		{SectionKey: "c", OrderIndex: 2},
		{SectionKey: "a", OrderIndex: 0},
		{SectionKey: "b", OrderIndex: 1},
	}}}

	got := NewSectionLoader(src, quietLogger()).Load(context.Background(), "home", false)

	assert.Equal(t, []string{"a", "b", "c"}, keys(got))
	assert.Equal(t, 0, src.sectionsCalls, "view mode must not use the privileged endpoint")
	assert.Equal(t, "home", got[0].PageKey)
}

func TestSectionLoader_StableTies(t *testing.T) {
	src := &fakeSource{page: &backend.PublicPage{Sections: []backend.PublicSection{
		{SectionKey: "first", OrderIndex: 1},
		{SectionKey: "second", OrderIndex: 1},
		{SectionKey: "zero", OrderIndex: 0},
	}}}

	got := NewSectionLoader(src, quietLogger()).Load(context.Background(), "home", false)
	assert.Equal(t, []string{"zero", "first", "second"}, keys(got))
}

func TestSectionLoader_EditModeUsesPrivileged(t *testing.T) {
	src := &fakeSource{sections: []backend.Section{
		{ID: 2, SectionKey: "b", OrderIndex: 5},
		{ID: 1, SectionKey: "a", OrderIndex: 1},
	}}

	got := NewSectionLoader(src, quietLogger()).Load(context.Background(), "home", true)

	assert.Equal(t, []string{"a", "b"}, keys(got))
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, 0, src.pageCalls)
}

func TestSectionLoader_EditModeFallsBackOnce(t *testing.T) {
	src := &fakeSource{
		sectionsErr: &backend.APIError{StatusCode: 403},
		page:        &backend.PublicPage{Sections: []backend.PublicSection{{SectionKey: "public"}}},
	}

	got := NewSectionLoader(src, quietLogger()).Load(context.Background(), "home", true)

	assert.Equal(t, []string{"public"}, keys(got))
	assert.Equal(t, 1, src.sectionsCalls)
	assert.Equal(t, 1, src.pageCalls)
}

func TestSectionLoader_BothFail(t *testing.T) {
	src := &fakeSource{
		sectionsErr: errors.New("privileged down"),
		pageErr:     errors.New("public down"),
	}

	got := NewSectionLoader(src, quietLogger()).Load(context.Background(), "home", true)

	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, 1, src.sectionsCalls)
	assert.Equal(t, 1, src.pageCalls)
}
