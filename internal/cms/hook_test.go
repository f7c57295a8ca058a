// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cms

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/olegiv/folio-go/internal/backend"
)

type fakeFetcher struct {
	content map[string]map[string]any
	err     error
	calls   atomic.Int32
	during  func()
}

func (f *fakeFetcher) PublicSection(_ context.Context, pageKey, sectionKey string) (*backend.PublicSection, error) {
	f.calls.Add(1)
	if f.during != nil {
		f.during()
	}
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.content[pageKey+"/"+sectionKey]
	if !ok {
		return nil, &backend.APIError{StatusCode: http.StatusNotFound, Detail: "Section not found"}
	}
	return &backend.PublicSection{SectionKey: sectionKey, Content: c}, nil
}

func TestContentHook_Load(t *testing.T) {
	f := &fakeFetcher{content: map[string]map[string]any{"home/hero": {"title": "Hola"}}}
	h := NewContentHook(f, "home", "hero", "load failed")

	assert.True(t, h.State().IsLoading, "initial state is loading")

	st := h.Load(context.Background())
	assert.False(t, st.IsLoading)
	assert.Empty(t, st.Error)
	assert.Equal(t, "Hola", st.Content["title"])
}

func TestContentHook_ClearsContentWhileLoading(t *testing.T) {
	f := &fakeFetcher{content: map[string]map[string]any{"home/hero": {"title": "Hola"}}}
	h := NewContentHook(f, "home", "hero", "")
	h.Load(context.Background())

	var during State
	f.during = func() { during = h.State() }
	h.Refresh(context.Background())

	assert.True(t, during.IsLoading)
	assert.Nil(t, during.Content)
	assert.Equal(t, "Hola", h.State().Content["title"])
}

func TestContentHook_NotFoundIsNotAnError(t *testing.T) {
	h := NewContentHook(&fakeFetcher{}, "about", "missing", "load failed")

	st := h.Load(context.Background())
	assert.Nil(t, st.Content)
	assert.Empty(t, st.Error)
	assert.False(t, st.IsLoading)
}

func TestContentHook_FailureClearsContent(t *testing.T) {
	f := &fakeFetcher{content: map[string]map[string]any{"home/hero": {"title": "Hola"}}}
	h := NewContentHook(f, "home", "hero", "Error al cargar contenido")
	h.Load(context.Background())

	f.err = errors.New("connection refused")
	st := h.Refresh(context.Background())

	assert.Nil(t, st.Content)
	assert.Equal(t, "Error al cargar contenido", st.Error)

	defaults := map[string]any{"title": "Default"}
	assert.Equal(t, defaults, h.ContentOr(defaults))
}

func TestContentHook_BackendDetailWins(t *testing.T) {
	f := &fakeFetcher{err: &backend.APIError{StatusCode: http.StatusInternalServerError, Detail: "database offline"}}
	h := NewContentHook(f, "home", "hero", "fallback")

	assert.Equal(t, "database offline", h.Load(context.Background()).Error)
}

func TestContentHook_SetKey(t *testing.T) {
	f := &fakeFetcher{content: map[string]map[string]any{
		"home/hero":     {"title": "Home"},
		"about/summary": {"title": "About"},
	}}
	h := NewContentHook(f, "home", "hero", "")
	h.Load(context.Background())

	st := h.SetKey(context.Background(), "home", "hero")
	assert.Equal(t, int32(1), f.calls.Load(), "same key must not refetch")
	assert.Equal(t, "Home", st.Content["title"])

	st = h.SetKey(context.Background(), "about", "summary")
	assert.Equal(t, int32(2), f.calls.Load())
	assert.Equal(t, "About", st.Content["title"])

	page, section := h.Key()
	assert.Equal(t, "about", page)
	assert.Equal(t, "summary", section)
}

func TestContentHook_ContentOr(t *testing.T) {
	f := &fakeFetcher{content: map[string]map[string]any{"home/hero": {"title": "Stored"}}}
	h := NewContentHook(f, "home", "hero", "")
	defaults := map[string]any{"title": "Default"}

	assert.Equal(t, defaults, h.ContentOr(defaults), "not loaded yet")

	h.Load(context.Background())
	assert.Equal(t, "Stored", h.ContentOr(defaults)["title"])
}
