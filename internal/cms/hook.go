// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cms

import (
	"context"
	"sync"

	"github.com/olegiv/folio-go/internal/backend"
)

// SectionFetcher loads the public view of one section.
type SectionFetcher interface {
	PublicSection(ctx context.Context, pageKey, sectionKey string) (*backend.PublicSection, error)
}

// State is a snapshot of a ContentHook.
type State struct {
	// Content is nil while loading, after a failure and when the section
	// does not exist. Callers fall back to their defaults in all three
	// cases; IsLoading and Error tell them apart.
	Content   map[string]any
	IsLoading bool
	Error     string
}

// ContentHook holds the content of one (page, section) pair. Each Load or
// Refresh issues its own fetch; when fetches overlap the last one to
// complete wins.
type ContentHook struct {
	fetcher  SectionFetcher
	fallback string

	mu         sync.Mutex
	pageKey    string
	sectionKey string
	state      State
}

// NewContentHook creates a hook for (pageKey, sectionKey). errFallback is
// stored as the error when the backend supplies no detail.
func NewContentHook(f SectionFetcher, pageKey, sectionKey, errFallback string) *ContentHook {
	return &ContentHook{
		fetcher:    f,
		fallback:   errFallback,
		pageKey:    pageKey,
		sectionKey: sectionKey,
		state:      State{IsLoading: true},
	}
}

// Key returns the current (page, section) pair.
func (h *ContentHook) Key() (pageKey, sectionKey string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pageKey, h.sectionKey
}

// State returns the current state.
func (h *ContentHook) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Load fetches the content for the current key.
func (h *ContentHook) Load(ctx context.Context) State {
	h.mu.Lock()
	pageKey, sectionKey := h.pageKey, h.sectionKey
	h.state = State{IsLoading: true}
	h.mu.Unlock()

	sec, err := h.fetcher.PublicSection(ctx, pageKey, sectionKey)

	next := State{}
	switch {
	case err == nil && sec != nil:
		next.Content = sec.Content
	case err != nil && !backend.IsNotFound(err):
		next.Error = backend.Message(err, h.fallback)
		if next.Error == "" {
			next.Error = err.Error()
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.state = next
	return next
}

// Refresh re-fetches the current key.
func (h *ContentHook) Refresh(ctx context.Context) State {
	return h.Load(ctx)
}

// SetKey switches the hook to another pair and fetches it. Setting the
// current key again does not fetch.
func (h *ContentHook) SetKey(ctx context.Context, pageKey, sectionKey string) State {
	h.mu.Lock()
	if h.pageKey == pageKey && h.sectionKey == sectionKey {
		st := h.state
		h.mu.Unlock()
		return st
	}
	h.pageKey, h.sectionKey = pageKey, sectionKey
	h.mu.Unlock()
	return h.Load(ctx)
}

// ContentOr returns the loaded content, or defaults when there is none.
func (h *ContentHook) ContentOr(defaults map[string]any) map[string]any {
	if c := h.State().Content; c != nil {
		return c
	}
	return defaults
}
