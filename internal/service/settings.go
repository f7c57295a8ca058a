// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"log/slog"

	"github.com/olegiv/folio-go/internal/backend"
	"github.com/olegiv/folio-go/internal/cache"
)

// SettingsStore holds the site settings document.
type SettingsStore struct {
	status

	client   *backend.Client
	content  *cache.Content
	settings *backend.Settings
}

// NewSettingsStore creates a store bound to client. content may be nil.
func NewSettingsStore(client *backend.Client, content *cache.Content, lang string) *SettingsStore {
	return &SettingsStore{
		status:  status{lang: lang},
		client:  client,
		content: content,
	}
}

// FetchPublic loads the public subset of the settings.
func (s *SettingsStore) FetchPublic(ctx context.Context) (*backend.Settings, error) {
	s.begin()
	load := func() (*backend.Settings, error) { return s.client.PublicSettings(ctx) }
	var (
		st  *backend.Settings
		err error
	)
	if s.content != nil {
		st, err = s.content.PublicSettings(ctx, load)
	} else {
		st, err = load()
	}
	return s.finish(st, err, "settings.fetch_failed")
}

// Fetch loads the full settings document. Requires manage_settings.
func (s *SettingsStore) Fetch(ctx context.Context) (*backend.Settings, error) {
	s.begin()
	st, err := s.client.Settings(ctx)
	return s.finish(st, err, "settings.fetch_failed")
}

// Update applies a partial update.
func (s *SettingsStore) Update(ctx context.Context, in backend.SettingsUpdate) (*backend.Settings, error) {
	s.begin()
	st, err := s.client.UpdateSettings(ctx, in)
	st, err = s.finish(st, err, "settings.update_failed")
	if err == nil {
		s.invalidate(ctx)
	}
	return st, err
}

// Reset restores the backend defaults.
func (s *SettingsStore) Reset(ctx context.Context) (*backend.Settings, error) {
	s.begin()
	st, err := s.client.ResetSettings(ctx)
	st, err = s.finish(st, err, "settings.reset_failed")
	if err == nil {
		s.invalidate(ctx)
	}
	return st, err
}

// Settings returns the last loaded document.
func (s *SettingsStore) Settings() *backend.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

func (s *SettingsStore) finish(st *backend.Settings, err error, fallbackKey string) (*backend.Settings, error) {
	s.end(err, fallbackKey)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.settings = st
	s.mu.Unlock()
	return st, nil
}

func (s *SettingsStore) invalidate(ctx context.Context) {
	if s.content == nil {
		return
	}
	if err := s.content.InvalidateSettings(ctx); err != nil {
		slog.Warn("cache invalidation failed", "scope", "settings", "error", err)
	}
}
