// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"context"

	"github.com/olegiv/folio-go/internal/backend"
)

// StorageKey is the namespace under which the snapshot is persisted.
const StorageKey = "auth-storage"

// Snapshot is the persisted subset of a Store.
type Snapshot struct {
	Token           string        `json:"token,omitempty"`
	User            *backend.User `json:"user,omitempty"`
	IsAuthenticated bool          `json:"isAuthenticated"`
}

// Persister stores snapshots between requests.
type Persister interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
}

// Snapshot returns the persistable state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Token:           s.token,
		User:            s.user,
		IsAuthenticated: s.authenticated,
	}
}

// Restore replaces the store's session with snap. Loading, validating and
// error are reset. A snapshot without a token is restored as anonymous.
func (s *Store) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = snap.Token
	s.user = snap.User
	s.authenticated = snap.IsAuthenticated && snap.Token != ""
	if s.token == "" {
		s.user = nil
	}
	s.loading = false
	s.validating = false
	s.err = ""
}

// Load restores the store from its persister. A store without a persister
// stays as it is.
func (s *Store) Load(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	snap, err := s.persister.Load(ctx)
	if err != nil {
		return err
	}
	s.Restore(snap)
	return nil
}
