// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service wraps the backend client in per-request stores that keep
// the last fetched data together with loading and error state, and in
// long-lived adapters that serve cached public content.
package service

import (
	"sync"

	"github.com/olegiv/folio-go/internal/backend"
	"github.com/olegiv/folio-go/internal/i18n"
)

// status is the loading/error bookkeeping shared by the stores. mu also
// guards the embedding store's data fields.
type status struct {
	mu      sync.Mutex
	lang    string
	loading bool
	err     string
}

func (s *status) begin() {
	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()
}

// end records the outcome of an operation. A failed operation stores the
// backend detail, or the localized message for fallbackKey.
func (s *status) end(err error, fallbackKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.err = backend.Message(err, i18n.T(s.lang, fallbackKey))
	}
}

// IsLoading reports whether an operation is in flight.
func (s *status) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Error returns the message of the last failed operation.
func (s *status) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// ClearError forgets the last failure.
func (s *status) ClearError() {
	s.mu.Lock()
	s.err = ""
	s.mu.Unlock()
}
