// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package editmode carries the per-request view/edit flag. The flag only
// controls which affordances are rendered; write endpoints check
// permissions on their own.
package editmode

import (
	"context"
	"sync"
)

// QueryParam is the query parameter that requests edit mode ("on").
const QueryParam = "edit"

// State is the edit-mode flag. The zero value is view mode.
type State struct {
	mu      sync.Mutex
	enabled bool
}

// Enabled reports whether edit mode is on.
func (s *State) Enabled() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// Set turns edit mode on or off.
func (s *State) Set(enabled bool) {
	s.mu.Lock()
	s.enabled = enabled
	s.mu.Unlock()
}

// Toggle flips the flag and returns the new value.
func (s *State) Toggle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = !s.enabled
	return s.enabled
}

type ctxKey struct{}

// NewContext returns ctx carrying s.
func NewContext(ctx context.Context, s *State) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the State in ctx, or a fresh view-mode State when
// none is set.
func FromContext(ctx context.Context) *State {
	if s, ok := ctx.Value(ctxKey{}).(*State); ok && s != nil {
		return s
	}
	return &State{}
}

// Enabled is shorthand for FromContext(ctx).Enabled().
func Enabled(ctx context.Context) bool {
	return FromContext(ctx).Enabled()
}
