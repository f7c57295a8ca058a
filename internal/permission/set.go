// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package permission

import (
	"slices"
	"strings"
)

// Set is an unordered collection of permissions. The zero value is an
// empty set and is safe to query.
type Set struct {
	items map[Permission]struct{}
}

// NewSet builds a set from the given permissions. Duplicates collapse.
func NewSet(perms ...Permission) Set {
	s := Set{items: make(map[Permission]struct{}, len(perms))}
	for _, p := range perms {
		s.items[p] = struct{}{}
	}
	return s
}

// FromStrings builds a set from the raw permission strings sent by the
// backend. Blank entries are ignored.
func FromStrings(raw []string) Set {
	perms := make([]Permission, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		perms = append(perms, Permission(r))
	}
	return NewSet(perms...)
}

// Has reports whether p is in the set.
func (s Set) Has(p Permission) bool {
	_, ok := s.items[p]
	return ok
}

// HasAll reports whether every p is in the set. With no arguments it
// returns true.
func (s Set) HasAll(perms ...Permission) bool {
	for _, p := range perms {
		if !s.Has(p) {
			return false
		}
	}
	return true
}

// HasAny reports whether at least one p is in the set. With no arguments
// it returns false.
func (s Set) HasAny(perms ...Permission) bool {
	for _, p := range perms {
		if s.Has(p) {
			return true
		}
	}
	return false
}

// Len returns the number of distinct permissions.
func (s Set) Len() int {
	return len(s.items)
}

// List returns the permissions sorted alphabetically.
func (s Set) List() []Permission {
	out := make([]Permission, 0, len(s.items))
	for p := range s.items {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}
