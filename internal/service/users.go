// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"

	"github.com/olegiv/folio-go/internal/backend"
)

// UserStore manages backend user accounts. Requires manage_users.
type UserStore struct {
	status

	client  *backend.Client
	users   []backend.User
	current *backend.User
	roles   []backend.RoleInfo
}

// NewUserStore creates a store bound to client.
func NewUserStore(client *backend.Client, lang string) *UserStore {
	return &UserStore{status: status{lang: lang}, client: client}
}

// FetchUsers loads a page of users.
func (s *UserStore) FetchUsers(ctx context.Context, skip, limit int) ([]backend.User, error) {
	s.begin()
	users, err := s.client.ListUsers(ctx, skip, limit)
	s.end(err, "users.fetch_failed")
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.users = users
	s.mu.Unlock()
	return users, nil
}

// FetchUser loads one user and makes it current.
func (s *UserStore) FetchUser(ctx context.Context, id int64) (*backend.User, error) {
	s.begin()
	u, err := s.client.GetUser(ctx, id)
	s.end(err, "users.fetch_one_failed")
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.current = u
	s.mu.Unlock()
	return u, nil
}

// Create adds a user.
func (s *UserStore) Create(ctx context.Context, in backend.UserCreate) (*backend.User, error) {
	s.begin()
	u, err := s.client.CreateUser(ctx, in)
	s.end(err, "users.create_failed")
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.users = append(s.users, *u)
	s.mu.Unlock()
	return u, nil
}

// Update applies a partial user update.
func (s *UserStore) Update(ctx context.Context, id int64, in backend.UserUpdate) (*backend.User, error) {
	s.begin()
	u, err := s.client.UpdateUser(ctx, id, in)
	s.end(err, "users.update_failed")
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	for i := range s.users {
		if s.users[i].ID == id {
			s.users[i] = *u
		}
	}
	if s.current != nil && s.current.ID == id {
		s.current = u
	}
	s.mu.Unlock()
	return u, nil
}

// Delete removes a user.
func (s *UserStore) Delete(ctx context.Context, id int64) error {
	s.begin()
	err := s.client.DeleteUser(ctx, id)
	s.end(err, "users.delete_failed")
	if err != nil {
		return err
	}
	s.mu.Lock()
	kept := s.users[:0]
	for _, u := range s.users {
		if u.ID != id {
			kept = append(kept, u)
		}
	}
	s.users = kept
	if s.current != nil && s.current.ID == id {
		s.current = nil
	}
	s.mu.Unlock()
	return nil
}

// FetchRoles loads the roles the backend offers with their permissions.
func (s *UserStore) FetchRoles(ctx context.Context) ([]backend.RoleInfo, error) {
	s.begin()
	roles, err := s.client.AvailableRoles(ctx)
	s.end(err, "users.roles_failed")
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.roles = roles
	s.mu.Unlock()
	return roles, nil
}

// Users returns the last loaded page.
func (s *UserStore) Users() []backend.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users
}

// Current returns the last loaded single user.
func (s *UserStore) Current() *backend.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Roles returns the last loaded role list.
func (s *UserStore) Roles() []backend.RoleInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roles
}
