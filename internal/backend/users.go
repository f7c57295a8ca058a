// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package backend

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// ListUsers returns a page of accounts.
func (c *Client) ListUsers(ctx context.Context, skip, limit int) ([]User, error) {
	q := url.Values{}
	if skip > 0 {
		q.Set("skip", strconv.Itoa(skip))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var users []User
	if err := c.get(ctx, "/users/", q, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser returns an account by id.
func (c *Client) GetUser(ctx context.Context, id int64) (*User, error) {
	var u User
	if err := c.get(ctx, fmt.Sprintf("/users/%d", id), nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser creates an account.
func (c *Client) CreateUser(ctx context.Context, in UserCreate) (*User, error) {
	var u User
	if err := c.post(ctx, "/users/", in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUser applies a partial update to an account.
func (c *Client) UpdateUser(ctx context.Context, id int64, in UserUpdate) (*User, error) {
	var u User
	if err := c.put(ctx, fmt.Sprintf("/users/%d", id), in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/users/%d", id))
}

// AvailableRoles lists the roles the current user may assign.
func (c *Client) AvailableRoles(ctx context.Context) ([]RoleInfo, error) {
	var roles []RoleInfo
	if err := c.get(ctx, "/users/roles/available", nil, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}
