// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package backend

import "context"

// PublicSettings returns the settings visible to anonymous visitors.
func (c *Client) PublicSettings(ctx context.Context) (*Settings, error) {
	var s Settings
	if err := c.get(ctx, "/settings/public", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Settings returns the full settings document. Requires manage_settings.
func (c *Client) Settings(ctx context.Context) (*Settings, error) {
	var s Settings
	if err := c.get(ctx, "/settings/", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateSettings applies a partial update and returns the result.
func (c *Client) UpdateSettings(ctx context.Context, in SettingsUpdate) (*Settings, error) {
	var s Settings
	if err := c.put(ctx, "/settings/", in, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ResetSettings restores the server defaults.
func (c *Client) ResetSettings(ctx context.Context) (*Settings, error) {
	var s Settings
	if err := c.post(ctx, "/settings/reset", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
