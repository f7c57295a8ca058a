// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package backend

import "context"

// CVDownloadURL returns the backend-relative path of the current CV
// document.
func (c *Client) CVDownloadURL(ctx context.Context) (*CVDownload, error) {
	var d CVDownload
	if err := c.get(ctx, "/cv/download", nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}
