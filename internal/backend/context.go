// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package backend

import "context"

type ctxKey struct{}

// NewContext returns ctx carrying c, typically a client bound to the
// signed-in user's token.
func NewContext(ctx context.Context, c *Client) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext returns the client stored in ctx, or fallback when none is
// set.
func FromContext(ctx context.Context, fallback *Client) *Client {
	if c, ok := ctx.Value(ctxKey{}).(*Client); ok && c != nil {
		return c
	}
	return fallback
}
