// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/sync/singleflight"
)

// TypedCache stores values of T as JSON in a Cacher.
type TypedCache[T any] struct {
	store   Cacher
	ttl     time.Duration
	flights singleflight.Group
}

// NewTypedCache returns a TypedCache over store whose entries live for ttl.
func NewTypedCache[T any](store Cacher, ttl time.Duration) *TypedCache[T] {
	return &TypedCache[T]{store: store, ttl: ttl}
}

// Get decodes the entry at key. Misses, store errors and undecodable
// entries all report false.
func (c *TypedCache[T]) Get(ctx context.Context, key string) (*T, bool) {
	raw, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, false
	}
	v := new(T)
	if json.Unmarshal(raw, v) != nil {
		return nil, false
	}
	return v, true
}

// Set encodes v and stores it at key.
func (c *TypedCache[T]) Set(ctx context.Context, key string, v *T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, key, raw, c.ttl)
}

// GetOrSet returns the entry at key, loading and storing it with load on a
// miss. Concurrent misses for one key share a single load; load errors
// are returned and not stored.
func (c *TypedCache[T]) GetOrSet(ctx context.Context, key string, load func() (*T, error)) (*T, error) {
	if v, ok := c.Get(ctx, key); ok {
		return v, nil
	}

	res, err, _ := c.flights.Do(key, func() (any, error) {
		v, err := load()
		if err != nil {
			return nil, err
		}
		// a failed write still leaves the value usable
		_ = c.Set(ctx, key, v)
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return res.(*T), nil
}
