// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"log/slog"
	"time"
)

// defaultPrefix namespaces Redis keys when Config.Prefix is empty.
const defaultPrefix = "folio:"

// Config holds configuration for cache creation.
type Config struct {
	// RedisURL selects Redis when set, e.g. redis://localhost:6379/0.
	RedisURL        string
	Prefix          string
	DefaultTTL      time.Duration
	MaxSize         int
	CleanupInterval time.Duration
}

// NewCache returns a Redis cache when cfg.RedisURL is set and reachable,
// otherwise a memory cache. The returned name is "redis" or "memory".
func NewCache(cfg Config) (Cacher, string) {
	if cfg.RedisURL != "" {
		prefix := cfg.Prefix
		if prefix == "" {
			prefix = defaultPrefix
		}
		rc, err := OpenRedis(cfg.RedisURL, prefix, cfg.DefaultTTL)
		if err == nil {
			return rc, "redis"
		}
		slog.Warn("redis cache unavailable, falling back to memory", "error", err)
	}

	if cfg.CleanupInterval == 0 {
		cfg.CleanupInterval = time.Minute
	}
	return NewMemoryCache(MemoryCacheOptions{
		DefaultTTL:      cfg.DefaultTTL,
		MaxSize:         cfg.MaxSize,
		CleanupInterval: cfg.CleanupInterval,
	}), "memory"
}
