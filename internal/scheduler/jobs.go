// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Job names.
const (
	JobWarmCache   = "warm_cache"
	JobPurgeEvents = "purge_events"
)

// Warmer preloads public content into the cache.
type Warmer interface {
	Warm(ctx context.Context, pageKeys []string) error
}

// EventPurger deletes old audit events.
type EventPurger interface {
	DeleteOldEvents(ctx context.Context, olderThan time.Duration) (int64, error)
}

// WarmCacheJob refreshes the cached public pages and settings so visitors
// rarely wait on the backend.
func WarmCacheJob(schedule string, w Warmer, pageKeys []string) Job {
	return Job{
		Name:        JobWarmCache,
		Description: "Reload public pages and settings into the cache",
		Schedule:    schedule,
		Run: func(ctx context.Context) error {
			return w.Warm(ctx, pageKeys)
		},
	}
}

// PurgeEventsJob deletes events older than retention.
func PurgeEventsJob(schedule string, p EventPurger, retention time.Duration, logger *slog.Logger) Job {
	return Job{
		Name:        JobPurgeEvents,
		Description: "Delete old entries from the event log",
		Schedule:    schedule,
		Run: func(ctx context.Context) error {
			n, err := p.DeleteOldEvents(ctx, retention)
			if err != nil {
				return err
			}
			if n > 0 {
				logger.Info("purged old events", "count", n, "retention", retention)
			}
			return nil
		},
	}
}
