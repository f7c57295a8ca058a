// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/folio-go/internal/store"
)

// EventService records and lists audit events in the local database.
type EventService struct {
	queries *store.Queries
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{
		queries: store.New(db),
	}
}

// Event describes one audit entry to record.
type Event struct {
	Level      string
	Category   string
	Message    string
	UserID     *int64
	IPAddress  string
	RequestURL string
	Metadata   map[string]any
}

// Log creates a new event log entry.
func (s *EventService) Log(ctx context.Context, e Event) error {
	var nullUserID sql.NullInt64
	if e.UserID != nil {
		nullUserID = sql.NullInt64{Int64: *e.UserID, Valid: true}
	}

	metadataJSON := "{}"
	if e.Metadata != nil {
		if b, err := json.Marshal(e.Metadata); err == nil {
			metadataJSON = string(b)
		}
	}

	level := e.Level
	if level == "" {
		level = store.EventLevelInfo
	}
	category := e.Category
	if category == "" {
		category = store.EventCategorySystem
	}

	_, err := s.queries.CreateEvent(ctx, store.CreateEventParams{
		Level:      level,
		Category:   category,
		Message:    e.Message,
		UserID:     nullUserID,
		Metadata:   metadataJSON,
		IPAddress:  e.IPAddress,
		RequestURL: e.RequestURL,
		CreatedAt:  time.Now(),
	})
	if err != nil {
		slog.Error("failed to log event", "error", err, "message", e.Message)
		return err
	}
	return nil
}

// LogInfo logs an info-level event.
func (s *EventService) LogInfo(ctx context.Context, category, message string, userID *int64, ipAddress string, metadata map[string]any) error {
	return s.Log(ctx, Event{Level: store.EventLevelInfo, Category: category, Message: message, UserID: userID, IPAddress: ipAddress, Metadata: metadata})
}

// LogWarning logs a warning-level event.
func (s *EventService) LogWarning(ctx context.Context, category, message string, userID *int64, ipAddress string, metadata map[string]any) error {
	return s.Log(ctx, Event{Level: store.EventLevelWarning, Category: category, Message: message, UserID: userID, IPAddress: ipAddress, Metadata: metadata})
}

// LogError logs an error-level event.
func (s *EventService) LogError(ctx context.Context, category, message string, userID *int64, ipAddress string, metadata map[string]any) error {
	return s.Log(ctx, Event{Level: store.EventLevelError, Category: category, Message: message, UserID: userID, IPAddress: ipAddress, Metadata: metadata})
}

// EventPage is one page of the event log.
type EventPage struct {
	Events  []store.Event
	Total   int64
	Page    int
	PerPage int
}

// TotalPages returns the number of pages for the current filter.
func (p EventPage) TotalPages() int {
	if p.PerPage <= 0 {
		return 0
	}
	return int((p.Total + int64(p.PerPage) - 1) / int64(p.PerPage))
}

// List returns a page of events, newest first. Empty level or category
// match everything.
func (s *EventService) List(ctx context.Context, level, category string, page, perPage int) (EventPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 25
	}

	total, err := s.queries.CountEvents(ctx, level, category)
	if err != nil {
		return EventPage{}, err
	}
	events, err := s.queries.ListEvents(ctx, store.ListEventsParams{
		Level:    level,
		Category: category,
		Limit:    int64(perPage),
		Offset:   int64((page - 1) * perPage),
	})
	if err != nil {
		return EventPage{}, err
	}
	return EventPage{Events: events, Total: total, Page: page, PerPage: perPage}, nil
}

// DeleteOldEvents removes events older than the specified duration.
func (s *EventService) DeleteOldEvents(ctx context.Context, olderThan time.Duration) (int64, error) {
	n, err := s.queries.DeleteEventsBefore(ctx, time.Now().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("purging events: %w", err)
	}
	return n, nil
}
