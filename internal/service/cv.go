// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/olegiv/folio-go/internal/backend"
)

// ErrNoCV is returned when the backend has no CV document to offer.
var ErrNoCV = errors.New("no cv document available")

// CVService resolves the public CV download link.
type CVService struct {
	client *backend.Client
}

// NewCVService creates a CVService.
func NewCVService(client *backend.Client) *CVService {
	return &CVService{client: client}
}

// DownloadURL returns the absolute URL of the current CV document.
func (s *CVService) DownloadURL(ctx context.Context) (string, error) {
	d, err := s.client.CVDownloadURL(ctx)
	if err != nil {
		return "", fmt.Errorf("fetching cv download url: %w", err)
	}
	if d.DownloadURL == "" {
		return "", ErrNoCV
	}
	return s.client.ResolveURL(d.DownloadURL), nil
}
