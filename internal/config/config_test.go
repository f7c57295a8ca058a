// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

const testSecret = "test-Secret-key-32-bytes-long!!!"

// clearFolioEnv unsets every FOLIO_ variable for the duration of the test.
func clearFolioEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		if key, _, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(key, "FOLIO_") {
			t.Setenv(key, "")
			_ = os.Unsetenv(key)
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearFolioEnv(t)
	t.Setenv("FOLIO_SESSION_SECRET", testSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DBPath != "./data/folio.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "./data/folio.db")
	}
	if cfg.ServerHost != "localhost" {
		t.Errorf("ServerHost = %q, want %q", cfg.ServerHost, "localhost")
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 8080)
	}
	if cfg.APIURL != "http://localhost:8004" {
		t.Errorf("APIURL = %q, want %q", cfg.APIURL, "http://localhost:8004")
	}
	if cfg.APITimeout != 0 {
		t.Errorf("APITimeout = %v, want 0", cfg.APITimeout)
	}
	if cfg.DefaultLang != "es" {
		t.Errorf("DefaultLang = %q, want es", cfg.DefaultLang)
	}
	if cfg.CacheWarmSchedule != "*/5 * * * *" {
		t.Errorf("CacheWarmSchedule = %q", cfg.CacheWarmSchedule)
	}
	if cfg.UseRedisCache() {
		t.Error("UseRedisCache() = true, want false")
	}
	if cfg.EventRetention != 720*time.Hour {
		t.Errorf("EventRetention = %v, want 720h", cfg.EventRetention)
	}
	if cfg.SiteURL != "" {
		t.Errorf("SiteURL = %q, want empty", cfg.SiteURL)
	}
	if !cfg.IsDevelopment() {
		t.Error("IsDevelopment() = false, want true")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	clearFolioEnv(t)
	t.Setenv("FOLIO_SESSION_SECRET", testSecret)
	t.Setenv("FOLIO_API_URL", "https://api.example.com/")
	t.Setenv("FOLIO_API_TIMEOUT", "15s")
	t.Setenv("FOLIO_SERVER_PORT", "3000")
	t.Setenv("FOLIO_ENV", "production")
	t.Setenv("FOLIO_LOG_FORMAT", "json")
	t.Setenv("FOLIO_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("FOLIO_CACHE_TTL", "60")
	t.Setenv("FOLIO_SITE_URL", "https://jane.dev/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.APIURL != "https://api.example.com" {
		t.Errorf("APIURL = %q, want trailing slash trimmed", cfg.APIURL)
	}
	if cfg.APITimeout != 15*time.Second {
		t.Errorf("APITimeout = %v, want 15s", cfg.APITimeout)
	}
	if cfg.ServerAddr() != "localhost:3000" {
		t.Errorf("ServerAddr() = %q", cfg.ServerAddr())
	}
	if cfg.IsDevelopment() {
		t.Error("IsDevelopment() = true, want false")
	}
	if !cfg.UseRedisCache() {
		t.Error("UseRedisCache() = false, want true")
	}
	if cfg.CacheTTLDuration() != time.Minute {
		t.Errorf("CacheTTLDuration() = %v, want 1m", cfg.CacheTTLDuration())
	}
	if cfg.SiteURL != "https://jane.dev" {
		t.Errorf("SiteURL = %q, want trailing slash trimmed", cfg.SiteURL)
	}
}

func TestLoad_RequiredSessionSecret(t *testing.T) {
	clearFolioEnv(t)

	if _, err := Load(); err == nil {
		t.Fatal("Load() should fail when FOLIO_SESSION_SECRET is not set")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"short secret", "FOLIO_SESSION_SECRET", "1234567890123456789012345678901"},
		{"weak secret", "FOLIO_SESSION_SECRET", "change-me-to-32-byte-secret-key!"},
		{"relative api url", "FOLIO_API_URL", "localhost:8004"},
		{"ftp api url", "FOLIO_API_URL", "ftp://example.com"},
		{"negative timeout", "FOLIO_API_TIMEOUT", "-1s"},
		{"bad cron", "FOLIO_CACHE_WARM_SCHEDULE", "every five minutes"},
		{"bad purge cron", "FOLIO_EVENT_PURGE_SCHEDULE", "nightly"},
		{"negative retention", "FOLIO_EVENT_RETENTION", "-1h"},
		{"relative site url", "FOLIO_SITE_URL", "jane.dev"},
		{"bad log format", "FOLIO_LOG_FORMAT", "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearFolioEnv(t)
			t.Setenv("FOLIO_SESSION_SECRET", testSecret)
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Fatalf("Load() with %s=%q should fail", tt.key, tt.value)
			}
		})
	}
}

func TestLoad_SessionSecretMinimumLength(t *testing.T) {
	clearFolioEnv(t)
	secret32 := "12345678901234567890123456789012"
	t.Setenv("FOLIO_SESSION_SECRET", secret32)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() should succeed with 32-byte secret: %v", err)
	}
	if cfg.SessionSecret != secret32 {
		t.Errorf("SessionSecret = %q, want %q", cfg.SessionSecret, secret32)
	}
}

func TestHasMinimumEntropy(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", false},
		{"abcABC123", true},
		{"abc123!!", true},
		{"12345678901234567890123456789012", false},
	}
	for _, tt := range tests {
		if got := hasMinimumEntropy(tt.in); got != tt.want {
			t.Errorf("hasMinimumEntropy(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
