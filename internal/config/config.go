// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/robfig/cron/v3"
)

// knownWeakSecrets contains example secrets that must never be used.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	SessionSecret string `env:"FOLIO_SESSION_SECRET,required"`
	DBPath        string `env:"FOLIO_DB_PATH" envDefault:"./data/folio.db"`
	ServerHost    string `env:"FOLIO_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"FOLIO_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"FOLIO_ENV" envDefault:"development"`
	LogLevel      string `env:"FOLIO_LOG_LEVEL" envDefault:"info"`
	LogFormat     string `env:"FOLIO_LOG_FORMAT" envDefault:"text"`
	DefaultLang   string `env:"FOLIO_DEFAULT_LANG" envDefault:"es"`

	// Backend API
	APIURL     string        `env:"FOLIO_API_URL" envDefault:"http://localhost:8004"`
	APITimeout time.Duration `env:"FOLIO_API_TIMEOUT" envDefault:"0s"` // 0 = bounded by the request only

	// How long a restored login is trusted before it is re-validated.
	AuthRevalidate time.Duration `env:"FOLIO_AUTH_REVALIDATE" envDefault:"5m"`

	// Cache configuration
	RedisURL          string `env:"FOLIO_REDIS_URL"`
	CachePrefix       string `env:"FOLIO_CACHE_PREFIX" envDefault:"folio:"`
	CacheTTL          int    `env:"FOLIO_CACHE_TTL" envDefault:"300"`
	CacheMaxSize      int    `env:"FOLIO_CACHE_MAX_SIZE" envDefault:"10000"`
	CacheWarmSchedule string `env:"FOLIO_CACHE_WARM_SCHEDULE" envDefault:"*/5 * * * *"`

	// Event log retention
	EventRetention     time.Duration `env:"FOLIO_EVENT_RETENTION" envDefault:"720h"`
	EventPurgeSchedule string        `env:"FOLIO_EVENT_PURGE_SCHEDULE" envDefault:"0 3 * * *"`

	// Public base URL used for canonical links, the sitemap and robots.txt.
	// Empty derives it from the request.
	SiteURL string `env:"FOLIO_SITE_URL"`

	// Rate limiting
	LoginRateLimit  float64 `env:"FOLIO_LOGIN_RATE_LIMIT" envDefault:"0.5"`
	LoginRateBurst  int     `env:"FOLIO_LOGIN_RATE_BURST" envDefault:"5"`
	GlobalRateLimit float64 `env:"FOLIO_RATE_LIMIT" envDefault:"20"`
	GlobalRateBurst int     `env:"FOLIO_RATE_BURST" envDefault:"40"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// CacheTTLDuration returns CacheTTL as a duration.
func (c Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("FOLIO_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("FOLIO_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("FOLIO_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	u, err := url.Parse(cfg.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("FOLIO_API_URL must be an absolute http(s) URL, got %q", cfg.APIURL)
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")

	if cfg.APITimeout < 0 {
		return nil, fmt.Errorf("FOLIO_API_TIMEOUT must not be negative")
	}

	if cfg.CacheWarmSchedule != "" {
		if _, err := cron.ParseStandard(cfg.CacheWarmSchedule); err != nil {
			return nil, fmt.Errorf("FOLIO_CACHE_WARM_SCHEDULE: %w", err)
		}
	}

	if cfg.EventPurgeSchedule != "" {
		if _, err := cron.ParseStandard(cfg.EventPurgeSchedule); err != nil {
			return nil, fmt.Errorf("FOLIO_EVENT_PURGE_SCHEDULE: %w", err)
		}
	}
	if cfg.EventRetention < 0 {
		return nil, fmt.Errorf("FOLIO_EVENT_RETENTION must not be negative")
	}

	if cfg.SiteURL != "" {
		u, err := url.Parse(cfg.SiteURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("FOLIO_SITE_URL must be an absolute http(s) URL, got %q", cfg.SiteURL)
		}
		cfg.SiteURL = strings.TrimRight(cfg.SiteURL, "/")
	}

	switch strings.ToLower(cfg.LogFormat) {
	case "text", "json":
	default:
		return nil, fmt.Errorf("FOLIO_LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
