// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package auth holds the per-browser login session: the bearer token, the
// cached user and the transitions between signed-out and signed-in.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/olegiv/folio-go/internal/backend"
	"github.com/olegiv/folio-go/internal/permission"
)

// ErrNoToken is returned by operations that need a session token when the
// store holds none.
var ErrNoToken = errors.New("auth: no session token")

// Status is the state of a Store.
type Status string

// Store states.
const (
	StatusAnonymous      Status = "anonymous"
	StatusAuthenticating Status = "authenticating"
	StatusAuthenticated  Status = "authenticated"
	StatusValidating     Status = "validating"
)

// API is the subset of the backend the store talks to.
type API interface {
	Login(ctx context.Context, email, password string) (*backend.Token, error)
	CurrentUser(ctx context.Context, token string) (*backend.User, error)
	Logout(ctx context.Context, token string) error
}

// ClientAPI adapts a backend.Client to API.
type ClientAPI struct {
	Client *backend.Client
}

// Login implements API.
func (a ClientAPI) Login(ctx context.Context, email, password string) (*backend.Token, error) {
	return a.Client.Login(ctx, email, password)
}

// CurrentUser implements API.
func (a ClientAPI) CurrentUser(ctx context.Context, token string) (*backend.User, error) {
	return a.Client.WithToken(token).CurrentUser(ctx)
}

// Logout implements API.
func (a ClientAPI) Logout(ctx context.Context, token string) error {
	return a.Client.WithToken(token).Logout(ctx)
}

// Store is the login state of one browser session. It is safe for
// concurrent use.
type Store struct {
	api         API
	group       *singleflight.Group
	persister   Persister
	loginFailed string

	mu            sync.RWMutex
	user          *backend.User
	token         string
	authenticated bool
	loading       bool
	validating    bool
	err           string
}

// Option configures a Store.
type Option func(*Store)

// WithGroup shares session validation across stores. Concurrent
// validations of the same token then reach the backend once.
func WithGroup(g *singleflight.Group) Option {
	return func(s *Store) { s.group = g }
}

// WithPersister saves the store's snapshot after every transition.
func WithPersister(p Persister) Option {
	return func(s *Store) { s.persister = p }
}

// WithLoginFailedMessage sets the message shown when a failed login carries
// no backend detail.
func WithLoginFailedMessage(msg string) Option {
	return func(s *Store) { s.loginFailed = msg }
}

// NewStore returns an anonymous store.
func NewStore(api API, opts ...Option) *Store {
	s := &Store{
		api:         api,
		loginFailed: "Login failed",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.group == nil {
		s.group = &singleflight.Group{}
	}
	return s
}

// User returns the cached user, or nil.
func (s *Store) User() *backend.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Token returns the bearer token, or "".
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// IsAuthenticated reports whether a user is signed in.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// IsLoading reports whether a login or profile fetch is in flight.
func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// IsValidating reports whether a session validation is in flight.
func (s *Store) IsValidating() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.validating
}

// Error returns the last login error message, or "".
func (s *Store) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Status derives the state from the store's flags.
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch {
	case s.loading:
		return StatusAuthenticating
	case s.validating:
		return StatusValidating
	case s.authenticated:
		return StatusAuthenticated
	default:
		return StatusAnonymous
	}
}

// Checker returns the permission checker for the signed-in user. Anonymous
// sessions get the empty checker.
func (s *Store) Checker() permission.Checker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.authenticated {
		return permission.Checker{}
	}
	return s.user.Checker()
}

// Login exchanges credentials for a token and loads the user. On failure
// any previous session is discarded and Error holds the reason.
func (s *Store) Login(ctx context.Context, email, password string) bool {
	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()

	user, token, err := s.login(ctx, email, password)

	s.mu.Lock()
	s.loading = false
	if err != nil {
		s.user = nil
		s.token = ""
		s.authenticated = false
		s.err = backend.Message(err, s.loginFailed)
	} else {
		s.user = user
		s.token = token
		s.authenticated = true
		s.err = ""
	}
	s.mu.Unlock()

	s.persist(ctx)

	if err != nil {
		slog.WarnContext(ctx, "login failed", "email", email, "error", err)
		return false
	}
	slog.InfoContext(ctx, "login succeeded", "email", email, "user_id", user.ID)
	return true
}

func (s *Store) login(ctx context.Context, email, password string) (*backend.User, string, error) {
	tok, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, "", err
	}
	user, err := s.api.CurrentUser(ctx, tok.AccessToken)
	if err != nil {
		return nil, "", err
	}
	return user, tok.AccessToken, nil
}

// GetCurrentUser refreshes the cached user. Without a token it does
// nothing and returns ErrNoToken. A failed fetch signs the session out.
func (s *Store) GetCurrentUser(ctx context.Context) error {
	token := s.Token()
	if token == "" {
		return ErrNoToken
	}

	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	user, err := s.api.CurrentUser(ctx, token)
	if err != nil {
		slog.WarnContext(ctx, "fetching current user failed, signing out", "error", err)
		s.Logout(ctx)
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.user = user
	s.authenticated = true
	s.loading = false
	s.err = ""
	s.mu.Unlock()

	s.persist(ctx)
	return nil
}

// ValidateSession checks the token against the backend. Concurrent calls
// for the same token share one backend request. A rejected token signs
// the session out silently; Error is left untouched.
func (s *Store) ValidateSession(ctx context.Context) bool {
	ok, _ := s.CheckSession(ctx)
	return ok
}

// CheckSession is ValidateSession that also reports whether the backend
// answered. checked is false without a token and when ctx ended before the
// answer arrived; the session is then left as it was.
func (s *Store) CheckSession(ctx context.Context) (ok, checked bool) {
	token := s.Token()
	if token == "" {
		return false, false
	}

	s.mu.Lock()
	s.validating = true
	s.mu.Unlock()

	v, err, _ := s.group.Do(token, func() (any, error) {
		return s.api.CurrentUser(ctx, token)
	})

	switch {
	case err == nil:
		s.mu.Lock()
		// Another transition may have replaced the session meanwhile.
		if s.token == token {
			s.user = v.(*backend.User)
			s.authenticated = true
		}
		s.validating = false
		ok = s.authenticated
		s.mu.Unlock()
		s.persist(ctx)
		return ok, true

	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		s.mu.Lock()
		s.validating = false
		ok = s.authenticated
		s.mu.Unlock()
		return ok, false

	default:
		slog.DebugContext(ctx, "session validation failed", "error", err)
		s.clear(token)
		s.mu.Lock()
		s.validating = false
		s.mu.Unlock()
		s.persist(ctx)
		return false, true
	}
}

// Logout notifies the backend and clears the session. The backend call is
// best-effort; local state is always cleared.
func (s *Store) Logout(ctx context.Context) {
	token := s.Token()
	if token != "" {
		if err := s.api.Logout(ctx, token); err != nil {
			slog.DebugContext(ctx, "backend logout failed", "error", err)
		}
	}

	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.authenticated = false
	s.err = ""
	s.mu.Unlock()

	s.persist(ctx)
}

// clear drops the session if it still belongs to token.
func (s *Store) clear(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != token {
		return
	}
	s.user = nil
	s.token = ""
	s.authenticated = false
}

// ClearError resets the last error message.
func (s *Store) ClearError() {
	s.mu.Lock()
	s.err = ""
	s.mu.Unlock()
}

func (s *Store) persist(ctx context.Context) {
	if s.persister == nil {
		return
	}
	if err := s.persister.Save(ctx, s.Snapshot()); err != nil {
		slog.WarnContext(ctx, "saving auth session failed", "error", err)
	}
}
