// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/singleflight"

	"github.com/olegiv/folio-go/internal/backend"
	"github.com/olegiv/folio-go/internal/permission"
)

type fakeAPI struct {
	mu         sync.Mutex
	password   string
	user       *backend.User
	loginErr   error
	userErr    error
	userCalls  atomic.Int32
	logouts    atomic.Int32
	userGate   chan struct{}
	userEnters chan struct{}
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		password: "secret",
		user: &backend.User{
			ID:          1,
			Email:       "ana@example.com",
			Role:        permission.RoleEditor,
			Permissions: []string{"read_content", "update_content"},
		},
	}
}

func (f *fakeAPI) Login(_ context.Context, _, password string) (*backend.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	if password != f.password {
		return nil, &backend.APIError{StatusCode: http.StatusUnauthorized, Detail: "Incorrect email or password"}
	}
	return &backend.Token{AccessToken: "tok-" + password, TokenType: "bearer"}, nil
}

func (f *fakeAPI) CurrentUser(_ context.Context, _ string) (*backend.User, error) {
	f.userCalls.Add(1)
	if f.userEnters != nil {
		f.userEnters <- struct{}{}
	}
	if f.userGate != nil {
		<-f.userGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.userErr != nil {
		return nil, f.userErr
	}
	u := *f.user
	return &u, nil
}

func (f *fakeAPI) Logout(context.Context, string) error {
	f.logouts.Add(1)
	return errors.New("logout endpoint unavailable")
}

type memPersister struct {
	saved []Snapshot
	snap  Snapshot
}

func (m *memPersister) Load(context.Context) (Snapshot, error) { return m.snap, nil }

func (m *memPersister) Save(_ context.Context, s Snapshot) error {
	m.saved = append(m.saved, s)
	m.snap = s
	return nil
}

func TestLogin_Success(t *testing.T) {
	api := newFakeAPI()
	p := &memPersister{}
	s := NewStore(api, WithPersister(p))

	require.Equal(t, StatusAnonymous, s.Status())
	ok := s.Login(context.Background(), "ana@example.com", "secret")

	require.True(t, ok)
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "tok-secret", s.Token())
	assert.Equal(t, int64(1), s.User().ID)
	assert.Empty(t, s.Error())
	assert.False(t, s.IsLoading())
	assert.Equal(t, StatusAuthenticated, s.Status())

	require.NotEmpty(t, p.saved)
	last := p.saved[len(p.saved)-1]
	assert.Equal(t, "tok-secret", last.Token)
	assert.True(t, last.IsAuthenticated)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	api := newFakeAPI()
	s := NewStore(api)

	ok := s.Login(context.Background(), "ana@example.com", "wrong")

	assert.False(t, ok)
	assert.False(t, s.IsAuthenticated())
	assert.Equal(t, "Incorrect email or password", s.Error())
	assert.Empty(t, s.Token())
	assert.Nil(t, s.User())
}

func TestLogin_FailureDiscardsPreviousSession(t *testing.T) {
	api := newFakeAPI()
	s := NewStore(api, WithLoginFailedMessage("Error al iniciar sesión"))
	require.True(t, s.Login(context.Background(), "ana@example.com", "secret"))

	api.loginErr = errors.New("connection refused")
	ok := s.Login(context.Background(), "ana@example.com", "secret")

	assert.False(t, ok)
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.Token())
	assert.Equal(t, "Error al iniciar sesión", s.Error())
}

func TestGetCurrentUser_NoToken(t *testing.T) {
	api := newFakeAPI()
	s := NewStore(api)

	err := s.GetCurrentUser(context.Background())

	assert.ErrorIs(t, err, ErrNoToken)
	assert.Equal(t, int32(0), api.userCalls.Load())
}

func TestGetCurrentUser_FailureLogsOut(t *testing.T) {
	api := newFakeAPI()
	s := NewStore(api)
	require.True(t, s.Login(context.Background(), "ana@example.com", "secret"))

	api.userErr = &backend.APIError{StatusCode: http.StatusUnauthorized}
	err := s.GetCurrentUser(context.Background())

	require.Error(t, err)
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.Token())
	assert.Nil(t, s.User())
	assert.False(t, s.IsLoading())
	assert.Equal(t, int32(1), api.logouts.Load())
}

func TestValidateSession_SuccessRefreshesUser(t *testing.T) {
	api := newFakeAPI()
	s := NewStore(api)
	require.True(t, s.Login(context.Background(), "ana@example.com", "secret"))

	api.mu.Lock()
	api.user.Name = "Ana Updated"
	api.mu.Unlock()

	assert.True(t, s.ValidateSession(context.Background()))
	assert.Equal(t, "Ana Updated", s.User().Name)
	assert.False(t, s.IsValidating())
}

func TestValidateSession_FailureIsSilent(t *testing.T) {
	api := newFakeAPI()
	s := NewStore(api)
	require.True(t, s.Login(context.Background(), "ana@example.com", "secret"))

	api.userErr = &backend.APIError{StatusCode: http.StatusUnauthorized, Detail: "Token expired"}

	assert.False(t, s.ValidateSession(context.Background()))
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.Token())
	assert.Empty(t, s.Error())
}

func TestValidateSession_NoToken(t *testing.T) {
	api := newFakeAPI()
	s := NewStore(api)

	assert.False(t, s.ValidateSession(context.Background()))
	assert.Equal(t, int32(0), api.userCalls.Load())
}

func TestCheckSession_ReportsWhetherBackendAnswered(t *testing.T) {
	tests := []struct {
		name        string
		userErr     error
		wantOK      bool
		wantChecked bool
		wantAuth    bool
	}{
		{"accepted", nil, true, true, true},
		{"rejected", &backend.APIError{StatusCode: http.StatusUnauthorized}, false, true, false},
		{"cancelled", fmt.Errorf("GET /auth/me: %w", context.Canceled), true, false, true},
		{"deadline", fmt.Errorf("GET /auth/me: %w", context.DeadlineExceeded), true, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI()
			s := NewStore(api)
			require.True(t, s.Login(context.Background(), "ana@example.com", "secret"))
			api.userErr = tt.userErr

			ok, checked := s.CheckSession(context.Background())
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantChecked, checked)
			assert.Equal(t, tt.wantAuth, s.IsAuthenticated())
			assert.False(t, s.IsValidating())
		})
	}
}

func TestCheckSession_NoToken(t *testing.T) {
	s := NewStore(newFakeAPI())

	ok, checked := s.CheckSession(context.Background())
	assert.False(t, ok)
	assert.False(t, checked)
}

func TestValidateSession_ConcurrentCallsShareOneRequest(t *testing.T) {
	api := newFakeAPI()
	group := &singleflight.Group{}
	snap := Snapshot{Token: "tok-secret", User: api.user, IsAuthenticated: true}

	s1 := NewStore(api, WithGroup(group))
	s2 := NewStore(api, WithGroup(group))
	s1.Restore(snap)
	s2.Restore(snap)

	api.userGate = make(chan struct{})
	api.userEnters = make(chan struct{}, 2)

	var wg sync.WaitGroup
	results := make([]bool, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0] = s1.ValidateSession(context.Background())
	}()
	<-api.userEnters

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1] = s2.ValidateSession(context.Background())
	}()
	require.Eventually(t, s2.IsValidating, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	close(api.userGate)
	wg.Wait()

	assert.Equal(t, int32(1), api.userCalls.Load())
	assert.Equal(t, []bool{true, true}, results)
}

func TestLogout_ClearsEvenWhenBackendFails(t *testing.T) {
	api := newFakeAPI()
	p := &memPersister{}
	s := NewStore(api, WithPersister(p))
	require.True(t, s.Login(context.Background(), "ana@example.com", "secret"))

	s.Logout(context.Background())

	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.Token())
	assert.Equal(t, int32(1), api.logouts.Load())
	assert.Equal(t, Snapshot{}, p.snap)
}

func TestRestore_ResetsTransientFlags(t *testing.T) {
	s := NewStore(newFakeAPI())
	s.mu.Lock()
	s.loading = true
	s.validating = true
	s.err = "boom"
	s.mu.Unlock()

	s.Restore(Snapshot{Token: "t", User: &backend.User{ID: 9}, IsAuthenticated: true})

	assert.False(t, s.IsLoading())
	assert.False(t, s.IsValidating())
	assert.Empty(t, s.Error())
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, Snapshot{Token: "t", User: &backend.User{ID: 9}, IsAuthenticated: true}, s.Snapshot())
}

func TestRestore_WithoutTokenIsAnonymous(t *testing.T) {
	s := NewStore(newFakeAPI())
	s.Restore(Snapshot{User: &backend.User{ID: 9}, IsAuthenticated: true})

	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, s.User())
}

func TestLoad_FromPersister(t *testing.T) {
	p := &memPersister{snap: Snapshot{Token: "t", User: &backend.User{ID: 3}, IsAuthenticated: true}}
	s := NewStore(newFakeAPI(), WithPersister(p))

	require.NoError(t, s.Load(context.Background()))
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, int64(3), s.User().ID)
}

func TestClearError(t *testing.T) {
	s := NewStore(newFakeAPI())
	s.Login(context.Background(), "ana@example.com", "wrong")
	require.NotEmpty(t, s.Error())

	s.ClearError()
	assert.Empty(t, s.Error())
}

func TestChecker(t *testing.T) {
	s := NewStore(newFakeAPI())
	assert.False(t, s.Checker().HasPermission(permission.ReadContent))

	require.True(t, s.Login(context.Background(), "ana@example.com", "secret"))
	c := s.Checker()
	assert.True(t, c.HasPermission(permission.UpdateContent))
	assert.True(t, c.IsRole(permission.RoleEditor))
}
