package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"fmt"
	"sync"
	"time"

	domainauth "github.com/meridian/rolegate/internal/domain/auth"
	apperrors "github.com/meridian/rolegate/internal/errors"
	"github.com/meridian/rolegate/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.IdentityProvider = (*MockIdentityProvider)(nil)
	_ ports.OAuthProvider    = (*MockOAuthProvider)(nil)
	_ ports.SessionStore     = (*MemorySessionStore)(nil)
	_ ports.ProfileStore     = (*StubProfileStore)(nil)
	_ ports.RoleStore        = (*StubRoleStore)(nil)
)

// MockIdentityProvider simulates an identity provider with deterministic
// defaults, overridable per call via func fields. Emit delivers auth
// state-change events to subscribers synchronously, which keeps
// notification-race tests deterministic.
type MockIdentityProvider struct {
	SignInFunc        func(ctx context.Context, creds ports.Credentials) (domainauth.Session, error)
	SignUpFunc        func(ctx context.Context, creds ports.Credentials) (domainauth.Identity, error)
	SignOutFunc       func(ctx context.Context, token string) error
	UserFromTokenFunc func(ctx context.Context, token string) (domainauth.Identity, error)

	DefaultIdentity domainauth.Identity

	mu          sync.Mutex
	subscribers map[int]func(domainauth.Event)
	nextSub     int

	SignOutCalls       int
	UserFromTokenCalls int
}

// NewMockIdentityProvider creates a MockIdentityProvider with sensible defaults.
func NewMockIdentityProvider() *MockIdentityProvider {
	return &MockIdentityProvider{
		DefaultIdentity: domainauth.Identity{
			ID:    "mock-user-1",
			Email: "mock.user@example.com",
		},
		subscribers: make(map[int]func(domainauth.Event)),
	}
}

func (m *MockIdentityProvider) SignInWithPassword(ctx context.Context, creds ports.Credentials) (domainauth.Session, error) {
	if m.SignInFunc != nil {
		return m.SignInFunc(ctx, creds)
	}
	return domainauth.Session{
		Token:     "mock-token",
		UserID:    m.DefaultIdentity.ID,
		Email:     creds.Email,
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

func (m *MockIdentityProvider) SignUp(ctx context.Context, creds ports.Credentials) (domainauth.Identity, error) {
	if m.SignUpFunc != nil {
		return m.SignUpFunc(ctx, creds)
	}
	return domainauth.Identity{ID: "mock-new-user", Email: creds.Email}, nil
}

func (m *MockIdentityProvider) SignOut(ctx context.Context, token string) error {
	m.mu.Lock()
	m.SignOutCalls++
	m.mu.Unlock()
	if m.SignOutFunc != nil {
		return m.SignOutFunc(ctx, token)
	}
	return nil
}

func (m *MockIdentityProvider) UserFromToken(ctx context.Context, token string) (domainauth.Identity, error) {
	m.mu.Lock()
	m.UserFromTokenCalls++
	m.mu.Unlock()
	if m.UserFromTokenFunc != nil {
		return m.UserFromTokenFunc(ctx, token)
	}
	if token == "" {
		return domainauth.Identity{}, apperrors.Unauthorized("Unauthorized")
	}
	return m.DefaultIdentity, nil
}

func (m *MockIdentityProvider) OnAuthStateChange(fn func(domainauth.Event)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextSub
	m.nextSub++
	m.subscribers[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subscribers, id)
	}
}

// Emit fires an auth state-change event at all current subscribers.
func (m *MockIdentityProvider) Emit(event domainauth.Event) {
	m.mu.Lock()
	fns := make([]func(domainauth.Event), 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		fns = append(fns, fn)
	}
	m.mu.Unlock()
	for _, fn := range fns {
		fn(event)
	}
}

// SubscriberCount reports how many subscribers are currently registered.
func (m *MockIdentityProvider) SubscriberCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subscribers)
}

// MockOAuthProvider simulates a hosted OAuth IdP with deterministic
// state/nonce values.
type MockOAuthProvider struct {
	BeginFunc    func(ctx context.Context, in ports.BeginOAuthInput) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error)

	AuthURL         string
	DefaultIdentity domainauth.Identity

	callCount int
}

// NewMockOAuthProvider creates a MockOAuthProvider with sensible defaults.
func NewMockOAuthProvider() *MockOAuthProvider {
	return &MockOAuthProvider{
		AuthURL: "https://mock-idp/auth",
		DefaultIdentity: domainauth.Identity{
			ID:    "mock-oauth-user",
			Email: "oauth.user@example.com",
		},
	}
}

func (m *MockOAuthProvider) Begin(ctx context.Context, in ports.BeginOAuthInput) (string, string, string, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, in)
	}
	m.callCount++
	n := m.callCount
	return m.AuthURL, fmt.Sprintf("state-%d", n), fmt.Sprintf("nonce-%d", n), nil
}

func (m *MockOAuthProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}
	return m.DefaultIdentity, nil
}

// MemorySessionStore is an in-memory ports.SessionStore for tests and the
// local provider in ephemeral deployments.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domainauth.Session
}

// NewMemorySessionStore creates an empty MemorySessionStore.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]domainauth.Session)}
}

func (s *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.Token == "" {
		return apperrors.Validation("session token cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.Token] = sess
	return nil
}

func (s *MemorySessionStore) Get(_ context.Context, token string) (domainauth.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[token]
	if !ok {
		return domainauth.Session{}, apperrors.NotFound("session not found")
	}
	return sess, nil
}

func (s *MemorySessionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

// Len reports the number of stored sessions.
func (s *MemorySessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// StubProfileStore serves profiles from a map and counts calls, so tests
// can assert the resolver was (or was not) consulted.
type StubProfileStore struct {
	mu       sync.Mutex
	Profiles map[string]domainauth.Profile
	Err      error
	Calls    int
}

// NewStubProfileStore creates a StubProfileStore seeded with profiles.
func NewStubProfileStore(profiles ...domainauth.Profile) *StubProfileStore {
	m := make(map[string]domainauth.Profile, len(profiles))
	for _, p := range profiles {
		m[p.ID] = p
	}
	return &StubProfileStore{Profiles: m}
}

func (s *StubProfileStore) ProfileByID(_ context.Context, id string) (domainauth.Profile, error) {
	s.mu.Lock()
	s.Calls++
	s.mu.Unlock()
	if s.Err != nil {
		return domainauth.Profile{}, s.Err
	}
	p, ok := s.Profiles[id]
	if !ok {
		return domainauth.Profile{}, apperrors.NotFound("user not found")
	}
	return p, nil
}

// CallCount reports how many times ProfileByID was invoked.
func (s *StubProfileStore) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Calls
}

// StubRoleStore serves role names from a map and counts calls.
type StubRoleStore struct {
	mu    sync.Mutex
	Roles map[string][]string
	Err   error
	Calls int
}

// NewStubRoleStore creates a StubRoleStore seeded with role memberships.
func NewStubRoleStore(roles map[string][]string) *StubRoleStore {
	if roles == nil {
		roles = make(map[string][]string)
	}
	return &StubRoleStore{Roles: roles}
}

func (s *StubRoleStore) RoleNamesForUser(_ context.Context, userID string) ([]string, error) {
	s.mu.Lock()
	s.Calls++
	s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Roles[userID], nil
}

// CallCount reports how many times RoleNamesForUser was invoked.
func (s *StubRoleStore) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Calls
}
