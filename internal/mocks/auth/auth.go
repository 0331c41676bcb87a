package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	domainauth "github.com/pcagrade/planning-client/internal/domain/auth"
	"github.com/pcagrade/planning-client/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.IdentityProvider = (*MockIdentityProvider)(nil)
	_ ports.SessionStore     = (*MemorySessionStore)(nil)
	_ ports.RoleMapper       = (*FixedRoleMapper)(nil)
)

// MockIdentityProvider simulates an IdP for tests with deterministic state/nonce handling.
type MockIdentityProvider struct {
	BeginFunc         func(ctx context.Context, in ports.BeginInput) (authURL, state, nonce string, err error)
	ExchangeFunc      func(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error)
	RefreshFunc       func(ctx context.Context, refreshToken string) (domainauth.Credentials, error)
	EndSessionURLFunc func() (string, error)

	// Deterministic values for predictable testing
	AuthURL     string
	LogoutURL   string
	StatePrefix string
	NoncePrefix string
	DefaultUser domainauth.Identity

	// Internal state tracking for deterministic behavior
	callCount    int
	RefreshCalls int
}

// NewMockIdentityProvider creates a MockIdentityProvider with sensible defaults.
func NewMockIdentityProvider() *MockIdentityProvider {
	return &MockIdentityProvider{
		AuthURL:     "https://mock-idp/auth",
		LogoutURL:   "https://mock-idp/logout",
		StatePrefix: "state",
		NoncePrefix: "nonce",
		DefaultUser: domainauth.Identity{
			SubjectID:   "mock-user-1",
			FirstName:   "Mock",
			LastName:    "User",
			DisplayName: "Mock User",
			Email:       "mock.user@example.com",
			Groups:      []string{"users"},
			Credentials: domainauth.Credentials{
				AccessToken:  "mock-access-token",
				RefreshToken: "mock-refresh-token",
				ExpiresAt:    time.Now().Add(time.Hour),
			},
		},
	}
}

func (m *MockIdentityProvider) Begin(ctx context.Context, in ports.BeginInput) (string, string, string, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, in)
	}

	m.callCount++
	authURL := m.AuthURL
	if authURL == "" {
		authURL = "https://mock-idp/auth"
	}

	// Generate deterministic state and nonce based on call count
	statePrefix := m.StatePrefix
	if statePrefix == "" {
		statePrefix = "state"
	}
	noncePrefix := m.NoncePrefix
	if noncePrefix == "" {
		noncePrefix = "nonce"
	}

	state := fmt.Sprintf("%s-%d", statePrefix, m.callCount)
	nonce := fmt.Sprintf("%s-%d", noncePrefix, m.callCount)

	return authURL, state, nonce, nil
}

func (m *MockIdentityProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}

	// Return a copy of the default user with a fresh expiration time
	user := m.DefaultUser
	if user.SubjectID == "" {
		user.SubjectID = "mock-user-1"
	}
	user.ExpiresAt = time.Now().Add(time.Hour)

	return user, nil
}

func (m *MockIdentityProvider) Refresh(ctx context.Context, refreshToken string) (domainauth.Credentials, error) {
	m.RefreshCalls++
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, refreshToken)
	}

	return domainauth.Credentials{
		AccessToken:  fmt.Sprintf("refreshed-access-%d", m.RefreshCalls),
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(time.Hour),
	}, nil
}

func (m *MockIdentityProvider) EndSessionURL() (string, error) {
	if m.EndSessionURLFunc != nil {
		return m.EndSessionURLFunc()
	}
	if m.LogoutURL == "" {
		return "", errors.New("no end-session endpoint configured")
	}
	return m.LogoutURL, nil
}

// MemorySessionStore is an in-memory single-slot session store for unit tests.
type MemorySessionStore struct {
	mu      sync.Mutex
	session *domainauth.Session

	// GetErr and SetErr force storage failures when set.
	GetErr error
	SetErr error
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{}
}

func (m *MemorySessionStore) Get(_ context.Context) (domainauth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return domainauth.Session{}, m.GetErr
	}
	if m.session == nil {
		return domainauth.Session{}, ErrNotFound
	}
	return *m.session, nil
}

func (m *MemorySessionStore) Set(_ context.Context, sess domainauth.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.session = &sess
	return nil
}

func (m *MemorySessionStore) Remove(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	return nil
}

// Stored returns the current snapshot without error translation.
func (m *MemorySessionStore) Stored() *domainauth.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// Seed places a snapshot directly in the store.
func (m *MemorySessionStore) Seed(sess domainauth.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = &sess
}

// ErrNotFound is returned by mocks when an entity is not present.
type notFoundError struct{}

func (notFoundError) Error() string { return "not found" }

var ErrNotFound error = notFoundError{}

// FixedRoleMapper returns the same roles for any input.
type FixedRoleMapper struct {
	Roles []string
}

func (m FixedRoleMapper) MapGroupsToRoles(groups []string) []string {
	if len(m.Roles) == 0 {
		return []string{"ROLE_USER"}
	}
	return m.Roles
}
