package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/session.

import (
	"context"

	domainauth "github.com/pcagrade/planning-client/internal/domain/auth"
)

// BeginInput carries inputs for initiating an auth flow.
type BeginInput struct {
	// Prompt optionally overrides the provider's account-selection behavior.
	Prompt string
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// IdentityProvider initiates and completes an authentication flow against an IdP.
// All operations are opaque network exchanges from the caller's point of view.
type IdentityProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce, and returns the authenticated identity.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)

	// Refresh exchanges a refresh token for fresh credentials.
	Refresh(ctx context.Context, refreshToken string) (domainauth.Credentials, error)

	// EndSessionURL returns the provider URL that terminates the remote session.
	EndSessionURL() (string, error)
}

// SessionStore persists and retrieves the current identity snapshot. The store
// is keyed by (issuer, clientID), fixed at construction; there is at most one
// record per store. Writes are atomic at the adapter boundary.
type SessionStore interface {
	Get(ctx context.Context) (domainauth.Session, error)
	Set(ctx context.Context, sess domainauth.Session) error
	Remove(ctx context.Context) error
}

// RoleMapper maps provider groups to application roles.
type RoleMapper interface {
	// MapGroupsToRoles is a total function: deterministic, deduplicated,
	// first-seen order, never empty.
	MapGroupsToRoles(groups []string) []string
}

// EventType identifies a session lifecycle notification.
type EventType string

const (
	// EventLoaded fires when a session becomes current (login, restore, refresh).
	EventLoaded EventType = "loaded"
	// EventUnloaded fires when the session is cleared by logout.
	EventUnloaded EventType = "unloaded"
	// EventExpired fires when token expiry is detected.
	EventExpired EventType = "expired"
)

// SessionEvent carries the new session, or nil when none remains.
type SessionEvent struct {
	Type    EventType
	Session *domainauth.Session
}

// SessionListener receives session lifecycle notifications. Listeners are
// invoked strictly after the backing state transition completes and before the
// triggering operation returns to its caller.
type SessionListener func(SessionEvent)

// CredentialSource is the slice of the session manager the API client reads
// through. Absence of a token is not an error.
type CredentialSource interface {
	// AccessToken returns the current bearer token, if any. Never triggers a
	// network call.
	AccessToken(ctx context.Context) (string, bool)

	// Refresh performs one token refresh and returns the refreshed session.
	Refresh(ctx context.Context) (*domainauth.Session, error)

	// Login begins a re-authentication flow and returns the provider auth URL.
	Login(ctx context.Context, returnPath string) (string, error)
}

// SessionManager owns the single current session and drives its lifecycle.
// There is at most one live session per manager; consumers only read through
// it and never mutate session state directly.
type SessionManager interface {
	CredentialSource

	// Initialize restores a session from the store if one is present and not
	// expired. It runs at most once; storage failures degrade to "no session".
	Initialize(ctx context.Context)

	// HandleCallback completes a login flow from the callback landing context.
	HandleCallback(ctx context.Context, code, state string) (*domainauth.Session, error)

	// Logout clears local state and returns the provider end-session URL.
	// Local state is cleared even when the URL cannot be produced.
	Logout(ctx context.Context) (string, error)

	// SilentLogout clears local session and storage only. It never fails and
	// never contacts the provider.
	SilentLogout(ctx context.Context)

	// Current returns the current session snapshot, or nil.
	Current() *domainauth.Session

	IsAuthenticated() bool
	IsTokenExpired() bool

	HasRole(role string) bool
	HasAnyRole(roles ...string) bool
	HasAllRoles(roles ...string) bool

	// ReturnURL returns and clears the single-slot post-login return path.
	ReturnURL() (string, bool)

	// Subscribe registers a listener for session lifecycle events and returns
	// a cancel function.
	Subscribe(fn SessionListener) (cancel func())
}
