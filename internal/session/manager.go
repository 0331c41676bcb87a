package session

// Package session owns the single current identity session and drives its
// lifecycle: restore, login, callback exchange, refresh, expiry, teardown.

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/pcagrade/planning-client/internal/domain/auth"
	apperrors "github.com/pcagrade/planning-client/internal/errors"
	"github.com/pcagrade/planning-client/internal/ports"
)

// State identifies where the manager is in the session lifecycle.
type State string

const (
	StateUnauthenticated    State = "unauthenticated"
	StateAwaitingRedirect   State = "awaiting_provider_redirect"
	StateProcessingCallback State = "processing_callback"
	StateAuthenticated      State = "authenticated"
)

// ManagerOptions groups dependencies for Manager.
type ManagerOptions struct {
	// Provider may be nil when configuration is missing; login then degrades
	// to an unusable state instead of failing construction.
	Provider ports.IdentityProvider
	Store    ports.SessionStore
	Roles    ports.RoleMapper

	// RolePrefix is the normalization prefix for role membership checks.
	RolePrefix string

	Logger *slog.Logger

	// Now overrides the wall clock, for tests.
	Now func() time.Time
}

// Manager implements ports.SessionManager against a real identity provider.
// It owns the one current session; all transitions replace the session slot
// wholesale and the last completed exchange wins.
type Manager struct {
	provider   ports.IdentityProvider
	store      ports.SessionStore
	roles      ports.RoleMapper
	rolePrefix string
	logger     *slog.Logger
	now        func() time.Time

	mu           sync.Mutex
	state        State
	session      *domainauth.Session
	pendingState string
	pendingNonce string
	returnURL    string
	returnURLSet bool
	initialized  bool

	listeners  map[int]ports.SessionListener
	nextListID int
}

var _ ports.SessionManager = (*Manager)(nil)

// NewManager constructs a session manager. The manager starts Unauthenticated;
// call Initialize to restore a persisted session.
func NewManager(opts ManagerOptions) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	prefix := opts.RolePrefix
	if prefix == "" {
		prefix = "ROLE_"
	}
	return &Manager{
		provider:   opts.Provider,
		store:      opts.Store,
		roles:      opts.Roles,
		rolePrefix: prefix,
		logger:     logger,
		now:        now,
		state:      StateUnauthenticated,
		listeners:  make(map[int]ports.SessionListener),
	}
}

// Initialize restores a session from the store when a non-expired snapshot
// exists. It runs at most once; repeat calls are no-ops. Storage failures are
// swallowed and treated as "no session".
func (m *Manager) Initialize(ctx context.Context) {
	m.mu.Lock()
	if m.initialized {
		m.mu.Unlock()
		return
	}
	m.initialized = true
	m.mu.Unlock()

	if m.store == nil {
		return
	}

	sess, err := m.store.Get(ctx)
	if err != nil {
		m.logger.Debug("no stored session to restore", "error", err)
		return
	}
	if sess.Expired(m.now()) {
		m.logger.Debug("stored session is expired, discarding", "subject", sess.SubjectID)
		return
	}

	m.mu.Lock()
	m.session = &sess
	m.state = StateAuthenticated
	listeners := m.listenerSnapshotLocked()
	m.mu.Unlock()

	m.logger.Info("session restored", "subject", sess.SubjectID, "email", sess.Email)
	notify(listeners, ports.SessionEvent{Type: ports.EventLoaded, Session: &sess})
}

// Login begins the authorization-redirect flow and returns the provider auth
// URL. returnPath, when non-empty, overwrites the single-slot return register.
// On failure the manager remains Unauthenticated.
func (m *Manager) Login(ctx context.Context, returnPath string) (string, error) {
	if returnPath != "" {
		m.mu.Lock()
		m.returnURL = returnPath
		m.returnURLSet = true
		m.mu.Unlock()
	}

	if m.provider == nil {
		return "", apperrors.ConfigurationMissing("identity provider not configured, cannot initiate login")
	}

	authURL, state, nonce, err := m.provider.Begin(ctx, ports.BeginInput{})
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeExchangeFailed, "begin login flow")
	}

	m.mu.Lock()
	m.pendingState = state
	m.pendingNonce = nonce
	m.state = StateAwaitingRedirect
	m.mu.Unlock()

	m.logger.Info("login initiated", "return_path", returnPath)
	return authURL, nil
}

// HandleCallback completes a login flow from the callback landing context:
// it exchanges the authorization artifacts for an identity, derives roles,
// persists the new session, and transitions to Authenticated. Exchange
// failures leave the manager Unauthenticated and propagate to the caller.
func (m *Manager) HandleCallback(ctx context.Context, code, state string) (*domainauth.Session, error) {
	if m.provider == nil {
		return nil, apperrors.ConfigurationMissing("identity provider not configured, cannot process callback")
	}

	m.mu.Lock()
	m.state = StateProcessingCallback
	expectedState := m.pendingState
	nonce := m.pendingNonce
	m.pendingState = ""
	m.pendingNonce = ""
	m.mu.Unlock()

	// The pending register is lost on process restart; in that case the
	// provider-side state check in Exchange is all we have.
	if expectedState != "" && state != expectedState {
		m.setStateUnauthenticated()
		return nil, apperrors.ExchangeFailed("callback state does not match login request")
	}

	identity, err := m.provider.Exchange(ctx, ports.ExchangeInput{Code: code, State: state, Nonce: nonce})
	if err != nil {
		m.setStateUnauthenticated()
		return nil, apperrors.Wrap(err, apperrors.ErrCodeExchangeFailed, "exchange callback artifacts")
	}

	sess := m.buildSession(identity)
	m.persist(ctx, sess)

	m.mu.Lock()
	m.session = &sess
	m.state = StateAuthenticated
	listeners := m.listenerSnapshotLocked()
	m.mu.Unlock()

	m.logger.Info("login completed", "subject", sess.SubjectID, "email", sess.Email, "roles", sess.Roles)
	notify(listeners, ports.SessionEvent{Type: ports.EventLoaded, Session: &sess})
	return &sess, nil
}

// Logout clears the local session and returns the provider end-session URL.
// Local state is cleared even when the end-session redirect cannot be built;
// the returned error then reports the degraded logout.
func (m *Manager) Logout(ctx context.Context) (string, error) {
	var endSessionURL string
	var degraded error
	if m.provider == nil {
		degraded = apperrors.ConfigurationMissing("identity provider not configured, remote logout skipped")
	} else if u, err := m.provider.EndSessionURL(); err != nil {
		degraded = apperrors.Wrap(err, apperrors.ErrCodeConfigurationMissing, "end-session redirect unavailable")
	} else {
		endSessionURL = u
	}

	m.clear(ctx, ports.EventUnloaded)
	m.logger.Info("logged out", "degraded", degraded != nil)
	return endSessionURL, degraded
}

// SilentLogout clears local session and storage only. It never contacts the
// provider and never fails.
func (m *Manager) SilentLogout(ctx context.Context) {
	m.clear(ctx, ports.EventUnloaded)
	m.logger.Debug("silent logout completed")
}

// Refresh performs one refresh-token grant and replaces the session with the
// refreshed credentials. An unrecoverable refresh failure destroys the session.
func (m *Manager) Refresh(ctx context.Context) (*domainauth.Session, error) {
	if m.provider == nil {
		return nil, apperrors.ConfigurationMissing("identity provider not configured, cannot refresh")
	}

	m.mu.Lock()
	current := m.session
	m.mu.Unlock()

	// Fall back to the stored snapshot when memory has not been hydrated yet.
	if current == nil && m.store != nil {
		if snap, err := m.store.Get(ctx); err == nil {
			current = &snap
		}
	}
	if current == nil || current.RefreshToken == "" {
		return nil, apperrors.ExchangeFailed("no refresh token available")
	}

	creds, err := m.provider.Refresh(ctx, current.RefreshToken)
	if err != nil {
		m.clear(ctx, ports.EventExpired)
		return nil, apperrors.Wrap(err, apperrors.ErrCodeExchangeFailed, "refresh session")
	}

	refreshed := *current
	refreshed.ID = uuid.NewString()
	refreshed.AccessToken = creds.AccessToken
	refreshed.RefreshToken = creds.RefreshToken
	refreshed.ExpiresAt = creds.ExpiresAt
	m.persist(ctx, refreshed)

	m.mu.Lock()
	m.session = &refreshed
	m.state = StateAuthenticated
	listeners := m.listenerSnapshotLocked()
	m.mu.Unlock()

	m.logger.Info("session refreshed", "subject", refreshed.SubjectID, "expires_at", refreshed.ExpiresAt)
	notify(listeners, ports.SessionEvent{Type: ports.EventLoaded, Session: &refreshed})
	return &refreshed, nil
}

// AccessToken returns the live session's token when present and not expired.
// Otherwise it performs one fallback read from the store, covering the race
// where the in-memory session has not been hydrated yet; the fallback
// re-validates expiry before trusting the snapshot. Never triggers a network
// call against the provider.
func (m *Manager) AccessToken(ctx context.Context) (string, bool) {
	now := m.now()

	m.mu.Lock()
	current := m.session
	m.mu.Unlock()

	if current != nil {
		if !current.Expired(now) {
			return current.AccessToken, true
		}
		m.expireDetected()
	}

	if m.store != nil {
		if snap, err := m.store.Get(ctx); err == nil && !snap.Expired(now) && snap.AccessToken != "" {
			return snap.AccessToken, true
		}
	}
	return "", false
}

// Current returns the current session snapshot, or nil.
func (m *Manager) Current() *domainauth.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// State returns the manager's lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IsAuthenticated reports whether a current session exists and is not expired
// by wall-clock comparison.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	current := m.session
	m.mu.Unlock()

	if current == nil {
		return false
	}
	if current.Expired(m.now()) {
		m.expireDetected()
		return false
	}
	return true
}

// IsTokenExpired reports whether the current session's token is expired.
// No session, or a session without a known expiry, counts as expired.
func (m *Manager) IsTokenExpired() bool {
	m.mu.Lock()
	current := m.session
	m.mu.Unlock()

	if current == nil {
		return true
	}
	return current.Expired(m.now())
}

// HasRole reports whether the current session carries the role. The role name
// is normalized to the configured prefix convention first.
func (m *Manager) HasRole(role string) bool {
	m.mu.Lock()
	current := m.session
	m.mu.Unlock()

	if current == nil {
		return false
	}
	return current.HasRole(domainauth.NormalizeRole(m.rolePrefix, role))
}

// HasAnyRole reports whether the session carries at least one of the roles.
func (m *Manager) HasAnyRole(roles ...string) bool {
	for _, role := range roles {
		if m.HasRole(role) {
			return true
		}
	}
	return false
}

// HasAllRoles reports whether the session carries every one of the roles.
func (m *Manager) HasAllRoles(roles ...string) bool {
	for _, role := range roles {
		if !m.HasRole(role) {
			return false
		}
	}
	return true
}

// ReturnURL returns and clears the single-slot post-login return path. A
// second call returns absent.
func (m *Manager) ReturnURL() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.returnURLSet {
		return "", false
	}
	u := m.returnURL
	m.returnURL = ""
	m.returnURLSet = false
	return u, true
}

// Subscribe registers a session lifecycle listener. Listeners run after the
// backing state transition completes and before the triggering operation
// returns. The returned cancel function removes the listener.
func (m *Manager) Subscribe(fn ports.SessionListener) func() {
	m.mu.Lock()
	id := m.nextListID
	m.nextListID++
	m.listeners[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// buildSession materializes an immutable session snapshot from a provider
// identity, deriving roles through the mapper.
func (m *Manager) buildSession(identity domainauth.Identity) domainauth.Session {
	var roles []string
	if m.roles != nil {
		roles = m.roles.MapGroupsToRoles(identity.Groups)
	} else {
		roles = []string{domainauth.NormalizeRole(m.rolePrefix, "USER")}
	}

	return domainauth.Session{
		ID:           uuid.NewString(),
		SubjectID:    identity.SubjectID,
		Email:        identity.Email,
		DisplayName:  identity.DisplayName,
		FirstName:    identity.FirstName,
		LastName:     identity.LastName,
		Groups:       identity.Groups,
		Roles:        roles,
		AccessToken:  identity.AccessToken,
		RefreshToken: identity.RefreshToken,
		ExpiresAt:    identity.ExpiresAt,
	}
}

// persist writes the snapshot to the store. Storage failures are recovered
// locally: the in-memory session stays authoritative.
func (m *Manager) persist(ctx context.Context, sess domainauth.Session) {
	if m.store == nil {
		return
	}
	if err := m.store.Set(ctx, sess); err != nil {
		m.logger.Warn("persist session snapshot failed", "error", err)
	}
}

// clear removes local and stored session state and notifies listeners when a
// session was actually dropped.
func (m *Manager) clear(ctx context.Context, event ports.EventType) {
	if m.store != nil {
		if err := m.store.Remove(ctx); err != nil {
			m.logger.Warn("remove session snapshot failed", "error", err)
		}
	}

	m.mu.Lock()
	had := m.session != nil
	m.session = nil
	m.state = StateUnauthenticated
	m.pendingState = ""
	m.pendingNonce = ""
	listeners := m.listenerSnapshotLocked()
	m.mu.Unlock()

	if had {
		notify(listeners, ports.SessionEvent{Type: event})
	}
}

// expireDetected drops the session slot after wall-clock expiry is observed.
func (m *Manager) expireDetected() {
	m.mu.Lock()
	if m.session == nil || !m.session.Expired(m.now()) {
		m.mu.Unlock()
		return
	}
	m.session = nil
	m.state = StateUnauthenticated
	listeners := m.listenerSnapshotLocked()
	m.mu.Unlock()

	m.logger.Info("session token expired")
	notify(listeners, ports.SessionEvent{Type: ports.EventExpired})
}

func (m *Manager) setStateUnauthenticated() {
	m.mu.Lock()
	m.state = StateUnauthenticated
	m.mu.Unlock()
}

func (m *Manager) listenerSnapshotLocked() []ports.SessionListener {
	listeners := make([]ports.SessionListener, 0, len(m.listeners))
	for _, fn := range m.listeners {
		listeners = append(listeners, fn)
	}
	return listeners
}

// notify invokes listeners synchronously, outside the manager lock.
func notify(listeners []ports.SessionListener, ev ports.SessionEvent) {
	for _, fn := range listeners {
		fn(ev)
	}
}
