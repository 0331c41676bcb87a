package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pcagrade/planning-client/internal/adapters/authroles"
	domainauth "github.com/pcagrade/planning-client/internal/domain/auth"
	apperrors "github.com/pcagrade/planning-client/internal/errors"
	mocksauth "github.com/pcagrade/planning-client/internal/mocks/auth"
	"github.com/pcagrade/planning-client/internal/ports"
	"github.com/pcagrade/planning-client/internal/testutil"
)

type managerFixture struct {
	provider *mocksauth.MockIdentityProvider
	store    *mocksauth.MemorySessionStore
	manager  *Manager
	now      time.Time
	nowMu    sync.Mutex
}

func (f *managerFixture) clock() time.Time {
	f.nowMu.Lock()
	defer f.nowMu.Unlock()
	return f.now
}

func (f *managerFixture) advance(d time.Duration) {
	f.nowMu.Lock()
	f.now = f.now.Add(d)
	f.nowMu.Unlock()
}

func newFixture(t *testing.T) *managerFixture {
	t.Helper()

	f := &managerFixture{
		provider: mocksauth.NewMockIdentityProvider(),
		store:    mocksauth.NewMemorySessionStore(),
		now:      testutil.TestTime(),
	}
	f.manager = NewManager(ManagerOptions{
		Provider:   f.provider,
		Store:      f.store,
		Roles:      mocksauth.FixedRoleMapper{Roles: []string{"ROLE_USER"}},
		RolePrefix: "ROLE_",
		Logger:     slog.Default(),
		Now:        f.clock,
	})
	return f
}

func storedSession(now time.Time, ttl time.Duration) domainauth.Session {
	return domainauth.Session{
		ID:           "stored-1",
		SubjectID:    "subject-1",
		Email:        "user@example.com",
		DisplayName:  "Stored User",
		Groups:       []string{"users"},
		Roles:        []string{"ROLE_USER"},
		AccessToken:  "stored-access",
		RefreshToken: "stored-refresh",
		ExpiresAt:    now.Add(ttl),
	}
}

// events collects session lifecycle notifications.
type events struct {
	mu   sync.Mutex
	list []ports.SessionEvent
}

func (e *events) record(ev ports.SessionEvent) {
	e.mu.Lock()
	e.list = append(e.list, ev)
	e.mu.Unlock()
}

func (e *events) types() []ports.EventType {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]ports.EventType, len(e.list))
	for i, ev := range e.list {
		out[i] = ev.Type
	}
	return out
}

func TestManager_InitializeRestoresStoredSession(t *testing.T) {
	f := newFixture(t)
	f.store.Seed(storedSession(f.clock(), 30*time.Minute))

	var ev events
	f.manager.Subscribe(ev.record)

	f.manager.Initialize(context.Background())

	assert.True(t, f.manager.IsAuthenticated())
	assert.Equal(t, StateAuthenticated, f.manager.State())
	require.NotNil(t, f.manager.Current())
	assert.Equal(t, "subject-1", f.manager.Current().SubjectID)
	assert.Equal(t, []ports.EventType{ports.EventLoaded}, ev.types())
}

func TestManager_InitializeDiscardsExpiredSnapshot(t *testing.T) {
	f := newFixture(t)
	f.store.Seed(storedSession(f.clock(), -10*time.Second))

	var ev events
	f.manager.Subscribe(ev.record)

	f.manager.Initialize(context.Background())

	assert.False(t, f.manager.IsAuthenticated())
	assert.Nil(t, f.manager.Current())
	assert.Empty(t, ev.types())
}

func TestManager_InitializeRunsOnce(t *testing.T) {
	f := newFixture(t)

	f.manager.Initialize(context.Background())
	assert.False(t, f.manager.IsAuthenticated())

	// A snapshot appearing later must not be picked up by a repeat call.
	f.store.Seed(storedSession(f.clock(), 30*time.Minute))
	f.manager.Initialize(context.Background())

	assert.False(t, f.manager.IsAuthenticated())
}

func TestManager_InitializeSwallowsStorageErrors(t *testing.T) {
	f := newFixture(t)
	f.store.GetErr = errors.New("redis down")

	f.manager.Initialize(context.Background())

	assert.False(t, f.manager.IsAuthenticated())
	assert.Equal(t, StateUnauthenticated, f.manager.State())
}

func TestManager_LoginReturnsAuthURLAndStoresReturnPath(t *testing.T) {
	f := newFixture(t)

	authURL, err := f.manager.Login(context.Background(), "/planning/week")
	require.NoError(t, err)
	assert.Equal(t, "https://mock-idp/auth", authURL)
	assert.Equal(t, StateAwaitingRedirect, f.manager.State())

	got, ok := f.manager.ReturnURL()
	assert.True(t, ok)
	assert.Equal(t, "/planning/week", got)
}

func TestManager_LoginWithoutProvider(t *testing.T) {
	f := newFixture(t)
	f.manager.provider = nil

	_, err := f.manager.Login(context.Background(), "")
	assert.True(t, apperrors.IsConfigurationMissing(err))
	assert.Equal(t, StateUnauthenticated, f.manager.State())
}

func TestManager_ReturnURLReadsAndClears(t *testing.T) {
	f := newFixture(t)

	_, err := f.manager.Login(context.Background(), "/cards/42")
	require.NoError(t, err)

	got, ok := f.manager.ReturnURL()
	assert.True(t, ok)
	assert.Equal(t, "/cards/42", got)

	_, ok = f.manager.ReturnURL()
	assert.False(t, ok)
}

func TestManager_ReturnURLOverwrittenByEachLogin(t *testing.T) {
	f := newFixture(t)

	_, err := f.manager.Login(context.Background(), "/first")
	require.NoError(t, err)
	_, err = f.manager.Login(context.Background(), "/second")
	require.NoError(t, err)

	got, ok := f.manager.ReturnURL()
	assert.True(t, ok)
	assert.Equal(t, "/second", got)
}

func TestManager_HandleCallbackCompletesLogin(t *testing.T) {
	f := newFixture(t)
	f.manager.roles = authroles.NewTableRoleMapper("ROLE_", "ROLE_USER", map[string]string{
		"admins": "ROLE_ADMIN",
	})
	f.provider.DefaultUser.Groups = []string{"admins"}

	var ev events
	f.manager.Subscribe(ev.record)

	_, err := f.manager.Login(context.Background(), "")
	require.NoError(t, err)

	sess, err := f.manager.HandleCallback(context.Background(), "auth-code", "state-1")
	require.NoError(t, err)

	assert.Equal(t, []string{"ROLE_ADMIN"}, sess.Roles)
	assert.Equal(t, "mock-user-1", sess.SubjectID)
	assert.NotEmpty(t, sess.ID)
	assert.True(t, f.manager.IsAuthenticated())
	assert.Equal(t, StateAuthenticated, f.manager.State())
	assert.Equal(t, []ports.EventType{ports.EventLoaded}, ev.types())

	// The new session was persisted.
	stored := f.store.Stored()
	require.NotNil(t, stored)
	assert.Equal(t, sess.ID, stored.ID)
}

func TestManager_HandleCallbackPassesNonceToExchange(t *testing.T) {
	f := newFixture(t)

	var gotNonce, gotCode string
	f.provider.ExchangeFunc = func(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
		gotNonce = in.Nonce
		gotCode = in.Code
		id := mocksauth.NewMockIdentityProvider().DefaultUser
		id.ExpiresAt = f.clock().Add(time.Hour)
		return id, nil
	}

	_, err := f.manager.Login(context.Background(), "")
	require.NoError(t, err)

	_, err = f.manager.HandleCallback(context.Background(), "auth-code", "state-1")
	require.NoError(t, err)

	assert.Equal(t, "nonce-1", gotNonce)
	assert.Equal(t, "auth-code", gotCode)
}

func TestManager_HandleCallbackStateMismatch(t *testing.T) {
	f := newFixture(t)

	_, err := f.manager.Login(context.Background(), "")
	require.NoError(t, err)

	_, err = f.manager.HandleCallback(context.Background(), "auth-code", "forged-state")
	assert.True(t, apperrors.IsExchangeFailed(err))
	assert.False(t, f.manager.IsAuthenticated())
	assert.Equal(t, StateUnauthenticated, f.manager.State())
}

func TestManager_HandleCallbackExchangeFailure(t *testing.T) {
	f := newFixture(t)
	f.provider.ExchangeFunc = func(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
		return domainauth.Identity{}, errors.New("idp rejected code")
	}

	var ev events
	f.manager.Subscribe(ev.record)

	_, err := f.manager.Login(context.Background(), "")
	require.NoError(t, err)

	_, err = f.manager.HandleCallback(context.Background(), "bad-code", "state-1")
	assert.True(t, apperrors.IsExchangeFailed(err))
	assert.False(t, f.manager.IsAuthenticated())
	assert.Empty(t, ev.types())
}

func TestManager_HandleCallbackPersistFailureIsLocal(t *testing.T) {
	f := newFixture(t)
	f.store.SetErr = errors.New("redis down")

	_, err := f.manager.Login(context.Background(), "")
	require.NoError(t, err)

	sess, err := f.manager.HandleCallback(context.Background(), "auth-code", "state-1")
	require.NoError(t, err)
	require.NotNil(t, sess)

	// In-memory session stays authoritative despite the storage failure.
	assert.True(t, f.manager.IsAuthenticated())
}

func TestManager_LastCompletedLoginWins(t *testing.T) {
	f := newFixture(t)

	_, err := f.manager.Login(context.Background(), "")
	require.NoError(t, err)
	first, err := f.manager.HandleCallback(context.Background(), "code-1", "state-1")
	require.NoError(t, err)

	_, err = f.manager.Login(context.Background(), "")
	require.NoError(t, err)
	second, err := f.manager.HandleCallback(context.Background(), "code-2", "state-2")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, second.ID, f.manager.Current().ID)
}

func TestManager_LogoutClearsAndReturnsEndSessionURL(t *testing.T) {
	f := newFixture(t)
	f.store.Seed(storedSession(f.clock(), 30*time.Minute))
	f.manager.Initialize(context.Background())
	require.True(t, f.manager.IsAuthenticated())

	var ev events
	f.manager.Subscribe(ev.record)

	endSession, err := f.manager.Logout(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://mock-idp/logout", endSession)
	assert.False(t, f.manager.IsAuthenticated())
	assert.Nil(t, f.store.Stored())
	assert.Equal(t, []ports.EventType{ports.EventUnloaded}, ev.types())
}

func TestManager_LogoutDegradedStillClears(t *testing.T) {
	f := newFixture(t)
	f.provider.EndSessionURLFunc = func() (string, error) {
		return "", errors.New("discovery had no end_session_endpoint")
	}
	f.store.Seed(storedSession(f.clock(), 30*time.Minute))
	f.manager.Initialize(context.Background())

	endSession, err := f.manager.Logout(context.Background())
	assert.Empty(t, endSession)
	assert.True(t, apperrors.IsConfigurationMissing(err))
	assert.False(t, f.manager.IsAuthenticated())
	assert.Nil(t, f.store.Stored())
}

func TestManager_LogoutWithoutSessionEmitsNoEvent(t *testing.T) {
	f := newFixture(t)

	var ev events
	f.manager.Subscribe(ev.record)

	_, err := f.manager.Logout(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ev.types())
}

func TestManager_SilentLogout(t *testing.T) {
	f := newFixture(t)
	f.store.Seed(storedSession(f.clock(), 30*time.Minute))
	f.manager.Initialize(context.Background())

	endSessionCalled := false
	f.provider.EndSessionURLFunc = func() (string, error) {
		endSessionCalled = true
		return "https://mock-idp/logout", nil
	}

	var ev events
	f.manager.Subscribe(ev.record)

	f.manager.SilentLogout(context.Background())

	assert.False(t, f.manager.IsAuthenticated())
	assert.Nil(t, f.store.Stored())
	assert.False(t, endSessionCalled)
	assert.Equal(t, []ports.EventType{ports.EventUnloaded}, ev.types())
}

func TestManager_RefreshReplacesCredentials(t *testing.T) {
	f := newFixture(t)
	f.store.Seed(storedSession(f.clock(), 30*time.Minute))
	f.manager.Initialize(context.Background())
	oldID := f.manager.Current().ID

	var ev events
	f.manager.Subscribe(ev.record)

	refreshed, err := f.manager.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "refreshed-access-1", refreshed.AccessToken)
	assert.Equal(t, "stored-refresh", refreshed.RefreshToken)
	assert.NotEqual(t, oldID, refreshed.ID)
	assert.Equal(t, "subject-1", refreshed.SubjectID)
	assert.Equal(t, []ports.EventType{ports.EventLoaded}, ev.types())

	stored := f.store.Stored()
	require.NotNil(t, stored)
	assert.Equal(t, refreshed.ID, stored.ID)
}

func TestManager_RefreshFailureDestroysSession(t *testing.T) {
	f := newFixture(t)
	f.provider.RefreshFunc = func(ctx context.Context, refreshToken string) (domainauth.Credentials, error) {
		return domainauth.Credentials{}, errors.New("invalid_grant")
	}
	f.store.Seed(storedSession(f.clock(), 30*time.Minute))
	f.manager.Initialize(context.Background())

	var ev events
	f.manager.Subscribe(ev.record)

	_, err := f.manager.Refresh(context.Background())
	assert.True(t, apperrors.IsExchangeFailed(err))
	assert.False(t, f.manager.IsAuthenticated())
	assert.Nil(t, f.store.Stored())
	assert.Equal(t, []ports.EventType{ports.EventExpired}, ev.types())
}

func TestManager_RefreshWithoutRefreshToken(t *testing.T) {
	f := newFixture(t)

	_, err := f.manager.Refresh(context.Background())
	assert.True(t, apperrors.IsExchangeFailed(err))
}

func TestManager_RefreshFallsBackToStoredSnapshot(t *testing.T) {
	f := newFixture(t)
	// Not initialized: memory is empty but storage carries a snapshot.
	f.store.Seed(storedSession(f.clock(), 30*time.Minute))

	refreshed, err := f.manager.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "refreshed-access-1", refreshed.AccessToken)
	assert.True(t, f.manager.IsAuthenticated())
}

func TestManager_AccessTokenFromLiveSession(t *testing.T) {
	f := newFixture(t)
	f.store.Seed(storedSession(f.clock(), 30*time.Minute))
	f.manager.Initialize(context.Background())

	token, ok := f.manager.AccessToken(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "stored-access", token)
	assert.Equal(t, 0, f.provider.RefreshCalls)
}

func TestManager_AccessTokenFallsBackToStore(t *testing.T) {
	f := newFixture(t)
	// Snapshot present but Initialize never called.
	f.store.Seed(storedSession(f.clock(), 30*time.Minute))

	token, ok := f.manager.AccessToken(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "stored-access", token)
}

func TestManager_AccessTokenFallbackRechecksExpiry(t *testing.T) {
	f := newFixture(t)
	f.store.Seed(storedSession(f.clock(), -time.Minute))

	_, ok := f.manager.AccessToken(context.Background())
	assert.False(t, ok)
}

func TestManager_AccessTokenAbsentWhenUnauthenticated(t *testing.T) {
	f := newFixture(t)

	token, ok := f.manager.AccessToken(context.Background())
	assert.False(t, ok)
	assert.Empty(t, token)
}

func TestManager_ExpiryDetectionClearsSession(t *testing.T) {
	f := newFixture(t)
	f.store.Seed(storedSession(f.clock(), 10*time.Minute))
	f.manager.Initialize(context.Background())
	require.True(t, f.manager.IsAuthenticated())

	var ev events
	f.manager.Subscribe(ev.record)

	f.advance(11 * time.Minute)

	assert.False(t, f.manager.IsAuthenticated())
	assert.Nil(t, f.manager.Current())
	assert.Equal(t, []ports.EventType{ports.EventExpired}, ev.types())

	// Repeat reads do not emit again.
	assert.False(t, f.manager.IsAuthenticated())
	assert.Equal(t, []ports.EventType{ports.EventExpired}, ev.types())
}

func TestManager_IsTokenExpired(t *testing.T) {
	f := newFixture(t)
	assert.True(t, f.manager.IsTokenExpired())

	f.store.Seed(storedSession(f.clock(), 10*time.Minute))
	f.manager.Initialize(context.Background())
	assert.False(t, f.manager.IsTokenExpired())

	f.advance(11 * time.Minute)
	assert.True(t, f.manager.IsTokenExpired())
}

func TestManager_RoleChecks(t *testing.T) {
	f := newFixture(t)
	sess := storedSession(f.clock(), 30*time.Minute)
	sess.Roles = []string{"ROLE_ADMIN", "ROLE_USER"}
	f.store.Seed(sess)
	f.manager.Initialize(context.Background())

	// Bare and prefixed names check the same membership.
	assert.True(t, f.manager.HasRole("ADMIN"))
	assert.True(t, f.manager.HasRole("ROLE_ADMIN"))
	assert.False(t, f.manager.HasRole("NOTEUR"))

	assert.True(t, f.manager.HasAnyRole("NOTEUR", "ADMIN"))
	assert.False(t, f.manager.HasAnyRole("NOTEUR", "SCANNEUR"))
	assert.False(t, f.manager.HasAnyRole())

	assert.True(t, f.manager.HasAllRoles("ADMIN", "USER"))
	assert.False(t, f.manager.HasAllRoles("ADMIN", "NOTEUR"))
	assert.True(t, f.manager.HasAllRoles())
}

func TestManager_RoleChecksWithoutSession(t *testing.T) {
	f := newFixture(t)

	assert.False(t, f.manager.HasRole("USER"))
	assert.False(t, f.manager.HasAnyRole("USER"))
	assert.False(t, f.manager.HasAllRoles("USER"))
}

func TestManager_SubscribeCancelStopsNotifications(t *testing.T) {
	f := newFixture(t)

	var ev events
	cancel := f.manager.Subscribe(ev.record)
	cancel()

	f.store.Seed(storedSession(f.clock(), 30*time.Minute))
	f.manager.Initialize(context.Background())

	assert.Empty(t, ev.types())
}

func TestManager_ListenerRunsBeforeOperationReturns(t *testing.T) {
	f := newFixture(t)

	notified := false
	f.manager.Subscribe(func(ev ports.SessionEvent) {
		notified = true
		require.NotNil(t, ev.Session)
		assert.Equal(t, ports.EventLoaded, ev.Type)
	})

	_, err := f.manager.Login(context.Background(), "")
	require.NoError(t, err)
	_, err = f.manager.HandleCallback(context.Background(), "code", "state-1")
	require.NoError(t, err)

	assert.True(t, notified)
}

func TestManager_ListenerMayCallBackIntoManager(t *testing.T) {
	f := newFixture(t)

	// Listeners run outside the manager lock, so re-entrant reads must not
	// deadlock.
	var seenAuthenticated bool
	f.manager.Subscribe(func(ev ports.SessionEvent) {
		seenAuthenticated = f.manager.IsAuthenticated()
	})

	f.store.Seed(storedSession(f.clock(), 30*time.Minute))
	f.manager.Initialize(context.Background())

	assert.True(t, seenAuthenticated)
}

func TestManager_CallbackWithoutProvider(t *testing.T) {
	f := newFixture(t)
	f.manager.provider = nil

	_, err := f.manager.HandleCallback(context.Background(), "code", "state")
	assert.True(t, apperrors.IsConfigurationMissing(err))
}
