package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/pcagrade/planning-client/internal/domain/auth"
	"github.com/pcagrade/planning-client/internal/ports"
)

// BypassOptions configures the development bypass session.
type BypassOptions struct {
	SubjectID   string
	Email       string
	DisplayName string
	Groups      []string

	// Roles derives the synthetic session's roles from Groups. When nil the
	// session carries the full default role set.
	Roles      ports.RoleMapper
	RolePrefix string

	// SessionDuration bounds the synthetic token lifetime. Far-future by
	// convention; the session never actually expires during a process run.
	SessionDuration time.Duration

	Logger *slog.Logger
	Now    func() time.Time
}

// BypassManager implements ports.SessionManager with a fixed synthetic
// session. It is permanently authenticated: logout and refresh are no-ops
// that keep the session in place, and no lifecycle events ever fire. It
// exposes no access token, so requests go out without credentials.
type BypassManager struct {
	session    domainauth.Session
	rolePrefix string
	logger     *slog.Logger

	mu           sync.Mutex
	returnURL    string
	returnURLSet bool
}

var _ ports.SessionManager = (*BypassManager)(nil)

// NewBypassManager builds a manager around one synthetic session.
func NewBypassManager(opts BypassOptions) *BypassManager {
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
	duration := opts.SessionDuration
	if duration <= 0 {
		duration = 10 * 365 * 24 * time.Hour
	}

	var roles []string
	if opts.Roles != nil {
		roles = opts.Roles.MapGroupsToRoles(opts.Groups)
	} else {
		// Without a mapper the bypass session still grants everything,
		// including the admin role.
		roles = []string{prefix + "ADMIN", prefix + "MANAGER", prefix + "USER"}
	}

	logger.Warn("authentication bypass active, do not use in production",
		"subject", opts.SubjectID, "roles", roles)

	return &BypassManager{
		session: domainauth.Session{
			ID:          uuid.NewString(),
			SubjectID:   opts.SubjectID,
			Email:       opts.Email,
			DisplayName: opts.DisplayName,
			Groups:      opts.Groups,
			Roles:       roles,
			ExpiresAt:   now().Add(duration),
		},
		rolePrefix: prefix,
		logger:     logger,
	}
}

func (m *BypassManager) Initialize(ctx context.Context) {}

// Login skips the provider entirely and sends the caller straight to the
// return path.
func (m *BypassManager) Login(ctx context.Context, returnPath string) (string, error) {
	if returnPath == "" {
		returnPath = "/"
	}
	m.mu.Lock()
	m.returnURL = returnPath
	m.returnURLSet = true
	m.mu.Unlock()
	return returnPath, nil
}

func (m *BypassManager) HandleCallback(ctx context.Context, code, state string) (*domainauth.Session, error) {
	return &m.session, nil
}

// Logout leaves the synthetic session in place. The bypass state is permanent
// for the process lifetime.
func (m *BypassManager) Logout(ctx context.Context) (string, error) {
	m.logger.Debug("logout ignored in bypass mode")
	return "/", nil
}

func (m *BypassManager) SilentLogout(ctx context.Context) {}

func (m *BypassManager) Refresh(ctx context.Context) (*domainauth.Session, error) {
	return &m.session, nil
}

// AccessToken reports no token: bypass requests carry no credentials.
func (m *BypassManager) AccessToken(ctx context.Context) (string, bool) {
	return "", false
}

func (m *BypassManager) Current() *domainauth.Session {
	return &m.session
}

func (m *BypassManager) IsAuthenticated() bool { return true }

func (m *BypassManager) IsTokenExpired() bool { return false }

func (m *BypassManager) HasRole(role string) bool {
	return m.session.HasRole(domainauth.NormalizeRole(m.rolePrefix, role))
}

func (m *BypassManager) HasAnyRole(roles ...string) bool {
	for _, role := range roles {
		if m.HasRole(role) {
			return true
		}
	}
	return false
}

func (m *BypassManager) HasAllRoles(roles ...string) bool {
	for _, role := range roles {
		if !m.HasRole(role) {
			return false
		}
	}
	return true
}

func (m *BypassManager) ReturnURL() (string, bool) {
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

// Subscribe accepts listeners for interface parity. The bypass session never
// transitions, so no event ever fires.
func (m *BypassManager) Subscribe(fn ports.SessionListener) func() {
	return func() {}
}
