// Package guard decides whether a navigation target is accessible for the
// current session: allow it, bounce through login, or deny outright.
package guard

import (
	"context"
	"log/slog"

	"github.com/pcagrade/planning-client/internal/ports"
)

// Requirement describes what a destination demands from the session.
type Requirement struct {
	// RequiresAuth marks destinations that need an authenticated session.
	RequiresAuth bool

	// Roles lists acceptable roles; any one grants access. Role names may be
	// bare ("ADMIN") or prefixed ("ROLE_ADMIN"). A non-empty list implies
	// RequiresAuth.
	Roles []string
}

// Action is the guard's verdict.
type Action int

const (
	// ActionAllow lets the navigation proceed.
	ActionAllow Action = iota
	// ActionLogin redirects through the login flow; the original destination
	// is registered as the post-login return path.
	ActionLogin
	// ActionDeny blocks an authenticated session that lacks the required role.
	ActionDeny
)

func (a Action) String() string {
	switch a {
	case ActionAllow:
		return "allow"
	case ActionLogin:
		return "login"
	case ActionDeny:
		return "deny"
	default:
		return "unknown"
	}
}

// Decision is the guard outcome for one navigation.
type Decision struct {
	Action Action

	// RedirectURL is the provider auth URL when Action is ActionLogin.
	RedirectURL string
}

// Guard evaluates requirements against the session manager.
type Guard struct {
	sessions ports.SessionManager
	logger   *slog.Logger
}

// New builds a guard over the given session manager.
func New(sessions ports.SessionManager, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{sessions: sessions, logger: logger}
}

// Check evaluates one navigation to path against its requirement. An
// unauthenticated (or expired) session on a protected destination starts a
// login flow with path as the return target; an authenticated session missing
// every listed role is denied.
func (g *Guard) Check(ctx context.Context, path string, req Requirement) (Decision, error) {
	if !req.RequiresAuth && len(req.Roles) == 0 {
		return Decision{Action: ActionAllow}, nil
	}

	if !g.sessions.IsAuthenticated() {
		authURL, err := g.sessions.Login(ctx, path)
		if err != nil {
			g.logger.Warn("login flow unavailable for protected destination",
				"path", path, "error", err)
			return Decision{Action: ActionDeny}, err
		}
		g.logger.Debug("redirecting to login", "path", path)
		return Decision{Action: ActionLogin, RedirectURL: authURL}, nil
	}

	if len(req.Roles) > 0 && !g.sessions.HasAnyRole(req.Roles...) {
		g.logger.Info("access denied, missing role", "path", path, "required_any", req.Roles)
		return Decision{Action: ActionDeny}, nil
	}

	return Decision{Action: ActionAllow}, nil
}
