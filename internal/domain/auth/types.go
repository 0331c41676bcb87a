package auth

// Package auth contains domain-level types for identity and sessions.
// It is pure and free of framework/adapter concerns.

import (
	"strings"
	"time"
)

// Credentials are the opaque bearer tokens issued by the identity provider.
type Credentials struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"` // zero means unknown, treated as expired
}

// Expired reports whether the credentials are expired at the given instant.
// Credentials with no known expiry are treated as expired (fail closed).
func (c Credentials) Expired(now time.Time) bool {
	if c.ExpiresAt.IsZero() {
		return true
	}
	return now.After(c.ExpiresAt)
}

// Identity represents the authenticated principal returned by an IdP.
// Adapters map provider-specific claims into this shape.
type Identity struct {
	SubjectID   string // stable provider subject identifier (sub)
	Email       string
	DisplayName string
	FirstName   string
	LastName    string
	Groups      []string
	Credentials
}

// Session is one authenticated identity snapshot. It is immutable once
// constructed; the session manager replaces it wholesale on any change.
type Session struct {
	ID           string    `json:"id"`
	SubjectID    string    `json:"subject_id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	Groups       []string  `json:"groups"`
	Roles        []string  `json:"roles"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Expired reports whether the session's token is expired at the given instant.
// A session with no known expiry is always expired (fail closed).
func (s Session) Expired(now time.Time) bool {
	if s.ExpiresAt.IsZero() {
		return true
	}
	return now.After(s.ExpiresAt)
}

// HasRole reports whether the session carries the given role. The role must
// already be in the normalized (prefixed) form.
func (s Session) HasRole(role string) bool {
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// NormalizeRole applies the role prefix convention to a role name so that
// "ADMIN" and "ROLE_ADMIN" check the same membership.
func NormalizeRole(prefix, role string) string {
	if prefix == "" || strings.HasPrefix(role, prefix) {
		return role
	}
	return prefix + role
}
