package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeOAuth uses the OIDC authorization-code flow against the provider.
	AuthModeOAuth AuthMode = "oauth"
	// AuthModeBypass substitutes a static identity when authentication is
	// administratively disabled (development and offline environments only).
	AuthModeBypass AuthMode = "bypass"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "oauth", "bypass":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oauth, bypass)", v)
	}
}

// OAuthConfig contains OIDC provider configuration.
type OAuthConfig struct {
	// IssuerURL is the provider authority used for discovery.
	IssuerURL string `env:"ISSUER_URL"`

	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`

	RedirectURL           string `env:"REDIRECT_URL"             envDefault:"http://localhost:3000/callback"`
	PostLogoutRedirectURL string `env:"POST_LOGOUT_REDIRECT_URL" envDefault:"http://localhost:3000/"`

	Scope string `env:"SCOPE" envDefault:"openid profile email groups offline_access"`

	// LogoutURL overrides the discovered end_session_endpoint when set.
	LogoutURL string `env:"LOGOUT_URL"`

	// GroupsClaim is the JMESPath expression locating the groups claim in the
	// provider's claim set.
	GroupsClaim string `env:"GROUPS_CLAIM" envDefault:"groups"`
}

// Complete reports whether the settings required to initiate a login are present.
func (c OAuthConfig) Complete() bool {
	return c.IssuerURL != "" && c.ClientID != "" && c.RedirectURL != ""
}

// RolesConfig controls how provider groups map to application roles.
// The mapping table is static configuration: loaded once, immutable after.
type RolesConfig struct {
	// Prefix is prepended to unprefixed role names before membership checks.
	Prefix string `env:"PREFIX" envDefault:"ROLE_"`

	// Default is emitted when the provider reports no groups.
	Default string `env:"DEFAULT" envDefault:"ROLE_USER"`

	// Map is the lower-cased group name to role table. Unmapped groups
	// synthesize a role from the prefix and the uppercased group name.
	Map map[string]string `env:"MAP" envSeparator:";" envKeyValSeparator:":" envDefault:"noteurs:ROLE_NOTEUR;certificateurs:ROLE_CERTIFICATEUR;scanneurs:ROLE_SCANNEUR;admins:ROLE_ADMIN;managers:ROLE_MANAGER;users:ROLE_USER"`
}

// BypassConfig controls the static identity used when Mode=bypass.
type BypassConfig struct {
	SubjectID   string   `env:"SUBJECT_ID"   envDefault:"dev-user"`
	Email       string   `env:"EMAIL"        envDefault:"dev@example.com"`
	DisplayName string   `env:"DISPLAY_NAME" envDefault:"Dev User"`
	Groups      []string `env:"GROUPS"       envDefault:"admins;managers;users" envSeparator:";"`

	// SessionDuration is the fixed long-lived expiry of the bypass session.
	SessionDuration time.Duration `env:"SESSION_DURATION" envDefault:"87600h"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which session manager variant to construct.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oauth"`

	// OAuth configuration (used when Mode=oauth).
	OAuth OAuthConfig `envPrefix:"OAUTH_"`

	// Role mapping configuration, shared by both modes.
	Roles RolesConfig `envPrefix:"ROLE_"`

	// Bypass configuration (used when Mode=bypass).
	Bypass BypassConfig `envPrefix:"BYPASS_"`
}
