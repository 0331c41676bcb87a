package config

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthMode_UnmarshalText(t *testing.T) {
	tests := []struct {
		input   string
		want    AuthMode
		wantErr bool
	}{
		{"oauth", AuthModeOAuth, false},
		{"OAUTH", AuthModeOAuth, false},
		{"bypass", AuthModeBypass, false},
		{"Bypass", AuthModeBypass, false},
		{"mock", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var mode AuthMode
			err := mode.UnmarshalText([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, mode)
		})
	}
}

func TestAppConfig_Defaults(t *testing.T) {
	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))

	assert.Equal(t, AuthModeOAuth, cfg.Auth.Mode)
	assert.Equal(t, "openid profile email groups offline_access", cfg.Auth.OAuth.Scope)
	assert.Equal(t, "groups", cfg.Auth.OAuth.GroupsClaim)
	assert.Equal(t, "ROLE_", cfg.Auth.Roles.Prefix)
	assert.Equal(t, "ROLE_USER", cfg.Auth.Roles.Default)
	assert.Equal(t, "ROLE_ADMIN", cfg.Auth.Roles.Map["admins"])
	assert.Equal(t, "http://localhost:8080", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, []string{"admins", "managers", "users"}, cfg.Auth.Bypass.Groups)
}

func TestAppConfig_Environment(t *testing.T) {
	t.Setenv("AUTH_MODE", "bypass")
	t.Setenv("OAUTH_ISSUER_URL", "https://auth.example.com/application/o/planning/")
	t.Setenv("OAUTH_CLIENT_ID", "planning-web")
	t.Setenv("ROLE_MAP", "graders:ROLE_GRADER;admins:ROLE_ADMIN")
	t.Setenv("API_BASE_URL", "https://api.example.com")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))

	assert.Equal(t, AuthModeBypass, cfg.Auth.Mode)
	assert.Equal(t, "https://auth.example.com/application/o/planning/", cfg.Auth.OAuth.IssuerURL)
	assert.Equal(t, "planning-web", cfg.Auth.OAuth.ClientID)
	assert.Equal(t, map[string]string{"graders": "ROLE_GRADER", "admins": "ROLE_ADMIN"}, cfg.Auth.Roles.Map)
	assert.Equal(t, "https://api.example.com", cfg.API.BaseURL)
}

func TestOAuthConfig_Complete(t *testing.T) {
	cfg := OAuthConfig{
		IssuerURL:   "https://auth.example.com",
		ClientID:    "planning-web",
		RedirectURL: "http://localhost:3000/callback",
	}
	assert.True(t, cfg.Complete())

	assert.False(t, OAuthConfig{ClientID: "planning-web", RedirectURL: "x"}.Complete())
	assert.False(t, OAuthConfig{IssuerURL: "https://auth.example.com", RedirectURL: "x"}.Complete())
	assert.False(t, OAuthConfig{IssuerURL: "https://auth.example.com", ClientID: "planning-web"}.Complete())
}
