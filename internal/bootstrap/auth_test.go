package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pcagrade/planning-client/config"
	apperrors "github.com/pcagrade/planning-client/internal/errors"
	"github.com/pcagrade/planning-client/internal/session"
)

func rolesConfig() config.RolesConfig {
	return config.RolesConfig{
		Prefix:  "ROLE_",
		Default: "ROLE_USER",
		Map: map[string]string{
			"admins": "ROLE_ADMIN",
			"users":  "ROLE_USER",
		},
	}
}

func TestBuildSessionManager_BypassMode(t *testing.T) {
	mgr := BuildSessionManager(SessionManagerConfig{
		Auth: config.AuthConfig{
			Mode:  config.AuthModeBypass,
			Roles: rolesConfig(),
			Bypass: config.BypassConfig{
				SubjectID:   "dev-user",
				Email:       "dev@example.com",
				DisplayName: "Dev User",
				Groups:      []string{"admins", "users"},
			},
		},
	})

	require.IsType(t, &session.BypassManager{}, mgr)
	assert.True(t, mgr.IsAuthenticated())
	assert.True(t, mgr.HasRole("ADMIN"))

	sess := mgr.Current()
	require.NotNil(t, sess)
	assert.Equal(t, "dev-user", sess.SubjectID)
}

func TestBuildSessionManager_OAuthIncompleteDegrades(t *testing.T) {
	// Missing issuer and client: construction still succeeds but login
	// surfaces the configuration problem.
	mgr := BuildSessionManager(SessionManagerConfig{
		Auth: config.AuthConfig{
			Mode:  config.AuthModeOAuth,
			Roles: rolesConfig(),
		},
	})

	require.IsType(t, &session.Manager{}, mgr)
	assert.False(t, mgr.IsAuthenticated())

	_, err := mgr.Login(context.Background(), "/")
	assert.True(t, apperrors.IsConfigurationMissing(err))
}

func TestBuildSessionManager_OAuthUnreachableIssuerDegrades(t *testing.T) {
	mgr := BuildSessionManager(SessionManagerConfig{
		Auth: config.AuthConfig{
			Mode: config.AuthModeOAuth,
			OAuth: config.OAuthConfig{
				IssuerURL:   "http://127.0.0.1:1/realm",
				ClientID:    "planning-web",
				RedirectURL: "http://localhost:3000/callback",
				GroupsClaim: "groups",
				Scope:       "openid profile",
			},
			Roles: rolesConfig(),
		},
	})

	// Discovery fails; the manager still exists and reports the problem on use.
	require.IsType(t, &session.Manager{}, mgr)
	_, err := mgr.Login(context.Background(), "/")
	assert.True(t, apperrors.IsConfigurationMissing(err))
}

func TestBuildRedisClient(t *testing.T) {
	client := BuildRedisClient(config.RedisConfig{Addr: "localhost:6379", DB: 3})
	require.NotNil(t, client)
	assert.NoError(t, client.Close())
}

func TestBuildAPIClient(t *testing.T) {
	client, err := BuildAPIClient(config.APIConfig{BaseURL: "http://localhost:8080"}, nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, client)

	_, err = BuildAPIClient(config.APIConfig{}, nil, nil)
	assert.True(t, apperrors.IsValidation(err))
}
