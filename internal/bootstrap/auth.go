package bootstrap

import (
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/pcagrade/planning-client/config"
	"github.com/pcagrade/planning-client/internal/adapters/authroles"
	"github.com/pcagrade/planning-client/internal/adapters/oidc"
	redisadapter "github.com/pcagrade/planning-client/internal/adapters/redis"
	"github.com/pcagrade/planning-client/internal/ports"
	"github.com/pcagrade/planning-client/internal/session"
)

// SessionManagerConfig contains configuration for building the session manager.
type SessionManagerConfig struct {
	Auth config.AuthConfig

	// RedisClient backs the session snapshot store. May be nil; sessions then
	// live in memory only and do not survive a restart.
	RedisClient redis.UniversalClient

	Logger *slog.Logger
}

// BuildSessionManager creates the session manager for the configured auth
// mode. It always returns a usable manager: incomplete OAuth configuration
// degrades to a manager whose login attempts report the missing configuration
// instead of failing construction.
func BuildSessionManager(cfg SessionManagerConfig) ports.SessionManager {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// Role mapper is shared by both modes.
	roleMapper := authroles.NewTableRoleMapper(
		cfg.Auth.Roles.Prefix,
		cfg.Auth.Roles.Default,
		cfg.Auth.Roles.Map,
	)

	if cfg.Auth.Mode == config.AuthModeBypass {
		return session.NewBypassManager(session.BypassOptions{
			SubjectID:       cfg.Auth.Bypass.SubjectID,
			Email:           cfg.Auth.Bypass.Email,
			DisplayName:     cfg.Auth.Bypass.DisplayName,
			Groups:          cfg.Auth.Bypass.Groups,
			Roles:           roleMapper,
			RolePrefix:      cfg.Auth.Roles.Prefix,
			SessionDuration: cfg.Auth.Bypass.SessionDuration,
			Logger:          logger,
		})
	}

	return session.NewManager(session.ManagerOptions{
		Provider:   buildProvider(cfg.Auth.OAuth, logger),
		Store:      buildSessionStore(cfg, logger),
		Roles:      roleMapper,
		RolePrefix: cfg.Auth.Roles.Prefix,
		Logger:     logger,
	})
}

// buildProvider constructs the OIDC provider, or nil when configuration is
// missing or discovery fails. A nil provider leaves the manager in a degraded
// state where login reports the configuration problem.
func buildProvider(oauth config.OAuthConfig, logger *slog.Logger) ports.IdentityProvider {
	if !oauth.Complete() {
		logger.Warn("oauth configuration incomplete, login disabled",
			"issuer_url_empty", oauth.IssuerURL == "",
			"client_id_empty", oauth.ClientID == "",
			"redirect_url_empty", oauth.RedirectURL == "",
		)
		return nil
	}

	prov, err := oidc.NewProvider(oidc.ProviderConfig{
		IssuerURL:             oauth.IssuerURL,
		ClientID:              oauth.ClientID,
		ClientSecret:          oauth.ClientSecret,
		RedirectURL:           oauth.RedirectURL,
		PostLogoutRedirectURL: oauth.PostLogoutRedirectURL,
		Scope:                 oauth.Scope,
		LogoutURL:             oauth.LogoutURL,
		GroupsClaim:           oauth.GroupsClaim,
	})
	if err != nil {
		logger.Warn("failed to create OIDC provider, login disabled", "error", err)
		return nil
	}
	return prov
}

func buildSessionStore(cfg SessionManagerConfig, logger *slog.Logger) ports.SessionStore {
	if cfg.RedisClient == nil {
		logger.Warn("redis client not configured, sessions will not survive restarts")
		return nil
	}
	return redisadapter.NewSessionStore(cfg.RedisClient, cfg.Auth.OAuth.IssuerURL, cfg.Auth.OAuth.ClientID)
}

// BuildRedisClient creates the Redis client for the session snapshot store.
func BuildRedisClient(cfg config.RedisConfig) redis.UniversalClient {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}
