package bootstrap

import (
	"database/sql"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/Shiki0138/fleeksonline/config"
	"github.com/Shiki0138/fleeksonline/internal/adapters/authroles"
	"github.com/Shiki0138/fleeksonline/internal/adapters/devauth"
	"github.com/Shiki0138/fleeksonline/internal/adapters/oidc"
	redisadapter "github.com/Shiki0138/fleeksonline/internal/adapters/redis"
	"github.com/Shiki0138/fleeksonline/internal/core"
	"github.com/Shiki0138/fleeksonline/internal/data"
	"github.com/Shiki0138/fleeksonline/internal/service"
)

// AuthConfig contains configuration for auth service.
type AuthConfig struct {
	Auth        config.AuthConfig
	RedisClient redis.UniversalClient
	DB          *sql.DB
	Logger      *slog.Logger
}

// BuildAuthService creates an auth service based on the configured auth mode.
// Returns nil if auth is not configured or configuration is invalid.
func BuildAuthService(cfg AuthConfig) *service.AuthService {
	if cfg.RedisClient == nil {
		if cfg.Logger != nil {
			cfg.Logger.Warn("auth service disabled: redis client not configured", "mode", cfg.Auth.Mode)
		}
		return nil
	}

	// Redis session store shared by both modes
	sessionStore := redisadapter.NewSessionStoreWithPrefix(cfg.RedisClient, "session:")

	// Role mapper is shared
	roleMapper := authroles.StaticRoleMapper{
		AdminGroup:     cfg.Auth.AdminGroup,
		ModeratorGroup: cfg.Auth.ModeratorGroup,
		UserGroup:      cfg.Auth.UserGroup,
	}

	// Profile sync is skipped when no database is available (tests).
	var profiles core.ProfileRepository
	if cfg.DB != nil {
		profiles = data.NewProfileRepo(cfg.DB)
	}

	switch cfg.Auth.Mode {
	case config.AuthModeMock:
		return buildDevAuthService(cfg, authDeps{sessionStore, roleMapper, profiles})

	case config.AuthModeOAuth:
		return buildOAuthService(cfg, authDeps{sessionStore, roleMapper, profiles})

	default:
		return nil
	}
}

// authDeps carries the pieces shared by both provider modes.
type authDeps struct {
	sessions *redisadapter.SessionStore
	roles    authroles.StaticRoleMapper
	profiles core.ProfileRepository
}

func buildDevAuthService(cfg AuthConfig, deps authDeps) *service.AuthService {
	// Explicitly enabled dev auth mode; build a local provider.
	prov, err := devauth.NewProvider(devauth.Config{
		UserID:   cfg.Auth.DevAuth.UserID,
		Email:    cfg.Auth.DevAuth.Email,
		FullName: cfg.Auth.DevAuth.FullName,
		Groups:   cfg.Auth.DevAuth.Groups,
		// session duration defaults inside provider
	})
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.Warn("failed to create dev auth provider, auth disabled", "error", err)
		}
		return nil
	}

	return service.NewAuthService(service.AuthServiceOptions{
		Provider: prov,
		Sessions: deps.sessions,
		Roles:    deps.roles,
		Profiles: deps.profiles,
		Logger:   cfg.Logger,
	})
}

func buildOAuthService(cfg AuthConfig, deps authDeps) *service.AuthService {
	// Only enable when fully configured
	oauth := cfg.Auth.OAuth
	if oauth.DiscoveryURL == "" || oauth.ClientID == "" || oauth.ClientSecret == "" {
		if cfg.Logger != nil {
			cfg.Logger.Warn("AuthModeOAuth selected but required config missing; auth disabled",
				"discovery_url_empty", oauth.DiscoveryURL == "",
				"client_id_empty", oauth.ClientID == "",
				"client_secret_empty", oauth.ClientSecret == "",
			)
		}
		return nil
	}

	prov, err := oidc.NewProvider(oidc.ProviderConfig{
		ClientID:     oauth.ClientID,
		ClientSecret: oauth.ClientSecret,
		RedirectURL:  oauth.RedirectURL,
		Scope:        oauth.Scope,
		DiscoveryURL: oauth.DiscoveryURL,
	})
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.Warn("failed to create OIDC provider, auth disabled", "error", err)
		}
		return nil
	}

	return service.NewAuthService(service.AuthServiceOptions{
		Provider: prov,
		Sessions: deps.sessions,
		Roles:    deps.roles,
		Profiles: deps.profiles,
		Logger:   cfg.Logger,
	})
}
