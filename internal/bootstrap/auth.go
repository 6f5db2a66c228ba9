package bootstrap

import (
	"database/sql"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/meridian/rolegate/config"
	"github.com/meridian/rolegate/internal/adapters/localauth"
	"github.com/meridian/rolegate/internal/adapters/oidc"
	redisadapter "github.com/meridian/rolegate/internal/adapters/redis"
	"github.com/meridian/rolegate/internal/data"
	"github.com/meridian/rolegate/internal/service"
)

// AuthConfig contains configuration for the auth service.
type AuthConfig struct {
	Auth        config.AuthConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// BuildAuthService creates an auth service based on the configured auth mode.
// Returns nil if auth is not configured or configuration is invalid.
func BuildAuthService(cfg AuthConfig) *service.AuthService {
	if cfg.DB == nil {
		if cfg.Logger != nil {
			cfg.Logger.Warn("auth service disabled: database not configured", "mode", cfg.Auth.Mode)
		}
		return nil
	}
	if cfg.RedisClient == nil {
		if cfg.Logger != nil {
			cfg.Logger.Warn("auth service disabled: redis client not configured", "mode", cfg.Auth.Mode)
		}
		return nil
	}

	// The Redis session store backs both modes: local sign-in mints
	// sessions through the local provider, OAuth callbacks mint them
	// through the auth service.
	sessionStore := redisadapter.NewSessionStoreWithPrefix(cfg.RedisClient, "session:")

	userRepo := data.NewUserRepo(cfg.DB)

	resolver := service.NewRoleResolver(service.RoleResolverOptions{
		Profiles: userRepo,
		Roles:    data.NewRoleRepo(cfg.DB),
	})

	// The local provider also serves as the session-backed identity
	// provider in OAuth mode: token lookups and sign-out go through the
	// shared session store regardless of how the session was minted.
	provider, err := localauth.NewProvider(localauth.Options{
		Users:       userRepo,
		Credentials: data.NewCredentialRepo(cfg.DB),
		Sessions:    sessionStore,
		SessionTTL:  cfg.Auth.Local.SessionTTL,
	})
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.Warn("failed to create local auth provider, auth disabled", "error", err)
		}
		return nil
	}

	switch cfg.Auth.Mode {
	case config.AuthModeLocal:
		return service.NewAuthService(service.AuthServiceOptions{
			Provider: provider,
			Resolver: resolver,
		})

	case config.AuthModeOAuth:
		return buildOAuthService(cfg, provider, resolver, sessionStore)

	default:
		return nil
	}
}

func buildOAuthService(
	cfg AuthConfig,
	provider *localauth.Provider,
	resolver *service.RoleResolver,
	sessionStore *redisadapter.SessionStore,
) *service.AuthService {
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

	oauthProvider, err := oidc.NewProvider(oidc.ProviderConfig{
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
		Provider:        provider,
		Resolver:        resolver,
		OAuth:           oauthProvider,
		Sessions:        sessionStore,
		OAuthSessionTTL: cfg.Auth.Local.SessionTTL,
	})
}
