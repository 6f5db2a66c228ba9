package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/meridian/rolegate/internal/client"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeLocal authenticates against the local credential store.
	AuthModeLocal AuthMode = "local"
	// AuthModeOAuth delegates authentication to a hosted OIDC provider.
	AuthModeOAuth AuthMode = "oauth"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "local", "oauth":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: local, oauth)", v)
	}
}

// OAuthConfig contains OAuth/OIDC configuration.
type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"     envDefault:"rolegate"`
	ClientSecret string `env:"CLIENT_SECRET" envDefault:"rolegate"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/auth/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid email"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
}

// LocalAuthConfig controls the local credential provider.
type LocalAuthConfig struct {
	// SessionTTL bounds sessions issued on password sign-in.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"8h"`
}

// GateConfig controls route-gate redirect behavior.
type GateConfig struct {
	// SignInRoute is where unauthenticated navigation is redirected.
	SignInRoute string `env:"SIGN_IN_ROUTE" envDefault:"/login"`

	// UnauthorizedRoute is where role-denied navigation is redirected.
	UnauthorizedRoute string `env:"UNAUTHORIZED_ROUTE" envDefault:"/unauthorized"`

	// OnForbidden selects which of the two routes an authenticated caller
	// missing a required role is sent to: "unauthorized-route" (default)
	// or "sign-in-route".
	OnForbidden client.ForbiddenRedirect `env:"ON_FORBIDDEN" envDefault:"unauthorized-route"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which identity provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"local"`

	// Local configuration (used when Mode=local).
	Local LocalAuthConfig `envPrefix:"LOCAL_AUTH_"`

	// OAuth configuration (used when Mode=oauth).
	OAuth OAuthConfig `envPrefix:"OAUTH_"`

	// Gate configures route-gate redirects.
	Gate GateConfig `envPrefix:"GATE_"`
}

// Sanitize applies guardrails to authentication configuration values.
func (a *AuthConfig) Sanitize() {
	if a.Local.SessionTTL <= 0 {
		a.Local.SessionTTL = 8 * time.Hour
	}
	if a.Gate.SignInRoute == "" {
		a.Gate.SignInRoute = "/login"
	}
	if a.Gate.UnauthorizedRoute == "" {
		a.Gate.UnauthorizedRoute = "/unauthorized"
	}
}
