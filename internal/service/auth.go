package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/meridian/rolegate/internal/domain/auth"
	apperrors "github.com/meridian/rolegate/internal/errors"
	"github.com/meridian/rolegate/internal/ports"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Provider ports.IdentityProvider
	Resolver *RoleResolver

	// OAuth is optional; when nil the OAuth endpoints report that the
	// flow is not configured.
	OAuth ports.OAuthProvider
	// Sessions is required only when OAuth is configured: completed OAuth
	// logins mint sessions through it.
	Sessions ports.SessionStore
	// OAuthSessionTTL bounds sessions minted from OAuth identities whose
	// provider expiry is missing or already past. Defaults to 8h.
	OAuthSessionTTL time.Duration
}

// AuthService orchestrates the identity provider and the role resolver.
// All collaborators are injected; there are no hidden client singletons.
type AuthService struct {
	provider ports.IdentityProvider
	resolver *RoleResolver

	oauth    ports.OAuthProvider
	sessions ports.SessionStore
	oauthTTL time.Duration
}

// ErrOAuthNotConfigured is returned by OAuth flows when no OAuth provider
// was wired.
var ErrOAuthNotConfigured = errors.New("oauth provider not configured")

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	ttl := opts.OAuthSessionTTL
	if ttl == 0 {
		ttl = 8 * time.Hour
	}
	return &AuthService{
		provider: opts.Provider,
		resolver: opts.Resolver,
		oauth:    opts.OAuth,
		sessions: opts.Sessions,
		oauthTTL: ttl,
	}
}

// Login verifies credentials with the identity provider and returns the
// issued session. Provider failures surface as unauthorized: the provider's
// message is the only detail the caller sees.
func (s *AuthService) Login(ctx context.Context, creds ports.Credentials) (*domainauth.Session, error) {
	if creds.Email == "" || creds.Password == "" {
		return nil, apperrors.Validation("email and password are required")
	}

	sess, err := s.provider.SignInWithPassword(ctx, creds)
	if err != nil {
		return nil, apperrors.Unauthorized(apperrors.MessageOf(err))
	}
	return &sess, nil
}

// Register provisions a new user through the identity provider.
func (s *AuthService) Register(ctx context.Context, creds ports.Credentials) (*domainauth.Identity, error) {
	if creds.Email == "" || creds.Password == "" {
		return nil, apperrors.Validation("email and password are required")
	}

	identity, err := s.provider.SignUp(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}
	return &identity, nil
}

// Logout invalidates the session behind token. An empty token is nothing
// to log out.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.provider.SignOut(ctx, token); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

// CurrentUser resolves the opaque token to the identity it was issued for.
// Any provider failure collapses to unauthorized.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*domainauth.Identity, error) {
	if token == "" {
		return nil, apperrors.Unauthorized("Unauthorized")
	}
	identity, err := s.provider.UserFromToken(ctx, token)
	if err != nil {
		return nil, apperrors.Unauthorized("Unauthorized")
	}
	return &identity, nil
}

// ResolveCurrent is the identity-endpoint core: who is calling, with what
// profile and roles. Unauthorized callers never reach the resolver.
func (s *AuthService) ResolveCurrent(ctx context.Context, token string) (*domainauth.Resolution, error) {
	identity, err := s.CurrentUser(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.resolver.Resolve(ctx, identity.ID)
}

// BeginOAuthResult contains the result of beginning an OAuth flow.
type BeginOAuthResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginOAuth initiates a hosted OAuth flow and returns the provider auth
// URL with state and nonce.
func (s *AuthService) BeginOAuth(ctx context.Context, redirectURL string) (*BeginOAuthResult, error) {
	if s.oauth == nil {
		return nil, ErrOAuthNotConfigured
	}
	if redirectURL == "" {
		return nil, apperrors.Validation("redirect URL is required")
	}

	authURL, state, nonce, err := s.oauth.Begin(ctx, ports.BeginOAuthInput{RedirectURL: redirectURL})
	if err != nil {
		return nil, fmt.Errorf("begin oauth flow: %w", err)
	}
	return &BeginOAuthResult{AuthURL: authURL, State: state, Nonce: nonce}, nil
}

// CompleteOAuthInput groups parameters for completing an OAuth flow.
type CompleteOAuthInput struct {
	Code  string
	State string
	Nonce string
}

// CompleteOAuth exchanges the authorization code for an identity and mints
// a session for it through the session store.
func (s *AuthService) CompleteOAuth(ctx context.Context, input CompleteOAuthInput) (*domainauth.Session, error) {
	if s.oauth == nil || s.sessions == nil {
		return nil, ErrOAuthNotConfigured
	}
	if input.Code == "" {
		return nil, apperrors.Validation("authorization code is required")
	}
	if input.State == "" {
		return nil, apperrors.Validation("state parameter is required")
	}
	if input.Nonce == "" {
		return nil, apperrors.Validation("nonce parameter is required")
	}

	identity, err := s.oauth.Exchange(ctx, ports.ExchangeInput{
		Code:  input.Code,
		State: input.State,
		Nonce: input.Nonce,
	})
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	sess := domainauth.Session{
		Token:     uuid.NewString(),
		UserID:    identity.ID,
		Email:     identity.Email,
		ExpiresAt: time.Now().Add(s.oauthTTL),
	}
	if saveErr := s.sessions.Save(ctx, sess); saveErr != nil {
		return nil, fmt.Errorf("save session: %w", saveErr)
	}
	return &sess, nil
}
