package ports

// Package ports defines interfaces (hexagonal ports) for identity and
// role-resolution behavior. Implementations live in internal/adapters;
// orchestration in internal/service.

import (
	"context"

	domainauth "github.com/meridian/rolegate/internal/domain/auth"
)

// Credentials carries an email/password pair for credential-based flows.
type Credentials struct {
	Email    string
	Password string
}

// IdentityProvider is the collaborator that authenticates credentials,
// issues and validates opaque session tokens, and pushes state-change
// notifications. Credential verification, hashing, and token lifecycle all
// live behind this port.
type IdentityProvider interface {
	// SignInWithPassword verifies credentials and issues a session.
	SignInWithPassword(ctx context.Context, creds Credentials) (domainauth.Session, error)

	// SignUp provisions a new user with the given credentials.
	SignUp(ctx context.Context, creds Credentials) (domainauth.Identity, error)

	// SignOut invalidates the session behind the given token.
	SignOut(ctx context.Context, token string) error

	// UserFromToken resolves an opaque session token to the identity it
	// was issued for, failing for unknown or expired tokens.
	UserFromToken(ctx context.Context, token string) (domainauth.Identity, error)

	// OnAuthStateChange registers a callback fired on sign-in, sign-out,
	// and token refresh. The returned function unsubscribes; after it
	// returns the callback will not be invoked again.
	OnAuthStateChange(fn func(domainauth.Event)) (unsubscribe func())
}

// BeginOAuthInput carries inputs for initiating a hosted OAuth flow.
type BeginOAuthInput struct {
	RedirectURL string
}

// OAuthProvider initiates and completes an OAuth/OIDC flow against a hosted
// IdP, for deployments that delegate credential handling entirely.
type OAuthProvider interface {
	// Begin starts the flow and returns the provider auth URL, an opaque
	// state, and a nonce.
	Begin(ctx context.Context, in BeginOAuthInput) (authURL, state, nonce string, err error)

	// Exchange completes the flow, verifying state and nonce, and returns
	// the authenticated identity.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// SessionStore persists provider-issued sessions keyed by token. Hosted
// providers own their session storage; the local provider adapter uses this
// port.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, token string) (domainauth.Session, error)
	Delete(ctx context.Context, token string) error
}

// ProfileStore is the point lookup into the users table.
type ProfileStore interface {
	ProfileByID(ctx context.Context, id string) (domainauth.Profile, error)
}

// RoleStore yields the role names a user holds via the user_roles join.
// Zero names is a valid result, not an error.
type RoleStore interface {
	RoleNamesForUser(ctx context.Context, userID string) ([]string, error)
}
