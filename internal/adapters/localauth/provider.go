package localauth

// Package localauth implements the identity provider port on top of the
// local users and user_credentials tables. Passwords are hashed with
// argon2id and sessions are opaque uuid tokens held in a session store.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/meridian/rolegate/internal/data"
	domainauth "github.com/meridian/rolegate/internal/domain/auth"
	apperrors "github.com/meridian/rolegate/internal/errors"
	"github.com/meridian/rolegate/internal/ports"
)

// invalidCredentialsMessage is deliberately identical for unknown emails and
// wrong passwords so responses do not reveal which accounts exist.
const invalidCredentialsMessage = "Invalid login credentials"

// UserDirectory is the slice of the user repository the provider needs.
type UserDirectory interface {
	ProfileByEmail(ctx context.Context, email string) (domainauth.Profile, error)
	Create(ctx context.Context, email string) (domainauth.Profile, error)
}

// CredentialStore reads and writes password hashes.
type CredentialStore interface {
	HashForUser(ctx context.Context, userID string) (string, error)
	SetHash(ctx context.Context, userID, hash string) error
}

// Options configures the local identity provider.
type Options struct {
	Users       UserDirectory
	Credentials CredentialStore
	Sessions    ports.SessionStore
	Hasher      PasswordHasher // defaults to NewArgon2Hasher()
	SessionTTL  time.Duration  // defaults to 8h
}

// Provider implements ports.IdentityProvider against local storage.
type Provider struct {
	users       UserDirectory
	credentials CredentialStore
	sessions    ports.SessionStore
	hasher      PasswordHasher
	sessionTTL  time.Duration
	events      *broadcaster
	now         func() time.Time
}

var _ ports.IdentityProvider = (*Provider)(nil)

// NewProvider constructs a local identity provider from Options.
func NewProvider(opts Options) (*Provider, error) {
	if opts.Users == nil {
		return nil, errors.New("localauth: Users is required")
	}
	if opts.Credentials == nil {
		return nil, errors.New("localauth: Credentials is required")
	}
	if opts.Sessions == nil {
		return nil, errors.New("localauth: Sessions is required")
	}
	hasher := opts.Hasher
	if hasher == nil {
		hasher = NewArgon2Hasher()
	}
	ttl := opts.SessionTTL
	if ttl == 0 {
		ttl = 8 * time.Hour
	}
	return &Provider{
		users:       opts.Users,
		credentials: opts.Credentials,
		sessions:    opts.Sessions,
		hasher:      hasher,
		sessionTTL:  ttl,
		events:      newBroadcaster(),
		now:         time.Now,
	}, nil
}

// SignInWithPassword verifies the email/password pair and mints a session.
func (p *Provider) SignInWithPassword(ctx context.Context, creds ports.Credentials) (domainauth.Session, error) {
	profile, err := p.users.ProfileByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, data.ErrUserNotFound) {
			return domainauth.Session{}, apperrors.Unauthorized(invalidCredentialsMessage)
		}
		return domainauth.Session{}, fmt.Errorf("look up user: %w", err)
	}

	hash, err := p.credentials.HashForUser(ctx, profile.ID)
	if err != nil {
		if errors.Is(err, data.ErrCredentialsNotFound) {
			return domainauth.Session{}, apperrors.Unauthorized(invalidCredentialsMessage)
		}
		return domainauth.Session{}, fmt.Errorf("look up credentials: %w", err)
	}

	ok, err := p.hasher.Verify(creds.Password, hash)
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return domainauth.Session{}, apperrors.Unauthorized(invalidCredentialsMessage)
	}

	sess := domainauth.Session{
		Token:     uuid.NewString(),
		UserID:    profile.ID,
		Email:     profile.Email,
		ExpiresAt: p.now().Add(p.sessionTTL),
	}
	if err := p.sessions.Save(ctx, sess); err != nil {
		return domainauth.Session{}, fmt.Errorf("save session: %w", err)
	}

	p.events.emit(domainauth.EventSignedIn)
	return sess, nil
}

// SignUp creates a user row and stores the password hash for it.
func (p *Provider) SignUp(ctx context.Context, creds ports.Credentials) (domainauth.Identity, error) {
	if creds.Password == "" {
		return domainauth.Identity{}, apperrors.Validation("password is required")
	}

	hash, err := p.hasher.Hash(creds.Password)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("hash password: %w", err)
	}

	profile, err := p.users.Create(ctx, creds.Email)
	if err != nil {
		return domainauth.Identity{}, err
	}
	if err := p.credentials.SetHash(ctx, profile.ID, hash); err != nil {
		return domainauth.Identity{}, fmt.Errorf("store credentials: %w", err)
	}

	return profile.Identity(), nil
}

// SignOut drops the session behind the token. Unknown tokens are a no-op so
// sign-out stays idempotent.
func (p *Provider) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := p.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	p.events.emit(domainauth.EventSignedOut)
	return nil
}

// UserFromToken resolves a session token to the identity it was issued for.
func (p *Provider) UserFromToken(ctx context.Context, token string) (domainauth.Identity, error) {
	if token == "" {
		return domainauth.Identity{}, apperrors.Unauthorized("Unauthorized")
	}
	sess, err := p.sessions.Get(ctx, token)
	if err != nil {
		return domainauth.Identity{}, apperrors.Unauthorized("Unauthorized")
	}
	if sess.Expired(p.now()) {
		return domainauth.Identity{}, apperrors.Unauthorized("Unauthorized")
	}
	return domainauth.Identity{ID: sess.UserID, Email: sess.Email}, nil
}

// OnAuthStateChange registers a listener for sign-in and sign-out events.
func (p *Provider) OnAuthStateChange(fn func(domainauth.Event)) (unsubscribe func()) {
	return p.events.subscribe(fn)
}
